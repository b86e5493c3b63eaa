// Package mcp exposes the dashboard as Model Context Protocol tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// Dashboard is the part of the dashboard service the tools depend on.
type Dashboard interface {
	WindowJSON(ctx context.Context, from, to time.Time) ([]byte, error)
	Current(ctx context.Context) (json.RawMessage, error)
}

// Server holds the state for the MCP server.
type Server struct {
	dash   Dashboard
	server *mcp.Server
}

// NewServer creates a new MCP server with all tools registered.
func NewServer(dash Dashboard, version string) (*Server, error) {
	s := &Server{
		dash:   dash,
		server: mcp.NewServer(&mcp.Implementation{Name: "notary-dash", Version: version}, nil),
	}
	if err := s.registerTools(); err != nil {
		return nil, err
	}
	return s, nil
}

// Serve runs the JSON-RPC loop over stdio until the client disconnects or ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	log.Info().Msg("MCP server listening on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
