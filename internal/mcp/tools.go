package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// WindowArgs is the input of the dashboard_window tool.
type WindowArgs struct {
	From string `json:"from,omitempty" jsonschema:"Window start as an RFC3339 timestamp (e.g. 2024-03-01T00:00:00Z). Omit together with 'to' for the current board state."`
	To   string `json:"to,omitempty" jsonschema:"Window end as an RFC3339 timestamp, inclusive."`
}

const windowToolDescription = "Reconstruct the notarial board as it was during a time window and return the aggregated dashboard " +
	"(overall counters, per-list rollups, act types, created-by-list, breakdown, pivot, summary and open cards). \n\n" +
	"Both 'from' and 'to' must be given to get a historical window; when both are omitted the current pre-aggregated state is returned. " +
	"A window whose start is after its end is rejected."

func (s *Server) registerTools() error {
	schema, err := jsonschema.For[WindowArgs](nil)
	if err != nil {
		return fmt.Errorf("failed to build dashboard_window schema: %w", err)
	}
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "dashboard_window",
		Description: windowToolDescription,
		InputSchema: schema,
	}, s.handleDashboardWindow)
	return nil
}

func (s *Server) handleDashboardWindow(ctx context.Context, _ *mcp.CallToolRequest, args WindowArgs) (*mcp.CallToolResult, any, error) {
	from, to, current, err := parseWindowArgs(args)
	if err != nil {
		return nil, nil, err
	}

	var body []byte
	if current {
		body, err = s.dash.Current(ctx)
	} else {
		body, err = s.dash.WindowJSON(ctx, from, to)
	}
	if err != nil {
		log.Error().Err(err).Str("from", args.From).Str("to", args.To).Msg("dashboard_window failed")
		return nil, nil, err
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(body)}},
	}, nil, nil
}

// parseWindowArgs validates the tool input. current is true when both bounds are omitted.
func parseWindowArgs(args WindowArgs) (from, to time.Time, current bool, err error) {
	rawFrom, rawTo := strings.TrimSpace(args.From), strings.TrimSpace(args.To)
	if rawFrom == "" && rawTo == "" {
		return time.Time{}, time.Time{}, true, nil
	}
	if rawFrom == "" || rawTo == "" {
		return time.Time{}, time.Time{}, false, fmt.Errorf("both 'from' and 'to' are required for a window")
	}
	if from, err = time.Parse(time.RFC3339Nano, rawFrom); err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("invalid from %q: %w", rawFrom, err)
	}
	if to, err = time.Parse(time.RFC3339Nano, rawTo); err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("invalid to %q: %w", rawTo, err)
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, false, fmt.Errorf("invalid window: from %s is after to %s", rawFrom, rawTo)
	}
	return from.UTC(), to.UTC(), false, nil
}
