package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"notary-dash/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	var snap snapshot

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the dashboard as an MCP server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, cleanup, err := buildService(ctx, cfg, snap, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			server, err := mcp.NewServer(svc, Version)
			if err != nil {
				return err
			}
			return server.Serve(ctx)
		},
	}

	cmd.Flags().StringVar(&snap.dir, "events-dir", "", "serve a local mockgen snapshot instead of the configured backend")
	cmd.Flags().StringVar(&snap.boardID, "board", defaultBoardID, "board id of the snapshot event log")
	return cmd
}
