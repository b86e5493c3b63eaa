package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// defaultBoardID is the event log name mockgen writes.
const defaultBoardID = "board"

func newReportCmd() *cobra.Command {
	var (
		from, to string
		snap     snapshot
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute the dashboard for one window and print it as JSON",
		Example: `  notary-dash report --from 2024-03-01T00:00:00Z --to 2024-03-31T23:59:59Z
  notary-dash report --from 2024-03-01T00:00:00Z --to 2024-03-31T23:59:59Z --events-dir ./.cache`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := time.Parse(time.RFC3339Nano, from)
			if err != nil {
				return fmt.Errorf("invalid --from: %w", err)
			}
			end, err := time.Parse(time.RFC3339Nano, to)
			if err != nil {
				return fmt.Errorf("invalid --to: %w", err)
			}

			svc, cleanup, err := buildService(cmd.Context(), cfg, snap, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			resp, err := svc.Window(cmd.Context(), start.UTC(), end.UTC())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "window start (RFC3339)")
	cmd.Flags().StringVar(&to, "to", "", "window end (RFC3339)")
	cmd.Flags().StringVar(&snap.dir, "events-dir", "", "read a local mockgen snapshot instead of the configured backend")
	cmd.Flags().StringVar(&snap.boardID, "board", defaultBoardID, "board id of the snapshot event log")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
