package commands

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"notary-dash/internal/config"
	"notary-dash/internal/logging"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "notary-dash",
	Short: "notary-dash reconstructs the notarial Trello board for any past time window",
	Long: `notary-dash replays the card event log mirrored from Trello to rebuild the board state at the
edges of a time window and serves the aggregated dashboard over HTTP, MCP (stdio) or as a one-shot report.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("backend", string(cfg.Backend())).
			Msg("notary-dash starting")
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.AddCommand(newServeCmd(), newMCPCmd(), newReportCmd())
}
