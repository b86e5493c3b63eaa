package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"notary-dash/internal/metrics"
	"notary-dash/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		addr string
		open bool
		snap snapshot
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = cfg.HTTPAddr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			m := metrics.New()
			svc, cleanup, err := buildService(ctx, cfg, snap, m)
			if err != nil {
				return err
			}
			defer cleanup()

			srv := &http.Server{
				Addr:              addr,
				Handler:           server.New(server.Config{Dashboard: svc, Metrics: m}),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", addr, err)
			}
			log.Info().Str("addr", ln.Addr().String()).Msg("HTTP server listening")

			if open {
				url := "http://" + browserHost(ln.Addr()) + "/api/dashboard"
				if err := browser.OpenURL(url); err != nil {
					log.Warn().Err(err).Str("url", url).Msg("Failed to open browser")
				}
			}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Serve(ln) }()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			log.Info().Msg("Shutting down HTTP server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to HTTP_ADDR)")
	cmd.Flags().BoolVar(&open, "open", false, "open the dashboard endpoint in the default browser")
	cmd.Flags().StringVar(&snap.dir, "events-dir", "", "serve a local mockgen snapshot instead of the configured backend")
	cmd.Flags().StringVar(&snap.boardID, "board", defaultBoardID, "board id of the snapshot event log")
	return cmd
}

// browserHost turns a wildcard listen address into one a browser can reach.
func browserHost(addr net.Addr) string {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok || tcp.IP == nil || tcp.IP.IsUnspecified() {
		port := 0
		if ok {
			port = tcp.Port
		}
		return fmt.Sprintf("localhost:%d", port)
	}
	return addr.String()
}
