package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/attnviz/internal/api"
	"github.com/ziadkadry99/attnviz/internal/page"
	"github.com/ziadkadry99/attnviz/internal/server"
	"github.com/ziadkadry99/attnviz/internal/session"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive visualization page",
	Long: `Starts an HTTP server with the scroll-driven visualization page at /, the live
WebSocket session at /ws and read-only JSON and SVG endpoints under /api.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}
		opts := cfg.VizOptions()

		host, err := page.New(opts)
		if err != nil {
			return fmt.Errorf("building page: %w", err)
		}

		srv := server.New(server.Config{
			Port:     cfg.Server.Port,
			AllowAll: cfg.Server.AllowAll,
		},
			host,
			api.New(opts),
			session.New(opts, cfg.Tick()),
		)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "attnviz %s serving on http://localhost:%d\n", Version, cfg.Server.Port)
		fmt.Fprintf(os.Stderr, "  Tokens: %v\n", opts.Tokens)
		fmt.Fprintf(os.Stderr, "  Heads: %d\n", opts.Heads)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}
