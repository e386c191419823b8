package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Rshep3087/ahorrista/devserver"
	"github.com/Rshep3087/ahorrista/gateway"
)

const shutdownTimeout = 5 * time.Second

func newDevserverCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Serve the expense API from memory",
		Long: `Run a local, in-memory expense backend seeded with sample data. Point
the TUI at it with --base-url http://localhost:8080.`,
		// the server needs configuration but no backend session
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.loadConfig()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			users, _ := cmd.Flags().GetStringSlice("user")

			opts := []devserver.Option{devserver.WithLogger(log.Default())}
			for _, u := range users {
				email, password, ok := strings.Cut(u, ":")
				if !ok || email == "" || password == "" {
					return fmt.Errorf("invalid --user %q (expected email:password)", u)
				}
				opts = append(opts, devserver.WithUser(email, password))
			}

			if !a.cfg.Debug {
				gin.SetMode(gin.ReleaseMode)
			}

			srv := devserver.New(gateway.NewDemo(gateway.DemoCurrency(a.cfg.Currency)), opts...)
			return serve(cmd.Context(), addr, srv.Handler())
		},
	}

	cmd.Flags().String("addr", ":8080", "address to listen on")
	cmd.Flags().StringSlice("user", nil, "account to create at startup as email:password (repeatable)")

	return cmd
}

// serve runs handler on addr until ctx is cancelled or the process is
// interrupted.
func serve(ctx context.Context, addr string, handler http.Handler) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("devserver listening", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down devserver")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
