package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/shikc/wotan/pkg/api"
)

// newServeCmd creates the serve command, which starts the HTTP analysis API.
func newServeCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP analysis API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), listen)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (default from config, \":8080\")")

	return cmd
}

func runServe(ctx context.Context, listen string) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if listen == "" {
		listen = cfg.API.Listen
	}

	store, err := cacheFromConfig(ctx, &cfg.Cache)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := &http.Server{
		Addr:              listen,
		Handler:           api.NewServer(store, cfg.Cache.TTL.Std()).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Shut down when the command context is cancelled (SIGINT/SIGTERM).
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Infof("Serving on %s (cache backend: %s)", listen, cfg.Cache.Backend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("Server stopped")
	return nil
}
