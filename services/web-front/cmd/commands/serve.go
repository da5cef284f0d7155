package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baronblk/guestbook-project/services/web-front/internal/config"
	"github.com/baronblk/guestbook-project/services/web-front/internal/handler"
	"github.com/baronblk/guestbook-project/services/web-front/internal/storage"
	"github.com/baronblk/guestbook-project/services/web-front/internal/workspace"
	"github.com/spf13/cobra"
)

const (
	persistTTL      = 30 * 24 * time.Hour
	shutdownTimeout = 10 * time.Second
)

// NewServeCommand creates the command that runs the web server.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the guestbook pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log := setup()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			base, err := openStorage(ctx, cfg)
			if err != nil {
				return err
			}
			log.Infof("session storage: %s", cfg.StorageDriver)

			reg := workspace.NewRegistry(cfg, base, log)
			defer reg.Close()
			go reg.Run(ctx)

			r, err := handler.NewRouter(cfg, reg, log)
			if err != nil {
				return fmt.Errorf("load templates: %w", err)
			}
			srv := &http.Server{Addr: "0.0.0.0:" + cfg.ServerPort, Handler: r}
			errCh := make(chan error, 1)
			go func() {
				log.Info("start web server at port " + cfg.ServerPort)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}
			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

// openStorage returns the backend that persists sessions between restarts.
func openStorage(ctx context.Context, cfg *config.WebConfig) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case config.StorageRedis:
		return storage.NewRedis(ctx, cfg.RedisURL+":"+cfg.RedisPort, cfg.RedisPassword, persistTTL)
	case config.StoragePostgres:
		return storage.OpenPostgres(cfg.PostgresDSN)
	case config.StorageMemory, "":
		return storage.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
