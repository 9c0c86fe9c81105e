package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jcalderon/strikelog/internal/config"
	"github.com/jcalderon/strikelog/internal/dashboard"
	"github.com/jcalderon/strikelog/internal/storage"
)

func newServeCmd(rc *rootConfig) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only HTTP dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rc.ConfigPath)
			if err != nil {
				return err
			}
			if port == 0 {
				port = cfg.Dashboard.Port
			}

			logger := logrus.New()
			logger.SetLevel(parseLogLevel(cfg.Environment.LogLevel))

			store := storage.NewStorage(cfg.Journal.Path, cfg.Journal.BackupDir, cfg.Journal.BackupRetention)
			srv := dashboard.NewServer(dashboard.Config{
				Port:      port,
				AuthToken: cfg.Dashboard.AuthToken,
			}, store, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})

			return g.Wait()
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Listen port (defaults from config)")

	return cmd
}

func parseLogLevel(level string) logrus.Level {
	switch level {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
