package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/thomurie/jobly/cli/internal/config"
	"github.com/thomurie/jobly/cli/internal/watch"
	"github.com/thomurie/jobly/internal/api"
	"github.com/thomurie/jobly/internal/auth"
	"github.com/thomurie/jobly/internal/debug"
	"github.com/thomurie/jobly/internal/repository"
	"github.com/thomurie/jobly/runtime/client"
)

var (
	serveAddr      string
	serveWatch     bool
	slowQueryLimit time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server",
	Long: `Run the API server until interrupted.

With --watch, edits to the config file toggle debug logging without a
restart. Other settings take effect on the next start.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload debug setting when the config file changes")
	serveCmd.Flags().DurationVar(&slowQueryLimit, "slow-query", 200*time.Millisecond, "log queries slower than this")
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context) error {
	logger := debug.Logger()

	if cfg.SecretKey == config.DefaultSecretKey {
		logger.Warn("using the development secret key; set SECRET_KEY in production")
	}

	db, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	db.Use(client.LoggingMiddleware(logger))
	db.Use(client.SlowQueryMiddleware(logger, slowQueryLimit))

	server := api.NewAPIServer(cfg.Addr, api.Deps{
		Jobs:   repository.NewJobStore(db),
		Users:  repository.NewUserStore(db, cfg.BcryptCost),
		Tokens: auth.NewIssuer(cfg.SecretKey, cfg.TokenTTL),
		DB:     db,
		Logger: logger,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(ctx, cfg.ShutdownTimeout)
	})

	if serveWatch {
		if cfg.File == "" {
			logger.Warn("--watch ignored, no config file in use")
		} else {
			w, err := watch.NewWatcher(cfg.File, reloadDebug, logger)
			if err != nil {
				return err
			}
			logger.Info("watching config", "file", cfg.File)
			g.Go(func() error { return w.Run(ctx) })
		}
	}

	return g.Wait()
}

// openDatabase connects and verifies the server version.
func openDatabase(ctx context.Context) (*client.Client, error) {
	db, err := client.Open(cfg.DatabaseURL, client.Options{})
	if err != nil {
		return nil, err
	}

	if err := db.Connect(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	v, err := db.CheckServerVersion(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	debug.Debug("connected to database", "server_version", v.String())
	return db, nil
}

func reloadDebug() error {
	next, err := config.Load(cfg.File)
	if err != nil {
		return err
	}
	if next.Debug != debug.Enabled() {
		debug.SetDebug(next.Debug)
		debug.Info("debug logging changed", "enabled", next.Debug)
	}
	return nil
}
