// main.go
//
// Entry point for the word-chain server.
// Loads configuration, opens and migrates SQLite, restores cache snapshots,
// builds the validation pipeline and serves HTTP until SIGINT/SIGTERM.
// Cache snapshots are saved on an interval and once more on shutdown.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/linkdle/assets"
	"github.com/robalobadob/linkdle/internal/cache"
	"github.com/robalobadob/linkdle/internal/config"
	"github.com/robalobadob/linkdle/internal/httpserver"
	"github.com/robalobadob/linkdle/internal/store"
	"github.com/robalobadob/linkdle/internal/words"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cmd := &cli.Command{
		Name:   "linkdle",
		Usage:  "Daily word-chain puzzle server",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	setLogLevel(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := migrate(ctx, db, assets.Migrations()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	catalog, err := words.LoadCatalog(cfg.Daily.PuzzlesFile)
	if err != nil {
		return err
	}

	snapshots, closeSnapshots, err := openSnapshots(cfg.Cache, db)
	if err != nil {
		return fmt.Errorf("open cache snapshots: %w", err)
	}
	defer func() {
		if err := closeSnapshots(); err != nil {
			log.Warn().Err(err).Msg("close cache snapshots")
		}
	}()

	c := newCaches(cfg.Cache, snapshots, log.Logger)
	cache.LoadAll(ctx, c.all()...)

	pipeline, err := newPipeline(cfg.Providers, c, log.Logger)
	if err != nil {
		return err
	}

	srv := httpserver.New(cfg, store.NewMemoryStore(cfg.Cache.Sessions.Capacity, cfg.Cache.Sessions.TTL), db, pipeline, catalog)
	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().
			Str("addr", httpServer.Addr).
			Int("puzzles", catalog.Len()).
			Str("cache_persist", cfg.Cache.Persist).
			Msg("starting linkdle server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if snapshots != nil && cfg.Cache.SaveInterval > 0 {
		g.Go(func() error {
			t := time.NewTicker(cfg.Cache.SaveInterval)
			defer t.Stop()
			for {
				select {
				case <-gCtx.Done():
					return nil
				case <-t.C:
					saveCaches(gCtx, c)
				}
			}
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http server shutdown")
		}
		if snapshots != nil {
			saveCaches(shutdownCtx, c)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

// setLogLevel applies the configured global level; empty means info.
func setLogLevel(level string) {
	if level == "" {
		level = zerolog.LevelInfoValue
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		log.Warn().Str("level", level).Msg("unknown log level; using info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
