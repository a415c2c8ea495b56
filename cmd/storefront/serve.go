package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/tbourn/marketplace-state/internal/catalog"
	"github.com/tbourn/marketplace-state/internal/config"
	httpapi "github.com/tbourn/marketplace-state/internal/http"
	"github.com/tbourn/marketplace-state/internal/observability"
	"github.com/tbourn/marketplace-state/internal/repo"
	"github.com/tbourn/marketplace-state/internal/session"
	"github.com/tbourn/marketplace-state/internal/storage"
	"github.com/tbourn/marketplace-state/internal/stores"
)

// janitorInterval paces idempotency purges and idle session sweeps.
const janitorInterval = time.Minute

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Start the HTTP API",
		Action: runServe,
	}
}

// backend bundles the slot provider with the database that holds
// idempotency records.
type backend struct {
	provider storage.Provider
	db       *gorm.DB
	close    func()
}

// openBackend builds the slot provider selected by cfg. Idempotency records
// always live in SQL; non-SQL backends get a private in-memory database.
func openBackend(ctx context.Context, cfg config.StorageConfig) (*backend, error) {
	kind := storage.Kind(cfg.Backend)
	if err := kind.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %q", err, cfg.Backend)
	}

	if kind == storage.KindSQLite {
		db, err := openMigrated(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return &backend{provider: storage.NewSQLStore(db), db: db, close: func() { closeDB(db) }}, nil
	}

	db, err := openMigrated("file:idempotency?mode=memory&cache=shared")
	if err != nil {
		return nil, err
	}
	if kind == storage.KindMemory {
		return &backend{
			provider: storage.NewMemoryStore(storage.WithMaxBytes(cfg.MemoryMaxBytes)),
			db:       db,
			close:    func() { closeDB(db) },
		}, nil
	}

	rdb, err := storage.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		closeDB(db)
		return nil, err
	}
	return &backend{
		provider: storage.NewRedisStore(rdb, storage.WithRedisTTL(cfg.RedisTTL)),
		db:       db,
		close: func() {
			_ = rdb.Close()
			closeDB(db)
		},
	}, nil
}

func openMigrated(path string) (*gorm.DB, error) {
	db, err := repo.OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// chatOptions turns the chat configuration into store options.
func chatOptions(cfg config.ChatConfig) ([]stores.ChatOption, error) {
	opts := []stores.ChatOption{stores.WithMaxBodyRunes(cfg.MaxMessageRunes)}
	if cfg.RepliesFile != "" {
		replies, err := stores.LoadReplies(cfg.RepliesFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, stores.WithReplies(replies))
	}
	return opts, nil
}

// refreshCatalog runs one refresh and logs its outcome.
func refreshCatalog(ctx context.Context, svc *catalog.Service) {
	rep, err := svc.Refresh(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("catalog refresh failed; keeping previous products")
		return
	}
	log.Info().
		Int("fetched", rep.Fetched).
		Int("skipped", rep.Skipped).
		Int("collisions", rep.Collisions).
		Time("refreshed_at", svc.RefreshedAt()).
		Msg("catalog refreshed")
}

// janitor purges expired idempotency records and sweeps idle sessions until
// ctx is done.
func janitor(ctx context.Context, db *gorm.DB, reg *session.Registry, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n, err := repo.PurgeExpiredIdempotency(ctx, db, now.UTC()); err != nil {
				log.Warn().Err(err).Msg("idempotency purge failed")
			} else if n > 0 {
				log.Debug().Int64("purged", n).Msg("expired idempotency keys removed")
			}
			if n := reg.Sweep(); n > 0 {
				log.Debug().Int("evicted", n).Msg("idle sessions dropped")
			}
		}
	}
}

func runServe(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	be, err := openBackend(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer be.close()

	chatOpts, err := chatOptions(cfg.Chat)
	if err != nil {
		return err
	}
	reg := session.NewRegistry(be.provider,
		session.WithTTL(cfg.SessionTTL),
		session.WithChatOptions(chatOpts...),
	)

	deps := httpapi.Deps{Sessions: reg, DB: be.db}
	if cfg.Catalog.BaseURL != "" {
		svc := catalog.NewService(catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout))
		refreshCatalog(ctx, svc)
		if cfg.Catalog.RefreshInterval > 0 {
			go func() {
				t := time.NewTicker(cfg.Catalog.RefreshInterval)
				defer t.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-t.C:
						refreshCatalog(ctx, svc)
					}
				}
			}()
		}
		deps.Catalog = svc
	}

	go janitor(ctx, be.db, reg, janitorInterval)

	r := gin.New()
	httpapi.RegisterRoutes(r, deps, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("storage", cfg.Storage.Backend).
			Bool("catalog", deps.Catalog != nil).
			Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}
