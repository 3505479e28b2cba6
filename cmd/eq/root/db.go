package root

import (
	"context"
	"fmt"
	"io"
	"os"

	"eduquest/internal/catalog"
	"eduquest/internal/config"
	"eduquest/internal/engine"
	"eduquest/internal/logger"
	"eduquest/internal/storage"
)

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendRedis:
		return storage.NewRedisStore(ctx, storage.RedisOptions{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	case config.BackendMemory:
		return storage.NewMemoryStore(), nil
	default:
		explicit := cfg.Store.DBPath
		if flagDB != "" {
			explicit = flagDB
		}
		path, err := storage.ResolveDBPath(explicit)
		if err != nil {
			return nil, err
		}
		return storage.OpenSQLiteStore(ctx, path)
	}
}

func openCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Content.Dir != "" {
		return catalog.LoadDir(cfg.Content.Dir)
	}
	return catalog.LoadDefault()
}

// openService wires config, store, catalog and rules into a Service that
// prints notifications to out.
func openService(ctx context.Context, out io.Writer) (*engine.Service, func(), error) {
	return openServiceWith(ctx, newCLIPresenter(out, os.Stdin, flagYes))
}

func openServiceWith(ctx context.Context, pres engine.Presenter) (*engine.Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	rules, err := cfg.Rules()
	if err != nil {
		return nil, nil, err
	}
	cat, err := openCatalog(cfg)
	if err != nil {
		return nil, nil, err
	}
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	log = log.With("store", cfg.Store.Backend)

	svc, err := engine.New(ctx, engine.Options{
		Catalog:   cat,
		Gateway:   storage.NewGateway(store, log),
		Presenter: pres,
		Rules:     &rules,
		Log:       log,
	})
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	cleanup := func() {
		if err := svc.Flush(context.Background()); err != nil {
			log.Warn("unsaved changes on exit", "keys", svc.Unsaved(), "err", err)
		}
		_ = store.Close()
		log.Sync()
	}
	return svc, cleanup, nil
}
