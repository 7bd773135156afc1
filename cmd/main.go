package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ContabilidadSaas/internal/appmanager"
	"ContabilidadSaas/internal/blob"
	"ContabilidadSaas/internal/config"
	"ContabilidadSaas/internal/store/memory"
	"ContabilidadSaas/internal/store/postgres"
)

// initStore migrates and connects PostgreSQL when configured, otherwise
// falls back to the in-memory store.
func initStore(ctx context.Context, cfg *config.Config) (appmanager.RecordStore, func(), error) {
	if !cfg.HasDatabase() {
		log.Println("DB_HOST/DB_NAME/DB_USER not set, using in-memory ledger store")
		return memory.New(), func() {}, nil
	}

	db, err := postgres.OpenSQL(cfg.DSN())
	if err != nil {
		return nil, nil, err
	}
	err = postgres.Migrate(ctx, db)
	db.Close()
	if err != nil {
		return nil, nil, err
	}

	pool, err := postgres.Connect(ctx, cfg.DSN())
	if err != nil {
		return nil, nil, err
	}
	appmanager.SetPgxPool(pool)
	return postgres.New(pool), pool.Close, nil
}

func initBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, func(), error) {
	switch cfg.BlobBackend {
	case config.BlobS3:
		s, err := blob.NewS3(ctx, cfg.BlobS3Bucket, cfg.BlobS3Region, cfg.BlobPrefix)
		return s, func() {}, err
	case config.BlobGCS:
		g, err := blob.NewGCS(ctx, cfg.BlobGCSBucket, cfg.BlobPrefix)
		if err != nil {
			return nil, nil, err
		}
		return g, func() { g.Close() }, nil
	default:
		l, err := blob.NewLocal(cfg.BlobDir)
		return l, func() {}, err
	}
}

func main() {
	// Load .env for local dev
	_ = godotenv.Load(".env", "../.env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, closeStore, err := initStore(ctx, cfg)
	if err != nil {
		cancel()
		log.Fatal("failed to initialise ledger store:", err)
	}
	blobs, closeBlobs, err := initBlobStore(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatal("failed to initialise blob store:", err)
	}
	defer closeStore()
	defer closeBlobs()

	appmanager.SetStore(store)
	appmanager.SetBlobStore(blobs)
	appmanager.SetMaxUploadMB(cfg.MaxUploadMB)

	manager := appmanager.NewAppManager()

	// Load service configs from YAML
	servicesCfg, err := appmanager.LoadServiceSequence(cfg.ServicesFile)
	if err != nil {
		log.Fatal("failed to load service sequence:", err)
	}
	for i := range servicesCfg {
		if servicesCfg[i].Name != "ledger" {
			continue
		}
		if servicesCfg[i].Config == nil {
			servicesCfg[i].Config = map[string]interface{}{}
		}
		if _, ok := servicesCfg[i].Config["port"]; !ok || os.Getenv("LEDGER_PORT") != "" {
			servicesCfg[i].Config["port"] = cfg.LedgerPort
		}
	}

	manager.AutoRegisterServices(servicesCfg)

	if err := manager.StartAll(); err != nil {
		log.Fatal("failed to start:", err)
	}

	// Graceful shutdown handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	if err := manager.StopAll(); err != nil {
		log.Println("failed to stop:", err)
	}
}
