package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"ContabilidadSaas/internal/config"
	"ContabilidadSaas/internal/serviceiface"

	"github.com/gorilla/mux"
)

type LedgerService struct {
	config   map[string]interface{}
	deps     Deps
	server   *http.Server
	serveErr chan error
}

func NewLedgerService(cfg map[string]interface{}, deps Deps) serviceiface.Service {
	return &LedgerService{config: cfg, deps: deps}
}

// SetHealth attaches the checker behind /ledger/health.
func (s *LedgerService) SetHealth(hc HealthChecker) {
	s.deps.Health = hc
}

func (s *LedgerService) Name() string {
	return "ledger"
}

func (s *LedgerService) Start() error {
	if s.deps.Ingestor == nil || s.deps.Records == nil {
		return errors.New("ledger service needs an ingestor and a record repository")
	}
	port := config.DefaultLedgerPort
	if p, ok := s.config["port"].(int); ok && p > 0 {
		port = p
	}
	if s.deps.MaxUploadMB <= 0 {
		s.deps.MaxUploadMB = config.DefaultMaxUploadMB
		if mb, ok := s.config["max_upload_mb"].(int); ok && mb > 0 {
			s.deps.MaxUploadMB = mb
		}
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           NewRouter(s.deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.serveErr = make(chan error, 1)
	go func() {
		log.Printf("Ledger Service started on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[ERROR] Ledger Service failed: %v", err)
			s.serveErr <- err
		}
		close(s.serveErr)
	}()
	return nil
}

func (s *LedgerService) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("ledger shutdown: %w", err)
	}
	return <-s.serveErr
}

// NewRouter mounts the ledger endpoints.
func NewRouter(deps Deps) *mux.Router {
	router := mux.NewRouter()
	sub := router.PathPrefix("/ledger").Subrouter()
	sub.Use(requestLogger)
	sub.HandleFunc("/upload", UploadLedger(deps)).Methods(http.MethodPost)
	sub.HandleFunc("/records", ListRecords(deps.Records)).Methods(http.MethodGet)
	sub.HandleFunc("/records", DeleteRecords(deps.Records)).Methods(http.MethodDelete)
	sub.HandleFunc("/batches", ListBatches(deps.Records)).Methods(http.MethodGet)
	sub.HandleFunc("/health", Health(deps.Health)).Methods(http.MethodGet)
	return router
}
