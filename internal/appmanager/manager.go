package appmanager

import (
	"fmt"
	"os"
	"sort"
	"sync"

	ledgerapi "ContabilidadSaas/api/ledger"
	"ContabilidadSaas/internal/blob"
	"ContabilidadSaas/internal/ingest"
	"ContabilidadSaas/internal/jobs"
	"ContabilidadSaas/internal/logger"
	"ContabilidadSaas/internal/resource"
	"ContabilidadSaas/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"
)

// RecordStore is what the services need from the ledger store. Both the
// PostgreSQL and the in-memory store satisfy it.
type RecordStore interface {
	ingest.Store
	ledgerapi.Repository
	jobs.RefLister
	serviceiface.Pinger
}

var (
	store       RecordStore
	blobStore   blob.Store
	pgxPool     *pgxpool.Pool
	maxUploadMB int
)

func SetStore(s RecordStore) {
	store = s
}

func SetBlobStore(b blob.Store) {
	blobStore = b
}

func SetPgxPool(pool *pgxpool.Pool) {
	pgxPool = pool
}

func SetMaxUploadMB(mb int) {
	maxUploadMB = mb
}

var serviceConstructors = map[string]func(map[string]interface{}) serviceiface.Service{
	"logger": func(cfg map[string]interface{}) serviceiface.Service {
		return logger.NewLoggerService(cfg)
	},
	"resourcemanager": func(cfg map[string]interface{}) serviceiface.Service {
		return resource.NewResourceManagerService(cfg)
	},
	"ledger": func(cfg map[string]interface{}) serviceiface.Service {
		deps := ledgerapi.Deps{MaxUploadMB: maxUploadMB}
		if store != nil && blobStore != nil {
			deps.Ingestor = ingest.New(store, blobStore)
			deps.Records = store
		}
		return ledgerapi.NewLedgerService(cfg, deps)
	},
	"cron": func(cfg map[string]interface{}) serviceiface.Service {
		var refs jobs.RefLister
		if store != nil {
			refs = store
		}
		return jobs.NewCronService(cfg, blobStore, refs)
	},
}

// ------------------- MANAGER -------------------

type AppManager struct {
	services []serviceiface.Service
	mu       sync.Mutex
}

func NewAppManager() *AppManager {
	return &AppManager{
		services: make([]serviceiface.Service, 0),
	}
}

func (am *AppManager) RegisterService(s serviceiface.Service) {
	am.mu.Lock()
	defer am.mu.Unlock()
	am.services = append(am.services, s)
}

func (am *AppManager) StartAll() error {
	am.mu.Lock()
	defer am.mu.Unlock()

	// First pass: start all except resourcemanager
	for _, service := range am.services {
		if service.Name() == "resourcemanager" {
			continue
		}
		fmt.Println("Starting service:", service.Name())
		if err := service.Start(); err != nil {
			return fmt.Errorf("failed to start service %s: %w", service.Name(), err)
		}
	}

	// resourcemanager last, once every resource is registered
	for _, service := range am.services {
		if service.Name() == "resourcemanager" {
			fmt.Println("Starting service:", service.Name())
			if err := service.Start(); err != nil {
				return fmt.Errorf("failed to start service %s: %w", service.Name(), err)
			}
		}
	}
	return nil
}

func (am *AppManager) StopAll() error {
	am.mu.Lock()
	defer am.mu.Unlock()
	var firstErr error
	for i := len(am.services) - 1; i >= 0; i-- {
		svc := am.services[i]
		if err := svc.Stop(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to stop service %s: %w", svc.Name(), err)
		}
	}
	return firstErr
}

// ------------------- YAML CONFIG -------------------

type ServiceSequencer struct {
	Services []ServiceConfig `yaml:"services"`
}

type ServiceConfig struct {
	Name       string                 `yaml:"name"`
	StartOrder int                    `yaml:"start_order"`
	Config     map[string]interface{} `yaml:"config"`
}

func LoadServiceSequence(path string) ([]ServiceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var seq ServiceSequencer
	if err := yaml.Unmarshal(data, &seq); err != nil {
		return nil, err
	}

	// sort by start_order
	sort.SliceStable(seq.Services, func(i, j int) bool {
		return seq.Services[i].StartOrder < seq.Services[j].StartOrder
	})

	return seq.Services, nil
}

// AutoRegisterServices builds every known service named in configs and wires
// the shared resources into the resource manager.
func (am *AppManager) AutoRegisterServices(configs []ServiceConfig) {
	for _, svc := range configs {
		if constructor, ok := serviceConstructors[svc.Name]; ok {
			am.RegisterService(constructor(svc.Config))
		} else {
			fmt.Println("Unknown service in sequence:", svc.Name)
		}
	}

	var rm *resource.ResourceManager
	for _, svc := range am.services {
		switch s := svc.(type) {
		case *logger.LoggerService:
			logger.SetGlobalLogger(s)
		case *resource.ResourceManager:
			rm = s
		}
	}
	if rm == nil {
		return
	}
	if store != nil {
		rm.AddResource("store", store)
	}
	if blobStore != nil {
		rm.AddResource("blobs", blobStore)
	}
	if pgxPool != nil {
		rm.AddResource("postgres", pgxPool)
	}
	if l, ok := am.GetServiceByName("ledger").(*ledgerapi.LedgerService); ok {
		l.SetHealth(rm)
	}
}

func (am *AppManager) GetServiceByName(name string) serviceiface.Service {
	for _, svc := range am.services {
		if svc.Name() == name {
			return svc
		}
	}
	return nil
}
