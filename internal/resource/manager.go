package resource

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ContabilidadSaas/internal/logger"
	"ContabilidadSaas/internal/serviceiface"
)

// Status is the outcome of the last health check of a resource.
type Status struct {
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// ResourceManager holds shared resources (database pool, stores) and pings
// those that support it on every heartbeat.
type ResourceManager struct {
	resources         map[string]interface{}
	status            map[string]Status
	mu                sync.RWMutex
	stopChan          chan struct{}
	wg                sync.WaitGroup
	heartbeatInterval time.Duration
	pingTimeout       time.Duration
}

func NewResourceManagerService(cfg map[string]interface{}) *ResourceManager {
	interval := 30 * time.Second
	if val, ok := cfg["heartbeat_interval"]; ok {
		switch v := val.(type) {
		case string:
			if d, err := time.ParseDuration(v); err == nil {
				interval = d
			}
		case int:
			interval = time.Duration(v) * time.Second
		case float64:
			interval = time.Duration(v) * time.Second
		}
	}
	return &ResourceManager{
		resources:         make(map[string]interface{}),
		status:            make(map[string]Status),
		stopChan:          make(chan struct{}),
		heartbeatInterval: interval,
		pingTimeout:       5 * time.Second,
	}
}

func (rm *ResourceManager) Name() string { return "resourcemanager" }

func (rm *ResourceManager) Start() error {
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("ResourceManager started")
	}
	rm.CheckNow(context.Background())
	rm.wg.Add(1)
	go rm.heartbeatLoop()
	return nil
}

func (rm *ResourceManager) Stop() error {
	close(rm.stopChan)
	rm.wg.Wait()
	return nil
}

func (rm *ResourceManager) heartbeatLoop() {
	defer rm.wg.Done()
	ticker := time.NewTicker(rm.heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-rm.stopChan:
			return
		case <-ticker.C:
			rm.CheckNow(context.Background())
		}
	}
}

// CheckNow pings every registered Pinger and records the result.
func (rm *ResourceManager) CheckNow(ctx context.Context) map[string]Status {
	rm.mu.RLock()
	pingers := make(map[string]serviceiface.Pinger)
	for key, r := range rm.resources {
		if p, ok := r.(serviceiface.Pinger); ok {
			pingers[key] = p
		}
	}
	rm.mu.RUnlock()

	results := make(map[string]Status, len(pingers))
	for key, p := range pingers {
		pctx, cancel := context.WithTimeout(ctx, rm.pingTimeout)
		err := p.Ping(pctx)
		cancel()
		st := Status{Healthy: err == nil, CheckedAt: time.Now().UTC()}
		if err != nil {
			st.Error = err.Error()
			logger.Base().Warn().Str("resource", key).Err(err).Msg("[ResourceManager] health check failed")
			if logger.GlobalLogger != nil {
				logger.GlobalLogger.LogAudit(fmt.Sprintf("resource %s unhealthy: %v", key, err))
			}
		}
		results[key] = st
	}

	rm.mu.Lock()
	for key, st := range results {
		rm.status[key] = st
	}
	rm.mu.Unlock()
	return results
}

// Health returns the last recorded status of every pingable resource.
func (rm *ResourceManager) Health() map[string]Status {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	out := make(map[string]Status, len(rm.status))
	for k, v := range rm.status {
		out[k] = v
	}
	return out
}

func (rm *ResourceManager) AddResource(key string, resource interface{}) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.resources[key] = resource
}

func (rm *ResourceManager) ListResources() []string {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	keys := make([]string, 0, len(rm.resources))
	for key := range rm.resources {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
