package appmanager

import (
	"os"
	"path/filepath"
	"testing"

	ledgerapi "ContabilidadSaas/api/ledger"
	"ContabilidadSaas/internal/blob"
	"ContabilidadSaas/internal/resource"
	"ContabilidadSaas/internal/store/memory"
)

const servicesYAML = `services:
  - name: cron
    start_order: 4
    config:
      sweep_schedule: "@every 1h"
      retention_hours: 12
  - name: ledger
    start_order: 3
    config:
      port: 18143
  - name: resourcemanager
    start_order: 2
    config:
      heartbeat_interval: "1h"
  - name: metrics
    start_order: 5
`

func TestLoadServiceSequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "services.yaml")
	if err := os.WriteFile(path, []byte(servicesYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	seq, err := LoadServiceSequence(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"resourcemanager", "ledger", "cron", "metrics"}
	if len(seq) != len(want) {
		t.Fatalf("got %d services, want %d", len(seq), len(want))
	}
	for i, name := range want {
		if seq[i].Name != name {
			t.Errorf("seq[%d] = %s, want %s", i, seq[i].Name, name)
		}
	}
	if seq[1].Config["port"] != 18143 {
		t.Errorf("ledger port = %v", seq[1].Config["port"])
	}

	if _, err := LoadServiceSequence(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestAutoRegisterServices(t *testing.T) {
	blobs, err := blob.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	SetStore(memory.New())
	SetBlobStore(blobs)
	t.Cleanup(func() {
		SetStore(nil)
		SetBlobStore(nil)
	})

	path := filepath.Join(t.TempDir(), "services.yaml")
	if err := os.WriteFile(path, []byte(servicesYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	seq, err := LoadServiceSequence(path)
	if err != nil {
		t.Fatal(err)
	}

	am := NewAppManager()
	am.AutoRegisterServices(seq)
	if len(am.services) != 3 {
		t.Fatalf("registered %d services, want 3", len(am.services))
	}
	if _, ok := am.GetServiceByName("ledger").(*ledgerapi.LedgerService); !ok {
		t.Error("ledger service not registered")
	}
	rm, ok := am.GetServiceByName("resourcemanager").(*resource.ResourceManager)
	if !ok {
		t.Fatal("resource manager not registered")
	}
	keys := rm.ListResources()
	if len(keys) != 2 || keys[0] != "blobs" || keys[1] != "store" {
		t.Errorf("resources = %v", keys)
	}
	if am.GetServiceByName("metrics") != nil {
		t.Error("unknown service should be skipped")
	}
}
