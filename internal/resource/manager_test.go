package resource

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestCheckNow(t *testing.T) {
	rm := NewResourceManagerService(map[string]interface{}{"heartbeat_interval": "1h"})
	rm.AddResource("postgres", pingFunc(func(context.Context) error { return errors.New("connection refused") }))
	rm.AddResource("store", pingFunc(func(context.Context) error { return nil }))
	rm.AddResource("config", "not pingable")

	got := rm.CheckNow(context.Background())
	if len(got) != 2 {
		t.Fatalf("checked %d resources, want 2", len(got))
	}
	if got["store"].Healthy != true || got["postgres"].Healthy || got["postgres"].Error != "connection refused" {
		t.Errorf("statuses = %+v", got)
	}
	if !reflect.DeepEqual(rm.Health(), got) {
		t.Error("Health should return the last check")
	}

	if keys := rm.ListResources(); !reflect.DeepEqual(keys, []string{"config", "postgres", "store"}) {
		t.Errorf("ListResources = %v", keys)
	}
}

func TestStartStop(t *testing.T) {
	rm := NewResourceManagerService(map[string]interface{}{"heartbeat_interval": 1})
	if rm.heartbeatInterval.Seconds() != 1 {
		t.Errorf("interval = %s", rm.heartbeatInterval)
	}
	if err := rm.Start(); err != nil {
		t.Fatal(err)
	}
	if err := rm.Stop(); err != nil {
		t.Fatal(err)
	}
}
