package blob

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"
)

func TestNewName(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 30, 0, 0, time.FixedZone("CLT", -3*3600))
	name := NewName("Movimientos Enero.XLSX", now)

	re := regexp.MustCompile(`^20250115T133000Z_[0-9a-f]{12}\.xlsx$`)
	if !re.MatchString(name) {
		t.Errorf("NewName = %q", name)
	}
	if other := NewName("Movimientos Enero.XLSX", now); other == name {
		t.Error("names for the same upload instant must differ")
	}
}

func TestLocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocal(dir)
	if err != nil {
		t.Fatal(err)
	}

	ref, err := store.Put(ctx, "a.csv", []byte("x,y\n"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if ref != "a.csv" {
		t.Errorf("ref = %q", ref)
	}
	data, err := os.ReadFile(filepath.Join(dir, ref))
	if err != nil || string(data) != "x,y\n" {
		t.Fatalf("stored content = %q, %v", data, err)
	}

	objs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(objs) != 1 || objs[0].Ref != "a.csv" || objs[0].Size != 4 {
		t.Errorf("List = %+v", objs)
	}

	if err := store.Delete(ctx, ref); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, ref); err != nil {
		t.Errorf("deleting a missing blob should succeed, got %v", err)
	}
	if objs, _ := store.List(ctx); len(objs) != 0 {
		t.Errorf("List after delete = %+v", objs)
	}
}

func TestLocalRejectsTraversal(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, ref := range []string{"../x", "a/b", "", ".."} {
		if _, err := store.Put(context.Background(), ref, nil); !errors.Is(err, ErrInvalidRef) {
			t.Errorf("Put(%q) error = %v", ref, err)
		}
		if err := store.Delete(context.Background(), ref); !errors.Is(err, ErrInvalidRef) {
			t.Errorf("Delete(%q) error = %v", ref, err)
		}
	}
}

func TestLocalPing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "blobs")
	l, err := NewLocal(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	if err := l.Ping(context.Background()); err == nil {
		t.Error("expected Ping to fail once the directory is gone")
	}
}
