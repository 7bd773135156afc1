package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Local stores blobs as files in one directory.
type Local struct {
	dir string
}

func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir %s: %w", dir, err)
	}
	return &Local{dir: dir}, nil
}

func (l *Local) Put(ctx context.Context, name string, data []byte) (string, error) {
	if !validName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRef, name)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(l.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp blob: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write blob %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close blob %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(l.dir, name)); err != nil {
		return "", fmt.Errorf("store blob %s: %w", name, err)
	}
	return name, nil
}

func (l *Local) Delete(ctx context.Context, ref string) error {
	if !validName(ref) {
		return fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	err := os.Remove(filepath.Join(l.dir, ref))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob %s: %w", ref, err)
	}
	return nil
}

func (l *Local) List(ctx context.Context) ([]Object, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("list blob dir: %w", err)
	}
	var out []Object
	for _, e := range entries {
		if e.IsDir() || e.Name()[0] == '.' {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Object{Ref: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	return out, nil
}

// Ping checks that the blob directory is still there.
func (l *Local) Ping(ctx context.Context) error {
	info, err := os.Stat(l.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("blob dir %s is not a directory", l.dir)
	}
	return nil
}
