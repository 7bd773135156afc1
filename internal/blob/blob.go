// Package blob stores the original uploaded files.
package blob

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidRef = errors.New("invalid blob reference")

// Object describes a stored blob.
type Object struct {
	Ref     string
	Size    int64
	ModTime time.Time
}

// Store keeps uploaded files. Refs returned by Put are what Delete and List
// speak about.
type Store interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
	Delete(ctx context.Context, ref string) error
	List(ctx context.Context) ([]Object, error)
}

// NewName builds a collision-resistant stored name for an upload: UTC
// timestamp, random suffix and the original extension.
func NewName(original string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	ext := strings.ToLower(filepath.Ext(original))
	return now.UTC().Format("20060102T150405Z") + "_" + suffix + ext
}

// validName rejects refs that could escape the store root.
func validName(ref string) bool {
	if ref == "" || strings.ContainsAny(ref, `/\`) || ref == "." || ref == ".." {
		return false
	}
	return true
}
