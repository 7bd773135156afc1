package jobs

import (
	"context"
	"fmt"
	"time"

	"ContabilidadSaas/internal/blob"
	"ContabilidadSaas/internal/config"
	"ContabilidadSaas/internal/logger"

	"github.com/robfig/cron/v3"
)

// RefLister reports which stored blobs are still referenced by a batch.
type RefLister interface {
	StoredRefs(ctx context.Context) (map[string]struct{}, error)
}

// SweepConfig holds configuration for the orphan blob sweep.
type SweepConfig struct {
	Schedule  string
	Retention time.Duration
	TimeZone  string
}

func NewDefaultSweepConfig() *SweepConfig {
	return &SweepConfig{
		Schedule:  config.DefaultSweepCron,
		Retention: config.DefaultBlobRetainHr * time.Hour,
		TimeZone:  config.DefaultTimeZone,
	}
}

// SweepOrphanBlobs deletes blobs older than retention that no batch
// references. Blobs younger than retention may belong to an upload still in
// flight and are left alone.
func SweepOrphanBlobs(ctx context.Context, blobs blob.Store, refs RefLister, retention time.Duration, now time.Time) (int, error) {
	objects, err := blobs.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list blobs: %w", err)
	}
	live, err := refs.StoredRefs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list stored refs: %w", err)
	}

	cutoff := now.Add(-retention)
	removed := 0
	for _, obj := range objects {
		if _, ok := live[obj.Ref]; ok {
			continue
		}
		if obj.ModTime.After(cutoff) {
			continue
		}
		if err := blobs.Delete(ctx, obj.Ref); err != nil {
			return removed, fmt.Errorf("delete blob %s: %w", obj.Ref, err)
		}
		removed++
	}
	return removed, nil
}

// RunBlobSweeper schedules SweepOrphanBlobs and returns the running cron.
func RunBlobSweeper(cfg *SweepConfig, blobs blob.Store, refs RefLister) (*cron.Cron, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = config.DefaultSweepCron
	}
	if cfg.Retention <= 0 {
		cfg.Retention = config.DefaultBlobRetainHr * time.Hour
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = config.DefaultTimeZone
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		loc = time.UTC
	}

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		n, err := SweepOrphanBlobs(ctx, blobs, refs, cfg.Retention, time.Now())
		if err != nil {
			logger.Base().Error().Err(err).Int("removed", n).Msg("[SWEEP] orphan blob sweep failed")
			if logger.GlobalLogger != nil {
				logger.GlobalLogger.LogAudit(fmt.Sprintf("Blob sweep failed: %v", err))
			}
			return
		}
		logger.Base().Info().Int("removed", n).Msg("[SWEEP] orphan blob sweep done")
	})
	if err != nil {
		return nil, fmt.Errorf("unable to schedule blob sweeper: %v", err)
	}

	c.Start()
	return c, nil
}
