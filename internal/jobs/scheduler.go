package jobs

import (
	"errors"
	"log"
	"time"

	"ContabilidadSaas/internal/blob"
	"ContabilidadSaas/internal/logger"
	"ContabilidadSaas/internal/serviceiface"

	"github.com/robfig/cron/v3"
)

type CronService struct {
	config map[string]interface{}
	blobs  blob.Store
	refs   RefLister
	cron   *cron.Cron
}

func NewCronService(cfg map[string]interface{}, blobs blob.Store, refs RefLister) serviceiface.Service {
	return &CronService{
		config: cfg,
		blobs:  blobs,
		refs:   refs,
	}
}

func (s *CronService) Name() string {
	return "cron"
}

func (s *CronService) Start() error {
	if s.blobs == nil || s.refs == nil {
		return errors.New("cron service needs a blob store and a record store")
	}
	log.Println("Starting cron service...")

	sweepConfig := NewDefaultSweepConfig()
	if s.config != nil {
		if schedule, ok := s.config["sweep_schedule"].(string); ok && schedule != "" {
			sweepConfig.Schedule = schedule
		}
		if hours, ok := s.config["retention_hours"].(int); ok && hours > 0 {
			sweepConfig.Retention = time.Duration(hours) * time.Hour
		}
		if tz, ok := s.config["timezone"].(string); ok && tz != "" {
			sweepConfig.TimeZone = tz
		}
	}

	c, err := RunBlobSweeper(sweepConfig, s.blobs, s.refs)
	if err != nil {
		return err
	}
	s.cron = c

	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("Blob sweeper scheduled: " + sweepConfig.Schedule)
	}
	log.Println("Cron service started, blob sweeper scheduled")
	return nil
}

func (s *CronService) Stop() error {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	log.Println("Cron service stopped.")
	return nil
}
