package mailing

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// ScheduleConfig drives the built-in cron scheduler. Cron specs accept the
// standard five-field syntax plus @every / @daily descriptors.
type ScheduleConfig struct {
	// SendSpec is how often a dispatch pass runs.
	SendSpec string `env:"MAILING_SEND_CRON" envDefault:"@every 1m"`

	// PurgeSpec is how often old mails are purged. Empty disables purging.
	PurgeSpec string `env:"MAILING_PURGE_CRON" envDefault:"@daily"`

	// PurgeAfterDays is the retention window for purge runs.
	PurgeAfterDays int `env:"MAILING_PURGE_AFTER_DAYS" envDefault:"90"`
}

// Scheduler periodically invokes the dispatch engine and the purge job.
// It replaces the cron-invoked management commands of a typical deployment:
// an embedding application that already has a job runner can skip it and
// call SendQueuedMails / PurgeMails directly.
type Scheduler struct {
	cron *cron.Cron
	svc  *Service
	log  *slog.Logger
}

// NewScheduler wires the service's periodic jobs onto a cron runner.
func NewScheduler(svc *Service, cfg ScheduleConfig) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(),
		svc:  svc,
		log:  svc.log,
	}

	_, err := s.cron.AddFunc(cfg.SendSpec, func() {
		ctx := context.Background()
		sent, failed, err := svc.SendQueuedMails(ctx)
		if err != nil {
			s.log.Error("dispatch pass failed", slog.String("error", err.Error()))
			return
		}
		if sent > 0 || failed > 0 {
			s.log.Info("dispatch pass complete",
				slog.Int("sent", sent),
				slog.Int("failed", failed))
		}
	})
	if err != nil {
		return nil, err
	}

	if cfg.PurgeSpec != "" {
		_, err := s.cron.AddFunc(cfg.PurgeSpec, func() {
			if _, err := svc.PurgeMails(context.Background(), cfg.PurgeAfterDays, PurgeOptions{}); err != nil {
				s.log.Error("purge failed", slog.String("error", err.Error()))
			}
		})
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Start launches the cron runner in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
