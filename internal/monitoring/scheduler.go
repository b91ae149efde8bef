// Package monitoring runs the background jobs of the application. Currently
// that is the automatic backup schedule.
package monitoring

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// BackupRunner creates a backup archive and returns its filename.
type BackupRunner interface {
	Create(ctx context.Context) (string, error)
}

// Scheduler runs automatic backups on a cron schedule.
type Scheduler struct {
	catalog BackupRunner
	spec    string
	cron    *cron.Cron
}

// NewScheduler creates a scheduler. An empty spec disables automatic
// backups.
func NewScheduler(catalog BackupRunner, spec string) *Scheduler {
	return &Scheduler{catalog: catalog, spec: spec}
}

// Start registers the backup job and starts the cron loop. It is a no-op
// when no schedule is configured.
func (s *Scheduler) Start() error {
	if s.spec == "" {
		log.Info().Msg("Automatic backups disabled, no schedule configured")
		return nil
	}

	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.spec, s.runBackup)
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Info().Str("schedule", s.spec).Msg("Automatic backups scheduled")
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runBackup() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	start := time.Now()
	name, err := s.catalog.Create(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Scheduled backup failed")
		return
	}
	log.Info().Str("backup", name).Dur("took", time.Since(start)).Msg("Scheduled backup completed")
}
