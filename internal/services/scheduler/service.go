package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/InonELGABSI/housescanner/internal/common"
	"github.com/InonELGABSI/housescanner/internal/interfaces"
	"github.com/InonELGABSI/housescanner/internal/models"
)

// Service runs the periodic maintenance sweep: scans stuck in running beyond
// the stale threshold are failed, and pending scans that never made it onto
// the queue (e.g. after a crash between persist and enqueue) are re-enqueued.
type Service struct {
	scans      interfaces.ScanStorage
	queueMgr   interfaces.QueueManager
	logger     arbor.ILogger
	cron       *cron.Cron
	schedule   string
	staleAfter time.Duration
	enabled    bool
}

// NewService creates a new maintenance scheduler from configuration
func NewService(cfg *common.SchedulerConfig, scans interfaces.ScanStorage, queueMgr interfaces.QueueManager, logger arbor.ILogger) (*Service, error) {
	staleAfter, err := time.ParseDuration(cfg.StaleAfter)
	if err != nil {
		return nil, fmt.Errorf("invalid stale_after duration %q: %w", cfg.StaleAfter, err)
	}

	return &Service{
		scans:      scans,
		queueMgr:   queueMgr,
		logger:     logger,
		cron:       cron.New(),
		schedule:   cfg.Schedule,
		staleAfter: staleAfter,
		enabled:    cfg.Enabled,
	}, nil
}

// Start registers the sweep with the cron scheduler and starts it
func (s *Service) Start() error {
	if !s.enabled {
		s.logger.Info().Msg("Maintenance scheduler disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
		return fmt.Errorf("invalid scheduler cron expression %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.Info().
		Str("schedule", s.schedule).
		Dur("stale_after", s.staleAfter).
		Msg("Maintenance scheduler started")

	return nil
}

// Stop stops the scheduler, waiting for a running sweep to finish
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Maintenance scheduler stopped")
}

// sweep is one maintenance pass over the scan table
func (s *Service) sweep() {
	ctx := context.Background()
	cutoff := time.Now().Add(-s.staleAfter)

	s.failStaleRunning(ctx, cutoff)
	s.requeueStalePending(ctx, cutoff)
}

// failStaleRunning fails running scans whose processing started before the
// cutoff. The worker that owned them is assumed dead.
func (s *Service) failStaleRunning(ctx context.Context, cutoff time.Time) {
	running, err := s.scans.GetScansByStatus(ctx, models.ScanStatusRunning)
	if err != nil {
		s.logger.Error().Err(err).Msg("Sweep failed to list running scans")
		return
	}

	for _, scan := range running {
		if scan.StartedAt == nil || scan.StartedAt.After(cutoff) {
			continue
		}
		s.logger.Warn().
			Str("scan_id", scan.ID).
			Str("started_at", scan.StartedAt.Format(time.RFC3339)).
			Msg("Failing stale running scan")
		if err := s.scans.UpdateScanStatus(ctx, scan.ID, models.ScanStatusFailed, "scan timed out"); err != nil {
			s.logger.Error().Err(err).Str("scan_id", scan.ID).Msg("Failed to fail stale scan")
		}
	}
}

// requeueStalePending re-enqueues pending scans older than the cutoff. The
// queue drops redelivered duplicates for finished scans, and the processor
// skips terminal scans, so a double enqueue is harmless.
func (s *Service) requeueStalePending(ctx context.Context, cutoff time.Time) {
	pending, err := s.scans.GetScansByStatus(ctx, models.ScanStatusPending)
	if err != nil {
		s.logger.Error().Err(err).Msg("Sweep failed to list pending scans")
		return
	}

	for _, scan := range pending {
		if scan.CreatedAt.After(cutoff) {
			continue
		}

		job := &models.ScanJob{ScanID: scan.ID, UserID: scan.UserID}
		payload, err := job.ToJSON()
		if err != nil {
			s.logger.Error().Err(err).Str("scan_id", scan.ID).Msg("Failed to serialize requeue job")
			continue
		}

		msg := interfaces.Message{
			JobID:   scan.ID,
			Type:    "scan",
			Payload: payload,
		}
		if err := s.queueMgr.Enqueue(ctx, msg); err != nil {
			s.logger.Error().Err(err).Str("scan_id", scan.ID).Msg("Failed to requeue stale scan")
			continue
		}

		s.logger.Info().
			Str("scan_id", scan.ID).
			Str("created_at", scan.CreatedAt.Format(time.RFC3339)).
			Msg("Requeued stale pending scan")
	}
}
