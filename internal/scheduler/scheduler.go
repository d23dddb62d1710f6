package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/RandySimanca/avicola/internal/config"
	"github.com/RandySimanca/avicola/internal/export/sheets"
	"github.com/RandySimanca/avicola/internal/outbox"
	"github.com/RandySimanca/avicola/internal/service/reporting"
	"github.com/RandySimanca/avicola/pkg/probe"
)

const syncedRetention = 7 * 24 * time.Hour

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron         *cron.Cron
	submitter    *outbox.Submitter
	prober       *probe.Prober
	reportingSvc *reporting.Service
	exporter     sheets.Exporter
	cfg          config.Config
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance. The exporter may be nil when
// the sheets integration is not configured.
func NewScheduler(cfg config.Config, submitter *outbox.Submitter, prober *probe.Prober, reportingSvc *reporting.Service, exporter sheets.Exporter, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	// robfig/cron/v3 default parser is standard cron (5 fields: min, hour, dom, month, dow).
	c := cron.New()

	return &Scheduler{
		cron:         c,
		submitter:    submitter,
		prober:       prober,
		reportingSvc: reportingSvc,
		exporter:     exporter,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler")

	if _, err := s.cron.AddFunc(s.cfg.Jobs.SyncCron, s.replayOutbox); err != nil {
		s.logger.Error("failed to schedule outbox replay", zap.Error(err))
	}

	if s.exporter != nil {
		if _, err := s.cron.AddFunc(s.cfg.Jobs.ExportCron, s.exportDailySummary); err != nil {
			s.logger.Error("failed to schedule summary export", zap.Error(err))
		}
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) replayOutbox() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if !s.prober.Online(ctx) {
		s.logger.Debug("skipping outbox replay, device offline")
		return
	}

	if _, _, err := s.submitter.ReplayAll(ctx); err != nil {
		s.logger.Error("outbox replay aborted", zap.Error(err))
		return
	}

	if err := s.submitter.Queue().CleanSynced(syncedRetention); err != nil {
		s.logger.Warn("failed cleaning synced outbox entries", zap.Error(err))
	}
}

func (s *Scheduler) exportDailySummary() {
	s.logger.Info("exporting daily summary")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	summary, err := s.reportingSvc.GlobalSummary(ctx)
	if err != nil {
		s.logger.Error("failed to build global summary", zap.Error(err))
		return
	}

	kpis, err := s.reportingSvc.GlobalKPIs(ctx)
	if err != nil {
		s.logger.Error("failed to build global kpis", zap.Error(err))
		return
	}

	if err := s.exporter.AppendSummary(ctx, *summary, *kpis); err != nil {
		s.logger.Error("failed to export summary", zap.Error(err))
		return
	}

	s.logger.Info("daily summary exported")
}
