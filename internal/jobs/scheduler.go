package jobs

import (
	"context"
	"time"

	"stockdesk/pkg/config"
	"stockdesk/pkg/logger"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler manages the background sweeps.
type Scheduler struct {
	scheduler      gocron.Scheduler
	reconciliation *ReconciliationSweep
	lowStock       *LowStockAlertService
	cfg            config.JobsConfig
	log            *logger.Logger
}

func NewScheduler(reconciliation *ReconciliationSweep, lowStock *LowStockAlertService, cfg config.JobsConfig, log *logger.Logger) (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		scheduler:      scheduler,
		reconciliation: reconciliation,
		lowStock:       lowStock,
		cfg:            cfg,
		log:            log,
	}
	if err := s.registerJobs(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) registerJobs() error {
	_, err := s.scheduler.NewJob(
		gocron.CronJob(s.cfg.ReconciliationCron, false),
		gocron.NewTask(s.runReconciliation),
		gocron.WithName("stock-reconciliation"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	_, err = s.scheduler.NewJob(
		gocron.DurationJob(time.Duration(s.cfg.LowStockEveryMin)*time.Minute),
		gocron.NewTask(s.runLowStock),
		gocron.WithName("low-stock-alerts"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	return err
}

func (s *Scheduler) runReconciliation() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	if err := s.reconciliation.Run(ctx); err != nil {
		s.log.Error().Err(err).Msg("reconciliation sweep failed")
	}
}

func (s *Scheduler) runLowStock() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := s.lowStock.Run(ctx); err != nil {
		s.log.Error().Err(err).Msg("low stock sweep failed")
	}
}

func (s *Scheduler) Start() {
	s.log.Info().Msg("starting background job scheduler")
	s.scheduler.Start()
}

func (s *Scheduler) Stop() error {
	s.log.Info().Msg("stopping background job scheduler")
	return s.scheduler.Shutdown()
}
