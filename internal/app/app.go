package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/InonELGABSI/housescanner/internal/common"
	"github.com/InonELGABSI/housescanner/internal/interfaces"
	"github.com/InonELGABSI/housescanner/internal/queue"
	"github.com/InonELGABSI/housescanner/internal/services/analysis"
	"github.com/InonELGABSI/housescanner/internal/services/checklists"
	"github.com/InonELGABSI/housescanner/internal/services/events"
	"github.com/InonELGABSI/housescanner/internal/services/scans"
	"github.com/InonELGABSI/housescanner/internal/services/scheduler"
	"github.com/InonELGABSI/housescanner/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager
	QueueManager   interfaces.QueueManager
	EventService   interfaces.EventService

	ChecklistService *checklists.Service
	ScanService      *scans.Service
	AnalysisService  interfaces.AnalysisService
	Processor        *scans.Processor
	Scheduler        *scheduler.Service
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Storage
	storageManager, err := badger.NewManager(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.StorageManager = storageManager

	// Queue (shares the storage manager's Badger connection)
	badgerManager, ok := storageManager.(*badger.Manager)
	if !ok {
		return nil, fmt.Errorf("unexpected storage manager type")
	}

	visibilityTimeout, err := time.ParseDuration(cfg.Queue.VisibilityTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid queue visibility_timeout %q: %w", cfg.Queue.VisibilityTimeout, err)
	}

	queueManager, err := queue.NewBadgerManager(
		badgerManager.DB().Store().Badger(),
		cfg.Queue.QueueName,
		visibilityTimeout,
		cfg.Queue.MaxReceive,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize queue: %w", err)
	}
	app.QueueManager = queueManager

	// Events
	app.EventService = events.NewService(logger)

	// Services
	app.ChecklistService = checklists.NewService(storageManager.ChecklistStorage(), logger)
	app.ScanService = scans.NewService(
		storageManager.ScanStorage(),
		storageManager.HouseStorage(),
		queueManager,
		logger,
	)

	requestTimeout, err := time.ParseDuration(cfg.Analysis.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid analysis request_timeout %q: %w", cfg.Analysis.RequestTimeout, err)
	}
	retryBackoff, err := time.ParseDuration(cfg.Analysis.RetryBackoff)
	if err != nil {
		return nil, fmt.Errorf("invalid analysis retry_backoff %q: %w", cfg.Analysis.RetryBackoff, err)
	}
	app.AnalysisService = analysis.NewClient(
		cfg.Analysis.BaseURL,
		cfg.Analysis.APIKey,
		analysis.WithLogger(logger),
		analysis.WithRateLimit(cfg.Analysis.RateLimit),
		analysis.WithRetries(cfg.Analysis.MaxRetries, retryBackoff),
		analysis.WithHTTPClient(&http.Client{Timeout: requestTimeout}),
	)

	// Processor
	app.Processor = scans.NewProcessor(
		queueManager,
		storageManager.ScanStorage(),
		storageManager.HouseStorage(),
		app.ChecklistService,
		app.AnalysisService,
		app.EventService,
		logger,
		cfg.Queue.Concurrency,
	)

	// Maintenance scheduler
	app.Scheduler, err = scheduler.NewService(&cfg.Scheduler, storageManager.ScanStorage(), queueManager, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	return app, nil
}

// Start starts background processing. Services must be fully wired first.
func (a *App) Start() error {
	a.Processor.Start()
	if err := a.Scheduler.Start(); err != nil {
		a.Processor.Stop()
		return err
	}
	a.Logger.Info().Msg("Application started")
	return nil
}

// Shutdown stops background work and closes connections in reverse order
func (a *App) Shutdown() {
	a.Logger.Info().Msg("Shutting down application...")

	a.Scheduler.Stop()
	a.Processor.Stop()

	if err := a.EventService.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close event service")
	}
	if err := a.QueueManager.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close queue manager")
	}
	if err := a.StorageManager.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close storage")
	}

	a.Logger.Info().Msg("Application shutdown complete")
}
