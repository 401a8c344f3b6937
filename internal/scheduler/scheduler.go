package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PrassV/Propo-Staging-sub004/internal/config"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultRunTime is used when the configured reindex time cannot be parsed
const DefaultRunTime = "03:00"

// Status describes the scheduler and its most recent reindex
type Status struct {
	Enabled     bool       `json:"enabled"`
	RunTime     string     `json:"run_time"`
	CronSpec    string     `json:"cron_spec"`
	Running     bool       `json:"running"`
	LastRunAt   *time.Time `json:"last_run_at,omitempty"`
	LastIndexed int        `json:"last_indexed"`
	LastError   string     `json:"last_error,omitempty"`
}

// Scheduler runs the nightly search reindex
type Scheduler struct {
	cron    *cron.Cron
	source  PropertySource
	index   BatchIndexer
	config  config.SchedulerConfig
	logger  *zap.SugaredLogger
	timeout time.Duration

	mu        sync.Mutex
	isRunning bool
	inFlight  bool
	status    Status
}

// NewScheduler creates a new scheduler
func NewScheduler(cfg config.SchedulerConfig, source PropertySource, index BatchIndexer, logger *zap.SugaredLogger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Scheduler{
		cron:    cron.New(),
		source:  source,
		index:   index,
		config:  cfg,
		logger:  logger,
		timeout: cfg.GetRunTimeout(),
	}
	s.status = Status{
		Enabled:  cfg.ReindexEnabled,
		RunTime:  cfg.ReindexTime,
		CronSpec: s.parseDailyRunTime(cfg.ReindexTime),
	}
	return s
}

// Start registers the daily job and starts the cron loop
func (s *Scheduler) Start() error {
	if !s.config.ReindexEnabled {
		s.logger.Infow("[Scheduler] daily reindex is disabled in configuration")
		return nil
	}

	_, err := s.cron.AddFunc(s.status.CronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		s.logger.Infow("[Scheduler] starting daily reindex")
		if _, err := s.RunNow(ctx); err != nil {
			s.logger.Errorw("[Scheduler] daily reindex failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reindex: %w", err)
	}

	s.cron.Start()
	s.mu.Lock()
	s.isRunning = true
	s.mu.Unlock()
	s.logger.Infow("[Scheduler] started", "run_time", s.config.ReindexTime, "cron", s.status.CronSpec)

	return nil
}

// Stop stops the cron loop and waits for a running job to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	running := s.isRunning
	s.isRunning = false
	s.mu.Unlock()

	if running {
		<-s.cron.Stop().Done()
		s.logger.Infow("[Scheduler] stopped")
	}
}

// RunNow reindexes immediately. Overlapping runs are refused.
func (s *Scheduler) RunNow(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return 0, ErrReindexRunning
	}
	s.inFlight = true
	s.status.Running = true
	s.mu.Unlock()

	started := time.Now()
	indexed, err := Reindex(ctx, s.source, s.index, s.logger)

	s.mu.Lock()
	s.inFlight = false
	s.status.Running = false
	s.status.LastRunAt = &started
	s.status.LastIndexed = indexed
	s.status.LastError = ""
	if err != nil {
		s.status.LastError = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		return indexed, err
	}
	s.logger.Infow("[Scheduler] reindex completed", "indexed", indexed, "duration", time.Since(started))
	return indexed, nil
}

// Status returns a snapshot of the scheduler state
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// parseDailyRunTime converts HH:MM format to cron specification
// Example: "02:00" -> "0 2 * * *"
func (s *Scheduler) parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 && hour >= 0 && hour < 24 && minute >= 0 && minute < 60 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	s.logger.Warnw("[Scheduler] failed to parse run time, using default", "run_time", timeStr, "default", DefaultRunTime)
	return "0 3 * * *"
}
