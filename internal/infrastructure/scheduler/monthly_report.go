// Package scheduler runs the periodic financial report snapshot.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/tutorcenter/backend/internal/domain/report"
	"github.com/tutorcenter/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// SystemActor is recorded as the generator of scheduled reports
var SystemActor = uuid.Nil

// ReportGenerator produces and persists a financial report
type ReportGenerator interface {
	GenerateFinancialReport(ctx context.Context, start, end time.Time, generatedBy uuid.UUID, reportType report.ReportType, format report.Format) (*report.FinancialReport, error)
}

// MonthlyReportScheduler generates the previous month's report on a cron schedule
type MonthlyReportScheduler struct {
	cfg       config.SchedulerConfig
	format    report.Format
	location  *time.Location
	generator ReportGenerator
	logger    *zap.Logger

	cron    *cron.Cron
	entryID cron.EntryID

	mu        sync.Mutex
	isRunning bool
	lastRunAt *time.Time
	lastErr   error
	lastID    *uuid.UUID
}

// NewMonthlyReportScheduler validates the cron expression and timezone
func NewMonthlyReportScheduler(cfg config.SchedulerConfig, generator ReportGenerator, logger *zap.Logger) (*MonthlyReportScheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc := time.UTC
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, cfg.Timezone, err)
		}
		loc = l
	}

	format := report.Format(cfg.ReportFormat)
	if cfg.ReportFormat == "" {
		format = report.FormatJSON
	}
	if !format.IsValid() {
		return nil, fmt.Errorf("%w: report format %q", ErrInvalidConfig, cfg.ReportFormat)
	}

	if cfg.RetryAttempts < 1 {
		cfg.RetryAttempts = 1
	}

	s := &MonthlyReportScheduler{
		cfg:       cfg,
		format:    format,
		location:  loc,
		generator: generator,
		logger:    logger,
	}

	cronLog := &cronLogger{logger: logger.Named("cron")}
	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	id, err := s.cron.AddFunc(cfg.MonthlyReportCron, s.runScheduled)
	if err != nil {
		return nil, fmt.Errorf("%w: cron %q: %v", ErrInvalidConfig, cfg.MonthlyReportCron, err)
	}
	s.entryID = id
	return s, nil
}

// Start starts the cron loop
func (s *MonthlyReportScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.isRunning = true
	s.cron.Start()

	s.logger.Info("Monthly report scheduler started",
		zap.String("cron", s.cfg.MonthlyReportCron),
		zap.String("timezone", s.location.String()),
		zap.Time("next_run_at", s.cron.Entry(s.entryID).Next),
	)
}

// Stop stops scheduling and waits for a running job, bounded by ctx
func (s *MonthlyReportScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Monthly report scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Monthly report scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *MonthlyReportScheduler) runScheduled() {
	ctx := context.Background()
	if s.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.JobTimeout)
		defer cancel()
	}
	if _, err := s.RunOnce(ctx, time.Now()); err != nil {
		s.logger.Error("Scheduled monthly report failed", zap.Error(err))
	}
}

// RunOnce generates the report for the month before now, retrying failures
func (s *MonthlyReportScheduler) RunOnce(ctx context.Context, now time.Time) (*report.FinancialReport, error) {
	start, end := PreviousMonth(now, s.location)
	log := s.logger.With(
		zap.Time("period_start", start),
		zap.Time("period_end", end),
		zap.String("format", string(s.format)),
	)
	log.Info("Generating monthly report")

	var lastErr error
	for attempt := 1; attempt <= s.cfg.RetryAttempts; attempt++ {
		r, err := s.generator.GenerateFinancialReport(ctx, start, end, SystemActor, report.ReportMonthly, s.format)
		if err == nil {
			s.recordRun(&r.ID, nil)
			log.Info("Monthly report generated", zap.String("report_id", r.ID.String()), zap.Int("attempt", attempt))
			return r, nil
		}
		lastErr = err
		log.Warn("Monthly report attempt failed", zap.Int("attempt", attempt), zap.Error(err))

		if attempt == s.cfg.RetryAttempts {
			break
		}
		if err := sleepCtx(ctx, s.cfg.RetryDelay); err != nil {
			lastErr = err
			break
		}
	}

	err := fmt.Errorf("%w: %v", ErrReportGenerationFailed, lastErr)
	s.recordRun(nil, err)
	return nil, err
}

func (s *MonthlyReportScheduler) recordRun(id *uuid.UUID, err error) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRunAt = &now
	s.lastErr = err
	s.lastID = id
}

// Status describes the scheduler for the health endpoint
type Status struct {
	Running      bool       `json:"running"`
	Cron         string     `json:"cron"`
	NextRunAt    *time.Time `json:"nextRunAt,omitempty"`
	LastRunAt    *time.Time `json:"lastRunAt,omitempty"`
	LastReportID *uuid.UUID `json:"lastReportId,omitempty"`
	LastError    string     `json:"lastError,omitempty"`
}

// Status returns the current scheduler state
func (s *MonthlyReportScheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Running:      s.isRunning,
		Cron:         s.cfg.MonthlyReportCron,
		LastRunAt:    s.lastRunAt,
		LastReportID: s.lastID,
	}
	if s.isRunning {
		if next := s.cron.Entry(s.entryID).Next; !next.IsZero() {
			st.NextRunAt = &next
		}
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// PreviousMonth returns the first and last instant of the calendar month before now
func PreviousMonth(now time.Time, loc *time.Location) (time.Time, time.Time) {
	now = now.In(loc)
	start := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	logger *zap.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, zap.Any("details", keysAndValues))
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, zap.Error(err), zap.Any("details", keysAndValues))
}
