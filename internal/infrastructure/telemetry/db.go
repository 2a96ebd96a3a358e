package telemetry

import (
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tutorcenter/backend/internal/infrastructure/config"
)

const (
	defaultSlowQueryThresh = 200 * time.Millisecond
	startedAtKey           = "telemetry:started_at"
)

// DBOptions configures GORM instrumentation.
type DBOptions struct {
	Enabled         bool
	LogFullSQL      bool
	SlowQueryThresh time.Duration
	DBSystem        string
	// TracerProvider overrides the global provider. Tests use it with a span recorder.
	TracerProvider trace.TracerProvider
}

// DBOptionsFromConfig derives DBOptions from the telemetry config and database driver.
func DBOptionsFromConfig(cfg config.TelemetryConfig, driver string) DBOptions {
	system := "postgresql"
	if driver == "sqlite" {
		system = "sqlite"
	}
	return DBOptions{
		Enabled:         cfg.DBTraceEnabled,
		LogFullSQL:      cfg.DBLogFullSQL,
		SlowQueryThresh: cfg.DBSlowQueryThresh,
		DBSystem:        system,
	}
}

// InstrumentGorm registers the otelgorm plugin and a slow query detector on db.
// Slow queries get a span event and a warning log.
func InstrumentGorm(db *gorm.DB, opts DBOptions, logger *zap.Logger) error {
	if !opts.Enabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}
	if opts.SlowQueryThresh <= 0 {
		opts.SlowQueryThresh = defaultSlowQueryThresh
	}

	pluginOpts := []otelgorm.Option{otelgorm.WithDBName(opts.DBSystem)}
	if !opts.LogFullSQL {
		pluginOpts = append(pluginOpts, otelgorm.WithoutQueryVariables())
	}
	if opts.TracerProvider != nil {
		pluginOpts = append(pluginOpts, otelgorm.WithTracerProvider(opts.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(pluginOpts...)); err != nil {
		return err
	}

	d := &slowQueryDetector{thresh: opts.SlowQueryThresh, logger: logger.Named("db")}
	if err := d.register(db); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", opts.LogFullSQL),
		zap.Duration("slow_query_threshold", opts.SlowQueryThresh),
		zap.String("db_system", opts.DBSystem),
	)
	return nil
}

type slowQueryDetector struct {
	thresh time.Duration
	logger *zap.Logger
}

func (d *slowQueryDetector) before(db *gorm.DB) {
	db.InstanceSet(startedAtKey, time.Now())
}

func (d *slowQueryDetector) after(db *gorm.DB) {
	v, ok := db.InstanceGet(startedAtKey)
	if !ok {
		return
	}
	started, ok := v.(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(started)
	if elapsed < d.thresh {
		return
	}

	if ctx := db.Statement.Context; ctx != nil {
		span := trace.SpanFromContext(ctx)
		if span.IsRecording() {
			span.AddEvent("slow_query", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", d.thresh.Milliseconds()),
			))
		}
	}

	fields := []zap.Field{
		zap.String("table", db.Statement.Table),
		zap.Duration("elapsed", elapsed),
		zap.Duration("threshold", d.thresh),
		zap.Int64("rows", db.Statement.RowsAffected),
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		fields = append(fields, zap.Error(db.Error))
	}
	d.logger.Warn("Slow query", fields...)
}

func (d *slowQueryDetector) register(db *gorm.DB) error {
	cb := db.Callback()
	regs := []error{
		cb.Create().Before("gorm:create").Register("telemetry:before_create", d.before),
		cb.Create().After("gorm:create").Register("telemetry:after_create", d.after),
		cb.Query().Before("gorm:query").Register("telemetry:before_query", d.before),
		cb.Query().After("gorm:query").Register("telemetry:after_query", d.after),
		cb.Update().Before("gorm:update").Register("telemetry:before_update", d.before),
		cb.Update().After("gorm:update").Register("telemetry:after_update", d.after),
		cb.Delete().Before("gorm:delete").Register("telemetry:before_delete", d.before),
		cb.Delete().After("gorm:delete").Register("telemetry:after_delete", d.after),
		cb.Row().Before("gorm:row").Register("telemetry:before_row", d.before),
		cb.Row().After("gorm:row").Register("telemetry:after_row", d.after),
		cb.Raw().Before("gorm:raw").Register("telemetry:before_raw", d.before),
		cb.Raw().After("gorm:raw").Register("telemetry:after_raw", d.after),
	}
	return errors.Join(regs...)
}
