package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tutorcenter/backend/internal/infrastructure/config"
)

func TestSetup_Disabled(t *testing.T) {
	p, err := Setup(context.Background(), config.TelemetryConfig{ServiceName: "test"}, "1.0.0", zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.TracingEnabled())
	assert.False(t, p.MetricsEnabled())
	assert.False(t, p.LogsEnabled())
	assert.NotNil(t, p.Tracer("x"))
	assert.NotNil(t, p.Meter("x"))
	assert.False(t, p.ZapCore(zapcore.DebugLevel).Enabled(zapcore.ErrorLevel))

	assert.NoError(t, p.Shutdown(context.Background()))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestSetup_RequiresCollectorEndpoint(t *testing.T) {
	_, err := Setup(context.Background(), config.TelemetryConfig{Enabled: true, ServiceName: "test"}, "", zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collector endpoint")
}

func TestStartProfiler_Validation(t *testing.T) {
	_, err := startProfiler("", "app", zap.NewNop())
	assert.ErrorContains(t, err, "server address")

	_, err = startProfiler("http://localhost:4040", "", zap.NewNop())
	assert.ErrorContains(t, err, "application name")
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Equal(t, "AlwaysOffSampler", sampler(0).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}

	log := zap.New(core).With(zap.String("k", "v"))
	log.Info("dropped")
	log.Warn("kept")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "kept", entry.Message)
	assert.Equal(t, "v", entry.ContextMap()["k"])
}

func TestSpanHelpers(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	ctx, span := tp.Tracer(TracerName).Start(context.Background(), "report.generate")

	assert.NotEmpty(t, TraceID(ctx))
	assert.Empty(t, TraceID(context.Background()))

	RecordError(span, nil)
	EndSpan(span, errors.New("boom"))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "boom", ended[0].Status().Description)
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordPayment(ctx, "student", decimal.RequireFromString("120.50"))
	m.RecordPayment(ctx, "student", decimal.RequireFromString("79.50"))
	m.RecordReceiptIssued(ctx, "2024")
	m.RecordReportGenerated(ctx, "monthly", "pdf")
	m.RecordReportFailed(ctx, "monthly")
	m.RecordAuditDropped(ctx, "payment.recorded")
	m.ObserveAggregation(ctx, "cash_flow", 150*time.Millisecond)

	got := collect(t, reader)

	payments := got[MetricPaymentsRecorded].Data.(metricdata.Sum[int64])
	require.Len(t, payments.DataPoints, 1)
	assert.Equal(t, int64(2), payments.DataPoints[0].Value)
	kind, _ := payments.DataPoints[0].Attributes.Value(attribute.Key("payment.kind"))
	assert.Equal(t, "student", kind.AsString())

	amount := got[MetricPaymentAmount].Data.(metricdata.Sum[float64])
	assert.InDelta(t, 200.0, amount.DataPoints[0].Value, 0.0001)

	for _, name := range []string{MetricReceiptsIssued, MetricReportsGenerated, MetricReportFailures, MetricAuditDropped} {
		sum := got[name].Data.(metricdata.Sum[int64])
		require.Len(t, sum.DataPoints, 1, name)
		assert.Equal(t, int64(1), sum.DataPoints[0].Value, name)
	}

	hist := got[MetricAggregationDuration].Data.(metricdata.Histogram[float64])
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordPayment(ctx, "student", decimal.NewFromInt(1))
		m.RecordReceiptIssued(ctx, "2024")
		m.RecordReportGenerated(ctx, "monthly", "csv")
		m.RecordReportFailed(ctx, "monthly")
		m.RecordAuditDropped(ctx, "x")
		m.ObserveAggregation(ctx, "x", time.Second)
	})
}

type widget struct {
	ID   uint
	Name string
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&widget{}))
	return db
}

func TestRegisterDBPoolMetrics(t *testing.T) {
	db := openSQLite(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	reg, err := RegisterDBPoolMetrics(mp.Meter("test"), sqlDB)
	require.NoError(t, err)
	defer func() { _ = reg.Unregister() }()

	got := collect(t, reader)
	assert.Contains(t, got, "db.client.connections.open")
	assert.Contains(t, got, "db.client.connections.in_use")
	assert.Contains(t, got, "db.client.connections.idle")
}

func TestDBOptionsFromConfig(t *testing.T) {
	cfg := config.TelemetryConfig{DBTraceEnabled: true, DBSlowQueryThresh: time.Second}

	pg := DBOptionsFromConfig(cfg, "postgres")
	assert.True(t, pg.Enabled)
	assert.Equal(t, "postgresql", pg.DBSystem)
	assert.Equal(t, time.Second, pg.SlowQueryThresh)

	assert.Equal(t, "sqlite", DBOptionsFromConfig(cfg, "sqlite").DBSystem)
}

func TestInstrumentGorm_Disabled(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, InstrumentGorm(db, DBOptions{}, zap.NewNop()))
	_, registered := db.Plugins["otelgorm"]
	assert.False(t, registered)
}

func TestInstrumentGorm_TracesAndFlagsSlowQueries(t *testing.T) {
	db := openSQLite(t)
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	core, logs := observer.New(zapcore.WarnLevel)

	err := InstrumentGorm(db, DBOptions{
		Enabled:         true,
		SlowQueryThresh: time.Nanosecond,
		DBSystem:        "sqlite",
		TracerProvider:  tp,
	}, zap.New(core))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&widget{Name: "a"}).Error)
	var out []widget
	require.NoError(t, db.WithContext(ctx).Find(&out).Error)
	assert.Len(t, out, 1)

	assert.NotEmpty(t, recorder.Ended())
	slow := logs.FilterMessage("Slow query").All()
	require.NotEmpty(t, slow)
	assert.Equal(t, "widgets", slow[0].ContextMap()["table"])
}
