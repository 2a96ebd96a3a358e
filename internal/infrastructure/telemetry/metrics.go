package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names exported by the backend.
const (
	MetricPaymentsRecorded    = "tutorcenter.payments.recorded"
	MetricPaymentAmount       = "tutorcenter.payments.amount"
	MetricReceiptsIssued      = "tutorcenter.receipts.issued"
	MetricReportsGenerated    = "tutorcenter.reports.generated"
	MetricReportFailures      = "tutorcenter.reports.failed"
	MetricAuditDropped        = "tutorcenter.audit.dropped"
	MetricAggregationDuration = "tutorcenter.accounting.aggregation.duration"
)

// Metrics records domain counters. A nil *Metrics is valid and records nothing,
// so services can take it as an optional dependency.
type Metrics struct {
	paymentsRecorded    metric.Int64Counter
	paymentAmount       metric.Float64Counter
	receiptsIssued      metric.Int64Counter
	reportsGenerated    metric.Int64Counter
	reportFailures      metric.Int64Counter
	auditDropped        metric.Int64Counter
	aggregationDuration metric.Float64Histogram
}

// NewMetrics creates every instrument on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.paymentsRecorded, err = meter.Int64Counter(MetricPaymentsRecorded,
		metric.WithDescription("Payments recorded, by payment kind"),
		metric.WithUnit("{payment}")); err != nil {
		return nil, fmt.Errorf("create %s: %w", MetricPaymentsRecorded, err)
	}
	if m.paymentAmount, err = meter.Float64Counter(MetricPaymentAmount,
		metric.WithDescription("Sum of recorded payment amounts, by payment kind")); err != nil {
		return nil, fmt.Errorf("create %s: %w", MetricPaymentAmount, err)
	}
	if m.receiptsIssued, err = meter.Int64Counter(MetricReceiptsIssued,
		metric.WithDescription("Receipt numbers issued, by series"),
		metric.WithUnit("{receipt}")); err != nil {
		return nil, fmt.Errorf("create %s: %w", MetricReceiptsIssued, err)
	}
	if m.reportsGenerated, err = meter.Int64Counter(MetricReportsGenerated,
		metric.WithDescription("Financial reports generated, by type and format"),
		metric.WithUnit("{report}")); err != nil {
		return nil, fmt.Errorf("create %s: %w", MetricReportsGenerated, err)
	}
	if m.reportFailures, err = meter.Int64Counter(MetricReportFailures,
		metric.WithDescription("Financial report generation failures, by type"),
		metric.WithUnit("{report}")); err != nil {
		return nil, fmt.Errorf("create %s: %w", MetricReportFailures, err)
	}
	if m.auditDropped, err = meter.Int64Counter(MetricAuditDropped,
		metric.WithDescription("Audit events dropped because the dispatch queue was full"),
		metric.WithUnit("{event}")); err != nil {
		return nil, fmt.Errorf("create %s: %w", MetricAuditDropped, err)
	}
	if m.aggregationDuration, err = meter.Float64Histogram(MetricAggregationDuration,
		metric.WithDescription("Duration of accounting aggregations"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("create %s: %w", MetricAggregationDuration, err)
	}
	return m, nil
}

// RecordPayment counts a payment and adds its amount.
func (m *Metrics) RecordPayment(ctx context.Context, kind string, amount decimal.Decimal) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("payment.kind", kind))
	m.paymentsRecorded.Add(ctx, 1, attrs)
	m.paymentAmount.Add(ctx, amount.InexactFloat64(), attrs)
}

func (m *Metrics) RecordReceiptIssued(ctx context.Context, series string) {
	if m == nil {
		return
	}
	m.receiptsIssued.Add(ctx, 1, metric.WithAttributes(attribute.String("receipt.series", series)))
}

func (m *Metrics) RecordReportGenerated(ctx context.Context, reportType, format string) {
	if m == nil {
		return
	}
	m.reportsGenerated.Add(ctx, 1, metric.WithAttributes(
		attribute.String("report.type", reportType),
		attribute.String("report.format", format),
	))
}

func (m *Metrics) RecordReportFailed(ctx context.Context, reportType string) {
	if m == nil {
		return
	}
	m.reportFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("report.type", reportType)))
}

func (m *Metrics) RecordAuditDropped(ctx context.Context, eventType string) {
	if m == nil {
		return
	}
	m.auditDropped.Add(ctx, 1, metric.WithAttributes(attribute.String("event.type", eventType)))
}

// ObserveAggregation records how long an accounting aggregation took.
func (m *Metrics) ObserveAggregation(ctx context.Context, operation string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.aggregationDuration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(attribute.String("operation", operation)))
}

// RegisterDBPoolMetrics exposes connection pool statistics as observable gauges.
// Unregister the returned registration on shutdown.
func RegisterDBPoolMetrics(meter metric.Meter, db *sql.DB) (metric.Registration, error) {
	open, err := meter.Int64ObservableGauge("db.client.connections.open",
		metric.WithDescription("Open database connections"))
	if err != nil {
		return nil, err
	}
	inUse, err := meter.Int64ObservableGauge("db.client.connections.in_use",
		metric.WithDescription("Database connections currently in use"))
	if err != nil {
		return nil, err
	}
	idle, err := meter.Int64ObservableGauge("db.client.connections.idle",
		metric.WithDescription("Idle database connections"))
	if err != nil {
		return nil, err
	}
	waits, err := meter.Int64ObservableCounter("db.client.connections.wait_count",
		metric.WithDescription("Total connections waited for"))
	if err != nil {
		return nil, err
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := db.Stats()
		o.ObserveInt64(open, int64(stats.OpenConnections))
		o.ObserveInt64(inUse, int64(stats.InUse))
		o.ObserveInt64(idle, int64(stats.Idle))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, open, inUse, idle, waits)
}
