// Package event carries aggregate events from application services to the
// asynchronous bus and turns auditable events into audit log rows.
package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/tutorcenter/backend/internal/domain/shared"
)

// PublishAggregate hands the aggregate's pending events to the publisher and
// clears them. Publishing is a side channel: failures are logged and never
// fail the operation that produced the events.
func PublishAggregate(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, agg shared.AggregateRoot) {
	events := agg.GetDomainEvents()
	agg.ClearDomainEvents()
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Warn("Failed to publish domain events",
			zap.Int("count", len(events)),
			zap.String("aggregate_type", events[0].AggregateType()),
			zap.String("aggregate_id", events[0].AggregateID().String()),
			zap.Error(err),
		)
	}
}
