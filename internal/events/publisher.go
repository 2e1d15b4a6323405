package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/stayandpark/service-frontdesk/internal/application"
	"github.com/stayandpark/service-frontdesk/internal/platform/kafka"
)

// eventWriter is the part of kafka.Producer the publisher needs.
type eventWriter interface {
	PublishEvent(ctx context.Context, topic, key string, ce kafka.CloudEvent) error
}

// KafkaPublisher publishes integration events as CloudEvents on the
// frontdesk topic, keyed by subject so events for one entity stay ordered.
type KafkaPublisher struct {
	writer eventWriter
	topic  string
	logger *zap.Logger
}

var _ application.EventPublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher writing to TopicFrontdeskEvents.
func NewKafkaPublisher(writer eventWriter, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, topic: TopicFrontdeskEvents, logger: logger}
}

// Publish implements application.EventPublisher. The state change has already
// committed, so a delivery failure is logged and dropped.
func (p *KafkaPublisher) Publish(ctx context.Context, eventType, subject string, data interface{}) {
	ce, err := kafka.NewCloudEvent(Source, eventType, subject, data)
	if err != nil {
		p.logger.Error("failed to build cloud event", zap.String("type", eventType), zap.Error(err))
		return
	}
	if err := p.writer.PublishEvent(ctx, p.topic, subject, ce); err != nil {
		p.logger.Error("failed to publish event",
			zap.String("type", eventType),
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}
