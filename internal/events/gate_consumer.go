package events

import (
	"context"
	"errors"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/stayandpark/service-frontdesk/internal/domain"
	"github.com/stayandpark/service-frontdesk/internal/platform/kafka"
)

// VehicleExitedEvent is the payload of gate.vehicle_exited.
type VehicleExitedEvent struct {
	PlateNumber string    `json:"plate_number"`
	GateID      string    `json:"gate_id,omitempty"`
	ExitedAt    time.Time `json:"exited_at"`
}

// GateExitHandler closes the parking reservation of a vehicle that left.
type GateExitHandler interface {
	HandleGateExit(ctx context.Context, plate string, exitedAt time.Time) error
}

// GateEventConsumer listens to parking gate events and finishes the matching
// parking reservations.
type GateEventConsumer struct {
	consumer *kafka.Consumer
	handler  GateExitHandler
	logger   *zap.Logger
}

// NewGateEventConsumer creates a new consumer for gate events.
func NewGateEventConsumer(brokers []string, groupID string, handler GateExitHandler, logger *zap.Logger) *GateEventConsumer {
	return &GateEventConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, TopicGateEvents, logger),
		handler:  handler,
		logger:   logger,
	}
}

// Start begins consuming gate events. It blocks until the context is cancelled.
func (c *GateEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// handleMessage routes incoming Kafka messages to the appropriate handler.
func (c *GateEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from gate topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return kafka.Permanent(err)
	}

	c.logger.Info("received gate event",
		zap.String("type", cloudEvent.Type),
		zap.String("id", cloudEvent.ID),
	)

	switch {
	case strings.EqualFold(cloudEvent.Type, GateVehicleExited):
		return c.handleVehicleExited(ctx, cloudEvent)

	default:
		c.logger.Debug("ignoring unhandled gate event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *GateEventConsumer) handleVehicleExited(ctx context.Context, ce kafka.CloudEvent) error {
	var event VehicleExitedEvent
	if err := ce.ParseData(&event); err != nil {
		c.logger.Error("failed to parse VehicleExitedEvent data", zap.Error(err))
		return kafka.Permanent(err)
	}
	exitedAt := event.ExitedAt
	if exitedAt.IsZero() {
		exitedAt = ce.Time
	}
	if err := c.handler.HandleGateExit(ctx, event.PlateNumber, exitedAt); err != nil {
		// Version conflicts are retried; other domain errors are final.
		if domain.IsDomainError(err) && !errors.Is(err, domain.ErrConflict) {
			return kafka.Permanent(err)
		}
		return err
	}
	return nil
}

// Close closes the underlying Kafka consumer.
func (c *GateEventConsumer) Close() error {
	return c.consumer.Close()
}
