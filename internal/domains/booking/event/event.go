// Package event publishes booking lifecycle changes.
package event

import (
	"context"

	"github.com/rs/zerolog/log"

	"appointer/infras/kafka"
	"appointer/infras/otel"
	"appointer/internal/domains/booking/model"
	"appointer/internal/scheduling/calendar"
	"appointer/shared/constant"
	"appointer/shared/timezone"
)

const (
	TypeCreated     = "booking.created"
	TypeRescheduled = "booking.rescheduled"
	TypeCancelled   = "booking.cancelled"
	TypeCompleted   = "booking.completed"

	headerType = "event_type"
)

type Event struct {
	Type            string         `json:"type"`
	BookingID       string         `json:"booking_id"`
	CustomerID      string         `json:"customer_id"`
	ResourceKind    string         `json:"resource_kind"`
	ResourceID      string         `json:"resource_id,omitempty"`
	Date            calendar.Date  `json:"date"`
	StartTime       calendar.Clock `json:"start_time"`
	DurationMinutes int            `json:"duration_minutes"`
	Status          string         `json:"status"`
	Actor           string         `json:"actor"`
	OccurredAt      string         `json:"occurred_at"`
}

func New(eventType string, b model.Booking, actor string) Event {
	sel := b.Selector()

	return Event{
		Type:            eventType,
		BookingID:       b.ID,
		CustomerID:      b.CustomerID,
		ResourceKind:    sel.Kind().String(),
		ResourceID:      sel.ID(),
		Date:            b.Date,
		StartTime:       b.StartTime,
		DurationMinutes: b.DurationMinutes,
		Status:          b.Status,
		Actor:           actor,
		OccurredAt:      timezone.Now().Format(constant.DateFormat),
	}
}

// Publisher never fails the caller; delivery errors are logged.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

type kafkaPublisher struct {
	client kafka.Client
	topic  string
	otel   otel.Otel
}

func NewKafka(client kafka.Client, topic string, otel otel.Otel) Publisher {
	return &kafkaPublisher{
		client: client,
		topic:  topic,
		otel:   otel,
	}
}

// Publish sends in the background, detached from the request context.
func (p *kafkaPublisher) Publish(ctx context.Context, event Event) {
	ctx = context.WithoutCancel(ctx)

	go func() {
		var err error

		ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".booking.Publish")
		defer scope.End()
		defer func() { scope.TraceIfError(err) }()

		err = p.client.SendMessages(ctx, p.topic, kafka.Message{
			Key:     event.BookingID,
			Value:   event,
			Headers: map[string]string{headerType: event.Type},
		})
		if err != nil {
			log.Error().Err(err).Str("type", event.Type).Str("booking", event.BookingID).Msg("failed to publish booking event")
		}
	}()
}

type noopPublisher struct{}

// NewNoop is used when Kafka is disabled.
func NewNoop() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(_ context.Context, event Event) {
	log.Debug().Str("type", event.Type).Str("booking", event.BookingID).Msg("booking event dropped, kafka disabled")
}
