// Package consumer applies payment outcomes reported by the billing system.
package consumer

import (
	"context"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"

	"appointer/infras/kafka"
	"appointer/internal/domains/booking/service"
	"appointer/shared"
	"appointer/shared/constant"
	"appointer/shared/failure"
)

// PaymentOutcome is the billing message keyed by booking id.
type PaymentOutcome struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// billing acts as an administrator limited by the service to payment status.
var billing = shared.Actor{UserID: constant.SystemBilling, Role: constant.RoleAdmin}

type Payment struct {
	bookings service.Booking
}

func NewPayment(bookings service.Booking) *Payment {
	return &Payment{bookings: bookings}
}

// Handle returns nil for messages that can never succeed so they are
// committed and skipped. Anything else is redelivered.
func (p *Payment) Handle(ctx context.Context, message kafkaGo.Message) error {
	outcome, err := kafka.Decode[PaymentOutcome](message)
	if err != nil {
		log.Error().Err(err).Int64("offset", message.Offset).Msg("dropping malformed payment outcome")

		return nil
	}

	if outcome.BookingID == constant.Empty {
		log.Error().Int64("offset", message.Offset).Msg("dropping payment outcome without booking id")

		return nil
	}

	_, err = p.bookings.SetPaymentStatus(shared.WithActor(ctx, billing), outcome.BookingID, outcome.Status)

	switch {
	case err == nil:
		log.Info().Str("booking", outcome.BookingID).Str("status", outcome.Status).Msg("payment status applied")

		return nil
	case failure.IsKind(err, failure.KindValidation), failure.IsKind(err, failure.KindNotFound):
		log.Warn().Err(err).Str("booking", outcome.BookingID).Str("status", outcome.Status).Msg("dropping payment outcome")

		return nil
	default:
		return err
	}
}

// Run blocks consuming topic until ctx is done.
func (p *Payment) Run(ctx context.Context, client kafka.Client, group, topic string) error {
	log.Info().Str("topic", topic).Str("group", group).Msg("payment consumer started")

	return client.Consume(ctx, group, topic, p.Handle)
}
