package consumer_test

import (
	"context"
	"errors"
	"testing"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	kafkaMocks "appointer/infras/kafka/mocks"
	"appointer/internal/domains/booking/consumer"
	"appointer/internal/domains/booking/model/dto"
	"appointer/internal/domains/booking/service"
	"appointer/shared"
	"appointer/shared/constant"
	"appointer/shared/failure"
)

type bookings struct {
	service.Booking

	err   error
	calls []string
	actor shared.Actor
}

func (b *bookings) SetPaymentStatus(ctx context.Context, id, status string) (dto.BookingResponse, error) {
	b.calls = append(b.calls, id+":"+status)
	b.actor = shared.ActorFromContext(ctx)

	return dto.BookingResponse{ID: id, PaymentStatus: status}, b.err
}

func message(value string) kafkaGo.Message {
	return kafkaGo.Message{Topic: "payment.outcomes", Value: []byte(value)}
}

func TestPayment_Handle(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		err       error
		wantCalls []string
		wantErr   bool
	}{
		{
			name:      "applies the outcome",
			value:     `{"booking_id":"b1","status":"paid"}`,
			wantCalls: []string{"b1:paid"},
		},
		{
			name:  "malformed message is skipped",
			value: `{not json`,
		},
		{
			name:  "missing booking id is skipped",
			value: `{"status":"paid"}`,
		},
		{
			name:      "unknown booking is skipped",
			value:     `{"booking_id":"gone","status":"paid"}`,
			err:       failure.NotFound("booking not found"),
			wantCalls: []string{"gone:paid"},
		},
		{
			name:      "invalid status is skipped",
			value:     `{"booking_id":"b1","status":"lost"}`,
			err:       failure.BadRequestFromString("unknown payment status"),
			wantCalls: []string{"b1:lost"},
		},
		{
			name:      "storage failure is redelivered",
			value:     `{"booking_id":"b1","status":"refunded"}`,
			err:       failure.Storage(errors.New("timeout")),
			wantCalls: []string{"b1:refunded"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &bookings{err: tt.err}

			err := consumer.NewPayment(svc).Handle(context.Background(), message(tt.value))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			assert.Equal(t, tt.wantCalls, svc.calls)

			if len(tt.wantCalls) > 0 {
				assert.Equal(t, constant.SystemBilling, svc.actor.UserID)
				assert.True(t, svc.actor.IsAdmin())
			}
		})
	}
}

func TestPayment_Run(t *testing.T) {
	client := kafkaMocks.NewMockClient(gomock.NewController(t))
	client.EXPECT().Consume(gomock.Any(), "appointer", "payment.outcomes", gomock.Any()).Return(nil)

	err := consumer.NewPayment(&bookings{}).Run(context.Background(), client, "appointer", "payment.outcomes")
	assert.NoError(t, err)
}
