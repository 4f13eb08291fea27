package kafka_test

import (
	"testing"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appointer/infras/kafka"
)

type outcome struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

func TestMessage_ToKafkaMessage(t *testing.T) {
	msg := kafka.Message{
		Key:     "b-1",
		Value:   outcome{BookingID: "b-1", Status: "paid"},
		Headers: map[string]string{"event": "booking.created"},
	}

	got, err := msg.ToKafkaMessage()
	require.NoError(t, err)

	assert.Equal(t, []byte("b-1"), got.Key)
	assert.JSONEq(t, `{"booking_id":"b-1","status":"paid"}`, string(got.Value))
	require.Len(t, got.Headers, 1)
	assert.Equal(t, "event", got.Headers[0].Key)
	assert.Equal(t, []byte("booking.created"), got.Headers[0].Value)
}

func TestMessage_ToKafkaMessage_Unmarshalable(t *testing.T) {
	msg := kafka.Message{Key: "x", Value: make(chan int)}

	_, err := msg.ToKafkaMessage()
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	got, err := kafka.Decode[outcome](kafkaGo.Message{Value: []byte(`{"booking_id":"b-9","status":"refunded"}`)})
	require.NoError(t, err)
	assert.Equal(t, outcome{BookingID: "b-9", Status: "refunded"}, got)

	_, err = kafka.Decode[outcome](kafkaGo.Message{Value: []byte(`not json`)})
	assert.Error(t, err)
}
