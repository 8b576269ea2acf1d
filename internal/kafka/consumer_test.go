package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	original := BookingEvent{
		Type:          "booking_confirmed",
		BookingID:     1,
		Reference:     "K7XM2R9A",
		FlightID:      4,
		Seat:          "12C",
		PassengerName: "Ada Lovelace",
		Algorithm:     "Simulated-ML-DSA-65-HMAC",
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}
	payload, err := json.Marshal(original)
	require.NoError(t, err)

	event, err := decodeEvent(payload)

	require.NoError(t, err)
	assert.Equal(t, original, event)
}

func TestDecodeEvent_Malformed(t *testing.T) {
	testCases := []struct {
		name    string
		payload []byte
	}{
		{name: "not json", payload: []byte("{broken")},
		{name: "empty payload", payload: nil},
		{name: "missing reference", payload: []byte(`{"type":"booking_confirmed","flight_id":4}`)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decodeEvent(tc.payload)
			assert.Error(t, err)
		})
	}
}
