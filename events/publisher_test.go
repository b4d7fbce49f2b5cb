package events

import (
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type recordingPublisher struct {
	keys []string
	err  error
}

func (r *recordingPublisher) Publish(key string, _ any) error {
	r.keys = append(r.keys, key)
	return r.err
}

func TestEncode(t *testing.T) {
	at := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	body, err := Encode(BookingCreated, map[string]any{"id": 7}, at)
	require.NoError(t, err)

	assert.Equal(t, BookingCreated, gjson.GetBytes(body, "event").String())
	assert.Equal(t, int64(7), gjson.GetBytes(body, "data.id").Int())
	assert.Equal(t, "2025-04-01T10:00:00Z", gjson.GetBytes(body, "occurredAt").String())
}

func TestEmitNilPublisher(t *testing.T) {
	assert.NotPanics(t, func() { Emit(nil, nil, BookingCreated, nil) })
}

func TestEmitLogsFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	pub := &recordingPublisher{err: errors.New("channel closed")}

	Emit(pub, logger, PaymentCompleted, struct{}{})

	assert.Equal(t, []string{PaymentCompleted}, pub.keys)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}
