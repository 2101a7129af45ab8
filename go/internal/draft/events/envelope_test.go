package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope_SubjectAndDecode(t *testing.T) {
	draftID := uuid.New()
	at := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	env, err := NewEnvelope(draftID, 4, EventTypeTimerArmed, TimerArmedPayload{
		OverallPick: 3,
		Deadline:    at.Add(90 * time.Second),
		DurationMs:  90000,
	}, at)
	require.NoError(t, err)

	assert.Equal(t, "draft.events.TimerArmed", env.Subject())
	assert.Equal(t, int64(4), env.Sequence)
	assert.NotEqual(t, uuid.Nil, env.EventID)

	decoded, err := env.Decode()
	require.NoError(t, err)
	armed, ok := decoded.(*TimerArmedPayload)
	require.True(t, ok)
	assert.Equal(t, 3, armed.OverallPick)
	assert.Equal(t, int64(90000), armed.DurationMs)
}

func TestEnvelope_DecodeUnknownType(t *testing.T) {
	env := Envelope{EventType: "Bogus", Payload: []byte(`{}`)}
	_, err := env.Decode()
	assert.Error(t, err)
}
