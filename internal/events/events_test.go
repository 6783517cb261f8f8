package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyd/internal/pubsub"
)

func TestSurveyChangedPublishesEvent(t *testing.T) {
	pub := pubsub.NewMemoryPublisher()
	n := NewNotifier(pub)

	n.SurveyChanged(context.Background(), OperationUpdate, "well-1", "rec-1", 12)

	msgs := pub.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "surveys.update", msgs[0].Subject)

	var ev SurveyEvent
	require.NoError(t, json.Unmarshal(msgs[0].Data, &ev))
	assert.Equal(t, OperationUpdate, ev.Operation)
	assert.Equal(t, "well-1", ev.WellID)
	assert.Equal(t, "rec-1", ev.RecordID)
	assert.Equal(t, 12, ev.Stations)
	assert.Positive(t, ev.Timestamp)
}

func TestSurveyChangedOnNilNotifier(t *testing.T) {
	var n *Notifier

	assert.NotPanics(t, func() {
		n.SurveyChanged(context.Background(), OperationDelete, "well-1", "", 0)
	})
}

func TestSurveyChangedPublishFailureIsSwallowed(t *testing.T) {
	pub := pubsub.NewMemoryPublisher()
	require.NoError(t, pub.Close())
	n := NewNotifier(pub)

	assert.NotPanics(t, func() {
		n.SurveyChanged(context.Background(), OperationCreate, "well-1", "rec-1", 1)
	})
}
