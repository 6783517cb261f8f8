// Package events defines the change-event schema published after successful
// survey writes.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"surveyd/internal/pubsub"
)

// OperationType represents the type of change operation.
type OperationType string

const (
	OperationCreate OperationType = "create"
	OperationUpdate OperationType = "update"
	OperationDelete OperationType = "delete"
)

// SurveyEvent is published on the "surveys.<operation>" subject after a
// record is persisted downstream.
type SurveyEvent struct {
	Operation OperationType `json:"operation"`
	WellID    string        `json:"wellID"`
	RecordID  string        `json:"recordID,omitempty"`
	Stations  int           `json:"stations"`
	Timestamp int64         `json:"timestamp"`
}

// Notifier publishes survey change events. Publishing is best effort: a
// failed publish is logged and never fails the originating request.
type Notifier struct {
	pub pubsub.Publisher
}

// NewNotifier creates a notifier over the given publisher.
func NewNotifier(pub pubsub.Publisher) *Notifier {
	return &Notifier{pub: pub}
}

// SurveyChanged publishes the event.
func (n *Notifier) SurveyChanged(ctx context.Context, op OperationType, wellID, recordID string, stations int) {
	if n == nil || n.pub == nil {
		return
	}

	ev := SurveyEvent{
		Operation: op,
		WellID:    wellID,
		RecordID:  recordID,
		Stations:  stations,
		Timestamp: time.Now().UnixMilli(),
	}

	data, err := json.Marshal(ev)
	if err != nil {
		slog.Warn("Failed to encode survey event", "error", err)
		return
	}

	if err := n.pub.Publish(ctx, "surveys."+string(op), data); err != nil {
		slog.Warn("Failed to publish survey event",
			"operation", op,
			"well_id", wellID,
			"error", err,
		)
	}
}
