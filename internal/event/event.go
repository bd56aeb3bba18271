// Package event describes the changes repositories and the trash manager
// announce after a successful write.
package event

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Type names a change.
type Type string

const (
	TypeRecordCreated  Type = "record.created"
	TypeRecordUpdated  Type = "record.updated"
	TypeRecordTrashed  Type = "record.trashed"
	TypeRecordRestored Type = "record.restored"
	TypeRecordPurged   Type = "record.purged"
	TypeTrashEmptied   Type = "trash.emptied"
)

// Event is one change. RecordID is zero for TypeTrashEmptied; Count is only
// set for it.
type Event struct {
	ID        string     `json:"id"`
	Type      Type       `json:"type"`
	Kind      types.Kind `json:"kind,omitempty"`
	RecordID  int64      `json:"record_id,omitempty"`
	Label     string     `json:"label,omitempty"`
	Count     int        `json:"count,omitempty"`
	Timestamp string     `json:"timestamp"`
}

// New builds an event stamped with a v7 UUID and the current time.
func New(t Type, kind types.Kind, id int64) Event {
	return Event{
		ID:        newID(),
		Type:      t,
		Kind:      kind,
		RecordID:  id,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
}

// Sink receives events. Publish must not block for long; it runs on the
// caller's goroutine after the write it reports.
type Sink interface {
	Publish(ctx context.Context, e Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, e Event)

func (f SinkFunc) Publish(ctx context.Context, e Event) { f(ctx, e) }

// Nop discards every event.
var Nop Sink = SinkFunc(func(context.Context, Event) {})

// Multi fans an event out to every sink in order.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(ctx context.Context, e Event) {
		for _, s := range sinks {
			if s != nil {
				s.Publish(ctx, e)
			}
		}
	})
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
