package event

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

func TestNew(t *testing.T) {
	e := New(TypeRecordTrashed, types.KindNews, 42)

	id, err := uuid.Parse(e.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	assert.Equal(t, TypeRecordTrashed, e.Type)
	assert.Equal(t, types.KindNews, e.Kind)
	assert.Equal(t, int64(42), e.RecordID)

	_, err = time.Parse(time.RFC3339Nano, e.Timestamp)
	assert.NoError(t, err)
}

func TestMulti(t *testing.T) {
	var got []string
	record := func(name string) Sink {
		return SinkFunc(func(_ context.Context, e Event) {
			got = append(got, name+":"+string(e.Type))
		})
	}

	sink := Multi(record("a"), nil, Nop, record("b"))
	sink.Publish(context.Background(), New(TypeRecordCreated, types.KindFAQ, 1))

	assert.Equal(t, []string{"a:record.created", "b:record.created"}, got)
}
