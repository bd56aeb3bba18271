package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrashEntryJSON(t *testing.T) {
	a := &Achievement{
		ID:          1700000000001,
		Name:        "Regional cup",
		Achievement: "First place",
		Link:        "https://example.org/cup",
		Date:        "2024-04-12",
		Category:    "sport",
		Status:      StatusPublished,
	}
	entry, err := NewTrashEntry(a)
	require.NoError(t, err)
	assert.Equal(t, KindAchievement, entry.Type)
	assert.Equal(t, a.ID, entry.ID)
	assert.Equal(t, "Regional cup", entry.Label)

	data, err := json.Marshal(entry)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Equal(t, "achievement", flat["type"])
	assert.Equal(t, "Regional cup", flat["name"])
	assert.Equal(t, "sport", flat["category"])

	var back TrashEntry
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, entry.Type, back.Type)
	assert.Equal(t, entry.ID, back.ID)

	rec, err := back.Decode()
	require.NoError(t, err)
	assert.Equal(t, a, rec)

	var stripped map[string]any
	require.NoError(t, json.Unmarshal(back.Record, &stripped))
	assert.NotContains(t, stripped, TypeField)
}

func TestTrashEntryLabel(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{"news uses title", &News{ID: 1, Title: "Headline"}, "Headline"},
		{"activity uses title", &Activity{ID: 2, Title: "Hike"}, "Hike"},
		{"achievement uses name", &Achievement{ID: 3, Name: "Medal"}, "Medal"},
		{"faq uses question", &FAQ{ID: 4, Question: "How?"}, "How?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewTrashEntry(tt.rec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.Label)
		})
	}
}

func TestTrashEntryUnmarshalRejectsUnknownType(t *testing.T) {
	tests := []string{
		`{"id":1,"title":"x","type":"event"}`,
		`{"id":1,"title":"x"}`,
		`{"id":1,"title":"x","type":7}`,
	}
	for _, in := range tests {
		var e TrashEntry
		assert.Error(t, json.Unmarshal([]byte(in), &e), in)
	}
}

func TestNewTrashEntryRawDropsExistingTag(t *testing.T) {
	e, err := NewTrashEntryRaw(KindNews, json.RawMessage(`{"id":9,"title":"t","type":"faq"}`))
	require.NoError(t, err)
	assert.Equal(t, KindNews, e.Type)
	assert.NotContains(t, string(e.Record), "faq")

	_, err = NewTrashEntryRaw("poster", json.RawMessage(`{"id":9}`))
	assert.ErrorIs(t, err, ErrUnknownKind)
}
