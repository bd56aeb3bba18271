package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

func TestStateResetsPageOnChange(t *testing.T) {
	tests := []struct {
		name   string
		change func(s *State)
	}{
		{"search", func(s *State) { s.SetSearch("exam") }},
		{"statuses", func(s *State) { s.SetStatuses(types.StatusDraft) }},
		{"toggle status", func(s *State) { s.ToggleStatus(types.StatusPublished) }},
		{"sort key", func(s *State) { s.SetSort(KeyDate, types.SortAsc) }},
		{"sort order", func(s *State) { s.SetSort("", types.SortDesc) }},
		{"page size", func(s *State) { s.SetPageSize(10) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState(5)
			s.SetPage(3)
			require.Equal(t, 3, s.Criteria().PageIndex)

			tt.change(s)
			assert.Equal(t, 1, s.Criteria().PageIndex)
		})
	}
}

func TestStateUnchangedValuesKeepPage(t *testing.T) {
	s := NewState(5)
	s.SetSearch("exam")
	s.SetSort(KeyTitle, types.SortDesc)
	s.SetPage(2)

	s.SetSearch("exam")
	s.SetSort(KeyTitle, types.SortDesc)
	s.SetPageSize(5)
	assert.Equal(t, 2, s.Criteria().PageIndex)
}

func TestStateToggleStatus(t *testing.T) {
	s := NewState(0)
	assert.Equal(t, types.DefaultPageSize, s.Criteria().PageSize)
	assert.Equal(t, []types.Status{types.StatusDraft, types.StatusPublished}, s.Criteria().Statuses)

	s.ToggleStatus(types.StatusDraft)
	s.ToggleStatus("Published")
	assert.Empty(t, s.Criteria().Statuses, "unchecking both boxes hides everything")

	s.ToggleStatus(types.StatusPublished)
	assert.Equal(t, []types.Status{types.StatusPublished}, s.Criteria().Statuses)
}

func TestStateCriteriaIsACopy(t *testing.T) {
	s := NewState(5)
	c := s.Criteria()
	c.Statuses[0] = "archived"
	assert.Equal(t, types.StatusDraft, s.Criteria().Statuses[0])
}

func TestStateSetPageClamps(t *testing.T) {
	s := NewState(5)
	s.SetPage(0)
	assert.Equal(t, 1, s.Criteria().PageIndex)
}

func TestParseOrderBy(t *testing.T) {
	keys := NewsSchema.SortKeys()
	tests := []struct {
		in        string
		wantKey   string
		wantOrder types.SortOrder
		wantErr   bool
	}{
		{"", "", types.SortAsc, false},
		{"title", "title", types.SortAsc, false},
		{"date desc", "date", types.SortDesc, false},
		{"date desc, title", "date", types.SortDesc, false},
		{"author", "", "", true},
		{"title sideways", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			key, order, err := ParseOrderBy(tt.in, keys)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrInvalidSortKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantOrder, order)
		})
	}
}
