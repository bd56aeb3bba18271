package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		record      Record
		wantMissing []string
		wantInvalid []string
	}{
		{
			name:   "complete news",
			record: &News{Title: "Open day", Description: "Doors open", Date: "2024-03-01", Status: StatusDraft},
		},
		{
			name:        "news without title and date",
			record:      &News{Description: "Doors open", Status: StatusDraft},
			wantMissing: []string{"title", "date"},
		},
		{
			name:        "activity with malformed date",
			record:      &Activity{Title: "Run", Description: "5k", Date: "first of May", Status: StatusDraft},
			wantInvalid: []string{"date"},
		},
		{
			name:   "activity with RFC 3339 date",
			record: &Activity{Title: "Run", Description: "5k", Date: "2024-05-01T10:00:00Z", Status: StatusPublished},
		},
		{
			name:        "achievement missing link and category",
			record:      &Achievement{Name: "Cup", Achievement: "Won", Date: "2024-01-02", Status: StatusDraft},
			wantMissing: []string{"link", "category"},
		},
		{
			name:        "faq with unknown status",
			record:      &FAQ{Question: "Why?", Answer: "Because.", Status: "archived"},
			wantInvalid: []string{"status"},
		},
		{
			name:        "empty faq",
			record:      &FAQ{Status: StatusDraft},
			wantMissing: []string{"question", "answer"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.record)
			if tt.wantMissing == nil && tt.wantInvalid == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.record.Kind(), ve.Kind)
			assert.Equal(t, tt.wantMissing, ve.Missing)
			assert.Equal(t, tt.wantInvalid, ve.Invalid)
		})
	}
}

func TestValidateNilRecord(t *testing.T) {
	var n *News
	err := Validate(n)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in   Status
		want Status
	}{
		{"", StatusDraft},
		{"Draft", StatusDraft},
		{" PUBLISHED ", StatusPublished},
		{"published", StatusPublished},
		{"archived", "archived"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeStatus(tt.in), "NormalizeStatus(%q)", tt.in)
	}

	f := &FAQ{Question: "q", Answer: "a", Status: "Published"}
	Normalize(f)
	assert.Equal(t, StatusPublished, f.Status)
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2024-02-29")
	require.True(t, ok)
	assert.Equal(t, 29, d.Day())

	_, ok = ParseDate("2024-02-30")
	assert.False(t, ok)

	_, ok = ParseDate("")
	assert.False(t, ok)
}
