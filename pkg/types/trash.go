package types

import (
	"encoding/json"
	"fmt"
)

// TypeField is the json field holding a trash entry's origin kind.
const TypeField = "type"

// TrashEntry is a soft-deleted record held in the trash ledger. On disk it is
// the origin record's fields plus a "type" tag naming the origin kind.
type TrashEntry struct {
	Type   Kind
	ID     int64
	Label  string // title, name or question, whichever the kind carries
	Status Status
	Date   string

	// Record holds the origin record's fields without the type tag.
	Record json.RawMessage
}

// trashHeader decodes the fields every kind may carry.
type trashHeader struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Name     string `json:"name"`
	Question string `json:"question"`
	Status   Status `json:"status"`
	Date     string `json:"date"`
}

// NewTrashEntry tags r with its kind.
func NewTrashEntry(r Record) (TrashEntry, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return TrashEntry{}, fmt.Errorf("encoding %s %d: %w", r.Kind(), r.RecordID(), err)
	}
	return newTrashEntry(r.Kind(), raw)
}

// NewTrashEntryRaw tags the stored fields raw of a record with kind k.
func NewTrashEntryRaw(k Kind, raw json.RawMessage) (TrashEntry, error) {
	if !k.Valid() {
		return TrashEntry{}, fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return TrashEntry{}, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	delete(fields, TypeField)
	clean, err := json.Marshal(fields)
	if err != nil {
		return TrashEntry{}, err
	}
	return newTrashEntry(k, clean)
}

func newTrashEntry(k Kind, raw json.RawMessage) (TrashEntry, error) {
	var h trashHeader
	if err := json.Unmarshal(raw, &h); err != nil {
		return TrashEntry{}, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	label := h.Title
	switch {
	case k == KindAchievement && h.Name != "":
		label = h.Name
	case k == KindFAQ && h.Question != "":
		label = h.Question
	}
	return TrashEntry{
		Type:   k,
		ID:     h.ID,
		Label:  label,
		Status: NormalizeStatus(h.Status),
		Date:   h.Date,
		Record: raw,
	}, nil
}

// Decode returns the origin record held by e.
func (e TrashEntry) Decode() (Record, error) {
	r, err := NewRecord(e.Type)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(e.Record, r); err != nil {
		return nil, fmt.Errorf("%w: %s %d: %v", ErrInvalidData, e.Type, e.ID, err)
	}
	return r, nil
}

// Collection returns the name of the collection e is restored to.
func (e TrashEntry) Collection() (string, error) {
	return e.Type.Collection()
}

// MarshalJSON writes the record fields with the type tag added.
func (e TrashEntry) MarshalJSON() ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if len(e.Record) > 0 {
		if err := json.Unmarshal(e.Record, &fields); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
	}
	tag, err := json.Marshal(e.Type)
	if err != nil {
		return nil, err
	}
	fields[TypeField] = tag
	return json.Marshal(fields)
}

// UnmarshalJSON reads a tagged record. Entries with a missing or unknown
// type fail with ErrUnknownKind.
func (e *TrashEntry) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("%w: trash entry is null", ErrInvalidData)
	}
	var k Kind
	if tag, ok := fields[TypeField]; ok {
		if err := json.Unmarshal(tag, &k); err != nil {
			return fmt.Errorf("%w: type: %v", ErrInvalidData, err)
		}
	}
	if !k.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
	}
	entry, err := NewTrashEntryRaw(k, data)
	if err != nil {
		return err
	}
	*e = entry
	return nil
}
