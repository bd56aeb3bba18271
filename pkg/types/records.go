package types

import "strings"

// Status is the publication state of a record.
type Status string

// Record statuses. New records default to StatusDraft.
const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Statuses lists every valid status.
var Statuses = []Status{StatusDraft, StatusPublished}

// Valid reports whether s is draft or published.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// NormalizeStatus lower-cases s and maps the empty status to draft.
// Older data stores "Draft"; both spellings mean the same state.
func NormalizeStatus(s Status) Status {
	v := Status(strings.ToLower(strings.TrimSpace(string(s))))
	if v == "" {
		return StatusDraft
	}
	return v
}

// Record is the behavior shared by every content kind. Implementations are
// pointer types so repositories can assign ids in place.
type Record interface {
	Kind() Kind
	RecordID() int64
	SetRecordID(id int64)
	RecordStatus() Status
	SetRecordStatus(s Status)
}

// Patch holds field updates keyed by json field name. Fields absent from the
// patch keep their current value.
type Patch map[string]any

// News is an announcement shown on the news page.
type News struct {
	ID          int64  `json:"id"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Date        string `json:"date" validate:"required,calendardate"`
	Category    string `json:"category,omitempty"`
	Photo       string `json:"photo,omitempty"`
	Author      string `json:"author,omitempty"`
	Link        string `json:"link,omitempty"`
	Status      Status `json:"status" validate:"status"`
}

func (n *News) Kind() Kind { return KindNews }
func (n *News) RecordID() int64 { return n.ID }
func (n *News) SetRecordID(id int64) { n.ID = id }
func (n *News) RecordStatus() Status { return n.Status }
func (n *News) SetRecordStatus(s Status) { n.Status = s }

// Activity is an entry of the recent activities page.
type Activity struct {
	ID          int64  `json:"id"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Date        string `json:"date" validate:"required,calendardate"`
	Photo       string `json:"photo,omitempty"`
	Status      Status `json:"status" validate:"status"`
}

func (a *Activity) Kind() Kind { return KindActivity }
func (a *Activity) RecordID() int64 { return a.ID }
func (a *Activity) SetRecordID(id int64) { a.ID = id }
func (a *Activity) RecordStatus() Status { return a.Status }
func (a *Activity) SetRecordStatus(s Status) { a.Status = s }

// Achievement is an award or milestone. Achievement holds the description
// text; Name is the display label.
type Achievement struct {
	ID          int64  `json:"id"`
	Name        string `json:"name" validate:"required"`
	Achievement string `json:"achievement" validate:"required"`
	Link        string `json:"link" validate:"required"`
	Date        string `json:"date" validate:"required,calendardate"`
	Category    string `json:"category" validate:"required"`
	Photo       string `json:"photo,omitempty"`
	Status      Status `json:"status" validate:"status"`
}

func (a *Achievement) Kind() Kind { return KindAchievement }
func (a *Achievement) RecordID() int64 { return a.ID }
func (a *Achievement) SetRecordID(id int64) { a.ID = id }
func (a *Achievement) RecordStatus() Status { return a.Status }
func (a *Achievement) SetRecordStatus(s Status) { a.Status = s }

// FAQ is a question and answer pair.
type FAQ struct {
	ID       int64  `json:"id"`
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
	Status   Status `json:"status" validate:"status"`
}

func (f *FAQ) Kind() Kind { return KindFAQ }
func (f *FAQ) RecordID() int64 { return f.ID }
func (f *FAQ) SetRecordID(id int64) { f.ID = id }
func (f *FAQ) RecordStatus() Status { return f.Status }
func (f *FAQ) SetRecordStatus(s Status) { f.Status = s }

// NewRecord returns an empty record of kind k.
func NewRecord(k Kind) (Record, error) {
	switch k {
	case KindNews:
		return &News{}, nil
	case KindActivity:
		return &Activity{}, nil
	case KindAchievement:
		return &Achievement{}, nil
	case KindFAQ:
		return &FAQ{}, nil
	default:
		return nil, ErrUnknownKind
	}
}

// Label returns the display text of r: the title, name or question,
// whichever its kind carries.
func Label(r Record) string {
	switch v := r.(type) {
	case *News:
		return v.Title
	case *Activity:
		return v.Title
	case *Achievement:
		return v.Name
	case *FAQ:
		return v.Question
	}
	return ""
}
