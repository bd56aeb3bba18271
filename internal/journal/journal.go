// Package journal keeps the activity log shown on the log page: a list of
// timestamped messages stored under the "logs" key.
package journal

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/mesh-intelligence/shelf/internal/event"
	"github.com/mesh-intelligence/shelf/internal/recordstore"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Entry is one logged message.
type Entry struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Journal appends messages while enabled. Disabling it stops recording but
// keeps what was logged.
type Journal struct {
	mu      sync.Mutex
	store   *recordstore.Store
	enabled bool
	now     func() time.Time
	logger  *zap.Logger
}

var _ event.Sink = (*Journal)(nil)

// New returns a journal over store. A nil logger discards log output.
func New(store *recordstore.Store, enabled bool, logger *zap.Logger) *Journal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Journal{
		store:   store,
		enabled: enabled,
		now:     time.Now,
		logger:  logger.Named("journal"),
	}
}

// Enabled reports whether messages are being recorded.
func (j *Journal) Enabled() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.enabled
}

// SetEnabled turns recording on or off.
func (j *Journal) SetEnabled(on bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.enabled = on
}

// Record appends message. It does nothing while the journal is disabled.
func (j *Journal) Record(ctx context.Context, message string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.enabled {
		return nil
	}

	entries := recordstore.LoadAs[Entry](ctx, j.store, types.LogsCollection)
	entries = append(entries, Entry{
		ID:        newID(),
		Message:   message,
		Timestamp: j.now().UTC().Format(time.RFC3339),
	})
	return recordstore.SaveAs(ctx, j.store, types.LogsCollection, entries)
}

// List returns every entry, oldest first.
func (j *Journal) List(ctx context.Context) []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return recordstore.LoadAs[Entry](ctx, j.store, types.LogsCollection)
}

// Search returns the entries whose message or timestamp contains term,
// ignoring case. An empty term returns every entry.
func (j *Journal) Search(ctx context.Context, term string) []Entry {
	entries := j.List(ctx)
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(term))
	if needle == "" {
		return entries
	}
	out := []Entry{}
	for _, e := range entries {
		if strings.Contains(fold.String(e.Message), needle) || strings.Contains(fold.String(e.Timestamp), needle) {
			out = append(out, e)
		}
	}
	return out
}

// Publish records a message describing e. Write failures are logged, not
// returned, so a broken journal never fails the operation it reports.
func (j *Journal) Publish(ctx context.Context, e event.Event) {
	if err := j.Record(ctx, Describe(e)); err != nil {
		j.logger.Warn("recording event failed", zap.String("type", string(e.Type)), zap.Error(err))
	}
}

// Describe renders e as a log message.
func Describe(e event.Event) string {
	subject := fmt.Sprintf("%s %d", e.Kind, e.RecordID)
	if e.Label != "" {
		subject = fmt.Sprintf("%s %d %q", e.Kind, e.RecordID, e.Label)
	}
	switch e.Type {
	case event.TypeRecordCreated:
		return "created " + subject
	case event.TypeRecordUpdated:
		return "updated " + subject
	case event.TypeRecordTrashed:
		return "moved " + subject + " to trash"
	case event.TypeRecordRestored:
		return "restored " + subject + " from trash"
	case event.TypeRecordPurged:
		return "permanently deleted " + subject
	case event.TypeTrashEmptied:
		return fmt.Sprintf("emptied trash (%d items)", e.Count)
	}
	return string(e.Type) + " " + subject
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
