// Package trash implements soft delete across every record kind.
//
// A deleted record leaves its collection and joins the trash ledger tagged
// with its kind. From there it is either restored to the end of that
// collection or purged for good. A record is never in both places: each
// move writes one side, then the other, and undoes the first write if the
// second fails.
package trash

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/shelf/internal/collection"
	"github.com/mesh-intelligence/shelf/internal/event"
	"github.com/mesh-intelligence/shelf/internal/recordstore"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Origin is the part of a repository the manager needs.
type Origin interface {
	Kind() types.Kind
	Append(ctx context.Context, r types.Record) error
	Remove(ctx context.Context, id int64) error
	Take(ctx context.Context, id int64, fn func(types.Record) error) error
}

var _ Origin = (collection.Accessor)(nil)

// Manager owns the trash ledger.
type Manager struct {
	mu      sync.Mutex
	store   *recordstore.Store
	origins map[types.Kind]Origin
	sink    event.Sink
	logger  *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithSink sets the sink notified after each move.
func WithSink(s event.Sink) Option {
	return func(m *Manager) {
		if s != nil {
			m.sink = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager returns a manager restoring into origins, one per kind.
func NewManager(store *recordstore.Store, origins []Origin, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		origins: make(map[types.Kind]Origin, len(origins)),
		sink:    event.Nop,
		logger:  zap.NewNop(),
	}
	for _, o := range origins {
		m.origins[o.Kind()] = o
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.Named("trash")
	return m
}

// List returns the ledger in insertion order. Entries whose type is not a
// known kind are left out.
func (m *Manager) List(ctx context.Context) ([]types.TrashEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(ctx), nil
}

// SoftDelete moves the record with id from the collection of kind into the
// ledger. The origin repository stays locked from the lookup to the
// removal. The ledger is written first; if removing the record from its
// collection then fails, the ledger write is undone.
func (m *Manager) SoftDelete(ctx context.Context, kind types.Kind, id int64) (types.TrashEntry, error) {
	if err := ctx.Err(); err != nil {
		return types.TrashEntry{}, err
	}
	origin, err := m.origin(kind)
	if err != nil {
		return types.TrashEntry{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var (
		entry  types.TrashEntry
		ledger []types.TrashEntry
		filed  bool
	)
	err = origin.Take(ctx, id, func(rec types.Record) error {
		e, err := types.NewTrashEntry(rec)
		if err != nil {
			return err
		}
		ledger = m.load(ctx)
		if indexOf(ledger, id) >= 0 {
			return fmt.Errorf("%w: trash already holds id %d", types.ErrConflict, id)
		}
		if err := m.save(ctx, append(ledger, e)); err != nil {
			return err
		}
		entry, filed = e, true
		return nil
	})
	if err != nil {
		if filed {
			if undo := m.save(ctx, ledger); undo != nil {
				m.logger.Error("undoing trash append failed",
					zap.String("kind", string(kind)), zap.Int64("id", id), zap.Error(undo))
			}
		}
		return types.TrashEntry{}, err
	}

	m.logger.Debug("trashed", zap.String("kind", string(kind)), zap.Int64("id", id))
	m.publish(ctx, event.TypeRecordTrashed, entry)
	return entry, nil
}

// Restore moves the entry with id back to the end of its origin
// collection.
func (m *Manager) Restore(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restore(ctx, id)
}

// RestoreMany restores each id in order. A failure does not stop the
// batch; each id is reported once.
func (m *Manager) RestoreMany(ctx context.Context, ids []int64) BatchResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batch(ctx, ids, m.restore)
}

// Purge removes the entry with id from the ledger for good.
func (m *Manager) Purge(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.purge(ctx, id)
}

// PurgeMany purges each id in order. A failure does not stop the batch;
// each id is reported once.
func (m *Manager) PurgeMany(ctx context.Context, ids []int64) BatchResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batch(ctx, ids, m.purge)
}

// Empty purges every entry and returns how many there were.
func (m *Manager) Empty(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ledger := m.load(ctx)
	if err := m.save(ctx, nil); err != nil {
		return 0, err
	}
	if len(ledger) > 0 {
		e := event.New(event.TypeTrashEmptied, "", 0)
		e.Count = len(ledger)
		m.sink.Publish(ctx, e)
	}
	return len(ledger), nil
}

// restore appends the record first and removes the entry second; if the
// ledger write fails the append is undone.
func (m *Manager) restore(ctx context.Context, id int64) error {
	ledger := m.load(ctx)
	i := indexOf(ledger, id)
	if i < 0 {
		return notFound(id)
	}
	entry := ledger[i]

	origin, err := m.origin(entry.Type)
	if err != nil {
		return err
	}
	rec, err := entry.Decode()
	if err != nil {
		return err
	}
	if err := origin.Append(ctx, rec); err != nil {
		return err
	}

	rest := append(ledger[:i:i], ledger[i+1:]...)
	if err := m.save(ctx, rest); err != nil {
		if undo := origin.Remove(ctx, id); undo != nil {
			m.logger.Error("undoing restore failed",
				zap.String("kind", string(entry.Type)), zap.Int64("id", id), zap.Error(undo))
		}
		return err
	}

	m.logger.Debug("restored", zap.String("kind", string(entry.Type)), zap.Int64("id", id))
	m.publish(ctx, event.TypeRecordRestored, entry)
	return nil
}

func (m *Manager) purge(ctx context.Context, id int64) error {
	ledger := m.load(ctx)
	i := indexOf(ledger, id)
	if i < 0 {
		return notFound(id)
	}
	entry := ledger[i]
	rest := append(ledger[:i:i], ledger[i+1:]...)
	if err := m.save(ctx, rest); err != nil {
		return err
	}

	m.logger.Debug("purged", zap.String("kind", string(entry.Type)), zap.Int64("id", id))
	m.publish(ctx, event.TypeRecordPurged, entry)
	return nil
}

func (m *Manager) batch(ctx context.Context, ids []int64, op func(context.Context, int64) error) BatchResult {
	res := BatchResult{Succeeded: []int64{}, Failed: []BatchFailure{}}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		err := ctx.Err()
		if err == nil {
			err = op(ctx, id)
		}
		if err != nil {
			res.Failed = append(res.Failed, BatchFailure{ID: id, Reason: err.Error(), Err: err})
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
	}
	return res
}

func (m *Manager) origin(kind types.Kind) (Origin, error) {
	o, ok := m.origins[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownKind, string(kind))
	}
	return o, nil
}

func (m *Manager) load(ctx context.Context) []types.TrashEntry {
	return recordstore.LoadAs[types.TrashEntry](ctx, m.store, types.TrashCollection)
}

func (m *Manager) save(ctx context.Context, ledger []types.TrashEntry) error {
	return recordstore.SaveAs(ctx, m.store, types.TrashCollection, ledger)
}

func (m *Manager) publish(ctx context.Context, t event.Type, entry types.TrashEntry) {
	e := event.New(t, entry.Type, entry.ID)
	e.Label = entry.Label
	m.sink.Publish(ctx, e)
}

func indexOf(ledger []types.TrashEntry, id int64) int {
	for i, e := range ledger {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func notFound(id int64) error {
	return &types.NotFoundError{Collection: types.TrashCollection, ID: id}
}

// BatchResult reports a restore or purge of several ids.
type BatchResult struct {
	Succeeded []int64        `json:"succeeded"`
	Failed    []BatchFailure `json:"failed"`
}

// BatchFailure is one id a batch could not process.
type BatchFailure struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// Err joins the failures, or returns nil when every id succeeded.
func (r BatchResult) Err() error {
	errs := make([]error, 0, len(r.Failed))
	for _, f := range r.Failed {
		errs = append(errs, f.Err)
	}
	return errors.Join(errs...)
}
