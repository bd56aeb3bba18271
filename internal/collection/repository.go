// Package collection implements create, list, update and remove for one
// named collection of records.
//
// Every operation reads the whole collection, changes it in memory and
// writes it back. A mutex serializes the operations of one Repository;
// writers in other processes are not coordinated and the last write wins.
package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/shelf/internal/event"
	"github.com/mesh-intelligence/shelf/internal/recordstore"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Accessor is the kind-agnostic view of a Repository used by the trash
// manager and the CLI.
type Accessor interface {
	Kind() types.Kind
	Name() string
	Records(ctx context.Context) ([]types.Record, error)
	Find(ctx context.Context, id int64) (types.Record, error)
	CreateRecord(ctx context.Context, draft types.Record) (types.Record, error)
	UpdateRecord(ctx context.Context, id int64, patch types.Patch) (types.Record, error)

	// Append adds r at the end of the collection keeping its id. It fails
	// with types.ErrConflict if the id is already present.
	Append(ctx context.Context, r types.Record) error

	// Remove deletes the record with id without passing through the trash.
	Remove(ctx context.Context, id int64) error

	// Take removes the record with id once fn accepts it. The repository
	// stays locked while fn runs.
	Take(ctx context.Context, id int64, fn func(types.Record) error) error
}

// Repository stores records of one kind. T is the pointer type of the
// record, for example *types.News.
type Repository[T types.Record] struct {
	mu sync.Mutex

	kind   types.Kind
	name   string
	fields map[string]bool // json names accepted in a patch
	newT   func() T
	store  *recordstore.Store
	ids    *IDGenerator
	sink   event.Sink
	logger *zap.Logger
}

var (
	_ Accessor = (*Repository[*types.News])(nil)
	_ Accessor = (*Repository[*types.Activity])(nil)
	_ Accessor = (*Repository[*types.Achievement])(nil)
	_ Accessor = (*Repository[*types.FAQ])(nil)
)

// Option configures a Repository.
type Option func(*options)

type options struct {
	ids    *IDGenerator
	sink   event.Sink
	logger *zap.Logger
}

// WithIDs shares an id generator between repositories.
func WithIDs(g *IDGenerator) Option { return func(o *options) { o.ids = g } }

// WithSink sets the sink notified after create and update.
func WithSink(s event.Sink) Option { return func(o *options) { o.sink = s } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

// New returns a repository for the records built by newT. The collection
// name follows from the record's kind.
func New[T types.Record](store *recordstore.Store, newT func() T, opts ...Option) (*Repository[T], error) {
	proto := newT()
	name, err := proto.Kind().Collection()
	if err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ids == nil {
		o.ids = NewIDGenerator()
	}
	if o.sink == nil {
		o.sink = event.Nop
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	return &Repository[T]{
		kind:   proto.Kind(),
		name:   name,
		fields: jsonFields(proto),
		newT:   newT,
		store:  store,
		ids:    o.ids,
		sink:   o.sink,
		logger: o.logger.Named(name),
	}, nil
}

// NewNews returns the repository of the news collection.
func NewNews(store *recordstore.Store, opts ...Option) *Repository[*types.News] {
	return mustNew(New(store, func() *types.News { return &types.News{} }, opts...))
}

// NewActivities returns the repository of the activities collection.
func NewActivities(store *recordstore.Store, opts ...Option) *Repository[*types.Activity] {
	return mustNew(New(store, func() *types.Activity { return &types.Activity{} }, opts...))
}

// NewAchievements returns the repository of the achievements collection.
func NewAchievements(store *recordstore.Store, opts ...Option) *Repository[*types.Achievement] {
	return mustNew(New(store, func() *types.Achievement { return &types.Achievement{} }, opts...))
}

// NewFAQs returns the repository of the faqs collection.
func NewFAQs(store *recordstore.Store, opts ...Option) *Repository[*types.FAQ] {
	return mustNew(New(store, func() *types.FAQ { return &types.FAQ{} }, opts...))
}

func mustNew[T types.Record](r *Repository[T], err error) *Repository[T] {
	if err != nil {
		panic(err)
	}
	return r
}

// Kind returns the kind of record held.
func (r *Repository[T]) Kind() types.Kind { return r.kind }

// Name returns the collection name.
func (r *Repository[T]) Name() string { return r.name }

// List returns every record in collection order.
func (r *Repository[T]) List(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx), nil
}

// Get returns the record with id, or a *types.NotFoundError.
func (r *Repository[T]) Get(ctx context.Context, id int64) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	records := r.load(ctx)
	i := indexOf(records, id)
	if i < 0 {
		return zero, r.notFound(id)
	}
	return records[i], nil
}

// Create validates draft, assigns it a fresh id and appends it. An empty
// status becomes draft. Any id already set on draft is replaced. Nothing is
// written when validation fails.
func (r *Repository[T]) Create(ctx context.Context, draft T) (T, error) {
	var zero T
	if isNil(draft) {
		return zero, &types.ValidationError{Kind: r.kind}
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	// A failed create hands draft back as it came in.
	id, status := draft.RecordID(), draft.RecordStatus()
	reset := func() {
		draft.SetRecordID(id)
		draft.SetRecordStatus(status)
	}
	types.Normalize(draft)
	if err := types.Validate(draft); err != nil {
		reset()
		return zero, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	records := r.load(ctx)
	r.ids.Observe(maxID(records))
	draft.SetRecordID(r.ids.Next())
	records = append(records, draft)
	if err := r.save(ctx, records); err != nil {
		reset()
		return zero, err
	}

	r.logger.Debug("created", zap.Int64("id", draft.RecordID()))
	e := event.New(event.TypeRecordCreated, r.kind, draft.RecordID())
	e.Label = types.Label(draft)
	r.sink.Publish(ctx, e)
	return draft, nil
}

// Update merges patch over the record with id and stores the result in
// place. Fields missing from the patch keep their value; an "id" in the
// patch is ignored. The merged record must pass validation.
func (r *Repository[T]) Update(ctx context.Context, id int64, patch types.Patch) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	records := r.load(ctx)
	i := indexOf(records, id)
	if i < 0 {
		return zero, r.notFound(id)
	}
	updated, err := r.merge(records[i], patch)
	if err != nil {
		return zero, err
	}
	records[i] = updated
	if err := r.save(ctx, records); err != nil {
		return zero, err
	}

	r.logger.Debug("updated", zap.Int64("id", id))
	e := event.New(event.TypeRecordUpdated, r.kind, id)
	e.Label = types.Label(updated)
	r.sink.Publish(ctx, e)
	return updated, nil
}

// Remove deletes the record with id. User-facing deletes go through the
// trash manager instead.
func (r *Repository[T]) Remove(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	records := r.load(ctx)
	i := indexOf(records, id)
	if i < 0 {
		return r.notFound(id)
	}
	records = append(records[:i], records[i+1:]...)
	return r.save(ctx, records)
}

// Take hands the record with id to fn and removes it if fn returns nil.
// No other operation on the repository runs in between. An error from fn
// is returned as is and leaves the collection untouched.
func (r *Repository[T]) Take(ctx context.Context, id int64, fn func(types.Record) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	records := r.load(ctx)
	i := indexOf(records, id)
	if i < 0 {
		return r.notFound(id)
	}
	if err := fn(records[i]); err != nil {
		return err
	}
	records = append(records[:i], records[i+1:]...)
	return r.save(ctx, records)
}

// Append adds rec at the end of the collection with its id unchanged.
func (r *Repository[T]) Append(ctx context.Context, rec types.Record) error {
	t, err := r.cast(rec)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	types.Normalize(t)

	r.mu.Lock()
	defer r.mu.Unlock()

	records := r.load(ctx)
	if indexOf(records, t.RecordID()) >= 0 {
		return fmt.Errorf("%w: %s id %d", types.ErrConflict, r.name, t.RecordID())
	}
	r.ids.Observe(t.RecordID())
	return r.save(ctx, append(records, t))
}

// Records returns List as records of the kind-agnostic type.
func (r *Repository[T]) Records(ctx context.Context) ([]types.Record, error) {
	list, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.Record, len(list))
	for i, v := range list {
		out[i] = v
	}
	return out, nil
}

// Find is Get for callers that do not know T.
func (r *Repository[T]) Find(ctx context.Context, id int64) (types.Record, error) {
	return r.Get(ctx, id)
}

// CreateRecord is Create for callers that do not know T.
func (r *Repository[T]) CreateRecord(ctx context.Context, draft types.Record) (types.Record, error) {
	t, err := r.cast(draft)
	if err != nil {
		return nil, err
	}
	return r.Create(ctx, t)
}

// UpdateRecord is Update for callers that do not know T.
func (r *Repository[T]) UpdateRecord(ctx context.Context, id int64, patch types.Patch) (types.Record, error) {
	return r.Update(ctx, id, patch)
}

// load decodes the collection. Elements that do not decode or carry no id
// are dropped.
func (r *Repository[T]) load(ctx context.Context) []T {
	raw := r.store.Load(ctx, r.name)
	out := make([]T, 0, len(raw))
	for i, item := range raw {
		v := r.newT()
		if err := json.Unmarshal(item, v); err != nil || v.RecordID() <= 0 {
			r.logger.Warn("skipping malformed record", zap.Int("index", i), zap.Error(err))
			continue
		}
		types.Normalize(v)
		out = append(out, v)
	}
	return out
}

func (r *Repository[T]) save(ctx context.Context, records []T) error {
	return recordstore.SaveAs(ctx, r.store, r.name, records)
}

func (r *Repository[T]) notFound(id int64) error {
	return &types.NotFoundError{Collection: r.name, ID: id}
}

func (r *Repository[T]) cast(rec types.Record) (T, error) {
	t, ok := rec.(T)
	if !ok || isNil(rec) {
		var zero T
		return zero, fmt.Errorf("%w: %T does not belong in %s", types.ErrInvalidData, rec, r.name)
	}
	return t, nil
}

// merge applies patch on a copy of cur. Disallowed values are reported
// only for fields the patch sets, so a stored record carrying a value
// that no longer validates can still be edited elsewhere. Required fields
// are always checked.
func (r *Repository[T]) merge(cur T, patch types.Patch) (T, error) {
	var zero T

	base, err := json.Marshal(cur)
	if err != nil {
		return zero, fmt.Errorf("encoding %s %d: %w", r.kind, cur.RecordID(), err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(base, &fields); err != nil {
		return zero, fmt.Errorf("encoding %s %d: %w", r.kind, cur.RecordID(), err)
	}

	var unknown []string
	for k, v := range patch {
		if k == "id" {
			continue
		}
		if !r.fields[k] {
			unknown = append(unknown, k)
			continue
		}
		fields[k] = v
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return zero, &types.ValidationError{Kind: r.kind, Invalid: unknown}
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	next := r.newT()
	if err := json.Unmarshal(data, next); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return zero, &types.ValidationError{Kind: r.kind, Invalid: []string{typeErr.Field}}
		}
		return zero, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	next.SetRecordID(cur.RecordID())
	types.Normalize(next)
	if err := types.Validate(next); err != nil {
		var ve *types.ValidationError
		if !errors.As(err, &ve) {
			return zero, err
		}
		var invalid []string
		for _, f := range ve.Invalid {
			if _, ok := patch[f]; ok {
				invalid = append(invalid, f)
			}
		}
		ve.Invalid = invalid
		if len(ve.Missing) > 0 || len(ve.Invalid) > 0 {
			return zero, ve
		}
	}
	return next, nil
}

func indexOf[T types.Record](records []T, id int64) int {
	for i, rec := range records {
		if rec.RecordID() == id {
			return i
		}
	}
	return -1
}

func maxID[T types.Record](records []T) int64 {
	var top int64
	for _, rec := range records {
		if id := rec.RecordID(); id > top {
			top = id
		}
	}
	return top
}

func isNil(r types.Record) bool {
	if r == nil {
		return true
	}
	v := reflect.ValueOf(r)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// jsonFields collects the json names of the struct fields of rec.
func jsonFields(rec types.Record) map[string]bool {
	fields := map[string]bool{}
	t := reflect.TypeOf(rec)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return fields
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		fields[name] = true
	}
	return fields
}
