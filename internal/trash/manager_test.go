package trash

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shelf/internal/collection"
	"github.com/mesh-intelligence/shelf/internal/event"
	"github.com/mesh-intelligence/shelf/internal/jsonfile"
	"github.com/mesh-intelligence/shelf/internal/recordstore"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

var errInjected = errors.New("injected write failure")

// flakyMedium fails Put for the keys in failPut and calls afterPut, when
// set, once each write succeeds.
type flakyMedium struct {
	types.Medium
	failPut  map[string]bool
	afterPut func(key string)
}

func (m *flakyMedium) Put(ctx context.Context, key string, value []byte) error {
	if m.failPut[key] {
		return errInjected
	}
	if err := m.Medium.Put(ctx, key, value); err != nil {
		return err
	}
	if m.afterPut != nil {
		m.afterPut(key)
	}
	return nil
}

type fixture struct {
	medium *flakyMedium
	store  *recordstore.Store
	news   *collection.Repository[*types.News]
	faqs   *collection.Repository[*types.FAQ]
	trash  *Manager
	events []event.Event
}

func setup(t *testing.T) *fixture {
	t.Helper()
	base, err := jsonfile.Open(t.TempDir())
	require.NoError(t, err)

	f := &fixture{medium: &flakyMedium{Medium: base, failPut: map[string]bool{}}}
	f.store = recordstore.New(f.medium, nil)
	ids := collection.NewIDGenerator()
	f.news = collection.NewNews(f.store, collection.WithIDs(ids))
	f.faqs = collection.NewFAQs(f.store, collection.WithIDs(ids))
	sink := event.SinkFunc(func(_ context.Context, e event.Event) { f.events = append(f.events, e) })
	f.trash = NewManager(f.store, []Origin{f.news, f.faqs}, WithSink(sink))
	return f
}

// seedNews stores the two records of the news scenario with fixed ids.
func (f *fixture) seedNews(t *testing.T) {
	t.Helper()
	require.NoError(t, recordstore.SaveAs(context.Background(), f.store, types.NewsCollection, []*types.News{
		{ID: 1, Title: "A", Description: "a", Date: "2024-01-01", Status: types.StatusDraft},
		{ID: 2, Title: "B", Description: "b", Date: "2024-01-02", Status: types.StatusPublished},
	}))
}

func newsIDs(t *testing.T, f *fixture) []int64 {
	t.Helper()
	list, err := f.news.List(context.Background())
	require.NoError(t, err)
	out := []int64{}
	for _, n := range list {
		out = append(out, n.ID)
	}
	return out
}

func ledgerIDs(t *testing.T, f *fixture) []int64 {
	t.Helper()
	ledger, err := f.trash.List(context.Background())
	require.NoError(t, err)
	out := []int64{}
	for _, e := range ledger {
		out = append(out, e.ID)
	}
	return out
}

func TestSoftDeleteScenario(t *testing.T) {
	f := setup(t)
	f.seedNews(t)
	ctx := context.Background()

	entry, err := f.trash.SoftDelete(ctx, types.KindNews, 2)
	require.NoError(t, err)
	assert.Equal(t, types.KindNews, entry.Type)
	assert.Equal(t, "B", entry.Label)

	assert.Equal(t, []int64{1}, newsIDs(t, f))

	ledger, err := f.trash.List(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, types.KindNews, ledger[0].Type)
	assert.Equal(t, int64(2), ledger[0].ID)

	raw, err := f.medium.Get(ctx, types.TrashCollection)
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"id":2,"title":"B","description":"b","date":"2024-01-02","status":"published","type":"news"}]`,
		string(raw))

	require.NoError(t, f.trash.Restore(ctx, 2))
	assert.Equal(t, []int64{1, 2}, newsIDs(t, f), "restored records are appended")
	assert.Empty(t, ledgerIDs(t, f))

	require.Len(t, f.events, 2)
	assert.Equal(t, event.TypeRecordTrashed, f.events[0].Type)
	assert.Equal(t, event.TypeRecordRestored, f.events[1].Type)
	assert.Equal(t, types.KindNews, f.events[1].Kind)
}

func TestSoftDeleteHoldsOriginAgainstConcurrentUpdate(t *testing.T) {
	f := setup(t)
	f.seedNews(t)
	ctx := context.Background()

	// An update arriving right after the ledger write must not succeed
	// against a record that is already on its way to the trash.
	updated := make(chan error, 1)
	f.medium.afterPut = func(key string) {
		if key != types.TrashCollection {
			return
		}
		f.medium.afterPut = nil
		go func() {
			_, err := f.news.Update(ctx, 2, types.Patch{"title": "B edited"})
			updated <- err
		}()
	}

	entry, err := f.trash.SoftDelete(ctx, types.KindNews, 2)
	require.NoError(t, err)
	assert.Equal(t, "B", entry.Label)

	select {
	case err := <-updated:
		assert.ErrorIs(t, err, types.ErrNotFound, "the update waits for the delete and then misses")
	case <-time.After(5 * time.Second):
		t.Fatal("update never returned")
	}

	assert.Equal(t, []int64{1}, newsIDs(t, f))
	ledger, err := f.trash.List(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, "B", ledger[0].Label)
}

func TestSoftDeleteRestoreMovesRecordToEnd(t *testing.T) {
	f := setup(t)
	f.seedNews(t)
	ctx := context.Background()
	before, err := f.news.List(ctx)
	require.NoError(t, err)

	_, err = f.trash.SoftDelete(ctx, types.KindNews, 1)
	require.NoError(t, err)
	require.NoError(t, f.trash.Restore(ctx, 1))

	after, err := f.news.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, newsIDs(t, f))
	assert.ElementsMatch(t, before, after, "member set is unchanged")
}

func TestSoftDeleteErrors(t *testing.T) {
	f := setup(t)
	f.seedNews(t)
	ctx := context.Background()

	_, err := f.trash.SoftDelete(ctx, types.KindNews, 404)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = f.trash.SoftDelete(ctx, types.KindAchievement, 1)
	assert.ErrorIs(t, err, types.ErrUnknownKind, "no achievements origin is registered")

	_, err = f.trash.SoftDelete(ctx, types.KindFAQ, 1)
	assert.ErrorIs(t, err, types.ErrNotFound, "ids are looked up in the named collection only")

	assert.Equal(t, []int64{1, 2}, newsIDs(t, f))
	assert.Empty(t, ledgerIDs(t, f))
}

func TestSoftDeleteLedgerWriteFails(t *testing.T) {
	f := setup(t)
	f.seedNews(t)
	f.medium.failPut[types.TrashCollection] = true

	_, err := f.trash.SoftDelete(context.Background(), types.KindNews, 1)
	assert.ErrorIs(t, err, errInjected)
	assert.Equal(t, []int64{1, 2}, newsIDs(t, f), "record stays live")
	assert.Empty(t, f.events)
}

func TestSoftDeleteOriginWriteFailsUndoesLedger(t *testing.T) {
	f := setup(t)
	f.seedNews(t)
	f.medium.failPut[types.NewsCollection] = true

	_, err := f.trash.SoftDelete(context.Background(), types.KindNews, 1)
	assert.ErrorIs(t, err, errInjected)

	assert.Equal(t, []int64{1, 2}, newsIDs(t, f))
	assert.Empty(t, ledgerIDs(t, f), "record is never in both places")
}

func TestRestoreLedgerWriteFailsUndoesAppend(t *testing.T) {
	f := setup(t)
	f.seedNews(t)
	ctx := context.Background()
	_, err := f.trash.SoftDelete(ctx, types.KindNews, 2)
	require.NoError(t, err)

	f.medium.failPut[types.TrashCollection] = true
	err = f.trash.Restore(ctx, 2)
	assert.ErrorIs(t, err, errInjected)

	f.medium.failPut[types.TrashCollection] = false
	assert.Equal(t, []int64{1}, newsIDs(t, f))
	assert.Equal(t, []int64{2}, ledgerIDs(t, f))
}

func TestRestoreConflict(t *testing.T) {
	f := setup(t)
	f.seedNews(t)
	ctx := context.Background()
	_, err := f.trash.SoftDelete(ctx, types.KindNews, 2)
	require.NoError(t, err)

	// Another writer put id 2 back into the live collection.
	require.NoError(t, f.news.Append(ctx, &types.News{ID: 2, Title: "B2", Description: "b", Date: "2024-01-02"}))

	err = f.trash.Restore(ctx, 2)
	assert.ErrorIs(t, err, types.ErrConflict)
	assert.Equal(t, []int64{2}, ledgerIDs(t, f), "entry stays in the trash")
}

func TestRestoreManyPartialSuccess(t *testing.T) {
	f := setup(t)
	f.seedNews(t)
	ctx := context.Background()
	faq, err := f.faqs.Create(ctx, &types.FAQ{Question: "q?", Answer: "a"})
	require.NoError(t, err)

	for _, step := range []struct {
		kind types.Kind
		id   int64
	}{{types.KindNews, 1}, {types.KindNews, 2}, {types.KindFAQ, faq.ID}} {
		_, err := f.trash.SoftDelete(ctx, step.kind, step.id)
		require.NoError(t, err)
	}

	res := f.trash.RestoreMany(ctx, []int64{faq.ID, 999, 1, faq.ID, 1})
	assert.Equal(t, []int64{faq.ID, 1}, res.Succeeded)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, int64(999), res.Failed[0].ID)
	assert.ErrorIs(t, res.Failed[0].Err, types.ErrNotFound)
	assert.ErrorIs(t, res.Err(), types.ErrNotFound)

	assert.Equal(t, []int64{1}, newsIDs(t, f))
	faqs, err := f.faqs.List(ctx)
	require.NoError(t, err)
	require.Len(t, faqs, 1)
	assert.Equal(t, faq.ID, faqs[0].ID)
	assert.Equal(t, []int64{2}, ledgerIDs(t, f))
}

func TestPurge(t *testing.T) {
	f := setup(t)
	f.seedNews(t)
	ctx := context.Background()
	_, err := f.trash.SoftDelete(ctx, types.KindNews, 2)
	require.NoError(t, err)

	require.NoError(t, f.trash.Purge(ctx, 2))
	assert.Empty(t, ledgerIDs(t, f))
	assert.Equal(t, []int64{1}, newsIDs(t, f))

	assert.ErrorIs(t, f.trash.Restore(ctx, 2), types.ErrNotFound, "purge is irreversible")
	assert.ErrorIs(t, f.trash.Purge(ctx, 2), types.ErrNotFound)

	_, err = f.news.Get(ctx, 2)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, event.TypeRecordPurged, f.events[len(f.events)-1].Type)
}

func TestPurgeMany(t *testing.T) {
	f := setup(t)
	f.seedNews(t)
	ctx := context.Background()
	for _, id := range []int64{1, 2} {
		_, err := f.trash.SoftDelete(ctx, types.KindNews, id)
		require.NoError(t, err)
	}

	res := f.trash.PurgeMany(ctx, []int64{2, 2, 3})
	assert.Equal(t, []int64{2}, res.Succeeded)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, int64(3), res.Failed[0].ID)
	assert.Equal(t, []int64{1}, ledgerIDs(t, f))

	res = f.trash.PurgeMany(ctx, nil)
	assert.Empty(t, res.Succeeded)
	assert.NoError(t, res.Err())
}

func TestEmpty(t *testing.T) {
	f := setup(t)
	f.seedNews(t)
	ctx := context.Background()

	n, err := f.trash.Empty(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, f.events, "emptying an empty trash announces nothing")

	for _, id := range []int64{1, 2} {
		_, err := f.trash.SoftDelete(ctx, types.KindNews, id)
		require.NoError(t, err)
	}
	n, err = f.trash.Empty(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, ledgerIDs(t, f))

	last := f.events[len(f.events)-1]
	assert.Equal(t, event.TypeTrashEmptied, last.Type)
	assert.Equal(t, 2, last.Count)
}

func TestListDropsUnknownTypes(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.medium.Put(ctx, types.TrashCollection, []byte(`[
		{"id":1,"title":"kept","type":"news"},
		{"id":2,"title":"stray","type":"poster"},
		{"id":3,"title":"untagged"},
		{"id":4,"question":"kept too?","answer":"yes","type":"faq"}
	]`)))

	ledger, err := f.trash.List(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.Equal(t, int64(1), ledger[0].ID)
	assert.Equal(t, "kept too?", ledger[1].Label)
}

func TestCorruptLedgerReadsEmpty(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.medium.Put(ctx, types.TrashCollection, []byte(`{"not":"an array"}`)))

	ledger, err := f.trash.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ledger)
}
