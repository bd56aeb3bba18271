// Package query computes the page a list screen shows: records matching a
// search string and status set, sorted by one key, cut to one page.
//
// Apply is a pure function of its inputs. It never reads or writes storage.
package query

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// FieldKind selects how a sort key compares.
type FieldKind int

const (
	// Text compares with the collation of the view's language.
	Text FieldKind = iota
	// Date compares calendar dates. Values that do not parse sort first.
	Date
)

// Field is a named string accessor over T.
type Field[T any] struct {
	Name  string
	Kind  FieldKind
	Value func(T) string
}

// Schema tells a View which fields of T are searched and sortable.
type Schema[T any] struct {
	Search []Field[T]
	Sort   []Field[T]

	// Status returns the status of a record. A nil Status disables the
	// status filter.
	Status func(T) types.Status
}

// SortKeys returns the names accepted as Criteria.SortBy.
func (s Schema[T]) SortKeys() []string {
	keys := make([]string, len(s.Sort))
	for i, f := range s.Sort {
		keys[i] = f.Name
	}
	return keys
}

func (s Schema[T]) sortField(name string) (Field[T], bool) {
	for _, f := range s.Sort {
		if f.Name == name {
			return f, true
		}
	}
	return Field[T]{}, false
}

// Page is one page of a filtered and sorted collection.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"total_count"` // matches before pagination
	PageIndex  int `json:"page_index"`
	PageSize   int `json:"page_size"`
	PageCount  int `json:"page_count"`
}

// View applies criteria to collections of T.
type View[T any] struct {
	schema   Schema[T]
	lang     language.Tag
	pageSize int
}

// NewView returns a view that sorts text in the language named by locale
// (a BCP 47 tag; unparseable tags fall back to English) and uses pageSize
// when the criteria leave it unset.
func NewView[T any](schema Schema[T], locale string, pageSize int) *View[T] {
	lang, err := language.Parse(locale)
	if err != nil {
		lang = language.English
	}
	if pageSize <= 0 {
		pageSize = types.DefaultPageSize
	}
	return &View[T]{schema: schema, lang: lang, pageSize: pageSize}
}

// Schema returns the schema of v.
func (v *View[T]) Schema() Schema[T] { return v.schema }

// Apply filters, sorts and paginates records. The input slice is not
// modified. It fails only for a sort key outside the schema.
func (v *View[T]) Apply(records []T, c types.Criteria) (Page[T], error) {
	size := c.PageSize
	if size <= 0 {
		size = v.pageSize
	}
	index := c.PageIndex
	if index < 1 {
		index = 1
	}

	var key Field[T]
	if c.SortBy != "" {
		f, ok := v.schema.sortField(c.SortBy)
		if !ok {
			return Page[T]{}, fmt.Errorf("%w: %q (valid: %s)", types.ErrInvalidSortKey, c.SortBy, strings.Join(v.schema.SortKeys(), ", "))
		}
		key = f
	}

	matched := v.filter(records, c)
	if key.Value != nil {
		v.sort(matched, key, c.Order == types.SortDesc)
	}

	total := len(matched)
	count := total / size
	if total%size != 0 {
		count++
	}
	page := Page[T]{
		Items:      []T{},
		TotalCount: total,
		PageIndex:  index,
		PageSize:   size,
		PageCount:  count,
	}
	// index-1 < count keeps the multiplication below total.
	if index-1 < count {
		start := (index - 1) * size
		end := start + min(size, total-start)
		page.Items = matched[start:end]
	}
	return page, nil
}

func (v *View[T]) filter(records []T, c types.Criteria) []T {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(c.Search))

	out := make([]T, 0, len(records))
	for _, r := range records {
		if v.schema.Status != nil && !c.HasStatus(types.NormalizeStatus(v.schema.Status(r))) {
			continue
		}
		if needle != "" && !v.matches(fold, r, needle) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (v *View[T]) matches(fold cases.Caser, r T, needle string) bool {
	for _, f := range v.schema.Search {
		if strings.Contains(fold.String(f.Value(r)), needle) {
			return true
		}
	}
	return false
}

// sort orders records in place. Ties keep their input order in both
// directions.
func (v *View[T]) sort(records []T, key Field[T], desc bool) {
	var cmp func(a, b T) int
	switch key.Kind {
	case Date:
		cmp = func(a, b T) int { return compareDates(key.Value(a), key.Value(b)) }
	default:
		col := collate.New(v.lang, collate.IgnoreCase)
		cmp = func(a, b T) int { return col.CompareString(key.Value(a), key.Value(b)) }
	}
	if desc {
		asc := cmp
		cmp = func(a, b T) int { return asc(b, a) }
	}
	slices.SortStableFunc(records, cmp)
}

func compareDates(a, b string) int {
	ta, okA := types.ParseDate(a)
	tb, okB := types.ParseDate(b)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return -1
	case !okB:
		return 1
	}
	return ta.Compare(tb)
}

// Apply runs a one-off view with the default language and page size.
func Apply[T any](records []T, c types.Criteria, schema Schema[T]) (Page[T], error) {
	return NewView(schema, types.DefaultLocale, types.DefaultPageSize).Apply(records, c)
}
