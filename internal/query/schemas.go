package query

import (
	"fmt"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Sort key names.
const (
	KeyTitle    = "title"
	KeyName     = "name"
	KeyQuestion = "question"
	KeyDate     = "date"
	KeyLabel    = "label"
	KeyType     = "type"
)

// NewsSchema searches title and description and sorts by title or date.
var NewsSchema = Schema[*types.News]{
	Search: []Field[*types.News]{
		{Name: "title", Value: func(n *types.News) string { return n.Title }},
		{Name: "description", Value: func(n *types.News) string { return n.Description }},
	},
	Sort: []Field[*types.News]{
		{Name: KeyTitle, Kind: Text, Value: func(n *types.News) string { return n.Title }},
		{Name: KeyDate, Kind: Date, Value: func(n *types.News) string { return n.Date }},
	},
	Status: func(n *types.News) types.Status { return n.Status },
}

// ActivitySchema searches title and description and sorts by title or date.
var ActivitySchema = Schema[*types.Activity]{
	Search: []Field[*types.Activity]{
		{Name: "title", Value: func(a *types.Activity) string { return a.Title }},
		{Name: "description", Value: func(a *types.Activity) string { return a.Description }},
	},
	Sort: []Field[*types.Activity]{
		{Name: KeyTitle, Kind: Text, Value: func(a *types.Activity) string { return a.Title }},
		{Name: KeyDate, Kind: Date, Value: func(a *types.Activity) string { return a.Date }},
	},
	Status: func(a *types.Activity) types.Status { return a.Status },
}

// AchievementSchema searches name and achievement text and sorts by name or
// date.
var AchievementSchema = Schema[*types.Achievement]{
	Search: []Field[*types.Achievement]{
		{Name: "name", Value: func(a *types.Achievement) string { return a.Name }},
		{Name: "achievement", Value: func(a *types.Achievement) string { return a.Achievement }},
	},
	Sort: []Field[*types.Achievement]{
		{Name: KeyName, Kind: Text, Value: func(a *types.Achievement) string { return a.Name }},
		{Name: KeyDate, Kind: Date, Value: func(a *types.Achievement) string { return a.Date }},
	},
	Status: func(a *types.Achievement) types.Status { return a.Status },
}

// FAQSchema searches question and answer and sorts by question.
var FAQSchema = Schema[*types.FAQ]{
	Search: []Field[*types.FAQ]{
		{Name: "question", Value: func(f *types.FAQ) string { return f.Question }},
		{Name: "answer", Value: func(f *types.FAQ) string { return f.Answer }},
	},
	Sort: []Field[*types.FAQ]{
		{Name: KeyQuestion, Kind: Text, Value: func(f *types.FAQ) string { return f.Question }},
	},
	Status: func(f *types.FAQ) types.Status { return f.Status },
}

// TrashSchema searches the entry label and sorts by label or origin kind.
// The trash listing has no status filter.
var TrashSchema = Schema[types.TrashEntry]{
	Search: []Field[types.TrashEntry]{
		{Name: KeyLabel, Value: func(e types.TrashEntry) string { return e.Label }},
	},
	Sort: []Field[types.TrashEntry]{
		{Name: KeyLabel, Kind: Text, Value: func(e types.TrashEntry) string { return e.Label }},
		{Name: KeyType, Kind: Text, Value: func(e types.TrashEntry) string { return string(e.Type) }},
	},
}

// Widen converts a schema over a record type into one over types.Record, so
// callers holding kind-agnostic records can query them. Records of another
// kind than T never match a search and sort as empty strings.
func Widen[T types.Record](s Schema[T]) Schema[types.Record] {
	conv := func(fields []Field[T]) []Field[types.Record] {
		out := make([]Field[types.Record], len(fields))
		for i, f := range fields {
			value := f.Value
			out[i] = Field[types.Record]{
				Name: f.Name,
				Kind: f.Kind,
				Value: func(r types.Record) string {
					if t, ok := r.(T); ok {
						return value(t)
					}
					return ""
				},
			}
		}
		return out
	}

	wide := Schema[types.Record]{Search: conv(s.Search), Sort: conv(s.Sort)}
	if status := s.Status; status != nil {
		wide.Status = func(r types.Record) types.Status {
			if t, ok := r.(T); ok {
				return status(t)
			}
			return ""
		}
	}
	return wide
}

// SchemaFor returns the widened schema of kind k.
func SchemaFor(k types.Kind) (Schema[types.Record], error) {
	switch k {
	case types.KindNews:
		return Widen(NewsSchema), nil
	case types.KindActivity:
		return Widen(ActivitySchema), nil
	case types.KindAchievement:
		return Widen(AchievementSchema), nil
	case types.KindFAQ:
		return Widen(FAQSchema), nil
	}
	return Schema[types.Record]{}, fmt.Errorf("%w: %q", types.ErrUnknownKind, string(k))
}
