package types

import (
	"fmt"
	"strings"
)

// Kind identifies the content type of a record. It is also the discriminator
// stored in the "type" field of a trash entry.
type Kind string

// Record kinds.
const (
	KindNews        Kind = "news"
	KindActivity    Kind = "activity"
	KindAchievement Kind = "achievement"
	KindFAQ         Kind = "faq"
)

// Standard collection names. Each is a key of the storage medium holding a
// JSON array.
const (
	NewsCollection         = "news"
	ActivitiesCollection   = "activities"
	AchievementsCollection = "achievements"
	FAQsCollection         = "faqs"
	TrashCollection        = "trash"
	LogsCollection         = "logs"
)

// Kinds lists all record kinds in display order.
var Kinds = []Kind{KindNews, KindActivity, KindAchievement, KindFAQ}

// StandardCollections lists every key the record store may read or write.
var StandardCollections = []string{
	NewsCollection,
	ActivitiesCollection,
	AchievementsCollection,
	FAQsCollection,
	TrashCollection,
	LogsCollection,
}

// kindCollections maps each kind to the collection it lives in.
var kindCollections = map[Kind]string{
	KindNews:        NewsCollection,
	KindActivity:    ActivitiesCollection,
	KindAchievement: AchievementsCollection,
	KindFAQ:         FAQsCollection,
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, ok := kindCollections[k]
	return ok
}

// Collection returns the name of the collection holding records of kind k.
// Returns ErrUnknownKind for kinds outside Kinds.
func (k Kind) Collection() (string, error) {
	name, ok := kindCollections[k]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
	}
	return name, nil
}

// ParseKind accepts a kind ("activity") or its collection name
// ("activities"), case-insensitively.
func ParseKind(s string) (Kind, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindCollections {
		if v == string(k) || v == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// IsStandardCollection reports whether name is a key the record store owns.
func IsStandardCollection(name string) bool {
	for _, n := range StandardCollections {
		if n == name {
			return true
		}
	}
	return false
}
