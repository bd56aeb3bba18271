package types

import "strings"

// DefaultPageSize is the number of records per list page.
const DefaultPageSize = 5

// SortOrder is the direction of a sort.
type SortOrder string

// Sort orders.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder maps "asc"/"desc" (any case) to a SortOrder. The empty
// string is ascending.
func ParseSortOrder(s string) (SortOrder, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return SortAsc, true
	case "desc", "descending":
		return SortDesc, true
	}
	return "", false
}

// Criteria selects and orders one page of a collection.
type Criteria struct {
	Search    string
	Statuses  []Status // records whose status is outside the set are dropped; empty keeps nothing
	SortBy    string   // empty keeps collection order
	Order     SortOrder
	PageIndex int // 1-based
	PageSize  int
}

// DefaultCriteria shows the first page of drafts and published records in
// collection order.
func DefaultCriteria() Criteria {
	return Criteria{
		Statuses:  []Status{StatusDraft, StatusPublished},
		Order:     SortAsc,
		PageIndex: 1,
		PageSize:  DefaultPageSize,
	}
}

// HasStatus reports whether s is in the status set of c.
func (c Criteria) HasStatus(s Status) bool {
	for _, v := range c.Statuses {
		if NormalizeStatus(v) == s {
			return true
		}
	}
	return false
}
