package query

import (
	"slices"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// State holds the criteria of one list screen. Changing the search, the
// status set, the sort or the page size returns to page 1; only SetPage
// moves between pages.
type State struct {
	c types.Criteria
}

// NewState starts at page 1 of every draft and published record in
// collection order.
func NewState(pageSize int) *State {
	c := types.DefaultCriteria()
	if pageSize > 0 {
		c.PageSize = pageSize
	}
	return &State{c: c}
}

// Criteria returns a copy of the current criteria.
func (s *State) Criteria() types.Criteria {
	c := s.c
	c.Statuses = slices.Clone(s.c.Statuses)
	return c
}

// SetSearch replaces the search string.
func (s *State) SetSearch(search string) {
	if search == s.c.Search {
		return
	}
	s.c.Search = search
	s.c.PageIndex = 1
}

// SetStatuses replaces the status filter. An empty set hides every record.
func (s *State) SetStatuses(statuses ...types.Status) {
	s.c.Statuses = slices.Clone(statuses)
	s.c.PageIndex = 1
}

// ToggleStatus adds st to the status filter or removes it, like a
// checkbox.
func (s *State) ToggleStatus(st types.Status) {
	st = types.NormalizeStatus(st)
	if i := slices.Index(s.c.Statuses, st); i >= 0 {
		s.c.Statuses = slices.Delete(slices.Clone(s.c.Statuses), i, i+1)
	} else {
		s.c.Statuses = append(slices.Clone(s.c.Statuses), st)
	}
	s.c.PageIndex = 1
}

// SetSort selects the sort key and direction.
func (s *State) SetSort(key string, order types.SortOrder) {
	if key == s.c.SortBy && order == s.c.Order {
		return
	}
	s.c.SortBy = key
	s.c.Order = order
	s.c.PageIndex = 1
}

// SetPageSize changes the number of records per page.
func (s *State) SetPageSize(size int) {
	if size == s.c.PageSize {
		return
	}
	s.c.PageSize = size
	s.c.PageIndex = 1
}

// SetPage moves to page index. Values below 1 select page 1.
func (s *State) SetPage(index int) {
	if index < 1 {
		index = 1
	}
	s.c.PageIndex = index
}
