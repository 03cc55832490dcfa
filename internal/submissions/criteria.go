package submissions

import "strings"

type DateFilter string

const (
	DateAll        DateFilter = "all"
	DateLast7Days  DateFilter = "7days"
	DateLast30Days DateFilter = "30days"
	DateLast90Days DateFilter = "90days"
)

// maxAgeDays returns the age threshold in whole days. ok is false for
// DateAll and unknown values, which never exclude a record.
func (f DateFilter) maxAgeDays() (days int, ok bool) {
	switch f {
	case DateLast7Days:
		return 7, true
	case DateLast30Days:
		return 30, true
	case DateLast90Days:
		return 90, true
	}
	return 0, false
}

type SortField string

const (
	SortByDate   SortField = "date"
	SortByName   SortField = "name"
	SortByStatus SortField = "status"
)

type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

func (d SortDirection) sign() int {
	if d == Ascending {
		return 1
	}
	return -1
}

// IDSet is the set of record ids a reviewer has checked.
type IDSet map[string]struct{}

func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Criteria holds the dashboard's current filter, sort and selection state.
type Criteria struct {
	SearchQuery   string
	DateFilter    DateFilter
	SortField     SortField
	SortDirection SortDirection
	SelectedIDs   IDSet
}

// DefaultCriteria shows everything, newest first.
func DefaultCriteria() Criteria {
	return Criteria{
		DateFilter:    DateAll,
		SortField:     SortByDate,
		SortDirection: Descending,
	}
}

// ParseCriteria builds Criteria from loose string input such as query
// parameters or CLI flags. Unknown values fall back to the defaults.
func ParseCriteria(query, date, sort, order string, selected []string) Criteria {
	c := DefaultCriteria()
	c.SearchQuery = strings.TrimSpace(query)

	switch f := DateFilter(strings.ToLower(date)); f {
	case DateAll, DateLast7Days, DateLast30Days, DateLast90Days:
		c.DateFilter = f
	}
	switch f := SortField(strings.ToLower(sort)); f {
	case SortByDate, SortByName, SortByStatus:
		c.SortField = f
	}
	switch strings.ToLower(order) {
	case "asc", "ascending":
		c.SortDirection = Ascending
	case "desc", "descending":
		c.SortDirection = Descending
	}
	if len(selected) > 0 {
		c.SelectedIDs = NewIDSet(selected...)
	}
	return c
}
