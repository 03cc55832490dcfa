package submissions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantkyc/kycdesk/internal/models"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestProcessor() *Processor {
	return NewProcessor(WithClock(func() time.Time { return fixedNow }))
}

func daysAgo(n int) string {
	return models.Timestamp(fixedNow.Add(-time.Duration(n) * 24 * time.Hour))
}

func sub(id, name, address string, status models.Status, submittedAt string) models.Submission {
	data := map[string]any{}
	if name != "" {
		data["fullName"] = name
	}
	if address != "" {
		data["address"] = address
	}
	return models.Submission{ID: id, SubmittedAt: submittedAt, Status: status, Data: data}
}

func ids(records []models.Submission) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestView_DateFilterKeepsRecentOnly(t *testing.T) {
	p := newTestProcessor()
	records := []models.Submission{
		sub("jane", "Jane Smith", "", models.StatusPending, daysAgo(2)),
		sub("john", "John Doe", "", models.StatusApproved, daysAgo(40)),
	}

	for _, field := range []SortField{SortByDate, SortByName, SortByStatus} {
		t.Run(string(field), func(t *testing.T) {
			c := DefaultCriteria()
			c.DateFilter = DateLast30Days
			c.SortField = field
			assert.Equal(t, []string{"jane"}, ids(p.View(records, c)))
		})
	}
}

func TestView_DateThresholds(t *testing.T) {
	p := newTestProcessor()
	records := []models.Submission{
		sub("d0", "", "", models.StatusPending, daysAgo(0)),
		sub("d7", "", "", models.StatusPending, daysAgo(7)),
		sub("d8", "", "", models.StatusPending, daysAgo(8)),
		sub("d30", "", "", models.StatusPending, daysAgo(30)),
		sub("d90", "", "", models.StatusPending, daysAgo(90)),
		sub("d91", "", "", models.StatusPending, daysAgo(91)),
		sub("bad", "", "", models.StatusPending, "not a date"),
	}

	tests := []struct {
		filter DateFilter
		want   []string
	}{
		{DateAll, []string{"d0", "d7", "d8", "d30", "d90", "d91", "bad"}},
		{DateLast7Days, []string{"d0", "d7"}},
		{DateLast30Days, []string{"d0", "d7", "d8", "d30"}},
		{DateLast90Days, []string{"d0", "d7", "d8", "d30", "d90"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			c := Criteria{DateFilter: tt.filter, SortField: SortByDate, SortDirection: Descending}
			assert.ElementsMatch(t, tt.want, ids(p.View(records, c)))
		})
	}
}

func TestView_SearchMatchesNameOrAddress(t *testing.T) {
	p := newTestProcessor()
	records := []models.Submission{
		sub("1", "Jane Smith", "12 Elm Street", models.StatusPending, daysAgo(1)),
		sub("2", "John Doe", "4 Oak Avenue", models.StatusPending, daysAgo(2)),
		sub("3", "", "", models.StatusPending, daysAgo(3)),
		{ID: "4", SubmittedAt: daysAgo(4), Data: nil},
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"1", "2", "3", "4"}},
		{"SMITH", []string{"1"}},
		{"oak", []string{"2"}},
		{"e", []string{"1", "2"}},
		{"nobody", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c := DefaultCriteria()
			c.SearchQuery = tt.query
			assert.ElementsMatch(t, tt.want, ids(p.View(records, c)))
		})
	}
}

func TestView_ExactSubsetForCombinedPredicates(t *testing.T) {
	p := newTestProcessor()
	records := []models.Submission{
		sub("a", "Ann Lee", "Main St", models.StatusPending, daysAgo(3)),
		sub("b", "Bob Lee", "Main St", models.StatusPending, daysAgo(45)),
		sub("c", "Cat Ray", "Side St", models.StatusPending, daysAgo(5)),
	}
	c := Criteria{SearchQuery: "lee", DateFilter: DateLast30Days, SortField: SortByName, SortDirection: Ascending}
	assert.Equal(t, []string{"a"}, ids(p.View(records, c)))
}

func TestView_SortByDateDirectionsAreReverses(t *testing.T) {
	p := newTestProcessor()
	records := []models.Submission{
		sub("b", "", "", models.StatusPending, daysAgo(5)),
		sub("a", "", "", models.StatusPending, daysAgo(1)),
		sub("c", "", "", models.StatusPending, daysAgo(9)),
	}

	asc := p.View(records, Criteria{SortField: SortByDate, SortDirection: Ascending})
	desc := p.View(records, Criteria{SortField: SortByDate, SortDirection: Descending})

	assert.Equal(t, []string{"c", "b", "a"}, ids(asc))
	assert.Equal(t, []string{"a", "b", "c"}, ids(desc))
}

func TestView_SortByNameIsLocaleAware(t *testing.T) {
	p := newTestProcessor()
	records := []models.Submission{
		sub("z", "zoe", "", models.StatusPending, daysAgo(1)),
		sub("e", "Émile", "", models.StatusPending, daysAgo(1)),
		sub("b", "Bruno", "", models.StatusPending, daysAgo(1)),
		sub("none", "", "", models.StatusPending, daysAgo(1)),
	}

	got := p.View(records, Criteria{SortField: SortByName, SortDirection: Ascending})
	assert.Equal(t, []string{"none", "b", "e", "z"}, ids(got))

	got = p.View(records, Criteria{SortField: SortByName, SortDirection: Descending})
	assert.Equal(t, []string{"z", "e", "b", "none"}, ids(got))
}

func TestView_SortByStatus(t *testing.T) {
	p := newTestProcessor()
	records := []models.Submission{
		sub("p", "", "", models.StatusPending, daysAgo(1)),
		sub("r", "", "", models.StatusRejected, daysAgo(1)),
		sub("a", "", "", models.StatusApproved, daysAgo(1)),
	}
	got := p.View(records, Criteria{SortField: SortByStatus, SortDirection: Ascending})
	assert.Equal(t, []string{"a", "p", "r"}, ids(got))
}

func TestView_DoesNotTouchInput(t *testing.T) {
	p := newTestProcessor()
	records := []models.Submission{
		sub("b", "B", "", models.StatusPending, daysAgo(2)),
		sub("a", "A", "", models.StatusPending, daysAgo(1)),
	}
	_ = p.View(records, Criteria{SortField: SortByName, SortDirection: Ascending})
	assert.Equal(t, []string{"b", "a"}, ids(records))
}

func TestParseCriteria(t *testing.T) {
	c := ParseCriteria("  jane ", "30DAYS", "name", "ascending", []string{"1", "2"})
	assert.Equal(t, "jane", c.SearchQuery)
	assert.Equal(t, DateLast30Days, c.DateFilter)
	assert.Equal(t, SortByName, c.SortField)
	assert.Equal(t, Ascending, c.SortDirection)
	assert.True(t, c.SelectedIDs.Has("2"))

	c = ParseCriteria("", "yesterday", "size", "sideways", nil)
	assert.Equal(t, DefaultCriteria(), c)
}

func TestArchive_IsPartition(t *testing.T) {
	records := []models.Submission{
		sub("1", "", "", models.StatusPending, daysAgo(1)),
		sub("2", "", "", models.StatusPending, daysAgo(1)),
		sub("3", "", "", models.StatusPending, daysAgo(1)),
		sub("4", "", "", models.StatusPending, daysAgo(1)),
	}
	archived, remaining := Archive(records, NewIDSet("2", "4", "missing"))

	assert.Equal(t, []string{"2", "4"}, ids(archived))
	assert.Equal(t, []string{"1", "3"}, ids(remaining))
	assert.Len(t, records, 4)

	union := append(ids(archived), ids(remaining)...)
	assert.ElementsMatch(t, ids(records), union)
	for _, id := range ids(archived) {
		assert.NotContains(t, ids(remaining), id)
	}
}

func TestApplyRecommendation(t *testing.T) {
	records := []models.Submission{
		sub("1", "", "", models.StatusPending, daysAgo(1)),
		sub("2", "", "", models.StatusPending, daysAgo(1)),
	}

	once := ApplyRecommendation(records, "2", "Good references", fixedNow)
	twice := ApplyRecommendation(once, "2", "Good references", fixedNow)

	require.NotNil(t, once[1].Recommendation)
	assert.Equal(t, "Good references", once[1].Recommendation.Note)
	assert.Equal(t, "2024-03-01T12:00:00Z", once[1].Recommendation.RecommendedAt)
	assert.Nil(t, once[0].Recommendation)
	assert.Equal(t, once, twice)
	assert.Nil(t, records[1].Recommendation, "input must not change")
}

func TestApplyRecommendation_UnknownIDIsNoop(t *testing.T) {
	records := []models.Submission{sub("1", "", "", models.StatusPending, daysAgo(1))}
	assert.Equal(t, records, ApplyRecommendation(records, "nope", "x", fixedNow))
}

func TestSelect_KeepsViewOrder(t *testing.T) {
	records := []models.Submission{
		sub("3", "", "", models.StatusPending, daysAgo(1)),
		sub("1", "", "", models.StatusPending, daysAgo(1)),
		sub("2", "", "", models.StatusPending, daysAgo(1)),
	}
	assert.Equal(t, []string{"3", "2"}, ids(Select(records, NewIDSet("2", "3"))))
}
