// Package submissions holds the review dashboard's list pipeline: filtering,
// ordering, CSV reporting, archiving and recommendations over submission
// records. Every operation is a pure function of its inputs; records passed
// in are never modified.
package submissions

import (
	"math"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tenantkyc/kycdesk/internal/models"
)

const (
	fieldFullName = "fullName"
	fieldAddress  = "address"
	fieldEmail    = "email"
	fieldPhone    = "phone"
)

// Processor carries the clock, locale and display zone used by the list
// pipeline. The zero value is not usable; call NewProcessor.
type Processor struct {
	now  func() time.Time
	lang language.Tag
	loc  *time.Location
}

type Option func(*Processor)

// WithClock overrides time.Now, used for relative date filters and report dates.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// WithLocale sets the collation used to order names.
func WithLocale(tag language.Tag) Option {
	return func(p *Processor) { p.lang = tag }
}

// WithLocation sets the zone human-readable dates are rendered in.
func WithLocation(loc *time.Location) Option {
	return func(p *Processor) {
		if loc != nil {
			p.loc = loc
		}
	}
}

func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		now:  time.Now,
		lang: language.English,
		loc:  time.UTC,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Now returns the processor's current time.
func (p *Processor) Now() time.Time {
	return p.now()
}

// Locale returns the collation locale.
func (p *Processor) Locale() language.Tag {
	return p.lang
}

// View returns the records passing both the date and search predicates,
// ordered by the criteria's sort field and direction.
func (p *Processor) View(records []models.Submission, c Criteria) []models.Submission {
	now := p.now()
	query := strings.ToLower(c.SearchQuery)

	out := make([]models.Submission, 0, len(records))
	for i := range records {
		if !matchesDate(&records[i], c.DateFilter, now) {
			continue
		}
		if !matchesSearch(&records[i], query) {
			continue
		}
		out = append(out, records[i])
	}

	cmp := p.comparator(c.SortField)
	sign := c.SortDirection.sign()
	slices.SortStableFunc(out, func(a, b models.Submission) int {
		return sign * cmp(&a, &b)
	})
	return out
}

func matchesDate(s *models.Submission, f DateFilter, now time.Time) bool {
	maxDays, ok := f.maxAgeDays()
	if !ok {
		return true
	}
	submitted, ok := s.SubmittedTime()
	if !ok {
		return false
	}
	return ageInDays(submitted, now) <= maxDays
}

func ageInDays(t, now time.Time) int {
	return int(math.Floor(now.Sub(t).Hours() / 24))
}

func matchesSearch(s *models.Submission, lowered string) bool {
	if lowered == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.Field(fieldFullName)), lowered) ||
		strings.Contains(strings.ToLower(s.Field(fieldAddress)), lowered)
}

func (p *Processor) comparator(field SortField) func(a, b *models.Submission) int {
	switch field {
	case SortByName:
		// collate.Collator keeps scratch buffers, so each view gets its own.
		col := collate.New(p.lang)
		return func(a, b *models.Submission) int {
			return col.CompareString(a.Field(fieldFullName), b.Field(fieldFullName))
		}
	case SortByStatus:
		return func(a, b *models.Submission) int {
			return strings.Compare(string(a.Status), string(b.Status))
		}
	default:
		return func(a, b *models.Submission) int {
			ta, _ := a.SubmittedTime()
			tb, _ := b.SubmittedTime()
			return ta.Compare(tb)
		}
	}
}

// Select returns the records whose id is in ids, keeping their order.
func Select(records []models.Submission, ids IDSet) []models.Submission {
	out := make([]models.Submission, 0, len(ids))
	for _, r := range records {
		if ids.Has(r.ID) {
			out = append(out, r)
		}
	}
	return out
}

// Archive partitions records into those selected for the archive and the
// rest. Relative order is preserved in both halves.
func Archive(records []models.Submission, ids IDSet) (archived, remaining []models.Submission) {
	archived = make([]models.Submission, 0, len(ids))
	remaining = make([]models.Submission, 0, len(records))
	for _, r := range records {
		if ids.Has(r.ID) {
			archived = append(archived, r)
		} else {
			remaining = append(remaining, r)
		}
	}
	return archived, remaining
}

// ApplyRecommendation returns a copy of records where the record with the
// given id carries the new recommendation. An unknown id leaves the copy
// identical to the input.
func ApplyRecommendation(records []models.Submission, id, note string, at time.Time) []models.Submission {
	out := slices.Clone(records)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		out[i].Recommendation = &models.Recommendation{
			Note:          note,
			RecommendedAt: models.Timestamp(at),
		}
	}
	return out
}
