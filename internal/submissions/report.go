package submissions

import (
	"strings"
	"time"

	"github.com/tenantkyc/kycdesk/internal/models"
)

const (
	ReportContentType = "text/csv;charset=utf-8"
	displayTimeLayout = "1/2/2006, 3:04:05 PM"
	displayDateLayout = "January 2, 2006"
)

var reportHeader = []string{
	"Submission ID",
	"Date",
	"Status",
	"Full Name",
	"Email",
	"Phone",
	"Recommendation",
	"Recommendation Date",
}

// Report is a CSV export ready to be downloaded or attached.
type Report struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"-"`
	Count       int    `json:"count"`
}

// CSV renders records as the submissions report. Every data cell is quoted
// and embedded quotes are doubled, whether or not the value needs it.
func (p *Processor) CSV(records []models.Submission) string {
	var b strings.Builder
	b.WriteString(strings.Join(reportHeader, ","))
	for i := range records {
		b.WriteByte('\n')
		for j, cell := range p.row(&records[i]) {
			if j > 0 {
				b.WriteByte(',')
			}
			writeQuoted(&b, cell)
		}
	}
	return b.String()
}

func (p *Processor) row(s *models.Submission) []string {
	var note, notedAt string
	if s.Recommendation != nil {
		note = s.Recommendation.Note
		notedAt = p.displayTime(s.Recommendation.RecommendedAt)
	}
	return []string{
		s.ID,
		p.displayTime(s.SubmittedAt),
		string(s.Status),
		s.Field(fieldFullName),
		s.Field(fieldEmail),
		s.Field(fieldPhone),
		note,
		notedAt,
	}
}

// displayTime renders an ISO timestamp for people. Unparseable input is
// passed through untouched.
func (p *Processor) displayTime(v string) string {
	t, ok := models.ParseTimestamp(v)
	if !ok {
		return v
	}
	return t.In(p.loc).Format(displayTimeLayout)
}

func writeQuoted(b *strings.Builder, v string) {
	b.WriteByte('"')
	b.WriteString(strings.ReplaceAll(v, `"`, `""`))
	b.WriteByte('"')
}

// ReportFilename is submissions_report_<YYYY-MM-DD>.csv for the UTC date of t.
func ReportFilename(t time.Time) string {
	return "submissions_report_" + t.UTC().Format(time.DateOnly) + ".csv"
}

// Report builds the CSV export for records, named after the current date.
func (p *Processor) Report(records []models.Submission) *Report {
	return &Report{
		Filename:    ReportFilename(p.now()),
		ContentType: ReportContentType,
		Body:        []byte(p.CSV(records)),
		Count:       len(records),
	}
}
