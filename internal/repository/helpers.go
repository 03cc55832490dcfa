package repository

import (
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/tenantkyc/kycdesk/internal/models"
)

// ensureID assigns a random id when the caller did not provide one.
func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// cloneSubmission copies the parts of a submission a caller could mutate
// through shared references.
func cloneSubmission(s models.Submission) models.Submission {
	s.Data = maps.Clone(s.Data)
	if s.Recommendation != nil {
		rec := *s.Recommendation
		s.Recommendation = &rec
	}
	return s
}

func cloneForm(f models.Form) models.Form {
	f.Fields = slices.Clone(f.Fields)
	for i := range f.Fields {
		f.Fields[i].Options = slices.Clone(f.Fields[i].Options)
		if v := f.Fields[i].Validation; v != nil {
			cp := *v
			f.Fields[i].Validation = &cp
		}
	}
	if f.ExpirationDays != nil {
		n := *f.ExpirationDays
		f.ExpirationDays = &n
	}
	if f.SubmissionCap != nil {
		n := *f.SubmissionCap
		f.SubmissionCap = &n
	}
	return f
}
