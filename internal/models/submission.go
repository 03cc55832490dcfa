package models

import (
	"fmt"
	"strconv"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the known review states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Recommendation is a landlord or agent note attached to a submission.
type Recommendation struct {
	Note          string `json:"note"`
	RecommendedAt string `json:"recommendedAt"`
}

// Submission is one prospect's response to a KYC form. SubmittedAt and
// RecommendedAt are kept as ISO 8601 strings exactly as received.
type Submission struct {
	ID             string          `json:"id"`
	FormID         string          `json:"formId"`
	SubmittedAt    string          `json:"submittedAt"`
	Status         Status          `json:"status"`
	Data           map[string]any  `json:"data"`
	Recommendation *Recommendation `json:"recommendation,omitempty"`
	LandlordPhone  string          `json:"landlordPhone,omitempty"`
	LandlordEmail  string          `json:"landlordEmail,omitempty"`
	Archived       bool            `json:"archived,omitempty"`
	ArchivedAt     string          `json:"archivedAt,omitempty"`
	UpdatedAt      string          `json:"updatedAt,omitempty"`
}

// Field returns the submitted value for name rendered as text.
// Missing and null values yield "".
func (s *Submission) Field(name string) string {
	v, ok := s.Data[name]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// SubmittedTime parses SubmittedAt. ok is false for malformed timestamps.
func (s *Submission) SubmittedTime() (time.Time, bool) {
	return ParseTimestamp(s.SubmittedAt)
}

// ParseTimestamp accepts RFC 3339 with or without fractional seconds.
func ParseTimestamp(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Timestamp formats t the way submissions and recommendations store it.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
