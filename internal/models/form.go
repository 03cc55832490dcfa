package models

import "time"

// EditorType records how a form was started in the builder.
type EditorType string

const (
	EditorTemplate  EditorType = "template"
	EditorCustomize EditorType = "customize"
	EditorNew       EditorType = "new"
)

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldEmail    FieldType = "email"
	FieldTel      FieldType = "tel"
	FieldFile     FieldType = "file"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
	FieldRadio    FieldType = "radio"
)

// Valid reports whether t is a field type the builder supports.
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldNumber, FieldDate, FieldEmail, FieldTel,
		FieldFile, FieldSelect, FieldCheckbox, FieldRadio:
		return true
	}
	return false
}

type FieldValidation struct {
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
}

// Field is a single input on a KYC form. Name is the key used in
// submission data.
type Field struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Type        FieldType        `json:"type"`
	Label       string           `json:"label"`
	Placeholder string           `json:"placeholder,omitempty"`
	Required    bool             `json:"required,omitempty"`
	Options     []string         `json:"options,omitempty"`
	Validation  *FieldValidation `json:"validation,omitempty"`
}

type Form struct {
	ID               string     `json:"id"`
	OwnerID          string     `json:"ownerId"`
	Title            string     `json:"title"`
	Type             EditorType `json:"type"`
	TemplateID       string     `json:"templateId,omitempty"`
	ApartmentName    string     `json:"apartmentName,omitempty"`
	ApartmentAddress string     `json:"apartmentAddress,omitempty"`
	Fields           []Field    `json:"fields"`
	IsActive         bool       `json:"isActive"`
	ExpirationDays   *int       `json:"expirationDays,omitempty"`
	SubmissionCap    *int       `json:"submissionCap,omitempty"`
	CreatedAt        string     `json:"createdAt"`
	UpdatedAt        string     `json:"updatedAt"`
}

// LinkActive reports whether the public submission link accepts responses:
// the form is switched on, not past its expiration window and below its cap.
func (f *Form) LinkActive(now time.Time, submissions int) bool {
	if !f.IsActive {
		return false
	}
	if f.ExpirationDays != nil && *f.ExpirationDays > 0 {
		created, ok := ParseTimestamp(f.CreatedAt)
		if ok && now.After(created.AddDate(0, 0, *f.ExpirationDays)) {
			return false
		}
	}
	if f.SubmissionCap != nil && *f.SubmissionCap > 0 && submissions >= *f.SubmissionCap {
		return false
	}
	return true
}

// FormSummary is a form as listed on the owner's dashboard.
type FormSummary struct {
	Form
	SubmissionCount int  `json:"submissionCount"`
	LinkActive      bool `json:"linkActive"`
}
