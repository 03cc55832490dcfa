package service

import "github.com/tenantkyc/kycdesk/internal/models"

// Template is a ready-made KYC form offered by the builder.
type Template struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Fields      []models.Field `json:"fields"`
}

func intPtr(n int) *int { return &n }

var templates = []Template{
	{
		ID:          "basic-kyc",
		Title:       "Basic KYC Form",
		Description: "Identity and contact details for an individual tenant.",
		Fields: []models.Field{
			{Name: "fullName", Type: models.FieldText, Label: "Full Name", Required: true,
				Validation: &models.FieldValidation{MinLength: intPtr(2), MaxLength: intPtr(120)}},
			{Name: "email", Type: models.FieldEmail, Label: "Email", Required: true},
			{Name: "phone", Type: models.FieldTel, Label: "Phone", Required: true,
				Validation: &models.FieldValidation{Pattern: `\+?[0-9 ()-]{7,20}`}},
			{Name: "address", Type: models.FieldText, Label: "Current Address", Required: true},
			{Name: "dateOfBirth", Type: models.FieldDate, Label: "Date of Birth", Required: true},
			{Name: "idDocument", Type: models.FieldFile, Label: "ID Document"},
		},
	},
	{
		ID:          "corporate-client",
		Title:       "Corporate Client Form",
		Description: "Company tenancy with a named signatory.",
		Fields: []models.Field{
			{Name: "companyName", Type: models.FieldText, Label: "Company Name", Required: true},
			{Name: "registrationNumber", Type: models.FieldText, Label: "Registration Number", Required: true},
			{Name: "fullName", Type: models.FieldText, Label: "Signatory Full Name", Required: true},
			{Name: "email", Type: models.FieldEmail, Label: "Email", Required: true},
			{Name: "phone", Type: models.FieldTel, Label: "Phone"},
			{Name: "address", Type: models.FieldText, Label: "Registered Address", Required: true},
			{Name: "employees", Type: models.FieldNumber, Label: "Number of Employees",
				Validation: &models.FieldValidation{Min: floatPtr(1)}},
		},
	},
	{
		ID:          "property-manager",
		Title:       "Property Manager KYC",
		Description: "Screening questions used by property managers.",
		Fields: []models.Field{
			{Name: "fullName", Type: models.FieldText, Label: "Full Name", Required: true},
			{Name: "email", Type: models.FieldEmail, Label: "Email", Required: true},
			{Name: "phone", Type: models.FieldTel, Label: "Phone", Required: true},
			{Name: "address", Type: models.FieldText, Label: "Current Address"},
			{Name: "employmentStatus", Type: models.FieldSelect, Label: "Employment Status", Required: true,
				Options: []string{"Employed", "Self-employed", "Student", "Retired", "Unemployed"}},
			{Name: "monthlyIncome", Type: models.FieldNumber, Label: "Monthly Income",
				Validation: &models.FieldValidation{Min: floatPtr(0)}},
			{Name: "hasPets", Type: models.FieldRadio, Label: "Pets", Options: []string{"Yes", "No"}},
			{Name: "consent", Type: models.FieldCheckbox, Label: "I consent to a background check", Required: true},
		},
	},
}

func floatPtr(f float64) *float64 { return &f }

// Templates lists the built-in form templates.
func Templates() []Template {
	out := make([]Template, len(templates))
	for i, t := range templates {
		t.Fields = cloneFields(t.Fields)
		out[i] = t
	}
	return out
}

func findTemplate(id string) (Template, bool) {
	for _, t := range templates {
		if t.ID == id {
			t.Fields = cloneFields(t.Fields)
			return t, true
		}
	}
	return Template{}, false
}

func cloneFields(fields []models.Field) []models.Field {
	out := make([]models.Field, len(fields))
	for i, f := range fields {
		if f.Options != nil {
			f.Options = append([]string(nil), f.Options...)
		}
		if f.Validation != nil {
			v := *f.Validation
			f.Validation = &v
		}
		out[i] = f
	}
	return out
}
