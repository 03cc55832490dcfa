package service

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/tenantkyc/kycdesk/internal/models"
)

var nonAlphaNum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// fieldKey turns a label such as "Date of Birth" into "dateOfBirth".
func fieldKey(label string) string {
	words := nonAlphaNum.Split(strings.TrimSpace(label), -1)
	var b strings.Builder
	for _, w := range words {
		if w == "" {
			continue
		}
		if b.Len() == 0 {
			b.WriteString(strings.ToLower(w[:1]) + w[1:])
			continue
		}
		b.WriteString(strings.ToUpper(w[:1]) + w[1:])
	}
	if b.Len() == 0 {
		return "field"
	}
	return b.String()
}

// normalizeFields checks builder output and fills in ids and data keys.
// Duplicate keys get a numeric suffix.
func normalizeFields(fields []models.Field) ([]models.Field, error) {
	out := cloneFields(fields)
	seen := make(map[string]int, len(out))
	for i := range out {
		f := &out[i]
		f.Label = strings.TrimSpace(f.Label)
		if f.Label == "" {
			return nil, invalid("fields", "field %d needs a label", i+1)
		}
		if f.Type == "" {
			f.Type = models.FieldText
		}
		if !f.Type.Valid() {
			return nil, invalid("fields", "field %q has unknown type %q", f.Label, f.Type)
		}
		if (f.Type == models.FieldSelect || f.Type == models.FieldRadio) && len(f.Options) == 0 {
			return nil, invalid("fields", "field %q needs at least one option", f.Label)
		}
		if v := f.Validation; v != nil && v.Pattern != "" {
			if _, err := regexp.Compile(v.Pattern); err != nil {
				return nil, invalid("fields", "field %q has an invalid pattern", f.Label)
			}
		}
		if f.ID == "" {
			f.ID = uuid.NewString()[:8]
		}
		if f.Name == "" {
			f.Name = fieldKey(f.Label)
		}
		if n := seen[f.Name]; n > 0 {
			seen[f.Name] = n + 1
			f.Name += strconv.Itoa(n + 1)
		}
		seen[f.Name]++
	}
	return out, nil
}

// validateSubmission checks submitted data against the form's fields.
// Keys without a matching field are accepted as-is.
func validateSubmission(fields []models.Field, data map[string]any) error {
	for _, f := range fields {
		v, present := data[f.Name]
		if !present || isBlank(v) {
			// File uploads are stored outside kycdesk, so a missing
			// reference is not enforced.
			if f.Required && f.Type != models.FieldFile {
				return invalid(f.Label, "required field missing")
			}
			continue
		}
		if err := validateValue(f, v); err != nil {
			return err
		}
	}
	return nil
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case bool:
		return !t
	}
	return false
}

func validateValue(f models.Field, v any) error {
	switch f.Type {
	case models.FieldNumber:
		n, ok := toNumber(v)
		if !ok {
			return invalid(f.Label, "must be a number")
		}
		if val := f.Validation; val != nil {
			if val.Min != nil && n < *val.Min {
				return invalid(f.Label, "must be at least %v", *val.Min)
			}
			if val.Max != nil && n > *val.Max {
				return invalid(f.Label, "must be at most %v", *val.Max)
			}
		}
		return nil
	case models.FieldCheckbox:
		if _, ok := v.(bool); !ok {
			return invalid(f.Label, "must be true or false")
		}
		return nil
	}

	s, ok := v.(string)
	if !ok {
		return invalid(f.Label, "must be text")
	}
	s = strings.TrimSpace(s)

	switch f.Type {
	case models.FieldEmail:
		if !emailPattern.MatchString(s) {
			return invalid(f.Label, "must be a valid email")
		}
	case models.FieldDate:
		if _, err := time.Parse(time.DateOnly, s); err != nil {
			if _, ok := models.ParseTimestamp(s); !ok {
				return invalid(f.Label, "must be a date (YYYY-MM-DD)")
			}
		}
	case models.FieldSelect, models.FieldRadio:
		if !slices.Contains(f.Options, s) {
			return invalid(f.Label, "must be one of %s", strings.Join(f.Options, ", "))
		}
	}

	if val := f.Validation; val != nil {
		n := utf8.RuneCountInString(s)
		if val.MinLength != nil && n < *val.MinLength {
			return invalid(f.Label, "must be at least %d characters", *val.MinLength)
		}
		if val.MaxLength != nil && n > *val.MaxLength {
			return invalid(f.Label, "must be at most %d characters", *val.MaxLength)
		}
		if val.Pattern != "" {
			re, err := regexp.Compile(`^(?:` + val.Pattern + `)$`)
			if err == nil && !re.MatchString(s) {
				return invalid(f.Label, "has an invalid format")
			}
		}
	}
	return nil
}

func toNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return n, err == nil
	}
	return 0, false
}
