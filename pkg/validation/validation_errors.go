package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// FieldLabels holds labels that differ from the split field name.
var FieldLabels = map[string]string{
	// Registration fields
	"Username":        "Username",
	"Password":        "Password",
	"ConfirmPassword": "Confirm password",
	"FirstName":       "First name",
	"MiddleName":      "Middle name",
	"LastName":        "Last name",
	"Email":           "Email",
	"Address":         "Address",
	"ContactNumber":   "Contact number",
	"Birthday":        "Date of birth",
	"HourlyRate":      "Hourly rate",

	// Portfolio fields
	"FullName":            "Full name",
	"ProfessionalTitle":   "Professional title",
	"ProfessionalSummary": "Professional summary",
	"Visibility":          "Visibility",
	"Template":            "Template",

	// Certificate fields
	"CourseName":        "Course name",
	"CertificateNumber": "Certificate number",
	"IssueDate":         "Issue date",
}

// FieldErrors converts validator.ValidationErrors to a map of JSON field name to
// message. Only the first failure per field is kept, matching how a form shows
// one inline error under each input.
func FieldErrors(err error) map[string]string {
	fields := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		fields["general"] = err.Error()
		return fields
	}

	for _, e := range validationErrors {
		key := fieldKey(e)
		if _, seen := fields[key]; seen {
			continue
		}
		fields[key] = formatSingleError(e)
	}
	return fields
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.StructField())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)

	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at least %s", label, param)

	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at most %s", label, param)

	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(strings.Fields(param), ", "))

	case "email":
		return fmt.Sprintf("%s is not a valid email address", label)

	case "url":
		return fmt.Sprintf("%s is not a valid URL", label)

	case "datetime":
		return fmt.Sprintf("%s must be a date (YYYY-MM-DD)", label)

	case "valid_name":
		return fmt.Sprintf("%s may only contain letters, spaces and . ' -", label)

	case "valid_phone":
		return fmt.Sprintf("%s is not a valid phone number (7-15 digits, optional +)", label)

	case "no_emoji":
		return fmt.Sprintf("%s must not contain emoji or symbols", label)

	case "past_date":
		return fmt.Sprintf("%s must be a date in the past", label)

	case "positive_rate", "gt":
		return fmt.Sprintf("%s must be a positive number", label)

	case "eqfield":
		if e.StructField() == "ConfirmPassword" {
			return "Passwords do not match"
		}
		return fmt.Sprintf("%s must match %s", label, getFieldLabel(param))

	default:
		return fmt.Sprintf("%s is invalid (%s)", label, e.Tag())
	}
}

func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	// "PreferredShift" becomes "Preferred shift".
	var b strings.Builder
	for i, r := range fieldName {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteRune(' ')
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// fieldKey is the error's path below the validated struct, e.g. "email" or
// "skills[0].name". Embedded structs carry no JSON name and are skipped.
func fieldKey(e validator.FieldError) string {
	parts := strings.Split(e.Namespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	kept := parts[:0]
	for i, p := range parts {
		if i < len(parts)-1 && p != "" && unicode.IsUpper(rune(p[0])) {
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return jsonFieldName(e.Field())
	}
	return jsonFieldName(strings.Join(kept, "."))
}

// jsonFieldName lower-cases the first rune so keys line up with JSON tags.
func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
