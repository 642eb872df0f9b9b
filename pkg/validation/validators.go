package validation

import (
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the calendar date format used by the Tarabaho API.
const DateLayout = "2006-01-02"

// Regex patterns
var (
	// Allow letters, spaces, and common name punctuation: . ' -
	nameRegex = regexp.MustCompile(`^[\p{L} .'-]+$`)

	// Local (09xxxxxxxxx) or international (+639xxxxxxxxx) style numbers, 7-15 digits
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

// New returns a validator with the custom tags registered.
// Field names in errors follow the JSON tags.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonTagName)
	RegisterValidators(v)
	return v
}

func jsonTagName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_name", ValidName)
	_ = v.RegisterValidation("valid_phone", ValidPhone)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
	_ = v.RegisterValidation("past_date", PastDate)
	_ = v.RegisterValidation("positive_rate", PositiveRate)
}

// ValidName validates that a string contains only valid name characters
func ValidName(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // Optional, use required if needed
	}
	return nameRegex.MatchString(val)
}

// ValidPhone validates a phone number structure
func ValidPhone(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return phoneRegex.MatchString(val)
}

// NoEmoji validates that a string does not contain emoji characters
func NoEmoji(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, r := range val {
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}

// PastDate accepts a YYYY-MM-DD string that is not in the future.
// Empty values pass; pair with required.
func PastDate(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	t, err := time.Parse(DateLayout, val)
	if err != nil {
		return false
	}
	return !t.After(time.Now())
}

// PositiveRate validates that a numeric field is strictly greater than zero.
func PositiveRate(fl validator.FieldLevel) bool {
	switch fl.Field().Kind().String() {
	case "float32", "float64":
		return fl.Field().Float() > 0
	case "int", "int8", "int16", "int32", "int64":
		return fl.Field().Int() > 0
	default:
		return false
	}
}
