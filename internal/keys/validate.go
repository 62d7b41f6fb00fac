package keys

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldClientName is the form field that carries the record's display name.
const FieldClientName = "clientName"

var fieldLabels = map[string]string{
	FieldClientName: "Client Name",
}

var formValidate = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationErrors maps a form field to its message.
type ValidationErrors map[string]string

// Empty reports whether there are no errors.
func (v ValidationErrors) Empty() bool {
	return len(v) == 0
}

// Get returns the message for field, or "".
func (v ValidationErrors) Get(field string) string {
	return v[field]
}

// Clear drops the error for field.
func (v ValidationErrors) Clear(field string) {
	delete(v, field)
}

// Fields returns the failing fields in sorted order.
func (v ValidationErrors) Fields() []string {
	out := make([]string, 0, len(v))
	for f := range v {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Error joins every message, so ValidationErrors can travel as an error.
func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, f := range v.Fields() {
		msgs = append(msgs, v[f])
	}
	return strings.Join(msgs, "; ")
}

// Validate checks a draft. It never inspects the cache, so duplicate
// client names are accepted.
func Validate(draft Record) ValidationErrors {
	out := ValidationErrors{}
	err := formValidate.Struct(draft)
	if err == nil {
		return out
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		out[FieldClientName] = err.Error()
		return out
	}
	for _, fe := range fieldErrs {
		out[fe.Field()] = fieldMessage(fe.Field(), fe.Tag())
	}
	return out
}

func fieldMessage(field, tag string) string {
	label := fieldLabels[field]
	if label == "" {
		label = field
	}
	switch tag {
	case "required":
		return label + " is required"
	default:
		return label + " is invalid"
	}
}
