// Package forms binds submitted form values to typed forms and validates
// them with the same validator the models use, collecting human-readable
// per-field errors for re-rendering.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"yatube/app/models"

	"github.com/go-playground/validator/v10"
)

// NonFieldErrors is the Errors key for problems not tied to one field.
const NonFieldErrors = "__all__"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := models.NewValidator()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Errors maps form field names to their error messages.
type Errors map[string][]string

// Add records msg against field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Get returns the messages for field.
func (e Errors) Get(field string) []string {
	return e[field]
}

// Has reports whether field has any errors.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// NonField returns errors not tied to a single field.
func (e Errors) NonField() []string {
	return e[NonFieldErrors]
}

// ValidationError is returned by services when a submitted form is invalid.
type ValidationError struct {
	Errors Errors
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e.Errors[field], " "))
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// AsValidationError unwraps err to a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// check runs struct validation on form and returns the collected errors.
func check(form interface{}) Errors {
	errs := Errors{}
	err := validate.Struct(form)
	if err == nil {
		return errs
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs.Add(NonFieldErrors, err.Error())
		return errs
	}
	for _, fe := range fieldErrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "eqfield":
		return "The two password fields didn't match."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "number", "numeric":
		return "Select a valid choice. That choice is not one of the available choices."
	default:
		return fmt.Sprintf("Failed the %q check.", fe.Tag())
	}
}

// result converts errs into a *ValidationError, or nil when empty.
func result(errs Errors) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}
