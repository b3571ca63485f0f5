package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidBody is returned when the request body is not valid JSON
var ErrInvalidBody = errors.New("invalid request body")

// maxBodyBytes caps decoded request bodies
const maxBodyBytes = 1 << 20

// FieldError describes a single failed check, keyed by the JSON field name
type FieldError struct {
	Field string `json:"field,omitempty"`
	Msg   string `json:"msg"`
}

// ValidationError collects every FieldError for one request
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Msg))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// NewValidationError builds a ValidationError for a single field
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Msg: msg}}}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report JSON names instead of Go field names
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate runs the `validate` struct tags of v.
// Messages come from the `msg` tag of the failing field when set.
func Validate(v any) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field: fe.Field(),
			Msg:   fieldMessage(t, fe),
		})
	}
	return out
}

// DecodeAndValidate decodes the JSON body into dst and validates it.
// It returns ErrInvalidBody or a *ValidationError.
func DecodeAndValidate(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return Validate(dst)
}

func fieldMessage(t reflect.Type, fe validator.FieldError) string {
	if t.Kind() == reflect.Struct {
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if msg := sf.Tag.Get("msg"); msg != "" {
				return msg
			}
		}
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed on the '%s' check", fe.Tag())
	}
}

// Bind decodes and validates the request body into dst. On failure it has
// already written the 400 response and returns the error for logging.
func Bind(w http.ResponseWriter, r *http.Request, dst any) error {
	err := DecodeAndValidate(r, dst)
	if err == nil {
		return nil
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		RespondValidationError(w, verr)
		return err
	}

	RespondErrorWithCode(w, "invalid request body", CodeInvalidRequestBody, http.StatusBadRequest)
	return err
}
