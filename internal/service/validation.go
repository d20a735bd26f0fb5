package service

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/iliyamo/starwars-catalog/internal/model"
)

// Field error messages returned to clients.
const (
	MsgBlank      = "This field may not be blank."
	MsgRequired   = "This field is required."
	MsgDateFormat = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	MsgInvalid    = "Invalid value."
	MsgBool       = "Must be a valid boolean."
	MsgNull       = "This field may not be null."
)

// ValidationError carries field-level input errors.  Fields maps the wire
// name of each offending field to its messages.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the shared validator.  Field names are reported by
// their json tag so errors line up with request payload keys.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("notblank", validators.NotBlank)
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// CreateInput is the payload accepted when creating a record.
type CreateInput struct {
	Name        string `json:"name" form:"name" validate:"notblank,max=50"`
	ReleaseDate string `json:"release_date" form:"release_date"`
	IsFavorite  Bool   `json:"is_favorite" form:"is_favorite"`
}

// FavoriteInput is the payload accepted when marking a record favorite.
type FavoriteInput struct {
	CustomName string `json:"custom_name" form:"custom_name" validate:"max=50"`
}

func validateCreate(kind model.Kind, in CreateInput) error {
	verr := &ValidationError{}
	collect(verr, "", getValidator().Struct(in))
	if in.IsFavorite.bad != "" {
		verr.add("is_favorite", in.IsFavorite.bad)
	}
	if kind.HasReleaseDate {
		collect(verr, "release_date", getValidator().Var(in.ReleaseDate, "required,datetime="+model.DateLayout))
	}
	return verr.orNil()
}

func validateFavorite(in FavoriteInput) error {
	verr := &ValidationError{}
	collect(verr, "", getValidator().Struct(in))
	return verr.orNil()
}

// collect translates validator errors into field messages.  field overrides
// the reported name, which Var() leaves empty.
func collect(verr *ValidationError, field string, err error) {
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.add(fieldOr(field, "non_field_errors"), err.Error())
		return
	}
	for _, fe := range fieldErrs {
		verr.add(fieldOr(field, fe.Field()), message(fe))
	}
}

func fieldOr(override, name string) string {
	if override != "" {
		return override
	}
	return name
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank":
		return MsgBlank
	case "required":
		return MsgRequired
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "datetime":
		return MsgDateFormat
	default:
		return MsgInvalid
	}
}
