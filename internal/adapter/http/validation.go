package http

import (
	"reflect"
	"strings"

	"device-approval-backend/internal/domain/approval"
	"device-approval-backend/pkg/id"

	"github.com/go-playground/validator/v10"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
type ErrorResponse struct {
	Code    string       `json:"code,omitempty"`
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()
	// report json names, not Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})

	// request/comment ids = 32-char lowercase hex
	_ = v.RegisterValidation("hex32", func(fl validator.FieldLevel) bool {
		return id.Valid32(fl.Field().String())
	})
	_ = v.RegisterValidation("action", func(fl validator.FieldLevel) bool {
		return approval.Action(fl.Field().String()).Valid()
	})
	// no blank entries and no duplicates, case-insensitive
	_ = v.RegisterValidation("approvers", func(fl validator.FieldLevel) bool {
		list, ok := fl.Field().Interface().([]string)
		if !ok {
			return false
		}
		seen := make(map[string]bool, len(list))
		for _, a := range list {
			k := strings.ToLower(strings.TrimSpace(a))
			if k == "" || seen[k] {
				return false
			}
			seen[k] = true
		}
		return true
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "hex32":
			out = append(out, FieldError{Field: field, Message: "must be 32-char lowercase hex"})
		case "action":
			out = append(out, FieldError{Field: field, Message: "must be one of RENTAL RETURN DISPOSAL RECOVERY PURCHASE MODIFY"})
		case "approvers":
			out = append(out, FieldError{Field: field, Message: "must not contain blank or duplicate approvers"})
		case "oneof":
			out = append(out, FieldError{Field: field, Message: "must be one of " + e.Param()})
		case "uuid":
			out = append(out, FieldError{Field: field, Message: "must be a uuid"})
		case "max":
			out = append(out, FieldError{Field: field, Message: "must be at most " + e.Param() + " characters"})
		case "gte":
			out = append(out, FieldError{Field: field, Message: "must be greater than or equal to " + e.Param()})
		case "lte":
			out = append(out, FieldError{Field: field, Message: "must be less than or equal to " + e.Param()})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}
