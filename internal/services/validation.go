package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"productcatalog/internal/apperror"
	"productcatalog/internal/models"

	"github.com/go-playground/validator/v10"
)

// Validator checks decoded request bodies and reports failures by JSON field name.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct validates s, returning an *apperror.Error of kind validation.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperror.Validation(err.Error())
	}

	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[e.Field()] = fieldMessage(e.Field(), e)
	}
	messages := make([]string, 0, len(fields))
	for _, m := range fields {
		messages = append(messages, m)
	}
	sort.Strings(messages)
	return apperror.ValidationFields(strings.Join(messages, "; "), fields)
}

// Var validates a single value reported under field.
func (v *Validator) Var(field string, value interface{}, tag string) error {
	err := v.validate.Var(value, tag)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return apperror.Validation(err.Error())
	}
	msg := fieldMessage(field, validationErrors[0])
	return apperror.ValidationFields(msg, map[string]string{field: msg})
}

func fieldMessage(field string, e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("Field '%s' failed on the '%s' tag", field, e.Tag())
	}
}

func decodeBody(body []byte, dst interface{}) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return apperror.Validation("Request body is required")
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return apperror.Validation("Invalid request body: " + err.Error())
	}
	return nil
}

// DecodeCreateProduct parses a create body. A missing body is a validation error.
func DecodeCreateProduct(body []byte) (models.CreateProductRequest, error) {
	var req models.CreateProductRequest
	err := decodeBody(body, &req)
	return req, err
}

// DecodeUpdateProduct parses a partial update body.
func DecodeUpdateProduct(body []byte) (models.UpdateProductRequest, error) {
	var req models.UpdateProductRequest
	err := decodeBody(body, &req)
	return req, err
}

// DecodePresign parses an upload descriptor request. An absent body decodes
// to an empty request so the field checks report what is missing.
func DecodePresign(body []byte) (models.PresignRequest, error) {
	var req models.PresignRequest
	if len(bytes.TrimSpace(body)) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, apperror.Validation("Invalid request body: " + err.Error())
	}
	return req, nil
}
