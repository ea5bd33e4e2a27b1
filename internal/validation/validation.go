// Package validation provides structured validation error handling
package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Error represents a validation error with field-specific details
type Error struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors represents multiple validation errors
type Errors []Error

// Error implements the error interface
func (ve Errors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}

	var messages []string
	for _, err := range ve {
		if err.Field != "" {
			messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
		} else {
			messages = append(messages, err.Message)
		}
	}

	return strings.Join(messages, "; ")
}

// Add adds a validation error
func (ve *Errors) Add(field, message string) {
	*ve = append(*ve, Error{Field: field, Message: message})
}

// HasErrors returns true if there are validation errors
func (ve Errors) HasErrors() bool {
	return len(ve) > 0
}

// ValidateRequired checks if a value is not empty
func ValidateRequired(value string, fieldName string) *Error {
	if strings.TrimSpace(value) == "" {
		return &Error{
			Field:   fieldName,
			Message: "is required",
		}
	}
	return nil
}

// ValidateMaxLength checks if a string doesn't exceed the maximum length
func ValidateMaxLength(value string, maxLength int, fieldName string) *Error {
	if utf8.RuneCountInString(value) > maxLength {
		return &Error{
			Field:   fieldName,
			Message: fmt.Sprintf("must not exceed %d characters", maxLength),
		}
	}
	return nil
}

// ValidateAbsoluteURI checks that value parses as a URI with a scheme
func ValidateAbsoluteURI(value string, fieldName string) *Error {
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" {
		return &Error{
			Field:   fieldName,
			Message: "must be an absolute URI",
		}
	}
	return nil
}

// ParseParameters turns key=value flags into authorize parameters. Only the
// first '=' separates key and value.
func ParseParameters(pairs []string) (map[string]string, error) {
	var errors Errors
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			errors.Add("param", fmt.Sprintf("%q must have the form key=value", pair))
			continue
		}
		params[key] = value
	}
	if errors.HasErrors() {
		return nil, errors
	}
	return params, nil
}

// LoginValidation validates the inputs of a login
type LoginValidation struct {
	Connection  string
	Username    string
	RedirectURI string
}

// Validate validates login fields
func (lv *LoginValidation) Validate() error {
	var errors Errors

	if err := ValidateMaxLength(lv.Connection, 128, "connection"); err != nil {
		errors.Add(err.Field, err.Message)
	}
	if strings.ContainsAny(lv.Connection, " /?#&") {
		errors.Add("connection", "cannot contain spaces or URI delimiters")
	}
	if err := ValidateMaxLength(lv.Username, 320, "username"); err != nil {
		errors.Add(err.Field, err.Message)
	}
	if lv.RedirectURI != "" {
		if err := ValidateAbsoluteURI(lv.RedirectURI, "redirect_uri"); err != nil {
			errors.Add(err.Field, err.Message)
		}
	}

	if errors.HasErrors() {
		return errors
	}

	return nil
}
