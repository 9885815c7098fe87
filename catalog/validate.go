package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrInvalidInputs matches any *ValidationError via errors.Is.
var ErrInvalidInputs = errors.New("invalid template inputs")

// ValidationError lists the fields that failed validation, keyed by field key.
type ValidationError struct {
	TemplateID string
	Fields     map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("template %s: %s", e.TemplateID, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInputs
}

// Validate checks that every declared field is present and not blank.
// Keys the template does not declare are ignored.
func (t Template) Validate(inputs map[string]string) error {
	trimmed := make(map[string]string, len(inputs))
	for k, v := range inputs {
		trimmed[k] = strings.TrimSpace(v)
	}

	keys := make([]*validation.KeyRules, 0, len(t.Fields))
	for _, f := range t.Fields {
		keys = append(keys, validation.Key(f.Key, validation.Required.Error(f.Label+" is required")))
	}

	err := validation.Validate(trimmed, validation.Map(keys...).AllowExtraKeys())
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return fmt.Errorf("validate inputs: %w", err)
	}
	ve := &ValidationError{TemplateID: t.ID, Fields: make(map[string]string, len(errs))}
	for k, fieldErr := range errs {
		if vErr, ok := fieldErr.(validation.Error); ok && vErr.Code() == validation.ErrKeyMissing.Code() {
			label := k
			if f, ok := t.Field(k); ok {
				label = f.Label
			}
			ve.Fields[k] = label + " is required"
			continue
		}
		ve.Fields[k] = fieldErr.Error()
	}
	return ve
}
