package wizard

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var numericPattern = regexp.MustCompile(`^\d+([.,]\d+)?$`)

var requiredMessages = map[string]string{
	FieldName:      "O nome é obrigatório!",
	FieldWeight:    "O peso é obrigatório!",
	FieldAge:       "O idade é obrigatória!",
	FieldHeight:    "O altura é obrigatória!",
	FieldGender:    "O sexo é obrigatório!",
	FieldObjective: "O objetivo é obrigatório!",
	FieldLevel:     "Selecione seu level",
}

var numericFields = map[string]string{
	FieldWeight: "O peso deve ser numérico! Ex: 75.5",
	FieldAge:    "A idade deve ser numérica! Ex: 25",
	FieldHeight: "A altura deve ser numérica! Ex: 1.75",
}

// ValidationError maps each rejected field to the message shown next to it.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// ValidateField checks a single field and returns the inline message, or "" when valid.
func ValidateField(field, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return requiredMessages[field]
	}
	if msg, ok := numericFields[field]; ok && !numericPattern.MatchString(value) {
		return msg
	}
	return ""
}

// ValidateStepOne checks the first page; a nil error allows SetPageOne.
func ValidateStepOne(s StepOne) error {
	return collect(map[string]string{
		FieldName:   s.Name,
		FieldWeight: s.Weight,
		FieldAge:    s.Age,
		FieldHeight: s.Height,
	})
}

// ValidateStepTwo checks the second page; a nil error allows SetPageTwo.
func ValidateStepTwo(s StepTwo) error {
	return collect(map[string]string{
		FieldGender:    s.Gender,
		FieldObjective: s.Objective,
		FieldLevel:     s.Level,
	})
}

func collect(values map[string]string) error {
	errs := make(map[string]string)
	for field, value := range values {
		if msg := ValidateField(field, value); msg != "" {
			errs[field] = msg
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Fields: errs}
}
