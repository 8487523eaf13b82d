package wizard

import (
	"fmt"
	"strings"
)

// Field names, as sent to the diet API.
const (
	FieldName      = "name"
	FieldWeight    = "weight"
	FieldAge       = "age"
	FieldHeight    = "height"
	FieldGender    = "gender"
	FieldObjective = "objective"
	FieldLevel     = "level"
)

// RequiredFields lists every field a profile needs before a diet can be requested.
var RequiredFields = []string{
	FieldName, FieldWeight, FieldAge, FieldHeight,
	FieldGender, FieldObjective, FieldLevel,
}

// StepOne holds the body metrics collected on the first page.
type StepOne struct {
	Name   string
	Weight string
	Age    string
	Height string
}

// StepTwo holds the choices collected on the second page.
type StepTwo struct {
	Gender    string
	Objective string
	Level     string
}

// Profile is the user input accumulated across both steps.
// An empty string means the field has not been provided yet.
type Profile struct {
	Name      string `json:"name"`
	Weight    string `json:"weight"`
	Age       string `json:"age"`
	Height    string `json:"height"`
	Gender    string `json:"gender"`
	Objective string `json:"objective"`
	Level     string `json:"level"`
}

// Get returns the value of a field by its API name.
func (p Profile) Get(field string) string {
	switch field {
	case FieldName:
		return p.Name
	case FieldWeight:
		return p.Weight
	case FieldAge:
		return p.Age
	case FieldHeight:
		return p.Height
	case FieldGender:
		return p.Gender
	case FieldObjective:
		return p.Objective
	case FieldLevel:
		return p.Level
	}
	return ""
}

// Missing returns the required fields that are still empty, in RequiredFields order.
func (p Profile) Missing() []string {
	var missing []string
	for _, f := range RequiredFields {
		if strings.TrimSpace(p.Get(f)) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// IsEmpty reports whether no field has been provided.
func (p Profile) IsEmpty() bool {
	return p == Profile{}
}

// Complete promotes the profile once all seven fields are present.
func (p Profile) Complete() (CompleteProfile, error) {
	if missing := p.Missing(); len(missing) > 0 {
		return CompleteProfile{}, &IncompleteProfileError{Missing: missing}
	}
	return CompleteProfile{profile: p}, nil
}

func (p Profile) mergeOne(s StepOne) Profile {
	p.Name = overwrite(p.Name, s.Name)
	p.Weight = overwrite(p.Weight, s.Weight)
	p.Age = overwrite(p.Age, s.Age)
	p.Height = overwrite(p.Height, s.Height)
	return p
}

func (p Profile) mergeTwo(s StepTwo) Profile {
	p.Gender = overwrite(p.Gender, s.Gender)
	p.Objective = overwrite(p.Objective, s.Objective)
	p.Level = overwrite(p.Level, s.Level)
	return p
}

func overwrite(current, next string) string {
	if next = strings.TrimSpace(next); next != "" {
		return next
	}
	return current
}

// CompleteProfile is a Profile with every required field present.
// It can only be obtained through Profile.Complete or Store.Complete.
type CompleteProfile struct {
	profile Profile
}

// Profile returns a copy of the underlying fields.
func (c CompleteProfile) Profile() Profile {
	return c.profile
}

// IncompleteProfileError is returned when a diet is requested before both steps committed.
type IncompleteProfileError struct {
	Missing []string
}

func (e *IncompleteProfileError) Error() string {
	return fmt.Sprintf("missing profile: %s not provided", strings.Join(e.Missing, ", "))
}
