package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gookit/validate"
)

var ErrInvalidInput = errors.New("invalid input")

type GenerateInput struct {
	Destination string            `json:"destination" validate:"required|maxLen:100"`
	Days        int               `json:"days" validate:"int|min:1|max:14"`
	Target      string            `json:"target" validate:"in:engineer,general"`
	Template    string            `json:"template" validate:"maxLen:50"`
	BaseArea    string            `json:"base_area" validate:"maxLen:100"`
	Options     map[string]string `json:"options"`
}

// inputFieldNames maps struct field names to their json names in error details.
var inputFieldNames = map[string]string{
	"Destination": "destination",
	"Days":        "days",
	"Target":      "target",
	"Template":    "template",
	"BaseArea":    "base_area",
	"Options":     "options",
}

// InputError carries per-field messages keyed by field name.
type InputError struct {
	Details map[string]string
}

func (e *InputError) Error() string {
	fields := make([]string, 0, len(e.Details))
	for f := range e.Details {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("%s: %s", ErrInvalidInput, strings.Join(fields, ", "))
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

func (in *GenerateInput) normalize() {
	in.Destination = strings.TrimSpace(in.Destination)
	in.Template = strings.TrimSpace(in.Template)
	in.BaseArea = strings.TrimSpace(in.BaseArea)
	if in.Days == 0 {
		in.Days = 1
	}
	if in.Target == "" {
		in.Target = "general"
	}
}

func (in *GenerateInput) Validate() error {
	in.normalize()

	v := validate.Struct(in)
	v.StopOnError = false
	if v.Validate() {
		return nil
	}
	details := make(map[string]string, len(v.Errors))
	for field, msgs := range v.Errors {
		if name, ok := inputFieldNames[field]; ok {
			field = name
		}
		for _, msg := range msgs {
			details[field] = msg
			break
		}
	}
	return &InputError{Details: details}
}
