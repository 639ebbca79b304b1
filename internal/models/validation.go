package models

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
)

type Mode int

const (
	// ModeComplete enforces every required field, enum and bound.
	ModeComplete Mode = iota
	// ModePartial accepts any prefix-shaped object produced while streaming.
	ModePartial
)

type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

type ValidationError struct {
	Version Version
	Issues  []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Path == "" {
			parts = append(parts, issue.Message)
			continue
		}
		parts = append(parts, issue.Path+": "+issue.Message)
	}
	return fmt.Sprintf("invalid %s plan: %s", e.Version, strings.Join(parts, "; "))
}

var ErrUnknownShape = errors.New("payload does not match any known plan schema")

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Parse decodes payload as a record of version v and reports every problem
// it finds, each with its JSON path. Unknown fields and trailing data are
// rejected in both modes.
func Parse(v Version, payload []byte, mode Mode) (Record, error) {
	rec, err := NewRecord(v)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, &ValidationError{Version: v, Issues: []Issue{{Message: "malformed JSON: " + err.Error()}}}
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, &ValidationError{Version: v, Issues: []Issue{{Message: "unexpected data after the JSON object"}}}
	}
	if _, ok := root.(map[string]any); !ok {
		return nil, &ValidationError{Version: v, Issues: []Issue{{Message: "must be a JSON object"}}}
	}

	sc := &shapeChecker{mode: mode}
	root = sc.walk(reflect.TypeOf(rec).Elem(), root, "")

	cleaned, err := json.Marshal(root)
	if err != nil {
		return nil, err
	}
	strict := json.NewDecoder(bytes.NewReader(cleaned))
	strict.DisallowUnknownFields()
	if err := strict.Decode(rec); err != nil {
		sc.issues = append(sc.issues, Issue{Message: err.Error()})
		return nil, &ValidationError{Version: v, Issues: sc.issues}
	}

	issues := sc.issues
	if mode == ModeComplete {
		if err := structValidator.Struct(rec); err != nil {
			var fieldErrs validator.ValidationErrors
			if !errors.As(err, &fieldErrs) {
				return nil, err
			}
			for _, fe := range fieldErrs {
				path := fieldPath(fe)
				if sc.covers(path) {
					continue
				}
				issues = append(issues, Issue{Path: path, Message: fieldMessage(fe)})
			}
		}
	}

	if len(issues) > 0 {
		return nil, &ValidationError{Version: v, Issues: issues}
	}
	return rec, nil
}

// DetectVersion identifies the schema of a stored or submitted payload by
// its discriminating top-level key.
func DetectVersion(payload []byte) (Version, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(payload, &top); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownShape, err)
	}
	if _, ok := top["mission_title"]; ok {
		return VersionV2, nil
	}
	if _, ok := top["itinerary"]; ok {
		return VersionV3, nil
	}
	if _, ok := top["days"]; ok {
		return VersionV1, nil
	}
	return "", ErrUnknownShape
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of [" + fe.Param() + "]"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + fe.Param() + " items"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.Slice {
			return "must contain at most " + fe.Param() + " items"
		}
		return "must be at most " + fe.Param()
	case "url":
		return "must be a valid URL"
	}
	return "failed " + fe.Tag() + " check"
}

var eventType = reflect.TypeOf(Event{})

// shapeChecker walks a generic JSON tree alongside the record type. Values of
// the wrong JSON type are reported and replaced with null, unknown keys are
// reported and dropped, so the cleaned tree always decodes.
type shapeChecker struct {
	mode    Mode
	issues  []Issue
	covered []string
}

func (c *shapeChecker) fail(path, cover, msg string) {
	c.issues = append(c.issues, Issue{Path: path, Message: msg})
	c.covered = append(c.covered, cover)
}

// covers reports whether path lies under a node that already has an issue.
func (c *shapeChecker) covers(path string) bool {
	for _, p := range c.covered {
		if path == p || strings.HasPrefix(path, p+".") || strings.HasPrefix(path, p+"[") {
			return true
		}
	}
	return false
}

func (c *shapeChecker) walk(t reflect.Type, val any, path string) any {
	if val == nil {
		return nil
	}
	if t == eventType {
		return c.event(val, path)
	}

	switch t.Kind() {
	case reflect.Pointer:
		return c.walk(t.Elem(), val, path)
	case reflect.Struct:
		obj, ok := val.(map[string]any)
		if !ok {
			c.fail(path, path, "must be an object")
			return nil
		}
		known := make(map[string]bool, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if !f.IsExported() || name == "" || name == "-" {
				continue
			}
			known[name] = true
			if child, ok := obj[name]; ok {
				obj[name] = c.walk(f.Type, child, joinPath(path, name))
			}
		}
		unknown := make([]string, 0)
		for key := range obj {
			if !known[key] {
				unknown = append(unknown, key)
			}
		}
		sort.Strings(unknown)
		for _, key := range unknown {
			p := joinPath(path, key)
			c.fail(p, p, "is not a known field")
			delete(obj, key)
		}
		return obj
	case reflect.Slice:
		arr, ok := val.([]any)
		if !ok {
			c.fail(path, path, "must be an array")
			return nil
		}
		for i, el := range arr {
			arr[i] = c.walk(t.Elem(), el, fmt.Sprintf("%s[%d]", path, i))
		}
		return arr
	case reflect.String:
		if _, ok := val.(string); !ok {
			c.fail(path, path, "must be a string")
			return nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := val.(json.Number)
		if !ok {
			c.fail(path, path, "must be a number")
			return nil
		}
		if _, err := n.Int64(); err != nil {
			c.fail(path, path, "must be an integer")
			return nil
		}
	}
	return val
}

// event checks a [time, name, activity, type, note, imageQuery|null] tuple.
// Short tuples and nulls are allowed while streaming.
func (c *shapeChecker) event(val any, path string) any {
	tuple, ok := val.([]any)
	if !ok {
		c.fail(path, path, fmt.Sprintf("must be an array of %d elements", eventArity))
		return []any{}
	}
	if len(tuple) > eventArity || (c.mode == ModeComplete && len(tuple) != eventArity) {
		c.fail(path, path, fmt.Sprintf("must have exactly %d elements, got %d", eventArity, len(tuple)))
		return []any{}
	}
	for k, el := range tuple {
		switch el.(type) {
		case string:
		case nil:
			if c.mode == ModeComplete && k < eventArity-1 {
				c.fail(fmt.Sprintf("%s[%d]", path, k), path, "must be a string")
			}
		default:
			c.fail(fmt.Sprintf("%s[%d]", path, k), path, "must be a string or null")
			tuple[k] = nil
		}
	}
	return tuple
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
