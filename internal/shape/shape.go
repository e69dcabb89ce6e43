// Package shape validates upstream JSON bodies against declarative
// per-endpoint descriptors. Validation is two-tiered: structural violations
// (missing field, wrong kind, empty required collection) are hard failures
// that block the response, while value-level drift (count mismatches,
// unknown enum labels, out-of-range numbers, key naming deviations) only
// produces warnings. The upstream contract is not ours and has historically
// drifted in cosmetic ways; the UI must not break on that.
package shape

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
)

type Kind int

const (
	Object Kind = iota
	Array
	String
	Number
	Bool
)

func (k Kind) String() string {
	switch k {
	case Object:
		return "object"
	case Array:
		return "array"
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "boolean"
	}
	return "unknown"
}

// Field declares one required (or optional) member of an object.
type Field struct {
	Name     string
	Kind     Kind
	Optional bool

	// NonEmpty marks an array field whose emptiness is a hard failure.
	NonEmpty bool

	// Elem describes the shape of each array element.
	Elem *Shape

	// Fields describes a nested object.
	Fields []Field

	// Enum and Min/Max are soft constraints: violations are warnings.
	Enum []string
	Min  *float64
	Max  *float64
}

// Shape is the descriptor for one endpoint's upstream response document.
// The zero Kind is Object; set Kind to Array with Elem for endpoints whose
// top-level document is a JSON array.
type Shape struct {
	Name   string
	Kind   Kind
	Fields []Field
	Elem   *Shape
	Checks []Check
}

// Check is a soft cross-field consistency rule, run after the structural
// walk succeeds. It returns warning strings, never failures.
type Check interface {
	Check(doc map[string]any) []string
}

type Outcome int

const (
	Valid Outcome = iota
	SoftWarning
	HardFailure
)

// Result is the tagged outcome of one validation: exactly one of
// {Valid, SoftWarning, HardFailure}. Payload is set unless the validation
// failed hard; Reason is set only on hard failure.
type Result struct {
	Outcome  Outcome
	Payload  any
	Warnings []string
	Reason   string
}

// Validate parses body as JSON and walks it against the descriptor.
func Validate(body []byte, s *Shape) Result {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return Result{
			Outcome: HardFailure,
			Reason:  fmt.Sprintf("response was not valid JSON: %s", snippet(body)),
		}
	}

	warnings, hard := validateValue(s.Name, doc, s)
	if hard != "" {
		return Result{Outcome: HardFailure, Reason: hard}
	}

	if obj, ok := doc.(map[string]any); ok {
		for _, check := range s.Checks {
			warnings = append(warnings, check.Check(obj)...)
		}
	}

	if len(warnings) > 0 {
		return Result{Outcome: SoftWarning, Payload: doc, Warnings: warnings}
	}
	return Result{Outcome: Valid, Payload: doc}
}

func validateValue(path string, v any, s *Shape) (warnings []string, hard string) {
	switch s.Kind {
	case Array:
		arr, ok := v.([]any)
		if !ok {
			return nil, fmt.Sprintf("%s: expected array, got %s", path, kindName(v))
		}
		if s.Elem != nil {
			for i, elem := range arr {
				w, h := validateValue(fmt.Sprintf("%s[%d]", path, i), elem, s.Elem)
				warnings = append(warnings, w...)
				if h != "" {
					return warnings, h
				}
			}
		}
		return warnings, ""
	default:
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Sprintf("%s: expected object, got %s", path, kindName(v))
		}
		return validateObject(path, obj, s.Fields)
	}
}

func validateObject(path string, obj map[string]any, fields []Field) (warnings []string, hard string) {
	for _, f := range fields {
		fieldPath := path + "." + f.Name

		value, exists := obj[f.Name]
		if !exists || value == nil {
			if f.Optional {
				continue
			}
			return warnings, fmt.Sprintf("%s: required field missing", fieldPath)
		}

		w, h := validateField(fieldPath, value, f)
		warnings = append(warnings, w...)
		if h != "" {
			return warnings, h
		}
	}
	return warnings, ""
}

func validateField(path string, value any, f Field) (warnings []string, hard string) {
	switch f.Kind {
	case String:
		s, ok := value.(string)
		if !ok {
			return nil, typeMismatch(path, f.Kind, value)
		}
		if len(f.Enum) > 0 && !contains(f.Enum, s) {
			warnings = append(warnings, fmt.Sprintf("%s: value %q outside known set %v", path, s, f.Enum))
		}

	case Number:
		n, ok := value.(float64)
		if !ok {
			return nil, typeMismatch(path, f.Kind, value)
		}
		if f.Min != nil && n < *f.Min {
			warnings = append(warnings, fmt.Sprintf("%s: value %v below expected minimum %v", path, n, *f.Min))
		}
		if f.Max != nil && n > *f.Max {
			warnings = append(warnings, fmt.Sprintf("%s: value %v above expected maximum %v", path, n, *f.Max))
		}

	case Bool:
		if _, ok := value.(bool); !ok {
			return nil, typeMismatch(path, f.Kind, value)
		}

	case Array:
		arr, ok := value.([]any)
		if !ok {
			return nil, typeMismatch(path, f.Kind, value)
		}
		if f.NonEmpty && len(arr) == 0 {
			return nil, fmt.Sprintf("%s: required collection is empty", path)
		}
		if f.Elem != nil {
			for i, elem := range arr {
				w, h := validateValue(fmt.Sprintf("%s[%d]", path, i), elem, f.Elem)
				warnings = append(warnings, w...)
				if h != "" {
					return warnings, h
				}
			}
		}

	case Object:
		obj, ok := value.(map[string]any)
		if !ok {
			return nil, typeMismatch(path, f.Kind, value)
		}
		if len(f.Fields) > 0 {
			return validateObject(path, obj, f.Fields)
		}
	}

	return warnings, ""
}

// CountCheck compares a numeric summary field against the length of the
// array it summarizes, e.g. total_images vs images_analyzed.
type CountCheck struct {
	Total string
	Items string
}

func (c CountCheck) Check(doc map[string]any) []string {
	total, ok := doc[c.Total].(float64)
	if !ok {
		return nil
	}
	items, ok := doc[c.Items].([]any)
	if !ok {
		return nil
	}
	if int(total) != len(items) {
		return []string{fmt.Sprintf("%s reports %d but %s holds %d entries", c.Total, int(total), c.Items, len(items))}
	}
	return nil
}

// GroupCountCheck compares a map of per-key counts against a map of per-key
// arrays, e.g. category_counts vs categorized_comments.
type GroupCountCheck struct {
	Counts string
	Groups string
}

func (c GroupCountCheck) Check(doc map[string]any) []string {
	counts, ok := doc[c.Counts].(map[string]any)
	if !ok {
		return nil
	}
	groups, ok := doc[c.Groups].(map[string]any)
	if !ok {
		return nil
	}

	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var warnings []string
	for _, key := range keys {
		count, ok := counts[key].(float64)
		if !ok {
			continue
		}
		group, ok := groups[key].([]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("%s[%s] has no matching group in %s", c.Counts, key, c.Groups))
			continue
		}
		if int(count) != len(group) {
			warnings = append(warnings, fmt.Sprintf("%s[%s] reports %d but %s[%s] holds %d entries", c.Counts, key, int(count), c.Groups, key, len(group)))
		}
	}
	return warnings
}

// KeyPatternCheck flags keys of an object field that deviate from the
// upstream's usual naming pattern (e.g. Tema_1, Tema_2).
type KeyPatternCheck struct {
	Field   string
	Pattern *regexp.Regexp
}

func (c KeyPatternCheck) Check(doc map[string]any) []string {
	obj, ok := doc[c.Field].(map[string]any)
	if !ok {
		return nil
	}

	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var warnings []string
	for _, key := range keys {
		if !c.Pattern.MatchString(key) {
			warnings = append(warnings, fmt.Sprintf("%s key %q does not match pattern %s", c.Field, key, c.Pattern))
		}
	}
	return warnings
}

func typeMismatch(path string, want Kind, got any) string {
	return fmt.Sprintf("%s: expected %s, got %s", path, want, kindName(got))
}

func kindName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%T", v)
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func snippet(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
