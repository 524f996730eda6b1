package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Filter narrows which events a webhook receives by matching payload
// fields. The zero value matches everything.
type Filter struct {
	raw   string
	rules map[string]rule
}

// ParseFilter compiles a JSON filter document. Each key names a payload
// field; the value is either a scalar (equality), an array (membership),
// an object with "min"/"max" (numeric range) or an object with "pattern"
// and optional "ignore_case" (regular expression, case-insensitive by
// default). An empty document matches every event.
func ParseFilter(raw string) (Filter, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Filter{}, nil
	}
	var spec map[string]any
	if err := json.Unmarshal([]byte(raw), &spec); err != nil {
		return Filter{}, fmt.Errorf("%w: filter is not a JSON object: %v", ErrInvalidConfig, err)
	}
	rules := make(map[string]rule, len(spec))
	for field, value := range spec {
		r, err := parseRule(field, value)
		if err != nil {
			return Filter{}, err
		}
		rules[field] = r
	}
	return Filter{raw: raw, rules: rules}, nil
}

// Matches evaluates every rule against the payload. Rules on fields the
// payload does not carry are skipped, so a filter only constrains what is
// actually present.
func (f Filter) Matches(payload map[string]any) bool {
	for field, r := range f.rules {
		value, ok := payload[field]
		if !ok {
			continue
		}
		if !r.matches(value) {
			return false
		}
	}
	return true
}

// Raw returns the JSON document the filter was parsed from, empty for the
// zero filter.
func (f Filter) Raw() string { return f.raw }

// Empty reports whether the filter has no rules.
func (f Filter) Empty() bool { return len(f.rules) == 0 }

type rule interface {
	matches(value any) bool
}

func parseRule(field string, value any) (rule, error) {
	switch spec := value.(type) {
	case []any:
		return membershipRule{values: spec}, nil
	case map[string]any:
		return parseObjectRule(field, spec)
	default:
		return equalityRule{want: value}, nil
	}
}

func parseObjectRule(field string, spec map[string]any) (rule, error) {
	if _, ok := spec["pattern"]; ok {
		return parsePatternRule(field, spec)
	}
	r := rangeRule{}
	for op, raw := range spec {
		switch op {
		case "min", "max":
			bound, ok := numeric(raw)
			if !ok {
				return nil, fmt.Errorf("%w: %s bound for %q must be a number", ErrInvalidConfig, op, field)
			}
			if op == "min" {
				r.min = &bound
			} else {
				r.max = &bound
			}
		default:
			return nil, fmt.Errorf("%w: unsupported filter operator %q on field %q", ErrInvalidConfig, op, field)
		}
	}
	if r.min == nil && r.max == nil {
		return nil, fmt.Errorf("%w: empty rule object for field %q", ErrInvalidConfig, field)
	}
	return r, nil
}

func parsePatternRule(field string, spec map[string]any) (rule, error) {
	pattern, ok := spec["pattern"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: pattern for %q must be a string", ErrInvalidConfig, field)
	}
	ignoreCase := true
	for op, raw := range spec {
		switch op {
		case "pattern":
		case "ignore_case":
			b, ok := raw.(bool)
			if !ok {
				return nil, fmt.Errorf("%w: ignore_case for %q must be a boolean", ErrInvalidConfig, field)
			}
			ignoreCase = b
		default:
			return nil, fmt.Errorf("%w: unsupported filter operator %q on field %q", ErrInvalidConfig, op, field)
		}
	}
	expr := pattern
	if ignoreCase {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid pattern for %q: %v", ErrInvalidConfig, field, err)
	}
	return patternRule{re: re}, nil
}

type equalityRule struct {
	want any
}

func (r equalityRule) matches(value any) bool {
	return scalarEqual(r.want, value)
}

type membershipRule struct {
	values []any
}

func (r membershipRule) matches(value any) bool {
	for _, candidate := range r.values {
		if scalarEqual(candidate, value) {
			return true
		}
	}
	return false
}

type rangeRule struct {
	min *float64
	max *float64
}

func (r rangeRule) matches(value any) bool {
	n, ok := coerceNumeric(value)
	if !ok {
		return false
	}
	if r.min != nil && n < *r.min {
		return false
	}
	if r.max != nil && n > *r.max {
		return false
	}
	return true
}

type patternRule struct {
	re *regexp.Regexp
}

func (r patternRule) matches(value any) bool {
	return r.re.MatchString(fmt.Sprint(value))
}

// scalarEqual compares a filter literal against a payload value. Numbers
// compare across integer and float representations; other scalars must
// match in type and value.
func scalarEqual(want, got any) bool {
	if wn, ok := numeric(want); ok {
		gn, ok := numeric(got)
		return ok && wn == gn
	}
	switch w := want.(type) {
	case string:
		g, ok := got.(string)
		return ok && w == g
	case bool:
		g, ok := got.(bool)
		return ok && w == g
	case nil:
		return got == nil
	default:
		return false
	}
}

func numeric(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// coerceNumeric additionally accepts numeric strings, so range rules work
// on payloads that carry numbers as text.
func coerceNumeric(value any) (float64, bool) {
	if n, ok := numeric(value); ok {
		return n, true
	}
	if s, ok := value.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	return 0, false
}
