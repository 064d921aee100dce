package records

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/siteadmin/internal/common"
)

// Fields is a set of column values submitted for insert or partial update.
// A nil value clears a nullable column.
type Fields map[string]any

// Keys returns the field names in sorted order so generated SQL is stable.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether name is present, even with a nil value.
func (f Fields) Has(name string) bool {
	_, ok := f[name]
	return ok
}

// Kind is the value type of a writable field.
type Kind int

const (
	KindText Kind = iota
	KindURL
	KindBool
	KindInt
	KindEnum
	KindDate
)

// DateLayout is the accepted input format of KindDate fields.
const DateLayout = "2006-01-02"

// FieldSpec declares one client-writable column.
type FieldSpec struct {
	Name     string
	Kind     Kind
	Required bool // present and non-empty on create, never cleared
	Nullable bool // may be set to null; "" is stored as NULL
	HasRange bool
	Min, Max int
	Values   []string // allowed values of KindEnum
	Default  any      // applied on create when the field is absent
}

// ValidationError maps field names to human-readable problems. It matches
// common.ErrorValidation with errors.Is.
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
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return common.ErrorValidation
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

// normalize validates in against specs and returns the coerced values. With
// partial set, absent fields are left alone; otherwise required fields must
// be present and defaults are filled in.
func normalize(specs []FieldSpec, in Fields, partial bool) (Fields, error) {
	byName := make(map[string]FieldSpec, len(specs))
	for _, s := range specs {
		byName[s.Name] = s
	}

	verr := &ValidationError{}
	out := make(Fields, len(in))

	for name, raw := range in {
		spec, ok := byName[name]
		if !ok {
			verr.add(name, "unknown field")
			continue
		}
		v, msg := coerce(spec, raw)
		if msg != "" {
			verr.add(name, msg)
			continue
		}
		out[name] = v
	}

	if !partial {
		for _, spec := range specs {
			if in.Has(spec.Name) {
				continue
			}
			switch {
			case spec.Required:
				verr.add(spec.Name, "is required")
			case spec.Default != nil:
				out[spec.Name] = spec.Default
			}
		}
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return out, nil
}

func coerce(spec FieldSpec, raw any) (any, string) {
	if raw == nil {
		if spec.Nullable && !spec.Required {
			return nil, ""
		}
		return nil, "is required"
	}

	switch spec.Kind {
	case KindText, KindURL, KindEnum, KindDate:
		s, ok := raw.(string)
		if !ok {
			return nil, "must be a string"
		}
		s = strings.TrimSpace(s)
		if s == "" {
			if spec.Required {
				return nil, "is required"
			}
			if spec.Nullable {
				return nil, ""
			}
			return "", ""
		}
		return coerceString(spec, s)

	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, "must be a boolean"
		}
		return b, ""

	case KindInt:
		n, ok := toInt(raw)
		if !ok {
			return nil, "must be an integer"
		}
		if spec.HasRange && (n < spec.Min || n > spec.Max) {
			return nil, fmt.Sprintf("must be between %d and %d", spec.Min, spec.Max)
		}
		return n, ""
	}

	return nil, "unsupported field"
}

func coerceString(spec FieldSpec, s string) (any, string) {
	switch spec.Kind {
	case KindURL:
		u, err := url.Parse(s)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, "must be an http(s) URL"
		}
		return s, ""
	case KindEnum:
		for _, allowed := range spec.Values {
			if s == allowed {
				return s, ""
			}
		}
		return nil, "must be one of " + strings.Join(spec.Values, ", ")
	case KindDate:
		t, err := time.Parse(DateLayout, s)
		if err != nil {
			return nil, "must be a date (YYYY-MM-DD)"
		}
		return t, ""
	}
	return s, ""
}

func toInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
