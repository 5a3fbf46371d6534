package validation

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

type field struct {
	name  string
	label string
	rules []Rule
}

// Schema holds the ordered rule lists for a form. A Schema is immutable once
// built and safe for concurrent use.
type Schema struct {
	fields []field
	index  map[string]int
}

func NewSchema() *Schema {
	return &Schema{index: make(map[string]int)}
}

// Field registers the rules for a field. Rules are sorted into evaluation
// phase order here, so callers may list them in any order. Registering the
// same field twice replaces its rules.
func (s *Schema) Field(name, label string, rules ...Rule) *Schema {
	sorted := slices.Clone(rules)
	slices.SortStableFunc(sorted, func(a, b Rule) int {
		return cmp.Compare(a.Kind.phase(), b.Kind.phase())
	})
	f := field{name: name, label: label, rules: sorted}
	if i, ok := s.index[name]; ok {
		s.fields[i] = f
		return s
	}
	s.index[name] = len(s.fields)
	s.fields = append(s.fields, f)
	return s
}

// Fields returns the registered field names in registration order.
func (s *Schema) Fields() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.name
	}
	return names
}

// ValidateField evaluates one field. Unknown fields are always valid.
func (s *Schema) ValidateField(name, value string, rec Record) Verdict {
	i, ok := s.index[name]
	if !ok {
		return Pass()
	}
	return s.fields[i].evaluate(value, rec)
}

// ValidateOnChange is called on every edit of a field.
func (s *Schema) ValidateOnChange(name, value string, rec Record) Verdict {
	return s.ValidateField(name, value, rec)
}

// ValidateOnBlur is called when a field loses focus.
func (s *Schema) ValidateOnBlur(name, value string, rec Record) Verdict {
	return s.ValidateField(name, value, rec)
}

// ValidateForm re-validates every field of rec and reports whether the record
// may be submitted.
func (s *Schema) ValidateForm(rec Record) (Verdicts, bool) {
	out := make(Verdicts, len(s.fields))
	for _, f := range s.fields {
		v := f.evaluate(rec.Value(f.name), rec)
		if !v.IsValid() {
			out[f.name] = v
		}
	}
	return out, !out.HasErrors()
}

func (f field) evaluate(value string, rec Record) Verdict {
	trimmed := strings.TrimSpace(value)
	for _, r := range f.rules {
		// Optional fields that were left blank only answer to custom rules.
		if trimmed == "" && r.Kind != Required && r.Kind != Custom {
			continue
		}
		if v := f.apply(r, trimmed, rec); !v.IsValid() {
			return v
		}
	}
	return Pass()
}

func (f field) apply(r Rule, value string, rec Record) Verdict {
	switch r.Kind {
	case Required:
		if isMissing(value) {
			return f.fail(r, "%s is required", f.label)
		}
	case MinLength:
		if utf8.RuneCountInString(value) < r.Length {
			return f.fail(r, "%s must be at least %d characters", f.label, r.Length)
		}
	case MaxLength:
		if utf8.RuneCountInString(value) > r.Length {
			return f.fail(r, "%s must be %d characters or less", f.label, r.Length)
		}
	case Pattern:
		if !r.Regexp.MatchString(value) {
			return f.fail(r, "%s has an invalid format", f.label)
		}
	case Min, Max:
		n, err := decimal.NewFromString(value)
		if err != nil {
			return f.fail(r, "%s must be a number", f.label)
		}
		if r.Kind == Min && n.LessThan(r.Bound) {
			return f.fail(r, "%s must be at least %s", f.label, r.Bound.String())
		}
		if r.Kind == Max && n.GreaterThan(r.Bound) {
			return f.fail(r, "%s must be no more than %s", f.label, r.Bound.String())
		}
	case Custom:
		if r.Check != nil {
			return r.Check(value, rec)
		}
	default:
		panic(fmt.Sprintf("validation: unhandled rule kind %d", r.Kind))
	}
	return Pass()
}

// isMissing treats blank text and a numeric zero as no value.
func isMissing(value string) bool {
	if value == "" {
		return true
	}
	n, err := decimal.NewFromString(value)
	return err == nil && n.IsZero()
}

func (f field) fail(r Rule, format string, args ...any) Verdict {
	if r.Message != "" {
		return Fail(r.Message)
	}
	return Fail(fmt.Sprintf(format, args...))
}

// Verdicts maps field names to their non-valid verdicts.
type Verdicts map[string]Verdict

// HasErrors reports whether any field holds a blocking verdict.
func (v Verdicts) HasErrors() bool {
	for _, verdict := range v {
		if verdict.Blocking() {
			return true
		}
	}
	return false
}

// Get returns the verdict for a field, Pass when none was recorded.
func (v Verdicts) Get(field string) Verdict {
	return v[field]
}

// Blocking returns the names of fields holding errors, sorted.
func (v Verdicts) Blocking() []string {
	var names []string
	for name, verdict := range v {
		if verdict.Blocking() {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
