// Package validation evaluates declarative per-field rules against an
// in-progress form record.
//
// Each field carries an ordered list of rules. Rules run in phase order
// (required, length, pattern, numeric range, custom) and the first rule that
// does not pass decides the field's verdict.
package validation

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// Severity classifies a verdict. Only Error blocks a submission.
type Severity int

const (
	Valid Severity = iota
	Suggestion
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Suggestion:
		return "suggestion"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "valid"
	}
}

// Verdict is the outcome of validating one field.
type Verdict struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message,omitempty"`
}

// Pass is the verdict of a field with nothing to report.
func Pass() Verdict { return Verdict{} }

// Fail returns a blocking verdict.
func Fail(msg string) Verdict { return Verdict{Severity: Error, Message: msg} }

// Warn returns a non-blocking warning.
func Warn(msg string) Verdict { return Verdict{Severity: Warning, Message: msg} }

// Suggest returns an informational hint.
func Suggest(msg string) Verdict { return Verdict{Severity: Suggestion, Message: msg} }

// Blocking reports whether the verdict prevents submission.
func (v Verdict) Blocking() bool { return v.Severity == Error }

// IsValid reports whether there is nothing to show for the field.
func (v Verdict) IsValid() bool { return v.Severity == Valid }

// Kind tags the variant held by a Rule.
type Kind int

const (
	Required Kind = iota
	MinLength
	MaxLength
	Pattern
	Min
	Max
	Custom
)

func (k Kind) String() string {
	switch k {
	case Required:
		return "required"
	case MinLength:
		return "min_length"
	case MaxLength:
		return "max_length"
	case Pattern:
		return "pattern"
	case Min:
		return "min"
	case Max:
		return "max"
	case Custom:
		return "custom"
	}
	return "unknown"
}

// phase is the evaluation order of a kind. Kinds sharing a phase keep their
// declaration order.
func (k Kind) phase() int {
	switch k {
	case Required:
		return 0
	case MinLength, MaxLength:
		return 1
	case Pattern:
		return 2
	case Min, Max:
		return 3
	default:
		return 4
	}
}

// Record is the whole in-progress form, as seen by cross-field rules.
type Record interface {
	Value(field string) string
}

// Values is a map-backed Record.
type Values map[string]string

func (v Values) Value(field string) string { return v[field] }

// CheckFunc is custom rule logic. It sees the field value and the whole
// record and returns Pass when it has nothing to say.
type CheckFunc func(value string, rec Record) Verdict

// Rule is one declarative constraint on a field. Build rules with the
// constructors below rather than by hand.
type Rule struct {
	Kind    Kind
	Length  int
	Bound   decimal.Decimal
	Regexp  *regexp.Regexp
	Check   CheckFunc
	Message string // overrides the default message when set
}

func RequiredRule() Rule { return Rule{Kind: Required} }

func MinLengthRule(n int) Rule { return Rule{Kind: MinLength, Length: n} }

func MaxLengthRule(n int) Rule { return Rule{Kind: MaxLength, Length: n} }

// PatternRule requires the whole value to match expr.
func PatternRule(expr string) Rule {
	return Rule{Kind: Pattern, Regexp: regexp.MustCompile(`^(?:` + expr + `)$`)}
}

func MinRule(bound string) Rule { return Rule{Kind: Min, Bound: decimal.RequireFromString(bound)} }

func MaxRule(bound string) Rule { return Rule{Kind: Max, Bound: decimal.RequireFromString(bound)} }

func CustomRule(fn CheckFunc) Rule { return Rule{Kind: Custom, Check: fn} }

// WithMessage returns a copy of r reporting msg instead of the default.
func (r Rule) WithMessage(msg string) Rule {
	r.Message = msg
	return r
}
