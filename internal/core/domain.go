package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Material Category = "material"
	Labor    Category = "labor"
)

// DateLayout is the calendar date format used by the backend listings.
const DateLayout = "2006-01-02"

type (
	Category string

	Date struct {
		time.Time
	}

	Project struct {
		ID      int64
		Name    string
		Budget  Money
		Status  string
		Type    string
		Created Date
	}

	Room struct {
		Name      string
		Floor     *int   // nil when the listing does not say
		Size      string // descriptive, e.g. "300 sq ft" or "Not set"
		Condition int    // 1-5, 0 when unset
		Label     string // raw condition text as printed
		Notes     string
	}

	Expense struct {
		ID          int64 // 0 until persisted
		ProjectID   int64
		ProjectName string
		RoomName    string
		Category    Category
		Cost        Money
		Hours       Money // zero when absent
		Condition   int   // 1-5, 0 when absent
		Notes       string
		Date        Date
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidCondition = errors.New("condition must be between 1-5")
	ErrInvalidHours     = errors.New("hours must be between 0 and 50")
	ErrEmptyRoom        = errors.New("empty room name")
	ErrEmptyName        = errors.New("empty name")
	ErrMissingProject   = errors.New("missing project id")
)

// MaxCost is the largest single expense accepted.
var MaxCost = MustMoney("1000000")

// MaxHours is the largest labor hours value accepted on a single expense.
var MaxHours = MustMoney("50")

// ParseCategory accepts the lowercase enum values as well as the title-cased
// form printed by the listings.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case Material:
		return Material, nil
	case Labor:
		return Labor, nil
	}
	return "", ErrInvalidCategory
}

func (c Category) String() string {
	return string(c)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// Today returns the current calendar date in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (p Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.Budget.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// HasFloor reports whether the floor number is known.
func (r Room) HasFloor() bool {
	return r.Floor != nil
}

func (e Expense) Validate() error {
	if e.ProjectID <= 0 {
		return ErrMissingProject
	}
	if strings.TrimSpace(e.RoomName) == "" {
		return ErrEmptyRoom
	}
	if _, err := ParseCategory(string(e.Category)); err != nil {
		return err
	}
	if !e.Cost.IsPositive() || e.Cost.GreaterThan(MaxCost) {
		return ErrInvalidAmount
	}
	if e.Hours.IsNegative() || e.Hours.GreaterThan(MaxHours) {
		return ErrInvalidHours
	}
	if e.Condition != 0 && (e.Condition < 1 || e.Condition > 5) {
		return ErrInvalidCondition
	}
	return nil
}

// HourlyRate returns cost divided by hours, and false when no hours were logged.
func (e Expense) HourlyRate() (Money, bool) {
	if !e.Hours.IsPositive() {
		return Money{}, false
	}
	return Money{Decimal: e.Cost.Div(e.Hours.Decimal)}, true
}
