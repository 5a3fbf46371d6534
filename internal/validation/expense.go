package validation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fliptrack/internal/budget"
	"fliptrack/internal/core"
)

// Expense form field names.
const (
	FieldRoom      = "roomName"
	FieldCategory  = "category"
	FieldCost      = "cost"
	FieldHours     = "hours"
	FieldCondition = "condition"
	FieldNotes     = "notes"
	FieldDate      = "date"
)

const (
	MaxRoomNameLength = 100
	MaxNotesLength    = 500
	DefaultCondition  = 3
)

var (
	highRate = core.MustMoney("200")
	lowRate  = core.MustMoney("20")
)

// ExpenseForm is the in-progress expense entry, kept as the raw text the
// user typed.
type ExpenseForm struct {
	RoomName  string `json:"roomName"`
	Category  string `json:"category"`
	Cost      string `json:"cost"`
	Hours     string `json:"hours,omitempty"`
	Condition string `json:"condition,omitempty"`
	Notes     string `json:"notes,omitempty"`
	Date      string `json:"date"`
}

// NewExpenseForm returns a form holding the entry defaults.
func NewExpenseForm(today core.Date) ExpenseForm {
	return ExpenseForm{
		Category:  core.Material.String(),
		Condition: strconv.Itoa(DefaultCondition),
		Date:      today.String(),
	}
}

func (f ExpenseForm) Value(field string) string {
	switch field {
	case FieldRoom:
		return f.RoomName
	case FieldCategory:
		return f.Category
	case FieldCost:
		return f.Cost
	case FieldHours:
		return f.Hours
	case FieldCondition:
		return f.Condition
	case FieldNotes:
		return f.Notes
	case FieldDate:
		return f.Date
	}
	return ""
}

// Set updates a field by name and reports whether the name was known.
func (f *ExpenseForm) Set(field, value string) bool {
	switch field {
	case FieldRoom:
		f.RoomName = value
	case FieldCategory:
		f.Category = value
	case FieldCost:
		f.Cost = value
	case FieldHours:
		f.Hours = value
	case FieldCondition:
		f.Condition = value
	case FieldNotes:
		f.Notes = value
	case FieldDate:
		f.Date = value
	default:
		return false
	}
	return true
}

// Expense converts a validated form into a domain expense.
func (f ExpenseForm) Expense(projectID int64) (core.Expense, error) {
	e := core.Expense{
		ProjectID: projectID,
		RoomName:  strings.TrimSpace(f.RoomName),
		Notes:     strings.TrimSpace(f.Notes),
		Date:      core.Today(),
	}
	var err error
	if e.Category, err = core.ParseCategory(f.Category); err != nil {
		return core.Expense{}, err
	}
	if e.Cost, err = core.ParseMoney(f.Cost); err != nil {
		return core.Expense{}, fmt.Errorf("cost: %w", err)
	}
	if h := strings.TrimSpace(f.Hours); h != "" {
		if e.Hours, err = core.ParseMoney(h); err != nil {
			return core.Expense{}, fmt.Errorf("hours: %w", err)
		}
	}
	if c := strings.TrimSpace(f.Condition); c != "" {
		if e.Condition, err = strconv.Atoi(c); err != nil {
			return core.Expense{}, core.ErrInvalidCondition
		}
	}
	if d := strings.TrimSpace(f.Date); d != "" {
		if e.Date, err = core.ParseDate(d); err != nil {
			return core.Expense{}, fmt.Errorf("date: %w", err)
		}
	}
	return e, e.Validate()
}

// Reference is the project-scoped data the expense rules check against.
type Reference struct {
	Rooms      []core.Room
	CustomRoom bool // room name is free text rather than picked from Rooms
	Budget     core.Money
	Spent      core.Money
	Now        func() time.Time
}

// HasRoom reports whether name matches a known room exactly.
func (r Reference) HasRoom(name string) bool {
	name = strings.TrimSpace(name)
	for _, room := range r.Rooms {
		if room.Name == name {
			return true
		}
	}
	return false
}

// SuggestRoom returns the closest known room to name, or "".
func (r Reference) SuggestRoom(name string) string {
	return closestRoom(r.Rooms, name)
}

func (r Reference) today() core.Date {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	t := now().UTC()
	return core.NewDate(t.Year(), int(t.Month()), t.Day())
}

// RoomMismatch is the message used when a room name is not in the project.
func RoomMismatch(name string) string {
	return fmt.Sprintf("Room '%s' not found in this project", name)
}

// ExpenseSchema builds the expense entry rules for one project's reference
// data. Build a new schema whenever the reference data changes.
func ExpenseSchema(ref Reference) *Schema {
	return NewSchema().
		Field(FieldRoom, "Room",
			RequiredRule(),
			MaxLengthRule(MaxRoomNameLength),
			CustomRule(ref.checkRoom),
		).
		Field(FieldCategory, "Category",
			RequiredRule(),
			PatternRule(`(?i)material|labor`).WithMessage("Category must be material or labor"),
		).
		Field(FieldCost, "Cost",
			RequiredRule(),
			PatternRule(`\d+(\.\d{1,2})?`).WithMessage("Cost must be a valid amount"),
			MinRule("0.01").WithMessage("Cost must be greater than 0"),
			MaxRule("1000000").WithMessage("Cost cannot exceed $1,000,000"),
			CustomRule(ref.checkBudget),
		).
		// The range rules run before checkRate, so out-of-range hours never get a rate hint.
		Field(FieldHours, "Hours",
			PatternRule(`\d+(\.\d+)?`).WithMessage("Hours must be a number"),
			MinRule("0").WithMessage("Hours must be between 0 and 50"),
			MaxRule("50").WithMessage("Hours must be between 0 and 50"),
			CustomRule(checkRate),
		).
		Field(FieldCondition, "Condition",
			PatternRule(`[1-5]`).WithMessage("Condition must be between 1 and 5"),
		).
		Field(FieldNotes, "Notes",
			MaxLengthRule(MaxNotesLength),
		).
		Field(FieldDate, "Date",
			RequiredRule(),
			PatternRule(`\d{4}-\d{2}-\d{2}`).WithMessage("Date must be in YYYY-MM-DD format"),
			CustomRule(ref.checkDate),
		)
}

func (r Reference) checkRoom(value string, _ Record) Verdict {
	if strings.HasPrefix(value, "-") {
		return Fail("Room name cannot start with '-'")
	}
	if r.HasRoom(value) {
		return Pass()
	}
	if r.CustomRoom {
		return Suggest(fmt.Sprintf("Room '%s' will be created when you save", value))
	}
	msg := RoomMismatch(value)
	if s := r.SuggestRoom(value); s != "" {
		msg += fmt.Sprintf(". Did you mean '%s'?", s)
	}
	return Fail(msg)
}

func (r Reference) checkBudget(value string, _ Record) Verdict {
	cost, err := core.ParseMoney(value)
	if err != nil {
		return Pass()
	}
	if w, over := budget.Check(r.Budget, r.Spent, cost); over {
		return Warn(w.String())
	}
	return Pass()
}

func (r Reference) checkDate(value string, _ Record) Verdict {
	d, err := core.ParseDate(value)
	if err != nil {
		return Fail("Date is not a valid calendar date")
	}
	if d.After(r.today().Time) {
		return Warn("Date is in the future")
	}
	return Pass()
}

func checkRate(value string, rec Record) Verdict {
	if value == "" {
		return Pass()
	}
	hours, err := core.ParseMoney(value)
	if err != nil {
		return Pass()
	}
	cat, _ := core.ParseCategory(rec.Value(FieldCategory))
	if cat == core.Material {
		if hours.IsPositive() {
			return Suggest("Hours are usually only tracked for labor expenses")
		}
		return Pass()
	}
	cost, err := core.ParseMoney(rec.Value(FieldCost))
	if err != nil || cat != core.Labor {
		return Pass()
	}
	rate, ok := core.Expense{Cost: cost, Hours: hours}.HourlyRate()
	if !ok {
		return Pass()
	}
	switch {
	case rate.GreaterThan(highRate):
		return Warn(fmt.Sprintf("Hourly rate seems high (%s/hr)", rate.Format()))
	case lowRate.GreaterThan(rate):
		return Warn(fmt.Sprintf("Hourly rate seems low (%s/hr)", rate.Format()))
	}
	return Pass()
}
