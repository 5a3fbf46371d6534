package backend

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"fliptrack/internal/core"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Amounts are checked as numbers so the stock gt/lte tags apply.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if m, ok := field.Interface().(core.Money); ok {
			return m.InexactFloat64()
		}
		return nil
	}, core.Money{})
	return v
}

// RoomArgs are the arguments of a create-room call.
type RoomArgs struct {
	ProjectID int64  `json:"project_id" validate:"gt=0"`
	Name      string `json:"name" validate:"required,max=100,startsnotwith=-"`
	Floor     int    `json:"floor" validate:"gte=0,lte=200"`
	Condition int    `json:"condition" validate:"omitempty,min=1,max=5"`
	Notes     string `json:"notes,omitempty" validate:"max=500"`
}

// Validate checks the arguments before any backend call is made.
func (a RoomArgs) Validate() error {
	return checkStruct(a)
}

// Args renders the command line for `room add`.
func (a RoomArgs) Args() []string {
	args := []string{"room", "add", strconv.FormatInt(a.ProjectID, 10), a.Name, strconv.Itoa(a.Floor)}
	if a.Condition != 0 {
		args = append(args, "--condition", strconv.Itoa(a.Condition))
	}
	if a.Notes != "" {
		args = append(args, "--notes", a.Notes)
	}
	return args
}

// ExpenseArgs are the arguments of an add-expense call.
type ExpenseArgs struct {
	ProjectID int64      `json:"project_id" validate:"gt=0"`
	RoomName  string     `json:"room_name" validate:"required,max=100,startsnotwith=-"`
	Category  string     `json:"category" validate:"oneof=material labor"`
	Cost      core.Money `json:"cost" validate:"gt=0,lte=1000000"`
	Hours     core.Money `json:"hours" validate:"gte=0,lte=50"`
	Condition int        `json:"condition,omitempty" validate:"omitempty,min=1,max=5"`
	Notes     string     `json:"notes,omitempty" validate:"max=500"`
}

// ExpenseArgsFrom builds the call arguments for an expense.
func ExpenseArgsFrom(e core.Expense) ExpenseArgs {
	return ExpenseArgs{
		ProjectID: e.ProjectID,
		RoomName:  e.RoomName,
		Category:  e.Category.String(),
		Cost:      e.Cost,
		Hours:     e.Hours,
		Condition: e.Condition,
		Notes:     e.Notes,
	}
}

func (a ExpenseArgs) Validate() error {
	return checkStruct(a)
}

// Args renders the command line for `expense add`.
func (a ExpenseArgs) Args() []string {
	args := []string{
		"expense", "add",
		strconv.FormatInt(a.ProjectID, 10),
		a.RoomName,
		a.Category,
		a.Cost.StringFixed(2),
	}
	if a.Hours.IsPositive() {
		args = append(args, "--hours", a.Hours.String())
	}
	if a.Condition != 0 {
		args = append(args, "--condition", strconv.Itoa(a.Condition))
	}
	if a.Notes != "" {
		args = append(args, "--notes", a.Notes)
	}
	return args
}

func checkStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
	}
	return fmt.Errorf("%w: %s", ErrInvalidArgs, strings.Join(fields, ", "))
}
