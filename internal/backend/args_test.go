package backend

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"fliptrack/internal/core"
)

func validExpenseArgs() ExpenseArgs {
	return ExpenseArgs{
		ProjectID: 1,
		RoomName:  "Kitchen",
		Category:  "labor",
		Cost:      core.MustMoney("450"),
		Hours:     core.MustMoney("6"),
		Condition: 3,
		Notes:     "Tile work",
	}
}

func TestExpenseArgs_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(a *ExpenseArgs)
		wantField string
	}{
		{name: "valid", mutate: func(a *ExpenseArgs) {}},
		{name: "no hours", mutate: func(a *ExpenseArgs) { a.Hours = core.Money{} }},
		{name: "missing project", mutate: func(a *ExpenseArgs) { a.ProjectID = 0 }, wantField: "ProjectID"},
		{name: "missing room", mutate: func(a *ExpenseArgs) { a.RoomName = "" }, wantField: "RoomName"},
		{name: "room read as an option", mutate: func(a *ExpenseArgs) { a.RoomName = "--help" }, wantField: "RoomName"},
		{name: "room too long", mutate: func(a *ExpenseArgs) { a.RoomName = strings.Repeat("r", 101) }, wantField: "RoomName"},
		{name: "bad category", mutate: func(a *ExpenseArgs) { a.Category = "permits" }, wantField: "Category"},
		{name: "zero cost", mutate: func(a *ExpenseArgs) { a.Cost = core.Money{} }, wantField: "Cost"},
		{name: "cost over limit", mutate: func(a *ExpenseArgs) { a.Cost = core.MustMoney("1000000.01") }, wantField: "Cost"},
		{name: "too many hours", mutate: func(a *ExpenseArgs) { a.Hours = core.MustMoney("50.5") }, wantField: "Hours"},
		{name: "condition out of range", mutate: func(a *ExpenseArgs) { a.Condition = 6 }, wantField: "Condition"},
		{name: "notes too long", mutate: func(a *ExpenseArgs) { a.Notes = strings.Repeat("n", 501) }, wantField: "Notes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := validExpenseArgs()
			tt.mutate(&args)
			err := args.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidArgs) {
				t.Fatalf("Validate() error = %v, want ErrInvalidArgs", err)
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantField)
			}
		})
	}
}

func TestExpenseArgs_Args(t *testing.T) {
	tests := []struct {
		name string
		args ExpenseArgs
		want []string
	}{
		{
			name: "all options",
			args: validExpenseArgs(),
			want: []string{"expense", "add", "1", "Kitchen", "labor", "450.00",
				"--hours", "6", "--condition", "3", "--notes", "Tile work"},
		},
		{
			name: "material without options",
			args: ExpenseArgs{ProjectID: 2, RoomName: "Master Bedroom", Category: "material", Cost: core.MustMoney("99.9")},
			want: []string{"expense", "add", "2", "Master Bedroom", "material", "99.90"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.args.Args(); !slices.Equal(got, tt.want) {
				t.Errorf("Args() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpenseArgsFrom(t *testing.T) {
	e := core.Expense{
		ProjectID: 4, RoomName: "Garage", Category: core.Material,
		Cost: core.MustMoney("12.5"), Condition: 2, Notes: "Paint",
	}
	args := ExpenseArgsFrom(e)
	if args.ProjectID != 4 || args.RoomName != "Garage" || args.Category != "material" {
		t.Errorf("ExpenseArgsFrom() = %+v", args)
	}
	if !args.Cost.Equal(e.Cost) || args.Condition != 2 || args.Notes != "Paint" {
		t.Errorf("ExpenseArgsFrom() = %+v", args)
	}
}

func TestRoomArgs(t *testing.T) {
	args := RoomArgs{ProjectID: 1, Name: "Garage", Floor: 1}
	if err := args.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	want := []string{"room", "add", "1", "Garage", "1"}
	if got := args.Args(); !slices.Equal(got, want) {
		t.Errorf("Args() = %q, want %q", got, want)
	}

	args.Condition = 4
	args.Notes = "Detached"
	want = append(want, "--condition", "4", "--notes", "Detached")
	if got := args.Args(); !slices.Equal(got, want) {
		t.Errorf("Args() = %q, want %q", got, want)
	}

	for _, bad := range []RoomArgs{
		{ProjectID: 0, Name: "Garage"},
		{ProjectID: 1, Name: ""},
		{ProjectID: 1, Name: "Garage", Floor: -1},
		{ProjectID: 1, Name: "Garage", Condition: 9},
		{ProjectID: 1, Name: "-f"},
	} {
		if err := bad.Validate(); !errors.Is(err, ErrInvalidArgs) {
			t.Errorf("Validate(%+v) error = %v, want ErrInvalidArgs", bad, err)
		}
	}
}
