package backend

import (
	"context"
	"errors"
	"slices"
	"testing"

	"fliptrack/internal/core"
	"fliptrack/internal/listing"
)

var _ Gateway = (*Memory)(nil)

func TestMemory_ListingsDecode(t *testing.T) {
	ctx := context.Background()
	m := NewDemoMemory()

	t.Run("projects", func(t *testing.T) {
		text, err := m.ListProjects(ctx)
		if err != nil {
			t.Fatalf("ListProjects() error = %v", err)
		}
		projects, rep := listing.DecodeProjects(text)
		if len(projects) != 1 || rep.Skipped != 0 {
			t.Fatalf("DecodeProjects() = %+v, report %+v\n%s", projects, rep, text)
		}
		p := projects[0]
		if p.ID != 1 || p.Name != "Main St Flip" || !p.Budget.Equal(core.MustMoney("10000")) {
			t.Errorf("decoded project = %+v", p)
		}
	})

	t.Run("rooms", func(t *testing.T) {
		text, err := m.ListRooms(ctx, 1)
		if err != nil {
			t.Fatalf("ListRooms() error = %v", err)
		}
		rooms, rep := listing.DecodeRooms(text)
		if rep.Skipped != 0 {
			t.Fatalf("DecodeRooms() report %+v\n%s", rep, text)
		}
		var names []string
		for _, r := range rooms {
			names = append(names, r.Name)
		}
		if !slices.Equal(names, []string{"Kitchen", "Bathroom"}) {
			t.Errorf("room names = %v", names)
		}
		if !rooms[0].HasFloor() || *rooms[0].Floor != 1 || rooms[0].Condition != 2 {
			t.Errorf("kitchen = %+v", rooms[0])
		}
	})

	t.Run("expenses", func(t *testing.T) {
		text, err := m.ListExpenses(ctx, 1)
		if err != nil {
			t.Fatalf("ListExpenses() error = %v", err)
		}
		expenses, rep := listing.DecodeExpenses(text)
		if len(expenses) != 1 || rep.Skipped != 0 {
			t.Fatalf("DecodeExpenses() = %+v, report %+v\n%s", expenses, rep, text)
		}
		e := expenses[0]
		if e.ID != 1 || e.RoomName != "Kitchen" || e.Category != core.Labor || !e.Cost.Equal(core.MustMoney("2000")) {
			t.Errorf("decoded expense = %+v", e)
		}
		if e.ProjectName != "Main St Flip" {
			t.Errorf("section = %q, want Main St Flip", e.ProjectName)
		}
	})

	t.Run("budget", func(t *testing.T) {
		text, err := m.BudgetStatus(ctx, 1)
		if err != nil {
			t.Fatalf("BudgetStatus() error = %v", err)
		}
		status, ok := listing.DecodeBudget(text)
		if !ok {
			t.Fatalf("DecodeBudget() failed on\n%s", text)
		}
		if status.ProjectName != "Main St Flip" || !status.Remaining().Equal(core.MustMoney("8000")) {
			t.Errorf("budget status = %+v", status)
		}
	})
}

func TestMemory_EmptyListings(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.AddProject(core.Project{ID: 7, Name: "Empty Lot", Budget: core.MustMoney("500")})

	text, err := m.ListRooms(ctx, 7)
	if err != nil {
		t.Fatalf("ListRooms() error = %v", err)
	}
	rooms, rep := listing.DecodeRooms(text)
	if len(rooms) != 0 || !rep.Empty() {
		t.Errorf("DecodeRooms() = %+v, report %+v", rooms, rep)
	}

	text, err = m.ListExpenses(ctx, 7)
	if err != nil {
		t.Fatalf("ListExpenses() error = %v", err)
	}
	if _, rep := listing.DecodeExpenses(text); !rep.Empty() {
		t.Errorf("DecodeExpenses() report %+v, want empty", rep)
	}
}

func TestMemory_AddExpense(t *testing.T) {
	ctx := context.Background()
	m := NewDemoMemory()

	args := ExpenseArgs{ProjectID: 1, RoomName: "Bathroom", Category: "material", Cost: core.MustMoney("500")}
	if _, err := m.AddExpense(ctx, args); err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}
	text, _ := m.BudgetStatus(ctx, 1)
	status, _ := listing.DecodeBudget(text)
	if !status.Spent.Equal(core.MustMoney("2500")) {
		t.Errorf("spent = %s, want 2500", status.Spent)
	}

	args.RoomName = "Garage"
	_, err := m.AddExpense(ctx, args)
	if !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("AddExpense(Garage) error = %v, want ErrRoomNotFound", err)
	}
	if err.Error() != "Room 'Garage' not found in project 1" {
		t.Errorf("error text = %q", err.Error())
	}

	args.RoomName = "Kitchen"
	args.Cost = core.Money{}
	if _, err := m.AddExpense(ctx, args); !errors.Is(err, ErrInvalidArgs) {
		t.Errorf("AddExpense(zero cost) error = %v, want ErrInvalidArgs", err)
	}
}

func TestMemory_CreateRoom(t *testing.T) {
	ctx := context.Background()
	m := NewDemoMemory()

	if _, err := m.CreateRoom(ctx, RoomArgs{ProjectID: 1, Name: "Garage", Floor: 1}); err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}
	text, _ := m.ListRooms(ctx, 1)
	rooms, _ := listing.DecodeRooms(text)
	if len(rooms) != 3 || rooms[2].Name != "Garage" || rooms[2].Condition != 3 {
		t.Errorf("rooms after create = %+v", rooms)
	}

	_, err := m.CreateRoom(ctx, RoomArgs{ProjectID: 1, Name: "Garage", Floor: 1})
	var ce *CommandError
	if !errors.As(err, &ce) || ce.ExitCode != 1 {
		t.Errorf("duplicate CreateRoom() error = %v, want a command error", err)
	}

	if _, err := m.CreateRoom(ctx, RoomArgs{ProjectID: 99, Name: "Attic"}); err == nil {
		t.Error("CreateRoom() on unknown project succeeded")
	}
}

func TestMemory_DeleteExpense(t *testing.T) {
	ctx := context.Background()
	m := NewDemoMemory()

	if _, err := m.DeleteExpense(ctx, 1); err != nil {
		t.Fatalf("DeleteExpense() error = %v", err)
	}
	if _, err := m.DeleteExpense(ctx, 1); err == nil || err.Error() != "Expense 1 not found" {
		t.Errorf("second DeleteExpense() error = %v", err)
	}
}

func TestMemory_CallsAndCancellation(t *testing.T) {
	m := NewDemoMemory()
	var seen []string
	m.OnCall = func(_ context.Context, method string, _ int64) {
		seen = append(seen, method)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := m.ListRooms(ctx, 1); err != nil {
		t.Fatalf("ListRooms() error = %v", err)
	}
	cancel()
	if _, err := m.ListExpenses(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("ListExpenses() after cancel error = %v", err)
	}

	if !slices.Equal(seen, []string{"ListRooms", "ListExpenses"}) {
		t.Errorf("OnCall saw %v", seen)
	}
	if !slices.Equal(m.Calls(), []string{"ListRooms"}) {
		t.Errorf("Calls() = %v, want only the answered call", m.Calls())
	}
}
