package backend

import (
	"context"
	"testing"
	"time"

	"fliptrack/internal/cache"
	"fliptrack/internal/core"
)

func count(calls []string, method string) int {
	n := 0
	for _, c := range calls {
		if c == method {
			n++
		}
	}
	return n
}

func TestCached_ServesRepeatReads(t *testing.T) {
	ctx := context.Background()
	mem := NewDemoMemory()
	c := NewCached(mem, cache.NewLRUCache[string](16, time.Minute))

	first, err := c.ListRooms(ctx, 1)
	if err != nil {
		t.Fatalf("ListRooms() error = %v", err)
	}
	second, err := c.ListRooms(ctx, 1)
	if err != nil {
		t.Fatalf("ListRooms() error = %v", err)
	}
	if first != second {
		t.Error("cached listing differs from the original")
	}
	if n := count(mem.Calls(), "ListRooms"); n != 1 {
		t.Errorf("backend ListRooms calls = %d, want 1", n)
	}
}

func TestCached_MutationsInvalidate(t *testing.T) {
	ctx := context.Background()
	mem := NewDemoMemory()
	c := NewCached(mem, cache.NewLRUCache[string](16, time.Minute))

	_, _ = c.BudgetStatus(ctx, 1)
	_, _ = c.ListProjects(ctx)

	args := ExpenseArgs{ProjectID: 1, RoomName: "Kitchen", Category: "material", Cost: core.MustMoney("10")}
	if _, err := c.AddExpense(ctx, args); err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}
	_, _ = c.BudgetStatus(ctx, 1)
	_, _ = c.ListProjects(ctx)

	calls := mem.Calls()
	if n := count(calls, "BudgetStatus"); n != 2 {
		t.Errorf("BudgetStatus calls = %d, want 2 after invalidation", n)
	}
	if n := count(calls, "ListProjects"); n != 2 {
		t.Errorf("ListProjects calls = %d, want 2 after invalidation", n)
	}
}

func TestCached_FailedMutationStillInvalidates(t *testing.T) {
	ctx := context.Background()
	mem := NewDemoMemory()
	c := NewCached(mem, cache.NewLRUCache[string](16, time.Minute))

	_, _ = c.ListRooms(ctx, 1)
	args := ExpenseArgs{ProjectID: 1, RoomName: "Garage", Category: "material", Cost: core.MustMoney("10")}
	if _, err := c.AddExpense(ctx, args); err == nil {
		t.Fatal("AddExpense(Garage) succeeded")
	}
	_, _ = c.ListRooms(ctx, 1)

	if n := count(mem.Calls(), "ListRooms"); n != 2 {
		t.Errorf("ListRooms calls = %d, want 2", n)
	}
}

func TestCached_DeleteDropsEveryProject(t *testing.T) {
	ctx := context.Background()
	mem := NewDemoMemory()
	mem.AddProject(core.Project{ID: 2, Name: "Oak Ave", Budget: core.MustMoney("5000")})
	lru := cache.NewLRUCache[string](16, time.Minute)
	c := NewCached(mem, lru)

	_, _ = c.ListExpenses(ctx, 1)
	_, _ = c.ListExpenses(ctx, 2)
	_, _ = c.ListProjects(ctx)
	if lru.Size() != 3 {
		t.Fatalf("cache size = %d, want 3", lru.Size())
	}

	if _, err := c.DeleteExpense(ctx, 1); err != nil {
		t.Fatalf("DeleteExpense() error = %v", err)
	}
	if lru.Size() != 0 {
		t.Errorf("cache size after delete = %d, want 0", lru.Size())
	}
}

func TestCached_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	c := NewCached(mem, cache.NewLRUCache[string](16, time.Minute))

	for range 2 {
		if _, err := c.ListRooms(ctx, 42); err == nil {
			t.Fatal("ListRooms() on unknown project succeeded")
		}
	}
	if n := count(mem.Calls(), "ListRooms"); n != 2 {
		t.Errorf("ListRooms calls = %d, want 2", n)
	}
}
