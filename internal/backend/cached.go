package backend

import (
	"context"
	"fmt"

	"fliptrack/internal/cache"
)

const projectsKey = "projects"

// Cached serves listing reads from a cache and drops a project's entries
// whenever a mutation touches that project.
type Cached struct {
	next  Gateway
	cache cache.Cache[string]
}

func NewCached(next Gateway, c cache.Cache[string]) *Cached {
	return &Cached{next: next, cache: c}
}

func projectPrefix(projectID int64) string {
	return fmt.Sprintf("project:%d:", projectID)
}

func (c *Cached) read(key string, fetch func() (string, error)) (string, error) {
	if text, ok := c.cache.Get(key); ok {
		return text, nil
	}
	text, err := fetch()
	if err != nil {
		return "", err
	}
	c.cache.Set(key, text)
	return text, nil
}

func (c *Cached) ListProjects(ctx context.Context) (string, error) {
	return c.read(projectsKey, func() (string, error) { return c.next.ListProjects(ctx) })
}

func (c *Cached) ListRooms(ctx context.Context, projectID int64) (string, error) {
	return c.read(projectPrefix(projectID)+"rooms", func() (string, error) {
		return c.next.ListRooms(ctx, projectID)
	})
}

func (c *Cached) ListExpenses(ctx context.Context, projectID int64) (string, error) {
	return c.read(projectPrefix(projectID)+"expenses", func() (string, error) {
		return c.next.ListExpenses(ctx, projectID)
	})
}

func (c *Cached) BudgetStatus(ctx context.Context, projectID int64) (string, error) {
	return c.read(projectPrefix(projectID)+"budget", func() (string, error) {
		return c.next.BudgetStatus(ctx, projectID)
	})
}

func (c *Cached) CreateRoom(ctx context.Context, args RoomArgs) (string, error) {
	defer c.Invalidate(args.ProjectID)
	return c.next.CreateRoom(ctx, args)
}

func (c *Cached) AddExpense(ctx context.Context, args ExpenseArgs) (string, error) {
	defer c.Invalidate(args.ProjectID)
	return c.next.AddExpense(ctx, args)
}

// DeleteExpense does not know the expense's project, so it drops every
// project's listings.
func (c *Cached) DeleteExpense(ctx context.Context, expenseID int64) (string, error) {
	defer c.cache.DeletePrefix("project")
	return c.next.DeleteExpense(ctx, expenseID)
}

// Invalidate drops everything cached for a project, including the project
// list whose budget column may have changed.
func (c *Cached) Invalidate(projectID int64) {
	c.cache.DeletePrefix(projectPrefix(projectID))
	c.cache.Delete(projectsKey)
}
