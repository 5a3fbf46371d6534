package backend

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"fliptrack/internal/budget"
	"fliptrack/internal/core"
)

// Memory is an in-process Gateway holding its data in maps. It prints the
// same tables and error lines as the real backend, so everything above the
// boundary behaves identically against it.
type Memory struct {
	mu       sync.Mutex
	projects []core.Project
	rooms    map[int64][]core.Room
	expenses []core.Expense
	nextID   int64
	calls    []string
	today    func() core.Date

	// OnCall, when set, runs before each call is answered and outside the
	// store lock. Tests use it to hold a call in flight.
	OnCall func(ctx context.Context, method string, projectID int64)
}

func NewMemory() *Memory {
	return &Memory{
		rooms:  make(map[int64][]core.Room),
		nextID: 1,
		today:  core.Today,
	}
}

// NewDemoMemory returns a store seeded with one project, for trying the
// CLI without a backend install.
func NewDemoMemory() *Memory {
	m := NewMemory()
	m.AddProject(core.Project{
		ID: 1, Name: "Main St Flip", Budget: core.MustMoney("10000"),
		Status: "In Progress", Type: "Single Family", Created: core.NewDate(2025, 1, 4),
	})
	floor := 1
	m.AddRoom(1, core.Room{Name: "Kitchen", Floor: &floor, Condition: 2})
	m.AddRoom(1, core.Room{Name: "Bathroom", Floor: &floor, Condition: 3})
	m.SeedExpense(core.Expense{
		ProjectID: 1, RoomName: "Kitchen", Category: core.Labor,
		Cost: core.MustMoney("2000"), Hours: core.MustMoney("16"), Condition: 3,
		Notes: "Demolition", Date: core.NewDate(2025, 1, 10),
	})
	return m
}

// AddProject seeds a project.
func (m *Memory) AddProject(p core.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects = append(m.projects, p)
}

// AddRoom seeds a room without going through CreateRoom.
func (m *Memory) AddRoom(projectID int64, r core.Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.Condition != 0 && r.Label == "" {
		r.Label = fmt.Sprintf("%d/5", r.Condition)
	}
	m.rooms[projectID] = append(m.rooms[projectID], r)
}

// SeedExpense seeds an expense and returns its id.
func (m *Memory) SeedExpense(e core.Expense) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendExpense(e)
}

func (m *Memory) appendExpense(e core.Expense) int64 {
	e.ID = m.nextID
	m.nextID++
	if e.Date.IsZero() {
		e.Date = m.today()
	}
	m.expenses = append(m.expenses, e)
	return e.ID
}

// Calls returns the methods invoked so far, in order.
func (m *Memory) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

func (m *Memory) enter(ctx context.Context, method string, projectID int64) error {
	if m.OnCall != nil {
		m.OnCall(ctx, method, projectID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.calls = append(m.calls, method)
	m.mu.Unlock()
	return nil
}

func (m *Memory) ListProjects(ctx context.Context) (string, error) {
	if err := m.enter(ctx, "ListProjects", 0); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.projects) == 0 {
		return "No projects found. Create your first project:\n", nil
	}
	rows := make([][]string, 0, len(m.projects))
	for _, p := range m.projects {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10), p.Name, p.Status, p.Budget.Format(), p.Type, p.Created.String(),
		})
	}
	return renderTable("Your Real Estate Projects",
		[]string{"ID", "Name", "Status", "Budget", "Type", "Created"}, rows), nil
}

func (m *Memory) ListRooms(ctx context.Context, projectID int64) (string, error) {
	if err := m.enter(ctx, "ListRooms", projectID); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.project(projectID)
	if !ok {
		return "", m.fail("room list", "Project %d not found", projectID)
	}
	rooms := m.rooms[projectID]
	if len(rooms) == 0 {
		return fmt.Sprintf("No rooms found for project: %s\nAdd your first room:\n", p.Name), nil
	}
	rows := make([][]string, 0, len(rooms))
	for _, r := range rooms {
		floor := "None"
		if r.Floor != nil {
			floor = strconv.Itoa(*r.Floor)
		}
		size := r.Size
		if size == "" {
			size = "Not set"
		}
		rows = append(rows, []string{r.Name, floor, size, r.Label, r.Notes})
	}
	return fmt.Sprintf("Rooms in Project: %s\n\n", p.Name) + renderTable("Room Details",
		[]string{"Name", "Floor", "Size", "Condition", "Notes"}, rows), nil
}

func (m *Memory) ListExpenses(ctx context.Context, projectID int64) (string, error) {
	if err := m.enter(ctx, "ListExpenses", projectID); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.project(projectID)
	if !ok {
		return "", m.fail("expense list", "Project %d not found", projectID)
	}
	var rows [][]string
	total := core.Money{}
	for _, e := range m.expenses {
		if e.ProjectID != projectID {
			continue
		}
		total = total.Add(e.Cost)
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10), e.Date.String(), e.RoomName,
			titleCase(e.Category.String()), e.Cost.Format(), e.Notes,
		})
	}
	if len(rows) == 0 {
		return fmt.Sprintf("No expenses found for project: %s\n", p.Name), nil
	}
	return fmt.Sprintf("Expenses for Project: %s\n\n", p.Name) +
		renderTable("Expense Details", []string{"ID", "Date", "Room", "Category", "Cost", "Notes"}, rows) +
		fmt.Sprintf("\nTotal Cost: %s\n", total.Format()), nil
}

func (m *Memory) BudgetStatus(ctx context.Context, projectID int64) (string, error) {
	if err := m.enter(ctx, "BudgetStatus", projectID); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.project(projectID)
	if !ok {
		return "", m.fail("budget status", "Project %d not found", projectID)
	}
	spent := core.Money{}
	for _, e := range m.expenses {
		if e.ProjectID == projectID {
			spent = spent.Add(e.Cost)
		}
	}
	_, pct := budget.Usage(p.Budget, spent)
	return renderPanel("Budget Status", []string{
		p.Name + " - Budget Analysis",
		"Total Budget: " + p.Budget.Format(),
		"Total Spent: " + spent.Format(),
		"Remaining: " + p.Budget.Sub(spent).Format(),
		"Budget Used: " + pct.StringFixed(1) + "%",
	}), nil
}

func (m *Memory) CreateRoom(ctx context.Context, args RoomArgs) (string, error) {
	if err := args.Validate(); err != nil {
		return "", err
	}
	if err := m.enter(ctx, "CreateRoom", args.ProjectID); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.project(args.ProjectID); !ok {
		return "", m.fail("room add", "Project %d not found", args.ProjectID)
	}
	if m.hasRoom(args.ProjectID, args.Name) {
		return "", m.fail("room add", "Error adding room: Room '%s' already exists in project %d", args.Name, args.ProjectID)
	}
	floor := args.Floor
	condition := args.Condition
	if condition == 0 {
		condition = 3
	}
	m.rooms[args.ProjectID] = append(m.rooms[args.ProjectID], core.Room{
		Name: args.Name, Floor: &floor, Condition: condition,
		Label: fmt.Sprintf("%d/5", condition), Notes: args.Notes,
	})
	return fmt.Sprintf("Added room: %s to project %d\nFloor %d, Condition: %d/5\n",
		args.Name, args.ProjectID, floor, condition), nil
}

func (m *Memory) AddExpense(ctx context.Context, args ExpenseArgs) (string, error) {
	if err := args.Validate(); err != nil {
		return "", err
	}
	if err := m.enter(ctx, "AddExpense", args.ProjectID); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.project(args.ProjectID); !ok {
		return "", m.fail("expense add", "Project %d not found", args.ProjectID)
	}
	if !m.hasRoom(args.ProjectID, args.RoomName) {
		return "", m.fail("expense add", "Room '%s' not found in project %d", args.RoomName, args.ProjectID)
	}
	cat, _ := core.ParseCategory(args.Category)
	id := m.appendExpense(core.Expense{
		ProjectID: args.ProjectID, RoomName: args.RoomName, Category: cat,
		Cost: args.Cost, Hours: args.Hours, Condition: args.Condition, Notes: args.Notes,
	})
	out := fmt.Sprintf("Added expense: %s for %s in %s\n", args.Cost.Format(), args.Category, args.RoomName)
	if rate, ok := (core.Expense{Cost: args.Cost, Hours: args.Hours}).HourlyRate(); ok && cat == core.Labor {
		out += fmt.Sprintf("Time: %s hours (%s/hr)\n", args.Hours.String(), rate.Format())
	}
	return out + fmt.Sprintf("Expense ID: %d\n", id), nil
}

func (m *Memory) DeleteExpense(ctx context.Context, expenseID int64) (string, error) {
	if err := m.enter(ctx, "DeleteExpense", 0); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.expenses, func(e core.Expense) bool { return e.ID == expenseID })
	if i < 0 {
		return "", m.fail("expense delete", "Expense %d not found", expenseID)
	}
	m.expenses = slices.Delete(m.expenses, i, i+1)
	return fmt.Sprintf("Deleted expense %d\n", expenseID), nil
}

func (m *Memory) project(id int64) (core.Project, bool) {
	for _, p := range m.projects {
		if p.ID == id {
			return p, true
		}
	}
	return core.Project{}, false
}

func (m *Memory) hasRoom(projectID int64, name string) bool {
	return slices.ContainsFunc(m.rooms[projectID], func(r core.Room) bool { return r.Name == name })
}

func (m *Memory) fail(command, format string, args ...any) error {
	return &CommandError{
		Args:     strings.Fields(command),
		ExitCode: 1,
		Output:   "ERROR: " + fmt.Sprintf(format, args...) + "\n",
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
