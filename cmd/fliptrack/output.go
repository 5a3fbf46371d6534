package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"

	"fliptrack/internal/budget"
	"fliptrack/internal/core"
	"fliptrack/internal/storage"
	"fliptrack/internal/validation"
	"fliptrack/internal/workflow"
)

type printer struct {
	w    io.Writer
	json bool
}

func newPrinter(w io.Writer, asJSON bool) *printer {
	return &printer{w: w, json: asJSON}
}

func (p *printer) encode(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) table(headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func amount(m core.Money) string {
	return m.StringFixed(2)
}

type projectJSON struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Budget  string `json:"budget"`
	Type    string `json:"type"`
	Created string `json:"created,omitempty"`
}

func (p *printer) projects(projects []core.Project) error {
	if p.json {
		out := make([]projectJSON, 0, len(projects))
		for _, pr := range projects {
			out = append(out, projectJSON{
				ID: pr.ID, Name: pr.Name, Status: pr.Status,
				Budget: amount(pr.Budget), Type: pr.Type, Created: dateString(pr.Created),
			})
		}
		return p.encode(out)
	}
	if len(projects) == 0 {
		p.line("No projects found.")
		return nil
	}
	rows := make([][]string, 0, len(projects))
	for _, pr := range projects {
		rows = append(rows, []string{
			strconv.FormatInt(pr.ID, 10), pr.Name, pr.Status, pr.Budget.Format(), pr.Type, dateString(pr.Created),
		})
	}
	return p.table([]string{"ID", "NAME", "STATUS", "BUDGET", "TYPE", "CREATED"}, rows)
}

type roomJSON struct {
	Name      string `json:"name"`
	Floor     *int   `json:"floor,omitempty"`
	Size      string `json:"size,omitempty"`
	Condition int    `json:"condition,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

func (p *printer) rooms(rooms []core.Room) error {
	if p.json {
		out := make([]roomJSON, 0, len(rooms))
		for _, r := range rooms {
			out = append(out, roomJSON{Name: r.Name, Floor: r.Floor, Size: r.Size, Condition: r.Condition, Notes: r.Notes})
		}
		return p.encode(out)
	}
	if len(rooms) == 0 {
		p.line(workflow.EmptyRoomsInfo)
		return nil
	}
	rows := make([][]string, 0, len(rooms))
	for _, r := range rooms {
		floor := "-"
		if r.Floor != nil {
			floor = strconv.Itoa(*r.Floor)
		}
		condition := "-"
		if r.Condition > 0 {
			condition = fmt.Sprintf("%d/5", r.Condition)
		}
		rows = append(rows, []string{r.Name, floor, r.Size, condition, r.Notes})
	}
	return p.table([]string{"NAME", "FLOOR", "SIZE", "CONDITION", "NOTES"}, rows)
}

type expenseJSON struct {
	ID       int64  `json:"id"`
	Date     string `json:"date,omitempty"`
	Room     string `json:"room"`
	Category string `json:"category"`
	Cost     string `json:"cost"`
	Hours    string `json:"hours,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

func newExpenseJSON(e core.Expense) expenseJSON {
	out := expenseJSON{
		ID: e.ID, Date: dateString(e.Date), Room: e.RoomName,
		Category: e.Category.String(), Cost: amount(e.Cost), Notes: e.Notes,
	}
	if e.Hours.IsPositive() {
		out.Hours = e.Hours.String()
	}
	return out
}

func (p *printer) expenses(expenses []core.Expense) error {
	if p.json {
		out := make([]expenseJSON, 0, len(expenses))
		for _, e := range expenses {
			out = append(out, newExpenseJSON(e))
		}
		return p.encode(out)
	}
	if len(expenses) == 0 {
		p.line("No expenses recorded.")
		return nil
	}
	rows := make([][]string, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10), dateString(e.Date), e.RoomName, e.Category.String(), e.Cost.Format(), e.Notes,
		})
	}
	if err := p.table([]string{"ID", "DATE", "ROOM", "CATEGORY", "COST", "NOTES"}, rows); err != nil {
		return err
	}
	p.line("\nTotal: %s", core.SumCosts(expenses).Format())
	return nil
}

type budgetJSON struct {
	ProjectID   int64  `json:"projectId"`
	Project     string `json:"project,omitempty"`
	Known       bool   `json:"known"`
	Budget      string `json:"budget,omitempty"`
	Spent       string `json:"spent,omitempty"`
	Remaining   string `json:"remaining,omitempty"`
	UsedPercent string `json:"usedPercent,omitempty"`
	Level       string `json:"level,omitempty"`
}

func (p *printer) budget(ref workflow.ReferenceData) error {
	level, pct := budget.Usage(ref.Budget, ref.Spent)
	remaining := ref.Budget.Sub(ref.Spent)
	if p.json {
		out := budgetJSON{ProjectID: ref.ProjectID, Project: ref.ProjectName, Known: ref.BudgetKnown}
		if ref.BudgetKnown {
			out.Budget = amount(ref.Budget)
			out.Spent = amount(ref.Spent)
			out.Remaining = amount(remaining)
			out.UsedPercent = pct.StringFixed(1)
			out.Level = level.String()
		}
		return p.encode(out)
	}
	name := ref.ProjectName
	if name == "" {
		name = fmt.Sprintf("Project %d", ref.ProjectID)
	}
	if !ref.BudgetKnown {
		p.line("%s: budget unavailable", name)
		return nil
	}
	p.line("%s", name)
	p.line("  Budget:    %s", ref.Budget.Format())
	p.line("  Spent:     %s", ref.Spent.Format())
	p.line("  Remaining: %s", remaining.Format())
	p.line("  Used:      %s%% (%s)", pct.StringFixed(1), level)
	return nil
}

type verdictJSON struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

type submitJSON struct {
	Outcome     string                 `json:"outcome"`
	Expense     *expenseJSON           `json:"expense,omitempty"`
	RoomCreated bool                   `json:"roomCreated,omitempty"`
	Warning     string                 `json:"warning,omitempty"`
	Message     string                 `json:"message,omitempty"`
	Verdicts    map[string]verdictJSON `json:"verdicts,omitempty"`
}

var formFields = []string{
	validation.FieldRoom, validation.FieldCategory, validation.FieldCost, validation.FieldHours,
	validation.FieldCondition, validation.FieldNotes, validation.FieldDate,
}

// submission prints the end of an add-expense run. notes holds the
// non-blocking verdicts collected while the form was filled in.
func (p *printer) submission(res workflow.Result, notes validation.Verdicts) error {
	verdicts := res.Verdicts
	if res.Outcome == workflow.Submitted {
		verdicts = notes
	}
	if p.json {
		out := submitJSON{Outcome: res.Outcome.String(), RoomCreated: res.RoomCreated, Message: res.Message}
		if res.Outcome == workflow.Submitted || res.Outcome == workflow.Failed {
			e := newExpenseJSON(res.Expense)
			out.Expense = &e
		}
		if res.Warning != nil {
			out.Warning = res.Warning.String()
		}
		if len(verdicts) > 0 {
			out.Verdicts = make(map[string]verdictJSON, len(verdicts))
			for name, v := range verdicts {
				out.Verdicts[name] = verdictJSON{Severity: v.Severity.String(), Message: v.Message}
			}
		}
		return p.encode(out)
	}

	switch res.Outcome {
	case workflow.Submitted:
		if res.RoomCreated {
			p.line("Created room: %s", res.Expense.RoomName)
		}
		if res.Output != "" {
			fmt.Fprint(p.w, res.Output)
		} else {
			p.line("Added expense: %s for %s in %s", res.Expense.Cost.Format(), res.Expense.Category, res.Expense.RoomName)
		}
		if res.Warning != nil {
			p.line("Warning: %s", res.Warning)
		}
	case workflow.Cancelled:
		p.line("Room '%s' was not created; nothing was sent.", res.Expense.RoomName)
	case workflow.Failed:
		p.line("Failed: %s", res.Message)
	}
	for _, name := range formFields {
		if v, ok := verdicts[name]; ok && !v.IsValid() {
			p.line("  %s: %s (%s)", name, v.Message, v.Severity)
		}
	}
	return nil
}

type historyJSON struct {
	ID          int64       `json:"id"`
	Session     string      `json:"session"`
	Status      string      `json:"status"`
	Expense     expenseJSON `json:"expense"`
	Message     string      `json:"message,omitempty"`
	RoomCreated bool        `json:"roomCreated,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

func (p *printer) history(subs []storage.Submission) error {
	if p.json {
		out := make([]historyJSON, 0, len(subs))
		for _, s := range subs {
			out = append(out, historyJSON{
				ID: s.ID, Session: s.SessionID, Status: string(s.Status), Expense: newExpenseJSON(s.Expense),
				Message: s.Message, RoomCreated: s.RoomCreated, CreatedAt: s.CreatedAt,
			})
		}
		return p.encode(out)
	}
	if len(subs) == 0 {
		p.line("No submissions journaled.")
		return nil
	}
	rows := make([][]string, 0, len(subs))
	for _, s := range subs {
		rows = append(rows, []string{
			s.CreatedAt.Local().Format("2006-01-02 15:04"), string(s.Status), s.Expense.RoomName,
			s.Expense.Category.String(), s.Expense.Cost.Format(), s.Message,
		})
	}
	return p.table([]string{"WHEN", "STATUS", "ROOM", "CATEGORY", "COST", "MESSAGE"}, rows)
}

func dateString(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}
