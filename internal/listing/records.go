package listing

import (
	"strconv"
	"strings"

	"fliptrack/internal/core"
)

// DecodeProjects decodes a `project list` listing.
func DecodeProjects(text string) ([]core.Project, Report) {
	var (
		out []core.Project
		rep Report
	)
	for _, row := range Rows(text) {
		p, ok := decodeProject(row)
		rep.record(ok)
		if ok {
			out = append(out, p)
		}
	}
	return out, rep
}

// DecodeRooms decodes a `room list` listing.
func DecodeRooms(text string) ([]core.Room, Report) {
	var (
		out []core.Room
		rep Report
	)
	for _, row := range Rows(text) {
		r, ok := decodeRoom(row)
		rep.record(ok)
		if ok {
			out = append(out, r)
		}
	}
	return out, rep
}

// DecodeExpenses decodes an `expense list` listing in either known layout.
// Rows of both layouts may appear in the same listing.
func DecodeExpenses(text string) ([]core.Expense, Report) {
	var (
		out []core.Expense
		rep Report
	)
	for _, row := range Rows(text) {
		var (
			e  core.Expense
			ok bool
		)
		switch row.Shape {
		case ExpenseRowV1:
			e, ok = decodeExpenseV1(row.Cells)
		case ExpenseRowV2:
			e, ok = decodeExpenseV2(row.Cells)
		}
		rep.record(ok)
		if ok {
			e.ProjectName = row.Section
			out = append(out, e)
		}
	}
	return out, rep
}

func decodeProject(row Row) (core.Project, bool) {
	if row.Shape != ProjectRow {
		return core.Project{}, false
	}
	c := row.Cells
	id, err := strconv.ParseInt(c[0], 10, 64)
	if err != nil || id <= 0 {
		return core.Project{}, false
	}
	budget, err := core.ParseMoney(c[3])
	if err != nil || budget.IsNegative() {
		return core.Project{}, false
	}
	p := core.Project{
		ID:     id,
		Name:   c[1],
		Status: c[2],
		Budget: budget,
		Type:   cell(c, 4),
	}
	if d, err := core.ParseDate(cell(c, 5)); err == nil {
		p.Created = d
	}
	return p, p.Validate() == nil
}

func decodeRoom(row Row) (core.Room, bool) {
	if row.Shape != RoomRow {
		return core.Room{}, false
	}
	c := row.Cells
	r := core.Room{Name: c[0]}
	if !isUnset(c[1]) {
		floor, err := strconv.Atoi(c[1])
		if err != nil {
			return core.Room{}, false
		}
		r.Floor = &floor
	}
	r.Size = cell(c, 2)
	r.Label = cell(c, 3)
	r.Condition = parseCondition(r.Label)
	r.Notes = cell(c, 4)
	return r, true
}

func decodeExpenseV1(c []string) (core.Expense, bool) {
	date, err := core.ParseDate(c[0])
	if err != nil {
		return core.Expense{}, false
	}
	cat, err := core.ParseCategory(c[2])
	if err != nil {
		return core.Expense{}, false
	}
	cost, err := core.ParseMoney(c[3])
	if err != nil {
		return core.Expense{}, false
	}
	e := core.Expense{Date: date, RoomName: c[1], Category: cat, Cost: cost, Notes: cell(c, 5)}
	if h := c[4]; !isUnset(h) {
		hours, err := core.ParseMoney(h)
		if err != nil {
			return core.Expense{}, false
		}
		e.Hours = hours
	}
	return e, true
}

func decodeExpenseV2(c []string) (core.Expense, bool) {
	id, err := strconv.ParseInt(c[0], 10, 64)
	if err != nil {
		return core.Expense{}, false
	}
	date, err := core.ParseDate(c[1])
	if err != nil {
		return core.Expense{}, false
	}
	cat, err := core.ParseCategory(c[3])
	if err != nil {
		return core.Expense{}, false
	}
	cost, err := core.ParseMoney(c[4])
	if err != nil {
		return core.Expense{}, false
	}
	return core.Expense{
		ID:       id,
		Date:     date,
		RoomName: c[2],
		Category: cat,
		Cost:     cost,
		Notes:    cell(c, 5),
	}, true
}

// parseCondition reads "3/5" or "3"; descriptive labels yield 0.
func parseCondition(s string) int {
	head, _, _ := strings.Cut(s, "/")
	n, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil || n < 1 || n > 5 {
		return 0
	}
	return n
}
