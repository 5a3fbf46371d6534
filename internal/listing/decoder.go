// Package listing decodes the box-drawn tables printed by the backend CLI
// into typed records.
//
// Decoding is best-effort: the table layout has drifted across backend
// versions, so a row that cannot be decoded is dropped and counted in the
// Report rather than failing the whole listing.
package listing

import (
	"strconv"
	"strings"
	"unicode"

	"fliptrack/internal/core"
)

// SectionSentinel separates the per-project sections of a listing.
const SectionSentinel = "---PROJECT_SEPARATOR---"

// RowShape tags a data row with the layout it was recognised as.
type RowShape int

const (
	Unrecognized RowShape = iota
	ProjectRow
	RoomRow
	ExpenseRowV1 // Date | Room | Category | Cost | Hours [| Notes]
	ExpenseRowV2 // ID | Date | Room | Category | Cost [| Notes]
)

func (s RowShape) String() string {
	switch s {
	case ProjectRow:
		return "project"
	case RoomRow:
		return "room"
	case ExpenseRowV1:
		return "expense_v1"
	case ExpenseRowV2:
		return "expense_v2"
	default:
		return "unrecognized"
	}
}

// Row is one data row of a listing with its trimmed, non-empty cells.
type Row struct {
	Shape   RowShape
	Cells   []string
	Section string // project name from the section header, if any

	raw []string
}

// Report summarises one decode pass.
type Report struct {
	Candidates int // data rows seen
	Decoded    int
	Skipped    int
}

// Corrupt reports whether the listing had data rows but none of them decoded,
// which is distinct from a listing that is simply empty.
func (r Report) Corrupt() bool {
	return r.Candidates > 0 && r.Decoded == 0
}

// Empty reports whether the listing had no data rows at all.
func (r Report) Empty() bool {
	return r.Candidates == 0
}

func (r *Report) record(ok bool) {
	r.Candidates++
	if ok {
		r.Decoded++
	} else {
		r.Skipped++
	}
}

var headerTokens = map[string]struct{}{
	"id": {}, "name": {}, "status": {}, "budget": {}, "type": {}, "created": {},
	"date": {}, "room": {}, "category": {}, "cost": {}, "hours": {}, "notes": {},
	"floor": {}, "size": {}, "condition": {},
}

// Rows splits a listing into sections and returns its data rows in order.
// Header and border lines are skipped; wrapped continuation lines are merged
// into the row they continue.
func Rows(text string) []Row {
	var (
		out     []Row
		section string
		width   int // raw cell count of the last data row, 0 when none
	)
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == SectionSentinel {
			section, width = "", 0
			continue
		}
		raw, ok := splitCells(line)
		if !ok {
			if title, found := sectionTitle(trimmed); found {
				section, width = title, 0
			}
			continue
		}
		if isBorder(trimmed) {
			continue
		}
		cells := compact(raw)
		if len(cells) == 0 || isHeader(cells) {
			continue
		}
		shape := Classify(cells)
		if shape == Unrecognized && width == len(raw) && isContinuation(raw) {
			prev := &out[len(out)-1]
			if prev.Shape != Unrecognized {
				merge(prev, raw)
				continue
			}
		}
		out = append(out, Row{Shape: shape, Cells: cells, Section: section, raw: raw})
		width = len(raw)
	}
	return out
}

// Classify picks the layout of a row from its cell count and content.
func Classify(c []string) RowShape {
	n := len(c)
	switch {
	case n >= 5 && n <= 6 && isDigits(c[0]) && core.HasCurrencySymbol(c[4]) && isCategory(c[3]):
		return ExpenseRowV2
	case n >= 5 && n <= 6 && !isDigits(c[0]) && core.HasCurrencySymbol(c[3]) && isCategory(c[2]):
		return ExpenseRowV1
	case n >= 5 && n <= 6 && isDigits(c[0]) && core.HasCurrencySymbol(c[3]):
		return ProjectRow
	case n >= 2 && n <= 5 && isFloor(c[1]) && !anyCurrency(c):
		return RoomRow
	}
	return Unrecognized
}

func splitCells(line string) ([]string, bool) {
	if !strings.ContainsAny(line, "│┃|") {
		return nil, false
	}
	norm := strings.NewReplacer("│", "|", "┃", "|").Replace(line)
	parts := strings.Split(norm, "|")
	if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
		parts = parts[1:]
	}
	if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, true
}

func compact(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, c := range raw {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

func isBorder(line string) bool {
	if line == "" {
		return false
	}
	dashes := false
	for _, r := range line {
		switch {
		case r == '│' || r == '┃' || r == '|' || r == ' ' || r == ':':
		case r >= 0x2500 && r <= 0x257F, r == '+', r == '-', r == '=':
			dashes = true
		default:
			return false
		}
	}
	return dashes
}

func isHeader(cells []string) bool {
	hits := 0
	for _, c := range cells {
		if _, ok := headerTokens[strings.ToLower(c)]; ok {
			hits++
		}
	}
	return hits >= 2
}

// isContinuation reports whether a raw row looks like the wrapped tail of the
// previous row: mostly empty cells.
func isContinuation(raw []string) bool {
	empty := 0
	for _, c := range raw {
		if c == "" {
			empty++
		}
	}
	return empty > 0 && empty*2 >= len(raw)
}

func merge(prev *Row, raw []string) {
	for i, c := range raw {
		if c == "" {
			continue
		}
		if prev.raw[i] == "" {
			prev.raw[i] = c
		} else {
			prev.raw[i] += " " + c
		}
	}
	prev.Cells = compact(prev.raw)
	prev.Shape = Classify(prev.Cells)
}

func sectionTitle(line string) (string, bool) {
	_, after, found := strings.Cut(line, "Project:")
	if !found {
		return "", false
	}
	title := strings.TrimSpace(after)
	if i := strings.Index(title, " ("); i >= 0 {
		title = strings.TrimSpace(title[:i])
	}
	return title, title != ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isCategory(s string) bool {
	_, err := core.ParseCategory(s)
	return err == nil
}

func isFloor(s string) bool {
	if isUnset(s) {
		return true
	}
	_, err := strconv.Atoi(s)
	return err == nil
}

func isUnset(s string) bool {
	switch strings.ToLower(s) {
	case "-", "none", "not set", "n/a":
		return true
	}
	return false
}

func anyCurrency(cells []string) bool {
	for _, c := range cells {
		if core.HasCurrencySymbol(c) {
			return true
		}
	}
	return false
}

func cell(c []string, i int) string {
	if i >= 0 && i < len(c) {
		return c[i]
	}
	return ""
}
