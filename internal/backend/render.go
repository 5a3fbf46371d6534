package backend

import (
	"strings"
	"unicode/utf8"
)

// renderTable draws rows in the heavy-header box style the backend uses.
func renderTable(title string, headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, c := range row {
			if n := utf8.RuneCountInString(c); i < len(widths) && n > widths[i] {
				widths[i] = n
			}
		}
	}

	var b strings.Builder
	if title != "" {
		total := 1
		for _, w := range widths {
			total += w + 3
		}
		pad := max(0, (total-utf8.RuneCountInString(title))/2)
		b.WriteString(strings.Repeat(" ", pad) + title + "\n")
	}
	border(&b, widths, "┏", "━", "┳", "┓")
	line(&b, widths, headers, "┃")
	border(&b, widths, "┡", "━", "╇", "┩")
	for _, row := range rows {
		line(&b, widths, row, "│")
	}
	border(&b, widths, "└", "─", "┴", "┘")
	return b.String()
}

func border(b *strings.Builder, widths []int, left, fill, mid, right string) {
	b.WriteString(left)
	for i, w := range widths {
		if i > 0 {
			b.WriteString(mid)
		}
		b.WriteString(strings.Repeat(fill, w+2))
	}
	b.WriteString(right + "\n")
}

func line(b *strings.Builder, widths []int, cells []string, glyph string) {
	b.WriteString(glyph)
	for i, w := range widths {
		c := ""
		if i < len(cells) {
			c = cells[i]
		}
		b.WriteString(" " + c + strings.Repeat(" ", w-utf8.RuneCountInString(c)) + " " + glyph)
	}
	b.WriteString("\n")
}

// renderPanel draws lines inside a rounded, titled box.
func renderPanel(title string, lines []string) string {
	width := utf8.RuneCountInString(title) + 4
	for _, l := range lines {
		width = max(width, utf8.RuneCountInString(l))
	}
	head := " " + title + " "
	left := (width + 2 - utf8.RuneCountInString(head)) / 2
	right := width + 2 - utf8.RuneCountInString(head) - left

	var b strings.Builder
	b.WriteString("╭" + strings.Repeat("─", left) + head + strings.Repeat("─", right) + "╮\n")
	for _, l := range lines {
		b.WriteString("│ " + l + strings.Repeat(" ", width-utf8.RuneCountInString(l)) + " │\n")
	}
	b.WriteString("╰" + strings.Repeat("─", width+2) + "╯\n")
	return b.String()
}
