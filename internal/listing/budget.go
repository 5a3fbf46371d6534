package listing

import (
	"strings"

	"fliptrack/internal/core"
)

// DecodeBudget reads the `budget status` panel. ok is false unless both the
// total budget and the total spent lines were found and parsed.
func DecodeBudget(text string) (status core.BudgetStatus, ok bool) {
	var haveBudget, haveSpent bool
	for _, line := range strings.Split(text, "\n") {
		line = strings.Trim(strings.TrimSpace(line), "│┃|")
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Total Budget:"):
			m, err := core.ParseMoney(strings.TrimPrefix(line, "Total Budget:"))
			if err == nil {
				status.Budget, haveBudget = m, true
			}
		case strings.HasPrefix(line, "Total Spent:"):
			m, err := core.ParseMoney(strings.TrimPrefix(line, "Total Spent:"))
			if err == nil {
				status.Spent, haveSpent = m, true
			}
		case status.ProjectName == "" && strings.HasSuffix(line, "- Budget Analysis"):
			status.ProjectName = strings.TrimSpace(strings.TrimSuffix(line, "- Budget Analysis"))
		}
	}
	return status, haveBudget && haveSpent
}
