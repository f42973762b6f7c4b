package diagnostics

import "strings"

const (
	// NoTestSummary is returned when no diagnostic items were supplied.
	NoTestSummary = "Nessun test diagnostico effettuato"

	workingHeading = "Componenti funzionanti: "
	issuesHeading  = "Problemi rilevati: "
)

// Summarize renders active items as working and inactive items as issues.
// A group with no items is omitted.
func Summarize(items []Item) string {
	if len(items) == 0 {
		return NoTestSummary
	}

	var working, issues []string
	for _, item := range items {
		label := strings.TrimSpace(item.Label)
		if label == "" {
			label = item.ID
		}
		if item.Active {
			working = append(working, label)
		} else {
			issues = append(issues, label)
		}
	}

	lines := make([]string, 0, 2)
	if len(working) > 0 {
		lines = append(lines, workingHeading+strings.Join(working, ", "))
	}
	if len(issues) > 0 {
		lines = append(lines, issuesHeading+strings.Join(issues, ", "))
	}
	return strings.Join(lines, "\n")
}
