package ui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	PromptStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	HintStyle    = mutedStyle
	ErrorStyle   = failStyle
	SuccessStyle = okStyle
)

// Changed labels a persisted project.
func Changed(changed bool) string {
	if changed {
		return warnStyle.Render("updated")
	}
	return mutedStyle.Render("unchanged")
}

// Check labels a doctor check result.
func Check(ok bool) string {
	if ok {
		return okStyle.Render("ok")
	}
	return failStyle.Render("missing")
}
