package session

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	noneStyle      = lipgloss.NewStyle().Faint(true)
	clusterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	namespaceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	objectStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
)

// buildPrompt projects the (cluster, namespace, selection) triple into the
// prompt string. It is pure: same inputs, same prompt.
func buildPrompt(clusterName, namespace string, sel Selection) string {
	return fmt.Sprintf("[%s] [%s] [%s] > ",
		segment(clusterName, clusterStyle),
		segment(namespace, namespaceStyle),
		segment(sel.Name, objectStyle),
	)
}

func segment(value string, style lipgloss.Style) string {
	if value == "" {
		return noneStyle.Render("none")
	}
	return style.Render(value)
}
