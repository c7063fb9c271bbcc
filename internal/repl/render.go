package repl

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/nvm/kshell/internal/k8s"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	indexStyle  = lipgloss.NewStyle().Faint(true)
	markerStyle = lipgloss.NewStyle().Bold(true)
)

func (r *Repl) renderList(l k8s.ResourceList) {
	scope := r.session.Namespace()
	if scope == "" || !l.Kind().Namespaced() {
		scope = "all namespaces"
	}
	fmt.Fprintln(r.out, headerStyle.Render(fmt.Sprintf("%ss in %s (%d)", l.Kind(), scope, l.Len())))

	for i, item := range l.Items() {
		fmt.Fprintf(r.out, "%s  %s\n", indexStyle.Render(fmt.Sprintf("%3d", i)), item.Name)
	}
}

func (r *Repl) renderContexts(names []string) {
	active := ""
	if c := r.session.Cluster(); c != nil {
		active = c.Name
	}
	kubeCurrent, _ := r.contexts.CurrentContext()
	for _, name := range names {
		line := "  " + name
		if name == active {
			line = markerStyle.Render("* " + name)
		}
		if kubeCurrent != "" && name == kubeCurrent {
			line += indexStyle.Render("  (kubeconfig current)")
		}
		fmt.Fprintln(r.out, line)
	}
}

func (r *Repl) renderAliases() {
	aliases := r.session.Aliases.List()
	if len(aliases) == 0 {
		fmt.Fprintln(r.out, "No aliases defined")
		return
	}
	for _, a := range aliases {
		fmt.Fprintf(r.out, "%s = %s\n", a.Name, a.Expansion)
	}
}

func (r *Repl) renderForwards() {
	tasks := r.session.Forwards.List()
	if len(tasks) == 0 {
		fmt.Fprintln(r.out, "No active forwards")
		return
	}
	for i, t := range tasks {
		fmt.Fprintf(r.out, "%s  %s\n", indexStyle.Render(fmt.Sprintf("%3d", i)), t)
	}
}
