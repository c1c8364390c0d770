package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pranlawate/semacro/internal/macro/domain"
)

var (
	internalStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	leafStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	sentinelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// Tree renders root in the box-drawing shape described in spec.md §6:
// "├── " and "└── " branch markers, "│   " / "    " continuation prefixes,
// and an unindented root line. Colour is applied per ctx.Color.
func Tree(root *domain.ExpansionNode, ctx Context) string {
	var b strings.Builder
	b.WriteString(label(root, ctx))
	b.WriteString("\n")
	renderChildren(&b, root.Children, "", ctx)
	return strings.TrimSuffix(b.String(), "\n")
}

func renderChildren(b *strings.Builder, children []*domain.ExpansionNode, prefix string, ctx Context) {
	for i, child := range children {
		last := i == len(children)-1

		branch := "├── "
		cont := "│   "
		if last {
			branch = "└── "
			cont = "    "
		}

		b.WriteString(prefix)
		b.WriteString(branch)
		b.WriteString(label(child, ctx))
		b.WriteString("\n")

		renderChildren(b, child.Children, prefix+cont, ctx)
	}
}

// label renders a single node's own text, styled by kind when colour is
// enabled.
func label(n *domain.ExpansionNode, ctx Context) string {
	if n.IsLeaf() {
		text := n.Text
		if !ctx.Color {
			return text
		}
		if strings.HasPrefix(text, "... (") {
			return sentinelStyle.Render(text)
		}
		return leafStyle.Render(text)
	}
	if !ctx.Color {
		return n.Label
	}
	return internalStyle.Render(n.Label)
}
