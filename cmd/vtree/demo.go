package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vtree/internal/demo"
	"github.com/vango-dev/vtree/pkg/runtime"
	"github.com/vango-dev/vtree/pkg/vdom"
)

func demoCmd() *cobra.Command {
	var showHTML bool

	cmd := &cobra.Command{
		Use:       "demo [name]",
		Short:     "Play a scripted session and print every batch",
		Long:      "Play a scripted session against an in-memory backend and print the\nmutation batch each step produced. Available demos: " + strings.Join(demo.Names(), ", ") + ".",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: demo.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "todo"
			if len(args) == 1 {
				name = args[0]
			}
			out := cmd.OutOrStdout()
			quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
			return demo.Run(cmd.Context(), name, func(r demo.Result) {
				fmt.Fprint(out, renderResult(r, showHTML))
			}, runtime.WithLogger(quiet))
		},
	}

	cmd.Flags().BoolVar(&showHTML, "html", false, "Print the backend markup after each step")

	return cmd
}

var (
	stepStyle  lipgloss.Style
	htmlStyle  lipgloss.Style
	emptyStyle lipgloss.Style
)

func init() {
	stepStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	htmlStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	emptyStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("11"))
}

// renderResult formats one step as a heading and a mutation table.
func renderResult(r demo.Result, showHTML bool) string {
	var sb strings.Builder
	sb.WriteString(stepStyle.Render(fmt.Sprintf("▸ %s (batch %d)", r.Label, r.Batch.Seq)))
	sb.WriteString("\n")

	if len(r.Batch.Mutations) == 0 {
		sb.WriteString(emptyStyle.Render("  no changes"))
		sb.WriteString("\n\n")
		return sb.String()
	}

	var tableBuffer bytes.Buffer
	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"#", "Op", "Node", "Target", "Value"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
	})
	for i, m := range r.Batch.Mutations {
		target, value := describe(m)
		table.Append([]string{fmt.Sprintf("%d", i+1), m.Op.String(), m.Handle.String(), target, value})
	}
	table.SetFooter([]string{
		"",
		fmt.Sprintf("%d rendered", r.Stats.Rendered),
		fmt.Sprintf("%d skipped", r.Stats.Skipped),
		fmt.Sprintf("%d effects", r.Stats.Effects),
		fmt.Sprintf("%d mutations", len(r.Batch.Mutations)),
	})
	table.Render()
	sb.WriteString(tableBuffer.String())

	if showHTML {
		sb.WriteString(htmlStyle.Render(r.HTML))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

// describe splits a mutation into its target and value columns.
func describe(m vdom.Mutation) (target, value string) {
	switch m.Op {
	case vdom.OpCreateElement:
		return "", "<" + m.Tag + ">"
	case vdom.OpCreateText, vdom.OpSetText:
		return "", fmt.Sprintf("%q", m.Value)
	case vdom.OpSetAttr:
		return "", fmt.Sprintf("%s=%q", m.Name, m.Value)
	case vdom.OpRemoveAttr, vdom.OpSetListener, vdom.OpRemoveListener:
		return "", m.Name
	case vdom.OpAppendChild:
		return m.Parent.String(), ""
	case vdom.OpInsertBefore, vdom.OpMove:
		if m.Anchor == vdom.NoHandle {
			return m.Parent.String() + " (end)", ""
		}
		return m.Parent.String() + " before " + m.Anchor.String(), ""
	case vdom.OpReplace:
		return m.Old.String(), ""
	default:
		return "", ""
	}
}
