// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/scanbridge/scanbridge/internal/model"
)

func newTreeCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tree [snapshot]",
		Short: "Show the module tree of a snapshot",
		Long: `Show the module tree in the order modules are analyzed, with each module's
kind and capabilities. Skipped modules emit no properties of their own, but
their submodules are still analyzed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(cmd, app, args)
		},
	}
}

func runTree(cmd *cobra.Command, app *App, args []string) error {
	ctx := cmd.Context()

	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return app.fail(cmd, err)
	}
	var flags pipelineFlags
	req, err := flags.request(args, cfg)
	if err != nil {
		return app.fail(cmd, err)
	}

	report, err := app.Analysis.Tree(ctx, req)
	if err != nil {
		return app.fail(cmd, err)
	}

	fmt.Fprintln(app.stdout, renderModuleTree(report.Tree))
	return nil
}

// renderModuleTree renders t in preorder with lipgloss tree glyphs.
func renderModuleTree(t *model.Tree) string {
	return moduleSubtree(t, 0).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(treeEnumeratorStyle).
		String()
}

func moduleSubtree(t *model.Tree, i int) *tree.Tree {
	sub := tree.Root(moduleLabel(&t.Nodes[i]))
	for _, c := range t.Nodes[i].Children {
		if len(t.Nodes[c].Children) == 0 {
			sub.Child(moduleLabel(&t.Nodes[c]))
			continue
		}
		sub.Child(moduleSubtree(t, c))
	}
	return sub
}

func moduleLabel(n *model.Node) string {
	label := modulePathStyle.Render(n.Path) + " " + SubtitleStyle.Render(n.Kind.String())
	if caps := n.Caps.String(); caps != "" {
		label += " " + VerboseStyle.Render("["+caps+"]")
	}
	if n.Skip {
		label += " " + WarningStyle.Render("(skipped)")
	}
	return label
}
