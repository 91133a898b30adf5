package cli

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/distmeta/pkg/descriptor"
	"github.com/matzehuels/distmeta/pkg/pipeline"
)

func (c *CLI) showCommand() *cobra.Command {
	var (
		interactive bool
		marker      string
	)

	cmd := &cobra.Command{
		Use:   "show [manifest]",
		Short: "Summarize the distribution descriptor",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.app.newRunner().Build(cmd.Context(), pipeline.Options{
				Manifest:     manifestArg(args),
				ReadmeMarker: marker,
				Logger:       c.Logger,
			})
			if err != nil {
				return err
			}

			if !interactive {
				printDescriptor(cmd.OutOrStdout(), d)
				return nil
			}
			p := tea.NewProgram(NewShowModel(d), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the descriptor in a terminal UI")
	cmd.Flags().StringVar(&marker, "marker", "", "README marker that ends the long description")

	return cmd
}

func printDescriptor(w io.Writer, d *descriptor.Descriptor) {
	fmt.Fprintln(w, StyleTitle.Render(d.Name+" "+d.Version))
	if d.Description != "" {
		fmt.Fprintln(w, StyleDim.Render(d.Description))
	}
	fmt.Fprintln(w)
	for _, kv := range overviewFields(d) {
		printKeyValue(w, kv[0], kv[1])
	}

	if len(d.InstallRequires) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, StyleTitle.Render("Requires"))
		for _, r := range d.InstallRequires {
			fmt.Fprintln(w, "  "+r.String())
		}
	}
	if len(d.Packages) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, StyleTitle.Render("Packages"))
		for _, line := range packageLines(d) {
			fmt.Fprintln(w, "  "+line)
		}
	}
}

// overviewFields lists the non-empty scalar fields in display order.
func overviewFields(d *descriptor.Descriptor) [][2]string {
	all := [][2]string{
		{"Author", d.Author},
		{"Author-email", d.AuthorEmail},
		{"License", d.License},
		{"Home-page", d.URL},
		{"Test suite", d.TestSuite},
	}
	fields := all[:0]
	for _, kv := range all {
		if kv[1] != "" {
			fields = append(fields, kv)
		}
	}
	desc := fmt.Sprintf("%d lines", strings.Count(d.LongDescription, "\n"))
	return append(fields, [2]string{"Long desc.", desc})
}

// packageLines indents packages by depth and marks namespace packages.
func packageLines(d *descriptor.Descriptor) []string {
	lines := make([]string, 0, len(d.Packages))
	for _, p := range d.Packages {
		depth := strings.Count(p, ".")
		name := p[strings.LastIndexByte(p, '.')+1:]
		line := strings.Repeat("  ", depth) + name
		if d.IsNamespace(p) {
			line += StyleDim.Render(" (namespace)")
		}
		lines = append(lines, line)
	}
	return lines
}
