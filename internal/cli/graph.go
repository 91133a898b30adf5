package cli

import (
	"github.com/spf13/cobra"

	derrors "github.com/matzehuels/distmeta/pkg/errors"
	"github.com/matzehuels/distmeta/pkg/pipeline"
)

var graphFormats = map[string]bool{
	pipeline.FormatDOT: true,
	pipeline.FormatSVG: true,
	pipeline.FormatPNG: true,
}

func (c *CLI) graphCommand() *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "graph [manifest]",
		Short: "Render the distribution graph",
		Long: `Render how the distribution relates to its install requirements and the
packages it ships. Namespace packages are drawn as folders, requirements as
ellipses.`,
		Example: `  distmeta graph > peak-rules.dot
  distmeta graph -f svg -o peak-rules.svg --detailed`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(flags.formats)
			for _, f := range formats {
				if !graphFormats[f] {
					return derrors.New(derrors.ErrCodeInvalidInput, "invalid graph format: %q (must be one of: dot, svg, png)", f)
				}
			}
			ctx := withLogger(cmd.Context(), c.Logger)
			opts := flags.options(manifestArg(args), formats)
			return c.runBuild(ctx, c.app.newRunner(), opts, flags.output, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&flags.formats, "format", "f", pipeline.FormatDOT, "graph formats, comma-separated: dot, svg, png")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file or directory")
	addBuildFlags(cmd, &flags)

	return cmd
}
