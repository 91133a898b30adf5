package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/distmeta/pkg/observability"
	"github.com/matzehuels/distmeta/pkg/readme"
)

func (c *CLI) describeCommand() *cobra.Command {
	var (
		marker string
		output string
	)

	cmd := &cobra.Command{
		Use:   "describe [README]",
		Short: "Extract the long description from a README",
		Long: `Extract the long description from a README.

The description starts after the first blank line (the title block is
dropped) and ends before the first line starting with the marker, which
defaults to ".. contents::". Without a marker line the rest of the file is
used.`,
		Example: `  distmeta describe README.txt
  distmeta describe README.rst --marker ".. toctree::" -o description.rst`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "README.txt"
			if len(args) == 1 {
				path = args[0]
			}

			desc, err := readme.ExtractFile(path, readme.Options{Marker: marker})
			if err != nil {
				return err
			}
			observability.Build().OnExtract(cmd.Context(), path, len(desc))
			c.Logger.Debug("extracted", "readme", path, "bytes", len(desc))

			if output == "" {
				_, err := io.WriteString(cmd.OutOrStdout(), desc)
				return err
			}
			if err := os.WriteFile(output, []byte(desc), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Extracted %d bytes", len(desc))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVar(&marker, "marker", readme.DefaultMarker, "line prefix that ends the description")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}
