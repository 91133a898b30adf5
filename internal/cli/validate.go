package cli

import (
	"errors"

	"github.com/spf13/cobra"

	derrors "github.com/matzehuels/distmeta/pkg/errors"
	"github.com/matzehuels/distmeta/pkg/pipeline"
)

func (c *CLI) validateCommand() *cobra.Command {
	var marker string

	cmd := &cobra.Command{
		Use:   "validate [manifest]",
		Short: "Check a manifest and report every problem",
		Long: `Build the descriptor without stopping at the first problem and list
everything that is wrong with it. Exits non-zero when there is any.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := c.app.newRunner()
			d, err := runner.Build(cmd.Context(), pipeline.Options{
				Manifest:     manifestArg(args),
				SkipValidate: true,
				ReadmeMarker: marker,
				Logger:       c.Logger,
			})
			if err != nil {
				return err
			}

			issues := problems(d.Validate())
			if len(issues) == 0 {
				printSuccess("%s %s is valid", StyleHighlight.Render(d.Name), d.Version)
				return nil
			}
			for _, issue := range issues {
				printError("%s", issue)
			}
			return derrors.New(derrors.ErrCodeInvalidManifest, "%s", plural(len(issues), "problem"))
		},
	}

	cmd.Flags().StringVar(&marker, "marker", "", "README marker that ends the long description")

	return cmd
}

// problems flattens a joined error into one message per problem, keeping
// the cause of wrapped errors but dropping the code prefix.
func problems(err error) []string {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, problems(e)...)
		}
		return out
	}
	var e *derrors.Error
	if errors.As(err, &e) && e.Cause != nil {
		return []string{e.Message + ": " + derrors.UserMessage(e.Cause)}
	}
	return []string{derrors.UserMessage(err)}
}
