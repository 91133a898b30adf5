package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/distmeta/pkg/check"
	"github.com/matzehuels/distmeta/pkg/pipeline"
)

func (c *CLI) checkCommand() *cobra.Command {
	var (
		indexURL string
		refresh  bool
		workers  int
		asJSON   bool
		marker   string
	)

	cmd := &cobra.Command{
		Use:   "check [manifest]",
		Short: "Resolve install requirements against a package index",
		Long: `Look every install requirement up in a package index (PyPI by default, or
a distmeta server) and report the newest release that satisfies it.

Exits non-zero when a requirement is missing, unsatisfiable or could not be
looked up.`,
		Example: `  distmeta check
  distmeta check --index-url http://localhost:8080/pypi --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := c.app.newRunner().Build(ctx, pipeline.Options{
				Manifest:     manifestArg(args),
				ReadmeMarker: marker,
				Refresh:      refresh,
				Logger:       c.Logger,
			})
			if err != nil {
				return err
			}

			if workers <= 0 {
				workers = c.app.Config.Index.Workers
			}
			client := c.app.indexClient(indexURL)
			checker := check.New(client, check.Options{
				Workers: workers,
				Refresh: refresh,
				Logger:  c.Logger.Debugf,
			})

			prog := newProgress(c.Logger)
			var spinner *Spinner
			if !asJSON {
				spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Checking %s against %s", plural(len(d.InstallRequires), "requirement"), client.IndexURL()))
				spinner.Start()
			}
			report, err := checker.Check(ctx, d)
			if spinner != nil {
				spinner.Stop()
			}
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Checked %s", plural(len(report.Results), "requirement")))

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				printReport(cmd.OutOrStdout(), report)
			}
			return report.Err()
		},
	}

	cmd.Flags().StringVar(&indexURL, "index-url", "", "package index JSON API base URL (default: from config, else https://pypi.org/pypi)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached index responses")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent index lookups (default: from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().StringVar(&marker, "marker", "", "README marker that ends the long description")

	return cmd
}

var statusStyles = map[check.Status]lipgloss.Style{
	check.StatusOK:          StyleSuccess,
	check.StatusUnsatisfied: StyleWarning,
	check.StatusMissing:     StyleError,
	check.StatusError:       StyleError,
}

// statusCol is the index of the Status column in the report table.
const statusCol = 5

func printReport(w io.Writer, report *check.Report) {
	if len(report.Results) == 0 {
		printInfo("%s %s has no install requirements", report.Name, report.Version)
		return
	}

	rows := make([][]string, 0, len(report.Results))
	for _, res := range report.Results {
		rows = append(rows, []string{
			res.Requirement.Name,
			orDash(res.Requirement.Constraint()),
			orDash(res.Best),
			orDash(res.Latest),
			orDash(res.License),
			string(res.Status),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Requirement", "Constraint", "Best", "Latest", "License", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			if col == statusCol {
				return statusStyles[report.Results[row].Status].Padding(0, 1)
			}
			return base
		})
	fmt.Fprintln(w, t.Render())

	if report.OK() {
		printSuccess("All %s satisfied", plural(len(report.Results), "requirement"))
		return
	}
	for _, s := range []check.Status{check.StatusUnsatisfied, check.StatusMissing, check.StatusError} {
		if n := report.Count(s); n > 0 {
			printWarning("%d %s", n, s)
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
