package cmd

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fission-dev/fission/internal/controller"
	"github.com/fission-dev/fission/internal/domain"
)

var reportYAMLFlag bool

// reportCmd represents the report command.
var reportCmd = newReportCmd()

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize a session's results",
		Long: `Read the session database and print the kill/survive breakdown.
Errored and timed-out items are listed separately from completed ones so a
surviving mutant is never confused with one that could not be evaluated.`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, err := openSession()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			reports, summary, err := domain.NewAggregator(db).Collect(ctx)
			if err != nil {
				return err
			}

			if reportYAMLFlag {
				data, err := yaml.Marshal(reports)
				if err != nil {
					return err
				}

				cmd.Print(string(data))

				return nil
			}

			if !summary.Done() {
				cmd.Printf("session incomplete: %d items not yet terminal\n\n", summary.Pending+summary.Running)
			}

			cmd.Print(controller.RenderSummaryTable(summary))

			return nil
		},
	}

	cmd.Flags().BoolVar(&reportYAMLFlag, "yaml", false, "dump per-job reports as YAML instead of the summary table")

	return cmd
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
