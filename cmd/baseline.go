package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fission-dev/fission/internal/domain"
	m "github.com/fission-dev/fission/internal/model"
)

// baselineCmd represents the baseline command.
var baselineCmd = newBaselineCmd()

func newBaselineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "baseline [path]",
		Short: "Run the unmutated test suite once",
		Long: `Run the configured test command against the unmutated project. A failing
baseline makes every mutation verdict meaningless, so run this before a
session to confirm the suite passes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			template, err := domain.ParseCommandTemplate(viper.GetString(testCommandConfigKey))
			if err != nil {
				return err
			}

			projectRoot, err := resolveProjectRoot(ctx, args)
			if err != nil {
				return err
			}

			argv := template.Render(map[string]string{
				domain.PlaceholderOutput: filepath.Join(viper.GetString(outputFlagName), "baseline.out"),
				domain.PlaceholderDir:    string(projectRoot),
			})

			outcome, err := testRunner.Execute(ctx, string(projectRoot), argv, viper.GetDuration(timeoutConfigKey))
			if err != nil {
				if errors.Is(err, m.ErrTimedOut) {
					return fmt.Errorf("baseline timed out after %s", viper.GetDuration(timeoutConfigKey))
				}

				return err
			}

			if !outcome.Survived {
				cmd.Println(outcome.Output)
				return fmt.Errorf("baseline failed: the unmutated suite exits %d", outcome.ExitCode)
			}

			cmd.Printf("baseline passed in %s\n", outcome.Duration.Round(10*time.Millisecond))

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(baselineCmd)
}
