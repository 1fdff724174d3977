package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fission-dev/fission/internal/domain"
	m "github.com/fission-dev/fission/internal/model"
	"github.com/fission-dev/fission/pkg"
)

var runParallelFlag int
var runBackendFlag string
var runWorkersFlag []string
var runTestCommandFlag string
var runTimeoutFlag time.Duration

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [path]",
		Short: "Execute the pending work items of a session",
		Long: `Drain the session database: apply each pending mutation to a private
copy of the project, run the test suite against it, and record whether the
mutant was killed or survived. Interrupted runs resume where they left
off; items already complete are never re-executed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, args)
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&runParallelFlag, runParallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of parallel workers for the pool backend")
	bindFlagToConfig(cmd.Flags().Lookup(runParallelFlagName), runParallelConfigKey)

	cmd.Flags().StringVar(&runBackendFlag, backendFlagName, viper.GetString(backendConfigKey), "execution backend: sequential, pool, or remote")
	bindFlagToConfig(cmd.Flags().Lookup(backendFlagName), backendConfigKey)

	cmd.Flags().StringArrayVar(&runWorkersFlag, workersFlagName, viper.GetStringSlice(workersConfigKey), "remote worker base URLs (remote backend)")
	bindFlagToConfig(cmd.Flags().Lookup(workersFlagName), workersConfigKey)

	cmd.Flags().StringVar(&runTestCommandFlag, testCommandFlagName, viper.GetString(testCommandConfigKey), "test command template; must reference {output}")
	bindFlagToConfig(cmd.Flags().Lookup(testCommandFlagName), testCommandConfigKey)

	cmd.Flags().DurationVar(&runTimeoutFlag, timeoutFlagName, viper.GetDuration(timeoutConfigKey), "per-mutant test timeout")
	bindFlagToConfig(cmd.Flags().Lookup(timeoutFlagName), timeoutConfigKey)
}

func runSession(cmd *cobra.Command, args []string) error {
	// An interrupt cancels the run cooperatively: child process groups
	// are killed and unfinished items stay requeueable.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Configuration problems abort before any dispatch.
	template, err := domain.ParseCommandTemplate(viper.GetString(testCommandConfigKey))
	if err != nil {
		return err
	}

	projectRoot, err := resolveProjectRoot(ctx, args)
	if err != nil {
		return err
	}

	backend, err := buildBackend(projectRoot, template, viper.GetDuration(timeoutConfigKey))
	if err != nil {
		return err
	}

	db, err := openSession()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	// Items stranded RUNNING by a previous interrupt get another chance.
	requeued, err := db.RequeueRunning(ctx)
	if err != nil {
		return err
	}

	if requeued > 0 {
		slog.Info("requeued interrupted work items", "count", requeued)
	}

	pending, err := db.Pending(ctx)
	if err != nil {
		return err
	}

	if err := ui.Start(ctx, len(pending)); err != nil {
		return err
	}

	spill, err := pkg.NewFileSpill[m.Report]()
	if err != nil {
		return err
	}
	defer func() { _ = spill.Close() }()

	mutationsByJob := make(map[string][]m.Descriptor, len(pending))
	for _, item := range pending {
		mutationsByJob[item.JobID] = item.Mutations
	}

	summary, err := domain.NewDistributor(db).Run(ctx, domain.RunArgs{
		Backend: backend,
		OnComplete: func(jobID string, exec m.Execution) {
			report := m.Report{JobID: jobID, Mutations: mutationsByJob[jobID], Execution: exec}

			if spillErr := spill.Append(report); spillErr != nil {
				slog.Error("failed to spill report", "jobID", jobID, "error", spillErr)
			}

			ui.Completed(ctx, report)
		},
	})
	if err != nil {
		return err
	}

	if err := saveRunReports(ctx, spill); err != nil {
		return err
	}

	if err := ui.Summary(context.WithoutCancel(ctx), summary); err != nil {
		return err
	}

	if ctx.Err() != nil {
		cmd.Println("run interrupted; re-run to resume the session")
	}

	return nil
}

// saveRunReports drains the completion spill and persists this run's
// reports next to the session database.
func saveRunReports(ctx context.Context, spill pkg.FileSpill[m.Report]) error {
	reports, err := domain.DrainSpill(spill)
	if err != nil {
		return err
	}

	if len(reports) == 0 {
		return nil
	}

	return reportStore.SaveReports(context.WithoutCancel(ctx), m.Path(viper.GetString(outputFlagName)), reports)
}
