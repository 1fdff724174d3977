// Package cmd provides the root command and CLI setup for fission.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fission-dev/fission/internal/adapter"
	"github.com/fission-dev/fission/internal/controller"
	"github.com/fission-dev/fission/internal/domain"
	"github.com/fission-dev/fission/internal/domain/operators"
	m "github.com/fission-dev/fission/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var testRunner adapter.TestRunnerAdapter
var reportStore adapter.ReportStore
var catalog *operators.Catalog
var registry domain.Registry
var applier domain.Applier
var ui controller.UI

// outputDirFlag is a root-level flag shared by commands that read/write
// session state and reports.
var outputDirFlag string

// excludePatterns filters files during enumeration.
var excludePatterns []string

// verboseFlag switches logging to debug level.
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	testRunner = adapter.NewLocalTestRunnerAdapter()
	reportStore = adapter.NewReportStore()
	catalog = operators.DefaultCatalog()
	registry = domain.NewRegistry(fsAdapter, catalog)
	applier = domain.NewApplier(fsAdapter, catalog)
}

const rootLongDescription = `Fission is a mutation testing toolkit: it enumerates small syntactic
mutations of a target codebase, runs the project's test suite against each
mutant, and reports which mutants were killed (detected) and which survived
(undetected, signaling a test-suite gap).

Sessions are durable: init seeds a work database, run drains it and can be
interrupted and resumed, report summarizes the results.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fission",
		Short: "Mutation testing toolkit",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), verboseFlag || viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&outputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for the session database and reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude files matching regex (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", viper.GetBool(logVerboseKey), "enable debug logging")
	bindFlagToConfig(cmd.PersistentFlags().Lookup("verbose"), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values
// feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// sessionDBPath returns the session database location under the output
// directory.
func sessionDBPath() m.Path {
	return m.Path(filepath.Join(viper.GetString(outputFlagName), sessionDBName))
}

// openSession opens the session database, creating the output directory
// when needed.
func openSession() (adapter.WorkDB, error) {
	outputDir := viper.GetString(outputFlagName)
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return adapter.OpenWorkDB(sessionDBPath())
}

// resolveProjectRoot locates the target module root from the optional
// path argument, defaulting to the working directory.
func resolveProjectRoot(ctx context.Context, args []string) (m.Path, error) {
	start := "."
	if len(args) > 0 {
		start = args[0]
	}

	absolute, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	return fsAdapter.FindProjectRoot(ctx, m.Path(absolute))
}

// buildBackend assembles the execution backend selected by configuration.
// The template must already have passed validation: backend construction
// happens before any work item is dispatched, so configuration problems
// abort the whole run here.
func buildBackend(projectRoot m.Path, template domain.CommandTemplate, timeout time.Duration) (domain.Backend, error) {
	name := viper.GetString(backendConfigKey)

	switch name {
	case backendSequential, backendPool:
		workers := 1
		if name == backendPool {
			workers = viper.GetInt(runParallelConfigKey)
		}

		return domain.NewLocalBackend(fsAdapter, applier, testRunner, domain.LocalBackendConfig{
			ProjectRoot: projectRoot,
			Template:    template,
			Timeout:     timeout,
			OutputDir:   m.Path(viper.GetString(outputFlagName)),
			Workers:     workers,
		})

	case backendRemote:
		return domain.NewRemoteBackend(domain.RemoteBackendConfig{
			Workers:        viper.GetStringSlice(workersConfigKey),
			RequestTimeout: timeout + time.Minute,
		})

	default:
		return nil, m.NewConfigError("unknown backend %q", name)
	}
}
