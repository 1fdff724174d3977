package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fission-dev/fission/internal/domain"
	m "github.com/fission-dev/fission/internal/model"
	"github.com/fission-dev/fission/internal/service"
)

const (
	listenFlagName    = "listen"
	defaultListenAddr = ":8777"
)

var workerListenFlag string

// workerCmd represents the worker command.
var workerCmd = newWorkerCmd()

func newWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker [path]",
		Short: "Serve work items for a remote coordinator",
		Long: `Start a worker daemon over the project at path (default: the current
module). A coordinator running with the remote backend posts work items to
this process; each item is executed against the worker's own checkout and
the result is returned in the response.`,
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

			backend, err := domain.NewLocalBackend(fsAdapter, applier, testRunner, domain.LocalBackendConfig{
				ProjectRoot: projectRoot,
				Template:    template,
				Timeout:     viper.GetDuration(timeoutConfigKey),
				OutputDir:   m.Path(viper.GetString(outputFlagName)),
				Workers:     viper.GetInt(runParallelConfigKey),
			})
			if err != nil {
				return err
			}

			return service.NewWorkerServer(backend).Listen(workerListenFlag)
		},
	}

	cmd.Flags().StringVar(&workerListenFlag, listenFlagName, defaultListenAddr, "address to listen on")

	return cmd
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
