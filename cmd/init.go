package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	m "github.com/fission-dev/fission/internal/model"
)

var initBatchSizeFlag int

// initCmd represents the init command.
var initCmd = newInitCmd()

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Enumerate mutations and seed the session database",
		Long: `Walk the target module, enumerate every applicable mutation, and seed
the session database with one pending work item per mutation bundle.
Run this once per session; run and report operate on the seeded state.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			projectRoot, err := resolveProjectRoot(ctx, args)
			if err != nil {
				return err
			}

			descriptors, err := registry.Enumerate(ctx, projectRoot, viper.GetStringSlice(excludeConfigKey))
			if err != nil {
				return err
			}

			db, err := openSession()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			jobIDs, err := db.Seed(ctx, bundleMutations(descriptors, viper.GetInt(batchSizeConfigKey)))
			if err != nil {
				return err
			}

			cmd.Printf("seeded %d work items (%d mutations) in %s\n", len(jobIDs), len(descriptors), sessionDBPath())

			return nil
		},
	}

	cmd.Flags().IntVarP(&initBatchSizeFlag, batchSizeFlagName, "b", viper.GetInt(batchSizeConfigKey), "mutations bundled per work item")
	bindFlagToConfig(cmd.Flags().Lookup(batchSizeFlagName), batchSizeConfigKey)

	return cmd
}

func init() {
	rootCmd.AddCommand(initCmd)
}

// bundleMutations groups descriptors into work item bundles of the given
// size, preserving enumeration order.
func bundleMutations(descriptors []m.Descriptor, batchSize int) [][]m.Descriptor {
	if batchSize < 1 {
		batchSize = 1
	}

	bundles := make([][]m.Descriptor, 0, (len(descriptors)+batchSize-1)/batchSize)

	for start := 0; start < len(descriptors); start += batchSize {
		end := min(start+batchSize, len(descriptors))
		bundles = append(bundles, descriptors[start:end])
	}

	return bundles
}
