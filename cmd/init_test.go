package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/fission-dev/fission/internal/model"
)

func TestInitCmd_SeedsSessionDatabase(t *testing.T) {
	root := chdirProject(t, fixtureFiles())

	cmd, out := newTestRoot(newInitCmd())
	cmd.SetArgs([]string{"init"})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "seeded")

	_, err := os.Stat(filepath.Join(root, defaultOutputDir, sessionDBName))
	require.NoError(t, err)
}

func TestInitCmd_ReseedingAddsNothing(t *testing.T) {
	chdirProject(t, fixtureFiles())

	cmd, _ := newTestRoot(newInitCmd())
	cmd.SetArgs([]string{"init"})
	require.NoError(t, cmd.Execute())

	reseed, out := newTestRoot(newInitCmd())
	reseed.SetArgs([]string{"init"})
	require.NoError(t, reseed.Execute())

	assert.Contains(t, out.String(), "seeded 0 work items")
}

func TestInitCmd_FailsOutsideModule(t *testing.T) {
	chdirProject(t, map[string]string{"main.go": "package main\n"})

	cmd, _ := newTestRoot(newInitCmd())
	cmd.SetArgs([]string{"init"})

	require.Error(t, cmd.Execute())
}

func TestBundleMutations(t *testing.T) {
	descriptors := make([]m.Descriptor, 5)
	for i := range descriptors {
		descriptors[i] = m.Descriptor{ModulePath: "a.go", Operator: "noop", Occurrence: i}
	}

	tests := []struct {
		name      string
		batchSize int
		wantSizes []int
	}{
		{"one per bundle", 1, []int{1, 1, 1, 1, 1}},
		{"pairs", 2, []int{2, 2, 1}},
		{"all in one", 10, []int{5}},
		{"invalid size falls back to one", 0, []int{1, 1, 1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundles := bundleMutations(descriptors, tt.batchSize)
			require.Len(t, bundles, len(tt.wantSizes))

			flat := 0
			for i, bundle := range bundles {
				assert.Len(t, bundle, tt.wantSizes[i])

				for _, descriptor := range bundle {
					assert.Equal(t, flat, descriptor.Occurrence, "enumeration order must survive bundling")
					flat++
				}
			}
		})
	}
}

func TestBundleMutations_Empty(t *testing.T) {
	assert.Empty(t, bundleMutations(nil, 3))
}
