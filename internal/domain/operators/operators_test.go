package operators

import (
	"fmt"
	"go/parser"
	"go/token"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"

	m "github.com/fission-dev/fission/internal/model"
)

// TestOperatorExamples drives every catalog operator through its own
// example cases: enumerate sites on the input, mutate at the example's
// occurrence and variant, and compare against the expected output.
func TestOperatorExamples(t *testing.T) {
	catalog := DefaultCatalog()

	for _, name := range catalog.Names() {
		op, ok := catalog.Get(name)
		require.True(t, ok)
		require.NotEmpty(t, op.Examples(), "operator %s ships no examples", name)

		for i, example := range op.Examples() {
			t.Run(fmt.Sprintf("%s/%d", name, i), func(t *testing.T) {
				got := applyExample(t, op, example)

				if got != example.Want {
					diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
						A:        difflib.SplitLines(example.Want),
						B:        difflib.SplitLines(got),
						FromFile: "want",
						ToFile:   "got",
						Context:  2,
					})
					require.NoError(t, err)
					t.Fatalf("unexpected mutation output:\n%s", diff)
				}
			})
		}
	}
}

func applyExample(t *testing.T, op Operator, example Example) string {
	t.Helper()

	src := []byte(example.Input)
	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, "example.go", src, parser.ParseComments)
	require.NoError(t, err)

	sites := CollectSites(op, file, fset, src)
	require.Greater(t, len(sites), example.Occurrence, "occurrence out of range")

	mutated, err := op.Mutate(src, sites[example.Occurrence], example.Variant)
	require.NoError(t, err)

	return string(mutated)
}

func TestCatalogNamesSorted(t *testing.T) {
	names := DefaultCatalog().Names()

	require.Equal(t, []string{"arithmetic", "boolean", "comparison", "loop", "noop"}, names)
}

func TestMutateRejectsDriftedVariant(t *testing.T) {
	src := []byte("package p\n\nvar enabled = true\n")
	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, "example.go", src, 0)
	require.NoError(t, err)

	sites := CollectSites(Boolean{}, file, fset, src)
	require.Len(t, sites, 1)

	_, err = Boolean{}.Mutate(src, sites[0], 7)
	require.ErrorIs(t, err, m.ErrSiteNotFound)
}

func TestNoOpLeavesSourceUntouched(t *testing.T) {
	src := []byte("package p\n\nfunc f() bool { return true }\n")
	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, "example.go", src, 0)
	require.NoError(t, err)

	sites := CollectSites(NoOp{}, file, fset, src)
	require.Len(t, sites, 1)

	mutated, err := NoOp{}.Mutate(src, sites[0], 0)
	require.NoError(t, err)
	require.Equal(t, string(src), string(mutated))
}
