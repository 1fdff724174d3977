// Package operators implements the catalog of mutation operators. Each
// operator is a stateless strategy that reports candidate sites on AST
// nodes and rewrites the source bytes for one variant at one site.
package operators

import (
	"go/ast"
	"go/token"
	"sort"

	m "github.com/fission-dev/fission/internal/model"
)

// Site describes one candidate mutation location as a byte-offset span in
// the original source, plus the number of mutation variants the operator
// offers there.
type Site struct {
	Start    int
	End      int
	Variants int
}

// Example pairs an input snippet with the expected mutated output for one
// (occurrence, variant) choice. Examples drive the operators' own
// self-tests and are not consulted by the engine at runtime.
type Example struct {
	Input      string
	Want       string
	Occurrence int
	Variant    int
}

// Operator is the contract every catalog entry satisfies.
type Operator interface {
	// Name returns the stable identifier used in descriptors.
	Name() string

	// Sites reports candidate mutation sites on a single AST node. The
	// engine walks the file and invokes Sites per node, so occurrences
	// are counted in source order.
	Sites(n ast.Node, fset *token.FileSet, src []byte) []Site

	// Mutate returns a mutated copy of src for the given site and
	// variant. The input slice is never modified.
	Mutate(src []byte, site Site, variant int) ([]byte, error)

	// Examples returns the operator's self-test cases.
	Examples() []Example
}

// Catalog maps operator names to implementations. It is resolved once when
// the registry is built, not per mutation.
type Catalog struct {
	ops map[string]Operator
}

// NewCatalog builds a catalog from the given operators.
func NewCatalog(ops ...Operator) *Catalog {
	c := &Catalog{ops: make(map[string]Operator, len(ops))}
	for _, op := range ops {
		c.ops[op.Name()] = op
	}

	return c
}

// DefaultCatalog returns the catalog of shipped operators.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		NoOp{},
		Arithmetic{},
		Boolean{},
		Comparison{},
		Loop{},
	)
}

// Get resolves an operator by name.
func (c *Catalog) Get(name string) (Operator, bool) {
	op, ok := c.ops[name]
	return op, ok
}

// Names returns all operator names in sorted order so enumeration is
// deterministic across runs.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.ops))
	for name := range c.ops {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// CollectSites walks a parsed file and returns the operator's sites in
// source order. The returned index positions define occurrence numbers.
func CollectSites(op Operator, file *ast.File, fset *token.FileSet, src []byte) []Site {
	var sites []Site

	ast.Inspect(file, func(n ast.Node) bool {
		if n == nil {
			return true
		}

		sites = append(sites, op.Sites(n, fset, src)...)

		return true
	})

	return sites
}

// splice returns a copy of src with the [start, end) span replaced.
func splice(src []byte, start, end int, replacement string) []byte {
	out := make([]byte, 0, len(src)-(end-start)+len(replacement))
	out = append(out, src[:start]...)
	out = append(out, replacement...)
	out = append(out, src[end:]...)

	return out
}

// span converts a node position pair into byte offsets.
func span(fset *token.FileSet, start, end token.Pos) (int, int) {
	return fset.Position(start).Offset, fset.Position(end).Offset
}

// validateVariant guards Mutate calls against drifted descriptors.
func validateVariant(site Site, variant int) error {
	if variant < 0 || variant >= site.Variants {
		return m.ErrSiteNotFound
	}

	return nil
}
