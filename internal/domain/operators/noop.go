package operators

import (
	"go/ast"
	"go/token"
)

// NoOp is an operator that makes no changes. It behaves like any other
// operator but leaves the source untouched, so a passing suite keeps
// passing and the mutant always survives. Useful for baselining and for
// debugging the execution engine itself.
type NoOp struct{}

// Name implements Operator.
func (NoOp) Name() string { return "noop" }

// Sites reports one site per function declaration.
func (NoOp) Sites(n ast.Node, fset *token.FileSet, _ []byte) []Site {
	fd, ok := n.(*ast.FuncDecl)
	if !ok {
		return nil
	}

	start, end := span(fset, fd.Pos(), fd.End())

	return []Site{{Start: start, End: end, Variants: 1}}
}

// Mutate returns an unchanged copy of the source.
func (NoOp) Mutate(src []byte, site Site, variant int) ([]byte, error) {
	if err := validateVariant(site, variant); err != nil {
		return nil, err
	}

	out := make([]byte, len(src))
	copy(out, src)

	return out, nil
}

// Examples implements Operator.
func (NoOp) Examples() []Example {
	return []Example{
		{
			Input: "package p\n\nfunc f() int { return 1 }\n",
			Want:  "package p\n\nfunc f() int { return 1 }\n",
		},
	}
}
