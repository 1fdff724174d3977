package operators

import (
	"go/ast"
	"go/token"
)

// Loop forces a for-loop with a condition to run zero iterations by
// replacing the condition with false.
type Loop struct{}

// Name implements Operator.
func (Loop) Name() string { return "loop" }

// Sites reports one single-variant site per conditional for-loop.
func (Loop) Sites(n ast.Node, fset *token.FileSet, _ []byte) []Site {
	loop, ok := n.(*ast.ForStmt)
	if !ok || loop.Cond == nil {
		return nil
	}

	start, end := span(fset, loop.Cond.Pos(), loop.Cond.End())

	return []Site{{Start: start, End: end, Variants: 1}}
}

// Mutate replaces the loop condition with false.
func (Loop) Mutate(src []byte, site Site, variant int) ([]byte, error) {
	if err := validateVariant(site, variant); err != nil {
		return nil, err
	}

	return splice(src, site.Start, site.End, falseStr), nil
}

// Examples implements Operator.
func (Loop) Examples() []Example {
	return []Example{
		{
			Input: "package p\n\nfunc f(n int) int {\n\ts := 0\n\tfor i := 0; i < n; i++ {\n\t\ts += i\n\t}\n\treturn s\n}\n",
			Want:  "package p\n\nfunc f(n int) int {\n\ts := 0\n\tfor i := 0; false; i++ {\n\t\ts += i\n\t}\n\treturn s\n}\n",
		},
	}
}
