package operators

import (
	"go/ast"
	"go/token"
)

const (
	trueStr  = "true"
	falseStr = "false"
)

// Boolean flips boolean literals (true <-> false).
type Boolean struct{}

// Name implements Operator.
func (Boolean) Name() string { return "boolean" }

// Sites reports one single-variant site per boolean literal.
func (Boolean) Sites(n ast.Node, fset *token.FileSet, _ []byte) []Site {
	ident, ok := n.(*ast.Ident)
	if !ok || (ident.Name != trueStr && ident.Name != falseStr) {
		return nil
	}

	start, end := span(fset, ident.Pos(), ident.End())

	return []Site{{Start: start, End: end, Variants: 1}}
}

// Mutate flips the literal at the site.
func (Boolean) Mutate(src []byte, site Site, variant int) ([]byte, error) {
	if err := validateVariant(site, variant); err != nil {
		return nil, err
	}

	replacement := trueStr
	if string(src[site.Start:site.End]) == trueStr {
		replacement = falseStr
	}

	return splice(src, site.Start, site.End, replacement), nil
}

// Examples implements Operator.
func (Boolean) Examples() []Example {
	return []Example{
		{
			Input: "package p\n\nvar enabled = true\n",
			Want:  "package p\n\nvar enabled = false\n",
		},
		{
			Input:      "package p\n\nvar flags = []bool{true, false}\n",
			Want:       "package p\n\nvar flags = []bool{true, true}\n",
			Occurrence: 1,
		},
	}
}
