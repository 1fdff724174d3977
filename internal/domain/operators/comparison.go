package operators

import (
	"go/ast"
	"go/token"
)

var comparisonOps = []token.Token{token.EQL, token.NEQ, token.LSS, token.LEQ, token.GTR, token.GEQ}

// Comparison replaces a relational operator with each of the alternatives
// (==, !=, <, <=, >, >=).
type Comparison struct{}

// Name implements Operator.
func (Comparison) Name() string { return "comparison" }

// Sites reports one site per comparison expression, with one variant per
// alternative operator.
func (Comparison) Sites(n ast.Node, fset *token.FileSet, _ []byte) []Site {
	bin, ok := n.(*ast.BinaryExpr)
	if !ok || !isComparisonOp(bin.Op) {
		return nil
	}

	start := fset.Position(bin.OpPos).Offset

	return []Site{{
		Start:    start,
		End:      start + len(bin.Op.String()),
		Variants: len(comparisonOps) - 1,
	}}
}

// Mutate swaps the operator at the site for the variant-selected
// alternative.
func (Comparison) Mutate(src []byte, site Site, variant int) ([]byte, error) {
	if err := validateVariant(site, variant); err != nil {
		return nil, err
	}

	original := string(src[site.Start:site.End])
	alternatives := make([]string, 0, len(comparisonOps)-1)

	for _, op := range comparisonOps {
		if op.String() != original {
			alternatives = append(alternatives, op.String())
		}
	}

	return splice(src, site.Start, site.End, alternatives[variant]), nil
}

// Examples implements Operator.
func (Comparison) Examples() []Example {
	return []Example{
		{
			Input:   "package p\n\nfunc f(a, b int) bool { return a < b }\n",
			Want:    "package p\n\nfunc f(a, b int) bool { return a == b }\n",
			Variant: 0,
		},
		{
			Input:   "package p\n\nfunc f(a, b int) bool { return a < b }\n",
			Want:    "package p\n\nfunc f(a, b int) bool { return a >= b }\n",
			Variant: 4,
		},
	}
}

func isComparisonOp(op token.Token) bool {
	switch op {
	case token.EQL, token.NEQ, token.LSS, token.LEQ, token.GTR, token.GEQ:
		return true
	default:
		return false
	}
}
