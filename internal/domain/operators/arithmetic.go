package operators

import (
	"go/ast"
	"go/token"
)

// arithmeticOps is the replacement pool, in a fixed order so variant
// indexes stay stable across runs.
var arithmeticOps = []token.Token{token.ADD, token.SUB, token.MUL, token.QUO, token.REM}

// Arithmetic replaces a binary arithmetic operator with each of the
// alternatives (+, -, *, /, %).
type Arithmetic struct{}

// Name implements Operator.
func (Arithmetic) Name() string { return "arithmetic" }

// Sites reports one site per arithmetic binary expression, with one
// variant per alternative operator.
func (Arithmetic) Sites(n ast.Node, fset *token.FileSet, _ []byte) []Site {
	bin, ok := n.(*ast.BinaryExpr)
	if !ok || !isArithmeticOp(bin.Op) {
		return nil
	}

	start := fset.Position(bin.OpPos).Offset

	return []Site{{
		Start:    start,
		End:      start + len(bin.Op.String()),
		Variants: len(arithmeticOps) - 1,
	}}
}

// Mutate swaps the operator at the site for the variant-selected
// alternative.
func (Arithmetic) Mutate(src []byte, site Site, variant int) ([]byte, error) {
	if err := validateVariant(site, variant); err != nil {
		return nil, err
	}

	original := string(src[site.Start:site.End])
	alternatives := arithmeticAlternatives(original)

	return splice(src, site.Start, site.End, alternatives[variant]), nil
}

// Examples implements Operator.
func (Arithmetic) Examples() []Example {
	return []Example{
		{
			Input:   "package p\n\nfunc f(a, b int) int { return a + b }\n",
			Want:    "package p\n\nfunc f(a, b int) int { return a - b }\n",
			Variant: 0,
		},
		{
			Input:   "package p\n\nfunc f(a, b int) int { return a + b }\n",
			Want:    "package p\n\nfunc f(a, b int) int { return a % b }\n",
			Variant: 3,
		},
		{
			Input:      "package p\n\nfunc f(a, b int) int { return a*b + a/b }\n",
			Want:       "package p\n\nfunc f(a, b int) int { return a*b + a%b }\n",
			Occurrence: 2,
			Variant:    3,
		},
	}
}

func isArithmeticOp(op token.Token) bool {
	return op == token.ADD || op == token.SUB || op == token.MUL || op == token.QUO || op == token.REM
}

// arithmeticAlternatives returns the replacement operators for the
// original, preserving pool order.
func arithmeticAlternatives(original string) []string {
	alternatives := make([]string, 0, len(arithmeticOps)-1)

	for _, op := range arithmeticOps {
		if op.String() != original {
			alternatives = append(alternatives, op.String())
		}
	}

	return alternatives
}
