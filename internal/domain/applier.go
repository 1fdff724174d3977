package domain

import (
	"context"
	"fmt"
	"go/parser"
	"go/token"

	"github.com/fission-dev/fission/internal/adapter"
	"github.com/fission-dev/fission/internal/domain/operators"
	m "github.com/fission-dev/fission/internal/model"
)

// Applier rewrites source files inside a private working copy according to
// mutation descriptors. It re-locates each descriptor's occurrence among
// the operator's current sites, so a descriptor whose site drifted away
// since enumeration fails with model.ErrSiteNotFound instead of mutating
// the wrong code.
type Applier interface {
	Apply(ctx context.Context, workDir m.Path, mutations []m.Descriptor) error
}

type applier struct {
	fs      adapter.SourceFSAdapter
	catalog *operators.Catalog
}

// NewApplier constructs an Applier over the given filesystem adapter and
// operator catalog.
func NewApplier(fs adapter.SourceFSAdapter, catalog *operators.Catalog) Applier {
	return &applier{fs: fs, catalog: catalog}
}

func (a *applier) Apply(ctx context.Context, workDir m.Path, mutations []m.Descriptor) error {
	for _, mutation := range mutations {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := a.applyOne(ctx, workDir, mutation); err != nil {
			return fmt.Errorf("applying %s: %w", mutation.Key(), err)
		}
	}

	return nil
}

func (a *applier) applyOne(ctx context.Context, workDir m.Path, mutation m.Descriptor) error {
	op, ok := a.catalog.Get(mutation.Operator)
	if !ok {
		return fmt.Errorf("%w: unknown operator %q", m.ErrSiteNotFound, mutation.Operator)
	}

	path := a.fs.JoinPath(string(workDir), string(mutation.ModulePath))

	src, err := a.fs.ReadFile(ctx, path)
	if err != nil {
		return err
	}

	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, string(path), src, parser.ParseComments)
	if err != nil {
		return err
	}

	sites := operators.CollectSites(op, file, fset, src)
	if mutation.Occurrence < 0 || mutation.Occurrence >= len(sites) {
		return fmt.Errorf("%w: occurrence %d of %q, file has %d sites",
			m.ErrSiteNotFound, mutation.Occurrence, mutation.Operator, len(sites))
	}

	mutated, err := op.Mutate(src, sites[mutation.Occurrence], mutation.Variant)
	if err != nil {
		return err
	}

	return a.fs.WriteFile(ctx, path, mutated, 0o600)
}
