package domain

import (
	"context"
	"fmt"
	"go/parser"
	"go/token"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/fission-dev/fission/internal/adapter"
	"github.com/fission-dev/fission/internal/domain/operators"
	m "github.com/fission-dev/fission/internal/model"
)

// Registry enumerates every applicable mutation descriptor for a target
// codebase by walking the source tree and asking each catalog operator for
// its candidate sites. Enumeration is deterministic: files sorted by path,
// operators sorted by name, sites in source order.
type Registry interface {
	Enumerate(ctx context.Context, root m.Path, exclude []string) ([]m.Descriptor, error)
}

type registry struct {
	fs      adapter.SourceFSAdapter
	catalog *operators.Catalog
}

// NewRegistry constructs a Registry over the given filesystem adapter and
// operator catalog.
func NewRegistry(fs adapter.SourceFSAdapter, catalog *operators.Catalog) Registry {
	return &registry{fs: fs, catalog: catalog}
}

func (r *registry) Enumerate(ctx context.Context, root m.Path, exclude []string) ([]m.Descriptor, error) {
	excludePatterns, err := compilePatterns(exclude)
	if err != nil {
		return nil, err
	}

	files, err := r.collectSourceFiles(ctx, root, excludePatterns)
	if err != nil {
		return nil, err
	}

	sort.Strings(files)

	var descriptors []m.Descriptor

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fileDescriptors, err := r.enumerateFile(ctx, root, m.Path(file))
		if err != nil {
			return nil, err
		}

		descriptors = append(descriptors, fileDescriptors...)
	}

	slog.Debug("enumerated mutations", "files", len(files), "descriptors", len(descriptors))

	return descriptors, nil
}

func (r *registry) collectSourceFiles(ctx context.Context, root m.Path, exclude []*regexp.Regexp) ([]string, error) {
	var files []string

	err := r.fs.Walk(ctx, root, true, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() || filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		for _, pattern := range exclude {
			if pattern.MatchString(path) {
				return nil
			}
		}

		files = append(files, path)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	return files, nil
}

func (r *registry) enumerateFile(ctx context.Context, root, path m.Path) ([]m.Descriptor, error) {
	src, err := r.fs.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, string(path), src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	modulePath, err := r.fs.RelPath(root, path)
	if err != nil {
		return nil, fmt.Errorf("relativizing %s: %w", path, err)
	}

	var descriptors []m.Descriptor

	for _, name := range r.catalog.Names() {
		op, _ := r.catalog.Get(name)

		for occurrence, site := range operators.CollectSites(op, file, fset, src) {
			for variant := 0; variant < site.Variants; variant++ {
				descriptors = append(descriptors, m.Descriptor{
					ModulePath: modulePath,
					Operator:   name,
					Occurrence: occurrence,
					Variant:    variant,
				})
			}
		}
	}

	return descriptors, nil
}

func compilePatterns(exclude []string) ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(exclude))

	for _, raw := range exclude {
		pattern, err := regexp.Compile(raw)
		if err != nil {
			return nil, m.NewConfigError("invalid exclude pattern %q: %v", raw, err)
		}

		patterns = append(patterns, pattern)
	}

	return patterns, nil
}
