// Package model defines the data structures for mutation sessions.
package model

import "fmt"

// Path represents a file system path.
type Path string

// Descriptor identifies one candidate mutation: a specific variant of a
// specific operator at a specific occurrence within a module file. It is
// immutable once produced by the registry.
type Descriptor struct {
	// ModulePath is the source file path relative to the project root.
	ModulePath Path `json:"module_path" yaml:"module_path"`

	// Operator names the catalog operator that owns the mutation site.
	Operator string `json:"operator" yaml:"operator"`

	// Occurrence indexes the operator's candidate sites within the file,
	// counted in source order starting at zero.
	Occurrence int `json:"occurrence" yaml:"occurrence"`

	// Variant selects one of the mutations the operator offers at the site.
	Variant int `json:"variant" yaml:"variant"`
}

// Key returns a stable identifier for the descriptor, suitable for
// deduplication and durable storage.
func (d Descriptor) Key() string {
	return fmt.Sprintf("%s:%s:%d:%d", d.ModulePath, d.Operator, d.Occurrence, d.Variant)
}
