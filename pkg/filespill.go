// Package pkg provides generic utilities for fission.
package pkg

import (
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// FileSpill is an append-only, disk-backed sequence of items of type T.
// It keeps memory usage flat for large sessions: completions are appended
// as they arrive and read back as a stream when the report is assembled.
type FileSpill[T any] interface {
	Len() uint64
	Path() string
	Append(item T) error
	Get(index uint64) (T, error)
	Range(fn func(index uint64, item T) error) error
	Close() error
}

type fileSpill[T any] struct {
	path    string
	file    *os.File
	encoder *gob.Encoder
	mu      sync.Mutex
	length  uint64
}

// NewFileSpill creates a spill backed by a fresh temporary file. The
// backing file is removed on Close.
func NewFileSpill[T any]() (FileSpill[T], error) {
	file, err := os.CreateTemp("", "fission-spill-*.gob")
	if err != nil {
		return nil, fmt.Errorf("creating spill file: %w", err)
	}

	return &fileSpill[T]{
		path:    file.Name(),
		file:    file,
		encoder: gob.NewEncoder(file),
	}, nil
}

// Append encodes one item at the end of the spill. Safe for concurrent
// callers.
func (f *fileSpill[T]) Append(item T) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.encoder.Encode(item); err != nil {
		return fmt.Errorf("encoding spill item %d: %w", f.length, err)
	}

	f.length++

	return nil
}

// Len returns the number of appended items.
func (f *fileSpill[T]) Len() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.length
}

// Path returns the backing file path.
func (f *fileSpill[T]) Path() string {
	return f.path
}

// Get decodes the item at index. Reads re-scan from the start of the
// file, so Range is preferred for bulk access.
func (f *fileSpill[T]) Get(index uint64) (T, error) {
	var item T

	err := f.Range(func(i uint64, candidate T) error {
		if i == index {
			item = candidate
		}

		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	if index >= f.Len() {
		var zero T
		return zero, fmt.Errorf("spill index %d out of bounds (length %d)", index, f.Len())
	}

	return item, nil
}

// Range streams every appended item through fn in append order.
func (f *fileSpill[T]) Range(fn func(index uint64, item T) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	reader, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("opening spill file: %w", err)
	}

	defer func() { _ = reader.Close() }()

	decoder := gob.NewDecoder(reader)

	for i := uint64(0); i < f.length; i++ {
		var item T
		if err := decoder.Decode(&item); err != nil {
			return fmt.Errorf("decoding spill item %d: %w", i, err)
		}

		if err := fn(i, item); err != nil {
			return err
		}
	}

	return nil
}

// Close removes the backing file.
func (f *fileSpill[T]) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return nil
	}

	if err := f.file.Close(); err != nil {
		slog.Error("failed to close spill file", "path", f.path, "error", err)
		return err
	}

	f.file = nil

	return os.Remove(f.path)
}
