// Package symbols builds the closed code<->variant tables used for every
// enumerated value on the wire.
package symbols

import (
	"errors"
	"fmt"
)

var (
	// ErrIncompleteSymbolTable is returned when a variant has no wire code,
	// or when two variants claim the same code.
	ErrIncompleteSymbolTable = errors.New("incomplete symbol table")

	// ErrUnknownSymbol is returned when a wire code or variant is not registered.
	ErrUnknownSymbol = errors.New("unknown symbol")
)

// -----------------------------------------------------------------------------

// Table is an immutable bijective mapping between the variants of T and
// their wire codes.
type Table[T comparable] struct {
	name   string
	toCode map[T]string
	toVal  map[string]T
	order  []T
}

// -----------------------------------------------------------------------------

// Build validates that every variant has exactly one code and that no two
// variants share a code. code reports false for a variant it does not cover.
func Build[T comparable](name string, variants []T, code func(T) (string, bool)) (*Table[T], error) {
	t := &Table[T]{
		name:   name,
		toCode: make(map[T]string, len(variants)),
		toVal:  make(map[string]T, len(variants)),
		order:  make([]T, 0, len(variants)),
	}

	for _, v := range variants {
		if _, dup := t.toCode[v]; dup {
			return nil, fmt.Errorf("%w: %s lists variant %v twice", ErrIncompleteSymbolTable, name, v)
		}
		c, ok := code(v)
		if !ok {
			return nil, fmt.Errorf("%w: %s variant %v has no wire code", ErrIncompleteSymbolTable, name, v)
		}
		if prev, taken := t.toVal[c]; taken {
			return nil, fmt.Errorf("%w: %s code %q shared by %v and %v", ErrIncompleteSymbolTable, name, c, prev, v)
		}
		t.toCode[v] = c
		t.toVal[c] = v
		t.order = append(t.order, v)
	}

	return t, nil
}

// -----------------------------------------------------------------------------

// MustBuild is Build for package-level tables; a defective table stops the
// process at init.
func MustBuild[T comparable](name string, variants []T, code func(T) (string, bool)) *Table[T] {
	t, err := Build(name, variants, code)
	if err != nil {
		panic(err)
	}
	return t
}

// -----------------------------------------------------------------------------

// Name returns the table name used in diagnostics.
func (t *Table[T]) Name() string {
	return t.name
}

// Encode returns the wire code of v.
func (t *Table[T]) Encode(v T) (string, error) {
	c, ok := t.toCode[v]
	if !ok {
		return "", fmt.Errorf("%w: %s has no code for %v", ErrUnknownSymbol, t.name, v)
	}
	return c, nil
}

// Decode returns the variant registered under code.
func (t *Table[T]) Decode(code string) (T, error) {
	v, ok := t.toVal[code]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s has no variant for %q", ErrUnknownSymbol, t.name, code)
	}
	return v, nil
}

// Variants returns the variants in registration order.
func (t *Table[T]) Variants() []T {
	out := make([]T, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of variants.
func (t *Table[T]) Len() int {
	return len(t.order)
}
