package environ

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var ErrUndefined = errors.New("undefined identifier")

type Environ[T any] interface {
	Resolve(string) (T, error)
	Define(string, T)
	Names() []string
	Len() int
}

type Env[T any] struct {
	values map[string]T
	parent Environ[T]
}

func Empty[T any]() Environ[T] {
	return Enclosed[T](nil)
}

func Enclosed[T any](parent Environ[T]) Environ[T] {
	e := Env[T]{
		values: make(map[string]T),
		parent: parent,
	}
	return &e
}

func (e *Env[T]) Len() int {
	return len(e.values)
}

func (e *Env[T]) Names() []string {
	return slices.Sorted(maps.Keys(e.values))
}

func (e *Env[T]) Define(ident string, value T) {
	e.values[ident] = value
}

func (e *Env[T]) Resolve(ident string) (T, error) {
	value, ok := e.values[ident]
	if ok {
		return value, nil
	}
	if e.parent != nil {
		return e.parent.Resolve(ident)
	}
	var t T
	return t, fmt.Errorf("%s: %w", ident, ErrUndefined)
}

func (e *Env[T]) Unwrap() Environ[T] {
	if e.parent == nil {
		return e
	}
	return e.parent
}

func (e *Env[T]) Clone() Environ[T] {
	x := Env[T]{
		values: maps.Clone(e.values),
	}
	if c, ok := e.parent.(interface{ Clone() Environ[T] }); ok {
		x.parent = c.Clone()
	} else {
		x.parent = e.parent
	}
	return &x
}
