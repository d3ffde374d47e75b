package simplescene

import (
	"context"
	"fmt"
)

// Property is a bound get/set capability pair for a single slot. Accessors
// produce them through Bind; they can also be built directly from arbitrary
// funcs, which is how a retired attribute keeps working while its storage
// moves elsewhere: route the old name through a Property whose funcs read
// and write the replacement.
type Property[T any] struct {
	get func(context.Context) (T, error)
	set func(context.Context, T) error
}

// NewProperty builds a property from a getter and a setter. Either may be
// nil, producing a write-only or read-only property.
func NewProperty[T any](get func(context.Context) (T, error), set func(context.Context, T) error) *Property[T] {
	return &Property[T]{get: get, set: set}
}

func (p *Property[T]) Get(ctx context.Context) (T, error) {
	if p.get == nil {
		var zero T
		return zero, fmt.Errorf("property is write-only")
	}
	return p.get(ctx)
}

func (p *Property[T]) Set(ctx context.Context, value T) error {
	if p.set == nil {
		return fmt.Errorf("property is read-only")
	}
	return p.set(ctx, value)
}
