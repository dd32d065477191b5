package pod

import (
	"fmt"
	"sync"
)

// Resolver maps a type to a converter of kind C, reporting false when the
// type is not one of its.
type Resolver[C any] func(Type) (C, bool)

// Catalog is an ordered registry of type-to-converter resolvers.
// Resolvers are tried in registration order and the first match wins, so
// registration order is part of the contract: a catalog holding two
// resolvers that both match a type silently uses the earlier one.
//
// Catalogs are populated at init time and safe for concurrent resolution
// afterwards.
type Catalog[C any] struct {
	name string

	mu        sync.RWMutex
	resolvers []Resolver[C]
}

// NewCatalog returns an empty catalog. The name appears in resolution
// errors.
func NewCatalog[C any](name string) *Catalog[C] {
	return &Catalog[C]{name: name}
}

// Register appends a resolver. Later registrations never shadow earlier
// ones.
func (c *Catalog[C]) Register(r Resolver[C]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolvers = append(c.resolvers, r)
}

// Resolve returns the first converter whose resolver matches t, or an
// error naming the type and catalog when none does.
func (c *Catalog[C]) Resolve(t Type) (C, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, r := range c.resolvers {
		if conv, ok := r(t); ok {
			return conv, nil
		}
	}

	var zero C
	if t == nil {
		return zero, fmt.Errorf("%w: <nil> (catalog %s)", ErrNoConverter, c.name)
	}
	return zero, fmt.Errorf("%w: %s (catalog %s)", ErrNoConverter, t.Name(), c.name)
}

// BinaryCatalog resolves types to binary Converters and adds the
// resolve-then-delegate convenience operations every codec step uses.
type BinaryCatalog struct {
	*Catalog[Converter]
}

// Static resolves t and reports whether its encoded size is identical for
// every legal value.
func (c BinaryCatalog) Static(t Type) (bool, error) {
	conv, err := c.Resolve(t)
	if err != nil {
		return false, err
	}
	return conv.Static(t), nil
}

// MaxSize resolves t and computes an upper bound on its encoded size
// under the given tag context. For static types the bound is exact.
func (c BinaryCatalog) MaxSize(t Type, ctx *Context) (int, error) {
	conv, err := c.Resolve(t)
	if err != nil {
		return 0, err
	}
	return conv.MaxSize(t, ctx)
}

// PackPartial resolves t and appends one value's encoding to w.
func (c BinaryCatalog) PackPartial(t Type, w *Writer, v any, ctx *Context) error {
	conv, err := c.Resolve(t)
	if err != nil {
		return err
	}
	return conv.PackPartial(t, w, v, ctx)
}

// UnpackPartial resolves t and consumes one value from r.
func (c BinaryCatalog) UnpackPartial(t Type, r *Reader, ctx *Context) (any, error) {
	conv, err := c.Resolve(t)
	if err != nil {
		return nil, err
	}
	return conv.UnpackPartial(t, r, ctx)
}

// TextCatalog resolves types to TextConverters, the interchange mirror of
// the binary catalog.
type TextCatalog struct {
	*Catalog[TextConverter]
}

// ToText resolves t and converts v to an interchange-plain value.
func (c TextCatalog) ToText(t Type, v any) (any, error) {
	conv, err := c.Resolve(t)
	if err != nil {
		return nil, err
	}
	return conv.ToText(t, v)
}

// FromText resolves t and converts an interchange-plain value back.
func (c TextCatalog) FromText(t Type, v any) (any, error) {
	conv, err := c.Resolve(t)
	if err != nil {
		return nil, err
	}
	return conv.FromText(t, v)
}

// Binary is the process-wide bytes catalog. Every type shipped with this
// package implements its own hooks, so a single self-describing resolver
// covers them; external converters may be registered alongside it.
var Binary = func() BinaryCatalog {
	c := BinaryCatalog{NewCatalog[Converter]("binary")}
	c.Register(resolveSelfBinary)
	return c
}()

// Text is the process-wide textual interchange catalog.
var Text = func() TextCatalog {
	c := TextCatalog{NewCatalog[TextConverter]("text")}
	c.Register(resolveSelfText)
	return c
}()
