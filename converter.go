package pod

// Type is a value-level descriptor for one kind of encodable value:
// atomic, composite record, or generated container. Types are immutable
// once constructed and safe to share.
type Type interface {
	// Name identifies the type in diagnostics, e.g. "U32" or
	// "Vec[U8, len=U32, max=16]".
	Name() string
}

// Context carries the negotiated tag width through a single pack or
// unpack call tree. It is created by format negotiation at the top-level
// call and threaded as an explicit parameter into every nested step, so
// concurrent operations with different formats never share state.
//
// A nil Context means no tag width was negotiated (pass-through); tagged
// types fail with ErrNoTag in that case.
type Context struct {
	// Tag is the integer type used to encode variant tags right now.
	Tag Type
}

// tag returns the active tag type, or nil when none was negotiated.
func (c *Context) tag() Type {
	if c == nil {
		return nil
	}
	return c.Tag
}

// BinaryType is the capability seam for the bytes catalog. Implementing
// it advertises that a type knows its own binary encoding; record types
// and generated container types plug into the catalog through these four
// hooks without the catalog knowing their internals.
type BinaryType interface {
	Type

	// Static reports whether every legal value encodes to the same length.
	Static() bool

	// MaxSize returns an upper bound on encoded size. For static types
	// the bound is exact.
	MaxSize(ctx *Context) (int, error)

	// PackPartial appends the encoding of v to w, recursing through the
	// catalog for element types.
	PackPartial(w *Writer, v any, ctx *Context) error

	// UnpackPartial consumes one value from r.
	UnpackPartial(r *Reader, ctx *Context) (any, error)
}

// TextType is the capability seam for the textual interchange catalog.
// It mirrors BinaryType but converts to and from codec-neutral values
// (numbers, strings, []any, map[string]any) instead of bytes. Any type
// registered for binary encoding is expected to be registrable for
// textual encoding independently.
type TextType interface {
	Type

	// ToText converts v to an interchange-plain value.
	ToText(v any) (any, error)

	// FromText converts an interchange-plain value back to the type's
	// canonical representation.
	FromText(v any) (any, error)
}

// Converter performs a single step of packing or unpacking for the types
// it matches. Converters are stateless; all behavior is a pure function
// of the type descriptor and buffer contents.
type Converter interface {
	Static(t Type) bool
	MaxSize(t Type, ctx *Context) (int, error)
	PackPartial(t Type, w *Writer, v any, ctx *Context) error
	UnpackPartial(t Type, r *Reader, ctx *Context) (any, error)
}

// TextConverter is the textual counterpart of Converter.
type TextConverter interface {
	ToText(t Type, v any) (any, error)
	FromText(t Type, v any) (any, error)
}

// selfConverter routes catalog operations to the hooks a BinaryType
// implements itself.
type selfConverter struct{}

func (selfConverter) Static(t Type) bool {
	return t.(BinaryType).Static()
}

func (selfConverter) MaxSize(t Type, ctx *Context) (int, error) {
	return t.(BinaryType).MaxSize(ctx)
}

func (selfConverter) PackPartial(t Type, w *Writer, v any, ctx *Context) error {
	return t.(BinaryType).PackPartial(w, v, ctx)
}

func (selfConverter) UnpackPartial(t Type, r *Reader, ctx *Context) (any, error) {
	return t.(BinaryType).UnpackPartial(r, ctx)
}

// resolveSelfBinary matches any type that carries its own binary hooks.
func resolveSelfBinary(t Type) (Converter, bool) {
	if _, ok := t.(BinaryType); ok {
		return selfConverter{}, true
	}
	return nil, false
}

// selfTextConverter routes catalog operations to TextType hooks.
type selfTextConverter struct{}

func (selfTextConverter) ToText(t Type, v any) (any, error) {
	return t.(TextType).ToText(v)
}

func (selfTextConverter) FromText(t Type, v any) (any, error) {
	return t.(TextType).FromText(v)
}

// resolveSelfText matches any type that carries its own text hooks.
func resolveSelfText(t Type) (TextConverter, bool) {
	if _, ok := t.(TextType); ok {
		return selfTextConverter{}, true
	}
	return nil, false
}
