// Package pod is a binary codec engine for plain-old-data records: it
// serializes structured in-memory values into compact byte streams and
// back.
//
// # Formats
//
// Three concrete encodings share one type catalog:
//
//   - Canonical: the default compact encoding; variant tags are a single
//     unsigned byte and nothing is padded or aligned.
//   - ZeroCopy: variant tags are 8 bytes and tagged payloads occupy
//     fixed-size slots, so a statically-sized value's wire layout matches
//     a fixed-offset in-memory layout and can be read straight out of a
//     mapped buffer.
//   - PassThrough: no tag width is established at this level; the nested
//     type's own encoding is used verbatim.
//
// Unpack defaults to Auto, which distinguishes Canonical from ZeroCopy by
// comparing the input length against the type's static size under 8-byte
// tags. Auto is only valid when the value occupies the entire input, i.e.
// at the outermost decode call.
//
// # Types
//
// Atomic types (U8..U64, I8..I64, F32, F64, Bool) are fixed-width and
// little-endian. Containers are built by parameterized constructors that
// always return the same Type identity for the same parameters:
//
//	pod.FixedArray(pod.U16, 4)
//	pod.FixedBytes(32)
//	pod.FixedString(8)
//	pod.Vec(pod.U8, pod.WithLengthType(pod.U16), pod.WithMaxLength(64))
//	pod.Bytes()
//	pod.String()
//	pod.Optional(pod.U32)
//
// Record codecs are scanned from struct declarations:
//
//	type Order struct {
//	    ID    uint64
//	    Note  string `pod:"fixed=16"`
//	    Items []uint16
//	    Prio  *uint8
//	}
//
//	orderType := pod.MustRecord[Order]()
//	raw, err := pod.Pack(orderType, order)
//	back, err := pod.Unpack(orderType, raw, pod.Checked())
//
// # Buffers
//
// Pack and Unpack own their buffer for the duration of one call and
// thread it through every nested step. A failed pack leaves the Writer
// partially filled; discard it rather than reuse it.
//
// # Interchange
//
// Every shipped type also implements the textual interchange hooks, the
// peer seam used by MarshalAs and UnmarshalAs with a pluggable Codec
// (JSON, MessagePack, YAML providers live in subpackages).
package pod

import (
	"fmt"
	"time"
)

// Option tunes a single Pack or Unpack call.
type Option func(*callOptions)

type callOptions struct {
	format    Format
	hasFormat bool
	checked   bool
}

// WithFormat selects the wire format. Pack defaults to Canonical, Unpack
// to Auto.
func WithFormat(f Format) Option {
	return func(o *callOptions) {
		o.format = f
		o.hasFormat = true
	}
}

// Checked makes Unpack fail with a residual-data error unless the entire
// input is consumed.
func Checked() Option {
	return func(o *callOptions) { o.checked = true }
}

// Pack encodes v as a standalone byte sequence.
func Pack(t Type, v any, opts ...Option) ([]byte, error) {
	o := callOptions{format: Canonical}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	emitPackStart(typeName(t), o.format)

	w := NewWriter()
	err := PackInto(t, w, v, o.format)
	emitPackComplete(typeName(t), o.format, w.Len(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Unpack decodes a standalone byte sequence produced by Pack.
func Unpack(t Type, data []byte, opts ...Option) (any, error) {
	o := callOptions{format: Auto}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	emitUnpackStart(typeName(t), o.format, len(data))

	r := NewReader(data)
	v, err := UnpackFrom(t, r, o.format)
	if err == nil && o.checked && r.Remaining() > 0 {
		err = &ResidualError{Remaining: r.Remaining()}
	}
	emitUnpackComplete(typeName(t), o.format, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// PackInto encodes v into w: the streaming variant used by embedding
// callers that compose several values into one buffer.
func PackInto(t Type, w *Writer, v any, f Format) error {
	ctx, err := negotiate(f)
	if err != nil {
		return err
	}
	return Binary.PackPartial(t, w, v, ctx)
}

// UnpackFrom decodes one value from r, leaving the cursor after it. Auto
// may only be used when the value spans all of r's remaining bytes.
func UnpackFrom(t Type, r *Reader, f Format) (any, error) {
	if f == Auto {
		detected, err := detectFormat(t, r)
		if err != nil {
			return nil, err
		}
		f = detected
	}
	ctx, err := negotiate(f)
	if err != nil {
		return nil, err
	}
	return Binary.UnpackPartial(t, r, ctx)
}

// Marshal packs a registered record value by its Go type.
func Marshal[T any](v T, opts ...Option) ([]byte, error) {
	t, err := Record[T]()
	if err != nil {
		return nil, err
	}
	return Pack(t, v, opts...)
}

// Unmarshal unpacks a registered record value by its Go type.
func Unmarshal[T any](data []byte, opts ...Option) (T, error) {
	var zero T
	t, err := Record[T]()
	if err != nil {
		return zero, err
	}
	v, err := Unpack(t, data, opts...)
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: decoded %T, want %T", ErrValue, v, zero)
	}
	return out, nil
}

func typeName(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.Name()
}
