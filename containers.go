package pod

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"reflect"
)

// ContainerOption parameterizes a container constructor.
type ContainerOption func(*containerConfig)

type containerConfig struct {
	lenType Type
	max     int
	exact   bool
}

// WithLengthType selects the integer type used for the length prefix of a
// variable container. Default U32.
func WithLengthType(t Type) ContainerOption {
	return func(c *containerConfig) { c.lenType = t }
}

// WithMaxLength bounds the element or byte count of a variable container.
// Default 2^(bit width of the length type).
func WithMaxLength(n int) ContainerOption {
	return func(c *containerConfig) { c.max = n }
}

// Exact disables autopad on a fixed string: the encoded text must fill
// the declared width exactly, and trailing zero bytes are kept on decode.
func Exact() ContainerOption {
	return func(c *containerConfig) { c.exact = true }
}

func applyContainerOptions(opts []ContainerOption) containerConfig {
	c := containerConfig{lenType: U32}
	for _, opt := range opts {
		opt(&c)
	}
	if c.max == 0 {
		c.max = defaultMaxLength(c.lenType)
	}
	return c
}

// defaultMaxLength is everything the length type can express, capped at
// what fits in an int.
func defaultMaxLength(lenType Type) int {
	size, err := Binary.MaxSize(lenType, nil)
	if err != nil || size*8 >= 63 {
		return math.MaxInt
	}
	return 1 << (size * 8)
}

// satAdd and satMul keep the astronomically large worst-case bounds of
// default-max containers from wrapping around.
func satAdd(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

func satMul(a, b int) int {
	if a != 0 && b > math.MaxInt/a {
		return math.MaxInt
	}
	return a * b
}

// seq views v as an indexable sequence.
func seq(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return rv, false
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv, true
	default:
		return rv, false
	}
}

// toBytes views v as a byte blob. Byte arrays are copied: values reached
// through any are not addressable, so Bytes() cannot alias them.
func toBytes(v any) ([]byte, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, false
	}
	switch rv.Kind() {
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv.Bytes(), true
		}
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			out := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(out), rv)
			return out, true
		}
	}
	return nil, false
}

// toString views v as text.
func toString(v any) (string, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.String {
		return "", false
	}
	return rv.String(), true
}

// FixedArray returns the codec for exactly n elements of elem, written
// back to back with no prefix.
func FixedArray(elem Type, n int) Type {
	key := containerKey{kind: "FixedArray", elem: elem, length: n}
	return memoContainer(key, func() Type {
		return &fixedArrayType{
			name: fmt.Sprintf("FixedArray[%s, %d]", elem.Name(), n),
			elem: elem,
			n:    n,
		}
	})
}

type fixedArrayType struct {
	name string
	elem Type
	n    int
}

func (t *fixedArrayType) Name() string { return t.name }

func (t *fixedArrayType) Static() bool {
	s, err := Binary.Static(t.elem)
	return err == nil && s
}

func (t *fixedArrayType) MaxSize(ctx *Context) (int, error) {
	es, err := Binary.MaxSize(t.elem, ctx)
	if err != nil {
		return 0, err
	}
	return satMul(t.n, es), nil
}

func (t *fixedArrayType) PackPartial(w *Writer, v any, ctx *Context) error {
	rv, ok := seq(v)
	if !ok {
		return fmt.Errorf("%w: %s expects a sequence, got %T", ErrValue, t.name, v)
	}
	if rv.Len() != t.n {
		return fmt.Errorf("%w: %s expects exactly %d elements, got %d", ErrValue, t.name, t.n, rv.Len())
	}
	for i := 0; i < t.n; i++ {
		if err := Binary.PackPartial(t.elem, w, rv.Index(i).Interface(), ctx); err != nil {
			return wrapPath("pack", err, fmt.Sprintf("[%d]", i), t.name, t.elem.Name())
		}
	}
	return nil
}

func (t *fixedArrayType) UnpackPartial(r *Reader, ctx *Context) (any, error) {
	out := make([]any, t.n)
	for i := range out {
		v, err := Binary.UnpackPartial(t.elem, r, ctx)
		if err != nil {
			return nil, wrapPath("unpack", err, fmt.Sprintf("[%d]", i), t.name, t.elem.Name())
		}
		out[i] = v
	}
	return out, nil
}

func (t *fixedArrayType) ToText(v any) (any, error) {
	rv, ok := seq(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects a sequence, got %T", ErrValue, t.name, v)
	}
	if rv.Len() != t.n {
		return nil, fmt.Errorf("%w: %s expects exactly %d elements, got %d", ErrValue, t.name, t.n, rv.Len())
	}
	return seqToText(t.elem, rv)
}

func (t *fixedArrayType) FromText(v any) (any, error) {
	elems, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects a list, got %T", ErrValue, t.name, v)
	}
	if len(elems) != t.n {
		return nil, fmt.Errorf("%w: %s expects exactly %d elements, got %d", ErrValue, t.name, t.n, len(elems))
	}
	return seqFromText(t.elem, elems)
}

// FixedBytes returns the codec for a blob of exactly n bytes. Short input
// is zero-padded; over-length input is rejected as a bounds violation,
// matching the fixed string policy.
func FixedBytes(n int) Type {
	key := containerKey{kind: "FixedBytes", length: n}
	return memoContainer(key, func() Type {
		return &fixedBytesType{
			name: fmt.Sprintf("FixedBytes[%d]", n),
			n:    n,
		}
	})
}

type fixedBytesType struct {
	name string
	n    int
}

func (t *fixedBytesType) Name() string { return t.name }

func (t *fixedBytesType) Static() bool { return true }

func (t *fixedBytesType) MaxSize(*Context) (int, error) { return t.n, nil }

func (t *fixedBytesType) PackPartial(w *Writer, v any, _ *Context) error {
	b, ok := toBytes(v)
	if !ok {
		return fmt.Errorf("%w: %s expects bytes, got %T", ErrValue, t.name, v)
	}
	if len(b) > t.n {
		return &BoundsError{Type: t.name, Len: len(b), Max: t.n}
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err := w.Write(make([]byte, t.n-len(b)))
	return err
}

func (t *fixedBytesType) UnpackPartial(r *Reader, _ *Context) (any, error) {
	b, err := r.Next(t.n)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(b), nil
}

func (t *fixedBytesType) ToText(v any) (any, error) {
	b, ok := toBytes(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects bytes, got %T", ErrValue, t.name, v)
	}
	if len(b) > t.n {
		return nil, &BoundsError{Type: t.name, Len: len(b), Max: t.n}
	}
	return bytes.Clone(b), nil
}

func (t *fixedBytesType) FromText(v any) (any, error) {
	b, err := bytesFromText(t.name, v)
	if err != nil {
		return nil, err
	}
	if len(b) > t.n {
		return nil, &BoundsError{Type: t.name, Len: len(b), Max: t.n}
	}
	return b, nil
}

// FixedString returns the codec for UTF-8 text in a fixed width of n
// bytes. By default short text is zero-padded and decoding truncates at
// the first zero byte; with Exact the encoded text must fill the width
// and decoding keeps all n bytes.
func FixedString(n int, opts ...ContainerOption) Type {
	cfg := containerConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	key := containerKey{kind: "FixedStr", length: n, exact: cfg.exact}
	return memoContainer(key, func() Type {
		name := fmt.Sprintf("FixedStr[%d]", n)
		if cfg.exact {
			name = fmt.Sprintf("FixedStr[%d, exact]", n)
		}
		return &fixedStringType{name: name, n: n, autopad: !cfg.exact}
	})
}

type fixedStringType struct {
	name    string
	n       int
	autopad bool
}

func (t *fixedStringType) Name() string { return t.name }

func (t *fixedStringType) Static() bool { return true }

func (t *fixedStringType) MaxSize(*Context) (int, error) { return t.n, nil }

func (t *fixedStringType) PackPartial(w *Writer, v any, _ *Context) error {
	s, ok := toString(v)
	if !ok {
		return fmt.Errorf("%w: %s expects a string, got %T", ErrValue, t.name, v)
	}
	encoded := []byte(s)
	if len(encoded) > t.n {
		return &BoundsError{Type: t.name, Len: len(encoded), Max: t.n}
	}
	if len(encoded) < t.n && !t.autopad {
		return fmt.Errorf("%w: %s requires exactly %d encoded bytes, got %d", ErrValue, t.name, t.n, len(encoded))
	}
	if _, err := w.Write(encoded); err != nil {
		return err
	}
	_, err := w.Write(make([]byte, t.n-len(encoded)))
	return err
}

func (t *fixedStringType) UnpackPartial(r *Reader, _ *Context) (any, error) {
	b, err := r.Next(t.n)
	if err != nil {
		return nil, err
	}
	if t.autopad {
		if i := bytes.IndexByte(b, 0); i >= 0 {
			b = b[:i]
		}
	}
	return string(b), nil
}

func (t *fixedStringType) ToText(v any) (any, error) {
	s, ok := toString(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects a string, got %T", ErrValue, t.name, v)
	}
	return s, nil
}

func (t *fixedStringType) FromText(v any) (any, error) {
	s, ok := toString(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects a string, got %T", ErrValue, t.name, v)
	}
	return s, nil
}

// Vec returns the codec for a variable-length sequence of elem: a length
// prefix followed by that many element encodings.
func Vec(elem Type, opts ...ContainerOption) Type {
	cfg := applyContainerOptions(opts)
	key := containerKey{kind: "Vec", elem: elem, lenType: cfg.lenType, max: cfg.max}
	return memoContainer(key, func() Type {
		return &vecType{
			name:    fmt.Sprintf("Vec[%s, len=%s, max=%d]", elem.Name(), cfg.lenType.Name(), cfg.max),
			elem:    elem,
			lenType: cfg.lenType,
			max:     cfg.max,
		}
	})
}

type vecType struct {
	name    string
	elem    Type
	lenType Type
	max     int
}

func (t *vecType) Name() string { return t.name }

func (t *vecType) Static() bool { return false }

func (t *vecType) MaxSize(ctx *Context) (int, error) {
	ls, err := Binary.MaxSize(t.lenType, ctx)
	if err != nil {
		return 0, err
	}
	es, err := Binary.MaxSize(t.elem, ctx)
	if err != nil {
		return 0, err
	}
	return satAdd(ls, satMul(t.max, es)), nil
}

func (t *vecType) PackPartial(w *Writer, v any, ctx *Context) error {
	rv, ok := seq(v)
	if !ok {
		return fmt.Errorf("%w: %s expects a sequence, got %T", ErrValue, t.name, v)
	}
	if rv.Len() > t.max {
		return &BoundsError{Type: t.name, Len: rv.Len(), Max: t.max}
	}
	if err := Binary.PackPartial(t.lenType, w, rv.Len(), ctx); err != nil {
		return err
	}
	for i := 0; i < rv.Len(); i++ {
		if err := Binary.PackPartial(t.elem, w, rv.Index(i).Interface(), ctx); err != nil {
			return wrapPath("pack", err, fmt.Sprintf("[%d]", i), t.name, t.elem.Name())
		}
	}
	return nil
}

func (t *vecType) UnpackPartial(r *Reader, ctx *Context) (any, error) {
	n, err := unpackLength(t.lenType, r, ctx)
	if err != nil {
		return nil, err
	}
	if n > t.max {
		return nil, &BoundsError{Type: t.name, Len: n, Max: t.max}
	}
	out := make([]any, 0, min(n, 1024))
	for i := 0; i < n; i++ {
		v, err := Binary.UnpackPartial(t.elem, r, ctx)
		if err != nil {
			return nil, wrapPath("unpack", err, fmt.Sprintf("[%d]", i), t.name, t.elem.Name())
		}
		out = append(out, v)
	}
	return out, nil
}

func (t *vecType) ToText(v any) (any, error) {
	rv, ok := seq(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects a sequence, got %T", ErrValue, t.name, v)
	}
	if rv.Len() > t.max {
		return nil, &BoundsError{Type: t.name, Len: rv.Len(), Max: t.max}
	}
	return seqToText(t.elem, rv)
}

func (t *vecType) FromText(v any) (any, error) {
	elems, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects a list, got %T", ErrValue, t.name, v)
	}
	if len(elems) > t.max {
		return nil, &BoundsError{Type: t.name, Len: len(elems), Max: t.max}
	}
	return seqFromText(t.elem, elems)
}

// Bytes returns the codec for a length-prefixed byte blob.
func Bytes(opts ...ContainerOption) Type {
	cfg := applyContainerOptions(opts)
	key := containerKey{kind: "Bytes", lenType: cfg.lenType, max: cfg.max}
	return memoContainer(key, func() Type {
		return &varBytesType{
			name:    fmt.Sprintf("Bytes[len=%s, max=%d]", cfg.lenType.Name(), cfg.max),
			lenType: cfg.lenType,
			max:     cfg.max,
		}
	})
}

type varBytesType struct {
	name    string
	lenType Type
	max     int
}

func (t *varBytesType) Name() string { return t.name }

func (t *varBytesType) Static() bool { return false }

func (t *varBytesType) MaxSize(ctx *Context) (int, error) {
	ls, err := Binary.MaxSize(t.lenType, ctx)
	if err != nil {
		return 0, err
	}
	return satAdd(ls, t.max), nil
}

func (t *varBytesType) PackPartial(w *Writer, v any, ctx *Context) error {
	b, ok := toBytes(v)
	if !ok {
		return fmt.Errorf("%w: %s expects bytes, got %T", ErrValue, t.name, v)
	}
	if len(b) > t.max {
		return &BoundsError{Type: t.name, Len: len(b), Max: t.max}
	}
	if err := Binary.PackPartial(t.lenType, w, len(b), ctx); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func (t *varBytesType) UnpackPartial(r *Reader, ctx *Context) (any, error) {
	n, err := unpackLength(t.lenType, r, ctx)
	if err != nil {
		return nil, err
	}
	if n > t.max {
		return nil, &BoundsError{Type: t.name, Len: n, Max: t.max}
	}
	b, err := r.Next(n)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(b), nil
}

func (t *varBytesType) ToText(v any) (any, error) {
	b, ok := toBytes(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects bytes, got %T", ErrValue, t.name, v)
	}
	if len(b) > t.max {
		return nil, &BoundsError{Type: t.name, Len: len(b), Max: t.max}
	}
	return bytes.Clone(b), nil
}

func (t *varBytesType) FromText(v any) (any, error) {
	b, err := bytesFromText(t.name, v)
	if err != nil {
		return nil, err
	}
	if len(b) > t.max {
		return nil, &BoundsError{Type: t.name, Len: len(b), Max: t.max}
	}
	return b, nil
}

// String returns the codec for length-prefixed UTF-8 text.
func String(opts ...ContainerOption) Type {
	cfg := applyContainerOptions(opts)
	key := containerKey{kind: "Str", lenType: cfg.lenType, max: cfg.max}
	return memoContainer(key, func() Type {
		return &varStringType{
			name:    fmt.Sprintf("Str[len=%s, max=%d]", cfg.lenType.Name(), cfg.max),
			lenType: cfg.lenType,
			max:     cfg.max,
		}
	})
}

type varStringType struct {
	name    string
	lenType Type
	max     int
}

func (t *varStringType) Name() string { return t.name }

func (t *varStringType) Static() bool { return false }

func (t *varStringType) MaxSize(ctx *Context) (int, error) {
	ls, err := Binary.MaxSize(t.lenType, ctx)
	if err != nil {
		return 0, err
	}
	return satAdd(ls, t.max), nil
}

func (t *varStringType) PackPartial(w *Writer, v any, ctx *Context) error {
	s, ok := toString(v)
	if !ok {
		return fmt.Errorf("%w: %s expects a string, got %T", ErrValue, t.name, v)
	}
	encoded := []byte(s)
	if len(encoded) > t.max {
		return &BoundsError{Type: t.name, Len: len(encoded), Max: t.max}
	}
	if err := Binary.PackPartial(t.lenType, w, len(encoded), ctx); err != nil {
		return err
	}
	_, err := w.Write(encoded)
	return err
}

func (t *varStringType) UnpackPartial(r *Reader, ctx *Context) (any, error) {
	n, err := unpackLength(t.lenType, r, ctx)
	if err != nil {
		return nil, err
	}
	if n > t.max {
		return nil, &BoundsError{Type: t.name, Len: n, Max: t.max}
	}
	b, err := r.Next(n)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *varStringType) ToText(v any) (any, error) {
	s, ok := toString(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects a string, got %T", ErrValue, t.name, v)
	}
	return s, nil
}

func (t *varStringType) FromText(v any) (any, error) {
	s, ok := toString(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects a string, got %T", ErrValue, t.name, v)
	}
	return s, nil
}

// unpackLength reads a length prefix via the catalog and narrows it to a
// non-negative int.
func unpackLength(lenType Type, r *Reader, ctx *Context) (int, error) {
	raw, err := Binary.UnpackPartial(lenType, r, ctx)
	if err != nil {
		return 0, err
	}
	n, ok := toUint64(raw)
	if !ok || n > math.MaxInt {
		return 0, fmt.Errorf("%w: length prefix %v is not a valid count", ErrValue, raw)
	}
	return int(n), nil
}

func seqToText(elem Type, rv reflect.Value) (any, error) {
	out := make([]any, rv.Len())
	for i := range out {
		v, err := Text.ToText(elem, rv.Index(i).Interface())
		if err != nil {
			return nil, wrapPath("pack", err, fmt.Sprintf("[%d]", i), "list", elem.Name())
		}
		out[i] = v
	}
	return out, nil
}

func seqFromText(elem Type, elems []any) (any, error) {
	out := make([]any, len(elems))
	for i, e := range elems {
		v, err := Text.FromText(elem, e)
		if err != nil {
			return nil, wrapPath("unpack", err, fmt.Sprintf("[%d]", i), "list", elem.Name())
		}
		out[i] = v
	}
	return out, nil
}

// bytesFromText accepts raw bytes (binary-capable codecs) or a base64
// string (JSON-style codecs).
func bytesFromText(name string, v any) ([]byte, error) {
	if b, ok := toBytes(v); ok {
		return bytes.Clone(b), nil
	}
	if s, ok := toString(v); ok {
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrValue, name, err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: %s expects bytes or base64 text, got %T", ErrValue, name, v)
}
