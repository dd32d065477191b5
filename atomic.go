package pod

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
)

// Atomic fixed-width types, little-endian on the wire. All are static
// with exact sizes, and all implement both the binary and the textual
// capability hooks.
var (
	U8  Type = newUint("U8", 1)
	U16 Type = newUint("U16", 2)
	U32 Type = newUint("U32", 4)
	U64 Type = newUint("U64", 8)

	I8  Type = newInt("I8", 1)
	I16 Type = newInt("I16", 2)
	I32 Type = newInt("I32", 4)
	I64 Type = newInt("I64", 8)

	F32 Type = newFloat("F32", 4)
	F64 Type = newFloat("F64", 8)

	Bool Type = newBool()
)

// atomicType is a leaf converter: fixed width, no recursion, no tags.
type atomicType struct {
	name string
	size int
	enc  func(b []byte, v any) error
	dec  func(b []byte) (any, error)
}

func (t *atomicType) Name() string { return t.name }

func (t *atomicType) Static() bool { return true }

func (t *atomicType) MaxSize(*Context) (int, error) { return t.size, nil }

func (t *atomicType) PackPartial(w *Writer, v any, _ *Context) error {
	b := make([]byte, t.size)
	if err := t.enc(b, v); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func (t *atomicType) UnpackPartial(r *Reader, _ *Context) (any, error) {
	b, err := r.Next(t.size)
	if err != nil {
		return nil, err
	}
	return t.dec(b)
}

// ToText coerces v to the type's canonical representation by running it
// through the wire codec, which also applies the range check.
func (t *atomicType) ToText(v any) (any, error) {
	b := make([]byte, t.size)
	if err := t.enc(b, v); err != nil {
		return nil, err
	}
	return t.dec(b)
}

func (t *atomicType) FromText(v any) (any, error) {
	return t.ToText(v)
}

func newUint(name string, size int) *atomicType {
	return &atomicType{
		name: name,
		size: size,
		enc: func(b []byte, v any) error {
			n, ok := toUint64(v)
			if !ok {
				return fmt.Errorf("%w: %s expects an unsigned integer, got %T", ErrValue, name, v)
			}
			if size < 8 && n >= 1<<(8*size) {
				return fmt.Errorf("%w: %d out of range for %s", ErrValue, n, name)
			}
			putUintLE(b, n)
			return nil
		},
		dec: func(b []byte) (any, error) {
			n := uintLE(b)
			switch size {
			case 1:
				return uint8(n), nil
			case 2:
				return uint16(n), nil
			case 4:
				return uint32(n), nil
			default:
				return n, nil
			}
		},
	}
}

func newInt(name string, size int) *atomicType {
	bits := 8 * size
	return &atomicType{
		name: name,
		size: size,
		enc: func(b []byte, v any) error {
			n, ok := toInt64(v)
			if !ok {
				return fmt.Errorf("%w: %s expects an integer, got %T", ErrValue, name, v)
			}
			if size < 8 && (n < -(1<<(bits-1)) || n >= 1<<(bits-1)) {
				return fmt.Errorf("%w: %d out of range for %s", ErrValue, n, name)
			}
			putUintLE(b, uint64(n))
			return nil
		},
		dec: func(b []byte) (any, error) {
			n := uintLE(b)
			switch size {
			case 1:
				return int8(n), nil
			case 2:
				return int16(n), nil
			case 4:
				return int32(n), nil
			default:
				return int64(n), nil
			}
		},
	}
}

func newFloat(name string, size int) *atomicType {
	return &atomicType{
		name: name,
		size: size,
		enc: func(b []byte, v any) error {
			f, ok := toFloat64(v)
			if !ok {
				return fmt.Errorf("%w: %s expects a float, got %T", ErrValue, name, v)
			}
			if size == 4 {
				binary.LittleEndian.PutUint32(b, math.Float32bits(float32(f)))
			} else {
				binary.LittleEndian.PutUint64(b, math.Float64bits(f))
			}
			return nil
		},
		dec: func(b []byte) (any, error) {
			if size == 4 {
				return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
			}
			return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
		},
	}
}

func newBool() *atomicType {
	return &atomicType{
		name: "Bool",
		size: 1,
		enc: func(b []byte, v any) error {
			rv := reflect.ValueOf(v)
			if !rv.IsValid() || rv.Kind() != reflect.Bool {
				return fmt.Errorf("%w: Bool expects a bool, got %T", ErrValue, v)
			}
			if rv.Bool() {
				b[0] = 1
			}
			return nil
		},
		dec: func(b []byte) (any, error) {
			switch b[0] {
			case 0:
				return false, nil
			case 1:
				return true, nil
			default:
				return nil, fmt.Errorf("%w: invalid bool byte 0x%02x", ErrValue, b[0])
			}
		},
	}
}

func putUintLE(b []byte, n uint64) {
	for i := range b {
		b[i] = byte(n >> (8 * i))
	}
}

func uintLE(b []byte) uint64 {
	var n uint64
	for i, c := range b {
		n |= uint64(c) << (8 * i)
	}
	return n
}

// toUint64 coerces any integer-kinded value (including named types and
// integral floats from interchange decoding) to uint64.
func toUint64(v any) (uint64, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return 0, false
	}
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f < 0 || f != math.Trunc(f) || f > math.MaxUint64 {
			return 0, false
		}
		return uint64(f), true
	default:
		return 0, false
	}
}

func toInt64(v any) (int64, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return 0, false
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := rv.Uint()
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || f < math.MinInt64 || f > math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}

func toFloat64(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return 0, false
	}
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	default:
		return 0, false
	}
}
