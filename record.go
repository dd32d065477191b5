package pod

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/zoobzio/sentinel"
)

func init() {
	// Register the pod tag with sentinel
	sentinel.Tag("pod")
}

// Record returns the codec for struct type T. The field list is scanned
// once, at registration time, into an immutable ordered descriptor list;
// repeated calls return the same Type identity.
//
// Fields are encoded in declared order, each field's encoding
// concatenated with no padding, so declaration order is part of the wire
// contract. Element encodings are derived from the Go field types, tuned
// by the `pod` struct tag:
//
//	Name  string `pod:"fixed=8"`        // FixedStr[8], autopad
//	Code  string `pod:"fixed=4,exact"`  // FixedStr[4], no autopad
//	Blob  []byte `pod:"fixed=32"`       // FixedBytes[32]
//	Items []U16  `pod:"len=u16,max=64"` // Vec with U16 length prefix
//	Skip  int    `pod:"-"`              // not encoded
//
// Pointer fields become Optional of the pointee's codec.
func Record[T any]() (Type, error) {
	rt := reflect.TypeFor[T]()
	return memoRecord(rt, func() (Type, error) {
		if rt.Kind() != reflect.Struct {
			return nil, fmt.Errorf("%w: Record requires a struct, got %s", ErrValue, rt)
		}
		return buildRecord(rt, sentinel.Scan[T]())
	})
}

// MustRecord is Record for package-level type variables; it panics on a
// malformed declaration.
func MustRecord[T any]() Type {
	t, err := Record[T]()
	if err != nil {
		panic(err)
	}
	return t
}

// recordFor builds the codec for a nested struct reached through a field.
func recordFor(rt reflect.Type) (Type, error) {
	return memoRecord(rt, func() (Type, error) {
		return buildRecord(rt, scanType(rt))
	})
}

// fieldDesc is one entry of a record's immutable field plan.
type fieldDesc struct {
	name  string
	typ   Type
	index []int // reflect.Value.FieldByIndex access path
}

type recordType struct {
	name   string
	goType reflect.Type
	fields []fieldDesc
}

func buildRecord(rt reflect.Type, meta sentinel.Metadata) (Type, error) {
	rec := &recordType{
		name:   meta.TypeName,
		goType: rt,
	}
	if rec.name == "" {
		rec.name = rt.String()
	}

	for _, field := range meta.Fields {
		tag, err := parseFieldTag(field.Tags["pod"])
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", rec.name, field.Name, err)
		}
		if tag.skip {
			continue
		}

		ft, err := fieldType(field.ReflectType, tag)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", rec.name, field.Name, err)
		}

		rec.fields = append(rec.fields, fieldDesc{
			name:  field.Name,
			typ:   ft,
			index: append([]int{}, field.Index...),
		})
	}

	emitRecordRegistered(rec.name, len(rec.fields))
	return rec, nil
}

// scanType returns metadata for a struct type reached by reflection,
// consulting sentinel's registry first.
func scanType(rt reflect.Type) sentinel.Metadata {
	if meta, ok := sentinel.Lookup(rt.String()); ok {
		return meta
	}

	meta := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		tags := make(map[string]string)
		if val, ok := sf.Tag.Lookup("pod"); ok {
			tags["pod"] = val
		}

		meta.Fields = append(meta.Fields, sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        tags,
		})
	}

	return meta
}

// fieldTag carries the parsed `pod` tag options for one field.
type fieldTag struct {
	skip    bool
	fixed   int
	lenType Type
	max     int
	exact   bool
}

var lengthTypes = map[string]Type{
	"u8":  U8,
	"u16": U16,
	"u32": U32,
	"u64": U64,
}

func parseFieldTag(tag string) (fieldTag, error) {
	var ft fieldTag
	if tag == "" {
		return ft, nil
	}
	if tag == "-" {
		ft.skip = true
		return ft, nil
	}

	for _, part := range strings.Split(tag, ",") {
		key, val, hasVal := strings.Cut(part, "=")
		switch key {
		case "fixed":
			n, err := strconv.Atoi(val)
			if err != nil || n <= 0 {
				return ft, fmt.Errorf("%w: fixed=%q", ErrInvalidTag, val)
			}
			ft.fixed = n
		case "len":
			lt, ok := lengthTypes[val]
			if !ok {
				return ft, fmt.Errorf("%w: len=%q (want u8, u16, u32, or u64)", ErrInvalidTag, val)
			}
			ft.lenType = lt
		case "max":
			n, err := strconv.Atoi(val)
			if err != nil || n <= 0 {
				return ft, fmt.Errorf("%w: max=%q", ErrInvalidTag, val)
			}
			ft.max = n
		case "exact":
			if hasVal {
				return ft, fmt.Errorf("%w: exact takes no value", ErrInvalidTag)
			}
			ft.exact = true
		default:
			return ft, fmt.Errorf("%w: unknown option %q", ErrInvalidTag, key)
		}
	}
	return ft, nil
}

// fieldType maps a Go field type to its wire codec.
func fieldType(rt reflect.Type, tag fieldTag) (Type, error) {
	switch rt.Kind() {
	case reflect.Bool:
		return Bool, nil
	case reflect.Uint8:
		return U8, nil
	case reflect.Uint16:
		return U16, nil
	case reflect.Uint32:
		return U32, nil
	case reflect.Uint64, reflect.Uint:
		return U64, nil
	case reflect.Int8:
		return I8, nil
	case reflect.Int16:
		return I16, nil
	case reflect.Int32:
		return I32, nil
	case reflect.Int64, reflect.Int:
		return I64, nil
	case reflect.Float32:
		return F32, nil
	case reflect.Float64:
		return F64, nil

	case reflect.String:
		if tag.fixed > 0 {
			if tag.exact {
				return FixedString(tag.fixed, Exact()), nil
			}
			return FixedString(tag.fixed), nil
		}
		return String(tag.varOptions()...), nil

	case reflect.Slice:
		if rt.Elem().Kind() == reflect.Uint8 {
			if tag.fixed > 0 {
				return FixedBytes(tag.fixed), nil
			}
			return Bytes(tag.varOptions()...), nil
		}
		elem, err := fieldType(rt.Elem(), fieldTag{})
		if err != nil {
			return nil, err
		}
		return Vec(elem, tag.varOptions()...), nil

	case reflect.Array:
		if rt.Elem().Kind() == reflect.Uint8 {
			return FixedBytes(rt.Len()), nil
		}
		elem, err := fieldType(rt.Elem(), fieldTag{})
		if err != nil {
			return nil, err
		}
		return FixedArray(elem, rt.Len()), nil

	case reflect.Struct:
		return recordFor(rt)

	case reflect.Pointer:
		elem, err := fieldType(rt.Elem(), tag)
		if err != nil {
			return nil, err
		}
		return Optional(elem), nil

	default:
		return nil, fmt.Errorf("%w: unsupported field type %s", ErrValue, rt)
	}
}

func (t fieldTag) varOptions() []ContainerOption {
	var opts []ContainerOption
	if t.lenType != nil {
		opts = append(opts, WithLengthType(t.lenType))
	}
	if t.max > 0 {
		opts = append(opts, WithMaxLength(t.max))
	}
	return opts
}

func (t *recordType) Name() string { return t.name }

// Static is the logical AND over all fields.
func (t *recordType) Static() bool {
	for _, f := range t.fields {
		s, err := Binary.Static(f.typ)
		if err != nil || !s {
			return false
		}
	}
	return true
}

// MaxSize is the sum of the fields' sizes; exact when every field is
// static.
func (t *recordType) MaxSize(ctx *Context) (int, error) {
	total := 0
	for _, f := range t.fields {
		size, err := Binary.MaxSize(f.typ, ctx)
		if err != nil {
			return 0, wrapPath("size", err, f.name, t.name, f.typ.Name())
		}
		total = satAdd(total, size)
	}
	return total, nil
}

func (t *recordType) PackPartial(w *Writer, v any, ctx *Context) error {
	rv, err := t.recordValue(v)
	if err != nil {
		return err
	}
	for _, f := range t.fields {
		value := rv.FieldByIndex(f.index).Interface()
		if err := Binary.PackPartial(f.typ, w, value, ctx); err != nil {
			return wrapPath("pack", err, f.name, t.name, f.typ.Name())
		}
	}
	return nil
}

// UnpackPartial decodes every field in declared order and constructs the
// record only after all of them succeed.
func (t *recordType) UnpackPartial(r *Reader, ctx *Context) (any, error) {
	values := make([]any, len(t.fields))
	for i, f := range t.fields {
		v, err := Binary.UnpackPartial(f.typ, r, ctx)
		if err != nil {
			return nil, wrapPath("unpack", err, f.name, t.name, f.typ.Name())
		}
		values[i] = v
	}

	out := reflect.New(t.goType).Elem()
	for i, f := range t.fields {
		if err := assign(out.FieldByIndex(f.index), values[i]); err != nil {
			return nil, wrapPath("unpack", err, f.name, t.name, f.typ.Name())
		}
	}
	return out.Interface(), nil
}

func (t *recordType) ToText(v any) (any, error) {
	rv, err := t.recordValue(v)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(t.fields))
	for _, f := range t.fields {
		tv, err := Text.ToText(f.typ, rv.FieldByIndex(f.index).Interface())
		if err != nil {
			return nil, wrapPath("pack", err, f.name, t.name, f.typ.Name())
		}
		out[f.name] = tv
	}
	return out, nil
}

func (t *recordType) FromText(v any) (any, error) {
	fields, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects a map, got %T", ErrValue, t.name, v)
	}

	out := reflect.New(t.goType).Elem()
	for _, f := range t.fields {
		raw, ok := fields[f.name]
		if !ok {
			return nil, fmt.Errorf("%w: %s: missing field %s", ErrValue, t.name, f.name)
		}
		fv, err := Text.FromText(f.typ, raw)
		if err != nil {
			return nil, wrapPath("unpack", err, f.name, t.name, f.typ.Name())
		}
		if err := assign(out.FieldByIndex(f.index), fv); err != nil {
			return nil, wrapPath("unpack", err, f.name, t.name, f.typ.Name())
		}
	}
	return out.Interface(), nil
}

// recordValue checks that v (or its pointee) is the record's struct type.
func (t *recordType) recordValue(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if !rv.IsValid() || rv.Type() != t.goType {
		return reflect.Value{}, fmt.Errorf("%w: %s expects %s, got %T", ErrValue, t.name, t.goType, v)
	}
	return rv, nil
}

// assign stores a decoded value into a struct field, allocating pointers
// and rebuilding slices and arrays element by element.
func assign(target reflect.Value, v any) error {
	if v == nil {
		target.SetZero()
		return nil
	}

	if target.Kind() == reflect.Pointer {
		p := reflect.New(target.Type().Elem())
		if err := assign(p.Elem(), v); err != nil {
			return err
		}
		target.Set(p)
		return nil
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(target.Type()) {
		target.Set(rv)
		return nil
	}
	if numericKind(rv.Kind()) && numericKind(target.Kind()) ||
		rv.Kind() == reflect.String && target.Kind() == reflect.String {
		if rv.Type().ConvertibleTo(target.Type()) {
			target.Set(rv.Convert(target.Type()))
			return nil
		}
	}

	if elems, ok := v.([]any); ok {
		switch target.Kind() {
		case reflect.Slice:
			out := reflect.MakeSlice(target.Type(), len(elems), len(elems))
			for i, e := range elems {
				if err := assign(out.Index(i), e); err != nil {
					return err
				}
			}
			target.Set(out)
			return nil
		case reflect.Array:
			if len(elems) != target.Len() {
				return fmt.Errorf("%w: array wants %d elements, got %d", ErrValue, target.Len(), len(elems))
			}
			for i, e := range elems {
				if err := assign(target.Index(i), e); err != nil {
					return err
				}
			}
			return nil
		}
	}

	if b, ok := v.([]byte); ok && target.Kind() == reflect.Array && target.Type().Elem().Kind() == reflect.Uint8 {
		if len(b) != target.Len() {
			return fmt.Errorf("%w: byte array wants %d bytes, got %d", ErrValue, target.Len(), len(b))
		}
		reflect.Copy(target, rv)
		return nil
	}

	return fmt.Errorf("%w: cannot assign %T to %s", ErrValue, v, target.Type())
}

// numericKind gates reflect conversions to number-to-number, keeping
// surprises like int-to-string out.
func numericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
