package pod

import (
	"fmt"
	"reflect"
)

// Optional returns the codec for a value of elem that may be absent. The
// discriminant is written through the negotiated tag type: 1 byte under
// Canonical, 8 bytes under ZeroCopy. Under an 8-byte tag the payload slot
// always occupies MaxSize(elem) bytes (zero-filled when absent) so the
// enclosing layout keeps fixed offsets and stays auto-detectable.
//
// Absent values are represented as nil; record fields declared as
// pointers map onto Optional automatically.
func Optional(elem Type) Type {
	key := containerKey{kind: "Optional", elem: elem}
	return memoContainer(key, func() Type {
		return &optionalType{
			name: fmt.Sprintf("Optional[%s]", elem.Name()),
			elem: elem,
		}
	})
}

type optionalType struct {
	name string
	elem Type
}

func (t *optionalType) Name() string { return t.name }

// Static is false: the encoded width depends on the negotiated tag type,
// which is only known inside a negotiated call.
func (t *optionalType) Static() bool { return false }

func (t *optionalType) MaxSize(ctx *Context) (int, error) {
	tw, err := t.tagWidth(ctx)
	if err != nil {
		return 0, err
	}
	es, err := Binary.MaxSize(t.elem, ctx)
	if err != nil {
		return 0, err
	}
	return satAdd(tw, es), nil
}

func (t *optionalType) PackPartial(w *Writer, v any, ctx *Context) error {
	tw, err := t.tagWidth(ctx)
	if err != nil {
		return err
	}

	v, present := unwrapOptional(v)
	tag := 0
	if present {
		tag = 1
	}
	if err := Binary.PackPartial(ctx.tag(), w, tag, ctx); err != nil {
		return err
	}

	// An 8-byte tag means the enclosing layout is fixed-offset: the
	// payload slot is always fully occupied.
	fixedSlot := tw == 8
	slot := 0
	if fixedSlot {
		if slot, err = Binary.MaxSize(t.elem, ctx); err != nil {
			return err
		}
	}

	if !present {
		if fixedSlot {
			_, err = w.Write(make([]byte, slot))
			return err
		}
		return nil
	}

	before := w.Len()
	if err := Binary.PackPartial(t.elem, w, v, ctx); err != nil {
		return wrapPath("pack", err, "some", t.name, t.elem.Name())
	}
	if fixedSlot {
		_, err = w.Write(make([]byte, slot-(w.Len()-before)))
	}
	return err
}

func (t *optionalType) UnpackPartial(r *Reader, ctx *Context) (any, error) {
	tw, err := t.tagWidth(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := Binary.UnpackPartial(ctx.tag(), r, ctx)
	if err != nil {
		return nil, err
	}
	tag, ok := toUint64(raw)
	if !ok || tag > 1 {
		return nil, fmt.Errorf("%w: %s: invalid discriminant %v", ErrValue, t.name, raw)
	}

	fixedSlot := tw == 8
	slot := 0
	if fixedSlot {
		if slot, err = Binary.MaxSize(t.elem, ctx); err != nil {
			return nil, err
		}
	}

	if tag == 0 {
		if fixedSlot {
			if err := r.Skip(slot); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	before := r.Offset()
	v, err := Binary.UnpackPartial(t.elem, r, ctx)
	if err != nil {
		return nil, wrapPath("unpack", err, "some", t.name, t.elem.Name())
	}
	if fixedSlot {
		if err := r.Skip(slot - (r.Offset() - before)); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (t *optionalType) ToText(v any) (any, error) {
	v, present := unwrapOptional(v)
	if !present {
		return nil, nil
	}
	return Text.ToText(t.elem, v)
}

func (t *optionalType) FromText(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return Text.FromText(t.elem, v)
}

func (t *optionalType) tagWidth(ctx *Context) (int, error) {
	if ctx.tag() == nil {
		return 0, fmt.Errorf("%w: %s needs a negotiated format", ErrNoTag, t.name)
	}
	return Binary.MaxSize(ctx.tag(), ctx)
}

// unwrapOptional maps nil and nil pointers to absent, dereferencing
// non-nil pointers to their payload.
func unwrapOptional(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		return rv.Elem().Interface(), true
	}
	return v, true
}
