package pod

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestRecord_CanonicalWire(t *testing.T) {
	type Payload struct {
		A uint8
		B []byte
	}

	pt := MustRecord[Payload]()
	raw, err := Pack(pt, Payload{A: 5, B: []byte{1, 2, 3}})
	if err != nil {
		t.Fatalf("Pack() error: %v", err)
	}

	// One byte for A, 4-byte length prefix for B, then B's payload
	want := []byte{0x05, 0x03, 0x00, 0x00, 0x00, 0x01, 0x02, 0x03}
	if !bytes.Equal(raw, want) {
		t.Fatalf("Pack() = %v, want %v", raw, want)
	}

	// All 8 bytes are consumed, so a checked unpack succeeds
	back, err := Unpack(pt, raw, WithFormat(Canonical), Checked())
	if err != nil {
		t.Fatalf("Unpack() error: %v", err)
	}
	if !reflect.DeepEqual(back, Payload{A: 5, B: []byte{1, 2, 3}}) {
		t.Errorf("round trip = %+v", back)
	}
}

func TestRecord_StaticSize(t *testing.T) {
	type Header struct {
		Magic   uint32
		Version uint16
		Digest  [4]byte
	}

	ht := MustRecord[Header]()

	static, err := Binary.Static(ht)
	if err != nil || !static {
		t.Fatalf("Static() = %v, %v, want true", static, err)
	}
	size, err := Binary.MaxSize(ht, nil)
	if err != nil || size != 10 {
		t.Fatalf("MaxSize() = %d, %v, want 10", size, err)
	}

	h := Header{Magic: 0xdeadbeef, Version: 2, Digest: [4]byte{1, 2, 3, 4}}
	raw, err := Pack(ht, h)
	if err != nil {
		t.Fatalf("Pack() error: %v", err)
	}
	if len(raw) != size {
		t.Errorf("packed %d bytes, static size is %d", len(raw), size)
	}

	back, err := Unpack(ht, raw)
	if err != nil {
		t.Fatalf("Unpack() error: %v", err)
	}
	if !reflect.DeepEqual(back, h) {
		t.Errorf("round trip = %+v, want %+v", back, h)
	}
}

func TestRecord_FixedStringTag(t *testing.T) {
	type Label struct {
		Name string `pod:"fixed=8"`
	}

	lt := MustRecord[Label]()
	raw, err := Pack(lt, Label{Name: "hi"})
	if err != nil {
		t.Fatalf("Pack() error: %v", err)
	}
	if len(raw) != 8 {
		t.Fatalf("packed %d bytes, want 8", len(raw))
	}

	back, err := Unpack(lt, raw, WithFormat(Canonical))
	if err != nil {
		t.Fatalf("Unpack() error: %v", err)
	}
	if back.(Label).Name != "hi" {
		t.Errorf("Name = %q, want %q", back.(Label).Name, "hi")
	}
}

func TestRecord_LengthTag(t *testing.T) {
	type Batch struct {
		Items []uint16 `pod:"len=u8,max=4"`
	}

	bt := MustRecord[Batch]()
	raw, err := Pack(bt, Batch{Items: []uint16{10, 20}})
	if err != nil {
		t.Fatalf("Pack() error: %v", err)
	}

	want := []byte{2, 10, 0, 20, 0}
	if !bytes.Equal(raw, want) {
		t.Fatalf("Pack() = %v, want %v", raw, want)
	}

	if _, err := Pack(bt, Batch{Items: []uint16{1, 2, 3, 4, 5}}); !errors.Is(err, ErrBounds) {
		t.Errorf("Pack(over max) error = %v, want ErrBounds", err)
	}
}

func TestRecord_PointerField(t *testing.T) {
	type Job struct {
		ID   uint32
		Prio *uint8
	}

	jt := MustRecord[Job]()

	prio := uint8(9)
	raw, err := Pack(jt, Job{ID: 1, Prio: &prio})
	if err != nil {
		t.Fatalf("Pack() error: %v", err)
	}
	want := []byte{1, 0, 0, 0, 1, 9}
	if !bytes.Equal(raw, want) {
		t.Fatalf("Pack() = %v, want %v", raw, want)
	}

	back, err := Unpack(jt, raw, WithFormat(Canonical))
	if err != nil {
		t.Fatalf("Unpack() error: %v", err)
	}
	got := back.(Job)
	if got.Prio == nil || *got.Prio != 9 {
		t.Errorf("Prio = %v, want 9", got.Prio)
	}

	raw, err = Pack(jt, Job{ID: 1})
	if err != nil {
		t.Fatalf("Pack(absent) error: %v", err)
	}
	if !bytes.Equal(raw, []byte{1, 0, 0, 0, 0}) {
		t.Fatalf("Pack(absent) = %v", raw)
	}
	back, err = Unpack(jt, raw, WithFormat(Canonical))
	if err != nil {
		t.Fatalf("Unpack(absent) error: %v", err)
	}
	if back.(Job).Prio != nil {
		t.Errorf("Prio = %v, want nil", back.(Job).Prio)
	}
}

func TestRecord_ZeroCopyPointerField(t *testing.T) {
	type Task struct {
		ID   uint32
		Prio *uint8
	}

	jt := MustRecord[Task]()

	prio := uint8(9)
	present, err := Pack(jt, Task{ID: 1, Prio: &prio}, WithFormat(ZeroCopy))
	if err != nil {
		t.Fatalf("Pack() error: %v", err)
	}
	absent, err := Pack(jt, Task{ID: 1}, WithFormat(ZeroCopy))
	if err != nil {
		t.Fatalf("Pack() error: %v", err)
	}

	// Fixed-offset layout: both variants occupy the same width
	if len(present) != 13 || len(absent) != 13 {
		t.Fatalf("lengths = %d, %d, want 13, 13", len(present), len(absent))
	}

	// Auto detection recognizes the zero-copy layout by its exact width
	back, err := Unpack(jt, present)
	if err != nil {
		t.Fatalf("Unpack() error: %v", err)
	}
	got := back.(Task)
	if got.ID != 1 || got.Prio == nil || *got.Prio != 9 {
		t.Errorf("round trip = %+v", got)
	}
}

type Point struct {
	X uint16
	Y uint16
}

type Shape struct {
	Kind   uint8
	Center Point
}

func TestRecord_Nested(t *testing.T) {
	st := MustRecord[Shape]()
	raw, err := Pack(st, Shape{Kind: 2, Center: Point{X: 3, Y: 4}})
	if err != nil {
		t.Fatalf("Pack() error: %v", err)
	}
	want := []byte{2, 3, 0, 4, 0}
	if !bytes.Equal(raw, want) {
		t.Fatalf("Pack() = %v, want %v", raw, want)
	}

	back, err := Unpack(st, raw)
	if err != nil {
		t.Fatalf("Unpack() error: %v", err)
	}
	if !reflect.DeepEqual(back, Shape{Kind: 2, Center: Point{X: 3, Y: 4}}) {
		t.Errorf("round trip = %+v", back)
	}
}

func TestRecord_DeeplyNested(t *testing.T) {
	type Leaf struct {
		V uint16
	}
	type Branch struct {
		Tag  uint8
		Leaf Leaf
	}
	type Root struct {
		ID     uint32
		Branch Branch
	}

	// Registration recurses through two levels of nested structs and must
	// terminate with one cached codec per level
	rt := MustRecord[Root]()
	if MustRecord[Root]() != rt {
		t.Error("repeated registration should return the same Type identity")
	}

	in := Root{ID: 7, Branch: Branch{Tag: 2, Leaf: Leaf{V: 0x0304}}}
	raw, err := Pack(rt, in)
	if err != nil {
		t.Fatalf("Pack() error: %v", err)
	}
	want := []byte{7, 0, 0, 0, 2, 4, 3}
	if !bytes.Equal(raw, want) {
		t.Fatalf("Pack() = %v, want %v", raw, want)
	}

	back, err := Unpack(rt, raw, WithFormat(Canonical))
	if err != nil {
		t.Fatalf("Unpack() error: %v", err)
	}
	if !reflect.DeepEqual(back, in) {
		t.Errorf("round trip = %+v, want %+v", back, in)
	}
}

func TestRecord_NestedErrorPath(t *testing.T) {
	st := MustRecord[Shape]()

	// Truncated inside the nested record's second field
	_, err := Unpack(st, []byte{2, 3, 0, 4}, WithFormat(Canonical))
	if !errors.Is(err, ErrShortBuffer) {
		t.Fatalf("Unpack() error = %v, want ErrShortBuffer", err)
	}

	var pe *PathError
	if !errors.As(err, &pe) {
		t.Fatal("nested failure should carry a PathError")
	}
	if !strings.Contains(err.Error(), "Shape.Center") {
		t.Errorf("error %q should locate the failing field", err)
	}
	if !strings.Contains(err.Error(), ".Y") {
		t.Errorf("error %q should name the innermost field", err)
	}
}

func TestRecord_SkippedField(t *testing.T) {
	type Row struct {
		A uint16
		B int `pod:"-"`
		C uint16
	}

	rt := MustRecord[Row]()
	raw, err := Pack(rt, Row{A: 1, B: 42, C: 2})
	if err != nil {
		t.Fatalf("Pack() error: %v", err)
	}
	if !bytes.Equal(raw, []byte{1, 0, 2, 0}) {
		t.Fatalf("Pack() = %v, want [1 0 2 0]", raw)
	}

	back, err := Unpack(rt, raw)
	if err != nil {
		t.Fatalf("Unpack() error: %v", err)
	}
	// Skipped fields come back zero
	if !reflect.DeepEqual(back, Row{A: 1, C: 2}) {
		t.Errorf("round trip = %+v", back)
	}
}

func TestRecord_InvalidTag(t *testing.T) {
	type BadFixed struct {
		Name string `pod:"fixed=zero"`
	}
	if _, err := Record[BadFixed](); !errors.Is(err, ErrInvalidTag) {
		t.Errorf("Record[BadFixed]() error = %v, want ErrInvalidTag", err)
	}

	type BadOption struct {
		Name string `pod:"nope"`
	}
	if _, err := Record[BadOption](); !errors.Is(err, ErrInvalidTag) {
		t.Errorf("Record[BadOption]() error = %v, want ErrInvalidTag", err)
	}
}

func TestRecord_UnsupportedField(t *testing.T) {
	type Bad struct {
		M map[string]int
	}
	if _, err := Record[Bad](); !errors.Is(err, ErrValue) {
		t.Errorf("Record[Bad]() error = %v, want ErrValue", err)
	}
}

func TestRecord_NotStruct(t *testing.T) {
	if _, err := Record[int](); !errors.Is(err, ErrValue) {
		t.Errorf("Record[int]() error = %v, want ErrValue", err)
	}
}

func TestRecord_Memoized(t *testing.T) {
	type Pair struct {
		A uint8
		B uint8
	}

	first := MustRecord[Pair]()
	second := MustRecord[Pair]()
	if first != second {
		t.Error("Record should return the same Type identity for the same struct")
	}
}

func TestRecord_WrongValueType(t *testing.T) {
	type Pair struct {
		A uint8
		B uint8
	}

	pt := MustRecord[Pair]()
	if _, err := Pack(pt, "not a pair"); !errors.Is(err, ErrValue) {
		t.Errorf("Pack(wrong type) error = %v, want ErrValue", err)
	}
}
