package pod

import (
	"errors"
	"testing"
)

func TestPathError_Is(t *testing.T) {
	err := wrapPath("pack", &BoundsError{Type: "Str", Len: 9, Max: 8}, "Name", "Person", "Str")

	if !errors.Is(err, ErrBounds) {
		t.Error("PathError should unwrap to ErrBounds")
	}
	if errors.Is(err, ErrResidualData) {
		t.Error("PathError should not match ErrResidualData")
	}
}

func TestPathError_Message(t *testing.T) {
	err := wrapPath("pack", errors.New("boom"), "Name", "Person", "Str[len=U32, max=16]")

	want := "pack Person.Name (Str[len=U32, max=16]): boom"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestPathError_Accumulates(t *testing.T) {
	inner := wrapPath("unpack", errors.New("boom"), "Street", "Address", "Str")
	outer := wrapPath("unpack", inner, "Home", "Person", "Address")

	var pe *PathError
	if !errors.As(outer, &pe) {
		t.Fatal("errors.As should extract *PathError")
	}

	wantPath := []string{"Street", "Address", "Home", "Person"}
	if len(pe.Path) != len(wantPath) {
		t.Fatalf("Path = %v, want %v", pe.Path, wantPath)
	}
	for i, p := range wantPath {
		if pe.Path[i] != p {
			t.Errorf("Path[%d] = %q, want %q", i, pe.Path[i], p)
		}
	}

	// The declared type of the innermost failure is preserved
	if pe.Type != "Str" {
		t.Errorf("Type = %q, want %q", pe.Type, "Str")
	}

	want := "unpack Person.Home.Address.Street (Str): boom"
	if got := outer.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestBoundsError(t *testing.T) {
	err := &BoundsError{Type: "Vec[U8, len=U32, max=4]", Len: 5, Max: 4}

	if !errors.Is(err, ErrBounds) {
		t.Error("BoundsError should unwrap to ErrBounds")
	}

	want := "Vec[U8, len=U32, max=4]: length 5 exceeds maximum 4"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestResidualError(t *testing.T) {
	err := &ResidualError{Remaining: 3}

	if !errors.Is(err, ErrResidualData) {
		t.Error("ResidualError should unwrap to ErrResidualData")
	}

	want := "unused trailing bytes: 3 bytes left after decode"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
