package pod

import "fmt"

// Format selects the tag width used for variant discrimination during one
// pack or unpack call tree.
type Format int

const (
	// Auto infers Canonical vs ZeroCopy from total input length against
	// the type's static size. Decode only, and valid only when the value
	// occupies the entire remaining input: probing the remaining length
	// for an embedded field would count trailing sibling data.
	Auto Format = iota

	// Canonical encodes tags as 1 unsigned byte, with no alignment
	// padding anywhere. Up to 256 variants per tag point.
	Canonical

	// ZeroCopy encodes tags as 8 bytes so tagged values embedded in a
	// fixed-offset layout stay statically sized, allowing direct
	// memory-mapped reads without a parsing pass.
	ZeroCopy

	// PassThrough establishes no tag context at all; the nested type's
	// own tag handling is used verbatim.
	PassThrough
)

func (f Format) String() string {
	switch f {
	case Auto:
		return "auto"
	case Canonical:
		return "canonical"
	case ZeroCopy:
		return "zero-copy"
	case PassThrough:
		return "pass-through"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// negotiate converts a concrete format into the tag context threaded
// through the call tree. PassThrough yields a nil context: nested tagged
// types then fail with ErrNoTag unless something below re-negotiates.
func negotiate(f Format) (*Context, error) {
	switch f {
	case Canonical:
		return &Context{Tag: U8}, nil
	case ZeroCopy:
		return &Context{Tag: U64}, nil
	case PassThrough:
		return nil, nil
	case Auto:
		return nil, fmt.Errorf("%w: auto is decode-only", ErrFormat)
	default:
		return nil, fmt.Errorf("%w: %s", ErrFormat, f)
	}
}

// detectFormat implements Auto: compute the type's static size assuming
// 8-byte tags and compare it to the full remaining input. An exact match
// means the data was laid out for zero-copy access; anything else decodes
// as canonical.
func detectFormat(t Type, r *Reader) (Format, error) {
	size, err := Binary.MaxSize(t, &Context{Tag: U64})
	if err != nil {
		return Auto, err
	}
	if size == r.Remaining() {
		return ZeroCopy, nil
	}
	return Canonical, nil
}
