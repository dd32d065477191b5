package pod

// Codec provides content-type aware marshaling for the textual
// interchange catalog. Implementations live in the json, msgpack, and
// yaml subpackages.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}

// MarshalAs converts v through the textual catalog into interchange-plain
// values and encodes them with c.
func MarshalAs(c Codec, t Type, v any) ([]byte, error) {
	tv, err := Text.ToText(t, v)
	if err != nil {
		return nil, err
	}
	return c.Marshal(tv)
}

// UnmarshalAs decodes data with c and converts the interchange-plain
// values back through the textual catalog.
func UnmarshalAs(c Codec, t Type, data []byte) (any, error) {
	var raw any
	if err := c.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return Text.FromText(t, raw)
}
