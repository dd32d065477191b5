// Package json adapts encoding/json to the pod.Codec contract, the
// default human-readable interchange for record values.
package json

import (
	"encoding/json"

	"github.com/podcodec/pod"
)

type jsonCodec struct{}

// New returns the JSON codec.
func New() pod.Codec {
	return &jsonCodec{}
}

func (c *jsonCodec) ContentType() string {
	return "application/json"
}

func (c *jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (c *jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
