// Package yaml adapts gopkg.in/yaml.v3 to the pod.Codec contract, mainly
// for config-file-shaped interchange of record values.
package yaml

import (
	"github.com/podcodec/pod"
	"gopkg.in/yaml.v3"
)

type yamlCodec struct{}

// New returns the YAML codec.
func New() pod.Codec {
	return &yamlCodec{}
}

func (c *yamlCodec) ContentType() string {
	return "application/yaml"
}

func (c *yamlCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (c *yamlCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}
