// Package msgpack adapts vmihailenco/msgpack to the pod.Codec contract.
// Unlike JSON it keeps byte blobs binary, so interchange of records with
// bytes fields needs no base64 detour.
package msgpack

import (
	"github.com/podcodec/pod"
	"github.com/vmihailenco/msgpack/v5"
)

type msgpackCodec struct{}

// New returns the MessagePack codec.
func New() pod.Codec {
	return &msgpackCodec{}
}

func (c *msgpackCodec) ContentType() string {
	return "application/msgpack"
}

func (c *msgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (c *msgpackCodec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
