package registry

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// CodecName is the content subtype negotiated by clients of the registry service.
const CodecName = "json"

// jsonCodec marshals the registry messages as JSON.
type jsonCodec struct{}

func init() { //nolint:gochecknoinits // gRPC codecs are registered process-wide at init time.
	encoding.RegisterCodec(jsonCodec{})
}

// Marshal implements encoding.Codec.
func (jsonCodec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}

	return data, nil
}

// Unmarshal implements encoding.Codec.
func (jsonCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %T: %w", v, err)
	}

	return nil
}

// Name implements encoding.Codec.
func (jsonCodec) Name() string {
	return CodecName
}
