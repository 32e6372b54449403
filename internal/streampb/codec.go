package streampb

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec carries the plain Go structs in this package over grpc's wire
// framing as JSON instead of protobuf, since there is no generated
// proto.Message implementation to marshal. It registers under grpc's
// default content-subtype name ("proto") so no client- or server-side
// CallOption is needed to select it.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "proto" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
