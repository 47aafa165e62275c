package rpcserver

import "encoding/json"

// jsonCodec implements grpc's encoding.Codec using plain JSON instead of
// protobuf wire encoding. Registering it under the name "json" and
// requesting it via the "grpc+json" content-subtype lets the hand-declared
// ServiceDesc below carry map[string]interface{} payloads without a protoc
// step (grpc-go's codec interface takes interface{}, not proto.Message).
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return "json"
}
