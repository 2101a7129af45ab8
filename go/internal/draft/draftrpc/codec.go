package draftrpc

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// jsonCodec replaces connect's protojson codec so plain Go structs can be
// used as messages. It keeps the "json" name, so the wire content type is
// application/json.
type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	return json.Unmarshal(data, msg)
}
