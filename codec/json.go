package codec

import "encoding/json"

// JSON is the standard-library JSON codec.
//
// JSON traces are human-readable, roughly twice the size of msgpack.
// Coordinates round-trip exactly; NaN and Inf are rejected by the encoder.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns "json".
func (JSON) Name() string { return "json" }
