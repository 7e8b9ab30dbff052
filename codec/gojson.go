package codec

import gojson "github.com/goccy/go-json"

// GoJSON produces the same documents as JSON using github.com/goccy/go-json.
// Either codec decodes the other's traces byte for byte.
type GoJSON struct{}

func (GoJSON) Marshal(v any) ([]byte, error) { return gojson.Marshal(v) }

func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

// Name returns "go-json".
func (GoJSON) Name() string { return "go-json" }

// Append implements Appender.
func (GoJSON) Append(dst []byte, v any) ([]byte, error) {
	b, err := gojson.MarshalNoEscape(v)
	if err != nil {
		return dst, err
	}
	return append(dst, b...), nil
}
