// Package codec encodes recorded frames.
//
// Trace files store the codec name in their header, so a trace is always
// decoded with the codec that wrote it. Renaming a codec breaks old traces.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Appender is implemented by codecs that can encode into a caller-owned
// buffer. Writers that emit one frame after another reuse that buffer.
type Appender interface {
	Append(dst []byte, v any) ([]byte, error)
}

// Append encodes v after the contents of dst. It uses the codec's Appender
// when there is one and falls back to Marshal. On error dst is returned
// unchanged.
func Append(c Codec, dst []byte, v any) ([]byte, error) {
	if a, ok := c.(Appender); ok {
		return a.Append(dst, v)
	}

	b, err := c.Marshal(v)
	if err != nil {
		return dst, err
	}
	return append(dst, b...), nil
}

// ByName returns the built-in codec with the given stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "msgpack":
		return MsgPack{}, true
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// Names returns the stable names of every built-in codec, default first.
func Names() []string {
	return []string{"msgpack", "json", "go-json"}
}

// MustMarshal is a helper for tests and benchmarks. A nil codec means Default.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
