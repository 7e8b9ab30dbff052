package codec

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// MsgPack is the binary trace codec backed by github.com/vmihailenco/msgpack/v5.
// Struct fields are encoded by their msgpack tag, falling back to the field name.
type MsgPack struct{}

// Marshal encodes the value to msgpack.
func (MsgPack) Marshal(v any) ([]byte, error) { return msgpack.Marshal(v) }

// Unmarshal decodes the msgpack data into v.
func (MsgPack) Unmarshal(data []byte, v any) error { return msgpack.Unmarshal(data, v) }

// Name returns "msgpack".
func (MsgPack) Name() string { return "msgpack" }

// Append implements Appender with a pooled encoder writing past len(dst).
func (MsgPack) Append(dst []byte, v any) ([]byte, error) {
	buf := bytes.NewBuffer(dst)

	enc := msgpack.GetEncoder()
	defer msgpack.PutEncoder(enc)
	enc.Reset(buf)

	if err := enc.Encode(v); err != nil {
		return dst, err
	}
	return buf.Bytes(), nil
}

// Default is the codec new traces are written with.
var Default Codec = MsgPack{}
