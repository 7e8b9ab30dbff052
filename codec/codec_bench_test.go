package codec

import "testing"

func benchFrame() frame {
	f := frame{Seq: 123456789}
	for i := range 1000 {
		f.Points = append(f.Points, point{X: float64(i%1000) + 0.123, Y: float64(i/7) + 0.456})
	}
	return f
}

func benchmarkCodecMarshal(b *testing.B, c Codec, v any) {
	b.Helper()
	b.ReportAllocs()

	warm, err := c.Marshal(v)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(warm)))

	var sink []byte
	for b.Loop() {
		out, err := c.Marshal(v)
		if err != nil {
			b.Fatal(err)
		}
		sink = out
	}
	_ = sink
}

func benchmarkCodecUnmarshal(b *testing.B, c Codec, data []byte) {
	b.Helper()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	var v frame
	for b.Loop() {
		if err := c.Unmarshal(data, &v); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCodec_Marshal_Frame(b *testing.B) {
	f := benchFrame()

	b.Run("stdlib", func(b *testing.B) { benchmarkCodecMarshal(b, JSON{}, f) })
	b.Run("go-json", func(b *testing.B) { benchmarkCodecMarshal(b, GoJSON{}, f) })
	b.Run("msgpack", func(b *testing.B) { benchmarkCodecMarshal(b, MsgPack{}, f) })
}

func BenchmarkCodec_Unmarshal_Frame(b *testing.B) {
	f := benchFrame()

	b.Run("stdlib", func(b *testing.B) { benchmarkCodecUnmarshal(b, JSON{}, MustMarshal(JSON{}, f)) })
	b.Run("go-json", func(b *testing.B) { benchmarkCodecUnmarshal(b, GoJSON{}, MustMarshal(GoJSON{}, f)) })
	b.Run("msgpack", func(b *testing.B) { benchmarkCodecUnmarshal(b, MsgPack{}, MustMarshal(MsgPack{}, f)) })
}
