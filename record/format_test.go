package record

import (
	"bytes"
	"math"
	"testing"

	"github.com/hupe1980/wavop/codec"
	"github.com/hupe1980/wavop/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(t *testing.T) *Record {
	t.Helper()
	rec := geometry.Shot{X: []float64{10, 20, 30}, Y: []float64{0, 0, 0}, Z: []float64{5, 5, 5}, Dt: 2, T: 8, NT: 5}
	src := geometry.Shot{X: []float64{600}, Y: []float64{0}, Z: []float64{20}, Dt: 2, T: 8, NT: 5}
	data := make([]float32, rec.Samples())
	for i := range data {
		data[i] = float32(math.Sin(float64(i))) * 1e-3
	}
	data[4] = float32(math.Inf(-1))
	data[7] = math.Float32frombits(0x7fc00001) // NaN payload

	r, err := NewRecord(3, rec, src, data)
	require.NoError(t, err)
	return r
}

func TestEncodeDecode_BitExact(t *testing.T) {
	for _, comp := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		for _, c := range []codec.Codec{codec.JSON{}, codec.GoJSON{}} {
			t.Run(comp.String()+"/"+c.Name(), func(t *testing.T) {
				in := sampleRecord(t)
				data, err := Encode(in, c, comp)
				require.NoError(t, err)

				out, err := Decode(data)
				require.NoError(t, err)
				assert.Equal(t, in.Header, out.Header)
				require.Len(t, out.Data, len(in.Data))
				for i := range in.Data {
					assert.Equal(t, math.Float32bits(in.Data[i]), math.Float32bits(out.Data[i]), "sample %d", i)
				}

				hdr, err := DecodeHeader(bytes.NewReader(data))
				require.NoError(t, err)
				assert.Equal(t, in.Header, hdr)
			})
		}
	}
}

func TestEncode_CompressesZeros(t *testing.T) {
	rec := geometry.Shot{X: make([]float64, 60), Y: make([]float64, 60), Z: make([]float64, 60), Dt: 2, T: 1000, NT: 501}
	src := geometry.Shot{X: []float64{600}, Y: []float64{0}, Z: []float64{20}}
	r, err := NewRecord(0, rec, src, make([]float32, rec.Samples()))
	require.NoError(t, err)

	raw, err := Encode(r, nil, CompressionNone)
	require.NoError(t, err)
	lz, err := Encode(r, nil, CompressionLZ4)
	require.NoError(t, err)
	assert.Less(t, len(lz), len(raw)/10)

	out, err := Decode(lz)
	require.NoError(t, err)
	assert.Equal(t, r.Data, out.Data)
}

func TestDecode_Corruption(t *testing.T) {
	data, err := Encode(sampleRecord(t), nil, CompressionZSTD)
	require.NoError(t, err)

	flipped := bytes.Clone(data)
	flipped[len(flipped)/2] ^= 0xff
	_, err = Decode(flipped)
	assert.ErrorIs(t, err, ErrChecksum)

	_, err = Decode([]byte("no"))
	assert.ErrorIs(t, err, ErrFormat)

	_, err = DecodeHeader(bytes.NewReader([]byte("SEGYxxxxxxxx")))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestNewRecord_Mismatch(t *testing.T) {
	rec := geometry.Shot{X: []float64{1}, Y: []float64{0}, Z: []float64{0}, NT: 3}
	_, err := NewRecord(0, rec, rec, make([]float32, 2))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	got, err := ParseCompression("")
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, got)

	_, err = ParseCompression("gzip")
	assert.Error(t, err)
}
