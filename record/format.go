package record

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"math"

	"github.com/hupe1980/wavop/codec"
	"github.com/hupe1980/wavop/geometry"
)

const (
	magic   = "WVRC"
	version = 1
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Header describes one shot record.
type Header struct {
	Shot      int       `json:"shot"`
	SourceX   []float64 `json:"source_x"`
	SourceY   []float64 `json:"source_y"`
	SourceZ   []float64 `json:"source_z"`
	ReceiverX []float64 `json:"receiver_x"`
	ReceiverY []float64 `json:"receiver_y"`
	ReceiverZ []float64 `json:"receiver_z"`
	Dt        float64   `json:"dt"`
	T         float64   `json:"t"`
	NT        int       `json:"nt"`
	RunID     string    `json:"run_id,omitempty"`
}

// NTraces returns the number of receivers.
func (h Header) NTraces() int { return len(h.ReceiverX) }

// Receivers returns the receiver geometry of the shot.
func (h Header) Receivers() geometry.Shot {
	return geometry.Shot{X: h.ReceiverX, Y: h.ReceiverY, Z: h.ReceiverZ, Dt: h.Dt, T: h.T, NT: h.NT}
}

// Record is a decoded shot gather.
type Record struct {
	Header Header
	// Data is trace-major: sample t of trace r is Data[r*NT+t].
	Data []float32
}

// NewRecord builds the record of shot i from receiver and source geometries.
func NewRecord(shot int, rec, src geometry.Shot, data []float32) (*Record, error) {
	if len(data) != rec.Samples() {
		return nil, fmt.Errorf("%w: %d samples for %d traces of %d", ErrFormat, len(data), rec.N(), rec.NT)
	}
	return &Record{
		Header: Header{
			Shot:      shot,
			SourceX:   src.X,
			SourceY:   src.Y,
			SourceZ:   src.Z,
			ReceiverX: rec.X,
			ReceiverY: rec.Y,
			ReceiverZ: rec.Z,
			Dt:        rec.Dt,
			T:         rec.T,
			NT:        rec.NT,
		},
		Data: data,
	}, nil
}

func (r *Record) validate() error {
	h := r.Header
	n := h.NTraces()
	if len(h.ReceiverY) != n || len(h.ReceiverZ) != n {
		return fmt.Errorf("%w: receiver coordinates disagree in length", ErrFormat)
	}
	if len(r.Data) != n*h.NT {
		return fmt.Errorf("%w: %d samples for %d traces of %d", ErrFormat, len(r.Data), n, h.NT)
	}
	return nil
}

// Encode serializes r. A nil codec selects codec.Default.
func Encode(r *Record, c codec.Codec, comp Compression) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	hdr, err := c.Marshal(r.Header)
	if err != nil {
		return nil, fmt.Errorf("record: encode header: %w", err)
	}
	name := c.Name()
	if len(name) > math.MaxUint8 {
		return nil, fmt.Errorf("%w: codec name too long", ErrFormat)
	}

	payload := make([]byte, 4*len(r.Data))
	for i, v := range r.Data {
		binary.LittleEndian.PutUint32(payload[4*i:], math.Float32bits(v))
	}

	buf := make([]byte, 0, 16+len(name)+len(hdr)+len(payload)+blockHeaderSize+4)
	buf = append(buf, magic...)
	buf = binary.LittleEndian.AppendUint16(buf, version)
	buf = append(buf, byte(comp), byte(len(name)))
	buf = append(buf, name...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(hdr)))
	buf = append(buf, hdr...)
	buf, err = appendBlock(buf, payload, comp)
	if err != nil {
		return nil, fmt.Errorf("record: compress payload: %w", err)
	}
	return binary.LittleEndian.AppendUint32(buf, crc32.Checksum(buf, castagnoli)), nil
}

type prefix struct {
	comp  Compression
	codec codec.Codec
	hdr   Header
}

// readPrefix decodes everything up to the payload block.
func readPrefix(r io.Reader) (*prefix, int, error) {
	var fixed [8]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if string(fixed[:4]) != magic {
		return nil, 0, fmt.Errorf("%w: bad magic %q", ErrFormat, fixed[:4])
	}
	if v := binary.LittleEndian.Uint16(fixed[4:]); v != version {
		return nil, 0, fmt.Errorf("%w: unsupported version %d", ErrFormat, v)
	}
	p := &prefix{comp: Compression(fixed[6])}

	name := make([]byte, fixed[7])
	if _, err := io.ReadFull(r, name); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	c, ok := codec.ByName(string(name))
	if !ok {
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	p.codec = c

	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	hdr := make([]byte, binary.LittleEndian.Uint32(lenBuf[:]))
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if err := c.Unmarshal(hdr, &p.hdr); err != nil {
		return nil, 0, fmt.Errorf("%w: header: %v", ErrFormat, err)
	}
	return p, len(fixed) + len(name) + len(lenBuf) + len(hdr), nil
}

// DecodeHeader reads only the header of a record stream.
func DecodeHeader(r io.Reader) (Header, error) {
	p, _, err := readPrefix(r)
	if err != nil {
		return Header{}, err
	}
	return p.hdr, nil
}

// Decode parses a full record and verifies its checksum.
func Decode(data []byte) (*Record, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrFormat, len(data))
	}
	body, sum := data[:len(data)-4], binary.LittleEndian.Uint32(data[len(data)-4:])
	if crc32.Checksum(body, castagnoli) != sum {
		return nil, ErrChecksum
	}

	p, n, err := readPrefix(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	payload, used, err := readBlock(body[n:], p.comp)
	if err != nil {
		return nil, err
	}
	if n+used != len(body) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrFormat, len(body)-n-used)
	}
	if len(payload)%4 != 0 {
		return nil, fmt.Errorf("%w: payload of %d bytes", ErrFormat, len(payload))
	}

	rec := &Record{Header: p.hdr, Data: make([]float32, len(payload)/4)}
	for i := range rec.Data {
		rec.Data[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[4*i:]))
	}
	if err := rec.validate(); err != nil {
		return nil, err
	}
	return rec, nil
}
