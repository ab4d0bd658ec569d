package record

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/wavop/blobstore"
	"github.com/hupe1980/wavop/codec"
	"github.com/hupe1980/wavop/geometry"
	"github.com/hupe1980/wavop/resource"
	"github.com/hupe1980/wavop/vector"
	"golang.org/x/sync/errgroup"
)

// Extension is the file suffix of shot records.
const Extension = ".segy"

// Name returns the blob name of a shot record with source at (x, y).
func Name(fileName string, x, y float64) string {
	return fileName + "_" + formatCoord(x) + "_" + formatCoord(y) + Extension
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Store reads and writes shot records through a blob store.
type Store struct {
	blobs       blobstore.BlobStore
	codec       codec.Codec
	compression Compression
	rc          *resource.Controller
	runID       string
	locks       pathLocks
}

// Option configures a Store.
type Option func(*Store)

// WithCodec sets the header codec. Defaults to codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(s *Store) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithCompression sets the payload compression. Defaults to none.
func WithCompression(c Compression) Option {
	return func(s *Store) { s.compression = c }
}

// WithController applies the controller's IO limit and worker slots.
func WithController(rc *resource.Controller) Option {
	return func(s *Store) { s.rc = rc }
}

// WithRunID stamps every written header with a run identifier.
func WithRunID(id string) Option {
	return func(s *Store) { s.runID = id }
}

// NewStore returns a record store over blobs.
func NewStore(blobs blobstore.BlobStore, optFns ...Option) *Store {
	s := &Store{
		blobs: blobs,
		codec: codec.Default,
		locks: pathLocks{m: make(map[string]*pathLock)},
	}
	for _, fn := range optFns {
		fn(s)
	}
	return s
}

// Blobs returns the underlying blob store.
func (s *Store) Blobs() blobstore.BlobStore { return s.blobs }

// Write persists one record under Name(fileName, xsrc, ysrc) and returns
// the name. Concurrent writes to the same name are serialized.
func (s *Store) Write(ctx context.Context, fileName string, rec *Record) (string, error) {
	h := rec.Header
	if len(h.SourceX) == 0 {
		return "", fmt.Errorf("%w: shot %d has no source coordinate", ErrFormat, h.Shot)
	}
	y := 0.0
	if len(h.SourceY) > 0 {
		y = h.SourceY[0]
	}
	name := Name(fileName, h.SourceX[0], y)

	if s.runID != "" && rec.Header.RunID == "" {
		rec = &Record{Header: rec.Header, Data: rec.Data}
		rec.Header.RunID = s.runID
	}
	data, err := Encode(rec, s.codec, s.compression)
	if err != nil {
		return "", err
	}

	unlock := s.locks.lock(name)
	defer unlock()

	if err := s.put(ctx, name, data); err != nil {
		return "", &IOError{Op: "write", Name: name, Err: err}
	}
	return name, nil
}

func (s *Store) put(ctx context.Context, name string, data []byte) error {
	w, err := s.blobs.Create(ctx, name)
	if err != nil {
		return err
	}
	rw := resource.NewRateLimitedWriter(ctx, w, s.rc)
	if _, err := rw.Write(data); err != nil {
		if a, ok := w.(blobstore.Abortable); ok {
			_ = a.Abort()
		}
		return err
	}
	if err := w.Sync(); err != nil {
		if a, ok := w.(blobstore.Abortable); ok {
			_ = a.Abort()
		}
		return err
	}
	return w.Close()
}

// WriteVector writes one record per shot of d, naming each by the first
// source coordinate of the matching shot in src. Shots are written
// concurrently; the returned names are in shot order. On failure the
// error is a *PartialWriteError and written files are left in place.
func (s *Store) WriteVector(ctx context.Context, fileName string, d *vector.Vector, src *geometry.Geometry) ([]string, error) {
	if src.NSrc() != d.NSrc() {
		return nil, fmt.Errorf("%w: %d data shots for %d source shots", ErrFormat, d.NSrc(), src.NSrc())
	}

	names := make([]string, d.NSrc())
	written := roaring.New()
	var mu sync.Mutex
	failed := -1

	g, gctx := errgroup.WithContext(ctx)
	if n := s.rc.Workers(); n > 0 {
		g.SetLimit(n)
	}
	for i := range d.NSrc() {
		g.Go(func() error {
			rec, err := NewRecord(i, d.Geometry.Shot(i), src.Shot(i), d.Data[i])
			if err == nil {
				names[i], err = s.Write(gctx, fileName, rec)
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if failed < 0 {
					failed = i
				}
				return err
			}
			written.Add(uint32(i))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &PartialWriteError{Written: written, Shot: failed, Err: err}
	}
	return names, nil
}

// Load reads and decodes a record.
func (s *Store) Load(ctx context.Context, name string) (*Record, error) {
	blob, err := s.blobs.Open(ctx, name)
	if err != nil {
		return nil, &IOError{Op: "open", Name: name, Err: err}
	}
	defer blob.Close()

	if err := s.rc.AcquireIO(ctx, int(blob.Size())); err != nil {
		return nil, &IOError{Op: "read", Name: name, Err: err}
	}

	var data []byte
	if m, ok := blob.(blobstore.Mappable); ok {
		data, err = m.Bytes()
	} else {
		data, err = blobstore.ReadAll(ctx, blob)
	}
	if err != nil {
		return nil, &IOError{Op: "read", Name: name, Err: err}
	}
	rec, err := Decode(data)
	if err != nil {
		return nil, &IOError{Op: "decode", Name: name, Err: err}
	}
	return rec, nil
}

// Inspect reads only the header of a record.
func (s *Store) Inspect(ctx context.Context, name string) (Header, error) {
	blob, err := s.blobs.Open(ctx, name)
	if err != nil {
		return Header{}, &IOError{Op: "open", Name: name, Err: err}
	}
	defer blob.Close()

	r, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		return Header{}, &IOError{Op: "read", Name: name, Err: err}
	}
	defer r.Close()

	return DecodeHeader(r)
}

// LoadVector loads records in the given order into one data vector whose
// geometry is rebuilt from the record headers.
func (s *Store) LoadVector(ctx context.Context, names []string) (*vector.Vector, error) {
	if len(names) == 0 {
		return nil, vector.ErrEmpty
	}
	recs := make([]*Record, len(names))
	g, gctx := errgroup.WithContext(ctx)
	if n := s.rc.Workers(); n > 0 {
		g.SetLimit(n)
	}
	for i, name := range names {
		g.Go(func() error {
			rec, err := s.Load(gctx, name)
			recs[i] = rec
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	shots := make([]geometry.Shot, len(recs))
	data := make([][]float32, len(recs))
	for i, rec := range recs {
		shots[i], data[i] = rec.Header.Receivers(), rec.Data
	}
	geom, err := geometry.FromShots(shots...)
	if err != nil {
		return nil, err
	}
	return vector.New(geom, data)
}

// List returns the record names written with fileName.
func (s *Store) List(ctx context.Context, fileName string) ([]string, error) {
	names, err := s.blobs.List(ctx, fileName+"_")
	if err != nil {
		return nil, &IOError{Op: "list", Name: fileName, Err: err}
	}
	return names, nil
}

// Delete removes records. Missing records are ignored.
func (s *Store) Delete(ctx context.Context, names ...string) error {
	var errs []error
	for _, name := range names {
		if err := s.blobs.Delete(ctx, name); err != nil {
			errs = append(errs, &IOError{Op: "delete", Name: name, Err: err})
		}
	}
	return errors.Join(errs...)
}

type pathLock struct {
	sync.Mutex
	refs int
}

// pathLocks hands out one mutex per blob name.
type pathLocks struct {
	mu sync.Mutex
	m  map[string]*pathLock
}

func (l *pathLocks) lock(name string) func() {
	l.mu.Lock()
	pl, ok := l.m[name]
	if !ok {
		pl = &pathLock{}
		l.m[name] = pl
	}
	pl.refs++
	l.mu.Unlock()

	pl.Lock()
	return func() {
		pl.Unlock()
		l.mu.Lock()
		pl.refs--
		if pl.refs == 0 {
			delete(l.m, name)
		}
		l.mu.Unlock()
	}
}
