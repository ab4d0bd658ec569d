package record

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/hupe1980/wavop/blobstore"
	"github.com/hupe1980/wavop/geometry"
	"github.com/hupe1980/wavop/resource"
	"github.com/hupe1980/wavop/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoShots(t *testing.T) (*vector.Vector, *geometry.Geometry) {
	t.Helper()
	rx := []float64{0, 100, 200, 300}
	zeros := make([]float64, len(rx))
	depth := []float64{10, 10, 10, 10}
	recGeom, err := geometry.New([][]float64{rx}, [][]float64{zeros}, [][]float64{depth}, 2, 20, 2)
	require.NoError(t, err)
	srcGeom, err := geometry.New(
		[][]float64{{400}, {800.5}},
		[][]float64{{0}, {0}},
		[][]float64{{20}, {20}},
		2, 20, 2,
	)
	require.NoError(t, err)

	d := vector.Zeros(recGeom)
	for i := range d.Data {
		for k := range d.Data[i] {
			d.Data[i][k] = float32(i*1000+k) / 7
		}
	}
	return d, srcGeom
}

func TestName(t *testing.T) {
	assert.Equal(t, "shot_record_400_0.segy", Name("shot_record", 400, 0))
	assert.Equal(t, "shot_record_800.5_-12.25.segy", Name("shot_record", 800.5, -12.25))
}

func TestStore_WriteVectorLocal(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(blobstore.NewLocalStore(dir),
		WithCompression(CompressionLZ4),
		WithController(resource.NewController(resource.Config{MaxWorkers: 2})),
		WithRunID("run-1"),
	)
	ctx := context.Background()
	d, src := twoShots(t)

	names, err := store.WriteVector(ctx, "shot_record", d, src)
	require.NoError(t, err)
	assert.Equal(t, []string{"shot_record_400_0.segy", "shot_record_800.5_0.segy"}, names)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var files []string
	for _, e := range entries {
		files = append(files, e.Name())
	}
	sort.Strings(files)
	assert.Equal(t, names, files)

	listed, err := store.List(ctx, "shot_record")
	require.NoError(t, err)
	assert.Equal(t, names, listed)

	back, err := store.LoadVector(ctx, names)
	require.NoError(t, err)
	assert.Equal(t, d.Data, back.Data)
	assert.True(t, back.Geometry.Equal(d.Geometry))

	hdr, err := store.Inspect(ctx, names[1])
	require.NoError(t, err)
	assert.Equal(t, 1, hdr.Shot)
	assert.Equal(t, []float64{800.5}, hdr.SourceX)
	assert.Equal(t, "run-1", hdr.RunID)
	assert.Equal(t, 11, hdr.NT)

	require.NoError(t, store.Delete(ctx, names...))
	listed, err = store.List(ctx, "shot_record")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestStore_LoadMissing(t *testing.T) {
	store := NewStore(blobstore.NewLocalStore(t.TempDir()))
	_, err := store.Load(context.Background(), "missing_0_0.segy")
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestStore_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad_0_0.segy"), []byte("WVRCgarbage"), 0o644))
	store := NewStore(blobstore.NewLocalStore(dir))

	_, err := store.Load(context.Background(), "bad_0_0.segy")
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, ErrChecksum)
}

// failingStore fails every write whose name is in fail.
type failingStore struct {
	*blobstore.MemoryStore
	fail string
}

var errDiskFull = errors.New("disk full")

func (s *failingStore) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	if name == s.fail {
		return nil, errDiskFull
	}
	return s.MemoryStore.Create(ctx, name)
}

func TestStore_PartialWrite(t *testing.T) {
	mem := blobstore.NewMemoryStore()
	store := NewStore(&failingStore{MemoryStore: mem, fail: "shot_record_800.5_0.segy"},
		WithController(resource.NewController(resource.Config{MaxWorkers: 1})))
	d, src := twoShots(t)

	_, err := store.WriteVector(context.Background(), "shot_record", d, src)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, errDiskFull)

	var pw *PartialWriteError
	require.ErrorAs(t, err, &pw)
	assert.Equal(t, 1, pw.Shot)
	assert.True(t, pw.Written.Contains(0))
	assert.False(t, pw.Written.Contains(1))

	// Written records are not cleaned up.
	names, err := mem.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"shot_record_400_0.segy"}, names)
}

// trackingStore records the peak number of concurrent writers per name.
type trackingStore struct {
	*blobstore.MemoryStore
	mu     sync.Mutex
	active map[string]int
	peak   atomic.Int32
}

type trackedBlob struct {
	blobstore.WritableBlob
	done func()
}

func (b *trackedBlob) Close() error {
	defer b.done()
	return b.WritableBlob.Close()
}

func (s *trackingStore) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	s.mu.Lock()
	s.active[name]++
	if n := int32(s.active[name]); n > s.peak.Load() {
		s.peak.Store(n)
	}
	s.mu.Unlock()

	w, err := s.MemoryStore.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	return &trackedBlob{WritableBlob: w, done: func() {
		s.mu.Lock()
		s.active[name]--
		s.mu.Unlock()
	}}, nil
}

func TestStore_SamePathSerialized(t *testing.T) {
	ts := &trackingStore{MemoryStore: blobstore.NewMemoryStore(), active: map[string]int{}}
	store := NewStore(ts)
	rec := sampleRecord(t)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Write(context.Background(), "same", rec)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ts.peak.Load())
	assert.Empty(t, store.locks.m)
}
