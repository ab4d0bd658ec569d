package experiment

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/wavop"
	"github.com/hupe1980/wavop/blobstore"
	minioblob "github.com/hupe1980/wavop/blobstore/minio"
	s3blob "github.com/hupe1980/wavop/blobstore/s3"
	"github.com/hupe1980/wavop/codec"
	"github.com/hupe1980/wavop/geometry"
	"github.com/hupe1980/wavop/model"
	"github.com/hupe1980/wavop/record"
	"github.com/hupe1980/wavop/resource"
	"github.com/hupe1980/wavop/vector"
	"github.com/hupe1980/wavop/wavelet"
)

// Experiment is a ready-to-model set of inputs.
type Experiment struct {
	Model *model.Model
	Src   *geometry.Geometry
	Rec   *geometry.Geometry
	// Q holds the source wavelet of every shot.
	Q *vector.Vector
}

// NSrc returns the number of shots.
func (e *Experiment) NSrc() int { return e.Src.NSrc() }

// Build creates the model, geometries and wavelet.
func (c *Config) Build() (*Experiment, error) {
	mc := c.Model
	origin := mc.Origin
	if len(origin) == 0 {
		origin = make([]float64, len(mc.Shape))
	}
	var opts []model.Option
	if mc.NBPML > 0 {
		opts = append(opts, model.WithNBPML(mc.NBPML))
	}
	m, err := model.Layered(mc.Shape, mc.Spacing, origin, mc.Tops, mc.Velocity, opts...)
	if err != nil {
		return nil, err
	}

	gc := c.Geometry
	dt := gc.Dt
	switch crit := m.CriticalDt(); {
	case dt == 0:
		dt = crit
	case dt > crit:
		return nil, fmt.Errorf("%w: dt %g ms exceeds the critical time step %.4g ms", ErrInvalid, dt, crit)
	}
	nsrc := len(gc.SourceX)
	xs := make([][]float64, nsrc)
	ys := make([][]float64, nsrc)
	zs := make([][]float64, nsrc)
	for i, x := range gc.SourceX {
		xs[i], ys[i], zs[i] = []float64{x}, []float64{gc.SourceY}, []float64{gc.SourceZ}
	}
	src, err := geometry.New(xs, ys, zs, dt, gc.T, nsrc)
	if err != nil {
		return nil, err
	}

	rc := gc.Receivers
	xr := make([]float64, rc.Count)
	yr := make([]float64, rc.Count)
	zr := make([]float64, rc.Count)
	for r := range xr {
		if rc.Count > 1 {
			xr[r] = rc.Start + (rc.End-rc.Start)*float64(r)/float64(rc.Count-1)
		} else {
			xr[r] = rc.Start
		}
		yr[r], zr[r] = gc.SourceY, rc.Depth
	}
	rec, err := geometry.New([][]float64{xr}, [][]float64{yr}, [][]float64{zr}, dt, gc.T, nsrc)
	if err != nil {
		return nil, err
	}

	f0 := c.Wavelet.F0
	if f0 == 0 {
		f0 = DefaultF0
	}
	w := wavelet.Ricker(gc.T, dt, f0)
	data := make([][]float32, nsrc)
	for i := range data {
		data[i] = wavelet.Tile(w, 1)
	}
	q, err := vector.New(src, data)
	if err != nil {
		return nil, err
	}
	return &Experiment{Model: m, Src: src, Rec: rec, Q: q}, nil
}

// Controller returns the resource controller for the configured limits.
func (c *Config) Controller() *resource.Controller {
	return resource.NewController(resource.Config{
		MaxWorkers:         c.Resources.MaxWorkers,
		MemoryLimitBytes:   c.Resources.MemoryLimitBytes,
		IOLimitBytesPerSec: c.Resources.IOLimitBytesPerSec,
	})
}

// OpenBlobStore connects to the configured storage backend. The local
// backend writes below Options.FilePath.
func (c *Config) OpenBlobStore(ctx context.Context) (blobstore.BlobStore, error) {
	sc := c.Storage
	switch sc.Backend {
	case "", "local":
		dir := c.Options.FilePath
		if dir == "" {
			dir = "."
		}
		return blobstore.NewLocalStore(dir), nil
	case "memory":
		return blobstore.NewMemoryStore(), nil
	case "s3":
		opts := []s3blob.Option{s3blob.WithPrefix(sc.Prefix)}
		if sc.Region != "" {
			opts = append(opts, s3blob.WithRegion(sc.Region))
		}
		if sc.Endpoint != "" {
			opts = append(opts, s3blob.WithEndpoint(sc.Endpoint))
		}
		store, err := s3blob.New(ctx, sc.Bucket, opts...)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "minio":
		client, err := minio.New(sc.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(sc.AccessKey, sc.SecretKey, ""),
			Secure: sc.Secure,
			Region: sc.Region,
		})
		if err != nil {
			return nil, err
		}
		return minioblob.NewStore(client, sc.Bucket, sc.Prefix), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", ErrInvalid, sc.Backend)
	}
}

// RecordStore wraps the configured blob store with the configured record
// encoding.
func (c *Config) RecordStore(ctx context.Context, rc *resource.Controller, runID string) (*record.Store, error) {
	blobs, err := c.OpenBlobStore(ctx)
	if err != nil {
		return nil, err
	}
	opts := []record.Option{record.WithController(rc), record.WithRunID(runID)}
	if c.Storage.Compression != "" {
		comp, err := record.ParseCompression(c.Storage.Compression)
		if err != nil {
			return nil, err
		}
		opts = append(opts, record.WithCompression(comp))
	}
	if c.Storage.Codec != "" {
		cd, ok := codec.ByName(c.Storage.Codec)
		if !ok {
			return nil, fmt.Errorf("%w: unknown codec %q", ErrInvalid, c.Storage.Codec)
		}
		opts = append(opts, record.WithCodec(cd))
	}
	return record.NewStore(blobs, opts...), nil
}

// OperatorOptions returns the wavop options for this experiment: modeling
// options, resource limits and, when records are saved, the record store.
func (c *Config) OperatorOptions(ctx context.Context, rc *resource.Controller, runID string) ([]wavop.Option, error) {
	opts := []wavop.Option{
		wavop.WithModelingOptions(c.Options),
		wavop.WithController(rc),
	}
	if c.Options.SaveDataToDisk {
		store, err := c.RecordStore(ctx, rc, runID)
		if err != nil {
			return nil, err
		}
		opts = append(opts, wavop.WithRecordStore(store))
	}
	return opts, nil
}
