package experiment

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/wavop"
)

// ErrInvalid is returned for files that parse but fail validation.
var ErrInvalid = errors.New("experiment: invalid configuration")

// Config is the root of an experiment file.
type Config struct {
	Model     ModelConfig           `yaml:"model"`
	Geometry  GeometryConfig        `yaml:"geometry"`
	Wavelet   WaveletConfig         `yaml:"wavelet"`
	Options   wavop.ModelingOptions `yaml:"options"`
	Storage   StorageConfig         `yaml:"storage"`
	Resources ResourceConfig        `yaml:"resources"`
}

// ModelConfig describes a layered model. Velocities are in km/s, tops in
// metres.
type ModelConfig struct {
	Shape    []int     `yaml:"shape" validate:"min=2,max=3,dive,gt=0"`
	Spacing  []float64 `yaml:"spacing" validate:"min=2,max=3,dive,gt=0"`
	Origin   []float64 `yaml:"origin" validate:"omitempty,min=2,max=3"`
	Tops     []float64 `yaml:"tops" validate:"min=1"`
	Velocity []float32 `yaml:"velocity" validate:"min=1,dive,gt=0"`
	NBPML    int       `yaml:"nbpml" validate:"gte=0"`
}

// GeometryConfig places one source per shot and a shared receiver line.
type GeometryConfig struct {
	SourceX   []float64      `yaml:"source_x" validate:"min=1"`
	SourceY   float64        `yaml:"source_y"`
	SourceZ   float64        `yaml:"source_z"`
	Receivers ReceiverConfig `yaml:"receivers"`
	// Dt and T are in ms. A zero Dt selects the model's critical time step;
	// larger steps than that are rejected.
	Dt float64 `yaml:"dt" validate:"gte=0"`
	T  float64 `yaml:"t" validate:"gt=0"`
}

// ReceiverConfig is an evenly spaced line of receivers.
type ReceiverConfig struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
	Count int     `yaml:"count" validate:"gt=0"`
	Depth float64 `yaml:"depth"`
}

// WaveletConfig selects a Ricker wavelet. F0 is the peak frequency in kHz.
type WaveletConfig struct {
	F0 float64 `yaml:"f0" validate:"gte=0"`
}

// StorageConfig selects where shot records go.
type StorageConfig struct {
	Backend     string `yaml:"backend" validate:"omitempty,oneof=local memory s3 minio"`
	Bucket      string `yaml:"bucket" validate:"required_if=Backend s3,required_if=Backend minio"`
	Prefix      string `yaml:"prefix"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint" validate:"required_if=Backend minio"`
	AccessKey   string `yaml:"access_key"`
	SecretKey   string `yaml:"secret_key"`
	Secure      bool   `yaml:"secure"`
	Compression string `yaml:"compression" validate:"omitempty,oneof=none lz4 zstd"`
	Codec       string `yaml:"codec" validate:"omitempty,oneof=json go-json"`
}

// ResourceConfig bounds concurrency, memory and record IO.
type ResourceConfig struct {
	MaxWorkers         int64 `yaml:"max_workers" validate:"gte=0"`
	MemoryLimitBytes   int64 `yaml:"memory_limit_bytes" validate:"gte=0"`
	IOLimitBytesPerSec int64 `yaml:"io_limit_bytes_per_sec" validate:"gte=0"`
}

// DefaultF0 is the wavelet peak frequency used when none is set.
const DefaultF0 = 0.01

var validate = validator.New()

// Load reads and validates an experiment file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates an experiment document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalid)
		}
		return nil, fmt.Errorf("experiment: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if len(c.Model.Spacing) != len(c.Model.Shape) {
		return fmt.Errorf("%w: %d spacings for %d dimensions", ErrInvalid, len(c.Model.Spacing), len(c.Model.Shape))
	}
	if len(c.Model.Origin) != 0 && len(c.Model.Origin) != len(c.Model.Shape) {
		return fmt.Errorf("%w: %d origins for %d dimensions", ErrInvalid, len(c.Model.Origin), len(c.Model.Shape))
	}
	if len(c.Model.Tops) != len(c.Model.Velocity) {
		return fmt.Errorf("%w: %d layer tops for %d velocities", ErrInvalid, len(c.Model.Tops), len(c.Model.Velocity))
	}
	return c.Options.Validate()
}
