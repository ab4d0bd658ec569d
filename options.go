package wavop

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/hupe1980/wavop/blobstore"
	"github.com/hupe1980/wavop/record"
	"github.com/hupe1980/wavop/resource"
)

// ErrInvalidOptions is returned when ModelingOptions fail validation.
var ErrInvalidOptions = errors.New("invalid modeling options")

// ModelingOptions controls how shots are solved and whether forward data is
// persisted.
type ModelingOptions struct {
	// LimitM solves each shot on the part of the model spanned by its
	// sources and receivers.
	LimitM bool `yaml:"limit_m"`

	// BufferSize pads the LimitM window on each side, in metres.
	BufferSize float64 `yaml:"buffer_size" validate:"gte=0"`

	// SaveDataToDisk writes one record per shot after every forward apply.
	SaveDataToDisk bool `yaml:"save_data_to_disk"`

	// FilePath is the directory records are written to when no record store
	// is configured.
	FilePath string `yaml:"file_path"`

	// FileName prefixes every record name.
	FileName string `yaml:"file_name" validate:"required_if=SaveDataToDisk true,excludesall=/\\"`

	// ISIC switches Jacobian applies to the inverse scattering imaging
	// condition.
	ISIC bool `yaml:"isic"`

	// Frequencies, in kHz, makes Jacobian applies work on the source-side
	// field synthesized from its DFT at these frequencies.
	Frequencies []float64 `yaml:"frequencies" validate:"omitempty,dive,gt=0"`
}

// linearized reports whether Jacobian applies need a Linearizer.
func (o ModelingOptions) linearized() bool {
	return o.ISIC || len(o.Frequencies) > 0
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validate checks the options.
func (o ModelingOptions) Validate() error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	return nil
}

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	controller       *resource.Controller
	records          *record.Store
	modeling         ModelingOptions
}

// Option configures operator construction.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for applies and
// per-shot solves. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &wavop.BasicMetricsCollector{}
//	f, _ := wavop.NewFullModeling(m, src, rec, s, wavop.WithMetricsCollector(metrics))
//	// ... apply ...
//	stats := metrics.GetStats()
//	fmt.Printf("Shots: %d, Avg latency: %dns\n", stats.ShotCount, stats.ShotAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithController bounds the number of concurrent shots and their working
// memory. By default shots run on GOMAXPROCS workers.
func WithController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithRecordStore sets where forward data is persisted when
// SaveDataToDisk is enabled. FilePath is ignored in that case.
func WithRecordStore(s *record.Store) Option {
	return func(o *options) {
		o.records = s
	}
}

// WithModelingOptions sets the modeling options bundle.
func WithModelingOptions(mo ModelingOptions) Option {
	mo.Frequencies = slices.Clone(mo.Frequencies)
	return func(o *options) {
		o.modeling = mo
	}
}

// config is the resolved, immutable form of options shared by an operator
// and everything derived from it.
type config struct {
	metrics    MetricsCollector
	logger     *Logger
	controller *resource.Controller
	records    *record.Store
	modeling   ModelingOptions
}

func applyOptions(optFns []Option) (*config, error) {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.controller == nil {
		o.controller = resource.NewController(resource.Config{})
	}
	if err := o.modeling.Validate(); err != nil {
		return nil, err
	}
	if o.modeling.SaveDataToDisk && o.records == nil {
		if o.modeling.FilePath == "" {
			return nil, fmt.Errorf("%w: SaveDataToDisk needs FilePath or a record store", ErrInvalidOptions)
		}
		o.records = record.NewStore(blobstore.NewLocalStore(o.modeling.FilePath), record.WithController(o.controller))
	}
	return &config{
		metrics:    o.metricsCollector,
		logger:     o.logger,
		controller: o.controller,
		records:    o.records,
		modeling:   o.modeling,
	}, nil
}
