package mixgo

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/hupe1980/mixgo/codec"
	"github.com/hupe1980/mixgo/value"
)

type options struct {
	codec            codec.Codec
	metricsCollector MetricsCollector
	logger           *Logger
	checkLevel       value.CheckLevel
	rng              *rand.Rand
	sparseThreshold  float32
	progressInterval time.Duration
}

// Option configures Engine construction.
type Option func(*options)

// WithCodec configures the codec used for group and assignment dumps.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &mixgo.BasicMetricsCollector{}
//	eng, _ := mixgo.New(model, mixgo.WithMetricsCollector(metrics))
//	// ... use eng ...
//	stats := metrics.GetStats()
//	fmt.Printf("Adds: %d, Avg latency: %dns\n", stats.AddCount, stats.AddAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := mixgo.NewJSONLogger(slog.LevelInfo)
//	eng, _ := mixgo.New(model, mixgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
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

// WithCheckLevel sets how thoroughly rows are validated. The default is
// value.CheckBasic. At value.CheckOff a malformed row may corrupt state.
func WithCheckLevel(level value.CheckLevel) Option {
	return func(o *options) {
		o.checkLevel = level
	}
}

// WithSeed makes inference reproducible.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithRand sets the random source. It must not be shared with other
// goroutines.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithSparseThreshold rewrites the observed descriptor of every added row
// into its most compact encoding before it is applied. Rows observing fewer
// than threshold times the column count become sparse. Zero disables.
func WithSparseThreshold(threshold float32) Option {
	return func(o *options) {
		o.sparseThreshold = threshold
	}
}

// WithProgressInterval sets how often Infer logs progress. Zero disables.
func WithProgressInterval(d time.Duration) Option {
	return func(o *options) {
		o.progressInterval = d
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            codec.Default,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		checkLevel:       value.CheckBasic,
		progressInterval: 10 * time.Second,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return o
}
