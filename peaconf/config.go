package peaconf

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option customizes one pea.Run invocation. It mutates a Config before
// analysis begins; as a rule, option constructors never panic and ignore
// nil inputs rather than erroring.
type Option func(cfg *Config)

// Config is the resolved, immutable-by-convention configuration for a run.
// A Config is built once per call to pea.Run via NewConfig and never
// mutated afterward.
type Config struct {
	// Logger receives structured decision logs (package observ): each
	// analysis diagnostic that names an allocation, a back-edge abort, and a
	// run summary. Tracking, guard elimination, materialization and
	// big-integer decomposition decisions are not logged. Defaults to
	// zap.NewNop() — silent.
	Logger *zap.Logger

	// MetricsRegisterer, if non-nil, is where package observ registers its
	// Prometheus collectors. Left nil, metrics are not exported at all;
	// wiring metrics is opt-in since most callers run the pass far more
	// often than they scrape it.
	MetricsRegisterer prometheus.Registerer

	// DumpWriter, if non-nil, receives a Graphviz dump of the graph's
	// control-flow structure and escape-dependency DAG after each run.
	DumpWriter io.Writer

	// BigIntCacheSize bounds the shared small-integer re-boxing cache
	// (package bigint). Zero means bigint.NewCache's own default.
	BigIntCacheSize int
}

// defaultConfig returns a Config with every observability integration
// disabled and the big-integer cache at its package default.
func defaultConfig() *Config {
	return &Config{
		Logger: zap.NewNop(),
	}
}

// NewConfig applies every opt in order over defaultConfig and returns the
// result. Later options override earlier ones.
func NewConfig(opts ...Option) *Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithLogging installs logger as the destination for decision logs. A nil
// logger is ignored, leaving the previous (or default no-op) logger in
// place.
func WithLogging(logger *zap.Logger) Option {
	return func(cfg *Config) {
		if logger != nil {
			cfg.Logger = logger
		}
	}
}

// WithMetrics installs reg as the Prometheus registerer package observ
// registers its collectors against.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(cfg *Config) {
		cfg.MetricsRegisterer = reg
	}
}

// WithDump installs w as the destination for a Graphviz dump produced after
// the run completes.
func WithDump(w io.Writer) Option {
	return func(cfg *Config) {
		cfg.DumpWriter = w
	}
}

// WithBigIntCacheSize bounds the shared small-integer re-boxing cache. A
// non-positive size is ignored.
func WithBigIntCacheSize(size int) Option {
	return func(cfg *Config) {
		if size > 0 {
			cfg.BigIntCacheSize = size
		}
	}
}
