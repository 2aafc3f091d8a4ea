package kclust

import (
	"log/slog"

	"github.com/hupe1980/kclust/consensus"
	"github.com/hupe1980/kclust/resource"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	maxWorkers       int
	rc               *resource.Controller
	accuracyMode     consensus.AccuracyMode
	classes          int
	classesFixed     bool
}

// Option configures Trainer behavior.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring training.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &kclust.BasicMetricsCollector{}
//	tr, _ := kclust.New(cfg, kclust.WithMetricsCollector(metrics))
//	// ... tr.Fit ...
//	stats := metrics.GetStats()
//	fmt.Printf("Restarts: %d, best inertia: %f\n", stats.RestartCount, stats.BestInertia)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for training.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := kclust.NewJSONLogger(slog.LevelInfo)
//	tr, _ := kclust.New(cfg, kclust.WithLogger(logger))
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

// WithMaxWorkers bounds the number of restarts running in parallel.
// Values <= 0 select runtime.GOMAXPROCS(0). The pool never exceeds NTries.
func WithMaxWorkers(n int) Option {
	return func(o *options) {
		o.maxWorkers = n
	}
}

// WithResourceController makes every restart hold a worker slot and reserve
// its estimated working memory on rc. A restart that cannot reserve memory
// fails instead of running.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithAccuracyMode selects how Model.Accuracy lays out its rows.
// Defaults to consensus.AccuracyByCluster.
func WithAccuracyMode(mode consensus.AccuracyMode) Option {
	return func(o *options) {
		o.accuracyMode = mode
	}
}

// WithLabelClasses fixes the number of label classes (accuracy columns).
// Labels >= n are rejected by Fit and Model.Evaluate. Values <= 0 restore the
// default of max(label)+1, which Model.Evaluate widens for held-out labels.
func WithLabelClasses(n int) Option {
	return func(o *options) {
		o.classes = n
		o.classesFixed = n > 0
	}
}

// WithMinLabelClasses sets a lower bound on the class count without fixing
// it: larger labels widen the accuracy matrices instead of failing.
func WithMinLabelClasses(n int) Option {
	return func(o *options) {
		o.classes = max(n, 0)
		o.classesFixed = false
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		accuracyMode:     consensus.AccuracyByCluster,
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
	return o
}
