package isodata

import (
	"time"
)

// DefaultSplitCoefficient is the fraction of a center coordinate used to
// offset the two halves of a split.
const DefaultSplitCoefficient = 0.3

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	seed             int64
	initialCenters   []int
	alpha            float64
	sink             Sink
}

func defaultOptions() options {
	return options{
		logger:           NewLogger(nil),
		metricsCollector: NoopMetricsCollector{},
		seed:             time.Now().UnixNano(),
		alpha:            DefaultSplitCoefficient,
	}
}

// Option configures an Engine.
type Option func(*options)

// WithLogger configures structured logging.
// Pass nil to keep the default text logger on stderr.
//
// Example:
//
//	eng, _ := isodata.New(src, params, isodata.WithLogger(isodata.NewJSONLogger(slog.LevelDebug)))
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsCollector configures a metrics collector for monitoring runs.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &isodata.BasicMetricsCollector{}
//	eng, _ := isodata.New(src, params, isodata.WithMetricsCollector(metrics))
//	_, _ = eng.Run(ctx)
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithSeed fixes the random seed used to pick initial centers.
// Without it the seed is taken from the wall clock.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithInitialCenters seeds the clusters from the given point indices
// instead of drawing them at random. Out-of-range and duplicate-valued
// points are skipped.
func WithInitialCenters(indices ...int) Option {
	return func(o *options) {
		o.initialCenters = append([]int(nil), indices...)
	}
}

// WithSplitCoefficient sets the split offset coefficient (default 0.3).
// Non-positive values are ignored.
func WithSplitCoefficient(alpha float64) Option {
	return func(o *options) {
		if alpha > 0 {
			o.alpha = alpha
		}
	}
}

// WithSink registers a sink that receives the result of every
// successful run.
func WithSink(s Sink) Option {
	return func(o *options) {
		o.sink = s
	}
}
