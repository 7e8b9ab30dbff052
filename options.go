package spatialgo

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/spatialgo/internal/resource"
)

type options struct {
	workers          int
	dropPolicy       DropPolicy
	controller       *resource.Controller
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Space constructor behavior.
type Option func(*options)

// WithWorkers sets the maximum number of goroutines ForEachNeighbor fans out to.
//
// Values below 1 select runtime.GOMAXPROCS(0). When a Controller is also
// configured, its worker budget bounds the fan-out as well.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithDropPolicy configures how Load reacts to elements the backend rejects.
func WithDropPolicy(p DropPolicy) Option {
	return func(o *options) {
		o.dropPolicy = p
	}
}

// WithController shares a resource controller across spaces. Query workers
// are drawn from its semaphore, so several spaces together never exceed
// the controller's worker budget.
func WithController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &spatialgo.BasicMetricsCollector{}
//	sp := spatialgo.New(ix, spatialgo.WithMetricsCollector(metrics))
//	// ... drive frames ...
//	stats := metrics.GetStats()
//	fmt.Printf("Rebuilds: %d, Avg latency: %dns\n", stats.RebuildCount, stats.RebuildAvgNanos)
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
//	logger := spatialgo.NewJSONLogger(slog.LevelInfo)
//	sp := spatialgo.New(ix, spatialgo.WithLogger(logger))
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

func applyOptions(optFns []Option) options {
	o := options{
		dropPolicy:       FailFast,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	if o.controller != nil {
		o.workers = min(o.workers, o.controller.MaxWorkers())
	}
	return o
}
