package strtab

import (
	"log/slog"

	"github.com/hupe1980/strtab/internal/resource"
	"github.com/hupe1980/strtab/internal/width"
)

// Width is the byte width of an encoded offset or length.
type Width = width.Width

// Supported widths.
const (
	Width8  = width.W8
	Width16 = width.W16
	Width32 = width.W32
	Width64 = width.W64
)

// ResourceController enforces memory, upload concurrency and IO limits.
// A single controller may be shared by many builders and persistence calls.
type ResourceController = resource.Controller

// ResourceConfig configures a ResourceController.
type ResourceConfig = resource.Config

// NewResourceController creates a controller with the given limits.
func NewResourceController(cfg ResourceConfig) *ResourceController {
	return resource.NewController(cfg)
}

type options struct {
	countHint        int
	byteHint         int
	dedup            bool
	nullTerminated   bool
	maxWidth         Width
	maxBytes         int
	resources        *ResourceController
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a Builder.
type Option func(*options)

// WithCountHint preallocates the index for n strings.
func WithCountHint(n int) Option {
	return func(o *options) {
		o.countHint = max(n, 0)
	}
}

// WithByteHint preallocates n bytes of string content.
func WithByteHint(n int) Option {
	return func(o *options) {
		o.byteHint = max(n, 0)
	}
}

// WithDedup makes byte-identical strings share one id and one copy of their
// bytes. The lookup costs memory while building and is dropped by Finalize.
func WithDedup() Option {
	return func(o *options) {
		o.dedup = true
	}
}

// WithNullTerminated stores a NUL byte after every string so that
// Table.CString can hand out C-compatible views. Get never includes the NUL.
func WithNullTerminated() Option {
	return func(o *options) {
		o.nullTerminated = true
	}
}

// WithMaxWidth caps the offset and length widths Finalize may select.
// Finalize fails with ErrCapacityExceeded if the content needs a wider tier.
// The default is Width64.
func WithMaxWidth(w Width) Option {
	return func(o *options) {
		o.maxWidth = w
	}
}

// WithMaxBytes caps the string content of a table, NUL terminators included.
// An insert that would exceed it fails with ErrCapacityExceeded and leaves
// the builder usable.
func WithMaxBytes(n int) Option {
	return func(o *options) {
		o.maxBytes = max(n, 0)
	}
}

// WithMemoryLimit limits the backing buffer of a builder to bytes of reserved
// memory. Exceeding the limit fails the insert with ErrAllocationFailure.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.resources = resource.NewController(resource.Config{MemoryLimitBytes: bytes})
	}
}

// WithResourceController charges buffer growth to a shared controller.
//
// Example:
//
//	rc := strtab.NewResourceController(strtab.ResourceConfig{MemoryLimitBytes: 256 << 20})
//	b1 := strtab.NewBuilder(strtab.WithResourceController(rc))
//	b2 := strtab.NewBuilder(strtab.WithResourceController(rc))
func WithResourceController(rc *ResourceController) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &strtab.BasicMetricsCollector{}
//	b := strtab.NewBuilder(strtab.WithMetricsCollector(metrics))
//	// ... insert, finalize ...
//	stats := metrics.GetStats()
//	fmt.Printf("Inserts: %d, dedup hits: %d\n", stats.InsertCount, stats.DedupHits)
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
		maxWidth:         Width64,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
