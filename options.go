package tinyvec

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/tinyvec/codec"
	"github.com/hupe1980/tinyvec/internal/fs"
	"github.com/hupe1980/tinyvec/internal/resource"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	memoryLimit      int64
	ioLimit          int64
	compression      codec.Compression
	components       codec.Components
	fs               fs.FileSystem
}

func defaultOptions() options {
	return options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		compression:      codec.CompressionNone,
		components:       codec.Float32,
		fs:               fs.Default,
	}
}

func applyOptions(optFns []Option) options {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

// controller returns the resource controller for the configured limits, or nil
// when nothing is limited.
func (o *options) controller() *resource.Controller {
	if o.memoryLimit <= 0 && o.ioLimit <= 0 {
		return nil
	}
	return resource.NewController(resource.Config{
		MemoryLimitBytes:   o.memoryLimit,
		IOLimitBytesPerSec: o.ioLimit,
	})
}

// Option configures vectors, stores and persistence.
type Option func(*options)

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetrics sets the metrics collector. If nil is passed, metrics are disabled.
func WithMetrics(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithMemoryLimit caps the bytes of component and slot storage that a vector,
// or a store and every vector it loads, may allocate. Growth beyond the limit
// fails with ErrAllocation. Zero means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithCompression frames persisted stores with zstd or lz4. Readers detect
// compression automatically.
func WithCompression(c codec.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithComponentEncoding selects how components are persisted. Both writer and
// reader must agree; the default is codec.Float32.
func WithComponentEncoding(c codec.Components) Option {
	return func(o *options) {
		o.components = c
	}
}

// WithIOLimit throttles persistence reads and writes to bytesPerSec.
// Zero means unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

func withFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// SearchOption configures a single Search or Nearest call.
type SearchOption func(*searchOptions)

type searchOptions struct {
	filter      *roaring.Bitmap
	parallelism int
}

// WithFilter restricts the scan to the store indexes contained in bm.
// Indexes beyond the store length are ignored.
func WithFilter(bm *roaring.Bitmap) SearchOption {
	return func(o *searchOptions) {
		o.filter = bm
	}
}

// WithParallelism splits the scan over n goroutines. Results are identical to
// a sequential scan. Values below 2 scan sequentially.
func WithParallelism(n int) SearchOption {
	return func(o *searchOptions) {
		o.parallelism = n
	}
}
