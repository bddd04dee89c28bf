// Package resource implements the resource controller shared by stores, vectors and
// their persistence paths.
//
// Two resources are governed:
//
//   - Memory: component and slot buffers reserve their bytes before growing
//     (non-blocking, fail-fast)
//   - IO: a token bucket throttles encoding and decoding streams
//
// # Memory
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20,
//	})
//
//	if err := rc.AcquireMemory(4096); err != nil {
//	    // ErrMemoryLimitExceeded
//	}
//	defer rc.ReleaseMemory(4096)
//
// # IO
//
//	rc := resource.NewController(resource.Config{
//	    IOLimitBytesPerSec: 16 << 20,
//	})
//
//	w := resource.NewRateLimitedWriter(ctx, file, rc)
//	r := resource.NewRateLimitedReader(ctx, file, rc)
//
// All methods handle a nil Controller as "no limits".
package resource
