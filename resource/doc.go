// Package resource implements the Controller that governs training resources.
//
// The Controller manages three resource types:
//
//   - Memory: per-restart working memory accounting (non-blocking, fail-fast)
//   - Workers: the number of restarts running at the same time
//   - IO: rate limit for report uploads to blob stores
//
// # Memory Management
//
// A restart reserves its working set (centroids, sums, assignment) before it
// starts. AcquireMemory never blocks and returns ErrMemoryLimitExceeded when
// the hard limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 30})
//	if err := rc.AcquireMemory(n); err != nil {
//	    // restart fails, the driver surfaces it
//	}
//	defer rc.ReleaseMemory(n)
//
// # Worker Limits
//
//	rc := resource.NewController(resource.Config{MaxWorkers: 4})
//	if err := rc.AcquireWorker(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseWorker()
//
// # IO Rate Limiting
//
// Token bucket limiter in bytes per second:
//
//	if err := rc.AcquireIO(ctx, len(blob)); err != nil {
//	    return err
//	}
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully; they become no-ops.
package resource
