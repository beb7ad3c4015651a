// Package resource implements the Controller for memory, upload and IO limits.
//
//   - Memory: builders reserve every buffer growth (non-blocking, fail-fast)
//   - Uploads: bound the number of concurrent blob uploads
//   - IO: token bucket throttling of persisted bytes
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for hard limits and atomic counters
// for usage tracking. AcquireMemory is non-blocking and returns immediately
// with ErrMemoryLimitExceeded if the limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20,
//	})
//
//	if err := rc.AcquireMemory(1 << 20); err != nil {
//	    // ErrMemoryLimitExceeded - fatal for the current build
//	}
//	defer rc.ReleaseMemory(1 << 20)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
// This allows optional resource limiting without nil checks everywhere.
package resource
