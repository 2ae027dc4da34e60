// Package resource implements the memory budget for a pair count.
//
// Lattice coordinate storage and the per-worker accumulator arena reserve
// their size from a Controller before allocating, and give it back when
// they are released. Reservations never block: when a reservation would
// exceed the configured limit, AcquireMemory fails immediately with
// ErrMemoryLimitExceeded and the count is abandoned.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//
//	if err := rc.AcquireMemory(n * 24); err != nil {
//	    return err
//	}
//	defer rc.ReleaseMemory(n * 24)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully; they become no-ops.
package resource
