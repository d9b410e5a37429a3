//go:build !drapedebug

package pool

// StrictHandles is off in release builds, stale handle use is logged
const StrictHandles = false
