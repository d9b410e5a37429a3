//go:build drapedebug

package pool

// StrictHandles makes stale handle use panic
const StrictHandles = true
