// Package constants holds default tuning values shared across the
// scheduler, timer, and cache packages.
package constants

// Coroutine scheduler defaults
const (
	// DefaultStackSize is the original C++'s default per-coroutine stack
	// allocation (256 KiB). Nothing in this module reads it: each
	// coroutine runs on a goroutine whose stack the Go runtime manages,
	// so the constant is kept for parity with spec §3 only.
	DefaultStackSize = 256 * 1024

	// MaxFreeRecycled bounds the scheduler's recycle list (spec §3:
	// "recycle list of up to MAX_FREE retired coroutine objects").
	MaxFreeRecycled = 1024
)

// Sequence timer defaults
const (
	// NoMaxTimers indicates no upper bound on concurrently registered
	// timers (spec §6: "max_timer_num: optional upper bound").
	NoMaxTimers = 0
)

// KV cache defaults (spec §6)
const (
	// DefaultMaxFrameNum sizes the initial key-map hash bucket count.
	DefaultMaxFrameNum = 10000

	// DefaultBlockNum is the default number of preallocated blocks.
	DefaultBlockNum = 15000

	// DefaultBlockSize is the default size in bytes of each block.
	DefaultBlockSize = 512

	// ReserveMargin is the safety margin (in blocks) a Put must leave
	// free after satisfying its own allocation (spec §4.C).
	ReserveMargin = 10
)
