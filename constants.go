package gocoro

import "github.com/ehrlich-b/gocoro/internal/constants"

// Re-exported tuning constants for the public API (spec §3 defaults).
const (
	DefaultStackSize = constants.DefaultStackSize
	MaxFreeRecycled  = constants.MaxFreeRecycled

	DefaultMaxFrameNum = constants.DefaultMaxFrameNum
	DefaultBlockNum    = constants.DefaultBlockNum
	DefaultBlockSize   = constants.DefaultBlockSize
	ReserveMargin      = constants.ReserveMargin
)
