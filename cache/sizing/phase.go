package sizing

// Phase identifies which branch of the update law handled a frame.
type Phase uint8

const (
	// Dimensions were reset to the bound and the epoch restarted.
	Reset Phase = iota

	// Samples produced since the last reset have not drained yet.
	Waiting

	// Settled samples are being averaged into the current epoch.
	Smoothing
)

func (p Phase) String() string {
	switch p {
	case Reset:
		return "reset"
	case Waiting:
		return "waiting"
	case Smoothing:
		return "smoothing"
	}
	return "unknown"
}

// ResetReason records why a frame took the RESET branch.
type ResetReason uint8

const (
	NoReset ResetReason = iota
	ResetAdaptiveDisabled
	ResetRequested
	ResetUninitialized
	ResetSmoothingDisabled
	ResetNoFeedback
	ResetFrameGap
)

func (r ResetReason) String() string {
	switch r {
	case NoReset:
		return "none"
	case ResetAdaptiveDisabled:
		return "adaptive-disabled"
	case ResetRequested:
		return "requested"
	case ResetUninitialized:
		return "uninitialized"
	case ResetSmoothingDisabled:
		return "smoothing-disabled"
	case ResetNoFeedback:
		return "no-feedback"
	case ResetFrameGap:
		return "frame-gap"
	}
	return "unknown"
}

// Reasons that hold the controller in RESET for as long as the config does
// not change.
func (r ResetReason) persistent() bool {
	return r == ResetAdaptiveDisabled || r == ResetSmoothingDisabled
}
