package wayfare

// StopReason indicates why the model stopped generating.
type StopReason string

const (
	StopEndTurn StopReason = "end_turn"
	StopLength  StopReason = "length"
	StopFilter  StopReason = "content_filter"
	StopUnknown StopReason = "unknown"
)

// Truncated reports whether the output hit the token ceiling.
func (s StopReason) Truncated() bool {
	return s == StopLength
}
