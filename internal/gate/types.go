package gate

import "github.com/danielpatrickdp/cem-controller/internal/status"

// #region gate-decision
// GateDecision is the override gate's verdict for one cycle.
type GateDecision struct {
	Held              bool   // skip detectors and evaluator this cycle
	Active            bool   // experimental mode while Held
	SuppressStopLight bool   // drop a stale stop-light latch
	Reason            string // short label for logs and metrics
}

// #endregion gate-decision

// #region press-source
// PressSource identifies which control produced a manual press.
type PressSource int

const (
	SourceDistance PressSource = iota // long press of the follow distance button
	SourceLKAS                        // LKAS button
	SourceScreen                      // double tap on the onroad screen
)

// codes maps a source to its (off, on) override pair.
var codes = map[PressSource][2]status.Code{
	SourceDistance: {status.OverrideOffDistance, status.OverrideOnDistance},
	SourceLKAS:     {status.OverrideOffLKAS, status.OverrideOnLKAS},
	SourceScreen:   {status.OverrideOffScreen, status.OverrideOnScreen},
}

// ParseSource maps "distance", "lkas" or "screen" to a PressSource.
func ParseSource(s string) (PressSource, bool) {
	switch s {
	case "distance":
		return SourceDistance, true
	case "lkas":
		return SourceLKAS, true
	case "screen":
		return SourceScreen, true
	}
	return 0, false
}

// #endregion press-source
