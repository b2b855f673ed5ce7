package gate

import "github.com/danielpatrickdp/cem-controller/internal/status"

const (
	ReasonEvaluate   = "evaluate"
	ReasonOverride   = "override"
	ReasonStandstill = "standstill"
)

// #region gate
// Gate decides whether a cycle runs the detectors and rule chain or holds a
// decision pinned by a manual override or by standstill.
type Gate struct{}

// NewGate creates an override gate.
func NewGate() *Gate {
	return &Gate{}
}

// Evaluate takes the status code read from the register, the standstill
// flag, and the previous decision.
//
// A reserved override code holds the decision whether or not the car is
// moving: on-codes force it on. Standstill alone also holds, and a decision
// that was on stays on while stopped.
func (g *Gate) Evaluate(code status.Code, standstill bool, prevActive bool) GateDecision {
	override := code.IsOverride()
	if !override && !standstill {
		return GateDecision{Reason: ReasonEvaluate}
	}

	reason := ReasonStandstill
	if override {
		reason = ReasonOverride
	}
	return GateDecision{
		Held:              true,
		Active:            code.ForcesOn() || (standstill && prevActive),
		SuppressStopLight: override,
		Reason:            reason,
	}
}

// #endregion gate

// #region press
// Press returns the code a manual press from src should publish. Pressing
// while an override is pinned hands control back to the rules. Otherwise it
// flips the current decision: on becomes the source's off-code and off
// becomes its on-code.
func Press(current status.Code, experimentalActive bool, src PressSource) status.Code {
	if current.IsOverride() {
		return status.None
	}
	pair, ok := codes[src]
	if !ok {
		pair = codes[SourceDistance]
	}
	if experimentalActive {
		return pair[0]
	}
	return pair[1]
}

// #endregion press
