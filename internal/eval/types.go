package eval

import (
	"github.com/danielpatrickdp/cem-controller/internal/config"
	"github.com/danielpatrickdp/cem-controller/internal/signals"
	"github.com/danielpatrickdp/cem-controller/internal/status"
)

// #region conditions
// Conditions is everything a rule may inspect in one cycle: the raw inputs,
// the toggles, and the detector latches as of this cycle.
type Conditions struct {
	Frame             signals.Frame
	Toggles           config.Toggles
	CurveDetected     bool
	SlowLeadDetected  bool
	StopLightDetected bool
}

// #endregion conditions

// #region rule
// Rule is one entry of the priority chain. Match returns the status code to
// publish and whether the rule fired.
type Rule struct {
	Name  string
	Match func(c Conditions) (status.Code, bool)
}

// #endregion rule

// #region eval-result
// EvalResult is the outcome of walking the chain.
type EvalResult struct {
	Active bool        // experimental mode requested
	Code   status.Code // status.None when no rule fired
	Rule   string      // name of the rule that fired, "" otherwise
}

// #endregion eval-result
