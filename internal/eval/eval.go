package eval

import (
	"github.com/danielpatrickdp/cem-controller/internal/detect"
	"github.com/danielpatrickdp/cem-controller/internal/status"
)

// minimumSpeed is the ego speed (m/s) below which the low-speed band never applies.
const minimumSpeed = 1.0

// #region rule-names
const (
	RuleLowSpeed   = "low_speed"
	RuleSignalLane = "signal_lane"
	RuleNavigation = "navigation"
	RuleCurve      = "curve"
	RuleSlowLead   = "slow_lead"
	RuleStopLight  = "stop_light"
	RuleSpeedLimit = "speed_limit"
)

// #endregion rule-names

// #region evaluator
// Evaluator walks an ordered rule list; the first rule that matches wins.
type Evaluator struct {
	rules []Rule
}

// NewEvaluator creates an evaluator over rules, checked in slice order.
func NewEvaluator(rules []Rule) *Evaluator {
	return &Evaluator{rules: rules}
}

// NewDefaultEvaluator uses DefaultRules.
func NewDefaultEvaluator() *Evaluator {
	return NewEvaluator(DefaultRules())
}

// Evaluate returns the first matching rule's code, or an inactive result.
func (e *Evaluator) Evaluate(c Conditions) EvalResult {
	for _, r := range e.rules {
		if code, ok := r.Match(c); ok {
			return EvalResult{Active: true, Code: code, Rule: r.Name}
		}
	}
	return EvalResult{}
}

// Rules returns the rule names in priority order.
func (e *Evaluator) Rules() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name
	}
	return names
}

// #endregion evaluator

// #region default-rules
// DefaultRules returns the chain in priority order. The order is load-bearing:
// do not sort or regroup it.
func DefaultRules() []Rule {
	return []Rule{
		{Name: RuleLowSpeed, Match: lowSpeed},
		{Name: RuleSignalLane, Match: signalLane},
		{Name: RuleNavigation, Match: navigation},
		{Name: RuleCurve, Match: curve},
		{Name: RuleSlowLead, Match: slowLead},
		{Name: RuleStopLight, Match: stopLight},
		{Name: RuleSpeedLimit, Match: speedLimit},
	}
}

// 1. Ego speed inside [1, limit), with a separate limit while following a lead.
func lowSpeed(c Conditions) (status.Code, bool) {
	v := c.Frame.Car.VEgo
	following := c.Frame.Planner.FollowingLead
	if v < minimumSpeed {
		return status.None, false
	}
	if following {
		if v < c.Toggles.ConditionalLimitLead {
			return status.LowSpeedLead, true
		}
		return status.None, false
	}
	if v < c.Toggles.ConditionalLimit {
		return status.LowSpeed, true
	}
	return status.None, false
}

// 2. Turn signal at low speed toward a lane too narrow to move into.
func signalLane(c Conditions) (status.Code, bool) {
	t := c.Toggles
	laneAvailable := c.Frame.DesiredLaneWidth() >= t.LaneDetectionWidth ||
		!t.ConditionalSignalLaneDetection || !t.LaneDetection
	if c.Frame.Car.VEgo < t.ConditionalSignal && c.Frame.Blinker() && !laneAvailable {
		return status.SignalNarrowLane, true
	}
	return status.None, false
}

// 3. Navigation reports an upcoming maneuver. An intersection outranks a turn.
func navigation(c Conditions) (status.Code, bool) {
	t := c.Toggles
	if !t.ConditionalNavigation || !c.Frame.ApproachingManeuver() {
		return status.None, false
	}
	if !t.ConditionalNavigationLead && c.Frame.Planner.FollowingLead {
		return status.None, false
	}
	if c.Frame.Navigation.ApproachingIntersection {
		return status.Intersection, true
	}
	return status.Turn, true
}

// 4. Latched curve.
func curve(c Conditions) (status.Code, bool) {
	t := c.Toggles
	if t.ConditionalCurves && c.CurveDetected && (t.ConditionalCurvesLead || !c.Frame.Planner.FollowingLead) {
		return status.Curve, true
	}
	return status.None, false
}

// 5. Slow or stopped lead.
func slowLead(c Conditions) (status.Code, bool) {
	if !c.Toggles.ConditionalLead || !c.SlowLeadDetected {
		return status.None, false
	}
	if detect.LeadStopped(c.Frame.VLead) {
		return status.StoppedLead, true
	}
	return status.SlowerLead, true
}

// 6. Latched stop light or stop sign.
func stopLight(c Conditions) (status.Code, bool) {
	if c.Toggles.ConditionalModelStopTime == 0 || !c.StopLightDetected {
		return status.None, false
	}
	if c.Frame.Planner.ForcingStop {
		return status.StopLightForced, true
	}
	return status.StopLight, true
}

// 7. Speed limit controller asks for experimental mode.
func speedLimit(c Conditions) (status.Code, bool) {
	if c.Frame.Planner.SLCExperimental {
		return status.SpeedLimit, true
	}
	return status.None, false
}

// #endregion default-rules
