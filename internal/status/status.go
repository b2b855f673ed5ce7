package status

import "fmt"

// #region code
// Code is the integer status shared through the status register. Values 1-6
// are manual overrides injected from outside, 7-17 identify the rule that
// turned experimental mode on, 0 means nothing is requested.
type Code int

const (
	None Code = 0

	// Manual overrides come in off/on pairs, one pair per press source.
	OverrideOffDistance Code = 1
	OverrideOnDistance  Code = 2
	OverrideOffLKAS     Code = 3
	OverrideOnLKAS      Code = 4
	OverrideOffScreen   Code = 5
	OverrideOnScreen    Code = 6

	LowSpeedLead     Code = 7
	LowSpeed         Code = 8
	SignalNarrowLane Code = 9
	Intersection     Code = 10
	Turn             Code = 11
	Curve            Code = 12
	StoppedLead      Code = 13
	SlowerLead       Code = 14
	StopLight        Code = 15
	StopLightForced  Code = 16
	SpeedLimit       Code = 17
)

// #endregion code

// #region predicates
// IsOverride reports whether c is one of the six reserved manual override codes.
func (c Code) IsOverride() bool {
	return c >= OverrideOffDistance && c <= OverrideOnScreen
}

// ForcesOn reports whether c is an override that pins experimental mode on.
func (c Code) ForcesOn() bool {
	return c == OverrideOnDistance || c == OverrideOnLKAS || c == OverrideOnScreen
}

// ForcesOff reports whether c is an override that pins experimental mode off.
func (c Code) ForcesOff() bool {
	return c.IsOverride() && !c.ForcesOn()
}

// IsRule reports whether c was assigned by the condition evaluator.
func (c Code) IsRule() bool {
	return c >= LowSpeedLead && c <= SpeedLimit
}

// #endregion predicates

// #region names
var names = map[Code]string{
	None:                "none",
	OverrideOffDistance: "override_off_distance",
	OverrideOnDistance:  "override_on_distance",
	OverrideOffLKAS:     "override_off_lkas",
	OverrideOnLKAS:      "override_on_lkas",
	OverrideOffScreen:   "override_off_screen",
	OverrideOnScreen:    "override_on_screen",
	LowSpeedLead:        "low_speed_lead",
	LowSpeed:            "low_speed",
	SignalNarrowLane:    "signal_narrow_lane",
	Intersection:        "intersection",
	Turn:                "turn",
	Curve:               "curve",
	StoppedLead:         "stopped_lead",
	SlowerLead:          "slower_lead",
	StopLight:           "stop_light",
	StopLightForced:     "stop_light_forced",
	SpeedLimit:          "speed_limit",
}

var descriptions = map[Code]string{
	None:                "Conditional Experimental Mode ready",
	OverrideOffDistance: "Conditional Experimental overridden. Long press the \"distance\" button to revert",
	OverrideOnDistance:  "Experimental Mode manually activated. Long press the \"distance\" button to revert",
	OverrideOffLKAS:     "Conditional Experimental overridden. Click the \"LKAS\" button to revert",
	OverrideOnLKAS:      "Experimental Mode manually activated. Click the \"LKAS\" button to revert",
	OverrideOffScreen:   "Conditional Experimental overridden. Double tap the screen to revert",
	OverrideOnScreen:    "Experimental Mode manually activated. Double tap the screen to revert",
	LowSpeedLead:        "Experimental Mode activated for low speed with a lead",
	LowSpeed:            "Experimental Mode activated for low speed",
	SignalNarrowLane:    "Experimental Mode activated for turn signal / lane change",
	Intersection:        "Experimental Mode activated for intersection",
	Turn:                "Experimental Mode activated for upcoming turn",
	Curve:               "Experimental Mode activated for curve",
	StoppedLead:         "Experimental Mode activated for stopped lead",
	SlowerLead:          "Experimental Mode activated for slower lead",
	StopLight:           "Experimental Mode activated to stop",
	StopLightForced:     "Experimental Mode forced on to stop",
	SpeedLimit:          "Experimental Mode activated by the speed limit controller",
}

// String returns the snake_case name of the code.
func (c Code) String() string {
	if n, ok := names[c]; ok {
		return n
	}
	return fmt.Sprintf("code_%d", int(c))
}

// Description returns a human-readable line suitable for an on-screen status bar.
func (c Code) Description() string {
	if d, ok := descriptions[c]; ok {
		return d
	}
	return fmt.Sprintf("Unknown status %d", int(c))
}

// #endregion names
