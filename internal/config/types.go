package config

// #region toggles
// Toggles holds every user-tunable setting the decision reads. Speeds are m/s,
// widths metres, times seconds.
type Toggles struct {
	ExperimentalModeViaPress bool `json:"experimental_mode_via_press" yaml:"experimental_mode_via_press"`

	ConditionalLimit     float64 `json:"conditional_limit" yaml:"conditional_limit"`           // low-speed band without a lead
	ConditionalLimitLead float64 `json:"conditional_limit_lead" yaml:"conditional_limit_lead"` // low-speed band while following

	ConditionalSignal              float64 `json:"conditional_signal" yaml:"conditional_signal"` // blinker check applies below this speed
	ConditionalSignalLaneDetection bool    `json:"conditional_signal_lane_detection" yaml:"conditional_signal_lane_detection"`
	LaneDetection                  bool    `json:"lane_detection" yaml:"lane_detection"`
	LaneDetectionWidth             float64 `json:"lane_detection_width" yaml:"lane_detection_width"`

	ConditionalNavigation     bool `json:"conditional_navigation" yaml:"conditional_navigation"`
	ConditionalNavigationLead bool `json:"conditional_navigation_lead" yaml:"conditional_navigation_lead"`

	ConditionalCurves     bool `json:"conditional_curves" yaml:"conditional_curves"`
	ConditionalCurvesLead bool `json:"conditional_curves_lead" yaml:"conditional_curves_lead"`

	ConditionalLead        bool `json:"conditional_lead" yaml:"conditional_lead"`
	ConditionalSlowerLead  bool `json:"conditional_slower_lead" yaml:"conditional_slower_lead"`
	ConditionalStoppedLead bool `json:"conditional_stopped_lead" yaml:"conditional_stopped_lead"`

	ConditionalModelStopTime float64 `json:"conditional_model_stop_time" yaml:"conditional_model_stop_time"` // 0 disables stop lights

	Threshold float64 `json:"threshold" yaml:"threshold"` // detection confidence shared by both smoothers
}

// DefaultThreshold is the share of true samples a smoother needs to latch.
const DefaultThreshold = 0.6

// Default returns stock toggles: curve, lead and stop light triggers on,
// speed bands and lane checks off.
func Default() Toggles {
	return Toggles{
		ExperimentalModeViaPress: true,

		ConditionalLimit:     0,
		ConditionalLimitLead: 0,

		ConditionalSignal:              0,
		ConditionalSignalLaneDetection: false,
		LaneDetection:                  false,
		LaneDetectionWidth:             2.5,

		ConditionalNavigation:     false,
		ConditionalNavigationLead: false,

		ConditionalCurves:     true,
		ConditionalCurvesLead: false,

		ConditionalLead:        true,
		ConditionalSlowerLead:  false,
		ConditionalStoppedLead: true,

		ConditionalModelStopTime: 8,

		Threshold: DefaultThreshold,
	}
}

// #endregion toggles
