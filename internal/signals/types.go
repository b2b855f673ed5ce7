package signals

// #region car-state
// CarState is the slice of the vehicle state feed the decision reads.
type CarState struct {
	VEgo         float64 `json:"v_ego"` // m/s
	Standstill   bool    `json:"standstill"`
	LeftBlinker  bool    `json:"left_blinker"`
	RightBlinker bool    `json:"right_blinker"`
}

// #endregion car-state

// #region navigation
// Navigation carries the route service's upcoming maneuver flags.
type Navigation struct {
	ApproachingIntersection bool `json:"approaching_intersection"`
	ApproachingTurn         bool `json:"approaching_turn"`
}

// #endregion navigation

// #region planner
// Planner carries the planner and model estimates computed elsewhere.
type Planner struct {
	NavEnabled      bool    `json:"nav_enabled"`
	RoadCurvature   float64 `json:"road_curvature"` // 1/m
	ModelLength     float64 `json:"model_length"`   // m
	ModelStopped    bool    `json:"model_stopped"`
	LaneWidthLeft   float64 `json:"lane_width_left"`  // m
	LaneWidthRight  float64 `json:"lane_width_right"` // m
	TrackingLead    bool    `json:"tracking_lead"`
	FollowingLead   bool    `json:"following_lead"`
	SlowerLead      bool    `json:"slower_lead"`
	ForcingStop     bool    `json:"forcing_stop"`
	SLCExperimental bool    `json:"slc_experimental"` // speed limit controller asks for experimental mode
}

// #endregion planner

// #region frame
// Frame bundles every input of one control cycle.
type Frame struct {
	Car        CarState   `json:"car"`
	Navigation Navigation `json:"navigation"`
	Planner    Planner    `json:"planner"`
	VLead      float64    `json:"v_lead"` // m/s, only meaningful while tracking a lead
}

// #endregion frame
