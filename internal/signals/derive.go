package signals

// Blinker reports whether either turn signal is on.
func (f Frame) Blinker() bool {
	return f.Car.LeftBlinker || f.Car.RightBlinker
}

// DesiredLaneWidth is the width of the lane the driver is signalling toward.
// The left lane wins when both blinkers are on; with no blinker it returns
// the right lane.
func (f Frame) DesiredLaneWidth() float64 {
	if f.Car.LeftBlinker {
		return f.Planner.LaneWidthLeft
	}
	return f.Planner.LaneWidthRight
}

// ApproachingManeuver reports an upcoming intersection or turn while
// navigation is driving the planner.
func (f Frame) ApproachingManeuver() bool {
	return f.Planner.NavEnabled && (f.Navigation.ApproachingIntersection || f.Navigation.ApproachingTurn)
}
