package detect

// stoppedLeadSpeed is the lead speed (m/s) below which the lead counts as stopped.
const stoppedLeadSpeed = 1.0

// LeadInput is what the slow-lead check needs from the planner for one cycle.
type LeadInput struct {
	Tracking   bool
	SlowerLead bool    // planner judged the lead slower than our commanded speed
	VLead      float64 // only meaningful when Tracking
}

// LeadToggles enables the two independent slow-lead conditions.
type LeadToggles struct {
	SlowerLead  bool
	StoppedLead bool
}

// SlowLead reports whether a tracked lead is slower than us or stopped.
// It keeps no state between cycles.
func SlowLead(in LeadInput, t LeadToggles) bool {
	if !in.Tracking {
		return false
	}
	slower := in.SlowerLead && t.SlowerLead
	stopped := t.StoppedLead && LeadStopped(in.VLead)
	return slower || stopped
}

// LeadStopped reports whether vLead is effectively zero.
func LeadStopped(vLead float64) bool {
	return vLead < stoppedLeadSpeed
}
