package detect

import "github.com/danielpatrickdp/cem-controller/internal/smoothing"

// #region stop
// StopDetector latches Detected when the model keeps predicting a stop ahead.
// It only samples on open road: a curve or a tracked lead clears it.
type StopDetector struct {
	avg      *smoothing.MovingAverage
	Detected bool
}

// StopInput is the model's stop estimate for one cycle.
type StopInput struct {
	CurveDetected bool
	TrackingLead  bool
	ModelLength   float64 // remaining distance of the model's plan (m)
	ModelStopped  bool
	VEgo          float64
	StopTime      float64 // seconds of travel inside which a plan end counts as a stop
}

// NewStopDetector creates a detector averaging over window samples.
func NewStopDetector(window int) *StopDetector {
	return &StopDetector{avg: smoothing.NewMovingAverage(window)}
}

// Update feeds one cycle and returns the latched flag.
func (d *StopDetector) Update(in StopInput, threshold float64) bool {
	if in.CurveDetected || in.TrackingLead {
		d.Clear()
		return false
	}
	modelStopping := in.ModelLength < in.VEgo*in.StopTime
	d.avg.AddBool(in.ModelStopped || modelStopping)
	d.Detected = d.avg.Average() >= threshold
	return d.Detected
}

// Clear drops every sample and the latch.
func (d *StopDetector) Clear() {
	d.avg.Reset()
	d.Detected = false
}

// Average exposes the current smoothed value.
func (d *StopDetector) Average() float64 { return d.avg.Average() }

// #endregion stop

// Suppress drops the latch but keeps the samples. The next Update recomputes
// the flag from the window.
func (d *StopDetector) Suppress() {
	d.Detected = false
}
