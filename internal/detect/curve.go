package detect

import (
	"math"

	"github.com/danielpatrickdp/cem-controller/internal/smoothing"
)

// curveExitFactor loosens the curve bound once a curve is latched so the flag
// does not flicker on the way out.
const curveExitFactor = 0.9

// #region curve
// CurveDetector latches Detected when the smoothed share of curve samples
// reaches the confidence threshold.
type CurveDetector struct {
	avg      *smoothing.MovingAverage
	Detected bool
}

// NewCurveDetector creates a detector averaging over window samples.
func NewCurveDetector(window int) *CurveDetector {
	return &CurveDetector{avg: smoothing.NewMovingAverage(window)}
}

// Update feeds one cycle of road curvature (1/m) and ego speed (m/s) and
// returns the latched flag.
func (d *CurveDetector) Update(curvature, vEgo, threshold float64) bool {
	d.avg.AddBool(d.sample(curvature, vEgo))
	d.Detected = d.avg.Average() >= threshold
	return d.Detected
}

// sample is true when the ego speed exceeds the curve's speed bound. Zero
// curvature is a straight road and never counts.
func (d *CurveDetector) sample(curvature, vEgo float64) bool {
	k := math.Abs(curvature)
	if k == 0 {
		return false
	}
	detected := math.Sqrt(1/k) < vEgo
	stillActive := d.Detected && math.Sqrt(curveExitFactor/k) < vEgo
	return detected || stillActive
}

// Average exposes the current smoothed value.
func (d *CurveDetector) Average() float64 { return d.avg.Average() }

// #endregion curve
