package detect

import "testing"

const testThreshold = 0.6

// curvature whose speed bound sqrt(1/k) is 8 m/s
const curvature8 = 1.0 / 64.0

func TestCurveDetectorLatchesAfterSustainedSamples(t *testing.T) {
	d := NewCurveDetector(5)

	// 3 of 5 true samples are needed to reach 0.6
	for i := 1; i <= 2; i++ {
		if d.Update(curvature8, 10, testThreshold) {
			t.Fatalf("tick %d: latched too early (avg=%f)", i, d.Average())
		}
	}
	if !d.Update(curvature8, 10, testThreshold) {
		t.Fatalf("tick 3: expected latch, avg=%f", d.Average())
	}
}

func TestCurveDetectorZeroCurvature(t *testing.T) {
	d := NewCurveDetector(1)
	if d.Update(0, 50, testThreshold) {
		t.Fatal("zero curvature must never count as a curve")
	}
	if d.Average() != 0 {
		t.Fatalf("expected zero sample, got %f", d.Average())
	}
}

func TestCurveDetectorNegativeCurvature(t *testing.T) {
	d := NewCurveDetector(1)
	if !d.Update(-curvature8, 10, testThreshold) {
		t.Fatal("expected left-hand curve to be detected")
	}
}

func TestCurveDetectorHysteresis(t *testing.T) {
	d := NewCurveDetector(1)

	// 7.8 m/s: below the entry bound (8) but above the exit bound (sqrt(0.9*64) ~ 7.59)
	if d.Update(curvature8, 7.8, testThreshold) {
		t.Fatal("should not enter a curve below the strict bound")
	}

	if !d.Update(curvature8, 10, testThreshold) {
		t.Fatal("expected entry at 10 m/s")
	}
	if !d.Update(curvature8, 7.8, testThreshold) {
		t.Fatal("expected latch held inside the exit band")
	}
	if d.Update(curvature8, 7.0, testThreshold) {
		t.Fatal("expected release below the exit bound")
	}
}

func TestCurveDetectorDecays(t *testing.T) {
	d := NewCurveDetector(5)
	for i := 0; i < 5; i++ {
		d.Update(curvature8, 10, testThreshold)
	}
	if !d.Detected {
		t.Fatal("expected latch after full window")
	}

	// straight road: once 3 false samples are in, 2/5 < 0.6
	d.Update(0, 10, testThreshold)
	if !d.Detected {
		t.Fatal("one false sample should not release (4/5)")
	}
	d.Update(0, 10, testThreshold)
	if !d.Detected {
		t.Fatal("two false samples should not release (3/5)")
	}
	d.Update(0, 10, testThreshold)
	if d.Detected {
		t.Fatalf("expected release at 2/5, avg=%f", d.Average())
	}
}

func TestSlowLead(t *testing.T) {
	all := LeadToggles{SlowerLead: true, StoppedLead: true}

	cases := []struct {
		name string
		in   LeadInput
		tg   LeadToggles
		want bool
	}{
		{"no lead", LeadInput{Tracking: false, SlowerLead: true, VLead: 0}, all, false},
		{"stopped lead", LeadInput{Tracking: true, VLead: 0.5}, all, true},
		{"stopped lead toggle off", LeadInput{Tracking: true, VLead: 0.5}, LeadToggles{SlowerLead: true}, false},
		{"slower lead", LeadInput{Tracking: true, SlowerLead: true, VLead: 12}, all, true},
		{"slower lead toggle off", LeadInput{Tracking: true, SlowerLead: true, VLead: 12}, LeadToggles{StoppedLead: true}, false},
		{"moving lead", LeadInput{Tracking: true, VLead: 12}, all, false},
		{"boundary speed", LeadInput{Tracking: true, VLead: 1}, all, false},
	}
	for _, tc := range cases {
		if got := SlowLead(tc.in, tc.tg); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func openRoadStop() StopInput {
	return StopInput{ModelLength: 100, VEgo: 10, StopTime: 8}
}

func TestStopDetectorModelStopping(t *testing.T) {
	d := NewStopDetector(5)
	in := openRoadStop() // 100 < 10*8 is false

	for i := 0; i < 5; i++ {
		if d.Update(in, testThreshold) {
			t.Fatal("long plan should not detect a stop")
		}
	}

	in.ModelLength = 50 // 50 < 80
	d.Update(in, testThreshold)
	d.Update(in, testThreshold)
	if d.Detected {
		t.Fatal("expected no latch at 2/5")
	}
	if !d.Update(in, testThreshold) {
		t.Fatalf("expected latch at 3/5, avg=%f", d.Average())
	}
}

func TestStopDetectorModelStoppedFlag(t *testing.T) {
	d := NewStopDetector(1)
	in := openRoadStop()
	in.ModelStopped = true
	if !d.Update(in, testThreshold) {
		t.Fatal("model stopped flag should count as a stop sample")
	}
}

func TestStopDetectorResetByCurveOrLead(t *testing.T) {
	for _, gate := range []string{"curve", "lead"} {
		d := NewStopDetector(5)
		in := openRoadStop()
		in.ModelStopped = true
		for i := 0; i < 5; i++ {
			d.Update(in, testThreshold)
		}
		if !d.Detected {
			t.Fatalf("%s: expected latch before gating", gate)
		}

		gated := in
		if gate == "curve" {
			gated.CurveDetected = true
		} else {
			gated.TrackingLead = true
		}
		if d.Update(gated, testThreshold) {
			t.Fatalf("%s: expected flag forced false", gate)
		}
		if d.Average() != 0 {
			t.Fatalf("%s: expected window reset, avg=%f", gate, d.Average())
		}

		// window must refill from empty
		d.Update(in, testThreshold)
		if d.Detected {
			t.Fatalf("%s: stale samples survived the reset", gate)
		}
	}
}

func TestStopDetectorSuppressKeepsSamples(t *testing.T) {
	d := NewStopDetector(1)
	in := openRoadStop()
	in.ModelStopped = true
	d.Update(in, testThreshold)

	d.Suppress()
	if d.Detected {
		t.Fatal("expected latch cleared")
	}
	if d.Average() != 1 {
		t.Fatalf("expected samples kept, avg=%f", d.Average())
	}
}
