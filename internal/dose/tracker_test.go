package dose

import (
	"math"
	"testing"

	"github.com/uvmon/uvmon/pkg/erythema"
)

func TestTrackerAccumulation(t *testing.T) {
	tr := NewTracker(Params{SkinType: 1, SPF: 1}, nil)

	// Readings of [4,4,4,4] with scale 25 and no floor triggered accumulate
	// to exactly 400.
	var last Report
	for i := 0; i < 4; i++ {
		last = tr.Step(4)
	}
	if last.CumulativeDose != 400 {
		t.Errorf("cumulative dose after 4 ticks = %v, expected 400", last.CumulativeDose)
	}
	if last.Increment != 100 {
		t.Errorf("increment = %v, expected 100", last.Increment)
	}
}

func TestTrackerMonotonic(t *testing.T) {
	tr := NewTracker(Params{SkinType: 2, SPF: 1, ApplyFloor: true}, nil)

	samples := []float64{3.2, 0, -1, 7.9, 0.01, -4, 11, 0}
	prev := 0.0
	for _, uv := range samples {
		r := tr.Step(uv)
		if r.CumulativeDose < prev {
			t.Fatalf("cumulative dose decreased: %v -> %v after sample %v", prev, r.CumulativeDose, uv)
		}
		prev = r.CumulativeDose
	}
}

func TestTrackerFloorSubstitution(t *testing.T) {
	withFloor := NewTracker(Params{SkinType: 1, SPF: 1, ApplyFloor: true}, nil)
	r := withFloor.Step(-2)
	if r.Increment != erythema.DoseFloor {
		t.Errorf("floored increment = %v, expected %v", r.Increment, erythema.DoseFloor)
	}
	if r.CumulativeDose != erythema.DoseFloor {
		t.Errorf("cumulative dose = %v, expected %v", r.CumulativeDose, erythema.DoseFloor)
	}

	withoutFloor := NewTracker(Params{SkinType: 1, SPF: 1}, nil)
	r = withoutFloor.Step(-2)
	if r.CumulativeDose != 0 {
		t.Errorf("negative increment without floor accumulated: %v", r.CumulativeDose)
	}
}

func TestTrackerThresholdWarning(t *testing.T) {
	tr := NewTracker(Params{SkinType: 1, SPF: 1}, nil)

	// Threshold for type 1 is 150000; UV 100 -> increment 2500/tick, so 60
	// ticks lands exactly on the threshold.
	var r Report
	for i := 0; i < 60; i++ {
		r = tr.Step(100)
	}
	if r.BurnPercent != 100 {
		t.Errorf("burn percent = %v, expected exactly 100", r.BurnPercent)
	}
	if !r.OverThreshold {
		t.Error("OverThreshold not set at 100%")
	}

	// The warning is level-triggered: it stays set on every subsequent tick.
	for i := 0; i < 3; i++ {
		r = tr.Step(100)
		if !r.OverThreshold {
			t.Fatalf("OverThreshold cleared on tick %d past the threshold", i)
		}
	}
}

func TestTrackerSPFClamp(t *testing.T) {
	tr := NewTracker(Params{SkinType: 1, SPF: 0}, nil)
	if tr.SPF() != 1 {
		t.Errorf("SPF 0 clamped to %d, expected 1", tr.SPF())
	}

	tr.SetSPF(-5)
	if tr.SPF() != 1 {
		t.Errorf("SetSPF(-5) left %d, expected 1", tr.SPF())
	}

	tr.SetSPF(30)
	if tr.SPF() != 30 {
		t.Errorf("SetSPF(30) left %d", tr.SPF())
	}

	// With SPF clamped to 1, a tick must never produce NaN or Inf percent.
	r := tr.Step(4)
	if math.IsNaN(r.BurnPercent) || math.IsInf(r.BurnPercent, 0) {
		t.Errorf("burn percent not finite: %v", r.BurnPercent)
	}
}

func TestTrackerSkinTypeFallback(t *testing.T) {
	tr := NewTracker(Params{SkinType: 99, SPF: 1}, nil)
	if tr.Threshold() != erythema.DefaultMED {
		t.Errorf("out-of-domain skin type threshold = %v, expected default %v", tr.Threshold(), erythema.DefaultMED)
	}

	tr.SetSkinType(3)
	if tr.Threshold() != erythema.MEDThreshold(3) {
		t.Errorf("threshold after SetSkinType(3) = %v", tr.Threshold())
	}
}

func TestTrackerSmoothedEstimate(t *testing.T) {
	tr := NewTracker(Params{SkinType: 6, SPF: 1, SmoothingWindow: 4}, nil)

	// Steady samples: smoothed and raw estimates agree.
	var r Report
	for i := 0; i < 4; i++ {
		r = tr.Step(4)
	}
	if math.Abs(r.SmoothedToBurnMin-r.TimeToBurnMin) > 1e-9 {
		t.Errorf("steady-state smoothed %v != raw %v", r.SmoothedToBurnMin, r.TimeToBurnMin)
	}

	// A single spike moves the raw estimate far more than the smoothed one.
	r = tr.Step(40)
	if r.SmoothedToBurnMin <= r.TimeToBurnMin {
		t.Errorf("smoothed estimate %v should exceed raw %v after a spike", r.SmoothedToBurnMin, r.TimeToBurnMin)
	}

	// All-zero window: smoothed estimate is +Inf, not NaN.
	zeros := NewTracker(Params{SkinType: 1, SPF: 1}, nil)
	r = zeros.Step(0)
	if !math.IsInf(r.SmoothedToBurnMin, 1) {
		t.Errorf("smoothed estimate with empty window = %v, expected +Inf", r.SmoothedToBurnMin)
	}
}
