// Package dose implements the stateful exposure accumulator. A Tracker owns
// the skin-type threshold, SPF, and the monotonically increasing cumulative
// dose for one monitoring run; all mutation happens through Step, called once
// per reporting tick by a single goroutine.
package dose

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/uvmon/uvmon/pkg/erythema"
)

// defaultSmoothingWindow is the number of recent increments used for the
// smoothed time-to-burn estimate.
const defaultSmoothingWindow = 60

// Params configures a Tracker.
type Params struct {
	SkinType int
	SPF      int
	// ApplyFloor substitutes erythema.DoseFloor for non-positive increments
	// so accumulation never stalls on a faulted or nighttime sensor.
	ApplyFloor bool
	// SmoothingWindow is the number of recent increments averaged for the
	// smoothed estimate. Zero selects the default.
	SmoothingWindow int
}

// Report is the outcome of one accumulator tick.
type Report struct {
	UVIndex        float64
	Increment      float64
	CumulativeDose float64
	Threshold      float64
	BurnPercent    float64
	// TimeToBurnMin is the raw instantaneous extrapolation; +Inf when the
	// current increment is non-positive, negative once past the threshold.
	TimeToBurnMin float64
	// SmoothedToBurnMin is the same extrapolation using the mean of the
	// recent increment window.
	SmoothedToBurnMin float64
	OverThreshold     bool
}

// Tracker accumulates UV dose toward a personalized burn threshold.
type Tracker struct {
	skinType   int
	spf        int
	threshold  float64
	applyFloor bool

	cumulative float64
	window     []float64
	windowMax  int

	logger *zap.SugaredLogger
}

// NewTracker creates a Tracker. SPF values below 1 are clamped to 1 with a
// logged warning: the upstream protocol accepts any integer and an SPF of
// zero would otherwise divide the burn percentage by zero.
func NewTracker(p Params, logger *zap.SugaredLogger) *Tracker {
	t := &Tracker{
		skinType:   p.SkinType,
		spf:        p.SPF,
		threshold:  erythema.MEDThreshold(p.SkinType),
		applyFloor: p.ApplyFloor,
		windowMax:  p.SmoothingWindow,
		logger:     logger,
	}
	if t.windowMax <= 0 {
		t.windowMax = defaultSmoothingWindow
	}
	if t.spf < 1 {
		if logger != nil {
			logger.Warnf("SPF %d is below 1, clamping to 1", t.spf)
		}
		t.spf = 1
	}
	return t
}

// SetSkinType updates the skin type and recomputes the threshold. Values
// outside the defined domain select the default threshold.
func (t *Tracker) SetSkinType(skinType int) {
	t.skinType = skinType
	t.threshold = erythema.MEDThreshold(skinType)
}

// SetSPF updates the SPF, clamping values below 1.
func (t *Tracker) SetSPF(spf int) {
	if spf < 1 {
		if t.logger != nil {
			t.logger.Warnf("SPF %d is below 1, clamping to 1", spf)
		}
		spf = 1
	}
	t.spf = spf
}

// SkinType returns the configured skin type.
func (t *Tracker) SkinType() int { return t.skinType }

// SPF returns the effective (clamped) SPF.
func (t *Tracker) SPF() int { return t.spf }

// Threshold returns the active MED threshold.
func (t *Tracker) Threshold() float64 { return t.threshold }

// CumulativeDose returns the running dose total.
func (t *Tracker) CumulativeDose() float64 { return t.cumulative }

// Step consumes one UV index sample: scale, accumulate, derive. The
// cumulative dose never decreases; it is reset only by discarding the
// Tracker.
func (t *Tracker) Step(uvIndex float64) Report {
	inc := erythema.DoseIncrement(uvIndex, t.applyFloor)
	if inc > 0 {
		t.cumulative += inc
	}

	t.window = append(t.window, inc)
	if len(t.window) > t.windowMax {
		t.window = t.window[len(t.window)-t.windowMax:]
	}

	percent := erythema.BurnPercent(t.cumulative, t.threshold, t.spf)

	r := Report{
		UVIndex:           uvIndex,
		Increment:         inc,
		CumulativeDose:    t.cumulative,
		Threshold:         t.threshold,
		BurnPercent:       percent,
		TimeToBurnMin:     erythema.TimeToBurn(t.cumulative, t.threshold, inc, t.spf),
		SmoothedToBurnMin: erythema.TimeToBurn(t.cumulative, t.threshold, t.meanIncrement(), t.spf),
		OverThreshold:     percent >= 100,
	}
	return r
}

// meanIncrement averages the recent increment window, ignoring non-positive
// entries so a run of nighttime zeros does not pin the smoothed estimate.
func (t *Tracker) meanIncrement() float64 {
	active := make([]float64, 0, len(t.window))
	for _, v := range t.window {
		if v > 0 {
			active = append(active, v)
		}
	}
	if len(active) == 0 {
		return 0
	}
	m := stat.Mean(active, nil)
	if math.IsNaN(m) {
		return 0
	}
	return m
}
