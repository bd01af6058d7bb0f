package erythema

import (
	"math"
	"testing"
)

func TestMEDThreshold(t *testing.T) {
	tests := []struct {
		name     string
		skinType int
		expected float64
	}{
		{"type 0 (most sensitive)", 0, 80000},
		{"type 1", 1, 150000},
		{"type 2", 2, 250000},
		{"type 3", 3, 350000},
		{"type 4", 4, 450000},
		{"type 5", 5, 600000},
		{"type 6 (least sensitive)", 6, 1000000},
		{"below domain falls back to default", -1, DefaultMED},
		{"above domain falls back to default", 7, DefaultMED},
		{"far out of domain falls back to default", 42, DefaultMED},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MEDThreshold(tt.skinType); got != tt.expected {
				t.Errorf("MEDThreshold(%d) = %v, expected %v", tt.skinType, got, tt.expected)
			}
		})
	}
}

func TestDoseIncrement(t *testing.T) {
	tests := []struct {
		name       string
		uvIndex    float64
		applyFloor bool
		expected   float64
	}{
		{"positive sample scales by 25", 4, false, 100},
		{"fractional sample", 0.5, false, 12.5},
		{"zero without floor stays zero", 0, false, 0},
		{"zero with floor substitutes floor", 0, true, DoseFloor},
		{"negative sentinel with floor substitutes floor", -1, true, DoseFloor},
		{"negative sentinel without floor passes through", -1, false, -25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DoseIncrement(tt.uvIndex, tt.applyFloor); got != tt.expected {
				t.Errorf("DoseIncrement(%v, %v) = %v, expected %v", tt.uvIndex, tt.applyFloor, got, tt.expected)
			}
		})
	}
}

func TestBurnPercent(t *testing.T) {
	// At exactly one full threshold with SPF 1, the percentage is 100 exactly.
	if got := BurnPercent(150000, 150000, 1); got != 100 {
		t.Errorf("BurnPercent(150000, 150000, 1) = %v, expected exactly 100", got)
	}

	tests := []struct {
		name      string
		dose      float64
		threshold float64
		spf       int
		expected  float64
	}{
		{"half threshold", 75000, 150000, 1, 50},
		{"SPF divides absorption", 150000, 150000, 2, 50},
		{"SPF 30 scales down", 150000, 150000, 30, 100.0 / 30.0},
		{"SPF below 1 clamps to 1", 150000, 150000, 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BurnPercent(tt.dose, tt.threshold, tt.spf)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("BurnPercent(%v, %v, %d) = %v, expected %v", tt.dose, tt.threshold, tt.spf, got, tt.expected)
			}
		})
	}
}

func TestTimeToBurn(t *testing.T) {
	// UV index 4 -> increment 100 -> rate 6000/min. Empty dose against a
	// 150000 threshold burns in 25 minutes.
	got := TimeToBurn(0, 150000, 100, 1)
	if math.Abs(got-25) > 1e-9 {
		t.Errorf("TimeToBurn(0, 150000, 100, 1) = %v, expected 25", got)
	}

	// Zero increment must not divide by zero.
	if got := TimeToBurn(1000, 150000, 0, 1); !math.IsInf(got, 1) {
		t.Errorf("TimeToBurn with zero increment = %v, expected +Inf", got)
	}
	if got := TimeToBurn(1000, 150000, -5, 1); !math.IsInf(got, 1) {
		t.Errorf("TimeToBurn with negative increment = %v, expected +Inf", got)
	}

	// Past the threshold, the extrapolation goes negative. That is the
	// documented behavior of the formula, not an error.
	if got := TimeToBurn(200000, 150000, 100, 1); got >= 0 {
		t.Errorf("TimeToBurn past threshold = %v, expected negative", got)
	}

	// SPF stretches the estimate by dividing the adjusted dose.
	withSPF := TimeToBurn(60000, 150000, 100, 2)
	without := TimeToBurn(60000, 150000, 100, 1)
	if withSPF <= without {
		t.Errorf("TimeToBurn with SPF 2 (%v) should exceed SPF 1 (%v)", withSPF, without)
	}
}

func TestCumulativeDoseSequence(t *testing.T) {
	// Four samples of UV index 4 at scale 25 accumulate to exactly 400.
	var dose float64
	for i := 0; i < 4; i++ {
		dose += DoseIncrement(4, false)
	}
	if dose != 400 {
		t.Errorf("cumulative dose after 4 ticks of UV 4 = %v, expected 400", dose)
	}
}
