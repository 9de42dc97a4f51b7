package wheel

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewModel(t *testing.T) {
	tests := []struct {
		name    string
		rate    string
		wantErr bool
	}{
		{name: "typical weekly rate", rate: "0.02", wantErr: false},
		{name: "zero rate", rate: "0", wantErr: true},
		{name: "negative rate", rate: "-0.01", wantErr: true},
		{name: "rate of one", rate: "1", wantErr: true},
		{name: "rate above one", rate: "1.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewModel(decimal.RequireFromString(tt.rate))
			if (err != nil) != tt.wantErr {
				t.Errorf("NewModel(%s) error = %v, wantErr %v", tt.rate, err, tt.wantErr)
			}
		})
	}
}

func TestEstimate(t *testing.T) {
	tests := []struct {
		name   string
		rate   string
		strike string
		want   string
	}{
		{name: "two percent of 95", rate: "0.02", strike: "95", want: "1.90"},
		{name: "rounds to currency precision", rate: "0.02", strike: "123.45", want: "2.47"},
		{name: "rounds up", rate: "0.03", strike: "33.33", want: "1.00"},
		{name: "penny stock", rate: "0.02", strike: "0.10", want: "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewModel(decimal.RequireFromString(tt.rate))
			if err != nil {
				t.Fatalf("NewModel(%s) returned error: %v", tt.rate, err)
			}
			got := m.Estimate(decimal.RequireFromString(tt.strike))
			if got.StringFixed(2) != tt.want {
				t.Errorf("Estimate(%s) = %s, want %s", tt.strike, got.StringFixed(2), tt.want)
			}
		})
	}
}

func TestEstimateAdjusted(t *testing.T) {
	m, err := NewModel(decimal.RequireFromString("0.02"))
	if err != nil {
		t.Fatalf("NewModel returned error: %v", err)
	}

	tests := []struct {
		name   string
		strike string
		spot   string
		want   string
	}{
		// At the money the discount is a no-op.
		{name: "at the money", strike: "100", spot: "100", want: "2.00"},
		// 5% OTM: adjustment = 1 - 5*0.05 = 0.75, 95*0.02*0.75 = 1.425.
		{name: "five percent OTM", strike: "95", spot: "100", want: "1.43"},
		// 20% OTM hits the 0.3 floor: 80*0.02*0.3 = 0.48.
		{name: "far OTM floors at 30 percent", strike: "80", spot: "100", want: "0.48"},
		// Discount applies symmetrically above spot.
		{name: "five percent above spot", strike: "105", spot: "100", want: "1.58"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.EstimateAdjusted(decimal.RequireFromString(tt.strike), decimal.RequireFromString(tt.spot))
			if got.StringFixed(2) != tt.want {
				t.Errorf("EstimateAdjusted(%s, %s) = %s, want %s",
					tt.strike, tt.spot, got.StringFixed(2), tt.want)
			}
		})
	}
}

func TestEstimateDeterminism(t *testing.T) {
	m, err := NewModel(decimal.RequireFromString("0.02"))
	if err != nil {
		t.Fatalf("NewModel returned error: %v", err)
	}
	strike := decimal.RequireFromString("247.13")
	first := m.Estimate(strike)
	for i := 0; i < 100; i++ {
		if got := m.Estimate(strike); !got.Equal(first) {
			t.Fatalf("Estimate diverged on call %d: got %s, want %s", i, got, first)
		}
	}
}
