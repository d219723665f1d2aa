package allocation

import (
	"math"
	"testing"
)

func TestXIRR(t *testing.T) {
	tests := []struct {
		name    string
		dates   []Date
		amounts []float64
		want    float64
	}{
		{
			name:    "ten percent over one year",
			dates:   []Date{NewDate(2021, 1, 1), NewDate(2022, 1, 1)},
			amounts: []float64{-100, 110},
			want:    0.1,
		},
		{
			name:    "ten percent compounded over two years",
			dates:   []Date{NewDate(2021, 1, 1), NewDate(2023, 1, 1)},
			amounts: []float64{-100, 121},
			want:    0.1,
		},
		{
			name:    "five percent loss",
			dates:   []Date{NewDate(2021, 1, 1), NewDate(2022, 1, 1)},
			amounts: []float64{-100, 95},
			want:    -0.05,
		},
		{
			name:    "flat",
			dates:   []Date{NewDate(2021, 1, 1), NewDate(2022, 1, 1)},
			amounts: []float64{-100, 100},
			want:    0,
		},
		{
			// 100g^2 + 100g - 210 = 0, the yearly rate is
			// (sqrt(940)-10)/20 - 1, about 3.3%.
			name:    "two deposits",
			dates:   []Date{NewDate(2021, 1, 1), NewDate(2022, 1, 1), NewDate(2023, 1, 1)},
			amounts: []float64{-100, -100, 210},
			want:    0.033,
		},
		{
			name: "empty",
			want: 0,
		},
		{
			name:    "mismatched lengths",
			dates:   []Date{NewDate(2021, 1, 1)},
			amounts: []float64{-100, 110},
			want:    0,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := XIRR(tc.dates, tc.amounts)
			if math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("XIRR() = %v, want %v", got, tc.want)
			}
		})
	}
}
