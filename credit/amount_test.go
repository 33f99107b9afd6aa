// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package credit

import (
	"errors"
	"math"
	"testing"
)

// TestNewAmount ensures conversion from floating point tonne quantities
// works as intended including the rejection of values that cannot be
// represented.
func TestNewAmount(t *testing.T) {
	tests := []struct {
		name    string
		tonnes  float64
		want    Amount
		wantErr bool
	}{{
		name:   "zero",
		tonnes: 0,
		want:   0,
	}, {
		name:   "whole tonnes",
		tonnes: 125,
		want:   125000,
	}, {
		name:   "fractional tonnes",
		tonnes: 2.5,
		want:   2500,
	}, {
		name:   "rounds to nearest kg",
		tonnes: 0.0005,
		want:   1,
	}, {
		name:   "negative amount representable",
		tonnes: -1.25,
		want:   -1250,
	}, {
		name:    "NaN invalid",
		tonnes:  math.NaN(),
		wantErr: true,
	}, {
		name:    "+Inf invalid",
		tonnes:  math.Inf(1),
		wantErr: true,
	}, {
		name:    "-Inf invalid",
		tonnes:  math.Inf(-1),
		wantErr: true,
	}}

	for _, test := range tests {
		got, err := NewAmount(test.tonnes)
		if test.wantErr {
			if !errors.Is(err, ErrInvalidAmount) {
				t.Errorf("%q: unexpected error -- got %v, want %v",
					test.name, err, ErrInvalidAmount)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", test.name, err)
			continue
		}
		if got != test.want {
			t.Errorf("%q: unexpected amount -- got %v, want %v",
				test.name, got, test.want)
		}
	}
}

// TestAmountRoundTrip ensures amounts convert back to the tonne
// quantities they were created from.
func TestAmountRoundTrip(t *testing.T) {
	for _, tonnes := range []float64{0, 0.001, 1, 2.5, 125, 100000} {
		amt, err := NewAmount(tonnes)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := amt.ToTonnes(); got != tonnes {
			t.Errorf("round trip mismatch -- got %v, want %v", got, tonnes)
		}
	}
}

// TestAmountString ensures the formatted output includes the unit.
func TestAmountString(t *testing.T) {
	tests := []struct {
		amount Amount
		want   string
	}{
		{0, "0 tCO2e"},
		{1500, "1.5 tCO2e"},
		{125000, "125 tCO2e"},
	}

	for _, test := range tests {
		if got := test.amount.String(); got != test.want {
			t.Errorf("unexpected string -- got %q, want %q", got, test.want)
		}
	}
}
