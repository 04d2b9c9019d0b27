package belief

import (
	"errors"
	"math"
	"testing"

	"github.com/cognicore/asklet/pkg/asklet/internalerr"
)

func TestScaleContains(t *testing.T) {
	s := DefaultScale
	for _, v := range []int{s.No, 0, s.Yes} {
		if !s.Contains(v) {
			t.Errorf("expected %d in range", v)
		}
	}
	for _, v := range []int{s.No - 1, s.Yes + 1, -999999} {
		if s.Contains(v) {
			t.Errorf("expected %d out of range", v)
		}
	}
}

func TestScaleClamp(t *testing.T) {
	s := Scale{No: -4, Yes: 4}
	tests := []struct {
		in   float64
		want Belief
	}{
		{2.5, 2.5},
		{10, 4},
		{-10, -4},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := s.Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestScaleValidate(t *testing.T) {
	if err := DefaultScale.Validate(); err != nil {
		t.Fatalf("default scale should be valid: %v", err)
	}
	err := Scale{No: 3, Yes: 3}.Validate()
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
