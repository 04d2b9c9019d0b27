package store

import (
	"testing"

	"github.com/cognicore/asklet/pkg/asklet/belief"
)

func TestWeightNormalized(t *testing.T) {
	scale := belief.Scale{No: -4, Yes: 4}

	tests := []struct {
		name   string
		w      Weight
		want   float64
		wantOK bool
	}{
		{"no answers", Weight{}, 0, false},
		{"single answer", Weight{Sum: 3, Count: 1}, 3, true},
		{"mean", Weight{Sum: 6, Count: 4}, 1.5, true},
		{"clamped high", Weight{Sum: 50, Count: 2}, 4, true},
		{"clamped low", Weight{Sum: -9, Count: 1}, -4, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.w.Normalized(scale)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Normalized() = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestIDGenMonotonic(t *testing.T) {
	g := NewIDGen()
	prev := g.New()
	for i := 0; i < 100; i++ {
		next := g.New()
		if next <= prev {
			t.Fatalf("IDs not increasing: %s then %s", prev, next)
		}
		prev = next
	}
}
