// Package belief defines the signed strength-of-association values oracles
// answer with.
package belief

import (
	"fmt"
	"math"

	"github.com/cognicore/asklet/pkg/asklet/internalerr"
)

// Belief is how strongly an attribute relates to a target. Higher values mean
// stronger affirmation.
type Belief float64

// Scale is the inclusive integer range a human answer must fall in.
type Scale struct {
	No  int `yaml:"no"`
	Yes int `yaml:"yes"`
}

// DefaultScale is the answer range used when none is configured.
var DefaultScale = Scale{No: -4, Yes: 4}

// Validate checks that the scale is a non-empty range.
func (s Scale) Validate() error {
	if s.No >= s.Yes {
		return fmt.Errorf("%w: scale no=%d must be below yes=%d", internalerr.ErrInvalidConfig, s.No, s.Yes)
	}
	return nil
}

// Contains reports whether v lies in [No, Yes].
func (s Scale) Contains(v int) bool {
	return v >= s.No && v <= s.Yes
}

// Clamp bounds v to the scale. NaN maps to the midpoint.
func (s Scale) Clamp(v float64) Belief {
	if math.IsNaN(v) {
		return Belief(float64(s.No+s.Yes) / 2)
	}
	return Belief(math.Max(float64(s.No), math.Min(float64(s.Yes), v)))
}
