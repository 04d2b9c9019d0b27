// Package oracle defines the contract every knowledge source implements so
// the guessing engine can question it about a hidden target.
package oracle

import (
	"context"
	"math/rand/v2"

	"github.com/cognicore/asklet/pkg/asklet/belief"
)

// Oracle holds a secret target and answers belief queries about it.
// Implementations are not safe for concurrent use; one engine drives one
// oracle at a time.
type Oracle interface {
	// ChooseSecret picks a new target at random, starting a new round.
	ChooseSecret(ctx context.Context) error

	// Target returns the current target identifier, or "" before a round starts.
	Target() string

	// SetTarget forces the target to a known entity, bypassing random choice.
	SetTarget(ctx context.Context, identifier string) error

	// Ask returns the target's belief for the given attribute.
	Ask(ctx context.Context, attribute string) (belief.Belief, error)

	// Confirm reports whether candidate denotes the current target.
	Confirm(ctx context.Context, candidate string) (bool, error)

	// Describe returns up to n attributes of the target not listed in exclude.
	// The order is randomized, never ranked by strength.
	Describe(ctx context.Context, n int, exclude []string) ([]Hint, error)
}

// Hint is one attribute volunteered by Describe.
type Hint struct {
	Attribute string
	Belief    belief.Belief
}

// NewRand returns a source seeded with seed, or a randomly seeded one when
// seed is zero.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// Sample returns up to n of candidates that are not in exclude, shuffled.
// candidates is not modified.
func Sample(r *rand.Rand, candidates []string, n int, exclude []string) []string {
	if n <= 0 {
		return nil
	}

	skip := make(map[string]struct{}, len(exclude))
	for _, e := range exclude {
		skip[e] = struct{}{}
	}

	pool := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := skip[c]; ok {
			continue
		}
		pool = append(pool, c)
	}

	r.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	if len(pool) > n {
		pool = pool[:n]
	}
	return pool
}
