package store

import (
	"context"
	"crypto/rand"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/asklet/pkg/asklet/belief"
)

// Reader is the query surface the domain oracle consumes.
type Reader interface {
	CountTargets(ctx context.Context) (int64, error)
	Targets(ctx context.Context) ([]Target, error)
	TargetBySlug(ctx context.Context, slug string) (Target, bool, error)
	QuestionBySlug(ctx context.Context, slug string) (Question, bool, error)

	// NormalizedWeight returns the weight between a target and a question on
	// the store's belief scale. ok is false when no answer was ever recorded
	// for the pair.
	NormalizedWeight(ctx context.Context, targetID, questionID string) (w float64, ok bool, err error)
}

// Domain is the main interface for persisting and querying a guessing domain
type Domain interface {
	Reader
	Close() error

	UpsertTarget(ctx context.Context, slug, text string) (Target, error)
	UpsertQuestion(ctx context.Context, slug, text string) (Question, error)
	Questions(ctx context.Context) ([]Question, error)

	// RecordAnswer adds one observed answer to the running weight of a pair.
	RecordAnswer(ctx context.Context, targetID, questionID string, weight float64) error
	GetWeight(ctx context.Context, targetID, questionID string) (Weight, bool, error)
}

// Target is a guessable entity
type Target struct {
	ID   string
	Slug string
	Text string
}

// Question is an attribute the engine can ask about
type Question struct {
	ID   string
	Slug string
	Text string
}

// Weight accumulates the answers recorded for a target/question pair
type Weight struct {
	Sum   float64
	Count int64
}

// Normalized returns the mean recorded answer clamped to scale.
func (w Weight) Normalized(scale belief.Scale) (float64, bool) {
	if w.Count <= 0 {
		return 0, false
	}
	return float64(scale.Clamp(w.Sum / float64(w.Count))), true
}

// IDGen mints monotonic ULIDs for new records.
type IDGen struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewIDGen creates a generator backed by crypto/rand.
func NewIDGen() *IDGen {
	return &IDGen{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// New returns the next ID.
func (g *IDGen) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Now(), g.entropy).String()
}
