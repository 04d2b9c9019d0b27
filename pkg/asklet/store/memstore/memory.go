package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/asklet/pkg/asklet/belief"
	"github.com/cognicore/asklet/pkg/asklet/internalerr"
	"github.com/cognicore/asklet/pkg/asklet/store"
)

// Store is an in-memory implementation of store.Domain for tests.
type Store struct {
	mu        sync.RWMutex
	ids       *store.IDGen
	scale     belief.Scale
	targets   map[string]store.Target
	questions map[string]store.Question
	targetBy  map[string]string
	questBy   map[string]string
	weights   map[pairKey]store.Weight
}

type pairKey struct {
	target   string
	question string
}

// New creates a new in-memory store. An optional scale bounds normalized
// weights; belief.DefaultScale is used otherwise.
func New(scale ...belief.Scale) *Store {
	s := belief.DefaultScale
	if len(scale) > 0 {
		s = scale[0]
	}
	return &Store{
		ids:       store.NewIDGen(),
		scale:     s,
		targets:   make(map[string]store.Target),
		questions: make(map[string]store.Question),
		targetBy:  make(map[string]string),
		questBy:   make(map[string]string),
		weights:   make(map[pairKey]store.Weight),
	}
}

// Close implements store.Domain.
func (s *Store) Close() error { return nil }

// CountTargets returns the number of targets.
func (s *Store) CountTargets(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.targets)), nil
}

// Targets returns all targets ordered by slug.
func (s *Store) Targets(ctx context.Context) ([]store.Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Target, 0, len(s.targets))
	for _, t := range s.targets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

// Questions returns all questions ordered by slug.
func (s *Store) Questions(ctx context.Context) ([]store.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Question, 0, len(s.questions))
	for _, q := range s.questions {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

// TargetBySlug looks a target up by slug.
func (s *Store) TargetBySlug(ctx context.Context, slug string) (store.Target, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.targetBy[slug]
	if !ok {
		return store.Target{}, false, nil
	}
	return s.targets[id], true, nil
}

// QuestionBySlug looks a question up by slug.
func (s *Store) QuestionBySlug(ctx context.Context, slug string) (store.Question, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.questBy[slug]
	if !ok {
		return store.Question{}, false, nil
	}
	return s.questions[id], true, nil
}

// UpsertTarget inserts a target or updates its text, keyed by slug.
func (s *Store) UpsertTarget(ctx context.Context, slug, text string) (store.Target, error) {
	if slug == "" {
		return store.Target{}, fmt.Errorf("%w: empty target slug", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.targetBy[slug]
	if !ok {
		id = s.ids.New()
		s.targetBy[slug] = id
	}
	t := store.Target{ID: id, Slug: slug, Text: text}
	s.targets[id] = t
	return t, nil
}

// UpsertQuestion inserts a question or updates its text, keyed by slug.
func (s *Store) UpsertQuestion(ctx context.Context, slug, text string) (store.Question, error) {
	if slug == "" {
		return store.Question{}, fmt.Errorf("%w: empty question slug", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.questBy[slug]
	if !ok {
		id = s.ids.New()
		s.questBy[slug] = id
	}
	q := store.Question{ID: id, Slug: slug, Text: text}
	s.questions[id] = q
	return q, nil
}

// RecordAnswer adds weight to the running total of a pair.
func (s *Store) RecordAnswer(ctx context.Context, targetID, questionID string, weight float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.targets[targetID]; !ok {
		return fmt.Errorf("%w: target id %q", internalerr.ErrNotFound, targetID)
	}
	if _, ok := s.questions[questionID]; !ok {
		return fmt.Errorf("%w: question id %q", internalerr.ErrNotFound, questionID)
	}

	k := pairKey{target: targetID, question: questionID}
	w := s.weights[k]
	w.Sum += weight
	w.Count++
	s.weights[k] = w
	return nil
}

// GetWeight returns the raw accumulated weight of a pair.
func (s *Store) GetWeight(ctx context.Context, targetID, questionID string) (store.Weight, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.weights[pairKey{target: targetID, question: questionID}]
	return w, ok, nil
}

// NormalizedWeight implements store.Reader.
func (s *Store) NormalizedWeight(ctx context.Context, targetID, questionID string) (float64, bool, error) {
	w, ok, err := s.GetWeight(ctx, targetID, questionID)
	if err != nil || !ok {
		return 0, false, err
	}
	n, ok := w.Normalized(s.scale)
	return n, ok, nil
}
