// Package domain implements an oracle backed by a persisted domain of
// targets, questions and recorded answer weights. It lets the engine play
// against its own data to measure how well a domain separates its targets.
package domain

import (
	"context"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/cognicore/asklet/pkg/asklet/belief"
	"github.com/cognicore/asklet/pkg/asklet/internalerr"
	"github.com/cognicore/asklet/pkg/asklet/oracle"
	"github.com/cognicore/asklet/pkg/asklet/store"
)

// Options configures a domain oracle.
type Options struct {
	Logger *zap.Logger
	Rand   *rand.Rand
}

// Oracle answers with the normalized weights stored in a domain.
type Oracle struct {
	src    store.Reader
	target store.Target
	set    bool
	rng    *rand.Rand
	log    *zap.Logger
}

var _ oracle.Oracle = (*Oracle)(nil)

// New creates a domain oracle. The domain must hold at least one target.
func New(ctx context.Context, src store.Reader, opts Options) (*Oracle, error) {
	n, err := src.CountTargets(ctx)
	if err != nil {
		return nil, fmt.Errorf("count targets: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: domain oracle requires a domain with at least one target", internalerr.ErrInvalidConfig)
	}

	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Rand == nil {
		opts.Rand = oracle.NewRand(0)
	}

	return &Oracle{
		src: src,
		rng: opts.Rand,
		log: opts.Logger,
	}, nil
}

// ChooseSecret draws a target uniformly at random from the domain.
func (o *Oracle) ChooseSecret(ctx context.Context) error {
	targets, err := o.src.Targets(ctx)
	if err != nil {
		return fmt.Errorf("list targets: %w", err)
	}
	if len(targets) == 0 {
		return fmt.Errorf("%w: domain has no targets", internalerr.ErrInvalidConfig)
	}
	o.target = targets[o.rng.IntN(len(targets))]
	o.set = true
	o.log.Debug("target chosen", zap.String("target", o.target.Slug))
	return nil
}

// Target returns the slug of the current target.
func (o *Oracle) Target() string { return o.target.Slug }

// Record returns the current target handle.
func (o *Oracle) Record() (store.Target, bool) { return o.target, o.set }

// SetTarget resolves slug in the domain and makes it the target.
func (o *Oracle) SetTarget(ctx context.Context, slug string) error {
	t, err := o.lookupTarget(ctx, slug)
	if err != nil {
		return err
	}
	o.target = t
	o.set = true
	return nil
}

// Ask returns the normalized weight between the target and the question
// identified by attribute.
func (o *Oracle) Ask(ctx context.Context, attribute string) (belief.Belief, error) {
	if !o.set {
		return 0, internalerr.ErrNoTarget
	}

	q, ok, err := o.src.QuestionBySlug(ctx, attribute)
	if err != nil {
		return 0, fmt.Errorf("lookup question: %w", err)
	}
	if !ok {
		return 0, fmt.Errorf("%w: question %q", internalerr.ErrNotFound, attribute)
	}

	w, ok, err := o.src.NormalizedWeight(ctx, o.target.ID, q.ID)
	if err != nil {
		return 0, fmt.Errorf("lookup weight: %w", err)
	}
	if !ok {
		return 0, fmt.Errorf("%w: no weight for %q on %q", internalerr.ErrNotFound, attribute, o.target.Slug)
	}
	return belief.Belief(w), nil
}

// Confirm resolves candidate and compares it with the target by identity.
func (o *Oracle) Confirm(ctx context.Context, candidate string) (bool, error) {
	if !o.set {
		return false, internalerr.ErrNoTarget
	}
	t, err := o.lookupTarget(ctx, candidate)
	if err != nil {
		return false, err
	}
	return o.ConfirmTarget(t)
}

// ConfirmTarget compares an already resolved target with the current one.
func (o *Oracle) ConfirmTarget(t store.Target) (bool, error) {
	if !o.set {
		return false, internalerr.ErrNoTarget
	}
	return t.ID == o.target.ID, nil
}

// Describe always returns nothing: the domain would only be telling itself
// what it already knows.
func (o *Oracle) Describe(ctx context.Context, n int, exclude []string) ([]oracle.Hint, error) {
	return []oracle.Hint{}, nil
}

func (o *Oracle) lookupTarget(ctx context.Context, slug string) (store.Target, error) {
	t, ok, err := o.src.TargetBySlug(ctx, slug)
	if err != nil {
		return store.Target{}, fmt.Errorf("lookup target: %w", err)
	}
	if !ok {
		return store.Target{}, fmt.Errorf("%w: target %q", internalerr.ErrNotFound, slug)
	}
	return t, nil
}
