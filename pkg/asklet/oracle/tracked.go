package oracle

import (
	"context"
	"crypto/rand"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/cognicore/asklet/pkg/asklet/belief"
)

// Tracked wraps an Oracle and tags every round with a ULID so answers in the
// log can be tied back to the round they belong to.
type Tracked struct {
	inner   Oracle
	log     *zap.Logger
	entropy *ulid.MonotonicEntropy
	round   string
}

// Track wraps o. A nil logger disables logging.
func Track(o Oracle, log *zap.Logger) *Tracked {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracked{
		inner:   o,
		log:     log,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Round returns the ID of the current round, or "" before the first one.
func (t *Tracked) Round() string { return t.round }

// Unwrap returns the wrapped oracle.
func (t *Tracked) Unwrap() Oracle { return t.inner }

func (t *Tracked) startRound(how string) {
	t.round = ulid.MustNew(ulid.Now(), t.entropy).String()
	t.log.Info("round started",
		zap.String("round", t.round),
		zap.String("how", how),
		zap.String("target", t.inner.Target()))
}

// ChooseSecret implements Oracle.
func (t *Tracked) ChooseSecret(ctx context.Context) error {
	if err := t.inner.ChooseSecret(ctx); err != nil {
		return err
	}
	t.startRound("random")
	return nil
}

// Target implements Oracle.
func (t *Tracked) Target() string { return t.inner.Target() }

// SetTarget implements Oracle.
func (t *Tracked) SetTarget(ctx context.Context, identifier string) error {
	if err := t.inner.SetTarget(ctx, identifier); err != nil {
		t.log.Warn("set target rejected", zap.String("identifier", identifier), zap.Error(err))
		return err
	}
	t.startRound("forced")
	return nil
}

// Ask implements Oracle.
func (t *Tracked) Ask(ctx context.Context, attribute string) (belief.Belief, error) {
	b, err := t.inner.Ask(ctx, attribute)
	if err != nil {
		t.log.Debug("ask failed", zap.String("round", t.round), zap.String("attribute", attribute), zap.Error(err))
		return 0, err
	}
	t.log.Debug("ask", zap.String("round", t.round), zap.String("attribute", attribute), zap.Float64("belief", float64(b)))
	return b, nil
}

// Confirm implements Oracle.
func (t *Tracked) Confirm(ctx context.Context, candidate string) (bool, error) {
	ok, err := t.inner.Confirm(ctx, candidate)
	if err != nil {
		return false, err
	}
	t.log.Info("confirm", zap.String("round", t.round), zap.String("candidate", candidate), zap.Bool("correct", ok))
	return ok, nil
}

// Describe implements Oracle.
func (t *Tracked) Describe(ctx context.Context, n int, exclude []string) ([]Hint, error) {
	hints, err := t.inner.Describe(ctx, n, exclude)
	if err != nil {
		return nil, err
	}
	t.log.Debug("describe", zap.String("round", t.round), zap.Int("requested", n), zap.Int("returned", len(hints)))
	return hints, nil
}
