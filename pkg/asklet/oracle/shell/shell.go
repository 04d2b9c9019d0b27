// Package shell implements an oracle operated by a person at a terminal.
// Every answer is typed in and validated; malformed input is re-prompted
// until it is valid.
package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicore/asklet/pkg/asklet/belief"
	"github.com/cognicore/asklet/pkg/asklet/internalerr"
	"github.com/cognicore/asklet/pkg/asklet/oracle"
	"github.com/cognicore/asklet/pkg/asklet/session"
	"github.com/cognicore/asklet/pkg/asklet/slug"
)

// Options configures a shell oracle.
type Options struct {
	// Session persists the participant identity. Required.
	Session session.Store
	// ID reuses an existing identity; a new one is minted when empty.
	ID     string
	In     io.Reader
	Out    io.Writer
	Scale  belief.Scale
	Logger *zap.Logger
}

// Oracle is a human participant answering over a line-oriented console.
type Oracle struct {
	id     string
	sess   session.Store
	scale  belief.Scale
	p      *prompter
	log    *zap.Logger
	target string
}

var _ oracle.Oracle = (*Oracle)(nil)

// New creates a shell oracle and saves its identity immediately.
func New(opts Options) (*Oracle, error) {
	if opts.Session == nil {
		return nil, fmt.Errorf("%w: shell oracle requires a session store", internalerr.ErrInvalidConfig)
	}
	if opts.Scale == (belief.Scale{}) {
		opts.Scale = belief.DefaultScale
	}
	if err := opts.Scale.Validate(); err != nil {
		return nil, err
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ID == "" {
		opts.ID = session.NewID()
	}

	o := &Oracle{
		id:    opts.ID,
		sess:  opts.Session,
		scale: opts.Scale,
		p:     newPrompter(opts.In, opts.Out, opts.Logger),
		log:   opts.Logger,
	}
	if err := o.Save(); err != nil {
		return nil, err
	}
	return o, nil
}

// Load creates a shell oracle reusing the saved identity, unless clear is
// set, in which case a fresh identity replaces it.
func Load(opts Options, clear bool) (*Oracle, error) {
	if opts.Session == nil {
		return nil, fmt.Errorf("%w: shell oracle requires a session store", internalerr.ErrInvalidConfig)
	}
	opts.ID = ""
	if !clear {
		id, ok, err := opts.Session.Load()
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		if ok {
			opts.ID = id
		}
	}
	return New(opts)
}

// ID returns the participant identity.
func (o *Oracle) ID() string { return o.id }

// Save persists the identity.
func (o *Oracle) Save() error { return o.sess.Save(o.id) }

// Clear removes the persisted identity.
func (o *Oracle) Clear() error { return o.sess.Clear() }

// ChooseSecret asks the person to think of something and name it.
func (o *Oracle) ChooseSecret(ctx context.Context) error {
	o.p.say("Think of something.")
	target, err := ask(ctx, o.p, question[string]{
		prompt: "Enter it here: ",
		parse: func(line string) (string, error) {
			s := slug.Canonicalize(line)
			if s == "" {
				return "", internalerr.ErrMalformedInput
			}
			return s, nil
		},
		rejections: []string{
			"Sorry, but that string is invalid.",
			"Please enter a simple non-empty string with no punctuation.",
		},
	})
	if err != nil {
		return err
	}
	o.p.say("You are thinking of %s.", target)
	o.target = target
	o.log.Debug("target chosen", zap.String("session", o.id), zap.String("target", target))
	return nil
}

// Target returns what the person said they are thinking of.
func (o *Oracle) Target() string { return o.target }

// SetTarget always fails: nobody can be told what they are thinking of.
func (o *Oracle) SetTarget(ctx context.Context, identifier string) error {
	return fmt.Errorf("%w: a person's choice cannot be overridden", internalerr.ErrNotPermitted)
}

// Ask prompts for an integer belief within the scale.
func (o *Oracle) Ask(ctx context.Context, attribute string) (belief.Belief, error) {
	if o.target == "" {
		return 0, internalerr.ErrNoTarget
	}
	v, err := ask(ctx, o.p, question[int]{
		lead:   attribute + "? ",
		prompt: fmt.Sprintf("Enter integer weight between %d and %d: ", o.scale.No, o.scale.Yes),
		parse:  o.parseWeight,
		rejections: []string{
			"Sorry, but that weight is invalid.",
		},
	})
	if err != nil {
		return 0, err
	}
	return belief.Belief(v), nil
}

func (o *Oracle) parseWeight(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", internalerr.ErrMalformedInput, s)
	}
	if !o.scale.Contains(v) {
		return 0, fmt.Errorf("%w: %d outside [%d, %d]", internalerr.ErrMalformedInput, v, o.scale.No, o.scale.Yes)
	}
	return v, nil
}

// Confirm asks whether candidate is what the person is thinking of.
func (o *Oracle) Confirm(ctx context.Context, candidate string) (bool, error) {
	if o.target == "" {
		return false, internalerr.ErrNoTarget
	}
	return ask(ctx, o.p, question[bool]{
		lead:   candidate + "?",
		prompt: "y/n: ",
		parse: func(line string) (bool, error) {
			yn := strings.ToLower(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(yn, "y"):
				return true, nil
			case strings.HasPrefix(yn, "n"):
				return false, nil
			}
			return false, internalerr.ErrMalformedInput
		},
		rejections: []string{
			"Sorry, but that response is invalid.",
		},
	})
}

// Describe collects up to n "<thing> <weight>" lines. A blank line stops
// early. Labels are joined with underscores but not canonicalized.
func (o *Oracle) Describe(ctx context.Context, n int, exclude []string) ([]oracle.Hint, error) {
	if o.target == "" {
		return nil, internalerr.ErrNoTarget
	}
	hints := []oracle.Hint{}
	if n <= 0 {
		return hints, nil
	}

	known := make(map[string]struct{}, len(exclude))
	for _, e := range exclude {
		known[e] = struct{}{}
	}

	o.p.say("Please describe %d things about this.", n)
	for len(hints) < n {
		line, err := o.p.readLine(ctx, "<thing> <weight>: ")
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}

		hint, err := o.parseHint(line)
		if err != nil {
			o.log.Debug("rejected input", zap.String("input", line), zap.Error(err))
			o.p.say("Sorry, but that is an invalid input.")
			continue
		}
		if _, dup := known[hint.Attribute]; dup {
			o.p.say("I already know about %s.", hint.Attribute)
			continue
		}
		known[hint.Attribute] = struct{}{}
		hints = append(hints, hint)
	}
	return hints, nil
}

func (o *Oracle) parseHint(line string) (oracle.Hint, error) {
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return oracle.Hint{}, fmt.Errorf("%w: expected a label followed by a weight", internalerr.ErrMalformedInput)
	}
	w, err := o.parseWeight(parts[len(parts)-1])
	if err != nil {
		return oracle.Hint{}, err
	}
	return oracle.Hint{
		Attribute: strings.Join(parts[:len(parts)-1], "_"),
		Belief:    belief.Belief(w),
	}, nil
}
