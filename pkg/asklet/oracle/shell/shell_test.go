package shell

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/asklet/pkg/asklet/belief"
	"github.com/cognicore/asklet/pkg/asklet/internalerr"
	"github.com/cognicore/asklet/pkg/asklet/oracle"
	"github.com/cognicore/asklet/pkg/asklet/session"
)

func newScripted(t *testing.T, input string) (*Oracle, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	o, err := New(Options{
		Session: session.NewFileStore(filepath.Join(t.TempDir(), "asklet_user")),
		In:      strings.NewReader(input),
		Out:     out,
	})
	require.NoError(t, err)
	return o, out
}

// withTarget scripts a ChooseSecret answer ahead of the rest of the input.
func withTarget(t *testing.T, rest string) (*Oracle, *bytes.Buffer) {
	t.Helper()
	o, out := newScripted(t, "a cat\n"+rest)
	require.NoError(t, o.ChooseSecret(context.Background()))
	out.Reset()
	return o, out
}

func TestChooseSecretRetriesUntilValid(t *testing.T) {
	o, out := newScripted(t, "!!!\n\n   \nBlack Cat!\n")
	require.NoError(t, o.ChooseSecret(context.Background()))

	assert.Equal(t, "black_cat", o.Target())
	assert.Equal(t, 3, strings.Count(out.String(), "Sorry, but that string is invalid."))
	assert.Contains(t, out.String(), "You are thinking of black_cat.")
}

func TestChooseSecretInputClosed(t *testing.T) {
	o, _ := newScripted(t, "???\n")
	err := o.ChooseSecret(context.Background())
	assert.ErrorIs(t, err, internalerr.ErrInputClosed)
	assert.Empty(t, o.Target())
}

func TestSetTargetNotPermitted(t *testing.T) {
	o, _ := newScripted(t, "")
	for _, id := range []string{"apple", "", "/c/en/apple/n/apple"} {
		err := o.SetTarget(context.Background(), id)
		assert.ErrorIs(t, err, internalerr.ErrNotPermitted)
	}
}

func TestAskRejectsInvalidAndAcceptsBounds(t *testing.T) {
	scale := belief.DefaultScale
	input := strings.Join([]string{"abc", "-999999", "", "2.5", " -4 "}, "\n") + "\n" +
		"4\n"
	o, out := withTarget(t, input)

	b, err := o.Ask(context.Background(), "/r/IsA,/c/en/pet/n/pet")
	require.NoError(t, err)
	assert.Equal(t, belief.Belief(scale.No), b)
	assert.Equal(t, 4, strings.Count(out.String(), "Sorry, but that weight is invalid."))
	assert.Equal(t, 5, strings.Count(out.String(), "/r/IsA,/c/en/pet/n/pet?"), "question is repeated on every attempt")
	assert.Contains(t, out.String(), "Enter integer weight between -4 and 4: ")

	b, err = o.Ask(context.Background(), "furry")
	require.NoError(t, err)
	assert.Equal(t, belief.Belief(scale.Yes), b)
}

func TestAskOutOfRangeJustOutside(t *testing.T) {
	o, out := withTarget(t, "5\n-5\n0\n")
	b, err := o.Ask(context.Background(), "furry")
	require.NoError(t, err)
	assert.Equal(t, belief.Belief(0), b)
	assert.Equal(t, 2, strings.Count(out.String(), "Sorry, but that weight is invalid."))
}

func TestAskOverlongLineIsRetried(t *testing.T) {
	o, out := withTarget(t, strings.Repeat("x", 70000)+"\n2\n")
	b, err := o.Ask(context.Background(), "furry")
	require.NoError(t, err)
	assert.Equal(t, belief.Belief(2), b)
	assert.Equal(t, 1, strings.Count(out.String(), "Sorry, but that weight is invalid."))

	b, err = o.Ask(context.Background(), "tall")
	assert.ErrorIs(t, err, internalerr.ErrInputClosed, "reader stays usable after a long line")
	assert.Equal(t, belief.Belief(0), b)
}

func TestAskFinalLineWithoutNewline(t *testing.T) {
	o, _ := withTarget(t, "-3")
	b, err := o.Ask(context.Background(), "furry")
	require.NoError(t, err)
	assert.Equal(t, belief.Belief(-3), b)
}

func TestAskCustomScale(t *testing.T) {
	out := &bytes.Buffer{}
	o, err := New(Options{
		Session: session.NewFileStore(filepath.Join(t.TempDir(), "asklet_user")),
		In:      strings.NewReader("dog\n3\n1\n"),
		Out:     out,
		Scale:   belief.Scale{No: 0, Yes: 2},
	})
	require.NoError(t, err)
	require.NoError(t, o.ChooseSecret(context.Background()))

	b, err := o.Ask(context.Background(), "barks")
	require.NoError(t, err)
	assert.Equal(t, belief.Belief(1), b)
}

func TestAskBeforeTarget(t *testing.T) {
	o, _ := newScripted(t, "1\n")
	_, err := o.Ask(context.Background(), "furry")
	assert.ErrorIs(t, err, internalerr.ErrNoTarget)
}

func TestAskCancelledContext(t *testing.T) {
	o, _ := withTarget(t, "1\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := o.Ask(ctx, "furry")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfirm(t *testing.T) {
	o, out := withTarget(t, "maybe\n\nYes please\nno\nN\n")

	ok, err := o.Confirm(context.Background(), "a_cat")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, strings.Count(out.String(), "Sorry, but that response is invalid."))

	ok, err = o.Confirm(context.Background(), "a_dog")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = o.Confirm(context.Background(), "a_dog")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = o.Confirm(context.Background(), "a_dog")
	assert.ErrorIs(t, err, internalerr.ErrInputClosed)
}

func TestDescribe(t *testing.T) {
	input := strings.Join([]string{
		"has whiskers 3",
		"fluffy",
		"purrs loudly x",
		"chases mice 9",
		"has whiskers 2",
		"meows -1",
		"never read",
	}, "\n") + "\n"
	o, out := withTarget(t, input)

	hints, err := o.Describe(context.Background(), 2, nil)
	require.NoError(t, err)
	assert.Equal(t, []oracle.Hint{
		{Attribute: "has_whiskers", Belief: 3},
		{Attribute: "meows", Belief: -1},
	}, hints)

	assert.Contains(t, out.String(), "Please describe 2 things about this.")
	assert.Equal(t, 3, strings.Count(out.String(), "Sorry, but that is an invalid input."),
		"only unparseable lines are reported")
	assert.Contains(t, out.String(), "I already know about has_whiskers.")
}

func TestDescribeOverlongLineIsRetried(t *testing.T) {
	o, out := withTarget(t, strings.Repeat("y", 70000)+"\ntail 2\n\n")

	hints, err := o.Describe(context.Background(), 3, nil)
	require.NoError(t, err)
	assert.Equal(t, []oracle.Hint{{Attribute: "tail", Belief: 2}}, hints)
	assert.Equal(t, 1, strings.Count(out.String(), "Sorry, but that is an invalid input."))
}

func TestDescribeBlankLineStops(t *testing.T) {
	o, out := withTarget(t, "tail 2\n\nears 1\n")

	hints, err := o.Describe(context.Background(), 3, nil)
	require.NoError(t, err)
	assert.Equal(t, []oracle.Hint{{Attribute: "tail", Belief: 2}}, hints)
	assert.NotContains(t, out.String(), "invalid")
}

func TestDescribeExcludes(t *testing.T) {
	o, _ := withTarget(t, "tail 2\nears 1\n")

	hints, err := o.Describe(context.Background(), 1, []string{"tail"})
	require.NoError(t, err)
	assert.Equal(t, []oracle.Hint{{Attribute: "ears", Belief: 1}}, hints)
}

func TestDescribeNonPositive(t *testing.T) {
	o, out := withTarget(t, "tail 2\n")
	hints, err := o.Describe(context.Background(), 0, nil)
	require.NoError(t, err)
	assert.Empty(t, hints)
	assert.Empty(t, out.String())
}

func TestSessionIdentityPersists(t *testing.T) {
	store := session.NewFileStore(filepath.Join(t.TempDir(), "asklet_user"))

	first, err := New(Options{Session: store, In: strings.NewReader(""), Out: &bytes.Buffer{}})
	require.NoError(t, err)
	require.NoError(t, first.Save())
	assert.Len(t, first.ID(), 32)

	second, err := Load(Options{Session: store, In: strings.NewReader(""), Out: &bytes.Buffer{}}, false)
	require.NoError(t, err)
	assert.Equal(t, first.ID(), second.ID())

	require.NoError(t, second.Clear())
	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	third, err := Load(Options{Session: store, In: strings.NewReader(""), Out: &bytes.Buffer{}}, false)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), third.ID())

	saved, ok, err := store.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, third.ID(), saved, "a new identity is saved on construction")
}

func TestLoadWithClearMintsNewIdentity(t *testing.T) {
	store := session.NewFileStore(filepath.Join(t.TempDir(), "asklet_user"))
	first, err := New(Options{Session: store, In: strings.NewReader(""), Out: &bytes.Buffer{}})
	require.NoError(t, err)

	second, err := Load(Options{Session: store, In: strings.NewReader(""), Out: &bytes.Buffer{}}, true)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), second.ID())
}

func TestNewRequiresSession(t *testing.T) {
	_, err := New(Options{})
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)

	_, err = Load(Options{}, false)
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)

	_, err = New(Options{
		Session: session.NewFileStore(filepath.Join(t.TempDir(), "asklet_user")),
		Scale:   belief.Scale{No: 2, Yes: 1},
	})
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}
