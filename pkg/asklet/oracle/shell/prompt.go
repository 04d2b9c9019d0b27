package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicore/asklet/pkg/asklet/internalerr"
)

// prompter reads answers line by line and writes prompts. It blocks until a
// line is available. Lines have no length limit.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	log *zap.Logger
}

func newPrompter(in io.Reader, out io.Writer, log *zap.Logger) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out, log: log}
}

func (p *prompter) say(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// readLine prints prompt and returns the next input line without its newline.
func (p *prompter) readLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", internalerr.ErrInputClosed
		}
		return "", err
	}
	return strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"), nil
}

// question describes one validated prompt. lead is printed before every
// attempt, rejections after every failed one.
type question[T any] struct {
	lead       string
	prompt     string
	parse      func(line string) (T, error)
	rejections []string
}

// ask repeats q until parse accepts a line. Malformed input never escapes;
// only a closed input or a cancelled context ends the loop early.
func ask[T any](ctx context.Context, p *prompter, q question[T]) (T, error) {
	for {
		if q.lead != "" {
			p.say("%s", q.lead)
		}
		line, err := p.readLine(ctx, q.prompt)
		if err != nil {
			var zero T
			return zero, err
		}
		v, err := q.parse(line)
		if err == nil {
			return v, nil
		}
		p.log.Debug("rejected input", zap.String("prompt", q.prompt), zap.String("input", line), zap.Error(err))
		for _, msg := range q.rejections {
			p.say("%s", msg)
		}
	}
}
