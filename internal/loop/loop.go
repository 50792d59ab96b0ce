// internal/loop/loop.go
//
// Interactive guessing loop over a line-oriented reader/writer pair.
// Each iteration prompts, reads one line, echoes it, and reports the verdict.
// A parse failure only restarts the iteration; failing to read input ends
// the loop with an error wrapping ErrInput.

package loop

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/robalobadob/guess/internal/game"
)

// Outcome is how Run finished. The only outcome is a win.
type Outcome int

const Won Outcome = 1

// ErrInput marks an unrecoverable failure to read from the input stream.
var ErrInput = errors.New("failed to read line")

// Loop drives a game from in to out.
type Loop struct {
	in  *bufio.Reader
	out io.Writer
	log zerolog.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the diagnostic logger. Defaults to zerolog.Nop().
func WithLogger(l zerolog.Logger) Option {
	return func(lp *Loop) { lp.log = l }
}

// New constructs a Loop reading lines from in and writing player text to out.
func New(in io.Reader, out io.Writer, opts ...Option) *Loop {
	l := &Loop{
		in:  bufio.NewReader(in),
		out: out,
		log: zerolog.Nop(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Run plays g until the secret is guessed.
// The only error it returns wraps ErrInput.
func (l *Loop) Run(g *game.Game) (Outcome, error) {
	if g.Finished {
		return Won, nil
	}
	l.log.Debug().Str("gameId", g.ID).Msg("game started")
	for {
		fmt.Fprintln(l.out, game.Prompt)

		line, err := l.readLine()
		if err != nil {
			l.log.Debug().Err(err).Msg("input closed")
			return 0, err
		}
		fmt.Fprintf(l.out, "You guessed: %s\n", line)

		v, err := g.Play(line)
		if err != nil {
			l.log.Debug().Str("input", line).Msg("not a number")
			fmt.Fprintln(l.out, game.MsgNotANumber)
			continue
		}
		l.log.Debug().Str("input", line).Stringer("verdict", v).Msg("guess")
		fmt.Fprintln(l.out, v.Message(g.Secret))
		if v == game.Correct {
			return Won, nil
		}
	}
}

// readLine returns the next line without its terminator.
// A trailing line with no terminator is returned as-is; the EOF surfaces
// on the following call.
func (l *Loop) readLine() (string, error) {
	s, err := l.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", fmt.Errorf("%w: %w", ErrInput, err)
	}
	return strings.TrimRight(s, "\r\n"), nil
}
