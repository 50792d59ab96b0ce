package loop_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/guess/internal/game"
	"github.com/robalobadob/guess/internal/loop"
)

// results strips prompts and echoes, leaving only verdict lines.
func results(out string) []string {
	var res []string
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if line == game.Prompt || strings.HasPrefix(line, "You guessed: ") {
			continue
		}
		res = append(res, line)
	}
	return res
}

func TestRunScenario(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("abc\n10\n1\n3\n")

	outcome, err := loop.New(in, &out).Run(game.New(3))
	require.NoError(t, err)
	assert.Equal(t, loop.Won, outcome)

	assert.Equal(t, []string{
		"Not a number!",
		"Too big!",
		"Too small!",
		"You win! The secret number is 3",
	}, results(out.String()))
}

func TestRunTranscript(t *testing.T) {
	var out bytes.Buffer
	_, err := loop.New(strings.NewReader("x\n2\r\n"), &out).Run(game.New(2))
	require.NoError(t, err)

	want := strings.Join([]string{
		"Please input your guess (between 1-5 inclusive)",
		"You guessed: x",
		"Not a number!",
		"Please input your guess (between 1-5 inclusive)",
		"You guessed: 2",
		"You win! The secret number is 2",
		"",
	}, "\n")
	assert.Equal(t, want, out.String())
}

func TestRunStopsReadingAfterWin(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("5\nleftover\n")
	_, err := loop.New(in, &out).Run(game.New(5))
	require.NoError(t, err)
	assert.NotContains(t, out.String(), "leftover")
}

func TestRunOutOfRangeGuessesCompareNormally(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("0\n6\n1000\n1\n")
	_, err := loop.New(in, &out).Run(game.New(1))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Too small!",
		"Too big!",
		"Too big!",
		"You win! The secret number is 1",
	}, results(out.String()))
}

func TestRunInvalidInputsNeverTerminate(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("\n   \n-1\nfive\n99999999999\n")
	g := game.New(4)

	_, err := loop.New(in, &out).Run(g)
	require.ErrorIs(t, err, loop.ErrInput)
	require.ErrorIs(t, err, io.EOF)

	res := results(out.String())
	require.Len(t, res, 5)
	for _, r := range res {
		assert.Equal(t, "Not a number!", r)
	}
	assert.Equal(t, uint32(4), g.Secret)
	assert.False(t, g.Finished)
}

func TestRunEmptyInputIsFatal(t *testing.T) {
	var out bytes.Buffer
	_, err := loop.New(strings.NewReader(""), &out).Run(game.New(1))
	require.ErrorIs(t, err, loop.ErrInput)
	assert.Equal(t, game.Prompt+"\n", out.String())
}

func TestRunFinalLineWithoutNewline(t *testing.T) {
	var out bytes.Buffer
	_, err := loop.New(strings.NewReader("2\n3"), &out).Run(game.New(3))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "You win! The secret number is 3")
}

type failingReader struct{ err error }

func (f failingReader) Read([]byte) (int, error) { return 0, f.err }

func TestRunReadErrorIsFatal(t *testing.T) {
	boom := errors.New("device gone")
	var out bytes.Buffer
	_, err := loop.New(failingReader{boom}, &out).Run(game.New(1))
	require.ErrorIs(t, err, loop.ErrInput)
	assert.ErrorIs(t, err, boom)
}

func TestRunLogsToLoggerNotOutput(t *testing.T) {
	var out, logs bytes.Buffer
	lg := zerolog.New(&logs).Level(zerolog.DebugLevel)
	_, err := loop.New(strings.NewReader("oops\n1\n"), &out, loop.WithLogger(lg)).Run(game.New(1))
	require.NoError(t, err)
	assert.Contains(t, logs.String(), `"verdict":"correct"`)
	assert.Contains(t, logs.String(), "not a number")
	assert.NotContains(t, out.String(), "verdict")
}

func TestRunFinishedGame(t *testing.T) {
	g := game.New(2)
	g.Finished = true
	var out bytes.Buffer
	outcome, err := loop.New(strings.NewReader(""), &out).Run(g)
	require.NoError(t, err)
	assert.Equal(t, loop.Won, outcome)
	assert.Empty(t, out.String())
}

func TestBanner(t *testing.T) {
	assert.Contains(t, loop.Banner(), "Guess the number")
}
