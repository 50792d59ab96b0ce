package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("GUESS_TEST_KEY", "")
	assert.Equal(t, "def", getEnv("GUESS_TEST_KEY", "def"))
	t.Setenv("GUESS_TEST_KEY", "set")
	assert.Equal(t, "set", getEnv("GUESS_TEST_KEY", "def"))
}

func TestEnvInt(t *testing.T) {
	t.Setenv("GUESS_TEST_INT", "7")
	assert.Equal(t, 7, envInt("GUESS_TEST_INT", 14))
	t.Setenv("GUESS_TEST_INT", "zero")
	assert.Equal(t, 14, envInt("GUESS_TEST_INT", 14))
	t.Setenv("GUESS_TEST_INT", "-3")
	assert.Equal(t, 14, envInt("GUESS_TEST_INT", 14))
}

func TestPlayWinExitsZero(t *testing.T) {
	t.Setenv("GUESS_SECRET", "3")
	var out bytes.Buffer
	assert.Equal(t, exitSuccess, play(strings.NewReader("abc\n10\n1\n3\n"), &out))
	assert.Contains(t, out.String(), "Guess the number")
	assert.True(t, strings.HasSuffix(out.String(), "You win! The secret number is 3\n"))
}

func TestPlayClosedInputExitsOne(t *testing.T) {
	t.Setenv("GUESS_SECRET", "")
	var out bytes.Buffer
	assert.Equal(t, exitFailure, play(strings.NewReader(""), &out))

	t.Setenv("GUESS_SECRET", "2")
	out.Reset()
	assert.Equal(t, exitFailure, play(strings.NewReader("1\nnope\n"), &out))
	assert.Contains(t, out.String(), "Not a number!")
}

func TestPlayRejectsBadSecret(t *testing.T) {
	var out bytes.Buffer
	t.Setenv("GUESS_SECRET", "6")
	assert.Equal(t, exitConfigError, play(strings.NewReader("6\n"), &out))
	t.Setenv("GUESS_SECRET", "abc")
	assert.Equal(t, exitConfigError, play(strings.NewReader("1\n"), &out))
	assert.Empty(t, out.String())
}
