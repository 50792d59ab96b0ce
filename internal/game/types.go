// internal/game/types.go
//
// Core type definitions for the guessing game engine.
// Defines:
//   - Verdict: result of comparing one guess to the secret (too small/too big/correct).
//   - Game: state for a single session.

package game

import (
	"errors"
	"fmt"
)

// Player-facing text. Kept verbatim; the prompt says "inclusive" for 1-5
// and the generator never produces anything outside that.
const (
	Prompt        = "Please input your guess (between 1-5 inclusive)"
	MsgNotANumber = "Not a number!"
	MsgTooBig     = "Too big!"
	MsgTooSmall   = "Too small!"
)

// Secret range: [SecretMin, SecretMax).
const (
	SecretMin uint32 = 1
	SecretMax uint32 = 6
)

var (
	// ErrNotANumber is returned for text that does not parse as an unsigned
	// base-10 integer. It is always recoverable.
	ErrNotANumber = errors.New("not a number")

	// ErrFinished is returned when a guess is applied to a won game.
	ErrFinished = errors.New("game finished")
)

// Verdict is the evaluation of a single parsed guess.
type Verdict int

const (
	TooSmall Verdict = iota + 1
	TooBig
	Correct
)

// String returns the wire name used by the HTTP API.
func (v Verdict) String() string {
	switch v {
	case TooSmall:
		return "too_small"
	case TooBig:
		return "too_big"
	case Correct:
		return "correct"
	}
	return "unknown"
}

// Message renders the line shown to the player.
func (v Verdict) Message(secret uint32) string {
	switch v {
	case TooSmall:
		return MsgTooSmall
	case TooBig:
		return MsgTooBig
	case Correct:
		return WinMessage(secret)
	}
	return ""
}

// WinMessage is printed once the secret has been guessed.
func WinMessage(secret uint32) string {
	return fmt.Sprintf("You win! The secret number is %d", secret)
}

// Game holds the state of a single guessing session.
type Game struct {
	ID       string // Unique game identifier (random hex string).
	Secret   uint32 // Chosen once in New; never re-rolled.
	Finished bool   // True once a correct guess has been applied (or the session was closed).
	Owner    string // Opaque key of whoever started the session; empty for the CLI.
}
