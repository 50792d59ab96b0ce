// internal/game/engine.go
//
// Core game engine for a single guessing session.
// Responsibilities:
//   - Create new games with a secret drawn once from [SecretMin, SecretMax).
//   - Parse raw guess text into an unsigned integer.
//   - Compare guesses against the secret and track the won state.
//
// Notes:
//   - Guesses outside 1-5 are not rejected; 0 is "too small", 6 is "too big".
//   - randomID() is a compact hex identifier for correlating server state.
package game

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"
)

// randReader is the entropy source for secrets.
var randReader io.Reader = rand.Reader

// New constructs a new game instance.
// If withSecret is zero, a random secret is chosen.
func New(withSecret uint32) *Game {
	secret := withSecret
	if secret == 0 {
		secret = randomSecret()
	}
	return &Game{
		ID:     randomID(),
		Secret: secret,
	}
}

// ValidSecret reports whether n can be produced by the generator.
func ValidSecret(n uint32) bool {
	return n >= SecretMin && n < SecretMax
}

// ParseGuess converts raw input into a guess.
//
// Surrounding whitespace is trimmed and a single leading '+' is accepted.
// Everything else that is not a base-10 uint32 (empty text, signs, letters,
// overflow) yields ErrNotANumber.
func ParseGuess(text string) (uint32, error) {
	s := strings.TrimPrefix(strings.TrimSpace(text), "+")
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, ErrNotANumber
	}
	return uint32(n), nil
}

// Check compares a guess to the secret.
func (g *Game) Check(guess uint32) Verdict {
	switch {
	case guess > g.Secret:
		return TooBig
	case guess < g.Secret:
		return TooSmall
	default:
		return Correct
	}
}

// Play parses and evaluates one raw guess, mutating the game state.
//
// Returns ErrNotANumber for unparsable text (state untouched) and
// ErrFinished once the game has been won.
func (g *Game) Play(text string) (Verdict, error) {
	if g.Finished {
		return 0, ErrFinished
	}
	n, err := ParseGuess(text)
	if err != nil {
		return 0, err
	}
	v := g.Check(n)
	if v == Correct {
		g.Finished = true
	}
	return v, nil
}

// randomSecret draws uniformly from [SecretMin, SecretMax) using crypto/rand.
// It panics if no entropy is available.
func randomSecret() uint32 {
	nBig, err := rand.Int(randReader, big.NewInt(int64(SecretMax-SecretMin)))
	if err != nil {
		panic(fmt.Sprintf("game: draw secret: %v", err))
	}
	return SecretMin + uint32(nBig.Int64())
}

// randomID returns a compact 16-hex-char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
