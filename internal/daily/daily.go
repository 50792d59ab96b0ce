// Package daily derives the shared "number of the day".
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/robalobadob/guess/internal/game"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Secret returns the day's secret: HMAC(salt, YYYY-MM-DD) mapped onto
// [game.SecretMin, game.SecretMax).
func Secret(date time.Time, salt string) uint32 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for the modulus
	n := binary.BigEndian.Uint64(sum[:8])
	return game.SecretMin + uint32(n%uint64(game.SecretMax-game.SecretMin))
}
