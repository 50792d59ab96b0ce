package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

func TestRandomSecretPanicsWithoutEntropy(t *testing.T) {
	orig := randReader
	randReader = brokenReader{}
	t.Cleanup(func() { randReader = orig })

	assert.PanicsWithValue(t, "game: draw secret: no entropy", func() { New(0) })
	assert.NotPanics(t, func() { New(4) })
}
