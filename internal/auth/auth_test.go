package auth_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/guess/internal/auth"
)

func TestPasswords(t *testing.T) {
	h, err := auth.HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(h, "hunter22"))
	assert.False(t, auth.CheckPassword(h, "hunter23"))
}

func TestValidateSignup(t *testing.T) {
	assert.NoError(t, auth.ValidateSignup("player_1", "longenough"))
	assert.Error(t, auth.ValidateSignup("ab", "longenough"))
	assert.Error(t, auth.ValidateSignup("bad name", "longenough"))
	assert.Error(t, auth.ValidateSignup("player", "short"))
	assert.Error(t, auth.ValidateSignup("player", strings.Repeat("x", 101)))
	assert.Equal(t, "bob", auth.NormalizeUsername("  bob \n"))
}

func TestSignParse(t *testing.T) {
	s := auth.Signer{Secret: []byte("test-secret"), TTL: time.Hour}
	tok, exp, err := s.Sign("u1", "alice")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	c, err := s.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, auth.Claims{ID: "u1", Username: "alice"}, c)

	other := auth.Signer{Secret: []byte("other"), TTL: time.Hour}
	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	expired := auth.Signer{Secret: []byte("test-secret"), TTL: -time.Minute}
	old, _, err := expired.Sign("u1", "alice")
	require.NoError(t, err)
	_, err = s.Parse(old)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = s.Parse("garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, auth.TokenFromRequest(r, "guess_token"))

	r.AddCookie(&http.Cookie{Name: "guess_token", Value: "from-cookie"})
	assert.Equal(t, "from-cookie", auth.TokenFromRequest(r, "guess_token"))

	r.Header.Set("Authorization", "Bearer  from-header ")
	assert.Equal(t, "from-header", auth.TokenFromRequest(r, "guess_token"))
}
