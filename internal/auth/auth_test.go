package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestIssueAndValidate(t *testing.T) {
	token, err := IssueToken(testSecret, "u1", "Sam", time.Minute)
	require.NoError(t, err)

	identity, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "u1", identity.UserId)
	assert.Equal(t, "Sam", identity.Name)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := IssueToken(testSecret, "u1", "Sam", time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, []byte("other-secret"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpired(t *testing.T) {
	token, err := IssueToken(testSecret, "u1", "Sam", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/live/m1", nil)
	_, err := TokenFromRequest(r)
	assert.ErrorIs(t, err, ErrMissingToken)

	r.Header.Set("Authorization", "Bearer abc")
	token, err := TokenFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	r = httptest.NewRequest("GET", "/live/m1?token=xyz", nil)
	token, err = TokenFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "xyz", token)
}
