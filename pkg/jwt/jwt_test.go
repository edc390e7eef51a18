package jwt

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse(t *testing.T) {
	token, err := Generate("secreto", "u-1", "supply", "irigtrack", 5)
	require.NoError(t, err)

	userID, role, err := Parse("secreto", token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
	assert.Equal(t, "supply", role)

	_, _, err = Parse("otro", token)
	assert.Error(t, err)
}

func TestGenerate_Expirado(t *testing.T) {
	token, err := Generate("secreto", "u-1", "admin", "irigtrack", -1)
	require.NoError(t, err)
	_, _, err = Parse("secreto", token)
	assert.Error(t, err)
}

func TestSecretVacio(t *testing.T) {
	_, err := Generate("", "u-1", "admin", "irigtrack", 5)
	assert.ErrorIs(t, err, ErrEmptySecret)
	_, _, err = Parse("", "x")
	assert.Error(t, err)
}

func TestParse_RechazaOtroAlgoritmo(t *testing.T) {
	claims := Claims{UserID: "u-1", Role: "admin"}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secreto"))
	require.NoError(t, err)

	_, _, err = Parse("secreto", tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_SinExpiracion(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u-1", Role: "admin"}).SignedString([]byte("secreto"))
	require.NoError(t, err)

	_, _, err = Parse("secreto", tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
