package security

import (
	"context"
	"testing"
	"time"

	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTManager_EmptySecret(t *testing.T) {
	_, err := NewJWTManager("", time.Hour, "wordpress")
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m, err := NewJWTManager("s3cret", time.Hour, "wordpress")
	require.NoError(t, err)

	token, err := m.Generate("wp-webhook", []string{"content-publisher"})
	require.NoError(t, err)

	claims, err := m.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "wp-webhook", claims.Subject)
	assert.True(t, m.HasRole(claims, "content-publisher"))
	assert.False(t, m.HasRole(claims, "editor"))
}

func TestJWTManager_AdminHasEveryRole(t *testing.T) {
	m, err := NewJWTManager("s3cret", 0, "")
	require.NoError(t, err)

	assert.True(t, m.HasRole(&interfaces.Claims{Roles: []string{AdminRole}}, "content-publisher"))
	assert.False(t, m.HasRole(nil, "content-publisher"))
}

func TestJWTManager_Rejects(t *testing.T) {
	m, err := NewJWTManager("s3cret", time.Hour, "wordpress")
	require.NoError(t, err)

	other, err := NewJWTManager("другой", time.Hour, "wordpress")
	require.NoError(t, err)
	foreign, err := other.Generate("wp-webhook", nil)
	require.NoError(t, err)

	wrongIssuer, err := NewJWTManager("s3cret", time.Hour, "someone-else")
	require.NoError(t, err)
	issuedElsewhere, err := wrongIssuer.Generate("wp-webhook", nil)
	require.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "wordpress",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	expiredToken, err := expired.SignedString([]byte("s3cret"))
	require.NoError(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "wordpress"}})
	noneToken, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "garbage", token: "not-a-token", want: ErrInvalidToken},
		{name: "foreign secret", token: foreign, want: ErrInvalidToken},
		{name: "wrong issuer", token: issuedElsewhere, want: ErrInvalidToken},
		{name: "expired", token: expiredToken, want: ErrExpiredToken},
		{name: "alg none", token: noneToken, want: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := m.ValidateToken(context.Background(), tt.token)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, claims)
		})
	}
}
