package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrEmptySecret  = errors.New("jwt secret is empty")
)

// AdminRole дает доступ ко всем защищенным маршрутам
const AdminRole = "admin"

// JWTManager выпускает и проверяет токены вебхуков CMS, подписанные общим секретом (HS256)
type JWTManager struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

var _ interfaces.AuthPort = (*JWTManager)(nil)

type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

func NewJWTManager(secret string, expiration time.Duration, issuer string) (*JWTManager, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	return &JWTManager{
		secret:     []byte(secret),
		expiration: expiration,
		issuer:     issuer,
	}, nil
}

// Generate выпускает токен, используется для настройки вебхука в WordPress и в тестах
func (m *JWTManager) Generate(subject string, roles []string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   subject,
		},
		Roles: roles,
	}
	if m.expiration > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.expiration))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *JWTManager) Validate(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, opts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ValidateToken реализует interfaces.AuthPort
func (m *JWTManager) ValidateToken(_ context.Context, token string) (*interfaces.Claims, error) {
	claims, err := m.Validate(token)
	if err != nil {
		return nil, err
	}

	return &interfaces.Claims{Subject: claims.Subject, Roles: claims.Roles}, nil
}

func (m *JWTManager) HasRole(claims *interfaces.Claims, role string) bool {
	if claims == nil {
		return false
	}
	for _, r := range claims.Roles {
		if r == role || r == AdminRole {
			return true
		}
	}
	return false
}
