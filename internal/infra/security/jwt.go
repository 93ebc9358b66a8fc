package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken indicates the token failed signature or claim validation.
	ErrInvalidToken = errors.New("jwt: invalid token")
	// ErrExpiredToken indicates the token is past its expiry.
	ErrExpiredToken = errors.New("jwt: token expired")
)

// PrincipalClaims carries the acting account's identity as asserted by the
// authenticating edge. The login is the subject.
type PrincipalClaims struct {
	Authorities []string `json:"auth,omitempty"`
	jwt.RegisteredClaims
}

// Login returns the principal's login name.
func (c *PrincipalClaims) Login() string {
	return c.Subject
}

// JWTManager issues and verifies HS256 bearer tokens for the HTTP edge.
type JWTManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewJWTManager constructs a manager for the given shared secret.
func NewJWTManager(secret, issuer string, ttl time.Duration) (*JWTManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &JWTManager{secret: []byte(secret), issuer: issuer, ttl: ttl}, nil
}

// Issue signs a token asserting the provided login and authorities.
func (m *JWTManager) Issue(login string, authorities []string) (string, error) {
	now := time.Now().UTC()
	claims := PrincipalClaims{
		Authorities: authorities,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   login,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// Parse validates the token and returns its principal claims.
func (m *JWTManager) Parse(raw string) (*PrincipalClaims, error) {
	claims := &PrincipalClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
