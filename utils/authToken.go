package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/o1egl/paseto"
)

const (
	// Set expiration times for access and refresh tokens.
	AccessTokenExpiry  = 24 * time.Hour
	RefreshTokenExpiry = 7 * 24 * time.Hour
)

// Token kinds.
const (
	AccessToken  = "access"
	RefreshToken = "refresh"
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrWrongTokenKind = errors.New("wrong token kind")
)

// TokenClaims is what a token carries. Everything else about the session
// lives server-side under SessionID.
type TokenClaims struct {
	SessionID string    `json:"sid"`
	UserID    string    `json:"userId"`
	Kind      string    `json:"kind"`
	Expiry    time.Time `json:"expiry"`
}

// TokenMaker issues and checks PASETO v2 local tokens.
type TokenMaker struct {
	key []byte
	v2  *paseto.V2
}

// NewTokenMaker checks the symmetric key has the correct length (32 bytes).
func NewTokenMaker(symmetricKey string) (*TokenMaker, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("SYMMETRIC_KEY must be 32 bytes long. Current length: %d", len(symmetricKey))
	}
	return &TokenMaker{key: []byte(symmetricKey), v2: paseto.NewV2()}, nil
}

// GenerateTokens generates both the access token and refresh token for a session.
func (m *TokenMaker) GenerateTokens(sessionID, userID string) (accessToken, refreshToken string, err error) {
	accessToken, err = m.generate(sessionID, userID, AccessToken, AccessTokenExpiry)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = m.generate(sessionID, userID, RefreshToken, RefreshTokenExpiry)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// GenerateAccessToken generates only the access token.
func (m *TokenMaker) GenerateAccessToken(sessionID, userID string) (string, error) {
	return m.generate(sessionID, userID, AccessToken, AccessTokenExpiry)
}

func (m *TokenMaker) generate(sessionID, userID, kind string, expiry time.Duration) (string, error) {
	claims := TokenClaims{
		SessionID: sessionID,
		UserID:    userID,
		Kind:      kind,
		Expiry:    time.Now().Add(expiry),
	}
	token, err := m.v2.Encrypt(m.key, claims, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// ValidateToken decrypts the token and checks its kind and expiry.
func (m *TokenMaker) ValidateToken(tokenString, kind string) (*TokenClaims, error) {
	var claims TokenClaims
	if err := m.v2.Decrypt(tokenString, m.key, &claims, nil); err != nil {
		return nil, fmt.Errorf("failed to decrypt token: %w", err)
	}
	if claims.Kind != kind {
		return nil, ErrWrongTokenKind
	}
	if time.Now().After(claims.Expiry) {
		return nil, ErrTokenExpired
	}
	return &claims, nil
}
