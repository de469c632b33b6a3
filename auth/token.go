package auth

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "chat-hub"

var _ contract.AuthVerifier = (*TokenManager)(nil)

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 tokens with a secret loaded from configuration.
type TokenManager struct {
	secret   []byte
	duration time.Duration
}

func NewTokenManager(secret string, duration time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), duration: duration}
}

// GenerateToken creates a signed JWT for a specific user.
func (m *TokenManager) GenerateToken(userID domain.UserID, roles []string) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID: string(userID),
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	// Create the token using the HS256 algorithm (HMAC with SHA256).
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken parses and validates the signature and expiration of a JWT string.
func (m *TokenManager) ValidateToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

// Verify turns a bearer credential into a user id.
func (m *TokenManager) Verify(credential string) (domain.UserID, error) {
	if credential == "" {
		return "", fmt.Errorf("%w: missing token", errors.ErrAuthentication)
	}
	claims, err := m.ValidateToken(credential)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrAuthentication, err)
	}
	if claims.UserID == "" {
		return "", fmt.Errorf("%w: token without subject", errors.ErrAuthentication)
	}
	return domain.UserID(claims.UserID), nil
}
