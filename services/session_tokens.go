package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const sessionTokenType = "session"

// SessionTokens signs and verifies the opaque token that carries a browser
// session id between requests.
type SessionTokens struct {
	secretKey []byte
	ttl       time.Duration
}

func NewSessionTokens(secret string, ttl time.Duration) *SessionTokens {
	return &SessionTokens{secretKey: []byte(secret), ttl: ttl}
}

// Issue mints a token for a new session and returns it with the session id.
func (t *SessionTokens) Issue() (token, sessionID string, err error) {
	sessionID = uuid.NewString()
	token, err = t.Sign(sessionID)
	return token, sessionID, err
}

// Sign creates a token for an existing session id.
func (t *SessionTokens) Sign(sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sid": sessionID,
		"typ": sessionTokenType,
		"iat": now.Unix(),
	}
	if t.ttl > 0 {
		claims["exp"] = now.Add(t.ttl).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secretKey)
}

// Parse validates tokenStr and returns the session id it carries.
func (t *SessionTokens) Parse(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return t.secretKey, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	if typ, ok := claims["typ"].(string); !ok || typ != sessionTokenType {
		return "", fmt.Errorf("invalid token type")
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", fmt.Errorf("token has no session id")
	}
	return sid, nil
}
