package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DocumentClaims authorizes a single thesis document fetch. The token is
// short-lived and carried in the download URL, so blob links stay unguessable
// without requiring the session cookie on the storage path.
type DocumentClaims struct {
	ThesisID    string `json:"tid"`
	DocumentKey string `json:"key"`
	jwt.RegisteredClaims
}

func GenerateDocumentToken(secret string, thesisID string, documentKey string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := DocumentClaims{
		ThesisID:    thesisID,
		DocumentKey: documentKey,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   thesisID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign document token: %w", err)
	}
	return signed, nil
}

func ParseDocumentToken(tokenStr string, secret string) (*DocumentClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &DocumentClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*DocumentClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}
