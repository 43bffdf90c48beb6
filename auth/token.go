package auth

import (
	"fmt"
	"time"

	"github.com/faizan/spotify-tracks/apperr"
	jwt "github.com/golang-jwt/jwt/v4"
)

// TokenTTL is the lifetime of every issued bearer token.
const TokenTTL = time.Hour

// Claims is the JWT payload: the username plus the standard expiry.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 bearer tokens with a shared secret.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), now: time.Now}
}

// Issue returns a signed token for username that expires after TokenTTL.
func (t *Tokens) Issue(username string) (string, error) {
	now := t.now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("%w: failed to sign token: %v", apperr.ErrServer, err)
	}
	return signed, nil
}

// Verify parses requestToken and checks its signature and expiry.
func (t *Tokens) Verify(requestToken string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(requestToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrAuth, err)
	}
	if !token.Valid || claims.Username == "" {
		return nil, fmt.Errorf("%w: invalid token", apperr.ErrAuth)
	}
	// jwt treats a missing exp as valid forever.
	if !claims.VerifyExpiresAt(t.now(), true) {
		return nil, fmt.Errorf("%w: token has no expiry", apperr.ErrAuth)
	}
	return claims, nil
}
