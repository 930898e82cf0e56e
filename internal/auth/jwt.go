package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"parkride/internal/domain"
)

// ErrInvalidToken is returned when an access token cannot be verified.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the access-token claims issued by the identity service.
type Claims struct {
	Sub  string `json:"sub"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// CreateAccessToken signs an HS256 access token for sub with the given role.
func CreateAccessToken(secret, sub string, role domain.Role, ttl time.Duration) (string, error) {
	claims := Claims{
		Sub:  sub,
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies an access token and returns its principal.
// Unknown roles are treated as plain users.
func ParseToken(secret, tokenStr string) (domain.Principal, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return domain.Principal{}, errors.Join(ErrInvalidToken, err)
	}

	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || c.Sub == "" {
		return domain.Principal{}, ErrInvalidToken
	}

	role := domain.RoleUser
	if domain.Role(c.Role) == domain.RoleAdmin {
		role = domain.RoleAdmin
	}
	return domain.Principal{UserID: c.Sub, Role: role}, nil
}
