package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cytolab/lims/internal/platform/apierr"
)

// Claims is the payload carried by issued bearer tokens: the user id and the
// role name, plus standard expiry.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"id"`
	Role   string    `json:"role"`
}

// Issuer signs and verifies HS256 bearer tokens with a shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, ttl: ttl}
}

// Issue returns a signed token embedding the user id and role, valid for the
// configured TTL.
func (i *Issuer) Issue(userID uuid.UUID, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		UserID: userID,
		Role:   role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", apierr.Internal("failed to sign token", err)
	}
	return signed, nil
}

// Verify validates signature and expiry and returns the embedded claims.
// Any failure (bad signature, wrong algorithm, expired) maps to TokenInvalid;
// the caller distinguishes a missing header separately.
func (i *Issuer) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, apierr.New(apierr.KindTokenInvalid, "Invalid or expired token")
	}
	return claims, nil
}
