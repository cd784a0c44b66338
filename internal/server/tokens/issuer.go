// Package tokens implements the token issuer: signed JWT access tokens and
// opaque refresh tokens. The issuer verifies nothing beyond access-token
// signatures; refresh-token lookup and expiry enforcement belong to the
// authentication service.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkravets/authvault/internal/common"
	"github.com/mkravets/authvault/internal/server/config"
	"github.com/mkravets/authvault/internal/server/models"
)

// refreshTokenBytes is the entropy of a refresh token before base64 encoding.
// 64 bytes encode to an 88-character string.
const refreshTokenBytes = 64

// Claims is the access-token claim set. Besides the registered claims it
// carries the user's profile attributes and role list so authenticated
// requests need no store lookup.
type Claims struct {
	jwt.RegisteredClaims
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Gender    string   `json:"gender,omitempty"`
	Roles     []string `json:"roles,omitempty"`
}

// Issuer mints access and refresh tokens. It is a pure function of user data
// plus signing configuration and owns no persisted state.
type Issuer struct {
	key      []byte
	issuer   string
	audience string
	validity time.Duration
}

// NewIssuer builds an Issuer from config, failing fast when the signing key,
// issuer, or audience is unset. Per-call generation never re-checks these.
func NewIssuer(cfg *config.Config) (*Issuer, error) {
	if cfg.JWTKey == "" {
		return nil, fmt.Errorf("%w: JWT signing key is not set", common.ErrConfiguration)
	}
	if cfg.JWTIssuer == "" {
		return nil, fmt.Errorf("%w: JWT issuer is not set", common.ErrConfiguration)
	}
	if cfg.JWTAudience == "" {
		return nil, fmt.Errorf("%w: JWT audience is not set", common.ErrConfiguration)
	}
	return &Issuer{
		key:      []byte(cfg.JWTKey),
		issuer:   cfg.JWTIssuer,
		audience: cfg.JWTAudience,
		validity: cfg.AccessTokenValidityDuration,
	}, nil
}

// AccessToken mints a signed HS256 token for the user with expiry
// now + configured validity.
func (i *Issuer) AccessToken(user *models.User) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.validity)),
		},
		Name:      user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Gender:    user.Gender,
		Roles:     user.Roles,
	})

	signed, err := token.SignedString(i.key)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// RefreshToken draws 64 bytes from a cryptographically secure source and
// base64-encodes them. Persisting the digest is the caller's responsibility;
// the plaintext exists only in the return value.
func (i *Issuer) RefreshToken() (string, error) {
	return common.MakeRandBase64String(refreshTokenBytes)
}

// HashRefreshToken returns base64(sha256(plaintext)), the only form of a
// refresh token the store ever sees.
func (i *Issuer) HashRefreshToken(plaintext string) string {
	return common.HashBase64(plaintext)
}

// Subject parses and verifies an access token, returning its subject claim
// (the user id). Expired tokens yield common.ErrTokenExpired; any other
// verification failure yields common.ErrInvalidToken.
func (i *Issuer) Subject(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return i.key, nil
	},
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
