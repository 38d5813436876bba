package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
)

const bearerPrefix = "Bearer "

var (
	ErrMissingCredential = errors.New("missing credentials")
	ErrInvalidCredential = errors.New("invalid credentials")

	nowFunc = time.Now // mockable
)

// Identity is the resolved caller of a single request. It is never persisted;
// it lives only for the lifetime of the request that verified it.
type Identity struct {
	ID            string
	Email         string
	Role          string
	InstitutionID null.String
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	// LegacyID carries the user id for tokens minted before `sub` was adopted.
	LegacyID      string      `json:"id,omitempty"`
	Email         string      `json:"email,omitempty"`
	Role          string      `json:"role,omitempty"`
	InstitutionID null.String `json:"institutionId"`
}

// Identity maps verified claims onto an Identity. The subject falls back to
// the legacy `id` claim; an empty subject after mapping is invalid.
func (c *Claims) Identity() (Identity, error) {
	id := c.Subject
	if id == "" {
		id = c.LegacyID
	}
	if id == "" {
		return Identity{}, ErrInvalidCredential
	}
	return Identity{
		ID:            id,
		Email:         c.Email,
		Role:          NormalizeRole(c.Role),
		InstitutionID: c.InstitutionID,
	}, nil
}

// Authenticator verifies bearer credentials and issues signed tokens.
type Authenticator struct {
	issuer          string
	secretKey       []byte
	expirationDelta time.Duration
}

func NewAuthenticator(issuer string, secretKey []byte, expirationDelta time.Duration) *Authenticator {
	return &Authenticator{
		issuer:          issuer,
		secretKey:       secretKey,
		expirationDelta: expirationDelta,
	}
}

// VerifyHeader resolves an `Authorization: Bearer <token>` header to an Identity.
// A header of any other shape fails with ErrMissingCredential.
func (a *Authenticator) VerifyHeader(header string) (Identity, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return Identity{}, ErrMissingCredential
	}
	token := header[len(bearerPrefix):]
	if token == "" {
		return Identity{}, ErrMissingCredential
	}
	return a.Verify(token)
}

// Verify checks the token's signature and expiry and maps its claims.
// All verification failures collapse into ErrInvalidCredential so callers
// cannot probe which check rejected the token.
func (a *Authenticator) Verify(token string) (Identity, error) {
	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return a.secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidCredential
	}
	return claims.Identity()
}

// NewClaims builds the claims embedded in a token issued for ident.
func (a *Authenticator) NewClaims(ident Identity) *Claims {
	now := nowFunc()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   ident.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.expirationDelta)),
		},
		Email:         ident.Email,
		Role:          NormalizeRole(ident.Role),
		InstitutionID: ident.InstitutionID,
	}
}

// GenerateToken generates a signed JWT token string representing the claims.
func (a *Authenticator) GenerateToken(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(a.secretKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}
