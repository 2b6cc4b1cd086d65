package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, carries a bad
	// signature, uses an unexpected algorithm, or has wrong issuer/audience.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a token is well-formed and correctly
	// signed but past its expiry.
	ErrExpiredToken = errors.New("expired token")
)

// AccessClaims holds JWT claims for the access token. Subject is the user's
// email; SessionID binds the token to the session that issued it.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Lastname  string `json:"lastname"`
	SessionID string `json:"session_id"`
}

// TokenProvider issues and validates JWT access tokens signed with an HMAC
// secret (HS256/HS384/HS512). Refresh credentials are opaque secrets handled
// elsewhere; only access tokens are JWTs.
type TokenProvider struct {
	secret    []byte
	method    jwt.SigningMethod
	issuer    string
	audience  string
	accessTTL time.Duration
}

// NewTokenProvider returns a TokenProvider signing with secret using the named
// HMAC algorithm ("HS256", "HS384" or "HS512"; anything else falls back to
// HS256). issuer and audience are set on claims and enforced on validation.
func NewTokenProvider(secret []byte, algorithm, issuer, audience string, accessTTL time.Duration) *TokenProvider {
	var method jwt.SigningMethod
	switch algorithm {
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		method = jwt.SigningMethodHS256
	}
	return &TokenProvider{
		secret:    secret,
		method:    method,
		issuer:    issuer,
		audience:  audience,
		accessTTL: accessTTL,
	}
}

// IssueAccess issues a short-lived access JWT for the given user and session.
// Returns the token string and its expiration time.
func (p *TokenProvider) IssueAccess(userID, email, name, lastname, sessionID string) (token string, expiresAt time.Time, err error) {
	now := time.Now().UTC()
	expiresAt = now.Add(p.accessTTL)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:    userID,
		Name:      name,
		Lastname:  lastname,
		SessionID: sessionID,
	}
	token, err = jwt.NewWithClaims(p.method, claims).SignedString(p.secret)
	return token, expiresAt, err
}

// ValidateAccess parses and validates an access token (signature, exp, iss,
// aud). The signing algorithm is pinned to the configured one; tokens signed
// with any other method are rejected. Returns the claims or ErrExpiredToken /
// ErrInvalidToken.
func (p *TokenProvider) ValidateAccess(tokenString string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != p.method.Alg() {
			return nil, ErrInvalidToken
		}
		return p.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Issuer != p.issuer {
		return nil, ErrInvalidToken
	}
	audOk := false
	for _, a := range claims.Audience {
		if a == p.audience {
			audOk = true
			break
		}
	}
	if !audOk {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
