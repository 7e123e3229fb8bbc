package utils

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAuthCookie is the cookie name the web client keeps its bearer token in.
const DefaultAuthCookie = "auth._token.local"

// acceptedAlgs is the exact set of signing algorithms a credential may carry.
// New tokens are always HS256; HS384/HS512 stay accepted for tokens issued
// before the algorithm was pinned.
var acceptedAlgs = []string{"HS256", "HS384", "HS512"}

// TokenClaims is the credential payload: subject id, issued-at, expiry.
type TokenClaims struct {
	UserID int64 `json:"id"`
	jwt.RegisteredClaims
}

// IssueToken signs a credential for the given user.
func IssueToken(secret string, userID int64, issuedAt time.Time, ttl time.Duration) (string, error) {
	claims := TokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return token, nil
}

// VerifyToken checks the signature and shape of a raw credential.
// It does NOT check expiry against the wall clock: the exp claim is enforced
// by the session service together with the stored token row, because
// revocation state lives there, not in the signature.
func VerifyToken(secret, raw string) (*TokenClaims, error) {
	claims := &TokenClaims{}

	_, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) {
			return []byte(secret), nil
		},
		jwt.WithValidMethods(acceptedAlgs),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}

	if claims.UserID <= 0 {
		return nil, fmt.Errorf("verify token: missing subject id")
	}

	return claims, nil
}

// ExtractToken pulls the raw bearer token from a request: Authorization header
// first, then the auth cookie. The cookie value may itself carry a "Bearer "
// prefix, which is stripped. A request without either source is simply
// unauthenticated, so the second return value is false rather than an error.
func ExtractToken(r *http.Request, cookieName string) (string, bool) {
	if cookieName == "" {
		cookieName = DefaultAuthCookie
	}

	// A non-Bearer header (e.g. Basic from a proxy) is ignored, not fatal:
	// the cookie is still consulted
	if header := r.Header.Get("Authorization"); header != "" {
		if raw, ok := stripBearer(header); ok {
			return raw, true
		}
	}

	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	// Web clients store the cookie URL-encoded ("Bearer%20<token>")
	value := cookie.Value
	if decoded, decErr := url.QueryUnescape(value); decErr == nil {
		value = decoded
	}

	if raw, ok := stripBearer(value); ok {
		return raw, true
	}

	return value, true
}

// stripBearer splits "Bearer <token>" with a case-insensitive scheme.
func stripBearer(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1], true
	}

	return "", false
}
