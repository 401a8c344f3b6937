package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// ContextUserKey is the gin context key holding the verified user id
	ContextUserKey = "user_id"
	// TokenCookie carries the access token for dashboard form posts
	TokenCookie = "access_token"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// JWTVerifier verifies HS256 access tokens issued by the hosted backend
// and returns the user id claim
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier returns nil when secret is empty, which disables verification
func NewJWTVerifier(secret string) *JWTVerifier {
	if secret == "" {
		return nil
	}
	return &JWTVerifier{secret: []byte(secret)}
}

// VerifyToken returns the user id if the token is valid
func (j *JWTVerifier) VerifyToken(token string) (string, error) {
	t, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: invalid claims", ErrInvalidToken)
	}
	// anon keys carry a role but no subject
	if v, ok := claims["sub"].(string); ok && v != "" {
		return v, nil
	}
	if v, ok := claims["user_id"].(string); ok && v != "" {
		return v, nil
	}
	return "", nil
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}

// requestToken prefers the Authorization header and falls back to TokenCookie
func requestToken(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		return BearerToken(header)
	}
	if cookie, err := r.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", ErrMissingToken
}

// Authenticate resolves the user id of a request. With a nil verifier every
// request is accepted anonymously.
func (j *JWTVerifier) Authenticate(r *http.Request, required bool) (string, error) {
	if j == nil {
		return "", nil
	}
	token, err := requestToken(r)
	if err != nil {
		if required {
			return "", err
		}
		return "", nil
	}
	userID, err := j.VerifyToken(token)
	if err != nil {
		return "", err
	}
	if required && userID == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrInvalidToken)
	}
	return userID, nil
}

// Middleware stores the verified user id under ContextUserKey and rejects
// requests with 401 when verification fails
func Middleware(j *JWTVerifier, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := j.Authenticate(c.Request, required)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		if userID != "" {
			c.Set(ContextUserKey, userID)
		}
		c.Next()
	}
}

// UserID returns the user id stored by Middleware, if any
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserKey)
}
