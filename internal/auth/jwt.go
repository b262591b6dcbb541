// Package auth issues and verifies the HMAC-signed access tokens the API
// uses to identify users and their organization.
package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"edurank/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// ContextUserKey is the gin context key holding the authenticated user ID.
	ContextUserKey = "user_id"
	// ContextOrgKey is the gin context key holding the user's organization ID.
	ContextOrgKey = "organization_id"

	defaultTokenTTL = 24 * time.Hour
)

// Claims are the token claims carried by an access token.
type Claims struct {
	OrganizationID string `json:"org"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies access tokens with a shared HMAC secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a token issuer for the given secret.
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: defaultTokenTTL}
}

// Issue signs a token for the given user and organization.
func (t *TokenIssuer) Issue(userID, organizationID uuid.UUID) (string, error) {
	now := time.Now()
	claims := Claims{
		OrganizationID: organizationID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify parses and validates a token string, returning the user and
// organization IDs it carries.
func (t *TokenIssuer) Verify(tokenString string) (userID, organizationID uuid.UUID, err error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("failed to verify token: %w", err)
	}
	if !token.Valid {
		return uuid.Nil, uuid.Nil, fmt.Errorf("token is not valid")
	}

	userID, err = uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid subject claim: %w", err)
	}
	organizationID, err = uuid.Parse(claims.OrganizationID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid org claim: %w", err)
	}
	return userID, organizationID, nil
}

// Middleware returns a gin middleware that rejects requests without a valid
// bearer token and stores the caller's identity on the context.
func (t *TokenIssuer) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				apperr.Envelope{Error: "missing authorization header", Code: "UNAUTHORIZED"})
			return
		}

		userID, organizationID, err := t.Verify(header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				apperr.Envelope{Error: "invalid token", Code: "UNAUTHORIZED"})
			return
		}

		c.Set(ContextUserKey, userID)
		c.Set(ContextOrgKey, organizationID)
		c.Next()
	}
}

// UserID reads the authenticated user ID from the gin context.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
