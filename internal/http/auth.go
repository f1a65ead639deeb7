package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/toolhub/proxycurl-mcp/internal/core"
)

const tokenIssuer = "proxycurl-mcp"

type unauthorizedError struct{ reason string }

func (e *unauthorizedError) Error() string     { return "unauthorized: " + e.reason }
func (e *unauthorizedError) ErrorCode() string { return "unauthorized" }

// IssueToken signs an HS256 bearer token for subject, valid for ttl.
func IssueToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("invalid token ttl %s", ttl)
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now.Add(-30 * time.Second)),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// verifyToken checks signature, algorithm, issuer and expiry.
func verifyToken(secret, raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// requireBearer rejects requests without a valid bearer token. An empty
// secret disables the check.
func requireBearer(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			abortWithError(c, &unauthorizedError{reason: "missing bearer token"})
			return
		}
		claims, err := verifyToken(secret, strings.TrimSpace(raw))
		if err != nil {
			abortWithError(c, &unauthorizedError{reason: err.Error()})
			return
		}
		c.Set("subject", claims.Subject)
		c.Next()
	}
}

func abortWithError(c *gin.Context, err error) {
	info := core.MapError(err, http.StatusInternalServerError)
	c.AbortWithStatusJSON(info.HTTPStatus, core.ToolEnvelope{
		OK:    false,
		Meta:  core.ToolMeta{TraceID: traceID(c)},
		Error: &core.ToolError{Code: info.Code, Message: info.Message},
	})
}
