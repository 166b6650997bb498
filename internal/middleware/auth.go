package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hcc-raf-server/internal/domain"
)

// Authenticator verifies the credentials of an inbound request
type Authenticator interface {
	Authenticate(r *http.Request) error
}

// NoopAuthenticator accepts every request. It is used when enforcement is off.
type NoopAuthenticator struct{}

// Authenticate implements Authenticator
func (NoopAuthenticator) Authenticate(*http.Request) error {
	return nil
}

// BearerTokenAuthenticator accepts requests carrying one of a fixed set of bearer tokens
type BearerTokenAuthenticator struct {
	tokens [][]byte
}

// NewBearerTokenAuthenticator creates an authenticator for the given tokens.
// Blank tokens are ignored.
func NewBearerTokenAuthenticator(tokens []string) *BearerTokenAuthenticator {
	a := &BearerTokenAuthenticator{}
	for _, token := range tokens {
		if token = strings.TrimSpace(token); token != "" {
			a.tokens = append(a.tokens, []byte(token))
		}
	}
	return a
}

// Authenticate implements Authenticator
func (a *BearerTokenAuthenticator) Authenticate(r *http.Request) error {
	header := r.Header.Get("Authorization")
	if header == "" {
		return domain.ErrMissingCredentials
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return domain.ErrInvalidCredentials
	}

	presented := []byte(strings.TrimSpace(token))
	for _, known := range a.tokens {
		if subtle.ConstantTimeCompare(presented, known) == 1 {
			return nil
		}
	}
	return domain.ErrForbidden
}

// NewAuthenticator picks the authenticator for the auth configuration
func NewAuthenticator(config domain.AuthConfig) Authenticator {
	if !config.Enforce {
		return NoopAuthenticator{}
	}
	return NewBearerTokenAuthenticator(config.Tokens)
}

// RequireAuth rejects requests the authenticator does not accept: 401 for missing
// or malformed credentials, 403 for a rejected token
func RequireAuth(auth Authenticator, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := auth.Authenticate(c.Request)
		if err == nil {
			c.Next()
			return
		}

		status := http.StatusUnauthorized
		if errors.Is(err, domain.ErrForbidden) {
			status = http.StatusForbidden
		}

		logger.WithFields(logrus.Fields{
			"correlation_id": GetCorrelationID(c),
			"path":           c.Request.URL.Path,
			"status":         status,
		}).Warn("Request rejected by authentication")

		c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
	}
}
