package webapi

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gatepass-server-go/internal/domain/auth"
	"gatepass-server-go/internal/platform/errors"

	httptransport "gatepass-server-go/internal/transport/http"
)

const claimsContextKey = "auth.claims"

// authMiddleware verifies the bearer token and checks the policy table for
// the matched route. Handlers behind it can rely on claims being present.
func (s *Service) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if after, ok := strings.CutPrefix(token, "Bearer "); ok {
			token = after
		}

		claims, err := s.auth.Verify(token)
		if err != nil {
			s.respondError(c, http.StatusUnauthorized, "invalid or missing token")
			c.Abort()
			return
		}

		if err := auth.Authorize(claims, c.Request.Method, c.FullPath()); err != nil {
			s.logger.WarnTag("AUTH", "denied %s %s for %s (%s)",
				c.Request.Method, c.FullPath(), claims.Username, claims.Role)
			s.respondError(c, http.StatusForbidden, "insufficient permissions")
			c.Abort()
			return
		}

		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

func claimsFrom(c *gin.Context) *auth.Claims {
	value, ok := c.Get(claimsContextKey)
	if !ok {
		return nil
	}
	claims, _ := value.(*auth.Claims)
	return claims
}

// statusForError maps platform error kinds to HTTP statuses.
func statusForError(err error) int {
	switch errors.KindOf(err) {
	case errors.KindDomain:
		return http.StatusBadRequest
	case errors.KindConflict:
		return http.StatusConflict
	case errors.KindAuth:
		return http.StatusUnauthorized
	case errors.KindForbidden:
		return http.StatusForbidden
	case errors.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage extracts the typed error message, hiding internals for
// storage and upstream failures.
func clientMessage(err error) string {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		return "internal server error"
	}

	var typed *errors.Error
	if stderrors.As(err, &typed) {
		return typed.Message
	}
	return err.Error()
}

func (s *Service) respondDomainError(c *gin.Context, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		s.logger.ErrorTag("HTTP", "%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	s.respondError(c, status, clientMessage(err))
}

func (s *Service) respondSuccess(c *gin.Context, statusCode int, data interface{}, message string) {
	httptransport.RespondSuccess(c, statusCode, data, message)
}

func (s *Service) respondError(c *gin.Context, statusCode int, message string) {
	httptransport.RespondError(c, statusCode, message, gin.H{"error": message})
}
