package server

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskboard/internal/apperr"
	"taskboard/internal/policy"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	callerKey       = "caller"
)

var errNoCaller = errors.New("no caller in request context")

// requestID tags every request with an id, reusing the client's when given.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// accessLog writes one line per API request.
func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			slog.String("request_id", c.GetString(requestIDKey)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

// authenticate resolves the bearer token to a caller. The role is read from
// the store so that role changes apply to tokens already issued.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			s.respondError(c, apperr.Unauthorized("missing bearer token"))
			return
		}
		id, err := s.tokens.Parse(raw)
		if err != nil {
			s.respondError(c, err)
			return
		}
		user, err := s.svc.Users.Me(c.Request.Context(), policy.Caller{ID: id})
		if err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				err = apperr.Unauthorized("unknown user")
			}
			s.respondError(c, err)
			return
		}
		c.Set(callerKey, policy.Caller{ID: user.ID, Role: user.Role})
		c.Next()
	}
}

// requireAdmin rejects callers without the admin role.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := s.caller(c)
		if !ok {
			return
		}
		if err := policy.RequireAdmin(caller); err != nil {
			s.respondError(c, err)
			return
		}
		c.Next()
	}
}

// caller returns the authenticated caller. It writes an error response and
// reports false when none is present.
func (s *Server) caller(c *gin.Context) (policy.Caller, bool) {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(policy.Caller); ok {
			return caller, true
		}
	}
	s.respondError(c, apperr.Internal(errNoCaller))
	return policy.Caller{}, false
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
