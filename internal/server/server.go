package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskboard/internal/apperr"
	"taskboard/internal/service"
)

// TokenParser resolves a bearer token to a user id.
type TokenParser interface {
	Parse(raw string) (int64, error)
}

// Server provides the HTTP API of the task board.
type Server struct {
	engine    *gin.Engine
	svc       *service.Services
	tokens    TokenParser
	logger    *slog.Logger
	staticDir string
}

// New constructs the HTTP server with routes and middleware configured.
func New(svc *service.Services, tokens TokenParser, logger *slog.Logger, staticDir string) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	srv := &Server{
		engine:    router,
		svc:       svc,
		tokens:    tokens,
		logger:    logger,
		staticDir: staticDir,
	}
	router.Use(requestID(), srv.accessLog())

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	api.GET("/healthz", s.handleHealth)
	api.GET("/ping", s.handlePing)

	authed := api.Group("", s.authenticate())
	admin := authed.Group("", s.requireAdmin())
	{
		authed.POST("/logout", s.handleLogout)
		authed.GET("/me", s.handleMe)
		authed.GET("/statuses", s.handleListStatuses)

		authed.GET("/projects", s.handleListProjects)
		authed.GET("/projects/:id", s.handleGetProject)
		admin.POST("/projects", s.handleCreateProject)
		admin.PUT("/projects/:id", s.handleUpdateProject)
		admin.DELETE("/projects/:id", s.handleDeleteProject)
		admin.POST("/projects/:id/members", s.handleAddMembers)
		admin.DELETE("/projects/:id/members", s.handleRemoveMembers)

		authed.GET("/tasks", s.handleListTasks)
		authed.POST("/tasks", s.handleCreateTask)
		authed.POST("/tasks/assign", s.handleAssignTask)
		authed.GET("/tasks/:id", s.handleGetTask)
		authed.PUT("/tasks/:id", s.handleUpdateTask)
		admin.DELETE("/tasks/:id", s.handleDeleteTask)
		authed.PATCH("/tasks/:id/complete", s.handleCompleteTask)
		admin.PATCH("/tasks/:id/close", s.handleCloseTask)
		authed.GET("/tasks/:id/comments", s.handleListComments)
		authed.POST("/tasks/:id/comments", s.handleCreateComment)
		authed.GET("/tasks/:id/activity", s.handleTaskActivity)

		authed.GET("/users", s.handleListUsers)
		authed.GET("/users/:id", s.handleGetUser)
		admin.DELETE("/users/:id", s.handleDeleteUser)

		admin.GET("/analytics", s.handleAnalytics)
	}

	s.mountStatic()
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// handleLogout is a no-op: tokens are stateless and simply discarded by the
// client.
func (s *Server) handleLogout(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// parseID converts a path parameter to int64 with error handling.
func (s *Server) parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		s.respondError(c, apperr.Validation(name, "invalid identifier"))
		return 0, false
	}
	return id, true
}

// bindJSON decodes the request body into dst. Unknown fields are ignored.
func (s *Server) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		s.respondError(c, &apperr.Error{
			Kind:    apperr.KindValidation,
			Code:    apperr.CodeInvalidInput,
			Message: "malformed request body",
			Err:     err,
		})
		return false
	}
	return true
}

type errorBody struct {
	Kind    apperr.Kind       `json:"kind"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// respondError logs the error and writes it in the API error envelope.
func (s *Server) respondError(c *gin.Context, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Internal(err)
	}
	status := httpStatus(e)

	attrs := []any{
		slog.String("path", c.FullPath()),
		slog.String("request_id", c.GetString(requestIDKey)),
		slog.String("error", err.Error()),
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", attrs...)
	} else {
		s.logger.Warn("request rejected", attrs...)
	}

	body := errorBody{Kind: e.Kind, Code: e.Code, Message: e.Message, Fields: e.Fields}
	if e.Kind == apperr.KindInternal {
		body.Message = "internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}

func httpStatus(e *apperr.Error) int {
	if e.Code == apperr.CodeStatusNotConfigured {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case apperr.KindValidation:
		return http.StatusUnprocessableEntity
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondSuccess writes payload as JSON, or only the status when it is nil.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}

// respondMessage writes a {"message", key: value} body, or only the message
// when key is empty.
func respondMessage(c *gin.Context, status int, message, key string, value any) {
	body := gin.H{"message": message}
	if key != "" {
		body[key] = value
	}
	respondSuccess(c, status, body)
}
