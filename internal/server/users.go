package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/service"
)

func (s *Server) handleMe(c *gin.Context) {
	caller, ok := s.caller(c)
	if !ok {
		return
	}
	user, err := s.svc.Users.Me(c.Request.Context(), caller)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, user)
}

// handleListUsers returns the users sharing a project with the caller, or
// everyone for admins.
func (s *Server) handleListUsers(c *gin.Context) {
	caller, ok := s.caller(c)
	if !ok {
		return
	}
	var q listQuery
	if !s.bindQuery(c, &q) {
		return
	}

	page, err := s.svc.Users.List(c.Request.Context(), caller, service.UserFilter{Search: q.Search, Page: q.page()})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondList(c, page, q.Paginate)
}

func (s *Server) handleGetUser(c *gin.Context) {
	caller, ok := s.caller(c)
	if !ok {
		return
	}
	id, ok := s.parseID(c, "id")
	if !ok {
		return
	}

	user, err := s.svc.Users.Get(c.Request.Context(), caller, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(c *gin.Context) {
	id, ok := s.parseID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.Users.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "User deleted successfully", "", nil)
}

// handleAnalytics reports task, project and user counters.
func (s *Server) handleAnalytics(c *gin.Context) {
	stats, err := s.svc.Analytics.Stats(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, stats)
}
