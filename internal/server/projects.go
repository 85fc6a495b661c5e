package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/apperr"
	"taskboard/internal/models"
	"taskboard/internal/service"
)

// listQuery holds the search and pagination parameters shared by listings.
type listQuery struct {
	Search   string `form:"search"`
	Paginate bool   `form:"paginate"`
	PerPage  int    `form:"per_page"`
	Page     int    `form:"page"`
}

func (q listQuery) page() models.PageRequest {
	if !q.Paginate {
		return models.PageRequest{}
	}
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = models.DefaultPerPage
	}
	return models.PageRequest{Page: q.Page, PerPage: perPage}
}

func (s *Server) bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		s.respondError(c, &apperr.Error{
			Kind:    apperr.KindValidation,
			Code:    apperr.CodeInvalidInput,
			Message: "invalid query parameters",
			Err:     err,
		})
		return false
	}
	return true
}

// respondList writes the full page when pagination was requested and only
// the rows otherwise.
func respondList[T any](c *gin.Context, page models.Page[T], paginated bool) {
	if paginated {
		respondSuccess(c, http.StatusOK, page)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"data": page.Data})
}

// handleListProjects returns the projects visible to the caller.
func (s *Server) handleListProjects(c *gin.Context) {
	caller, ok := s.caller(c)
	if !ok {
		return
	}
	var q listQuery
	if !s.bindQuery(c, &q) {
		return
	}

	page, err := s.svc.Projects.List(c.Request.Context(), caller, service.ProjectFilter{Search: q.Search, Page: q.page()})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondList(c, page, q.Paginate)
}

// handleGetProject returns one project with its members.
func (s *Server) handleGetProject(c *gin.Context) {
	caller, ok := s.caller(c)
	if !ok {
		return
	}
	id, ok := s.parseID(c, "id")
	if !ok {
		return
	}

	project, err := s.svc.Projects.Get(c.Request.Context(), caller, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, project)
}

// handleCreateProject creates a new project entity.
func (s *Server) handleCreateProject(c *gin.Context) {
	var cmd service.CreateProject
	if !s.bindJSON(c, &cmd) {
		return
	}

	project, err := s.svc.Projects.Create(c.Request.Context(), cmd)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, project)
}

// handleUpdateProject changes any subset of a project's fields.
func (s *Server) handleUpdateProject(c *gin.Context) {
	id, ok := s.parseID(c, "id")
	if !ok {
		return
	}
	var cmd service.UpdateProject
	if !s.bindJSON(c, &cmd) {
		return
	}
	cmd.ID = id

	project, err := s.svc.Projects.Update(c.Request.Context(), cmd)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, project)
}

// handleDeleteProject removes a project and everything attached to it.
func (s *Server) handleDeleteProject(c *gin.Context) {
	id, ok := s.parseID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.Projects.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Project deleted successfully", "", nil)
}

func (s *Server) handleAddMembers(c *gin.Context) {
	s.changeMembers(c, s.svc.Projects.AddMembers, "Members added successfully")
}

func (s *Server) handleRemoveMembers(c *gin.Context) {
	s.changeMembers(c, s.svc.Projects.RemoveMembers, "Members removed successfully")
}

type membersFunc func(ctx context.Context, cmd service.ChangeMembers) ([]models.Member, error)

func (s *Server) changeMembers(c *gin.Context, apply membersFunc, message string) {
	id, ok := s.parseID(c, "id")
	if !ok {
		return
	}
	var cmd service.ChangeMembers
	if !s.bindJSON(c, &cmd) {
		return
	}
	cmd.ProjectID = id

	members, err := apply(c.Request.Context(), cmd)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, message, "members", members)
}
