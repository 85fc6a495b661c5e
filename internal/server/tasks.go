package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/service"
)

type taskListQuery struct {
	Search       string `form:"search"`
	AssignedOnly bool   `form:"assigned_only"`
	ProjectID    int64  `form:"project_id"`
	StatusID     int64  `form:"status_id"`
	Paginate     bool   `form:"paginate"`
	PerPage      int    `form:"per_page"`
	Page         int    `form:"page"`
}

// handleListTasks returns the tasks visible to the caller, ordered by due
// date.
func (s *Server) handleListTasks(c *gin.Context) {
	caller, ok := s.caller(c)
	if !ok {
		return
	}
	var q taskListQuery
	if !s.bindQuery(c, &q) {
		return
	}

	paging := listQuery{Paginate: q.Paginate, PerPage: q.PerPage, Page: q.Page}
	page, err := s.svc.Tasks.List(c.Request.Context(), caller, service.TaskFilter{
		AssignedOnly: q.AssignedOnly,
		Search:       q.Search,
		ProjectID:    q.ProjectID,
		StatusID:     q.StatusID,
		Page:         paging.page(),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondList(c, page, q.Paginate)
}

// handleCreateTask adds a task created by the caller.
func (s *Server) handleCreateTask(c *gin.Context) {
	caller, ok := s.caller(c)
	if !ok {
		return
	}
	var cmd service.CreateTask
	if !s.bindJSON(c, &cmd) {
		return
	}

	task, err := s.svc.Tasks.Create(c.Request.Context(), caller, cmd)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, task)
}

func (s *Server) handleAssignTask(c *gin.Context) {
	caller, ok := s.caller(c)
	if !ok {
		return
	}
	var cmd service.AssignTask
	if !s.bindJSON(c, &cmd) {
		return
	}

	task, err := s.svc.Tasks.Assign(c.Request.Context(), caller, cmd)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Task assigned successfully", "task", task)
}

// handleGetTask returns the task with its project, status, people and
// comments.
func (s *Server) handleGetTask(c *gin.Context) {
	caller, ok := s.caller(c)
	if !ok {
		return
	}
	id, ok := s.parseID(c, "id")
	if !ok {
		return
	}

	detail, err := s.svc.Tasks.Get(c.Request.Context(), caller, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, detail)
}

// handleUpdateTask applies a partial edit.
func (s *Server) handleUpdateTask(c *gin.Context) {
	caller, ok := s.caller(c)
	if !ok {
		return
	}
	id, ok := s.parseID(c, "id")
	if !ok {
		return
	}
	var cmd service.UpdateTask
	if !s.bindJSON(c, &cmd) {
		return
	}
	cmd.ID = id

	task, err := s.svc.Tasks.Update(c.Request.Context(), caller, cmd)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, task)
}

// handleDeleteTask removes a task with its comments and activity.
func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := s.parseID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.Tasks.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Task deleted successfully", "", nil)
}

func (s *Server) handleCompleteTask(c *gin.Context) {
	caller, ok := s.caller(c)
	if !ok {
		return
	}
	id, ok := s.parseID(c, "id")
	if !ok {
		return
	}

	task, err := s.svc.Tasks.MarkComplete(c.Request.Context(), caller, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Task marked as completed", "task", task)
}

func (s *Server) handleCloseTask(c *gin.Context) {
	caller, ok := s.caller(c)
	if !ok {
		return
	}
	id, ok := s.parseID(c, "id")
	if !ok {
		return
	}

	task, err := s.svc.Tasks.Close(c.Request.Context(), caller, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Task closed successfully", "task", task)
}

func (s *Server) handleTaskActivity(c *gin.Context) {
	caller, ok := s.caller(c)
	if !ok {
		return
	}
	id, ok := s.parseID(c, "id")
	if !ok {
		return
	}

	entries, err := s.svc.Tasks.Activity(c.Request.Context(), caller, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"data": entries})
}

func (s *Server) handleListStatuses(c *gin.Context) {
	statuses, err := s.svc.Tasks.Statuses(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"data": statuses})
}

func (s *Server) handleListComments(c *gin.Context) {
	caller, ok := s.caller(c)
	if !ok {
		return
	}
	id, ok := s.parseID(c, "id")
	if !ok {
		return
	}

	comments, err := s.svc.Comments.List(c.Request.Context(), caller, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"data": comments})
}

func (s *Server) handleCreateComment(c *gin.Context) {
	caller, ok := s.caller(c)
	if !ok {
		return
	}
	id, ok := s.parseID(c, "id")
	if !ok {
		return
	}
	var cmd service.CreateComment
	if !s.bindJSON(c, &cmd) {
		return
	}
	cmd.TaskID = id

	comment, err := s.svc.Comments.Create(c.Request.Context(), caller, cmd)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, comment)
}
