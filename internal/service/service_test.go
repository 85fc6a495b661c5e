package service_test

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/apperr"
	"taskboard/internal/models"
	"taskboard/internal/policy"
	"taskboard/internal/service"
	"taskboard/internal/storage/sqlite"
)

type fixture struct {
	store *sqlite.Store
	svc   *service.Services
	clock *fakeClock
	admin policy.Caller
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "taskboard.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	clock := &fakeClock{now: time.Date(2024, 1, 4, 9, 0, 0, 0, time.UTC)}
	f := &fixture{
		store: store,
		svc:   service.New(store, service.WithClock(clock.Now)),
		clock: clock,
	}
	f.admin = f.user(t, "root", models.RoleAdmin)
	return f
}

func (f *fixture) user(t *testing.T, name string, role models.Role) policy.Caller {
	t.Helper()
	u, err := f.svc.Users.Create(context.Background(), service.CreateUser{Name: name, Email: name + "@example.com", Role: string(role)})
	require.NoError(t, err)
	return policy.Caller{ID: u.ID, Role: u.Role}
}

func (f *fixture) project(t *testing.T, name string, members ...policy.Caller) models.Project {
	t.Helper()
	ctx := context.Background()
	p, err := f.svc.Projects.Create(ctx, service.CreateProject{Name: name, StartDate: "2024-01-01", EndDate: "2024-01-10"})
	require.NoError(t, err)
	if len(members) > 0 {
		ids := make([]int64, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.ID)
		}
		_, err = f.svc.Projects.AddMembers(ctx, service.ChangeMembers{ProjectID: p.ID, UserIDs: ids})
		require.NoError(t, err)
	}
	return p
}

func (f *fixture) task(t *testing.T, caller policy.Caller, projectID int64, assignee policy.Caller, due string) models.Task {
	t.Helper()
	task, err := f.svc.Tasks.Create(context.Background(), caller, service.CreateTask{
		Title:        "task due " + due,
		ProjectID:    projectID,
		DueDate:      due,
		AssignedToID: assignee.ID,
	})
	require.NoError(t, err)
	return task
}

func ids[T any](rows []T, id func(T) int64) []int64 {
	out := make([]int64, 0, len(rows))
	for _, r := range rows {
		out = append(out, id(r))
	}
	return out
}

func taskID(t models.Task) int64       { return t.ID }
func projectID(p models.Project) int64 { return p.ID }
func memberID(m models.Member) int64   { return m.ID }

func requireKind(t *testing.T, err error, kind apperr.Kind, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperr.KindOf(err), "error: %v", err)
	if code != "" {
		assert.Equal(t, code, apperr.CodeOf(err))
	}
}

func TestCreateTaskDefaults(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u", models.RoleUser)
	p := f.project(t, "p")

	task := f.task(t, u, p.ID, u, "2024-01-05")

	assert.Equal(t, models.StatusInProgress, task.StatusID)
	assert.Equal(t, u.ID, task.CreatedByID)
	require.NotNil(t, task.AssignedToID)
	assert.Equal(t, u.ID, *task.AssignedToID)
	assert.Nil(t, task.CompletedAt)
}

func TestCreateTaskValidation(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u", models.RoleUser)
	p := f.project(t, "p")
	ctx := context.Background()

	tests := []struct {
		name  string
		cmd   service.CreateTask
		field string
	}{
		{"missing title", service.CreateTask{ProjectID: p.ID, DueDate: "2024-01-05", AssignedToID: u.ID}, "title"},
		{"blank title", service.CreateTask{Title: "   ", ProjectID: p.ID, DueDate: "2024-01-05", AssignedToID: u.ID}, "title"},
		{"bad due date", service.CreateTask{Title: "t", ProjectID: p.ID, DueDate: "05/01/2024", AssignedToID: u.ID}, "due_date"},
		{"missing assignee", service.CreateTask{Title: "t", ProjectID: p.ID, DueDate: "2024-01-05"}, "assigned_to_id"},
		{"unknown assignee", service.CreateTask{Title: "t", ProjectID: p.ID, DueDate: "2024-01-05", AssignedToID: 999}, "assigned_to_id"},
		{"unknown project", service.CreateTask{Title: "t", ProjectID: 999, DueDate: "2024-01-05", AssignedToID: u.ID}, "project_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Tasks.Create(ctx, u, tt.cmd)
			requireKind(t, err, apperr.KindValidation, "")
			e, ok := apperr.As(err)
			require.True(t, ok)
			assert.Contains(t, e.Fields, tt.field)
		})
	}
}

func TestMarkCompleteIsIdempotent(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u", models.RoleUser)
	p := f.project(t, "p")
	task := f.task(t, f.admin, p.ID, u, "2024-01-05")
	ctx := context.Background()

	first, err := f.svc.Tasks.MarkComplete(ctx, u, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, first.StatusID)
	require.NotNil(t, first.CompletedAt)
	assert.True(t, f.clock.now.Equal(*first.CompletedAt))

	f.clock.Advance(time.Hour)
	second, err := f.svc.Tasks.MarkComplete(ctx, u, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, second.StatusID)
	require.NotNil(t, second.CompletedAt)
	assert.True(t, first.CompletedAt.Equal(*second.CompletedAt))
}

func TestMarkCompleteRequiresAccess(t *testing.T) {
	f := newFixture(t)
	member := f.user(t, "member", models.RoleUser)
	assignee := f.user(t, "assignee", models.RoleUser)
	outsider := f.user(t, "outsider", models.RoleUser)
	p := f.project(t, "p", member)
	ctx := context.Background()

	task := f.task(t, f.admin, p.ID, assignee, "2024-01-05")

	_, err := f.svc.Tasks.MarkComplete(ctx, outsider, task.ID)
	requireKind(t, err, apperr.KindForbidden, "")

	reloaded, err := f.store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, reloaded.StatusID)

	_, err = f.svc.Tasks.MarkComplete(ctx, member, task.ID)
	require.NoError(t, err)

	_, err = f.svc.Tasks.MarkComplete(ctx, outsider, 999)
	requireKind(t, err, apperr.KindNotFound, "not_found")
}

func TestMarkCompleteMissingStatusIsMisconfiguration(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u", models.RoleUser)
	p := f.project(t, "p")
	task := f.task(t, u, p.ID, u, "2024-01-05")
	ctx := context.Background()

	_, err := f.store.DB().Exec(`PRAGMA foreign_keys = OFF; DELETE FROM task_statuses WHERE id = 2; PRAGMA foreign_keys = ON;`)
	require.NoError(t, err)

	_, err = f.svc.Tasks.MarkComplete(ctx, u, task.ID)
	requireKind(t, err, apperr.KindNotFound, apperr.CodeStatusNotConfigured)
}

func TestCloseAfterComplete(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u", models.RoleUser)
	p := f.project(t, "p")
	task := f.task(t, f.admin, p.ID, u, "2024-01-05")
	ctx := context.Background()

	completed, err := f.svc.Tasks.MarkComplete(ctx, u, task.ID)
	require.NoError(t, err)

	closed, err := f.svc.Tasks.Close(ctx, f.admin, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, closed.StatusID)
	require.NotNil(t, closed.CompletedAt)
	assert.True(t, completed.CompletedAt.Equal(*closed.CompletedAt))

	again, err := f.svc.Tasks.Close(ctx, f.admin, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, again.StatusID)

	_, err = f.svc.Tasks.MarkComplete(ctx, u, task.ID)
	requireKind(t, err, apperr.KindConflict, apperr.CodeInvalidTransition)
}

func TestCloseInProgressLeavesCompletedAtEmpty(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u", models.RoleUser)
	p := f.project(t, "p")
	task := f.task(t, f.admin, p.ID, u, "2024-01-05")

	closed, err := f.svc.Tasks.Close(context.Background(), f.admin, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, closed.StatusID)
	assert.Nil(t, closed.CompletedAt)
}

func TestAssign(t *testing.T) {
	f := newFixture(t)
	member := f.user(t, "member", models.RoleUser)
	teammate := f.user(t, "teammate", models.RoleUser)
	assignee := f.user(t, "assignee", models.RoleUser)
	outsider := f.user(t, "outsider", models.RoleUser)
	p := f.project(t, "p", member, teammate)
	ctx := context.Background()
	task := f.task(t, f.admin, p.ID, assignee, "2024-01-05")

	_, err := f.svc.Tasks.Assign(ctx, assignee, service.AssignTask{TaskID: task.ID, UserID: teammate.ID})
	requireKind(t, err, apperr.KindForbidden, "")

	_, err = f.svc.Tasks.Assign(ctx, member, service.AssignTask{TaskID: task.ID, UserID: outsider.ID})
	requireKind(t, err, apperr.KindValidation, apperr.CodeInvalidAssignee)

	updated, err := f.svc.Tasks.Assign(ctx, member, service.AssignTask{TaskID: task.ID, UserID: teammate.ID, Comment: "  please take this  "})
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedToID)
	assert.Equal(t, teammate.ID, *updated.AssignedToID)
	assert.Equal(t, models.StatusInProgress, updated.StatusID)

	comments, err := f.svc.Comments.List(ctx, member, task.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "please take this", comments[0].Body)
	assert.Equal(t, member.ID, comments[0].UserID)

	_, err = f.svc.Tasks.Assign(ctx, member, service.AssignTask{TaskID: task.ID, UserID: member.ID, Comment: "   "})
	require.NoError(t, err)
	comments, err = f.svc.Comments.List(ctx, member, task.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	activity, err := f.svc.Tasks.Activity(ctx, member, task.ID)
	require.NoError(t, err)
	require.Len(t, activity, 3)
	assert.Equal(t, models.ActionAssigned, activity[1].ActionType)
	assert.Equal(t, strconv.FormatInt(assignee.ID, 10), activity[1].OldValue)
}

func TestAssignByCreator(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "creator", models.RoleUser)
	member := f.user(t, "member", models.RoleUser)
	p := f.project(t, "p", member)
	task := f.task(t, creator, p.ID, creator, "2024-01-05")

	updated, err := f.svc.Tasks.Assign(context.Background(), creator, service.AssignTask{TaskID: task.ID, UserID: member.ID})
	require.NoError(t, err)
	assert.Equal(t, member.ID, *updated.AssignedToID)
}

func TestUpdateTask(t *testing.T) {
	f := newFixture(t)
	member := f.user(t, "member", models.RoleUser)
	other := f.user(t, "other", models.RoleUser)
	outsider := f.user(t, "outsider", models.RoleUser)
	p := f.project(t, "p", member, other)
	q := f.project(t, "q", other)
	ctx := context.Background()
	task := f.task(t, member, p.ID, member, "2024-01-05")

	title := "Renamed"
	due := "2024-01-08"
	updated, err := f.svc.Tasks.Update(ctx, member, service.UpdateTask{ID: task.ID, Title: &title, DueDate: &due})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "2024-01-08", updated.DueDate)
	assert.Equal(t, member.ID, updated.CreatedByID)

	_, err = f.svc.Tasks.Update(ctx, outsider, service.UpdateTask{ID: task.ID, Title: &title})
	requireKind(t, err, apperr.KindForbidden, "")

	stranger := outsider.ID
	_, err = f.svc.Tasks.Update(ctx, member, service.UpdateTask{ID: task.ID, AssignedToID: &stranger})
	requireKind(t, err, apperr.KindValidation, apperr.CodeInvalidAssignee)

	dest := q.ID
	_, err = f.svc.Tasks.Update(ctx, member, service.UpdateTask{ID: task.ID, ProjectID: &dest})
	requireKind(t, err, apperr.KindForbidden, "")

	blank := " "
	_, err = f.svc.Tasks.Update(ctx, member, service.UpdateTask{ID: task.ID, Title: &blank})
	requireKind(t, err, apperr.KindValidation, "")

	badDate := "tomorrow"
	_, err = f.svc.Tasks.Update(ctx, member, service.UpdateTask{ID: task.ID, DueDate: &badDate})
	requireKind(t, err, apperr.KindValidation, "")

	reloaded, err := f.store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", reloaded.Title)
	assert.Equal(t, p.ID, reloaded.ProjectID)
}

func TestUpdateTaskStatusIsMonotonic(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u", models.RoleUser)
	p := f.project(t, "p", u)
	task := f.task(t, u, p.ID, u, "2024-01-05")
	ctx := context.Background()

	completed := int64(models.StatusCompleted)
	updated, err := f.svc.Tasks.Update(ctx, u, service.UpdateTask{ID: task.ID, StatusID: &completed})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.StatusID)
	require.NotNil(t, updated.CompletedAt)

	back := int64(models.StatusInProgress)
	_, err = f.svc.Tasks.Update(ctx, u, service.UpdateTask{ID: task.ID, StatusID: &back})
	requireKind(t, err, apperr.KindConflict, apperr.CodeInvalidTransition)

	unknown := int64(9)
	_, err = f.svc.Tasks.Update(ctx, u, service.UpdateTask{ID: task.ID, StatusID: &unknown})
	requireKind(t, err, apperr.KindValidation, "")
}

func TestUpdateTaskWithoutChangesWritesNothing(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u", models.RoleUser)
	p := f.project(t, "p", u)
	task := f.task(t, u, p.ID, u, "2024-01-05")
	ctx := context.Background()

	same := task.Title
	_, err := f.svc.Tasks.Update(ctx, u, service.UpdateTask{ID: task.ID, Title: &same})
	require.NoError(t, err)

	activity, err := f.svc.Tasks.Activity(ctx, u, task.ID)
	require.NoError(t, err)
	assert.Len(t, activity, 1)
}

func TestTaskListScope(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u", models.RoleUser)
	other := f.user(t, "other", models.RoleUser)
	mine := f.project(t, "mine", u)
	foreign := f.project(t, "foreign", other)
	ctx := context.Background()

	a := f.task(t, f.admin, mine.ID, other, "2024-01-06")
	b := f.task(t, f.admin, foreign.ID, u, "2024-01-02")
	c := f.task(t, u, foreign.ID, other, "2024-01-04")
	f.task(t, other, foreign.ID, other, "2024-01-01")

	page, err := f.svc.Tasks.List(ctx, u, service.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID, c.ID, a.ID}, ids(page.Data, taskID))

	assigned, err := f.svc.Tasks.List(ctx, u, service.TaskFilter{AssignedOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID}, ids(assigned.Data, taskID))

	all, err := f.svc.Tasks.List(ctx, f.admin, service.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all.Data, 4)

	// An explicit project filter cannot widen the scope.
	filtered, err := f.svc.Tasks.List(ctx, u, service.TaskFilter{ProjectID: foreign.ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID, c.ID}, ids(filtered.Data, taskID))

	_, err = f.svc.Tasks.List(ctx, u, service.TaskFilter{StatusID: 42})
	requireKind(t, err, apperr.KindValidation, "")
}

func TestTaskListPagination(t *testing.T) {
	f := newFixture(t)
	p := f.project(t, "p")
	ctx := context.Background()
	for _, due := range []string{"2024-01-01", "2024-01-02", "2024-01-03"} {
		f.task(t, f.admin, p.ID, f.admin, due)
	}

	page, err := f.svc.Tasks.List(ctx, f.admin, service.TaskFilter{Page: models.PageRequest{Page: 2, PerPage: 2}})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 2, page.LastPage)
}

func TestProjectListScope(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u", models.RoleUser)
	a := f.project(t, "a", u)
	f.project(t, "b")
	c := f.project(t, "c", u)
	ctx := context.Background()

	mine, err := f.svc.Projects.List(ctx, u, service.ProjectFilter{})
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, c.ID}, ids(mine.Data, projectID))

	all, err := f.svc.Projects.List(ctx, f.admin, service.ProjectFilter{})
	require.NoError(t, err)
	assert.Len(t, all.Data, 3)
	assert.EqualValues(t, 3, all.Total)
}

func TestProjectGetAccess(t *testing.T) {
	f := newFixture(t)
	v := f.user(t, "v", models.RoleUser)
	p := f.project(t, "p")
	ctx := context.Background()

	_, err := f.svc.Projects.Get(ctx, v, p.ID)
	requireKind(t, err, apperr.KindForbidden, "")

	_, err = f.svc.Projects.AddMembers(ctx, service.ChangeMembers{ProjectID: p.ID, UserIDs: []int64{v.ID}})
	require.NoError(t, err)

	got, err := f.svc.Projects.Get(ctx, v, p.ID)
	require.NoError(t, err)
	assert.Contains(t, ids(got.Members, memberID), v.ID)

	_, err = f.svc.Projects.Get(ctx, f.admin, 999)
	requireKind(t, err, apperr.KindNotFound, "")
}

func TestMembership(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a", models.RoleUser)
	b := f.user(t, "b", models.RoleUser)
	c := f.user(t, "c", models.RoleUser)
	p := f.project(t, "p")
	ctx := context.Background()

	members, err := f.svc.Projects.AddMembers(ctx, service.ChangeMembers{ProjectID: p.ID, UserIDs: []int64{a.ID, b.ID, a.ID}})
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, b.ID}, ids(members, memberID))

	members, err = f.svc.Projects.AddMembers(ctx, service.ChangeMembers{ProjectID: p.ID, UserIDs: []int64{b.ID, c.ID}})
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, b.ID, c.ID}, ids(members, memberID))

	members, err = f.svc.Projects.RemoveMembers(ctx, service.ChangeMembers{ProjectID: p.ID, UserIDs: []int64{f.admin.ID}})
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, b.ID, c.ID}, ids(members, memberID))

	members, err = f.svc.Projects.RemoveMembers(ctx, service.ChangeMembers{ProjectID: p.ID, UserIDs: []int64{b.ID}})
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, c.ID}, ids(members, memberID))

	_, err = f.svc.Projects.AddMembers(ctx, service.ChangeMembers{ProjectID: p.ID, UserIDs: []int64{999}})
	requireKind(t, err, apperr.KindValidation, "")

	_, err = f.svc.Projects.AddMembers(ctx, service.ChangeMembers{ProjectID: p.ID})
	requireKind(t, err, apperr.KindValidation, "")

	_, err = f.svc.Projects.AddMembers(ctx, service.ChangeMembers{ProjectID: 999, UserIDs: []int64{a.ID}})
	requireKind(t, err, apperr.KindNotFound, "")
}

func TestProjectDates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Projects.Create(ctx, service.CreateProject{Name: "p", StartDate: "2024-01-10", EndDate: "2024-01-01"})
	requireKind(t, err, apperr.KindValidation, "")

	p, err := f.svc.Projects.Create(ctx, service.CreateProject{Name: "p", StartDate: "2024-01-01", EndDate: "2024-01-01"})
	require.NoError(t, err)

	end := "2023-12-31"
	_, err = f.svc.Projects.Update(ctx, service.UpdateProject{ID: p.ID, EndDate: &end})
	requireKind(t, err, apperr.KindValidation, "")

	name := "renamed"
	updated, err := f.svc.Projects.Update(ctx, service.UpdateProject{ID: p.ID, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, "2024-01-01", updated.StartDate)
}

func TestDeleteProjectCascadesAndUserRestrict(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u", models.RoleUser)
	p := f.project(t, "p", u)
	task := f.task(t, u, p.ID, u, "2024-01-05")
	ctx := context.Background()

	err := f.svc.Users.Delete(ctx, u.ID)
	requireKind(t, err, apperr.KindConflict, apperr.CodeInUse)

	require.NoError(t, f.svc.Projects.Delete(ctx, p.ID))
	_, err = f.store.GetTask(ctx, task.ID)
	requireKind(t, err, apperr.KindNotFound, "")

	memberIDs, err := f.store.ProjectMemberIDs(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, memberIDs)

	require.NoError(t, f.svc.Users.Delete(ctx, u.ID))
}

func TestComments(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u", models.RoleUser)
	outsider := f.user(t, "outsider", models.RoleUser)
	p := f.project(t, "p")
	task := f.task(t, f.admin, p.ID, u, "2024-01-05")
	ctx := context.Background()

	_, err := f.svc.Comments.Create(ctx, u, service.CreateComment{TaskID: task.ID, Body: "  "})
	requireKind(t, err, apperr.KindValidation, "")

	_, err = f.svc.Comments.Create(ctx, outsider, service.CreateComment{TaskID: task.ID, Body: "hi"})
	requireKind(t, err, apperr.KindForbidden, "")

	c, err := f.svc.Comments.Create(ctx, u, service.CreateComment{TaskID: task.ID, Body: "done soon"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, c.UserID)
	require.NotNil(t, c.User)
	assert.Equal(t, "u", c.User.Name)

	_, err = f.svc.Comments.List(ctx, outsider, task.ID)
	requireKind(t, err, apperr.KindForbidden, "")

	detail, err := f.svc.Tasks.Get(ctx, u, task.ID)
	require.NoError(t, err)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "done soon", detail.Comments[0].Body)
}

func TestUsers(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u", models.RoleUser)
	mate := f.user(t, "mate", models.RoleUser)
	stranger := f.user(t, "stranger", models.RoleUser)
	f.project(t, "p", u, mate)
	ctx := context.Background()

	page, err := f.svc.Users.List(ctx, u, service.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)

	_, err = f.svc.Users.Get(ctx, u, mate.ID)
	require.NoError(t, err)
	_, err = f.svc.Users.Get(ctx, u, stranger.ID)
	requireKind(t, err, apperr.KindNotFound, "")
	_, err = f.svc.Users.Get(ctx, f.admin, stranger.ID)
	require.NoError(t, err)

	me, err := f.svc.Users.Me(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, "u@example.com", me.Email)

	_, err = f.svc.Users.Create(ctx, service.CreateUser{Name: "dup", Email: "U@example.com", Role: "user"})
	requireKind(t, err, apperr.KindConflict, apperr.CodeDuplicate)

	_, err = f.svc.Users.Create(ctx, service.CreateUser{Name: "x", Email: "x@example.com", Role: "owner"})
	requireKind(t, err, apperr.KindValidation, "")
}

func TestAnalytics(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u", models.RoleUser)
	p := f.project(t, "p", u)
	ctx := context.Background()

	f.task(t, u, p.ID, u, "2024-01-01")
	done1 := f.task(t, u, p.ID, u, "2024-01-02")
	done2 := f.task(t, u, p.ID, u, "2024-01-03")
	closed := f.task(t, u, p.ID, u, "2024-01-04")

	for _, id := range []int64{done1.ID, done2.ID} {
		_, err := f.svc.Tasks.MarkComplete(ctx, u, id)
		require.NoError(t, err)
	}
	_, err := f.svc.Tasks.Close(ctx, f.admin, closed.ID)
	require.NoError(t, err)

	stats, err := f.svc.Analytics.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCounts{All: 4, Completed: 2, Closed: 1, InProgress: 1}, stats.Tasks)
	assert.EqualValues(t, 1, stats.Projects)
	assert.EqualValues(t, 2, stats.Users)
}
