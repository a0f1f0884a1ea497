package handler

import (
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	projectmodels "taskboard/internal/project/models"
	projectmemory "taskboard/internal/project/store/memory"
	taskmodels "taskboard/internal/task/models"
	taskmemory "taskboard/internal/task/store/memory"
	usermodels "taskboard/internal/user/models"
	usermemory "taskboard/internal/user/store/memory"
	"taskboard/pkg/requestcontext"
	"taskboard/pkg/testutil"
)

func TestStats(t *testing.T) {
	projects := projectmemory.NewInMemoryStore()
	tasks := taskmemory.NewInMemoryStore()
	users := usermemory.NewInMemoryStore()

	tenantID := uuid.New()
	otherTenant := uuid.New()
	projectID := uuid.New()

	projects.Put(projectmodels.Project{ID: projectID, TenantID: tenantID, Name: "Launch", Status: projectmodels.StatusActive, CreatedBy: uuid.New()})
	projects.Put(projectmodels.Project{ID: uuid.New(), TenantID: otherTenant, Name: "Foreign", Status: projectmodels.StatusActive, CreatedBy: uuid.New()})

	tasks.Put(taskmodels.Task{ID: uuid.New(), ProjectID: projectID, TenantID: tenantID, Title: "One", Status: taskmodels.StatusCompleted, CreatedAt: time.Now()})
	tasks.Put(taskmodels.Task{ID: uuid.New(), ProjectID: projectID, TenantID: tenantID, Title: "Two", Status: taskmodels.StatusTodo, CreatedAt: time.Now()})

	users.Put(usermodels.User{ID: uuid.New(), TenantID: &tenantID, Email: "a@acme.io", FullName: "A", Role: requestcontext.RoleUser})

	r := chi.NewRouter()
	New(projects, tasks, users, slog.Default()).Register(r)

	req := testutil.NewJSONRequest(t, http.MethodGet, "/dashboard/stats", nil)
	req = testutil.AsTenantUser(req, uuid.New(), tenantID, requestcontext.RoleUser)

	rr := testutil.DoRequest(r, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	stats := testutil.UnmarshalResponse[Stats](t, rr)
	assert.Equal(t, 1, stats.Projects, "foreign tenant projects excluded")
	assert.Equal(t, 2, stats.Tasks)
	assert.Equal(t, 1, stats.CompletedTasks)
	assert.Equal(t, 1, stats.Users)
}

func TestStats_MissingScopeForbidden(t *testing.T) {
	r := chi.NewRouter()
	New(projectmemory.NewInMemoryStore(), taskmemory.NewInMemoryStore(), usermemory.NewInMemoryStore(), slog.Default()).Register(r)

	req := testutil.NewJSONRequest(t, http.MethodGet, "/dashboard/stats", nil)
	rr := testutil.DoRequest(r, req)
	testutil.AssertStatus(t, rr, http.StatusForbidden)
}
