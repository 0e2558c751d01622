package users

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rasheed240/ApexBuild-BE-sub002/models"
	"github.com/Rasheed240/ApexBuild-BE-sub002/utils"
	"github.com/Rasheed240/ApexBuild-BE-sub002/workflow"
)

// reviewStore is the minimal in-memory store the handler tests need; only
// the review path is exercised.
type reviewStore struct {
	update models.TaskUpdate
	task   models.Task
	dept   models.Department
	proj   models.Project
}

func (s *reviewStore) GetUpdateWithContext(_ context.Context, id uint) (*workflow.UpdateContext, error) {
	if id != s.update.ID {
		return nil, nil
	}
	return &workflow.UpdateContext{Update: s.update, Task: s.task, Department: s.dept, Project: s.proj}, nil
}

func (s *reviewStore) GetTaskWithContext(_ context.Context, id uint) (*workflow.TaskContext, error) {
	if id != s.task.ID {
		return nil, nil
	}
	return &workflow.TaskContext{Task: s.task, Department: s.dept, Project: s.proj}, nil
}

func (s *reviewStore) GetUpdatesForTask(_ context.Context, _ uint) ([]models.TaskUpdate, error) {
	return []models.TaskUpdate{s.update}, nil
}

func (s *reviewStore) GetSubtasks(_ context.Context, _ uint) ([]models.Task, error) {
	return nil, nil
}

func (s *reviewStore) GetPendingForReview(_ context.Context, _ workflow.PendingScope, _, _ int) ([]workflow.PendingUpdate, int64, error) {
	return []workflow.PendingUpdate{}, 0, nil
}

func (s *reviewStore) SaveUpdateReview(_ context.Context, upd *models.TaskUpdate, expected models.UpdateStatus) error {
	if s.update.Status != expected {
		return workflow.ErrStatusChanged
	}
	s.update = *upd
	return nil
}

func (s *reviewStore) SaveTaskProgress(_ context.Context, _ *models.Task) error { return nil }

func (s *reviewStore) CompleteTask(_ context.Context, _ *models.Task, _ models.TaskStatus) error {
	return nil
}

func (s *reviewStore) DepartmentIDsSupervisedBy(_ context.Context, _, _ uint) ([]uint, error) {
	return nil, nil
}

func (s *reviewStore) ProjectIDsAdministeredBy(_ context.Context, _, _ uint) ([]uint, error) {
	return nil, nil
}

func (s *reviewStore) ContractorIDsAdministeredBy(_ context.Context, _, _ uint) ([]uint, error) {
	return nil, nil
}

type noopNotifier struct{}

func (noopNotifier) Notify(_ context.Context, _ workflow.Notification) {}

func authedRequest(method, target string, body []byte, userID uint, role string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := context.WithValue(req.Context(), utils.UserIDKey, userID)
	ctx = context.WithValue(ctx, utils.UserRoleKey, role)
	return req.WithContext(ctx)
}

func TestReviewUpdateRejectWithoutFeedback(t *testing.T) {
	// Feedback is optional on both decisions; a bare rejection is a 200.
	store := &reviewStore{
		update: models.TaskUpdate{ID: 900, TaskID: 500, SubmitterID: 10, Progress: 60, Status: models.UpdateSubmitted},
		task:   models.Task{ID: 500, DepartmentID: 50, Code: "HT-001"},
		dept:   models.Department{ID: 50, ProjectID: 100},
		proj:   models.Project{ID: 100, OrganizationID: 1, AdminID: uintPtr(13)},
	}
	ctl := NewReviewController(workflow.NewService(store, noopNotifier{}, workflow.SystemClock{}, logrus.New()))

	body, err := json.Marshal(map[string]interface{}{"approve": false})
	require.NoError(t, err)
	req := authedRequest(http.MethodPost, "/api/tasks/updates/900/review/admin", body, 13, models.RoleProjectAdmin)
	req = mux.SetURLVars(req, map[string]string{"id": "900", "tier": "admin"})

	rec := httptest.NewRecorder()
	ctl.ReviewUpdate(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.UpdateAdminRejected, store.update.Status)
	assert.Nil(t, store.update.AdminFeedback)
}

func TestPendingOrgIDSelection(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/reviews/pending?organization_id=7", nil)
	assert.EqualValues(t, 7, pendingOrgID(req, models.RoleSuperAdmin, 1))
	assert.EqualValues(t, 1, pendingOrgID(req, models.RoleOrgAdmin, 1), "non-override callers stay pinned to their own organization")
	assert.EqualValues(t, 1, pendingOrgID(req, models.RoleWorker, 1))

	bare := httptest.NewRequest(http.MethodGet, "/api/reviews/pending", nil)
	assert.EqualValues(t, 1, pendingOrgID(bare, models.RoleSuperAdmin, 1))
}

func uintPtr(v uint) *uint { return &v }
