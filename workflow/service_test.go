package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rasheed240/ApexBuild-BE-sub002/models"
)

// fakeStore keeps aggregates in maps and honors the conditional-write
// contracts of the real store.
type fakeStore struct {
	updates     map[uint]*models.TaskUpdate
	tasks       map[uint]*models.Task
	depts       map[uint]*models.Department
	projects    map[uint]*models.Project
	contractors map[uint]*models.Contractor

	deptIDs       []uint
	projIDs       []uint
	contractorIDs []uint
	pending       []PendingUpdate

	forceStatusChanged bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		updates:     make(map[uint]*models.TaskUpdate),
		tasks:       make(map[uint]*models.Task),
		depts:       make(map[uint]*models.Department),
		projects:    make(map[uint]*models.Project),
		contractors: make(map[uint]*models.Contractor),
	}
}

func (f *fakeStore) GetUpdateWithContext(_ context.Context, id uint) (*UpdateContext, error) {
	upd, ok := f.updates[id]
	if !ok || upd.Deleted {
		return nil, nil
	}
	task := f.tasks[upd.TaskID]
	if task == nil || task.Deleted {
		return nil, nil
	}
	uc := &UpdateContext{Update: *upd, Task: *task}
	uc.Department = *f.depts[task.DepartmentID]
	uc.Project = *f.projects[uc.Department.ProjectID]
	if task.ContractorID != nil {
		if c, ok := f.contractors[*task.ContractorID]; ok {
			uc.Contractor = c
		}
	}
	return uc, nil
}

func (f *fakeStore) GetTaskWithContext(_ context.Context, id uint) (*TaskContext, error) {
	task, ok := f.tasks[id]
	if !ok || task.Deleted {
		return nil, nil
	}
	tc := &TaskContext{Task: *task}
	tc.Department = *f.depts[task.DepartmentID]
	tc.Project = *f.projects[tc.Department.ProjectID]
	if task.ContractorID != nil {
		if c, ok := f.contractors[*task.ContractorID]; ok {
			tc.Contractor = c
		}
	}
	return tc, nil
}

func (f *fakeStore) GetUpdatesForTask(_ context.Context, taskID uint) ([]models.TaskUpdate, error) {
	var out []models.TaskUpdate
	for _, u := range f.updates {
		if u.TaskID == taskID && !u.Deleted {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeStore) GetSubtasks(_ context.Context, parentID uint) ([]models.Task, error) {
	var out []models.Task
	for _, t := range f.tasks {
		if t.ParentTaskID != nil && *t.ParentTaskID == parentID && !t.Deleted {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeStore) GetPendingForReview(_ context.Context, scope PendingScope, page, pageSize int) ([]PendingUpdate, int64, error) {
	if scope.empty() {
		return []PendingUpdate{}, 0, nil
	}
	return f.pending, int64(len(f.pending)), nil
}

func (f *fakeStore) SaveUpdateReview(_ context.Context, upd *models.TaskUpdate, expected models.UpdateStatus) error {
	stored, ok := f.updates[upd.ID]
	if !ok {
		return ErrStatusChanged
	}
	if f.forceStatusChanged || stored.Status != expected {
		return ErrStatusChanged
	}
	cp := *upd
	f.updates[upd.ID] = &cp
	return nil
}

func (f *fakeStore) SaveTaskProgress(_ context.Context, task *models.Task) error {
	// Mirrors the SQL derivation: monotonic progress, status follows the
	// progress the row ends up with.
	stored := f.tasks[task.ID]
	if stored == nil || stored.Status == models.TaskCompleted {
		return nil
	}
	if task.Progress > stored.Progress {
		stored.Progress = task.Progress
	}
	if stored.Progress >= 100 {
		stored.Status = models.TaskApproved
	} else if stored.Status == models.TaskPending {
		stored.Status = models.TaskInProgress
	}
	return nil
}

func (f *fakeStore) CompleteTask(_ context.Context, task *models.Task, expected models.TaskStatus) error {
	stored := f.tasks[task.ID]
	if stored == nil || stored.Status != expected {
		return ErrStatusChanged
	}
	stored.Status = models.TaskCompleted
	stored.Progress = 100
	stored.CompletedAt = task.CompletedAt
	return nil
}

func (f *fakeStore) DepartmentIDsSupervisedBy(_ context.Context, _, _ uint) ([]uint, error) {
	return f.deptIDs, nil
}

func (f *fakeStore) ProjectIDsAdministeredBy(_ context.Context, _, _ uint) ([]uint, error) {
	return f.projIDs, nil
}

func (f *fakeStore) ContractorIDsAdministeredBy(_ context.Context, _, _ uint) ([]uint, error) {
	return f.contractorIDs, nil
}

type fakeNotifier struct {
	sent []Notification
}

func (n *fakeNotifier) Notify(_ context.Context, notif Notification) {
	n.sent = append(n.sent, notif)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// fixture: org 1, project 100 (admin 13, owner 14), department 50
// (supervisor 12 unless removed), task 500 assigned to worker 10 with an
// update 900 at the given status.
func newFixture(supervisorID *uint, status models.UpdateStatus, progress int) (*fakeStore, *fakeNotifier, *Service) {
	store := newFakeStore()
	store.projects[100] = &models.Project{ID: 100, OrganizationID: 1, Name: "Harbor Tower", AdminID: uintPtr(13), OwnerID: uintPtr(14)}
	store.depts[50] = &models.Department{ID: 50, ProjectID: 100, Name: "Structural", SupervisorID: supervisorID}
	store.tasks[500] = &models.Task{
		ID: 500, DepartmentID: 50, Title: "Pour foundation", Code: "HT-001",
		Status: models.TaskInProgress, Progress: 40, AssigneeID: uintPtr(10),
	}
	store.updates[900] = &models.TaskUpdate{
		ID: 900, TaskID: 500, SubmitterID: 10, Description: "poured section B",
		Progress: progress, Status: status,
	}
	notifier := &fakeNotifier{}
	log := logrus.New()
	svc := NewService(store, notifier, fixedClock{testTime}, log)
	return store, notifier, svc
}

func TestAdminApprovesDirectlyWhenNoSupervisor(t *testing.T) {
	// Scenario: submitted update, department without supervisor, admin
	// approves in one step and progress lands on the task.
	store, notifier, svc := newFixture(nil, models.UpdateSubmitted, 75)

	res, err := svc.ReviewByAdmin(context.Background(), Actor{UserID: 13, Role: models.RoleProjectAdmin}, 900, true, "")
	require.NoError(t, err)
	assert.Equal(t, models.UpdateAdminApproved, res.Status)

	upd := store.updates[900]
	assert.Equal(t, models.UpdateAdminApproved, upd.Status)
	require.NotNil(t, upd.AdminReviewerID)
	assert.Equal(t, uint(13), *upd.AdminReviewerID)
	require.NotNil(t, upd.AdminApproved)
	assert.True(t, *upd.AdminApproved)
	require.NotNil(t, upd.AdminReviewedAt)
	assert.Equal(t, testTime, *upd.AdminReviewedAt)

	assert.Equal(t, 75, store.tasks[500].Progress, "reported progress raised onto the task")

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, uint(10), notifier.sent[0].UserID, "submitter is notified")
}

func TestSupervisorRejectWithFeedback(t *testing.T) {
	store, notifier, svc := newFixture(uintPtr(12), models.UpdateSubmitted, 60)

	res, err := svc.ReviewBySupervisor(context.Background(), Actor{UserID: 12, Role: models.RoleSupervisor}, 900, false, "needs more detail")
	require.NoError(t, err)
	assert.Equal(t, models.UpdateSupervisorRejected, res.Status)

	upd := store.updates[900]
	require.NotNil(t, upd.SupervisorFeedback)
	assert.Equal(t, "needs more detail", *upd.SupervisorFeedback)

	assert.Equal(t, 40, store.tasks[500].Progress, "no task mutation on rejection")
	assert.Equal(t, models.TaskInProgress, store.tasks[500].Status)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, uint(10), notifier.sent[0].UserID)
	assert.Contains(t, notifier.sent[0].Body, "needs more detail")
}

func TestSupervisorApproveForwardsToAdmin(t *testing.T) {
	store, notifier, svc := newFixture(uintPtr(12), models.UpdateSubmitted, 60)

	res, err := svc.ReviewBySupervisor(context.Background(), Actor{UserID: 12, Role: models.RoleSupervisor}, 900, true, "looks right")
	require.NoError(t, err)
	assert.Equal(t, models.UpdateUnderAdminReview, res.Status)

	assert.Equal(t, 40, store.tasks[500].Progress, "no projection before terminal approval")

	// Project admin and owner each get exactly one notification.
	require.Len(t, notifier.sent, 2)
	assert.ElementsMatch(t, []uint{13, 14}, []uint{notifier.sent[0].UserID, notifier.sent[1].UserID})
}

func TestSupervisorOfOtherDepartmentForbidden(t *testing.T) {
	_, _, svc := newFixture(uintPtr(12), models.UpdateSubmitted, 60)

	_, err := svc.ReviewBySupervisor(context.Background(), Actor{UserID: 77, Role: models.RoleSupervisor}, 900, true, "")
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestReviewTwiceOnTerminalUpdateConflicts(t *testing.T) {
	_, _, svc := newFixture(nil, models.UpdateSubmitted, 50)
	admin := Actor{UserID: 13, Role: models.RoleProjectAdmin}

	_, err := svc.ReviewByAdmin(context.Background(), admin, 900, true, "")
	require.NoError(t, err)

	_, err = svc.ReviewByAdmin(context.Background(), admin, 900, true, "")
	require.Error(t, err, "terminal update must not silently accept a second decision")
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestConcurrentReviewLoserGetsConflict(t *testing.T) {
	store, _, svc := newFixture(nil, models.UpdateSubmitted, 50)
	store.forceStatusChanged = true

	_, err := svc.ReviewByAdmin(context.Background(), Actor{UserID: 13, Role: models.RoleProjectAdmin}, 900, true, "")
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestReviewMissingUpdateNotFound(t *testing.T) {
	_, _, svc := newFixture(uintPtr(12), models.UpdateSubmitted, 50)

	_, err := svc.ReviewBySupervisor(context.Background(), Actor{UserID: 12, Role: models.RoleSupervisor}, 999, true, "")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestProgressMonotonicUnderRepeatedApprovals(t *testing.T) {
	store, _, svc := newFixture(nil, models.UpdateSubmitted, 80)
	store.updates[901] = &models.TaskUpdate{ID: 901, TaskID: 500, SubmitterID: 10, Progress: 55, Status: models.UpdateSubmitted}
	admin := Actor{UserID: 13, Role: models.RoleProjectAdmin}

	_, err := svc.ReviewByAdmin(context.Background(), admin, 900, true, "")
	require.NoError(t, err)
	assert.Equal(t, 80, store.tasks[500].Progress)

	// Approving an older, lower-progress update must not move progress back.
	_, err = svc.ReviewByAdmin(context.Background(), admin, 901, true, "")
	require.NoError(t, err)
	assert.Equal(t, 80, store.tasks[500].Progress)
}

func TestHundredPercentApprovalFlipsTaskToApproved(t *testing.T) {
	store, _, svc := newFixture(nil, models.UpdateSubmitted, 100)

	_, err := svc.ReviewByAdmin(context.Background(), Actor{UserID: 13, Role: models.RoleProjectAdmin}, 900, true, "")
	require.NoError(t, err)

	task := store.tasks[500]
	assert.Equal(t, 100, task.Progress)
	assert.Equal(t, models.TaskApproved, task.Status, "ready for completion, not completed")
}

func TestContractorAdminTier(t *testing.T) {
	store, notifier, svc := newFixture(uintPtr(12), models.UpdateSubmitted, 60)
	store.contractors[30] = &models.Contractor{ID: 30, OrganizationID: 1, CompanyName: "Steelworks Ltd", AdminID: uintPtr(11)}
	store.tasks[500].ContractorID = uintPtr(30)

	res, err := svc.ReviewByContractorAdmin(context.Background(), Actor{UserID: 11, Role: models.RoleContractorAdmin}, 900, true, "")
	require.NoError(t, err)
	assert.Equal(t, models.UpdateUnderSupervisorReview, res.Status)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, uint(12), notifier.sent[0].UserID, "supervisor is notified")

	// The contractor admin holds no authority over the later tiers.
	_, err = svc.ReviewBySupervisor(context.Background(), Actor{UserID: 11, Role: models.RoleContractorAdmin}, 900, true, "")
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestListPendingReviewsScoping(t *testing.T) {
	store, _, svc := newFixture(uintPtr(12), models.UpdateUnderSupervisorReview, 60)
	store.pending = []PendingUpdate{{TaskUpdate: *store.updates[900], TaskCode: "HT-001"}}

	// Actor with no supervised departments, projects or contractors sees
	// an empty page, not an error.
	page, err := svc.ListPendingReviews(context.Background(), Actor{UserID: 77, Role: models.RoleWorker}, 1, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.EqualValues(t, 0, page.TotalCount)

	// A supervisor with departments gets rows.
	store.deptIDs = []uint{50}
	page, err = svc.ListPendingReviews(context.Background(), Actor{UserID: 12, Role: models.RoleSupervisor}, 1, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "HT-001", page.Items[0].TaskCode)

	// Org admin sees everything without relationship lookups.
	store.deptIDs = nil
	page, err = svc.ListPendingReviews(context.Background(), Actor{UserID: 1, Role: models.RoleOrgAdmin}, 1, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
}

func TestListUpdatesForTask(t *testing.T) {
	store, _, svc := newFixture(uintPtr(12), models.UpdateSubmitted, 60)
	store.updates[901] = &models.TaskUpdate{ID: 901, TaskID: 500, SubmitterID: 10, Progress: 70, Status: models.UpdateSubmitted}

	assignee := Actor{UserID: 10, Role: models.RoleWorker}
	updates, err := svc.ListUpdatesForTask(context.Background(), assignee, 1, 500)
	require.NoError(t, err)
	assert.Len(t, updates, 2)

	_, err = svc.ListUpdatesForTask(context.Background(), assignee, 1, 404)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestListUpdatesForTaskScopedToChain(t *testing.T) {
	// The review trail carries reviewer feedback; a user outside the task's
	// ownership chain must not be able to read it by iterating task ids.
	store, _, svc := newFixture(uintPtr(12), models.UpdateSupervisorRejected, 60)
	fb := "section B rework needed"
	store.updates[900].SupervisorFeedback = &fb

	outsider := Actor{UserID: 77, Role: models.RoleWorker}
	updates, err := svc.ListUpdatesForTask(context.Background(), outsider, 2, 500)
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
	assert.Nil(t, updates)

	// Same-org worker with no relationship to the task is refused too.
	_, err = svc.ListUpdatesForTask(context.Background(), outsider, 1, 500)
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))

	// Chain holders and the owning org's admin still see the trail.
	for _, actor := range []Actor{
		{UserID: 10, Role: models.RoleWorker},       // assignee
		{UserID: 12, Role: models.RoleSupervisor},   // department supervisor
		{UserID: 13, Role: models.RoleProjectAdmin}, // project admin
		{UserID: 99, Role: models.RoleOrgAdmin},     // org admin, same org
	} {
		updates, err := svc.ListUpdatesForTask(context.Background(), actor, 1, 500)
		require.NoError(t, err)
		assert.Len(t, updates, 1)
	}

	// An org admin of another organization gets nothing.
	_, err = svc.ListUpdatesForTask(context.Background(), Actor{UserID: 99, Role: models.RoleOrgAdmin}, 2, 500)
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestStaleApprovalCannotRegressTaskStatus(t *testing.T) {
	// Two updates approved out of order: the 100% approval lands first, then
	// an approval of a lower-progress update whose in-memory read predates
	// it. Neither progress nor status may move backwards.
	store, _, svc := newFixture(nil, models.UpdateSubmitted, 100)
	store.updates[901] = &models.TaskUpdate{ID: 901, TaskID: 500, SubmitterID: 10, Progress: 50, Status: models.UpdateSubmitted}
	admin := Actor{UserID: 13, Role: models.RoleProjectAdmin}

	_, err := svc.ReviewByAdmin(context.Background(), admin, 900, true, "")
	require.NoError(t, err)
	assert.Equal(t, 100, store.tasks[500].Progress)
	assert.Equal(t, models.TaskApproved, store.tasks[500].Status)

	_, err = svc.ReviewByAdmin(context.Background(), admin, 901, true, "")
	require.NoError(t, err)
	assert.Equal(t, 100, store.tasks[500].Progress)
	assert.Equal(t, models.TaskApproved, store.tasks[500].Status, "stale lower approval must not pull the task back to InProgress")
}

func TestRejectWithoutFeedback(t *testing.T) {
	// Feedback is optional on both decisions; a bare rejection still lands
	// and notifies the submitter.
	store, notifier, svc := newFixture(uintPtr(12), models.UpdateSubmitted, 60)

	res, err := svc.ReviewBySupervisor(context.Background(), Actor{UserID: 12, Role: models.RoleSupervisor}, 900, false, "")
	require.NoError(t, err)
	assert.Equal(t, models.UpdateSupervisorRejected, res.Status)

	upd := store.updates[900]
	assert.Nil(t, upd.SupervisorFeedback)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, uint(10), notifier.sent[0].UserID)
	assert.NotContains(t, notifier.sent[0].Body, "Feedback:")
}
