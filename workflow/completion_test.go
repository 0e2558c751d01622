package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rasheed240/ApexBuild-BE-sub002/models"
)

func TestMarkTaskCompleteHappyPath(t *testing.T) {
	// Scenario: 100% update approved by admin, then the assignee completes.
	store, notifier, svc := newFixture(uintPtr(12), models.UpdateSubmitted, 100)
	admin := Actor{UserID: 13, Role: models.RoleProjectAdmin}
	assignee := Actor{UserID: 10, Role: models.RoleWorker}

	_, err := svc.ReviewBySupervisor(context.Background(), Actor{UserID: 12, Role: models.RoleSupervisor}, 900, true, "")
	require.NoError(t, err)
	_, err = svc.ReviewByAdmin(context.Background(), admin, 900, true, "")
	require.NoError(t, err)
	require.Equal(t, models.TaskApproved, store.tasks[500].Status)

	notifier.sent = nil
	res, err := svc.MarkTaskComplete(context.Background(), assignee, 500)
	require.NoError(t, err)
	assert.Equal(t, uint(500), res.TaskID)

	task := store.tasks[500]
	assert.Equal(t, models.TaskCompleted, task.Status)
	assert.Equal(t, 100, task.Progress)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, testTime, *task.CompletedAt)

	// Admin, owner and supervisor each once; the assignee requested the
	// completion and is not notified.
	var recipients []uint
	for _, n := range notifier.sent {
		recipients = append(recipients, n.UserID)
	}
	assert.ElementsMatch(t, []uint{13, 14, 12}, recipients)
}

func TestMarkTaskCompleteWithoutApprovedUpdate(t *testing.T) {
	_, _, svc := newFixture(uintPtr(12), models.UpdateSubmitted, 60)

	_, err := svc.MarkTaskComplete(context.Background(), Actor{UserID: 10, Role: models.RoleWorker}, 500)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestMarkTaskCompleteAtFullProgressWithoutUpdate(t *testing.T) {
	// Stored progress already 100: completion allowed even with no approved
	// update on record.
	store, _, svc := newFixture(uintPtr(12), models.UpdateSubmitted, 60)
	store.tasks[500].Progress = 100

	_, err := svc.MarkTaskComplete(context.Background(), Actor{UserID: 10, Role: models.RoleWorker}, 500)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, store.tasks[500].Status)
}

func TestMarkTaskCompleteBlockedByOpenSubtask(t *testing.T) {
	store, _, svc := newFixture(uintPtr(12), models.UpdateSubmitted, 60)
	store.tasks[500].Progress = 100
	store.tasks[501] = &models.Task{
		ID: 501, DepartmentID: 50, ParentTaskID: uintPtr(500),
		Title: "Cure concrete", Code: "HT-001A", Status: models.TaskInProgress,
	}

	_, err := svc.MarkTaskComplete(context.Background(), Actor{UserID: 10, Role: models.RoleWorker}, 500)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Contains(t, UserMessage(err), "HT-001A")

	// Completing the subtask unblocks the parent.
	store.tasks[501].Status = models.TaskCompleted
	_, err = svc.MarkTaskComplete(context.Background(), Actor{UserID: 10, Role: models.RoleWorker}, 500)
	require.NoError(t, err)
}

func TestMarkTaskCompleteAlreadyCompleted(t *testing.T) {
	store, _, svc := newFixture(uintPtr(12), models.UpdateSubmitted, 60)
	store.tasks[500].Status = models.TaskCompleted

	_, err := svc.MarkTaskComplete(context.Background(), Actor{UserID: 10, Role: models.RoleWorker}, 500)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestMarkTaskCompleteForbiddenForStranger(t *testing.T) {
	store, _, svc := newFixture(uintPtr(12), models.UpdateSubmitted, 60)
	store.tasks[500].Progress = 100

	_, err := svc.MarkTaskComplete(context.Background(), Actor{UserID: 77, Role: models.RoleWorker}, 500)
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestMarkTaskCompleteNotFound(t *testing.T) {
	_, _, svc := newFixture(uintPtr(12), models.UpdateSubmitted, 60)

	_, err := svc.MarkTaskComplete(context.Background(), Actor{UserID: 10, Role: models.RoleWorker}, 404)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}
