package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rasheed240/ApexBuild-BE-sub002/models"
)

type CompleteResult struct {
	TaskID  uint   `json:"task_id"`
	Message string `json:"message"`
}

// MarkTaskComplete validates and performs task completion. Requirements, in
// order: the requester holds completion authority over the task; the task is
// not already completed; an approved update exists or stored progress is
// already 100; every direct subtask is completed. The commit is conditional
// on the status that was read, then the interested parties are notified once
// each.
func (s *Service) MarkTaskComplete(ctx context.Context, actor Actor, taskID uint) (*CompleteResult, error) {
	tc, err := s.store.GetTaskWithContext(ctx, taskID)
	if err != nil {
		return nil, internal("failed to load task", err)
	}
	if tc == nil {
		return nil, notFound("task not found")
	}

	caps := ResolveCapabilities(actor, &tc.Task, tc.Contractor, &tc.Department, &tc.Project)
	if !caps.CanComplete() {
		return nil, forbidden("you are not authorized to complete this task")
	}

	if tc.Task.Status == models.TaskCompleted {
		return nil, invalid("task is already completed")
	}

	if tc.Task.Progress < 100 {
		updates, err := s.store.GetUpdatesForTask(ctx, taskID)
		if err != nil {
			return nil, internal("failed to load task updates", err)
		}
		if !hasApprovedUpdate(updates) {
			return nil, invalid("task cannot be completed: no approved update and progress is below 100%%")
		}
	}

	subtasks, err := s.store.GetSubtasks(ctx, taskID)
	if err != nil {
		return nil, internal("failed to load subtasks", err)
	}
	for _, st := range subtasks {
		if st.Status != models.TaskCompleted {
			return nil, invalid("task cannot be completed: subtask %s is not completed", st.Code)
		}
	}

	prev := tc.Task.Status
	now := s.clock.Now()
	task := tc.Task
	task.CompletedAt = &now
	if err := s.store.CompleteTask(ctx, &task, prev); err != nil {
		if errors.Is(err, ErrStatusChanged) {
			return nil, conflict("task status changed while completing it")
		}
		return nil, internal("failed to complete task", err)
	}

	s.dispatchCompletionNotifications(tc, actor)
	return &CompleteResult{TaskID: taskID, Message: "Task marked as completed"}, nil
}

func hasApprovedUpdate(updates []models.TaskUpdate) bool {
	for _, u := range updates {
		if u.Status == models.UpdateAdminApproved || u.Status == models.UpdateSupervisorApproved {
			return true
		}
	}
	return false
}

// dispatchCompletionNotifications notifies project admin, owner, the
// department supervisor and the assignee (unless they requested the
// completion themselves), each at most once.
func (s *Service) dispatchCompletionNotifications(tc *TaskContext, actor Actor) {
	ctx := context.Background()

	var assignee *uint
	if tc.Task.AssigneeID != nil && *tc.Task.AssigneeID != actor.UserID {
		assignee = tc.Task.AssigneeID
	}
	recipients := dedupUserIDs(tc.Project.AdminID, tc.Project.OwnerID, tc.Department.SupervisorID, assignee)

	for _, id := range recipients {
		s.notifier.Notify(ctx, Notification{
			UserID:      id,
			Title:       "Task completed",
			Body:        fmt.Sprintf("Task %s (%s) has been marked as completed.", tc.Task.Code, tc.Task.Title),
			Category:    models.NotifCategoryCompletion,
			RelatedID:   tc.Task.ID,
			RelatedType: "task",
			Channel:     models.NotifChannelInApp,
			ActionLink:  fmt.Sprintf("/tasks/%d", tc.Task.ID),
		})
	}
}
