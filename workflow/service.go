package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Rasheed240/ApexBuild-BE-sub002/models"
)

// Service runs the task-update review workflow: tiered review decisions,
// progress propagation onto the task, the completion gate and the
// pending-review listing. Every mutating path commits first and dispatches
// notifications after, best-effort.
type Service struct {
	store    Store
	notifier Notifier
	clock    Clock
	log      *logrus.Logger
}

func NewService(store Store, notifier Notifier, clock Clock, log *logrus.Logger) *Service {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Service{store: store, notifier: notifier, clock: clock, log: log}
}

type ReviewResult struct {
	UpdateID uint                `json:"update_id"`
	Status   models.UpdateStatus `json:"status"`
	Message  string              `json:"message"`
}

func (s *Service) ReviewByContractorAdmin(ctx context.Context, actor Actor, updateID uint, approve bool, feedback string) (*ReviewResult, error) {
	return s.review(ctx, actor, updateID, TierContractor, approve, feedback)
}

func (s *Service) ReviewBySupervisor(ctx context.Context, actor Actor, updateID uint, approve bool, feedback string) (*ReviewResult, error) {
	return s.review(ctx, actor, updateID, TierSupervisor, approve, feedback)
}

func (s *Service) ReviewByAdmin(ctx context.Context, actor Actor, updateID uint, approve bool, feedback string) (*ReviewResult, error) {
	return s.review(ctx, actor, updateID, TierAdmin, approve, feedback)
}

func (s *Service) review(ctx context.Context, actor Actor, updateID uint, tier Tier, approve bool, feedback string) (*ReviewResult, error) {
	uc, err := s.store.GetUpdateWithContext(ctx, updateID)
	if err != nil {
		return nil, internal("failed to load task update", err)
	}
	if uc == nil {
		return nil, notFound("task update not found")
	}

	caps := ResolveCapabilities(actor, &uc.Task, uc.Contractor, &uc.Department, &uc.Project)
	if !caps.CanReview(tier) {
		return nil, forbidden("you are not authorized to perform %s review on this update", tier)
	}

	flags := Flags{
		HasSupervisor: uc.Department.HasSupervisor(),
		HasAdmin:      uc.Project.HasAdminTier(),
	}
	prev := uc.Update.Status
	next, err := NextStatus(prev, tier, approve, flags)
	if err != nil {
		return nil, err
	}

	upd := uc.Update
	now := s.clock.Now()
	fb := feedback
	switch tier {
	case TierContractor:
		upd.ContractorReviewerID = &actor.UserID
		upd.ContractorApproved = &approve
		upd.ContractorReviewedAt = &now
		if fb != "" {
			upd.ContractorFeedback = &fb
		}
	case TierSupervisor:
		upd.SupervisorReviewerID = &actor.UserID
		upd.SupervisorApproved = &approve
		upd.SupervisorReviewedAt = &now
		if fb != "" {
			upd.SupervisorFeedback = &fb
		}
	case TierAdmin:
		upd.AdminReviewerID = &actor.UserID
		upd.AdminApproved = &approve
		upd.AdminReviewedAt = &now
		if fb != "" {
			upd.AdminFeedback = &fb
		}
	}
	upd.Status = next

	// Conditional commit: the guard on the previously read status serializes
	// concurrent reviewers; the loser gets a Conflict.
	if err := s.store.SaveUpdateReview(ctx, &upd, prev); err != nil {
		if errors.Is(err, ErrStatusChanged) {
			return nil, conflict("another reviewer already acted on this update")
		}
		return nil, internal("failed to save review decision", err)
	}

	if terminalApproved(next, flags) {
		if err := s.projectProgress(ctx, uc, &upd); err != nil {
			// Review decision is committed; surface the projection failure
			// rather than pretending the whole operation failed cleanly.
			s.log.WithError(err).WithField("update_id", upd.ID).Error("progress projection failed after approval commit")
			return nil, internal("review recorded but task progress could not be updated", err)
		}
	}

	result := &ReviewResult{UpdateID: upd.ID, Status: next, Message: reviewMessage(tier, approve, next)}
	s.dispatchReviewNotifications(uc, &upd, tier, approve, feedback)
	return result, nil
}

// projectProgress applies an approved update's reported progress onto the
// owning task. The store derives both columns from the reported value in a
// single write, so a concurrent approval that already moved the row cannot
// be regressed by this one's stale read: progress never decreases, and the
// task flips to Approved (ready for completion) once progress reaches 100.
func (s *Service) projectProgress(ctx context.Context, uc *UpdateContext, upd *models.TaskUpdate) error {
	task := uc.Task
	task.Progress = upd.Progress
	return s.store.SaveTaskProgress(ctx, &task)
}

func reviewMessage(tier Tier, approve bool, next models.UpdateStatus) string {
	if !approve {
		return fmt.Sprintf("Update rejected at %s review", tier)
	}
	switch next {
	case models.UpdateUnderSupervisorReview:
		return "Update approved and forwarded for supervisor review"
	case models.UpdateUnderAdminReview:
		return "Update approved and forwarded for admin review"
	default:
		return "Update approved"
	}
}

// dispatchReviewNotifications runs after the commit. It uses a background
// context so a cancelled caller cannot abandon delivery mid-flight, and the
// notifier itself swallows failures.
func (s *Service) dispatchReviewNotifications(uc *UpdateContext, upd *models.TaskUpdate, tier Tier, approve bool, feedback string) {
	ctx := context.Background()
	link := fmt.Sprintf("/tasks/%d/updates/%d", upd.TaskID, upd.ID)

	base := Notification{
		Category:    models.NotifCategoryReview,
		RelatedID:   upd.ID,
		RelatedType: "task_update",
		Channel:     models.NotifChannelInApp,
		ActionLink:  link,
	}

	if !approve {
		n := base
		n.UserID = upd.SubmitterID
		n.Title = "Progress update rejected"
		n.Body = fmt.Sprintf("Your update on task %s was rejected at %s review.", uc.Task.Code, tier)
		if feedback != "" {
			n.Body = fmt.Sprintf("%s Feedback: %s", n.Body, feedback)
		}
		s.notifier.Notify(ctx, n)
		return
	}

	switch upd.Status {
	case models.UpdateUnderSupervisorReview:
		if uc.Department.SupervisorID != nil {
			n := base
			n.UserID = *uc.Department.SupervisorID
			n.Title = "Update awaiting your review"
			n.Body = fmt.Sprintf("A progress update on task %s is awaiting supervisor review.", uc.Task.Code)
			s.notifier.Notify(ctx, n)
		}
	case models.UpdateUnderAdminReview:
		for _, id := range dedupUserIDs(uc.Project.AdminID, uc.Project.OwnerID) {
			n := base
			n.UserID = id
			n.Title = "Update awaiting your review"
			n.Body = fmt.Sprintf("A progress update on task %s is awaiting admin review.", uc.Task.Code)
			s.notifier.Notify(ctx, n)
		}
	case models.UpdateAdminApproved, models.UpdateSupervisorApproved:
		n := base
		n.UserID = upd.SubmitterID
		n.Title = "Progress update approved"
		n.Body = fmt.Sprintf("Your update on task %s was approved.", uc.Task.Code)
		s.notifier.Notify(ctx, n)
	}
}

// dedupUserIDs flattens optional user id pointers into a unique list.
func dedupUserIDs(ids ...*uint) []uint {
	seen := make(map[uint]bool)
	var out []uint
	for _, p := range ids {
		if p == nil || *p == 0 || seen[*p] {
			continue
		}
		seen[*p] = true
		out = append(out, *p)
	}
	return out
}

type PendingPage struct {
	Items      []PendingUpdate `json:"items"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
}

// ListPendingReviews returns the updates awaiting the actor's own tiers
// within the organization, oldest-pending-first.
func (s *Service) ListPendingReviews(ctx context.Context, actor Actor, orgID uint, page, pageSize int) (*PendingPage, error) {
	scope := PendingScope{OrgID: orgID}
	if actor.Role == models.RoleOrgAdmin || models.IsPlatformOverride(actor.Role) {
		scope.All = true
	} else {
		var err error
		if scope.SupervisorDeptIDs, err = s.store.DepartmentIDsSupervisedBy(ctx, orgID, actor.UserID); err != nil {
			return nil, internal("failed to resolve supervised departments", err)
		}
		if scope.AdminProjectIDs, err = s.store.ProjectIDsAdministeredBy(ctx, orgID, actor.UserID); err != nil {
			return nil, internal("failed to resolve administered projects", err)
		}
		if scope.ContractorIDs, err = s.store.ContractorIDsAdministeredBy(ctx, orgID, actor.UserID); err != nil {
			return nil, internal("failed to resolve administered contractors", err)
		}
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	items, total, err := s.store.GetPendingForReview(ctx, scope, page, pageSize)
	if err != nil {
		return nil, internal("failed to list pending reviews", err)
	}
	return &PendingPage{Items: items, TotalCount: total, Page: page, PageSize: pageSize}, nil
}

// ListUpdatesForTask returns every update on the task, submission order.
// The read is tenant-scoped: the review trail carries per-tier feedback, so
// only actors CanViewTask admits get it back.
func (s *Service) ListUpdatesForTask(ctx context.Context, actor Actor, actorOrgID, taskID uint) ([]models.TaskUpdate, error) {
	tc, err := s.store.GetTaskWithContext(ctx, taskID)
	if err != nil {
		return nil, internal("failed to load task", err)
	}
	if tc == nil {
		return nil, notFound("task not found")
	}
	caps := ResolveCapabilities(actor, &tc.Task, tc.Contractor, &tc.Department, &tc.Project)
	if !CanViewTask(caps, actor, actorOrgID, &tc.Project) {
		return nil, forbidden("you are not authorized to view this task's updates")
	}
	updates, err := s.store.GetUpdatesForTask(ctx, taskID)
	if err != nil {
		return nil, internal("failed to list task updates", err)
	}
	return updates, nil
}
