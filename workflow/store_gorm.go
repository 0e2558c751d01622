package workflow

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Rasheed240/ApexBuild-BE-sub002/models"
)

// GormStore is the MySQL-backed Store used in production.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetUpdateWithContext(ctx context.Context, id uint) (*UpdateContext, error) {
	db := s.db.WithContext(ctx)

	var upd models.TaskUpdate
	if err := db.Where("id = ? AND deleted = ?", id, false).First(&upd).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	uc := &UpdateContext{Update: upd}
	if err := db.Where("id = ? AND deleted = ?", upd.TaskID, false).First(&uc.Task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := s.loadChain(ctx, &uc.Task, &uc.Department, &uc.Project, &uc.Contractor); err != nil {
		return nil, err
	}
	return uc, nil
}

func (s *GormStore) GetTaskWithContext(ctx context.Context, id uint) (*TaskContext, error) {
	db := s.db.WithContext(ctx)

	tc := &TaskContext{}
	if err := db.Where("id = ? AND deleted = ?", id, false).First(&tc.Task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := s.loadChain(ctx, &tc.Task, &tc.Department, &tc.Project, &tc.Contractor); err != nil {
		return nil, err
	}
	return tc, nil
}

// loadChain resolves department, project and optional contractor for a task.
func (s *GormStore) loadChain(ctx context.Context, task *models.Task, dept *models.Department, proj *models.Project, contractor **models.Contractor) error {
	db := s.db.WithContext(ctx)

	if err := db.First(dept, task.DepartmentID).Error; err != nil {
		return err
	}
	if err := db.First(proj, dept.ProjectID).Error; err != nil {
		return err
	}
	if task.ContractorID != nil {
		var c models.Contractor
		if err := db.First(&c, *task.ContractorID).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		} else {
			*contractor = &c
		}
	}
	return nil
}

func (s *GormStore) GetUpdatesForTask(ctx context.Context, taskID uint) ([]models.TaskUpdate, error) {
	var updates []models.TaskUpdate
	err := s.db.WithContext(ctx).
		Where("task_id = ? AND deleted = ?", taskID, false).
		Order("created_at ASC").
		Find(&updates).Error
	return updates, err
}

func (s *GormStore) GetSubtasks(ctx context.Context, parentID uint) ([]models.Task, error) {
	var subtasks []models.Task
	err := s.db.WithContext(ctx).
		Where("parent_task_id = ? AND deleted = ?", parentID, false).
		Find(&subtasks).Error
	return subtasks, err
}

func (s *GormStore) GetPendingForReview(ctx context.Context, scope PendingScope, page, pageSize int) ([]PendingUpdate, int64, error) {
	if scope.empty() {
		return []PendingUpdate{}, 0, nil
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	q := s.db.WithContext(ctx).Table("task_updates").
		Joins("JOIN tasks ON tasks.id = task_updates.task_id").
		Joins("JOIN departments ON departments.id = tasks.department_id").
		Joins("JOIN projects ON projects.id = departments.project_id").
		Joins("JOIN users ON users.id = task_updates.submitter_id").
		Where("task_updates.deleted = ? AND tasks.deleted = ?", false, false).
		Where("projects.organization_id = ?", scope.OrgID)

	if scope.All {
		q = q.Where("task_updates.status IN ?", []models.UpdateStatus{
			models.UpdateSubmitted, models.UpdateUnderSupervisorReview, models.UpdateUnderAdminReview,
		})
	} else {
		var clauses []string
		var args []interface{}
		if len(scope.SupervisorDeptIDs) > 0 {
			clauses = append(clauses, "(task_updates.status = ? AND tasks.department_id IN ?)")
			args = append(args, models.UpdateUnderSupervisorReview, scope.SupervisorDeptIDs)
		}
		if len(scope.AdminProjectIDs) > 0 {
			clauses = append(clauses, "(task_updates.status = ? AND projects.id IN ?)")
			args = append(args, models.UpdateUnderAdminReview, scope.AdminProjectIDs)
		}
		if len(scope.ContractorIDs) > 0 {
			clauses = append(clauses, "(task_updates.status = ? AND tasks.contractor_id IN ?)")
			args = append(args, models.UpdateSubmitted, scope.ContractorIDs)
		}
		q = q.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []PendingUpdate
	err := q.Select("task_updates.*, tasks.title AS task_title, tasks.code AS task_code, departments.name AS department_name, projects.name AS project_name, users.name AS submitter_name").
		Order("task_updates.created_at ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []PendingUpdate{}
	}
	return items, total, nil
}

// reviewColumns names every column SaveUpdateReview may touch. One write
// covers all three tiers; untouched tiers carry their existing NULLs.
var reviewColumns = []string{
	"status",
	"contractor_reviewer_id", "contractor_approved", "contractor_feedback", "contractor_reviewed_at",
	"supervisor_reviewer_id", "supervisor_approved", "supervisor_feedback", "supervisor_reviewed_at",
	"admin_reviewer_id", "admin_approved", "admin_feedback", "admin_reviewed_at",
}

func (s *GormStore) SaveUpdateReview(ctx context.Context, upd *models.TaskUpdate, expected models.UpdateStatus) error {
	res := s.db.WithContext(ctx).Model(&models.TaskUpdate{}).
		Where("id = ? AND status = ?", upd.ID, expected).
		Select(reviewColumns).
		Updates(upd)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}

func (s *GormStore) SaveTaskProgress(ctx context.Context, task *models.Task) error {
	// Both columns are derived from the stored row inside the statement:
	// GREATEST keeps progress monotonic even if a concurrent update already
	// raised it past this one, and the status follows the progress the row
	// actually ends up with rather than the caller's stale read.
	updates := map[string]interface{}{
		"progress": gorm.Expr("GREATEST(progress, ?)", task.Progress),
		"status": gorm.Expr(
			"CASE WHEN GREATEST(progress, ?) >= 100 THEN ? WHEN status = ? THEN ? ELSE status END",
			task.Progress, models.TaskApproved, models.TaskPending, models.TaskInProgress),
	}
	return s.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND status <> ?", task.ID, models.TaskCompleted).
		Updates(updates).Error
}

func (s *GormStore) CompleteTask(ctx context.Context, task *models.Task, expected models.TaskStatus) error {
	res := s.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND status = ?", task.ID, expected).
		Updates(map[string]interface{}{
			"status":       models.TaskCompleted,
			"progress":     100,
			"completed_at": task.CompletedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}

func (s *GormStore) DepartmentIDsSupervisedBy(ctx context.Context, orgID, userID uint) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.Department{}).
		Joins("JOIN projects ON projects.id = departments.project_id").
		Where("projects.organization_id = ? AND departments.supervisor_id = ?", orgID, userID).
		Pluck("departments.id", &ids).Error
	return ids, err
}

func (s *GormStore) ProjectIDsAdministeredBy(ctx context.Context, orgID, userID uint) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.Project{}).
		Where("organization_id = ? AND (admin_id = ? OR owner_id = ?)", orgID, userID, userID).
		Pluck("id", &ids).Error
	return ids, err
}

func (s *GormStore) ContractorIDsAdministeredBy(ctx context.Context, orgID, userID uint) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.Contractor{}).
		Where("organization_id = ? AND admin_id = ?", orgID, userID).
		Pluck("id", &ids).Error
	return ids, err
}
