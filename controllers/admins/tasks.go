package admins

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Rasheed240/ApexBuild-BE-sub002/database"
	"github.com/Rasheed240/ApexBuild-BE-sub002/middleware"
	"github.com/Rasheed240/ApexBuild-BE-sub002/models"
	"github.com/Rasheed240/ApexBuild-BE-sub002/utils"

	"gorm.io/gorm"
)

type TaskRequest struct {
	DepartmentID uint       `json:"department_id" validate:"required"`
	ContractorID *uint      `json:"contractor_id"`
	ParentTaskID *uint      `json:"parent_task_id"`
	Title        string     `json:"title" validate:"required"`
	Description  *string    `json:"description"`
	AssigneeID   *uint      `json:"assignee_id"`
	StartDate    *time.Time `json:"start_date"`
	DueDate      *time.Time `json:"due_date"`
}

// deptInOrg loads a department and its owning project, enforcing org scope.
func deptInOrg(orgID, deptID uint) (*models.Department, *models.Project, error) {
	var dept models.Department
	if err := database.DB.First(&dept, deptID).Error; err != nil {
		return nil, nil, err
	}
	proj, err := projectInOrg(orgID, dept.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return &dept, proj, nil
}

// GET /api/admin/tasks?department_id=&status=
func ListTasksHandler(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := requesterOrg(r)
	if !ok {
		writeUnauthorized(w)
		return
	}
	page, pageSize := pageParams(r)

	q := database.DB.Model(&models.Task{}).
		Joins("JOIN departments ON departments.id = tasks.department_id").
		Joins("JOIN projects ON projects.id = departments.project_id").
		Where("projects.organization_id = ? AND tasks.deleted = ?", orgID, false)
	if did := r.URL.Query().Get("department_id"); did != "" {
		q = q.Where("tasks.department_id = ?", did)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("tasks.status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		writeServerError(w)
		return
	}
	var tasks []models.Task
	if err := q.Select("tasks.*").Order("tasks.id ASC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&tasks).Error; err != nil {
		writeServerError(w)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"tasks":       tasks,
			"total_count": total,
			"page":        page,
			"page_size":   pageSize,
		},
	})
}

// POST /api/admin/tasks
func CreateTaskHandler(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := requesterOrg(r)
	if !ok {
		writeUnauthorized(w)
		return
	}
	var req TaskRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	_, proj, err := deptInOrg(orgID, req.DepartmentID)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Department not found in your organization"})
		return
	}
	if req.ContractorID != nil {
		var count int64
		database.DB.Model(&models.Contractor{}).
			Where("id = ? AND organization_id = ?", *req.ContractorID, orgID).Count(&count)
		if count == 0 {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Contractor not found in your organization"})
			return
		}
	}
	if req.AssigneeID != nil {
		if _, err := orgUser(orgID, *req.AssigneeID); err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Assignee must belong to your organization"})
			return
		}
	}
	// subtasks nest one level only
	if req.ParentTaskID != nil {
		var parent models.Task
		if err := database.DB.Where("id = ? AND deleted = ?", *req.ParentTaskID, false).First(&parent).Error; err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Parent task not found"})
			return
		}
		if parent.ParentTaskID != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Subtasks cannot have their own subtasks"})
			return
		}
		if parent.DepartmentID != req.DepartmentID {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Subtask must stay in the parent task's department"})
			return
		}
	}

	task := models.Task{
		DepartmentID: req.DepartmentID,
		ContractorID: req.ContractorID,
		ParentTaskID: req.ParentTaskID,
		Title:        strings.TrimSpace(req.Title),
		Code:         utils.GenerateTaskCode(proj.Code),
		Description:  req.Description,
		Status:       models.TaskPending,
		AssigneeID:   req.AssigneeID,
		StartDate:    req.StartDate,
		DueDate:      req.DueDate,
	}
	if err := database.DB.Create(&task).Error; err != nil {
		writeServerError(w)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Task created", Data: task})
}

type AssignTaskRequest struct {
	AssigneeID *uint `json:"assignee_id"`
}

// PATCH /api/admin/tasks/{id}/assignee
func AssignTaskHandler(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := requesterOrg(r)
	if !ok {
		writeUnauthorized(w)
		return
	}
	task, ok := taskInOrg(w, r, orgID)
	if !ok {
		return
	}

	var req AssignTaskRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.AssigneeID != nil {
		if _, err := orgUser(orgID, *req.AssigneeID); err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Assignee must belong to your organization"})
			return
		}
	}
	if task.Status == models.TaskCompleted || task.Status == models.TaskCancelled {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "This task can no longer be reassigned"})
		return
	}

	if err := database.DB.Model(task).Update("assignee_id", req.AssigneeID).Error; err != nil {
		writeServerError(w)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Assignee updated", Data: task})
}

// POST /api/admin/tasks/{id}/cancel
func CancelTaskHandler(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := requesterOrg(r)
	if !ok {
		writeUnauthorized(w)
		return
	}
	task, ok := taskInOrg(w, r, orgID)
	if !ok {
		return
	}
	if task.Status == models.TaskCompleted {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Completed tasks cannot be cancelled"})
		return
	}

	res := database.DB.Model(&models.Task{}).
		Where("id = ? AND status = ?", task.ID, task.Status).
		Update("status", models.TaskCancelled)
	if res.Error != nil {
		writeServerError(w)
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Task changed while cancelling, reload and retry"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task cancelled"})
}

// DELETE /api/admin/tasks/{id}
// Soft delete: the row and its updates are retained for audit.
func DeleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := requesterOrg(r)
	if !ok {
		writeUnauthorized(w)
		return
	}
	task, ok := taskInOrg(w, r, orgID)
	if !ok {
		return
	}

	if err := database.DB.Model(task).Update("deleted", true).Error; err != nil {
		writeServerError(w)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task deleted"})
}

// taskInOrg loads the path task scoped to the caller's organization, writing
// the error response itself on failure.
func taskInOrg(w http.ResponseWriter, r *http.Request, orgID uint) (*models.Task, bool) {
	id, ok := pathID(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return nil, false
	}
	var task models.Task
	err := database.DB.
		Joins("JOIN departments ON departments.id = tasks.department_id").
		Joins("JOIN projects ON projects.id = departments.project_id").
		Where("tasks.id = ? AND projects.organization_id = ? AND tasks.deleted = ?", id, orgID, false).
		Select("tasks.*").
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Task not found"})
			return nil, false
		}
		writeServerError(w)
		return nil, false
	}
	return &task, true
}
