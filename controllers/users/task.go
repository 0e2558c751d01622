package users

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Rasheed240/ApexBuild-BE-sub002/database"
	"github.com/Rasheed240/ApexBuild-BE-sub002/middleware"
	"github.com/Rasheed240/ApexBuild-BE-sub002/models"
	"github.com/Rasheed240/ApexBuild-BE-sub002/utils"
	"github.com/Rasheed240/ApexBuild-BE-sub002/workflow"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// GET /api/tasks?status=&page=&page_size=
// Lists tasks assigned to the authenticated user.
func TaskListHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	db := database.DB

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	q := db.Model(&models.Task{}).Where("assignee_id = ? AND deleted = ?", uid, false)
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}

	var tasks []models.Task
	if err := q.Order("due_date IS NULL, due_date ASC, id ASC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&tasks).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
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

// GET /api/tasks/{id}
func TaskDetailHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil || id == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	db := database.DB

	var task models.Task
	if err := db.Where("id = ? AND deleted = ?", uint(id), false).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Task not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}

	var dept models.Department
	_ = db.First(&dept, task.DepartmentID).Error
	var proj models.Project
	_ = db.First(&proj, dept.ProjectID).Error

	var contractor *models.Contractor
	if task.ContractorID != nil {
		var c models.Contractor
		if db.First(&c, *task.ContractorID).Error == nil {
			contractor = &c
		}
	}

	var viewer models.User
	if err := db.Select("id, organization_id").First(&viewer, uid).Error; err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	actor := workflow.Actor{UserID: uid, Role: utils.GetUserRole(r)}
	caps := workflow.ResolveCapabilities(actor, &task, contractor, &dept, &proj)
	if !workflow.CanViewTask(caps, actor, viewer.OrganizationID, &proj) {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "You do not have access to this task"})
		return
	}

	var subtasks []models.Task
	db.Where("parent_task_id = ? AND deleted = ?", task.ID, false).Order("id ASC").Find(&subtasks)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"task":     task,
			"subtasks": subtasks,
			"department": map[string]interface{}{
				"id":   dept.ID,
				"name": dept.Name,
			},
			"project": map[string]interface{}{
				"id":   proj.ID,
				"name": proj.Name,
				"code": proj.Code,
			},
			"can_submit": task.AssigneeID != nil && *task.AssigneeID == uid,
		},
	})
}

type SubmitUpdateRequest struct {
	Description string   `json:"description" validate:"required"`
	Progress    *int     `json:"progress" validate:"required"`
	MediaRefs   []string `json:"media_refs"`
}

// POST /api/tasks/{id}/updates
// Only the task assignee may report progress. The report is immutable once
// stored; review happens through the workflow endpoints.
func SubmitUpdateHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil || id == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}

	var req SubmitUpdateRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Description is required"})
		return
	}
	if *req.Progress < 0 || *req.Progress > 100 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Progress must be between 0 and 100"})
		return
	}
	if len(req.MediaRefs) > 10 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "At most 10 media attachments per update"})
		return
	}

	db := database.DB
	var task models.Task
	if err := db.Where("id = ? AND deleted = ?", uint(id), false).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Task not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}
	if task.AssigneeID == nil || *task.AssigneeID != uid {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Only the task assignee can submit updates"})
		return
	}
	if task.Status == models.TaskCompleted || task.Status == models.TaskCancelled {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "This task no longer accepts updates"})
		return
	}

	update := models.TaskUpdate{
		TaskID:      task.ID,
		SubmitterID: uid,
		Description: req.Description,
		Progress:    *req.Progress,
		Status:      models.UpdateSubmitted,
	}
	update.SetMedia(req.MediaRefs)

	tx := db.Begin()
	if err := tx.Create(&update).Error; err != nil {
		tx.Rollback()
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to save update"})
		return
	}
	// first report moves the task off Pending
	if task.Status == models.TaskPending {
		if err := tx.Model(&models.Task{}).
			Where("id = ? AND status = ?", task.ID, models.TaskPending).
			Update("status", models.TaskInProgress).Error; err != nil {
			tx.Rollback()
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to save update"})
			return
		}
	}
	if err := tx.Commit().Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to save update"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Update submitted for review",
		Data: map[string]interface{}{
			"update": update,
			"media":  update.Media(),
		},
	})
}
