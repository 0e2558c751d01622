package admins

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Rasheed240/ApexBuild-BE-sub002/database"
	"github.com/Rasheed240/ApexBuild-BE-sub002/middleware"
	"github.com/Rasheed240/ApexBuild-BE-sub002/models"
	"github.com/Rasheed240/ApexBuild-BE-sub002/utils"

	"gorm.io/gorm"
)

type DepartmentRequest struct {
	ProjectID    uint    `json:"project_id" validate:"required"`
	Name         string  `json:"name" validate:"required,nameok"`
	SupervisorID *uint   `json:"supervisor_id"`
	Status       *string `json:"status"`
}

// projectInOrg loads a project, enforcing organization scope.
func projectInOrg(orgID, projectID uint) (*models.Project, error) {
	var p models.Project
	if err := database.DB.Where("id = ? AND organization_id = ?", projectID, orgID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GET /api/admin/departments?project_id=
func ListDepartmentsHandler(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := requesterOrg(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	q := database.DB.Model(&models.Department{}).
		Joins("JOIN projects ON projects.id = departments.project_id").
		Where("projects.organization_id = ?", orgID)
	if pid := r.URL.Query().Get("project_id"); pid != "" {
		q = q.Where("departments.project_id = ?", pid)
	}

	var departments []models.Department
	if err := q.Order("departments.id ASC").Find(&departments).Error; err != nil {
		writeServerError(w)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: departments})
}

// POST /api/admin/departments
func CreateDepartmentHandler(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := requesterOrg(r)
	if !ok {
		writeUnauthorized(w)
		return
	}
	var req DepartmentRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	if _, err := projectInOrg(orgID, req.ProjectID); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Project not found in your organization"})
		return
	}
	if req.SupervisorID != nil {
		if _, err := orgUser(orgID, *req.SupervisorID); err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Supervisor must belong to your organization"})
			return
		}
	}

	dept := models.Department{
		ProjectID:    req.ProjectID,
		Name:         strings.TrimSpace(req.Name),
		SupervisorID: req.SupervisorID,
		Status:       "Active",
	}
	if err := database.DB.Create(&dept).Error; err != nil {
		writeServerError(w)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Department created", Data: dept})
}

type AssignSupervisorRequest struct {
	// nil clears the supervisor; the department then skips that review tier.
	SupervisorID *uint `json:"supervisor_id"`
}

// PATCH /api/admin/departments/{id}/supervisor
func AssignSupervisorHandler(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := requesterOrg(r)
	if !ok {
		writeUnauthorized(w)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid department id"})
		return
	}

	var dept models.Department
	err := database.DB.Joins("JOIN projects ON projects.id = departments.project_id").
		Where("departments.id = ? AND projects.organization_id = ?", id, orgID).
		First(&dept).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Department not found"})
			return
		}
		writeServerError(w)
		return
	}

	var req AssignSupervisorRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.SupervisorID != nil {
		if _, err := orgUser(orgID, *req.SupervisorID); err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Supervisor must belong to your organization"})
			return
		}
	}

	if err := database.DB.Model(&dept).Update("supervisor_id", req.SupervisorID).Error; err != nil {
		writeServerError(w)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Supervisor assignment updated", Data: dept})
}
