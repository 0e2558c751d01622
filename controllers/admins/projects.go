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

type ProjectRequest struct {
	Name        string     `json:"name" validate:"required,nameok"`
	Description *string    `json:"description"`
	AdminID     *uint      `json:"admin_id"`
	OwnerID     *uint      `json:"owner_id"`
	Location    *string    `json:"location"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// GET /api/admin/projects
func ListProjectsHandler(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := requesterOrg(r)
	if !ok {
		writeUnauthorized(w)
		return
	}
	page, pageSize := pageParams(r)

	q := database.DB.Model(&models.Project{}).Where("organization_id = ?", orgID)
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		writeServerError(w)
		return
	}
	var projects []models.Project
	if err := q.Order("id ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&projects).Error; err != nil {
		writeServerError(w)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"projects":    projects,
			"total_count": total,
			"page":        page,
			"page_size":   pageSize,
		},
	})
}

// POST /api/admin/projects
func CreateProjectHandler(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := requesterOrg(r)
	if !ok {
		writeUnauthorized(w)
		return
	}
	var req ProjectRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	// admin and owner must be members of the same organization
	for _, uid := range []*uint{req.AdminID, req.OwnerID} {
		if uid == nil {
			continue
		}
		if _, err := orgUser(orgID, *uid); err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Admin and owner must belong to your organization"})
			return
		}
	}

	project := models.Project{
		OrganizationID: orgID,
		Name:           strings.TrimSpace(req.Name),
		Code:           utils.GenerateProjectCode(req.Name),
		Description:    req.Description,
		AdminID:        req.AdminID,
		OwnerID:        req.OwnerID,
		Location:       req.Location,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Status:         "Planning",
	}
	if err := database.DB.Create(&project).Error; err != nil {
		writeServerError(w)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Project created", Data: project})
}

// PUT /api/admin/projects/{id}
func UpdateProjectHandler(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := requesterOrg(r)
	if !ok {
		writeUnauthorized(w)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid project id"})
		return
	}

	var project models.Project
	if err := database.DB.Where("id = ? AND organization_id = ?", id, orgID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Project not found"})
			return
		}
		writeServerError(w)
		return
	}

	var req ProjectRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	for _, uid := range []*uint{req.AdminID, req.OwnerID} {
		if uid == nil {
			continue
		}
		if _, err := orgUser(orgID, *uid); err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Admin and owner must belong to your organization"})
			return
		}
	}

	project.Name = strings.TrimSpace(req.Name)
	project.Description = req.Description
	project.AdminID = req.AdminID
	project.OwnerID = req.OwnerID
	project.Location = req.Location
	project.StartDate = req.StartDate
	project.EndDate = req.EndDate
	if err := database.DB.Save(&project).Error; err != nil {
		writeServerError(w)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Project updated", Data: project})
}

type ProjectStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// PATCH /api/admin/projects/{id}/status
func UpdateProjectStatusHandler(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := requesterOrg(r)
	if !ok {
		writeUnauthorized(w)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid project id"})
		return
	}
	var req ProjectStatusRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	switch req.Status {
	case "Planning", "Active", "OnHold", "Closed":
	default:
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Unknown project status"})
		return
	}

	res := database.DB.Model(&models.Project{}).
		Where("id = ? AND organization_id = ?", id, orgID).
		Update("status", req.Status)
	if res.Error != nil {
		writeServerError(w)
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Project not found"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Project status updated"})
}
