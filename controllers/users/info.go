package users

import (
	"errors"
	"net/http"

	"github.com/Rasheed240/ApexBuild-BE-sub002/database"
	"github.com/Rasheed240/ApexBuild-BE-sub002/models"
	"github.com/Rasheed240/ApexBuild-BE-sub002/utils"

	"gorm.io/gorm"
)

// GET /api/users/me
func InfoHandler(w http.ResponseWriter, r *http.Request) {
	// Auth middleware sets user ID in context; use that
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	db := database.DB
	var user models.User
	if err := db.First(&user, uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	var org models.Organization
	_ = db.Select("id, name").First(&org, user.OrganizationID).Error

	// relationship summary used by clients to decide which review queues to show
	var supervisedDepts int64
	db.Model(&models.Department{}).Where("supervisor_id = ?", user.ID).Count(&supervisedDepts)
	var administeredProjects int64
	db.Model(&models.Project{}).Where("admin_id = ? OR owner_id = ?", user.ID, user.ID).Count(&administeredProjects)
	var administeredContractors int64
	db.Model(&models.Contractor{}).Where("admin_id = ?", user.ID).Count(&administeredContractors)
	var assignedTasks int64
	db.Model(&models.Task{}).Where("assignee_id = ? AND deleted = ?", user.ID, false).Count(&assignedTasks)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"user": map[string]interface{}{
				"id":      user.ID,
				"name":    user.Name,
				"email":   user.Email,
				"phone":   user.Phone,
				"role":    user.Role,
				"profile": user.Profile,
			},
			"organization": map[string]interface{}{
				"id":   org.ID,
				"name": org.Name,
			},
			"relationships": map[string]interface{}{
				"supervised_departments":   supervisedDepts,
				"administered_projects":    administeredProjects,
				"administered_contractors": administeredContractors,
				"assigned_tasks":           assignedTasks,
			},
		},
	})
}
