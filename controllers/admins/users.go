package admins

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Rasheed240/ApexBuild-BE-sub002/database"
	"github.com/Rasheed240/ApexBuild-BE-sub002/middleware"
	"github.com/Rasheed240/ApexBuild-BE-sub002/models"
	"github.com/Rasheed240/ApexBuild-BE-sub002/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// GET /api/admin/users?role=&status=&search=
func ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := requesterOrg(r)
	if !ok {
		writeUnauthorized(w)
		return
	}
	page, pageSize := pageParams(r)

	q := database.DB.Model(&models.User{}).Where("organization_id = ?", orgID)
	if role := r.URL.Query().Get("role"); role != "" {
		q = q.Where("role = ?", role)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR email LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		writeServerError(w)
		return
	}
	var users []models.User
	if err := q.Order("id ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
		writeServerError(w)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"users":       users,
			"total_count": total,
			"page":        page,
			"page_size":   pageSize,
		},
	})
}

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,nameok"`
	Email    string `json:"email" validate:"required,emailok"`
	Password string `json:"password" validate:"required,pwdmin"`
	Role     string `json:"role" validate:"required"`
	Phone    string `json:"phone"`
}

// POST /api/admin/users
// Lets organization admins provision accounts without the join-code flow.
func CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := requesterOrg(r)
	if !ok {
		writeUnauthorized(w)
		return
	}
	var req CreateUserRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if !validAssignableRole(req.Role, utils.GetUserRole(r)) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Role cannot be assigned"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	var existing models.User
	if err := database.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Email is already registered"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		writeServerError(w)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeServerError(w)
		return
	}
	user := models.User{
		OrganizationID: orgID,
		Name:           strings.TrimSpace(req.Name),
		Email:          req.Email,
		Phone:          strings.TrimSpace(req.Phone),
		Password:       string(hashed),
		Role:           req.Role,
		Status:         "Active",
	}
	if err := database.DB.Create(&user).Error; err != nil {
		writeServerError(w)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "User created", Data: user})
}

type UserRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// PATCH /api/admin/users/{id}/role
func UpdateUserRoleHandler(w http.ResponseWriter, r *http.Request) {
	orgID, requesterID, ok := requesterOrg(r)
	if !ok {
		writeUnauthorized(w)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid user id"})
		return
	}
	if id == requesterID {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "You cannot change your own role"})
		return
	}

	var req UserRoleRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if !validAssignableRole(req.Role, utils.GetUserRole(r)) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Role cannot be assigned"})
		return
	}

	user, err := orgUser(orgID, id)
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}
	if err := database.DB.Model(user).Update("role", req.Role).Error; err != nil {
		writeServerError(w)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Role updated", Data: user})
}

type UserStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// PATCH /api/admin/users/{id}/status
func UpdateUserStatusHandler(w http.ResponseWriter, r *http.Request) {
	orgID, requesterID, ok := requesterOrg(r)
	if !ok {
		writeUnauthorized(w)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid user id"})
		return
	}
	if id == requesterID {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "You cannot change your own status"})
		return
	}

	var req UserStatusRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	switch req.Status {
	case "Active", "Inactive", "Suspend":
	default:
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Unknown user status"})
		return
	}

	user, err := orgUser(orgID, id)
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}
	tx := database.DB.Begin()
	if err := tx.Model(user).Update("status", req.Status).Error; err != nil {
		tx.Rollback()
		writeServerError(w)
		return
	}
	// suspending kills every active session
	if req.Status != "Active" {
		if err := tx.Model(&models.RefreshToken{}).Where("user_id = ?", user.ID).Update("revoked", true).Error; err != nil {
			tx.Rollback()
			writeServerError(w)
			return
		}
	}
	if err := tx.Commit().Error; err != nil {
		writeServerError(w)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Status updated", Data: user})
}

// validAssignableRole limits what each admin tier may hand out. Only the
// platform override can mint org admins or other super admins.
func validAssignableRole(role, requesterRole string) bool {
	switch role {
	case models.RoleWorker, models.RoleContractorAdmin, models.RoleSupervisor, models.RoleProjectAdmin:
		return true
	case models.RoleOrgAdmin, models.RoleSuperAdmin:
		return models.IsPlatformOverride(requesterRole)
	}
	return false
}
