package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Rasheed240/ApexBuild-BE-sub002/database"
	"github.com/Rasheed240/ApexBuild-BE-sub002/logging"
	"github.com/Rasheed240/ApexBuild-BE-sub002/middleware"
	"github.com/Rasheed240/ApexBuild-BE-sub002/models"
	"github.com/Rasheed240/ApexBuild-BE-sub002/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name                 string `json:"name" validate:"required,nameok"`
	Email                string `json:"email" validate:"required,emailok"`
	Password             string `json:"password" validate:"required,pwdmin"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	JoinCode             string `json:"join_code" validate:"required"`
	Phone                string `json:"phone"`
	IsApp                *bool  `json:"is_app,omitempty"`
}

// Self-registration always produces a worker account; elevated roles are
// assigned by organization admins afterwards.
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	// Check if registration is closed
	var appSetting models.Setting
	if err := database.DB.Model(&models.Setting{}).Select("closed_register, name").Take(&appSetting).Error; err == nil && appSetting.ClosedRegister {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
			Success: false,
			Message: "Registration is currently closed. Please try again later.",
			Data:    map[string]interface{}{"closed_register": true, "application": appSetting.Name},
		})
		return
	}

	if err := database.DB.Model(&models.Setting{}).Select("maintenance, name").Take(&appSetting).Error; err == nil && appSetting.Maintenance {
		utils.WriteJSON(w, http.StatusServiceUnavailable, utils.APIResponse{
			Success: false,
			Message: "The application is under maintenance. Please try again later.",
			Data:    map[string]interface{}{"maintenance": true, "application": appSetting.Name},
		})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.JoinCode = strings.ToUpper(strings.TrimSpace(req.JoinCode))
	req.Phone = strings.TrimSpace(req.Phone)

	db := database.DB

	// Resolve the organization behind the join code
	var org models.Organization
	if err := db.Where("join_code = ? AND status = ?", req.JoinCode, "Active").First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid organization join code"})
			return
		}
		logging.Logger.Errorf("register: lookup join code %s: %v", req.JoinCode, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	// Ensure unique email
	var existing models.User
	if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Email is already registered"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logging.Logger.Errorf("register: lookup email: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	newUser := models.User{
		OrganizationID: org.ID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Password:       string(hashed),
		Role:           models.RoleWorker,
		Status:         "Active",
	}

	if err := db.Create(&newUser).Error; err != nil {
		logging.Logger.Errorf("register: create user: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Registration failed, please try again"})
		return
	}

	var tokenExpiry time.Duration
	isApp := req.IsApp != nil && *req.IsApp
	if isApp {
		tokenExpiry = 30 * 24 * time.Hour
	} else {
		tokenExpiry = 15 * time.Minute
	}
	exp := time.Now().Add(tokenExpiry)

	accessToken, err := utils.GenerateAccessTokenWithExpiry(newUser.ID, newUser.Role, tokenExpiry)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Could not issue token"})
		return
	}
	refreshJTI, err := utils.GenerateRefreshToken(newUser.ID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Could not store refresh token"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Registration successful, welcome!",
		Data: map[string]interface{}{
			"access_token":  accessToken,
			"access_expire": exp.UTC().Format(time.RFC3339),
			"refresh_token": refreshJTI,
			"user": map[string]interface{}{
				"id":              newUser.ID,
				"name":            newUser.Name,
				"email":           newUser.Email,
				"role":            newUser.Role,
				"organization_id": newUser.OrganizationID,
			},
			"organization": map[string]interface{}{
				"id":   org.ID,
				"name": org.Name,
			},
		},
	})
}
