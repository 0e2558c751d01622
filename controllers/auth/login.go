package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/Rasheed240/ApexBuild-BE-sub002/database"
	"github.com/Rasheed240/ApexBuild-BE-sub002/middleware"
	"github.com/Rasheed240/ApexBuild-BE-sub002/models"
	"github.com/Rasheed240/ApexBuild-BE-sub002/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,emailok"`
	Password string `json:"password" validate:"required,pwdmin"`
	IsApp    *bool  `json:"is_app,omitempty"` // Optional: mobile clients get a long-lived access token
}

func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	// Check maintenance mode
	var appSetting models.Setting
	if err := database.DB.Model(&models.Setting{}).Select("maintenance, name").Take(&appSetting).Error; err == nil && appSetting.Maintenance {
		utils.WriteJSON(w, http.StatusServiceUnavailable, utils.APIResponse{
			Success: false,
			Message: "The application is under maintenance. Please try again later.",
			Data:    map[string]interface{}{"maintenance": true, "application": appSetting.Name},
		})
		return
	}

	db := database.DB

	var user models.User
	if err := db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid email or password"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	// Only Active users can log in
	status := strings.ToLower(user.Status)
	if status != "active" {
		if status == "suspend" {
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Your account has been suspended, please contact your administrator"})
			return
		}
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Your account is not active, please contact your administrator"})
		return
	}

	// check account lockout
	if locked, retry := middleware.IsAccountLocked(user.ID); locked {
		utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{Success: false, Message: "Too many login attempts. Try again later.", Data: map[string]interface{}{"retry_after_seconds": int(retry.Seconds())}})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		// record failed login attempt for lockout tracking
		middleware.RecordFailedLogin(user.ID)
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid email or password"})
		return
	}

	// on successful login reset failed login counter
	middleware.ResetFailedLogin(user.ID)

	// Mobile clients keep a longer session; web sessions lean on the refresh token.
	var tokenExpiry time.Duration
	isApp := req.IsApp != nil && *req.IsApp
	if isApp {
		tokenExpiry = 30 * 24 * time.Hour
	} else {
		tokenExpiry = 15 * time.Minute
	}
	exp := time.Now().Add(tokenExpiry)

	accessToken, err := utils.GenerateAccessTokenWithExpiry(user.ID, user.Role, tokenExpiry)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Login failed"})
		return
	}
	refreshJTI, err := utils.GenerateRefreshToken(user.ID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Could not store refresh token"})
		return
	}

	var setting models.Setting
	err = db.Model(&models.Setting{}).
		Select("name, company, logo, support_link").
		Take(&setting).Error
	healthy := err == nil

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Login successful",
		Data: map[string]interface{}{
			"access_token":  accessToken,
			"access_expire": exp.UTC().Format(time.RFC3339),
			"refresh_token": refreshJTI,
			"user": map[string]interface{}{
				"id":              user.ID,
				"name":            user.Name,
				"email":           user.Email,
				"role":            user.Role,
				"organization_id": user.OrganizationID,
				"profile":         user.Profile,
			},
			"application": map[string]interface{}{
				"name":         setting.Name,
				"company":      setting.Company,
				"logo":         setting.Logo,
				"support_link": setting.SupportLink,
				"healthy":      healthy,
			},
		},
	})
}
