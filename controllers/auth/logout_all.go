package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/Rasheed240/ApexBuild-BE-sub002/database"
	"github.com/Rasheed240/ApexBuild-BE-sub002/models"
	"github.com/Rasheed240/ApexBuild-BE-sub002/utils"
)

// LogoutAllHandler revokes all refresh tokens for the authenticated user
func LogoutAllHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	// Best-effort: revoke current access token jti if present
	authz := r.Header.Get("Authorization")
	if authz != "" && strings.HasPrefix(authz, "Bearer ") {
		tokenStr := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
		if _, claims, err := utils.ValidateAccessToken(tokenStr); err == nil && claims != nil {
			if jtiRaw, ok := claims["jti"].(string); ok && jtiRaw != "" {
				var ttl time.Duration
				if expRaw, ok := claims["exp"].(float64); ok {
					ttl = time.Until(time.Unix(int64(expRaw), 0))
				}
				if ttl < 0 {
					ttl = 0
				}
				_ = utils.RevokeJTI(jtiRaw, ttl)
			}
		}
	}

	if database.DB == nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	if err := database.DB.Model(&models.RefreshToken{}).Where("user_id = ?", uid).Update("revoked", true).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "All sessions revoked"})
}
