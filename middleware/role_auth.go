package middleware

import (
	"net/http"

	"github.com/Rasheed240/ApexBuild-BE-sub002/database"
	"github.com/Rasheed240/ApexBuild-BE-sub002/models"
	"github.com/Rasheed240/ApexBuild-BE-sub002/utils"
)

// RequireRoles wraps AuthMiddleware and additionally checks that the token
// role is one of the allowed roles and that the account still exists and is
// active. Relationship-level authority (which department, which project) is
// enforced inside the handlers and the workflow service, not here.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next http.Handler) http.Handler {
		return AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := utils.GetUserRole(r)
			if !allowed[role] && !models.IsPlatformOverride(role) {
				utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
					Success: false,
					Message: "Forbidden: insufficient role",
				})
				return
			}

			uid, ok := utils.GetUserID(r)
			if !ok || uid == 0 {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
					Success: false,
					Message: "Unauthorized",
				})
				return
			}
			var user models.User
			if err := database.DB.Select("id", "status").First(&user, uid).Error; err != nil {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
					Success: false,
					Message: "Unauthorized: account not found",
				})
				return
			}
			if user.Status != "Active" {
				utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
					Success: false,
					Message: "Forbidden",
				})
				return
			}

			next.ServeHTTP(w, r)
		}))
	}
}
