package admins

import (
	"net/http"
	"strconv"

	"github.com/Rasheed240/ApexBuild-BE-sub002/database"
	"github.com/Rasheed240/ApexBuild-BE-sub002/models"
	"github.com/Rasheed240/ApexBuild-BE-sub002/utils"

	"github.com/gorilla/mux"
)

// requesterOrg resolves the caller's organization scope. The platform
// override may act on any organization by passing ?organization_id=;
// everyone else is pinned to their own.
func requesterOrg(r *http.Request) (orgID uint, userID uint, ok bool) {
	uid, found := utils.GetUserID(r)
	if !found || uid == 0 {
		return 0, 0, false
	}
	var user models.User
	if err := database.DB.Select("id, organization_id, role").First(&user, uid).Error; err != nil {
		return 0, 0, false
	}
	if models.IsPlatformOverride(user.Role) {
		if raw := r.URL.Query().Get("organization_id"); raw != "" {
			if n, err := strconv.ParseUint(raw, 10, 32); err == nil && n > 0 {
				return uint(n), uid, true
			}
		}
	}
	return user.OrganizationID, uid, true
}

func pathID(r *http.Request, key string) (uint, bool) {
	n, err := strconv.ParseUint(mux.Vars(r)[key], 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func pageParams(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// orgUser verifies that target user id belongs to orgID and returns the row.
func orgUser(orgID, userID uint) (*models.User, error) {
	var u models.User
	if err := database.DB.Where("id = ? AND organization_id = ?", userID, orgID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func writeUnauthorized(w http.ResponseWriter) {
	utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
}

func writeServerError(w http.ResponseWriter) {
	utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
}
