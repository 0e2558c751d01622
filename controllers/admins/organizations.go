package admins

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"strings"

	"github.com/Rasheed240/ApexBuild-BE-sub002/database"
	"github.com/Rasheed240/ApexBuild-BE-sub002/middleware"
	"github.com/Rasheed240/ApexBuild-BE-sub002/models"
	"github.com/Rasheed240/ApexBuild-BE-sub002/utils"

	"gorm.io/gorm"
)

type OrganizationRequest struct {
	Name    string  `json:"name" validate:"required,nameok"`
	Address *string `json:"address"`
}

// GET /api/admin/organizations
// Platform-override only; everyone else sees exactly one organization.
func ListOrganizationsHandler(w http.ResponseWriter, r *http.Request) {
	role := utils.GetUserRole(r)
	db := database.DB

	var orgs []models.Organization
	if models.IsPlatformOverride(role) {
		if err := db.Order("id ASC").Find(&orgs).Error; err != nil {
			writeServerError(w)
			return
		}
	} else {
		orgID, _, ok := requesterOrg(r)
		if !ok {
			writeUnauthorized(w)
			return
		}
		var org models.Organization
		if err := db.First(&org, orgID).Error; err != nil {
			writeServerError(w)
			return
		}
		orgs = []models.Organization{org}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: orgs})
}

// POST /api/admin/organizations
func CreateOrganizationHandler(w http.ResponseWriter, r *http.Request) {
	if !models.IsPlatformOverride(utils.GetUserRole(r)) {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Only the platform administrator can create organizations"})
		return
	}
	var req OrganizationRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	code, err := generateUniqueJoinCode(database.DB, 8)
	if err != nil {
		writeServerError(w)
		return
	}
	org := models.Organization{
		Name:     strings.TrimSpace(req.Name),
		JoinCode: code,
		Address:  req.Address,
		Status:   "Active",
	}
	if err := database.DB.Create(&org).Error; err != nil {
		writeServerError(w)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Organization created", Data: org})
}

// POST /api/admin/organizations/{id}/rotate-join-code
// Invalidates the old join code so departed members cannot re-register.
func RotateJoinCodeHandler(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := requesterOrg(r)
	if !ok {
		writeUnauthorized(w)
		return
	}
	id, ok := pathID(r, "id")
	if !ok || id != orgID {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "You cannot manage this organization"})
		return
	}

	code, err := generateUniqueJoinCode(database.DB, 8)
	if err != nil {
		writeServerError(w)
		return
	}
	res := database.DB.Model(&models.Organization{}).Where("id = ?", id).Update("join_code", code)
	if res.Error != nil {
		writeServerError(w)
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Organization not found"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Join code rotated", Data: map[string]interface{}{"join_code": code}})
}

func generateUniqueJoinCode(db *gorm.DB, length int) (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	maxAttempts := 100

	for attempt := 0; attempt < maxAttempts; attempt++ {
		code, err := randomString(alphabet, length)
		if err != nil {
			return "", err
		}
		var count int64
		if err := db.Model(&models.Organization{}).Where("join_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique join code after %d attempts", maxAttempts)
}

func randomString(alphabet string, length int) (string, error) {
	buf := make([]byte, length)
	out := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := 0; i < length; i++ {
		out[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return string(out), nil
}
