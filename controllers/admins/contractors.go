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

type ContractorRequest struct {
	CompanyName  string  `json:"company_name" validate:"required,nameok"`
	AdminID      *uint   `json:"admin_id"`
	ContactEmail *string `json:"contact_email"`
	ContactPhone *string `json:"contact_phone"`
}

// GET /api/admin/contractors
func ListContractorsHandler(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := requesterOrg(r)
	if !ok {
		writeUnauthorized(w)
		return
	}
	var contractors []models.Contractor
	if err := database.DB.Where("organization_id = ?", orgID).Order("id ASC").Find(&contractors).Error; err != nil {
		writeServerError(w)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: contractors})
}

// POST /api/admin/contractors
func CreateContractorHandler(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := requesterOrg(r)
	if !ok {
		writeUnauthorized(w)
		return
	}
	var req ContractorRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.AdminID != nil {
		if _, err := orgUser(orgID, *req.AdminID); err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Contractor admin must belong to your organization"})
			return
		}
	}

	contractor := models.Contractor{
		OrganizationID: orgID,
		CompanyName:    strings.TrimSpace(req.CompanyName),
		AdminID:        req.AdminID,
		ContactEmail:   req.ContactEmail,
		ContactPhone:   req.ContactPhone,
		Status:         "Active",
	}
	if err := database.DB.Create(&contractor).Error; err != nil {
		writeServerError(w)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Contractor created", Data: contractor})
}

// PUT /api/admin/contractors/{id}
func UpdateContractorHandler(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := requesterOrg(r)
	if !ok {
		writeUnauthorized(w)
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid contractor id"})
		return
	}

	var contractor models.Contractor
	if err := database.DB.Where("id = ? AND organization_id = ?", id, orgID).First(&contractor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Contractor not found"})
			return
		}
		writeServerError(w)
		return
	}

	var req ContractorRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.AdminID != nil {
		if _, err := orgUser(orgID, *req.AdminID); err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Contractor admin must belong to your organization"})
			return
		}
	}

	contractor.CompanyName = strings.TrimSpace(req.CompanyName)
	contractor.AdminID = req.AdminID
	contractor.ContactEmail = req.ContactEmail
	contractor.ContactPhone = req.ContactPhone
	if err := database.DB.Save(&contractor).Error; err != nil {
		writeServerError(w)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Contractor updated", Data: contractor})
}
