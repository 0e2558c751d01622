package admins

import (
	"encoding/json"
	"net/http"

	"github.com/Rasheed240/ApexBuild-BE-sub002/database"
	"github.com/Rasheed240/ApexBuild-BE-sub002/models"
	"github.com/Rasheed240/ApexBuild-BE-sub002/utils"
)

type SettingRequest struct {
	Name           string `json:"name"`
	Company        string `json:"company"`
	Logo           string `json:"logo"`
	Maintenance    bool   `json:"maintenance"`
	ClosedRegister bool   `json:"closed_register"`
	SupportLink    string `json:"support_link"`
}

// GET /api/admin/settings
func GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var setting models.Setting
	if err := database.DB.First(&setting).Error; err != nil {
		writeServerError(w)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: setting})
}

// PUT /api/admin/settings
func UpdateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var req SettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request body"})
		return
	}

	db := database.DB
	var setting models.Setting
	if err := db.First(&setting).Error; err != nil {
		writeServerError(w)
		return
	}

	setting.Name = req.Name
	setting.Company = req.Company
	setting.Logo = req.Logo
	setting.Maintenance = req.Maintenance
	setting.ClosedRegister = req.ClosedRegister
	setting.SupportLink = req.SupportLink
	if err := db.Save(&setting).Error; err != nil {
		writeServerError(w)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Settings updated", Data: setting})
}
