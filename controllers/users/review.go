package users

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Rasheed240/ApexBuild-BE-sub002/database"
	"github.com/Rasheed240/ApexBuild-BE-sub002/middleware"
	"github.com/Rasheed240/ApexBuild-BE-sub002/models"
	"github.com/Rasheed240/ApexBuild-BE-sub002/utils"
	"github.com/Rasheed240/ApexBuild-BE-sub002/workflow"

	"github.com/gorilla/mux"
)

// ReviewController exposes the task-update review workflow over HTTP.
type ReviewController struct {
	Service *workflow.Service
}

func NewReviewController(svc *workflow.Service) *ReviewController {
	return &ReviewController{Service: svc}
}

type ReviewRequest struct {
	Approve  *bool  `json:"approve" validate:"required"`
	Feedback string `json:"feedback"`
}

func actorFromRequest(r *http.Request) (workflow.Actor, bool) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		return workflow.Actor{}, false
	}
	return workflow.Actor{UserID: uid, Role: utils.GetUserRole(r)}, true
}

func pathID(r *http.Request, key string) (uint, bool) {
	raw := mux.Vars(r)[key]
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func writeWorkflowError(w http.ResponseWriter, err error) {
	utils.WriteJSON(w, workflow.HTTPStatus(err), utils.APIResponse{Success: false, Message: workflow.UserMessage(err)})
}

// POST /api/tasks/updates/{id}/review/{tier}
func (c *ReviewController) ReviewUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	updateID, ok := pathID(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid update id"})
		return
	}

	var req ReviewRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	approve := *req.Approve
	req.Feedback = strings.TrimSpace(req.Feedback)

	var result *workflow.ReviewResult
	var err error
	switch mux.Vars(r)["tier"] {
	case "contractor":
		result, err = c.Service.ReviewByContractorAdmin(r.Context(), actor, updateID, approve, req.Feedback)
	case "supervisor":
		result, err = c.Service.ReviewBySupervisor(r.Context(), actor, updateID, approve, req.Feedback)
	case "admin":
		result, err = c.Service.ReviewByAdmin(r.Context(), actor, updateID, approve, req.Feedback)
	default:
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Unknown review tier"})
		return
	}
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: result.Message, Data: result})
}

// POST /api/tasks/{id}/complete
func (c *ReviewController) CompleteTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	taskID, ok := pathID(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}

	result, err := c.Service.MarkTaskComplete(r.Context(), actor, taskID)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: result.Message, Data: result})
}

// GET /api/reviews/pending?page=&page_size=
func (c *ReviewController) PendingReviews(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var user models.User
	if err := database.DB.Select("id, organization_id").First(&user, actor.UserID).Error; err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	result, err := c.Service.ListPendingReviews(r.Context(), actor, pendingOrgID(r, actor.Role, user.OrganizationID), page, pageSize)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: result})
}

// pendingOrgID resolves which organization's queue to list. The platform
// override may target any organization via ?organization_id=, matching the
// admin surface; everyone else is pinned to their own.
func pendingOrgID(r *http.Request, role string, homeOrgID uint) uint {
	if models.IsPlatformOverride(role) {
		if raw := r.URL.Query().Get("organization_id"); raw != "" {
			if n, err := strconv.ParseUint(raw, 10, 32); err == nil && n > 0 {
				return uint(n)
			}
		}
	}
	return homeOrgID
}

// GET /api/tasks/{id}/updates
func (c *ReviewController) TaskUpdates(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	taskID, ok := pathID(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}

	var user models.User
	if err := database.DB.Select("id, organization_id").First(&user, actor.UserID).Error; err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	updates, err := c.Service.ListUpdatesForTask(r.Context(), actor, user.OrganizationID, taskID)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	items := make([]map[string]interface{}, 0, len(updates))
	for i := range updates {
		u := &updates[i]
		items = append(items, map[string]interface{}{
			"update": u,
			"media":  u.Media(),
		})
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: items})
}
