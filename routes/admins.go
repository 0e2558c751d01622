package routes

import (
	"net/http"

	"github.com/Rasheed240/ApexBuild-BE-sub002/controllers/admins"
	"github.com/Rasheed240/ApexBuild-BE-sub002/middleware"
	"github.com/Rasheed240/ApexBuild-BE-sub002/models"

	"github.com/gorilla/mux"
)

// SetAdminRoutes registers the management surface. Everything here requires
// an elevated role; org-level scoping happens inside the handlers.
func SetAdminRoutes(api *mux.Router) {
	adminRouter := api.PathPrefix("/admin").Subrouter()
	adminRouter.Use(middleware.RequireRoles(models.RoleProjectAdmin, models.RoleOrgAdmin))

	// Dashboard stats
	adminRouter.Handle("/dashboard", http.HandlerFunc(admins.GetDashboardStats)).Methods(http.MethodGet)

	// Organization management
	adminRouter.Handle("/organizations", http.HandlerFunc(admins.ListOrganizationsHandler)).Methods(http.MethodGet)
	adminRouter.Handle("/organizations", http.HandlerFunc(admins.CreateOrganizationHandler)).Methods(http.MethodPost)
	adminRouter.Handle("/organizations/{id:[0-9]+}/rotate-join-code", http.HandlerFunc(admins.RotateJoinCodeHandler)).Methods(http.MethodPost)

	// Project management
	adminRouter.Handle("/projects", http.HandlerFunc(admins.ListProjectsHandler)).Methods(http.MethodGet)
	adminRouter.Handle("/projects", http.HandlerFunc(admins.CreateProjectHandler)).Methods(http.MethodPost)
	adminRouter.Handle("/projects/{id:[0-9]+}", http.HandlerFunc(admins.UpdateProjectHandler)).Methods(http.MethodPut)
	adminRouter.Handle("/projects/{id:[0-9]+}/status", http.HandlerFunc(admins.UpdateProjectStatusHandler)).Methods(http.MethodPatch)

	// Department management
	adminRouter.Handle("/departments", http.HandlerFunc(admins.ListDepartmentsHandler)).Methods(http.MethodGet)
	adminRouter.Handle("/departments", http.HandlerFunc(admins.CreateDepartmentHandler)).Methods(http.MethodPost)
	adminRouter.Handle("/departments/{id:[0-9]+}/supervisor", http.HandlerFunc(admins.AssignSupervisorHandler)).Methods(http.MethodPatch)

	// Contractor management
	adminRouter.Handle("/contractors", http.HandlerFunc(admins.ListContractorsHandler)).Methods(http.MethodGet)
	adminRouter.Handle("/contractors", http.HandlerFunc(admins.CreateContractorHandler)).Methods(http.MethodPost)
	adminRouter.Handle("/contractors/{id:[0-9]+}", http.HandlerFunc(admins.UpdateContractorHandler)).Methods(http.MethodPut)

	// Task management
	adminRouter.Handle("/tasks", http.HandlerFunc(admins.ListTasksHandler)).Methods(http.MethodGet)
	adminRouter.Handle("/tasks", http.HandlerFunc(admins.CreateTaskHandler)).Methods(http.MethodPost)
	adminRouter.Handle("/tasks/{id:[0-9]+}/assignee", http.HandlerFunc(admins.AssignTaskHandler)).Methods(http.MethodPatch)
	adminRouter.Handle("/tasks/{id:[0-9]+}/cancel", http.HandlerFunc(admins.CancelTaskHandler)).Methods(http.MethodPost)
	adminRouter.Handle("/tasks/{id:[0-9]+}", http.HandlerFunc(admins.DeleteTaskHandler)).Methods(http.MethodDelete)

	// User management
	adminRouter.Handle("/users", http.HandlerFunc(admins.ListUsersHandler)).Methods(http.MethodGet)
	adminRouter.Handle("/users", http.HandlerFunc(admins.CreateUserHandler)).Methods(http.MethodPost)
	adminRouter.Handle("/users/{id:[0-9]+}/role", http.HandlerFunc(admins.UpdateUserRoleHandler)).Methods(http.MethodPatch)
	adminRouter.Handle("/users/{id:[0-9]+}/status", http.HandlerFunc(admins.UpdateUserStatusHandler)).Methods(http.MethodPatch)

	// Application settings
	adminRouter.Handle("/settings", http.HandlerFunc(admins.GetSettingsHandler)).Methods(http.MethodGet)
	adminRouter.Handle("/settings", http.HandlerFunc(admins.UpdateSettingsHandler)).Methods(http.MethodPut)
}
