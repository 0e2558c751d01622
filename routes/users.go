package routes

import (
	"net/http"
	"time"

	"github.com/Rasheed240/ApexBuild-BE-sub002/controllers/auth"
	"github.com/Rasheed240/ApexBuild-BE-sub002/controllers/users"
	"github.com/Rasheed240/ApexBuild-BE-sub002/middleware"
	"github.com/Rasheed240/ApexBuild-BE-sub002/workflow"

	"github.com/gorilla/mux"
)

// UsersRoutes registers the authentication, task, and review endpoints.
func UsersRoutes(api *mux.Router, svc *workflow.Service) {
	// Rate limiter login/register: 60 per IP per 5 minutes
	loginLimiter := middleware.NewIPRateLimiter(60, 5*time.Minute)
	// Rate limiter session: 120 read, 60 write per user per minute
	userLimiter := middleware.NewUserRateLimiter(120, 60, 60)

	reviewCtl := users.NewReviewController(svc)

	authed := func(h http.HandlerFunc) http.Handler {
		return userLimiter.Middleware(middleware.AuthMiddleware(h))
	}

	// Register & Login
	api.Handle("/register", loginLimiter.Middleware(http.HandlerFunc(auth.RegisterHandler))).Methods(http.MethodPost)
	api.Handle("/login", loginLimiter.Middleware(http.HandlerFunc(auth.LoginHandler))).Methods(http.MethodPost)
	api.Handle("/refresh", loginLimiter.Middleware(http.HandlerFunc(auth.RefreshHandler))).Methods(http.MethodPost)
	api.Handle("/logout", authed(auth.LogoutHandler)).Methods(http.MethodPost)
	api.Handle("/logout-all", authed(auth.LogoutAllHandler)).Methods(http.MethodPost)

	// Account
	api.Handle("/users/me", authed(users.InfoHandler)).Methods(http.MethodGet)
	api.Handle("/users/change-password", authed(users.ChangePasswordHandler)).Methods(http.MethodPost)

	// Tasks as seen by the assignee
	api.Handle("/tasks", authed(users.TaskListHandler)).Methods(http.MethodGet)
	api.Handle("/tasks/{id:[0-9]+}", authed(users.TaskDetailHandler)).Methods(http.MethodGet)
	api.Handle("/tasks/{id:[0-9]+}/updates", authed(users.SubmitUpdateHandler)).Methods(http.MethodPost)
	api.Handle("/tasks/{id:[0-9]+}/updates", authed(reviewCtl.TaskUpdates)).Methods(http.MethodGet)

	// Review workflow
	api.Handle("/tasks/updates/{id:[0-9]+}/review/{tier}", authed(reviewCtl.ReviewUpdate)).Methods(http.MethodPost)
	api.Handle("/tasks/{id:[0-9]+}/complete", authed(reviewCtl.CompleteTask)).Methods(http.MethodPost)
	api.Handle("/reviews/pending", authed(reviewCtl.PendingReviews)).Methods(http.MethodGet)

	// Media attachments for task updates
	api.Handle("/media", authed(users.UploadMediaHandler)).Methods(http.MethodPost)

	// Notifications
	api.Handle("/notifications", authed(users.NotificationListHandler)).Methods(http.MethodGet)
	api.Handle("/notifications/read-all", authed(users.NotificationReadAllHandler)).Methods(http.MethodPost)
	api.Handle("/notifications/{id:[0-9]+}/read", authed(users.NotificationReadHandler)).Methods(http.MethodPost)
}
