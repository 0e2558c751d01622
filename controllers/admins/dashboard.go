package admins

import (
	"net/http"
	"time"

	"github.com/Rasheed240/ApexBuild-BE-sub002/database"
	"github.com/Rasheed240/ApexBuild-BE-sub002/models"
	"github.com/Rasheed240/ApexBuild-BE-sub002/utils"

	"gorm.io/gorm"
)

type DailySubmissions struct {
	Day   string `json:"day"`
	Count *int64 `json:"count"`
}

type RecentReview struct {
	TaskCode      string    `json:"task_code"`
	TaskTitle     string    `json:"task_title"`
	SubmitterName string    `json:"submitter_name"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type PendingByTier struct {
	Contractor *int64 `json:"contractor"`
	Supervisor *int64 `json:"supervisor"`
	Admin      *int64 `json:"admin"`
}

type DashboardStats struct {
	TotalUsers        int64              `json:"total_users"`
	ActiveProjects    int64              `json:"active_projects"`
	TotalTasks        int64              `json:"total_tasks"`
	TasksInProgress   int64              `json:"tasks_in_progress"`
	TasksCompleted    int64              `json:"tasks_completed"`
	TasksOverdue      int64              `json:"tasks_overdue"`
	PendingByTier     PendingByTier      `json:"pending_by_tier"`
	SubmissionsByDay  []DailySubmissions `json:"submissions_by_day"`
	RecentSubmissions []RecentReview     `json:"recent_submissions"`
}

// GET /api/admin/dashboard
func GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := requesterOrg(r)
	if !ok {
		writeUnauthorized(w)
		return
	}

	var stats DashboardStats
	db := database.DB

	// initialize slices to ensure empty arrays are returned (not null)
	stats.SubmissionsByDay = make([]DailySubmissions, 0)
	stats.RecentSubmissions = make([]RecentReview, 0)

	db.Model(&models.User{}).Where("organization_id = ?", orgID).Count(&stats.TotalUsers)
	db.Model(&models.Project{}).Where("organization_id = ? AND status = ?", orgID, "Active").Count(&stats.ActiveProjects)

	orgTasks := func() *gorm.DB {
		return db.Model(&models.Task{}).
			Joins("JOIN departments ON departments.id = tasks.department_id").
			Joins("JOIN projects ON projects.id = departments.project_id").
			Where("projects.organization_id = ? AND tasks.deleted = ?", orgID, false)
	}
	orgTasks().Count(&stats.TotalTasks)
	orgTasks().Where("tasks.status = ?", models.TaskInProgress).Count(&stats.TasksInProgress)
	orgTasks().Where("tasks.status = ?", models.TaskCompleted).Count(&stats.TasksCompleted)
	orgTasks().
		Where("tasks.due_date IS NOT NULL AND tasks.due_date < NOW() AND tasks.status NOT IN ?",
			[]models.TaskStatus{models.TaskCompleted, models.TaskCancelled}).
		Count(&stats.TasksOverdue)

	countUpdates := func(statuses []models.UpdateStatus) *int64 {
		var n int64
		db.Model(&models.TaskUpdate{}).
			Joins("JOIN tasks ON tasks.id = task_updates.task_id").
			Joins("JOIN departments ON departments.id = tasks.department_id").
			Joins("JOIN projects ON projects.id = departments.project_id").
			Where("projects.organization_id = ? AND task_updates.status IN ?", orgID, statuses).
			Count(&n)
		return &n
	}
	stats.PendingByTier.Contractor = countUpdates([]models.UpdateStatus{models.UpdateSubmitted})
	stats.PendingByTier.Supervisor = countUpdates([]models.UpdateStatus{models.UpdateUnderSupervisorReview})
	stats.PendingByTier.Admin = countUpdates([]models.UpdateStatus{models.UpdateUnderAdminReview})

	// submissions grouped by day over the last 7 days
	rows, err := db.Model(&models.TaskUpdate{}).
		Select("DATE_FORMAT(task_updates.created_at, '%W') as day, COUNT(*) as count").
		Joins("JOIN tasks ON tasks.id = task_updates.task_id").
		Joins("JOIN departments ON departments.id = tasks.department_id").
		Joins("JOIN projects ON projects.id = departments.project_id").
		Where("projects.organization_id = ? AND task_updates.created_at >= NOW() - INTERVAL 7 DAY", orgID).
		Group("DATE_FORMAT(task_updates.created_at, '%W')").
		Rows()
	submissionMap := map[string]int64{}
	if err == nil {
		for rows.Next() {
			var day string
			var count int64
			if err := rows.Scan(&day, &count); err == nil {
				submissionMap[day] = count
			}
		}
		rows.Close()
	}
	for i := 6; i >= 0; i-- {
		day := time.Now().AddDate(0, 0, -i).Format("Monday")
		count := submissionMap[day]
		stats.SubmissionsByDay = append(stats.SubmissionsByDay, DailySubmissions{Day: day, Count: &count})
	}

	// latest submissions with joined display columns
	db.Model(&models.TaskUpdate{}).
		Select("tasks.code as task_code, tasks.title as task_title, users.name as submitter_name, task_updates.status, task_updates.created_at").
		Joins("JOIN tasks ON tasks.id = task_updates.task_id").
		Joins("JOIN departments ON departments.id = tasks.department_id").
		Joins("JOIN projects ON projects.id = departments.project_id").
		Joins("JOIN users ON users.id = task_updates.submitter_id").
		Where("projects.organization_id = ?", orgID).
		Order("task_updates.created_at DESC").
		Limit(10).
		Find(&stats.RecentSubmissions)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: stats})
}
