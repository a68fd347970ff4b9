package models

// DashboardStats is the admin overview.
type DashboardStats struct {
	TotalStudents      int                `json:"totalStudents"`
	TotalCourses       int                `json:"totalCourses"`
	TotalAssignments   int                `json:"totalAssignments"`
	PendingSubmissions int                `json:"pendingSubmissions"`
	RecentSubmissions  []RecentSubmission `json:"recentSubmissions"`
}
