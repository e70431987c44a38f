package models

// DashboardStats is the role-scoped summary behind the dashboard. Fields a
// role does not surface stay zero: admins get the tenant-wide counts, doctors
// get their own caseload instead.
type DashboardStats struct {
	UserCount          int64 `json:"user_count"`
	PatientCount       int64 `json:"patient_count"`
	InvestigationCount int64 `json:"investigation_count"`
	RecentActivity     int64 `json:"recent_activity"`
	MyPatientCount     int64 `json:"my_patient_count"`
	RecentCases        int64 `json:"recent_cases"`
	PendingReports     int64 `json:"pending_reports"`
	ClinicCount        int64 `json:"clinic_count"`
	BranchCount        int64 `json:"branch_count"`
}
