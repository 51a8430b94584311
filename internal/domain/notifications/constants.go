package notifications

const (
	TypeTaskAssigned     = "task_assigned"
	TypeTaskRated        = "task_rated"
	TypeLeaveSubmitted   = "leave_submitted"
	TypeLeaveApproved    = "leave_approved"
	TypeLeaveRejected    = "leave_rejected"
	TypeLeaveCancelled   = "leave_cancelled"
	TypePayslipPublished = "payslip_published"
	TypeKRAScored        = "kra_scored"
	TypeMetricAlert      = "metric_alert"
)
