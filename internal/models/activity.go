package models

// Well-known activity actions recorded by the portal.
const (
	ActivityActionRollover = "Term Rolled Over"
	ActivityActionRestore  = "Timeline Restored"
)

// ActivityEntry is one audit trail record in activity_logs.
type ActivityEntry struct {
	ID        string `json:"id"`
	UserName  string `json:"userName"`
	Role      string `json:"role"`
	Action    string `json:"action"`
	Details   string `json:"details"`
	Timestamp When   `json:"timestamp"`
}
