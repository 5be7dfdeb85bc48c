package models

// TaskStatus is a kanban column.
type TaskStatus string

const (
	TaskStatusTodo      TaskStatus = "todo"
	TaskStatusProgress  TaskStatus = "progress"
	TaskStatusReview    TaskStatus = "review"
	TaskStatusCompleted TaskStatus = "completed"
)

// TaskStatuses in board order.
var TaskStatuses = []TaskStatus{
	TaskStatusTodo,
	TaskStatusProgress,
	TaskStatusReview,
	TaskStatusCompleted,
}

// ValidTaskStatus reports whether s names a kanban column.
func ValidTaskStatus(s TaskStatus) bool {
	for _, known := range TaskStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// TaskUpdate is one progress note appended by an assignee.
type TaskUpdate struct {
	Text    string `json:"text"`
	AddedBy string `json:"addedBy"`
	Time    string `json:"time"`
}

// Task is one kanban card bound to an event.
type Task struct {
	ID          string       `json:"id"`
	EventID     string       `json:"eventId"`
	TaskName    string       `json:"taskName"`
	AssignedTo  string       `json:"assignedTo"`
	TeamUpWith  string       `json:"teamUpWith,omitempty"`
	StartDate   string       `json:"startDate"`
	EndDate     string       `json:"endDate"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Updates     []TaskUpdate `json:"updates"`
	CreatedAt   When         `json:"createdAt"`
}
