package models

// NoticeCategories accepted by the notice board.
var NoticeCategories = []string{
	"General Info",
	"Event Update",
	"Urgent",
	"Technical",
	"Cultural",
}

// Notice is one official notice board entry.
type Notice struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Category  string `json:"category"`
	Author    string `json:"author"`
	Role      string `json:"role"`
	Timestamp When   `json:"timestamp"`
}
