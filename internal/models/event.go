package models

// EventCategoryColors maps calendar categories to their display colour,
// stored with the event so archived calendars render unchanged.
var EventCategoryColors = map[string]string{
	"None":        "#1B264F",
	"Coding Club": "#3B82F6",
	"Art Club":    "#EC4899",
	"Technical":   "#F97316",
	"Cultural":    "#10B981",
	"Sports":      "#06B6D4",
}

// Event is one calendar entry.
type Event struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Date          string `json:"date"`
	Category      string `json:"category"`
	Color         string `json:"color"`
	EventIncharge string `json:"eventIncharge,omitempty"`
	Description   string `json:"description,omitempty"`
	CreatedAt     When   `json:"createdAt"`
}
