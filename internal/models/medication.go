package models

import "time"

type Frequency string

const (
	FrequencyDaily      Frequency = "daily"
	FrequencyTwiceDaily Frequency = "twice_daily"
	FrequencyWeekly     Frequency = "weekly"
	FrequencyMonthly    Frequency = "monthly"
)

type Medication struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Name      string          `json:"name"`
	Dosage    string          `json:"dosage"`
	Frequency Frequency       `json:"frequency"`
	StartDate string          `json:"startDate"`
	EndDate   string          `json:"endDate,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	Time      []string        `json:"time"`
	Taken     map[string]bool `json:"taken"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ActiveOn reports whether date (YYYY-MM-DD) falls inside the course.
func (m Medication) ActiveOn(date string) bool {
	if date < m.StartDate {
		return false
	}
	if m.EndDate != "" && date > m.EndDate {
		return false
	}
	return true
}
