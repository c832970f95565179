package models

import "time"

type NotificationType string

const (
	NotificationTypeAppointment NotificationType = "appointment"
	NotificationTypeReminder    NotificationType = "reminder"
)

// Notification belongs to exactly one user. Read only moves false -> true.
type Notification struct {
	ID          string              `json:"id"`
	UserID      string              `json:"userId"`
	Type        NotificationType    `json:"type"`
	Read        bool                `json:"read"`
	Date        time.Time           `json:"date"`
	Appointment *Appointment        `json:"appointment,omitempty"`
	Reminder    *MedicationReminder `json:"reminder,omitempty"`
}

type MedicationReminder struct {
	MedicationID string `json:"medicationId"`
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Slot         string `json:"slot"`
	Date         string `json:"date"`
}
