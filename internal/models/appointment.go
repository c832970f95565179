package models

import "time"

const (
	DateLayout      = "2006-01-02"
	TimeOfDayLayout = "15:04"
)

// Appointment is created by a doctor or hospital on behalf of a patient.
// There is no update or cancellation.
type Appointment struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patientId"`
	PatientName string    `json:"patientName"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Purpose     string    `json:"purpose"`
	Notes       string    `json:"notes,omitempty"`
	DoctorID    string    `json:"doctorId"`
	DoctorName  string    `json:"doctorName"`
	CreatedAt   time.Time `json:"createdAt"`
}
