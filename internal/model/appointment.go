package model

type AppointmentStatus string

const (
	AppointmentStatusPending  AppointmentStatus = "Pending"
	AppointmentStatusAccepted AppointmentStatus = "Accepted"
	AppointmentStatusRejected AppointmentStatus = "Rejected"
)

// Appointment is the canonical projection of a booking. DateTime is an ISO
// 8601 date+time without offset, so lexical range comparison over its date
// prefix is valid.
type Appointment struct {
	ID        string `json:"id"`
	StudentID string `json:"studentId"`
	LastName  string `json:"lastName"`
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
	Concern   string `json:"concern"`
	Nurse     string `json:"nurse"`
	DateTime  string `json:"dateTime"`
	Status    string `json:"status"`
}

type CreateAppointmentRequest struct {
	StudentID string `json:"studentId" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	FirstName string `json:"firstName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Concern   string `json:"concern" binding:"required"`
	Nurse     string `json:"nurse" binding:"required"`
	DateTime  string `json:"dateTime" binding:"required"`
	// Stored as supplied when present, defaults to Pending otherwise.
	Status string `json:"status"`
}
