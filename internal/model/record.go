package model

// VisitRecord is a plain student visit log entry.
type VisitRecord struct {
	StudentID string `json:"studentId" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	FirstName string `json:"firstName" binding:"required"`
	Concern   string `json:"concern" binding:"required"`
	Nurse     string `json:"nurse" binding:"required"`
	DateTime  string `json:"dateTime" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
}
