package models

import (
	"time"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "SCHEDULED"
	StatusConfirmed  AppointmentStatus = "CONFIRMED"
	StatusInProgress AppointmentStatus = "IN_PROGRESS"
	StatusCompleted  AppointmentStatus = "COMPLETED"
	StatusCancelled  AppointmentStatus = "CANCELLED"
	StatusNoShow     AppointmentStatus = "NO_SHOW"
)

// IsTerminal reports whether no further transitions are permitted from s.
func (s AppointmentStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Appointment represents a scheduled medical appointment
type Appointment struct {
	BaseModel
	PatientID       string            `gorm:"size:36;index" json:"patientId"`
	DoctorID        string            `gorm:"size:36;index" json:"doctorId"`
	StartAt         time.Time         `gorm:"index" json:"startAt"`
	DurationMinutes int               `gorm:"default:30" json:"durationMinutes"`
	Status          AppointmentStatus `gorm:"size:20;default:'SCHEDULED'" json:"status"`
	Reason          string            `gorm:"size:255" json:"reason,omitempty"`

	// Relations
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  User `gorm:"foreignKey:DoctorID" json:"-"`
}

// EndAt returns the exclusive end of the appointment's interval.
func (a *Appointment) EndAt() time.Time {
	return a.StartAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// Overlaps reports whether the appointment's interval intersects [start, end).
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.StartAt.Before(end) && a.EndAt().After(start)
}
