package models

// ScheduleTemplate is a doctor's recurring weekly availability rule for one
// day of the week. Times are clinic-local wall-clock values in HH:mm form.
// A doctor keeps at most one template per day; saving again replaces it.
type ScheduleTemplate struct {
	BaseModel
	DoctorID  string `gorm:"size:36;uniqueIndex:idx_doctor_day" json:"doctorId"`
	DayOfWeek int    `gorm:"uniqueIndex:idx_doctor_day" json:"dayOfWeek"` // 0=Sunday .. 6=Saturday
	StartTime string `gorm:"size:5" json:"startTime"`
	EndTime   string `gorm:"size:5" json:"endTime"`

	Doctor User `gorm:"foreignKey:DoctorID" json:"-"`
}
