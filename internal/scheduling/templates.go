package scheduling

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"clinic-scheduler-server/internal/models"
)

// TemplateInput is a doctor's weekly availability rule for one day.
type TemplateInput struct {
	DayOfWeek int    // 0=Sunday .. 6=Saturday
	StartTime string // HH:mm
	EndTime   string // HH:mm
}

func (in TemplateInput) validate() error {
	if in.DayOfWeek < 0 || in.DayOfWeek > 6 {
		return fmt.Errorf("dayOfWeek must be between 0 and 6, got %d", in.DayOfWeek)
	}
	startH, startM, err := parseClockTime(in.StartTime)
	if err != nil {
		return err
	}
	endH, endM, err := parseClockTime(in.EndTime)
	if err != nil {
		return err
	}
	if endH*60+endM <= startH*60+startM {
		return ErrInvalidTimeRange
	}
	return nil
}

// SaveTemplate upserts the doctor's availability for a day of the week: if a
// template already exists for (doctor, day) its times are replaced, else a
// new one is created.
func (s *Service) SaveTemplate(ctx context.Context, doctorID string, in TemplateInput) (*models.ScheduleTemplate, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var tmpl models.ScheduleTemplate
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("doctor_id = ? AND day_of_week = ?", doctorID, in.DayOfWeek).First(&tmpl).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tmpl = models.ScheduleTemplate{
				DoctorID:  doctorID,
				DayOfWeek: in.DayOfWeek,
				StartTime: in.StartTime,
				EndTime:   in.EndTime,
			}
			return tx.Create(&tmpl).Error
		}
		if err != nil {
			return err
		}
		tmpl.StartTime = in.StartTime
		tmpl.EndTime = in.EndTime
		return tx.Model(&tmpl).Updates(map[string]interface{}{
			"start_time": in.StartTime,
			"end_time":   in.EndTime,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// UpdateTemplate rewrites an existing template by id, scoped to its owning
// doctor. Moving a template onto a day that already has one replaces the
// other template, keeping at most one per (doctor, day).
func (s *Service) UpdateTemplate(ctx context.Context, doctorID, templateID string, in TemplateInput) (*models.ScheduleTemplate, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var tmpl models.ScheduleTemplate
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND doctor_id = ?", templateID, doctorID).First(&tmpl).Error; err != nil {
			return err
		}
		if tmpl.DayOfWeek != in.DayOfWeek {
			err := tx.Where("doctor_id = ? AND day_of_week = ? AND id != ?", doctorID, in.DayOfWeek, templateID).
				Delete(&models.ScheduleTemplate{}).Error
			if err != nil {
				return err
			}
		}
		tmpl.DayOfWeek = in.DayOfWeek
		tmpl.StartTime = in.StartTime
		tmpl.EndTime = in.EndTime
		return tx.Model(&tmpl).Updates(map[string]interface{}{
			"day_of_week": in.DayOfWeek,
			"start_time":  in.StartTime,
			"end_time":    in.EndTime,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// DeleteTemplate removes a template by id, scoped to its owning doctor. The
// day immediately stops producing availability; already-booked appointments
// are left alone.
func (s *Service) DeleteTemplate(ctx context.Context, doctorID, templateID string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND doctor_id = ?", templateID, doctorID).
		Delete(&models.ScheduleTemplate{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListTemplates returns the doctor's weekly availability ordered by day.
func (s *Service) ListTemplates(ctx context.Context, doctorID string) ([]models.ScheduleTemplate, error) {
	var templates []models.ScheduleTemplate
	err := retryRead(func() error {
		return s.db.WithContext(ctx).
			Where("doctor_id = ?", doctorID).
			Order("day_of_week asc").
			Find(&templates).Error
	})
	if err != nil {
		return nil, err
	}
	return templates, nil
}
