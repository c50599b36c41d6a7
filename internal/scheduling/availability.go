package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/models"
)

// MinuteOfDay converts an "HH:MM" string to its minute offset from midnight.
func MinuteOfDay(hhmm string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(hhmm, "%2d:%2d", &h, &m); err != nil {
		return 0, ErrInvalidTime
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || len(hhmm) != 5 || hhmm[2] != ':' {
		return 0, ErrInvalidTime
	}
	return h*60 + m, nil
}

// ParseDate parses a calendar date and returns its weekday (0=Sunday).
func ParseDate(date string) (time.Weekday, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, ErrInvalidDate
	}
	return t.Weekday(), nil
}

// AvailabilityIndex manages per-doctor weekly recurring open-hour windows.
type AvailabilityIndex struct {
	db *gorm.DB
}

// NewAvailabilityIndex creates an AvailabilityIndex backed by the database.
func NewAvailabilityIndex(db *gorm.DB) *AvailabilityIndex {
	return &AvailabilityIndex{db: db}
}

// Window returns the doctor's window for the given weekday, or ErrNotFound.
func (ix *AvailabilityIndex) Window(ctx context.Context, doctorID string, day time.Weekday) (*models.Availability, error) {
	var window models.Availability
	err := ix.db.WithContext(ctx).
		Where("doctor_id = ? AND day_of_week = ?", doctorID, int(day)).
		First(&window).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &window, nil
}

// WindowsFor returns all windows for a doctor ordered by weekday.
func (ix *AvailabilityIndex) WindowsFor(ctx context.Context, doctorID string) ([]models.Availability, error) {
	var windows []models.Availability
	err := ix.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("day_of_week asc").
		Find(&windows).Error
	return windows, err
}

// UpsertRequest describes a window change from the owning doctor.
type UpsertRequest struct {
	DoctorID    string
	DayOfWeek   int // 0=Sunday .. 6=Saturday
	StartTime   string
	EndTime     string
	IsAvailable bool
}

// Upsert inserts or updates the window for (doctor, weekday), keeping at most
// one row per day. The caller must own the doctor profile.
func (ix *AvailabilityIndex) Upsert(ctx context.Context, callerUserID string, req UpsertRequest) (*models.Availability, error) {
	if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
		return nil, ErrInvalidDate
	}
	start, err := MinuteOfDay(req.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := MinuteOfDay(req.EndTime)
	if err != nil {
		return nil, err
	}
	if start >= end {
		return nil, ErrInvalidTime
	}

	var doctor models.Doctor
	if err := ix.db.WithContext(ctx).First(&doctor, "id = ?", req.DoctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if doctor.UserID != callerUserID {
		return nil, ErrForbidden
	}

	var window models.Availability
	err = ix.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("doctor_id = ? AND day_of_week = ?", req.DoctorID, req.DayOfWeek).
			First(&window).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			window = models.Availability{
				DoctorID:    req.DoctorID,
				DayOfWeek:   req.DayOfWeek,
				StartTime:   req.StartTime,
				EndTime:     req.EndTime,
				IsAvailable: req.IsAvailable,
			}
			return tx.Create(&window).Error
		case err != nil:
			return err
		default:
			window.StartTime = req.StartTime
			window.EndTime = req.EndTime
			window.IsAvailable = req.IsAvailable
			return tx.Save(&window).Error
		}
	})
	if err != nil {
		return nil, err
	}
	return &window, nil
}

// withinWindow reports whether t lies in the half-open interval [start, end).
func withinWindow(window *models.Availability, minute int) (bool, error) {
	start, err := MinuteOfDay(window.StartTime)
	if err != nil {
		return false, err
	}
	end, err := MinuteOfDay(window.EndTime)
	if err != nil {
		return false, err
	}
	return start <= minute && minute < end, nil
}
