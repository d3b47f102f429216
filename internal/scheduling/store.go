package scheduling

import (
	"context"
	"errors"

	"clinic-management-server/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements AppointmentStore on the application database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store backed by db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) DoctorWithSchedules(ctx context.Context, doctorID string) (*models.Doctor, error) {
	var doctor models.Doctor
	err := s.db.WithContext(ctx).Preload("Schedules").First(&doctor, "id = ?", doctorID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}
	return &doctor, nil
}

func (s *GormStore) TakenAppointments(ctx context.Context, doctorID string, date models.DateOnly) ([]models.Appointment, error) {
	var taken []models.Appointment
	err := s.db.WithContext(ctx).
		Where("doctor_id = ? AND appointment_date = ? AND status <> ?", doctorID, date, models.StatusCancelled).
		Find(&taken).Error
	if err != nil {
		return nil, err
	}
	return taken, nil
}

// CreateIfSlotFree runs in a transaction and prevents double booking by
// locking any non-cancelled row already holding the slot before the
// insert. The partial unique index on (doctor, date, time) backs this up
// at the storage layer, so a writer that slips past the locked check
// still loses with a duplicate-key error rather than double-booking.
func (s *GormStore) CreateIfSlotFree(ctx context.Context, appt *models.Appointment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Appointment
		err := tx.Model(&models.Appointment{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("doctor_id = ? AND appointment_date = ? AND appointment_time = ? AND status <> ?",
				appt.DoctorID, appt.AppointmentDate, appt.AppointmentTime, models.StatusCancelled).
			Take(&existing).Error

		if err == nil {
			return ErrSlotTaken
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(appt).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrSlotTaken
			}
			return err
		}
		return nil
	})
}

func (s *GormStore) ByID(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.WithContext(ctx).
		Preload("Patient.User").
		Preload("Doctor.User").
		Preload("Doctor.Clinic").
		First(&appt, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	return &appt, nil
}

func (s *GormStore) UpdateStatus(ctx context.Context, appt *models.Appointment, status models.AppointmentStatus, notes string) error {
	updates := map[string]interface{}{"status": status}
	if notes != "" {
		updates["notes"] = notes
	}
	if err := s.db.WithContext(ctx).Model(appt).Updates(updates).Error; err != nil {
		return err
	}
	appt.Status = status
	if notes != "" {
		appt.Notes = notes
	}
	return nil
}
