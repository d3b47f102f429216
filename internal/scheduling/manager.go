package scheduling

import (
	"context"
	"errors"
	"time"

	"clinic-management-server/internal/authz"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/utils"
)

var (
	// ErrDoctorNotFound means the booking referenced an unknown doctor.
	ErrDoctorNotFound = errors.New("doctor not found")
	// ErrAppointmentNotFound means the id resolved to no appointment.
	ErrAppointmentNotFound = errors.New("appointment not found")
	// ErrNotPermitted means the actor failed the authorization policy.
	ErrNotPermitted = errors.New("not permitted to modify this appointment")
)

// AppointmentStore is the persistence surface the lifecycle manager
// works against.
type AppointmentStore interface {
	// DoctorWithSchedules loads a doctor and their weekly schedule.
	DoctorWithSchedules(ctx context.Context, doctorID string) (*models.Doctor, error)
	// TakenAppointments returns the doctor's non-cancelled appointments on a date.
	TakenAppointments(ctx context.Context, doctorID string, date models.DateOnly) ([]models.Appointment, error)
	// CreateIfSlotFree atomically re-checks the slot and inserts, returning
	// ErrSlotTaken when another non-cancelled appointment holds it.
	CreateIfSlotFree(ctx context.Context, appt *models.Appointment) error
	// ByID loads an appointment with its parties.
	ByID(ctx context.Context, id string) (*models.Appointment, error)
	// UpdateStatus persists a status change plus optional notes.
	UpdateStatus(ctx context.Context, appt *models.Appointment, status models.AppointmentStatus, notes string) error
}

// Manager drives the appointment lifecycle: booking against the
// availability rules and moving appointments through the status machine.
type Manager struct {
	store AppointmentStore
	now   func() time.Time
}

// NewManager creates a Manager backed by the given store.
func NewManager(store AppointmentStore) *Manager {
	return &Manager{store: store, now: time.Now}
}

// BookingRequest carries the validated booking parameters.
type BookingRequest struct {
	PatientID string
	DoctorID  string
	Date      models.DateOnly
	Time      string
	Reason    string
	Notes     string
}

// Book creates a pending appointment after checking that the date lies in
// the future and the slot is open. The final slot check happens inside
// the store's transaction, so a racing second booking of the same slot
// gets ErrSlotTaken instead of a silent double booking.
func (m *Manager) Book(ctx context.Context, req BookingRequest) (*models.Appointment, error) {
	if err := utils.ValidateFutureDate(req.Date.Time, m.now()); err != nil {
		return nil, err
	}

	doctor, err := m.store.DoctorWithSchedules(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}

	taken, err := m.store.TakenAppointments(ctx, req.DoctorID, req.Date)
	if err != nil {
		return nil, err
	}

	slot := Slot{Date: req.Date, Time: req.Time}
	if err := CheckAvailability(doctor, doctor.Schedules, taken, slot); err != nil {
		return nil, err
	}

	appt := &models.Appointment{
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		AppointmentDate: req.Date,
		AppointmentTime: req.Time,
		Reason:          req.Reason,
		Notes:           req.Notes,
		Status:          models.StatusPending,
	}
	if err := m.store.CreateIfSlotFree(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// SetStatus moves an appointment to newStatus on behalf of actor. The
// authorization policy decides who may request the change (cancellation
// is open to the booking patient, other transitions to the assigned
// doctor or an admin) and the transition table decides whether the move
// is legal from the current status.
func (m *Manager) SetStatus(ctx context.Context, actor authz.Actor, appointmentID string, newStatus models.AppointmentStatus, notes string) (*models.Appointment, error) {
	appt, err := m.store.ByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	action := authz.ActionUpdateStatus
	if newStatus == models.StatusCancelled {
		action = authz.ActionCancel
	}
	ref := authz.AppointmentRef{PatientID: appt.PatientID, DoctorID: appt.DoctorID}
	if !authz.Can(actor, action, ref) {
		return nil, ErrNotPermitted
	}

	if !CanTransition(appt.Status, newStatus) {
		return nil, ErrInvalidTransition
	}

	if err := m.store.UpdateStatus(ctx, appt, newStatus, notes); err != nil {
		return nil, err
	}
	return appt, nil
}
