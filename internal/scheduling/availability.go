package scheduling

import (
	"errors"

	"clinic-management-server/internal/models"
)

var (
	// ErrDoctorUnavailable means the doctor has switched off bookings entirely.
	ErrDoctorUnavailable = errors.New("doctor is not available for appointments")
	// ErrNoScheduleForDay means the doctor has no working hours configured for that weekday.
	ErrNoScheduleForDay = errors.New("doctor has no schedule for this day")
	// ErrDayUnavailable means the weekday's schedule row is marked unavailable.
	ErrDayUnavailable = errors.New("doctor is not available on this day")
	// ErrOutsideWorkingHours means the requested time falls outside the day's window.
	ErrOutsideWorkingHours = errors.New("appointment time is outside doctor's working hours")
	// ErrSlotTaken means a non-cancelled appointment already holds the slot.
	ErrSlotTaken = errors.New("this time slot is already booked")
)

// Slot is a bookable unit of doctor time.
type Slot struct {
	Date models.DateOnly
	Time string // "HH:MM", zero-padded
}

// CheckAvailability decides whether the doctor can take a booking at the
// given slot. It is a pure predicate over the doctor row, their weekly
// schedule, and the appointments already holding slots on that date:
// the doctor must accept bookings, the slot's weekday must have an
// available schedule window containing the time (boundaries inclusive),
// and no non-cancelled appointment may occupy the exact slot.
func CheckAvailability(doctor *models.Doctor, schedules []models.DoctorSchedule, taken []models.Appointment, slot Slot) error {
	if !doctor.IsAvailable {
		return ErrDoctorUnavailable
	}

	dayName := slot.Date.Weekday().String()
	var daySchedule *models.DoctorSchedule
	for i := range schedules {
		if schedules[i].Day == dayName {
			daySchedule = &schedules[i]
			break
		}
	}
	if daySchedule == nil {
		return ErrNoScheduleForDay
	}
	if !daySchedule.IsAvailable {
		return ErrDayUnavailable
	}

	// Zero-padded "HH:MM" strings order correctly as text.
	if slot.Time < daySchedule.StartTime || slot.Time > daySchedule.EndTime {
		return ErrOutsideWorkingHours
	}

	for i := range taken {
		a := &taken[i]
		if a.Status == models.StatusCancelled {
			continue
		}
		if a.AppointmentDate.Equal(slot.Date.Time) && a.AppointmentTime == slot.Time {
			return ErrSlotTaken
		}
	}
	return nil
}
