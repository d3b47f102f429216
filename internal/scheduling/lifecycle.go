package scheduling

import (
	"errors"

	"clinic-management-server/internal/models"
)

// ErrInvalidTransition is returned for status changes the lifecycle does
// not allow.
var ErrInvalidTransition = errors.New("invalid appointment status transition")

// transitions is the appointment state machine. Statuses missing from the
// map (cancelled, completed, no_show) are terminal.
var transitions = map[models.AppointmentStatus][]models.AppointmentStatus{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusCompleted, models.StatusCancelled, models.StatusNoShow},
}

// CanTransition reports whether an appointment may move from one status
// to another.
func CanTransition(from, to models.AppointmentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist from s.
func IsTerminal(s models.AppointmentStatus) bool {
	return len(transitions[s]) == 0
}
