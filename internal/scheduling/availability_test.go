package scheduling

import (
	"testing"

	"clinic-management-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mondaySlot(clock string) Slot {
	date, err := models.ParseDateOnly("2025-06-16") // a Monday
	if err != nil {
		panic(err)
	}
	return Slot{Date: date, Time: clock}
}

func availableDoctor() *models.Doctor {
	return &models.Doctor{
		BaseModel:   models.BaseModel{ID: "d-1"},
		IsAvailable: true,
	}
}

func mondaySchedule() []models.DoctorSchedule {
	return []models.DoctorSchedule{
		{DoctorID: "d-1", Day: "Monday", StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
		{DoctorID: "d-1", Day: "Friday", StartTime: "09:00", EndTime: "12:00", IsAvailable: false},
	}
}

func TestCheckAvailability_OpenSlot(t *testing.T) {
	err := CheckAvailability(availableDoctor(), mondaySchedule(), nil, mondaySlot("10:00"))
	assert.NoError(t, err)
}

func TestCheckAvailability_BoundaryTimes(t *testing.T) {
	// Working-hours boundaries are bookable
	assert.NoError(t, CheckAvailability(availableDoctor(), mondaySchedule(), nil, mondaySlot("09:00")))
	assert.NoError(t, CheckAvailability(availableDoctor(), mondaySchedule(), nil, mondaySlot("17:00")))

	assert.ErrorIs(t, CheckAvailability(availableDoctor(), mondaySchedule(), nil, mondaySlot("08:59")), ErrOutsideWorkingHours)
	assert.ErrorIs(t, CheckAvailability(availableDoctor(), mondaySchedule(), nil, mondaySlot("17:01")), ErrOutsideWorkingHours)
}

func TestCheckAvailability_DoctorSwitchedOff(t *testing.T) {
	doctor := availableDoctor()
	doctor.IsAvailable = false
	err := CheckAvailability(doctor, mondaySchedule(), nil, mondaySlot("10:00"))
	assert.ErrorIs(t, err, ErrDoctorUnavailable)
}

func TestCheckAvailability_NoScheduleForDay(t *testing.T) {
	tuesday, err := models.ParseDateOnly("2025-06-17")
	require.NoError(t, err)
	got := CheckAvailability(availableDoctor(), mondaySchedule(), nil, Slot{Date: tuesday, Time: "10:00"})
	assert.ErrorIs(t, got, ErrNoScheduleForDay)
}

func TestCheckAvailability_DayMarkedOff(t *testing.T) {
	friday, err := models.ParseDateOnly("2025-06-20")
	require.NoError(t, err)
	got := CheckAvailability(availableDoctor(), mondaySchedule(), nil, Slot{Date: friday, Time: "10:00"})
	assert.ErrorIs(t, got, ErrDayUnavailable)
}

func TestCheckAvailability_SlotTaken(t *testing.T) {
	slot := mondaySlot("10:00")
	taken := []models.Appointment{
		{DoctorID: "d-1", AppointmentDate: slot.Date, AppointmentTime: "10:00", Status: models.StatusPending},
	}

	err := CheckAvailability(availableDoctor(), mondaySchedule(), taken, slot)
	assert.ErrorIs(t, err, ErrSlotTaken)

	// A different time on the same day is still open
	err = CheckAvailability(availableDoctor(), mondaySchedule(), taken, mondaySlot("11:00"))
	assert.NoError(t, err)
}

func TestCheckAvailability_CompletedStillBlocks(t *testing.T) {
	slot := mondaySlot("10:00")
	taken := []models.Appointment{
		{DoctorID: "d-1", AppointmentDate: slot.Date, AppointmentTime: "10:00", Status: models.StatusCompleted},
	}
	assert.ErrorIs(t, CheckAvailability(availableDoctor(), mondaySchedule(), taken, slot), ErrSlotTaken)
}

func TestCheckAvailability_CancelledFreesSlot(t *testing.T) {
	slot := mondaySlot("10:00")
	taken := []models.Appointment{
		{DoctorID: "d-1", AppointmentDate: slot.Date, AppointmentTime: "10:00", Status: models.StatusCancelled},
	}
	assert.NoError(t, CheckAvailability(availableDoctor(), mondaySchedule(), taken, slot))
}
