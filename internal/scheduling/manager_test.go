package scheduling

import (
	"context"
	"fmt"
	"testing"
	"time"

	"clinic-management-server/internal/authz"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory AppointmentStore for manager tests.
type fakeStore struct {
	doctors map[string]*models.Doctor
	appts   map[string]*models.Appointment
	created []*models.Appointment

	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		doctors: make(map[string]*models.Doctor),
		appts:   make(map[string]*models.Appointment),
	}
}

func (f *fakeStore) DoctorWithSchedules(_ context.Context, doctorID string) (*models.Doctor, error) {
	d, ok := f.doctors[doctorID]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	return d, nil
}

func (f *fakeStore) TakenAppointments(_ context.Context, doctorID string, date models.DateOnly) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range f.appts {
		if a.DoctorID == doctorID && a.AppointmentDate.Equal(date.Time) && a.Status != models.StatusCancelled {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateIfSlotFree(_ context.Context, appt *models.Appointment) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, a := range f.appts {
		if a.DoctorID == appt.DoctorID &&
			a.AppointmentDate.Equal(appt.AppointmentDate.Time) &&
			a.AppointmentTime == appt.AppointmentTime &&
			a.Status != models.StatusCancelled {
			return ErrSlotTaken
		}
	}
	if appt.ID == "" {
		appt.ID = fmt.Sprintf("appt-%d", len(f.created)+1)
	}
	f.appts[appt.ID] = appt
	f.created = append(f.created, appt)
	return nil
}

func (f *fakeStore) ByID(_ context.Context, id string) (*models.Appointment, error) {
	a, ok := f.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return a, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, appt *models.Appointment, status models.AppointmentStatus, notes string) error {
	appt.Status = status
	if notes != "" {
		appt.Notes = notes
	}
	return nil
}

func fixedNow() time.Time {
	return time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)
}

func newTestManager(t *testing.T) (*Manager, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	store.doctors["d-1"] = &models.Doctor{
		BaseModel:   models.BaseModel{ID: "d-1"},
		IsAvailable: true,
		Schedules: []models.DoctorSchedule{
			{DoctorID: "d-1", Day: "Monday", StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
		},
	}
	m := NewManager(store)
	m.now = fixedNow
	return m, store
}

func bookingFor(clock string) BookingRequest {
	date, _ := models.ParseDateOnly("2025-06-16") // the Monday after fixedNow
	return BookingRequest{
		PatientID: "p-1",
		DoctorID:  "d-1",
		Date:      date,
		Time:      clock,
		Reason:    "follow-up",
	}
}

func TestManagerBook_CreatesPendingAppointment(t *testing.T) {
	m, store := newTestManager(t)

	appt, err := m.Book(context.Background(), bookingFor("10:00"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, appt.Status)
	assert.Equal(t, "p-1", appt.PatientID)
	assert.Equal(t, "d-1", appt.DoctorID)
	assert.Equal(t, "10:00", appt.AppointmentTime)
	assert.Len(t, store.created, 1)
}

func TestManagerBook_RejectsPastAndToday(t *testing.T) {
	m, _ := newTestManager(t)

	today := bookingFor("10:00")
	today.Date = models.NewDateOnly(fixedNow())
	_, err := m.Book(context.Background(), today)
	assert.ErrorIs(t, err, utils.ErrPastDate)

	past := bookingFor("10:00")
	past.Date, _ = models.ParseDateOnly("2025-06-02")
	_, err = m.Book(context.Background(), past)
	assert.ErrorIs(t, err, utils.ErrPastDate)
}

func TestManagerBook_UnknownDoctor(t *testing.T) {
	m, _ := newTestManager(t)

	req := bookingFor("10:00")
	req.DoctorID = "d-missing"
	_, err := m.Book(context.Background(), req)
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestManagerBook_OutsideWorkingHours(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Book(context.Background(), bookingFor("18:00"))
	assert.ErrorIs(t, err, ErrOutsideWorkingHours)
}

func TestManagerBook_DoubleBookingLosesSecond(t *testing.T) {
	m, store := newTestManager(t)

	_, err := m.Book(context.Background(), bookingFor("10:00"))
	require.NoError(t, err)

	_, err = m.Book(context.Background(), bookingFor("10:00"))
	assert.ErrorIs(t, err, ErrSlotTaken)

	// At most one live appointment holds the slot
	live := 0
	for _, a := range store.appts {
		if a.Status != models.StatusCancelled {
			live++
		}
	}
	assert.Equal(t, 1, live)
}

func TestManagerBook_RaceLoserGetsSlotTaken(t *testing.T) {
	m, store := newTestManager(t)

	// Availability sees a free slot, but the storage-level check fails:
	// the behaviour a booking racing another writer observes.
	store.createErr = ErrSlotTaken
	_, err := m.Book(context.Background(), bookingFor("10:00"))
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestManagerBook_CancelledSlotRebookable(t *testing.T) {
	m, store := newTestManager(t)

	first, err := m.Book(context.Background(), bookingFor("10:00"))
	require.NoError(t, err)

	doctor := authz.Actor{UserID: "u-doc", UserType: models.UserTypeDoctor, DoctorID: "d-1"}
	_, err = m.SetStatus(context.Background(), doctor, first.ID, models.StatusCancelled, "")
	require.NoError(t, err)

	second, err := m.Book(context.Background(), bookingFor("10:00"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, store.created, 2)
}

func seedAppointment(store *fakeStore, status models.AppointmentStatus) *models.Appointment {
	date, _ := models.ParseDateOnly("2025-06-16")
	appt := &models.Appointment{
		BaseModel:       models.BaseModel{ID: "appt-1"},
		PatientID:       "p-1",
		DoctorID:        "d-1",
		AppointmentDate: date,
		AppointmentTime: "10:00",
		Reason:          "follow-up",
		Status:          status,
	}
	store.appts[appt.ID] = appt
	return appt
}

func TestManagerSetStatus_AssignedDoctorConfirms(t *testing.T) {
	m, store := newTestManager(t)
	seedAppointment(store, models.StatusPending)

	doctor := authz.Actor{UserID: "u-doc", UserType: models.UserTypeDoctor, DoctorID: "d-1"}
	appt, err := m.SetStatus(context.Background(), doctor, "appt-1", models.StatusConfirmed, "see you then")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, appt.Status)
	assert.Equal(t, "see you then", appt.Notes)
}

func TestManagerSetStatus_OtherDoctorDenied(t *testing.T) {
	m, store := newTestManager(t)
	seedAppointment(store, models.StatusPending)

	other := authz.Actor{UserID: "u-other", UserType: models.UserTypeDoctor, DoctorID: "d-2"}
	_, err := m.SetStatus(context.Background(), other, "appt-1", models.StatusConfirmed, "")
	assert.ErrorIs(t, err, ErrNotPermitted)
}

func TestManagerSetStatus_PatientMayOnlyCancel(t *testing.T) {
	m, store := newTestManager(t)
	patient := authz.Actor{UserID: "u-pat", UserType: models.UserTypePatient, PatientID: "p-1"}

	seedAppointment(store, models.StatusPending)
	_, err := m.SetStatus(context.Background(), patient, "appt-1", models.StatusConfirmed, "")
	assert.ErrorIs(t, err, ErrNotPermitted)

	appt, err := m.SetStatus(context.Background(), patient, "appt-1", models.StatusCancelled, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, appt.Status)
}

func TestManagerSetStatus_OtherPatientCannotCancel(t *testing.T) {
	m, store := newTestManager(t)
	seedAppointment(store, models.StatusPending)

	stranger := authz.Actor{UserID: "u-x", UserType: models.UserTypePatient, PatientID: "p-99"}
	_, err := m.SetStatus(context.Background(), stranger, "appt-1", models.StatusCancelled, "")
	assert.ErrorIs(t, err, ErrNotPermitted)
}

func TestManagerSetStatus_IllegalTransitions(t *testing.T) {
	m, store := newTestManager(t)
	admin := authz.Actor{UserID: "u-admin", UserType: models.UserTypeAdmin}

	seedAppointment(store, models.StatusCompleted)
	_, err := m.SetStatus(context.Background(), admin, "appt-1", models.StatusConfirmed, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	seedAppointment(store, models.StatusPending)
	_, err = m.SetStatus(context.Background(), admin, "appt-1", models.StatusNoShow, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Terminal cancellation cannot be cancelled again, even by a patient
	patient := authz.Actor{UserID: "u-pat", UserType: models.UserTypePatient, PatientID: "p-1"}
	seedAppointment(store, models.StatusCancelled)
	_, err = m.SetStatus(context.Background(), patient, "appt-1", models.StatusCancelled, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestManagerSetStatus_AdminFullLifecycle(t *testing.T) {
	m, store := newTestManager(t)
	admin := authz.Actor{UserID: "u-admin", UserType: models.UserTypeAdmin}

	seedAppointment(store, models.StatusPending)
	_, err := m.SetStatus(context.Background(), admin, "appt-1", models.StatusConfirmed, "")
	require.NoError(t, err)

	appt, err := m.SetStatus(context.Background(), admin, "appt-1", models.StatusCompleted, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, appt.Status)
}

func TestManagerSetStatus_UnknownAppointment(t *testing.T) {
	m, _ := newTestManager(t)
	admin := authz.Actor{UserID: "u-admin", UserType: models.UserTypeAdmin}

	_, err := m.SetStatus(context.Background(), admin, "appt-404", models.StatusConfirmed, "")
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}
