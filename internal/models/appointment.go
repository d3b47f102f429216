package models

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
	StatusNoShow    AppointmentStatus = "no_show"
)

// Appointment represents a booked visit. The partial unique index keeps a
// (doctor, date, time) slot held by at most one non-cancelled appointment,
// so racing writers lose at the storage layer instead of double-booking.
type Appointment struct {
	BaseModel
	PatientID       string            `gorm:"size:36;index;not null" json:"patient_id"`
	DoctorID        string            `gorm:"size:36;not null;uniqueIndex:uniq_doctor_slot,where:status <> 'cancelled'" json:"doctor_id"`
	AppointmentDate DateOnly          `gorm:"not null;uniqueIndex:uniq_doctor_slot" json:"appointment_date"`
	AppointmentTime string            `gorm:"size:5;not null;uniqueIndex:uniq_doctor_slot" json:"appointment_time"`
	Reason          string            `gorm:"type:text;not null" json:"reason"`
	Status          AppointmentStatus `gorm:"size:20;default:'pending';index" json:"status"`
	Notes           string            `gorm:"type:text" json:"notes,omitempty"`

	// Relations
	Patient Patient `gorm:"foreignKey:PatientID" json:"patient"`
	Doctor  Doctor  `gorm:"foreignKey:DoctorID" json:"doctor"`
}
