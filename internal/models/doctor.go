package models

// Specialization enum of supported medical fields
type Specialization string

const (
	SpecializationCardiology  Specialization = "Cardiology"
	SpecializationDermatology Specialization = "Dermatology"
	SpecializationNeurology   Specialization = "Neurology"
	SpecializationOrthopedics Specialization = "Orthopedics"
	SpecializationPediatrics  Specialization = "Pediatrics"
	SpecializationPsychiatry  Specialization = "Psychiatry"
	SpecializationGeneral     Specialization = "General"
	SpecializationDental      Specialization = "Dental"
	SpecializationEye         Specialization = "Eye"
	SpecializationSurgery     Specialization = "Surgery"
)

// Doctor extends a User with professional details. Exactly one Doctor row
// exists per doctor-type user.
type Doctor struct {
	BaseModel
	UserID          string         `gorm:"size:36;uniqueIndex;not null" json:"user_id"`
	ClinicID        string         `gorm:"size:36;index;not null" json:"clinic_id"`
	Specialization  Specialization `gorm:"size:50;not null" json:"specialization"`
	LicenseNumber   string         `gorm:"size:50;uniqueIndex;not null" json:"license_number"`
	ExperienceYears int            `gorm:"default:0" json:"experience_years"`
	ConsultationFee float64        `gorm:"type:decimal(10,2);default:0" json:"consultation_fee"`
	Bio             string         `gorm:"type:text" json:"bio,omitempty"`
	IsAvailable     bool           `gorm:"default:true" json:"is_available"`

	// Relations
	User      User             `gorm:"foreignKey:UserID" json:"user"`
	Clinic    Clinic           `gorm:"foreignKey:ClinicID" json:"clinic"`
	Schedules []DoctorSchedule `gorm:"foreignKey:DoctorID" json:"schedules,omitempty"`
}

// DoctorSchedule is a doctor's recurring working-hours window for one
// weekday. At most one row per (doctor, day).
type DoctorSchedule struct {
	BaseModel
	DoctorID    string `gorm:"size:36;not null;uniqueIndex:uniq_doctor_day" json:"doctor_id"`
	Day         string `gorm:"size:10;not null;uniqueIndex:uniq_doctor_day" json:"day"`
	StartTime   string `gorm:"size:5;not null" json:"start_time"`
	EndTime     string `gorm:"size:5;not null" json:"end_time"`
	IsAvailable bool   `gorm:"default:true" json:"is_available"`
	Notes       string `gorm:"type:text" json:"notes,omitempty"`
}
