package models

// Patient extends a User with medical details. Exactly one Patient row
// exists per patient-type user.
type Patient struct {
	BaseModel
	UserID               string `gorm:"size:36;uniqueIndex;not null" json:"user_id"`
	MedicalHistory       string `gorm:"type:text" json:"medical_history,omitempty"`
	Allergies            string `gorm:"type:text" json:"allergies,omitempty"`
	BloodType            string `gorm:"size:5" json:"blood_type,omitempty"`
	EmergencyContactName string `gorm:"size:100" json:"emergency_contact_name,omitempty"`
	EmergencyContact     string `gorm:"size:15" json:"emergency_contact,omitempty"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user"`
}
