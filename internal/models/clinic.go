package models

// Clinic represents a medical facility that doctors practice at
type Clinic struct {
	BaseModel
	Name        string `gorm:"size:200;not null" json:"name"`
	Address     string `gorm:"type:text;not null" json:"address"`
	Phone       string `gorm:"size:11;not null" json:"phone"`
	Email       string `gorm:"size:255;not null" json:"email"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	// Relations (not always preloaded)
	Doctors []Doctor `gorm:"foreignKey:ClinicID" json:"-"`
}
