package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// UserType enum
type UserType string

const (
	UserTypePatient UserType = "patient"
	UserTypeDoctor  UserType = "doctor"
	UserTypeAdmin   UserType = "admin"
)

// Gender codes stored on the user record
const (
	GenderMale   = "M"
	GenderFemale = "F"
	GenderOther  = "O"
)

// User represents a user in the system
type User struct {
	BaseModel
	Username    string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email       string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password    string    `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	FirstName   string    `gorm:"size:100" json:"first_name"`
	LastName    string    `gorm:"size:100" json:"last_name"`
	UserType    UserType  `gorm:"size:10;default:'patient'" json:"user_type"`
	Phone       string    `gorm:"size:15" json:"phone,omitempty"`
	Address     string    `gorm:"type:text" json:"address,omitempty"`
	DateOfBirth *DateOnly `gorm:"type:date" json:"date_of_birth,omitempty"`
	Gender      string    `gorm:"size:1" json:"gender,omitempty"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`

	// Relations (not always preloaded)
	RefreshTokens  []RefreshToken `gorm:"foreignKey:UserID" json:"-"`
	DoctorProfile  *Doctor        `gorm:"foreignKey:UserID" json:"-"`
	PatientProfile *Patient       `gorm:"foreignKey:UserID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	UserType    UserType  `json:"user_type"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	DateOfBirth *DateOnly `json:"date_of_birth,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		UserType:    u.UserType,
		Phone:       u.Phone,
		Address:     u.Address,
		DateOfBirth: u.DateOfBirth,
		Gender:      u.Gender,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
