package handlers

import (
	"errors"
	"net/http"

	"clinic-management-server/internal/middleware"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserHandler handles self-profile endpoints and admin user management.
type UserHandler struct {
	DB *gorm.DB
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

// Me handles fetching the currently authenticated user's account.
func (h *UserHandler) Me(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Profile fetched successfully", user.Sanitize())
}

// UpdateProfileRequest represents the request body for updating the
// caller's own account. user_type is deliberately absent: the account
// type is fixed at registration.
type UpdateProfileRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender" binding:"omitempty,oneof=M F O"`
}

// UpdateProfile handles updating the currently authenticated user's account.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req UpdateProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := applyUserUpdates(h.DB, &user, &req); err != nil {
		respondUserUpdateError(c, err)
		return
	}

	if err := h.DB.Save(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Conflict(c, "Email is already registered")
			return
		}
		utils.InternalServerError(c, "Failed to update profile: "+err.Error())
		return
	}

	utils.Success(c, "Profile updated successfully", user.Sanitize())
}

// AdminCreateUserRequest represents the request body for creating a user
// as an admin. Unlike self-registration it may create admin accounts,
// and doctor accounts reference an existing clinic by id.
type AdminCreateUserRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=150"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	UserType    string `json:"user_type" binding:"required,oneof=patient doctor admin"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender" binding:"omitempty,oneof=M F O"`

	Specialization  string  `json:"specialization" binding:"omitempty,oneof=Cardiology Dermatology Neurology Orthopedics Pediatrics Psychiatry General Dental Eye Surgery"`
	LicenseNumber   string  `json:"license_number"`
	ExperienceYears int     `json:"experience_years" binding:"omitempty,min=0"`
	ConsultationFee float64 `json:"consultation_fee" binding:"omitempty,min=0"`
	Bio             string  `json:"bio"`
	Clinic          string  `json:"clinic"`
}

// CreateUser handles creating a new user of any type (admin).
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req AdminCreateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userType := models.UserType(req.UserType)

	var clinicID string
	if userType == models.UserTypeDoctor {
		if req.Specialization == "" || req.LicenseNumber == "" || req.Clinic == "" {
			utils.BadRequest(c, "Doctor accounts require specialization, license_number, and clinic")
			return
		}
		var clinic models.Clinic
		if err := h.DB.First(&clinic, "id = ?", req.Clinic).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.BadRequest(c, "Referenced clinic does not exist")
			} else {
				utils.InternalServerError(c, "Database error: "+err.Error())
			}
			return
		}
		clinicID = clinic.ID
	}

	user := models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		UserType:  userType,
		Address:   req.Address,
		Gender:    req.Gender,
		IsActive:  true,
	}
	if req.Phone != "" {
		phone, err := utils.NormalizePhoneNumber(req.Phone)
		if err != nil {
			utils.BadRequest(c, "Invalid phone number: "+err.Error())
			return
		}
		user.Phone = phone
	}
	if req.DateOfBirth != "" {
		dob, err := models.ParseDateOnly(req.DateOfBirth)
		if err != nil {
			utils.BadRequest(c, "Invalid date_of_birth, expected YYYY-MM-DD")
			return
		}
		user.DateOfBirth = &dob
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		switch userType {
		case models.UserTypePatient:
			return tx.Create(&models.Patient{UserID: user.ID}).Error
		case models.UserTypeDoctor:
			doctor := models.Doctor{
				UserID:          user.ID,
				ClinicID:        clinicID,
				Specialization:  models.Specialization(req.Specialization),
				LicenseNumber:   req.LicenseNumber,
				ExperienceYears: req.ExperienceYears,
				ConsultationFee: req.ConsultationFee,
				Bio:             req.Bio,
				IsAvailable:     true,
			}
			return tx.Create(&doctor).Error
		}
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrDuplicatedKey) {
			utils.Conflict(c, "Username, email, or license number is already in use")
			return
		}
		utils.InternalServerError(c, "Failed to create user: "+txErr.Error())
		return
	}

	utils.Created(c, "User created successfully", user.Sanitize())
}

// GetUsers handles fetching all users, optionally filtered by type (admin).
func (h *UserHandler) GetUsers(c *gin.Context) {
	query := h.DB.Order("created_at DESC")
	if userType := c.Query("user_type"); userType != "" {
		query = query.Where("user_type = ?", userType)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch users: "+err.Error())
		return
	}

	sanitizedUsers := make([]models.UserSanitized, len(users))
	for i, u := range users {
		sanitizedUsers[i] = u.Sanitize()
	}

	utils.Success(c, "Users fetched successfully", sanitizedUsers)
}

// GetUserByID handles fetching a single user by ID (admin).
func (h *UserHandler) GetUserByID(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "User fetched successfully", user.Sanitize())
}

// AdminUpdateUserRequest represents the request body for updating a user
// by an admin. It adds the is_active toggle to the self-service fields;
// user_type stays immutable here as well.
type AdminUpdateUserRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender" binding:"omitempty,oneof=M F O"`
	IsActive    *bool  `json:"is_active"`
}

// UpdateUser handles updating a user by ID (admin).
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID := c.Param("id")

	var req AdminUpdateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	profile := UpdateProfileRequest{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
	}
	if err := applyUserUpdates(h.DB, &user, &profile); err != nil {
		respondUserUpdateError(c, err)
		return
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Conflict(c, "Email is already registered")
			return
		}
		utils.InternalServerError(c, "Failed to update user: "+err.Error())
		return
	}

	utils.Success(c, "User updated successfully", user.Sanitize())
}

// DeleteUser handles deleting a user by ID (admin). The user's profile
// rows, appointments, schedules, and refresh tokens go with it.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Transaction(func(tx *gorm.DB) error {
		return deleteUserCascade(tx, user.ID)
	}); err != nil {
		utils.InternalServerError(c, "Failed to delete user: "+err.Error())
		return
	}

	utils.Success(c, "User deleted successfully", nil)
}

type userUpdateError struct {
	status  int
	message string
}

func (e *userUpdateError) Error() string { return e.message }

// applyUserUpdates copies the non-empty fields of req onto user,
// normalizing and validating along the way. It never touches user_type.
func applyUserUpdates(db *gorm.DB, user *models.User, req *UpdateProfileRequest) error {
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Email != "" && req.Email != user.Email {
		var existing models.User
		if err := db.Where("email = ? AND id <> ?", req.Email, user.ID).First(&existing).Error; err == nil {
			return &userUpdateError{status: http.StatusConflict, message: "Email is already registered"}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return &userUpdateError{status: http.StatusInternalServerError, message: "Database error checking email: " + err.Error()}
		}
		user.Email = req.Email
	}
	if req.Phone != "" {
		phone, err := utils.NormalizePhoneNumber(req.Phone)
		if err != nil {
			return &userUpdateError{status: http.StatusBadRequest, message: "Invalid phone number: " + err.Error()}
		}
		user.Phone = phone
	}
	if req.Address != "" {
		user.Address = req.Address
	}
	if req.DateOfBirth != "" {
		dob, err := models.ParseDateOnly(req.DateOfBirth)
		if err != nil {
			return &userUpdateError{status: http.StatusBadRequest, message: "Invalid date_of_birth, expected YYYY-MM-DD"}
		}
		user.DateOfBirth = &dob
	}
	if req.Gender != "" {
		user.Gender = req.Gender
	}
	return nil
}

func respondUserUpdateError(c *gin.Context, err error) {
	var ue *userUpdateError
	if errors.As(err, &ue) {
		utils.Error(c, ue.status, ue.message)
		return
	}
	utils.InternalServerError(c, err.Error())
}

// deleteUserCascade removes a user and everything hanging off them, in
// dependency order so the foreign keys stay satisfied.
func deleteUserCascade(tx *gorm.DB, userID string) error {
	var patient models.Patient
	if err := tx.Where("user_id = ?", userID).First(&patient).Error; err == nil {
		if err := tx.Where("patient_id = ?", patient.ID).Delete(&models.Appointment{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&patient).Error; err != nil {
			return err
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var doctor models.Doctor
	if err := tx.Where("user_id = ?", userID).First(&doctor).Error; err == nil {
		if err := tx.Where("doctor_id = ?", doctor.ID).Delete(&models.Appointment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("doctor_id = ?", doctor.ID).Delete(&models.DoctorSchedule{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&doctor).Error; err != nil {
			return err
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := tx.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.User{}, "id = ?", userID).Error
}
