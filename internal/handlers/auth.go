package handlers

import (
	"errors"
	"time"

	"clinic-management-server/internal/config"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg}
}

// TokenPair carries an issued access/refresh token pair.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AuthResponse is the body returned by register and login.
type AuthResponse struct {
	User   models.UserSanitized `json:"user"`
	Tokens TokenPair            `json:"tokens"`
}

// NewClinicPayload is the inline clinic a doctor may register together with.
type NewClinicPayload struct {
	Name        string `json:"name" binding:"required"`
	Address     string `json:"address" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Description string `json:"description"`
}

// RegisterRequest represents the request body for user registration.
// Doctor registrations additionally carry the professional fields and
// exactly one of Clinic (existing clinic id) or NewClinic.
type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=150"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	Password2   string `json:"password2" binding:"required"`
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	UserType    string `json:"user_type" binding:"required,oneof=patient doctor"`
	Phone       string `json:"phone" binding:"required"`
	Address     string `json:"address"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender" binding:"omitempty,oneof=M F O"`

	Specialization  string            `json:"specialization" binding:"omitempty,oneof=Cardiology Dermatology Neurology Orthopedics Pediatrics Psychiatry General Dental Eye Surgery"`
	LicenseNumber   string            `json:"license_number"`
	ExperienceYears int               `json:"experience_years" binding:"omitempty,min=0"`
	ConsultationFee float64           `json:"consultation_fee" binding:"omitempty,min=0"`
	Bio             string            `json:"bio"`
	Clinic          string            `json:"clinic"`
	NewClinic       *NewClinicPayload `json:"new_clinic"`
}

// Register handles user registration. The user row and its profile row
// (plus an inline clinic, for doctors) are created in one transaction,
// so a failed profile never leaves an orphaned user behind.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if req.Password != req.Password2 {
		utils.BadRequest(c, "Passwords do not match")
		return
	}

	phone, err := utils.NormalizePhoneNumber(req.Phone)
	if err != nil {
		utils.BadRequest(c, "Invalid phone number: "+err.Error())
		return
	}

	userType := models.UserType(req.UserType)

	var clinicID string
	var newClinic *models.Clinic
	if userType == models.UserTypeDoctor {
		if req.Specialization == "" || req.LicenseNumber == "" {
			utils.BadRequest(c, "Doctor registration requires specialization and license_number")
			return
		}

		hasNew := req.NewClinic != nil
		hasExisting := req.Clinic != ""
		if hasNew == hasExisting {
			utils.BadRequest(c, "Doctor registration requires exactly one of clinic or new_clinic")
			return
		}

		if hasExisting {
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
		} else {
			clinicPhone, err := utils.NormalizePhoneNumber(req.NewClinic.Phone)
			if err != nil {
				utils.BadRequest(c, "Invalid clinic phone number: "+err.Error())
				return
			}
			newClinic = &models.Clinic{
				Name:        req.NewClinic.Name,
				Address:     req.NewClinic.Address,
				Phone:       clinicPhone,
				Email:       req.NewClinic.Email,
				Description: req.NewClinic.Description,
				IsActive:    true,
			}
		}
	}

	// Friendly duplicate check up front; the unique indexes still back
	// this up inside the transaction against concurrent registrations.
	var existing models.User
	if err := h.DB.Where("username = ? OR email = ?", req.Username, req.Email).First(&existing).Error; err == nil {
		if existing.Username == req.Username {
			utils.Conflict(c, "Username is already taken")
		} else {
			utils.Conflict(c, "Email is already registered")
		}
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	user := models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		UserType:  userType,
		Phone:     phone,
		Address:   req.Address,
		Gender:    req.Gender,
		IsActive:  true,
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
			if newClinic != nil {
				if err := tx.Create(newClinic).Error; err != nil {
					return err
				}
				clinicID = newClinic.ID
			}
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

	tokens, err := h.issueTokens(c, &user)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate tokens: "+err.Error())
		return
	}

	utils.Created(c, "Registration successful", AuthResponse{User: user.Sanitize(), Tokens: tokens})
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Unauthorized(c, "Invalid username or password")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !user.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid username or password")
		return
	}

	if !user.IsActive {
		utils.Unauthorized(c, "User account is disabled")
		return
	}

	tokens, err := h.issueTokens(c, &user)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate tokens: "+err.Error())
		return
	}

	utils.Success(c, "Login successful", AuthResponse{User: user.Sanitize(), Tokens: tokens})
}

// RefreshRequest represents the request body for token refresh.
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// RefreshToken exchanges a valid refresh token for a new pair. The
// presented token is revoked before the new one is stored, so each
// refresh token works exactly once.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	// Cookie first, then body, so browser and non-browser clients both work.
	tokenString, err := c.Cookie("refresh_token")
	if err != nil || tokenString == "" {
		var req RefreshRequest
		if !utils.BindAndValidate(c, &req) {
			return
		}
		tokenString = req.Refresh
	}

	claims, err := utils.ValidateToken(tokenString, h.Cfg.JWTRefreshSecret)
	if err != nil {
		utils.Unauthorized(c, "Invalid refresh token: "+err.Error())
		return
	}

	var storedToken models.RefreshToken
	if err := h.DB.Where("token = ? AND user_id = ? AND is_revoked = ? AND expires_at > ?",
		tokenString, claims.UserID, false, time.Now()).First(&storedToken).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Unauthorized(c, "Refresh token not found, expired, or revoked")
		} else {
			utils.InternalServerError(c, "Database error checking refresh token: "+err.Error())
		}
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		utils.InternalServerError(c, "Failed to find user associated with token: "+err.Error())
		return
	}
	if !user.IsActive {
		utils.Unauthorized(c, "User account is disabled")
		return
	}

	storedToken.IsRevoked = true
	if err := h.DB.Save(&storedToken).Error; err != nil {
		utils.InternalServerError(c, "Failed to revoke refresh token: "+err.Error())
		return
	}

	tokens, err := h.issueTokens(c, &user)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate new tokens: "+err.Error())
		return
	}

	utils.Success(c, "Token refreshed successfully", tokens)
}

// LogoutRequest represents the request body for user logout.
type LogoutRequest struct {
	Refresh string `json:"refresh"`
}

// Logout revokes the presented refresh token and clears the cookie. A
// token that is unknown or already revoked still logs out cleanly.
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenString, err := c.Cookie("refresh_token")
	if err != nil || tokenString == "" {
		var req LogoutRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			tokenString = req.Refresh
		}
	}

	if tokenString != "" {
		var storedToken models.RefreshToken
		err := h.DB.Where("token = ? AND is_revoked = ?", tokenString, false).First(&storedToken).Error
		switch {
		case err == nil:
			storedToken.IsRevoked = true
			if err := h.DB.Save(&storedToken).Error; err != nil {
				utils.InternalServerError(c, "Failed to revoke refresh token: "+err.Error())
				return
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			utils.InternalServerError(c, "Database error during logout: "+err.Error())
			return
		}
	}

	h.clearRefreshCookie(c)
	utils.Success(c, "Logout successful", nil)
}

// issueTokens generates an access/refresh pair for user, persists the
// refresh token, and sets it as an HTTP-only cookie. The body copy of
// the refresh token remains for clients that cannot use cookies.
func (h *AuthHandler) issueTokens(c *gin.Context, user *models.User) (TokenPair, error) {
	accessToken, refreshTokenString, err := utils.GenerateTokens(user, h.Cfg)
	if err != nil {
		return TokenPair{}, err
	}

	refreshToken := models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshTokenString,
		ExpiresAt: time.Now().Add(time.Duration(h.Cfg.JWTRefreshExpirationHours) * time.Hour),
		IsRevoked: false,
	}
	if err := h.DB.Create(&refreshToken).Error; err != nil {
		return TokenPair{}, err
	}

	c.SetCookie(
		"refresh_token",                       // Name
		refreshTokenString,                    // Value
		h.Cfg.JWTRefreshExpirationHours*60*60, // Max age in seconds
		"/",                                // Path
		"",                                 // Domain (empty means current domain)
		h.Cfg.Environment != "development", // Secure (true in prod, false in dev)
		true,                               // HTTP only
	)

	return TokenPair{Access: accessToken, Refresh: refreshTokenString}, nil
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetCookie(
		"refresh_token",
		"",
		-1, // expire immediately
		"/",
		"",
		h.Cfg.Environment != "development",
		true,
	)
}
