package handlers

import (
	"errors"

	"clinic-management-server/internal/authz"
	"clinic-management-server/internal/middleware"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PatientHandler handles patient medical-profile requests.
type PatientHandler struct {
	DB *gorm.DB
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB) *PatientHandler {
	return &PatientHandler{DB: db}
}

// MyProfile handles fetching the authenticated patient's own profile.
func (h *PatientHandler) MyProfile(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var patient models.Patient
	if err := h.DB.Preload("User").Where("user_id = ?", userID).First(&patient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Patient profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Patient profile fetched successfully", patient)
}

// UpdatePatientRequest represents the request body for updating a
// patient's medical details.
type UpdatePatientRequest struct {
	MedicalHistory       string `json:"medical_history"`
	Allergies            string `json:"allergies"`
	BloodType            string `json:"blood_type" binding:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	EmergencyContactName string `json:"emergency_contact_name"`
	EmergencyContact     string `json:"emergency_contact"`
}

// UpdateMyProfile handles updating the authenticated patient's own profile.
func (h *PatientHandler) UpdateMyProfile(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req UpdatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var patient models.Patient
	if err := h.DB.Preload("User").Where("user_id = ?", userID).First(&patient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Patient profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := applyPatientUpdates(&patient, &req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	// Omit associations so the loaded User row is not written back.
	if err := h.DB.Omit(clause.Associations).Save(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to update patient profile: "+err.Error())
		return
	}

	utils.Success(c, "Patient profile updated successfully", patient)
}

// GetPatient handles fetching a patient profile by ID. The policy
// admits the owning patient, any doctor, and admins.
func (h *PatientHandler) GetPatient(c *gin.Context) {
	var patient models.Patient
	if err := h.DB.Preload("User").First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	actor := actorFromContext(c, h.DB)
	ref := authz.PatientProfile{PatientID: patient.ID, OwnerUserID: patient.UserID}
	if !authz.Can(actor, authz.ActionRead, ref) {
		utils.Forbidden(c, "Not permitted to view this patient profile")
		return
	}

	utils.Success(c, "Patient fetched successfully", patient)
}

// UpdatePatient handles updating a patient profile by ID. Doctors may
// maintain medical details for any patient; patients may only edit
// their own.
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	var req UpdatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var patient models.Patient
	if err := h.DB.Preload("User").First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	actor := actorFromContext(c, h.DB)
	ref := authz.PatientProfile{PatientID: patient.ID, OwnerUserID: patient.UserID}
	if !authz.Can(actor, authz.ActionUpdate, ref) {
		utils.Forbidden(c, "Not permitted to update this patient profile")
		return
	}

	if err := applyPatientUpdates(&patient, &req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if err := h.DB.Omit(clause.Associations).Save(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to update patient profile: "+err.Error())
		return
	}

	utils.Success(c, "Patient profile updated successfully", patient)
}

// DeletePatient handles deleting a patient account by profile ID. Only
// the owning patient or an admin may do this; the user row and their
// appointments go with the profile.
func (h *PatientHandler) DeletePatient(c *gin.Context) {
	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	actor := actorFromContext(c, h.DB)
	ref := authz.PatientProfile{PatientID: patient.ID, OwnerUserID: patient.UserID}
	if !authz.Can(actor, authz.ActionDelete, ref) {
		utils.Forbidden(c, "Not permitted to delete this patient profile")
		return
	}

	if err := h.DB.Transaction(func(tx *gorm.DB) error {
		return deleteUserCascade(tx, patient.UserID)
	}); err != nil {
		utils.InternalServerError(c, "Failed to delete patient: "+err.Error())
		return
	}

	utils.Success(c, "Patient deleted successfully", nil)
}

// applyPatientUpdates copies the non-empty fields of req onto patient,
// normalizing the emergency contact number.
func applyPatientUpdates(patient *models.Patient, req *UpdatePatientRequest) error {
	if req.MedicalHistory != "" {
		patient.MedicalHistory = req.MedicalHistory
	}
	if req.Allergies != "" {
		patient.Allergies = req.Allergies
	}
	if req.BloodType != "" {
		patient.BloodType = req.BloodType
	}
	if req.EmergencyContactName != "" {
		patient.EmergencyContactName = req.EmergencyContactName
	}
	if req.EmergencyContact != "" {
		phone, err := utils.NormalizePhoneNumber(req.EmergencyContact)
		if err != nil {
			return errors.New("Invalid emergency contact number: " + err.Error())
		}
		patient.EmergencyContact = phone
	}
	return nil
}
