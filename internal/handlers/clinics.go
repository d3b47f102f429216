package handlers

import (
	"errors"

	"clinic-management-server/internal/authz"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ClinicHandler handles the public clinic directory and admin clinic management.
type ClinicHandler struct {
	DB *gorm.DB
}

// NewClinicHandler creates a new ClinicHandler.
func NewClinicHandler(db *gorm.DB) *ClinicHandler {
	return &ClinicHandler{DB: db}
}

// ClinicRequest represents the request body for creating a clinic.
type ClinicRequest struct {
	Name        string `json:"name" binding:"required"`
	Address     string `json:"address" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Description string `json:"description"`
}

// ListClinics handles the public clinic directory: active clinics only.
func (h *ClinicHandler) ListClinics(c *gin.Context) {
	var clinics []models.Clinic
	if err := h.DB.Where("is_active = ?", true).Order("name").Find(&clinics).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch clinics: "+err.Error())
		return
	}
	utils.Success(c, "Clinics fetched successfully", clinics)
}

// CreateClinic handles registering a new clinic (open endpoint, so a
// doctor can set up their clinic before creating their account).
func (h *ClinicHandler) CreateClinic(c *gin.Context) {
	var req ClinicRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	phone, err := utils.NormalizePhoneNumber(req.Phone)
	if err != nil {
		utils.BadRequest(c, "Invalid phone number: "+err.Error())
		return
	}

	clinic := models.Clinic{
		Name:        req.Name,
		Address:     req.Address,
		Phone:       phone,
		Email:       req.Email,
		Description: req.Description,
		IsActive:    true,
	}
	if err := h.DB.Create(&clinic).Error; err != nil {
		utils.InternalServerError(c, "Failed to create clinic: "+err.Error())
		return
	}

	utils.Created(c, "Clinic created successfully", clinic)
}

// AdminListClinics handles fetching all clinics, active or not (admin).
func (h *ClinicHandler) AdminListClinics(c *gin.Context) {
	actor := actorFromContext(c, h.DB)
	if !authz.Can(actor, authz.ActionListAll, authz.ClinicRef{}) {
		utils.Forbidden(c, "Not permitted to list all clinics")
		return
	}

	var clinics []models.Clinic
	if err := h.DB.Order("name").Find(&clinics).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch clinics: "+err.Error())
		return
	}
	utils.Success(c, "Clinics fetched successfully", clinics)
}

// GetClinic handles fetching a single clinic by ID (admin).
func (h *ClinicHandler) GetClinic(c *gin.Context) {
	actor := actorFromContext(c, h.DB)
	if !authz.Can(actor, authz.ActionRead, authz.ClinicRef{}) {
		utils.Forbidden(c, "Not permitted to view this clinic")
		return
	}

	var clinic models.Clinic
	if err := h.DB.First(&clinic, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Clinic not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Clinic fetched successfully", clinic)
}

// UpdateClinicRequest represents the request body for updating a clinic.
type UpdateClinicRequest struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email" binding:"omitempty,email"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

// UpdateClinic handles updating a clinic by ID (admin).
func (h *ClinicHandler) UpdateClinic(c *gin.Context) {
	actor := actorFromContext(c, h.DB)
	if !authz.Can(actor, authz.ActionUpdate, authz.ClinicRef{}) {
		utils.Forbidden(c, "Not permitted to update clinics")
		return
	}

	var req UpdateClinicRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var clinic models.Clinic
	if err := h.DB.First(&clinic, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Clinic not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.Name != "" {
		clinic.Name = req.Name
	}
	if req.Address != "" {
		clinic.Address = req.Address
	}
	if req.Phone != "" {
		phone, err := utils.NormalizePhoneNumber(req.Phone)
		if err != nil {
			utils.BadRequest(c, "Invalid phone number: "+err.Error())
			return
		}
		clinic.Phone = phone
	}
	if req.Email != "" {
		clinic.Email = req.Email
	}
	if req.Description != "" {
		clinic.Description = req.Description
	}
	if req.IsActive != nil {
		clinic.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&clinic).Error; err != nil {
		utils.InternalServerError(c, "Failed to update clinic: "+err.Error())
		return
	}

	utils.Success(c, "Clinic updated successfully", clinic)
}

// DeleteClinic handles deleting a clinic by ID (admin). Deletion is
// refused while doctors are still assigned; reassign or remove them
// first.
func (h *ClinicHandler) DeleteClinic(c *gin.Context) {
	actor := actorFromContext(c, h.DB)
	if !authz.Can(actor, authz.ActionDelete, authz.ClinicRef{}) {
		utils.Forbidden(c, "Not permitted to delete clinics")
		return
	}

	clinicID := c.Param("id")

	var clinic models.Clinic
	if err := h.DB.First(&clinic, "id = ?", clinicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Clinic not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var doctorCount int64
	if err := h.DB.Model(&models.Doctor{}).Where("clinic_id = ?", clinicID).Count(&doctorCount).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if doctorCount > 0 {
		utils.Conflict(c, "Clinic still has doctors assigned and cannot be deleted")
		return
	}

	if err := h.DB.Delete(&clinic).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete clinic: "+err.Error())
		return
	}

	utils.Success(c, "Clinic deleted successfully", nil)
}
