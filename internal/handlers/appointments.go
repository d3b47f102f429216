package handlers

import (
	"errors"
	"time"

	"clinic-management-server/internal/authz"
	"clinic-management-server/internal/middleware"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/scheduling"
	"clinic-management-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AppointmentHandler handles appointment booking and lifecycle requests.
// Bookings and status changes go through the scheduling manager; reads
// query the database directly.
type AppointmentHandler struct {
	DB      *gorm.DB
	Manager *scheduling.Manager
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB, manager *scheduling.Manager) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Manager: manager}
}

// CreateAppointmentRequest represents the request body for booking an
// appointment.
type CreateAppointmentRequest struct {
	Doctor          string `json:"doctor" binding:"required"`
	AppointmentDate string `json:"appointment_date" binding:"required"`
	AppointmentTime string `json:"appointment_time" binding:"required"`
	Reason          string `json:"reason" binding:"required"`
	Notes           string `json:"notes"`
}

// CreateAppointment handles booking an appointment for the
// authenticated patient.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	date, err := models.ParseDateOnly(req.AppointmentDate)
	if err != nil {
		utils.BadRequest(c, "Invalid appointment_date, expected YYYY-MM-DD")
		return
	}
	parsedTime, err := time.Parse("15:04", req.AppointmentTime)
	if err != nil {
		utils.BadRequest(c, "Invalid appointment_time, expected HH:MM")
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	var patient models.Patient
	if err := h.DB.Where("user_id = ?", userID).First(&patient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Patient profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	appointment, err := h.Manager.Book(c.Request.Context(), scheduling.BookingRequest{
		PatientID: patient.ID,
		DoctorID:  req.Doctor,
		Date:      date,
		Time:      parsedTime.Format("15:04"),
		Reason:    req.Reason,
		Notes:     req.Notes,
	})
	if err != nil {
		respondBookingError(c, err)
		return
	}

	utils.Created(c, "Appointment booked successfully", appointment)
}

// ListAppointments handles fetching the caller's appointments: patients
// see their own bookings, doctors their assigned ones, admins everything.
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	actor := actorFromContext(c, h.DB)

	query := h.DB.Preload("Patient.User").Preload("Doctor.User").Preload("Doctor.Clinic").
		Order("appointment_date DESC, appointment_time DESC")

	switch actor.UserType {
	case models.UserTypePatient:
		query = query.Where("patient_id = ?", actor.PatientID)
	case models.UserTypeDoctor:
		query = query.Where("doctor_id = ?", actor.DoctorID)
	case models.UserTypeAdmin:
		// unrestricted
	default:
		utils.Forbidden(c, "Not permitted to view appointments")
		return
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointment handles fetching a single appointment: the involved
// patient, the assigned doctor, or an admin.
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	var appointment models.Appointment
	if err := h.DB.Preload("Patient.User").Preload("Doctor.User").Preload("Doctor.Clinic").
		First(&appointment, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	actor := actorFromContext(c, h.DB)
	ref := authz.AppointmentRef{PatientID: appointment.PatientID, DoctorID: appointment.DoctorID}
	if !authz.Can(actor, authz.ActionRead, ref) {
		utils.Forbidden(c, "Not permitted to view this appointment")
		return
	}

	utils.Success(c, "Appointment fetched successfully", appointment)
}

// UpdateAppointmentStatusRequest represents the request body for moving
// an appointment through its lifecycle.
type UpdateAppointmentStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required,oneof=pending confirmed cancelled completed no_show"`
	Notes  string                   `json:"notes"`
}

// UpdateAppointmentStatus handles a status change request. Who may
// request which change, and which transitions are legal, is decided by
// the scheduling manager.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	var req UpdateAppointmentStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	actor := actorFromContext(c, h.DB)
	appointment, err := h.Manager.SetStatus(c.Request.Context(), actor, c.Param("id"), req.Status, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, scheduling.ErrAppointmentNotFound):
			utils.NotFound(c, err.Error())
		case errors.Is(err, scheduling.ErrNotPermitted):
			utils.Forbidden(c, err.Error())
		case errors.Is(err, scheduling.ErrInvalidTransition):
			utils.BadRequest(c, err.Error())
		default:
			utils.InternalServerError(c, "Failed to update appointment status: "+err.Error())
		}
		return
	}

	utils.Success(c, "Appointment status updated successfully", appointment)
}

// respondBookingError maps booking failures onto the error taxonomy:
// a held slot is a conflict, an impossible slot is a bad request.
func respondBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrPastDate):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, scheduling.ErrDoctorNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, scheduling.ErrSlotTaken):
		utils.Conflict(c, err.Error())
	case errors.Is(err, scheduling.ErrDoctorUnavailable),
		errors.Is(err, scheduling.ErrNoScheduleForDay),
		errors.Is(err, scheduling.ErrDayUnavailable),
		errors.Is(err, scheduling.ErrOutsideWorkingHours):
		utils.BadRequest(c, err.Error())
	default:
		utils.InternalServerError(c, "Failed to book appointment: "+err.Error())
	}
}
