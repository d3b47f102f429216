package handlers

import (
	"errors"
	"time"

	"clinic-management-server/internal/authz"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/scheduling"
	"clinic-management-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DoctorHandler handles the public doctor directory and schedule management.
type DoctorHandler struct {
	DB *gorm.DB
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(db *gorm.DB) *DoctorHandler {
	return &DoctorHandler{DB: db}
}

// ListDoctors handles the public doctor directory: available doctors
// only, optionally filtered by specialization.
func (h *DoctorHandler) ListDoctors(c *gin.Context) {
	query := h.DB.Preload("User").Preload("Clinic").Where("is_available = ?", true)
	if specialization := c.Query("specialization"); specialization != "" {
		query = query.Where("specialization = ?", specialization)
	}

	var doctors []models.Doctor
	if err := query.Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}

	utils.Success(c, "Doctors fetched successfully", doctors)
}

// AvailableDoctors handles the slot search: which doctors can take a
// booking at ?date=YYYY-MM-DD&time=HH:MM. Each candidate runs through
// the same availability predicate the booking path uses, so the two
// never disagree on what counts as free.
func (h *DoctorHandler) AvailableDoctors(c *gin.Context) {
	dateStr := c.Query("date")
	timeStr := c.Query("time")
	if dateStr == "" || timeStr == "" {
		utils.BadRequest(c, "Query parameters date and time are required")
		return
	}

	date, err := models.ParseDateOnly(dateStr)
	if err != nil {
		utils.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}
	parsedTime, err := time.Parse("15:04", timeStr)
	if err != nil {
		utils.BadRequest(c, "Invalid time, expected HH:MM")
		return
	}
	slot := scheduling.Slot{Date: date, Time: parsedTime.Format("15:04")}

	var doctors []models.Doctor
	if err := h.DB.Preload("User").Preload("Clinic").Preload("Schedules").
		Where("is_available = ?", true).Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}

	var booked []models.Appointment
	if err := h.DB.Where("appointment_date = ? AND status <> ?", date, models.StatusCancelled).
		Find(&booked).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}
	takenByDoctor := make(map[string][]models.Appointment, len(booked))
	for _, a := range booked {
		takenByDoctor[a.DoctorID] = append(takenByDoctor[a.DoctorID], a)
	}

	available := make([]models.Doctor, 0, len(doctors))
	for i := range doctors {
		d := &doctors[i]
		if scheduling.CheckAvailability(d, d.Schedules, takenByDoctor[d.ID], slot) == nil {
			available = append(available, *d)
		}
	}

	utils.Success(c, "Available doctors fetched successfully", available)
}

// GetDoctor handles fetching a single doctor with their clinic and schedule.
func (h *DoctorHandler) GetDoctor(c *gin.Context) {
	var doctor models.Doctor
	if err := h.DB.Preload("User").Preload("Clinic").Preload("Schedules").
		First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Doctor fetched successfully", doctor)
}

// GetDoctorSchedules handles fetching a doctor's weekly schedule.
func (h *DoctorHandler) GetDoctorSchedules(c *gin.Context) {
	doctorID := c.Param("id")

	var doctor models.Doctor
	if err := h.DB.Select("id").First(&doctor, "id = ?", doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var schedules []models.DoctorSchedule
	if err := h.DB.Where("doctor_id = ?", doctorID).Find(&schedules).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch schedules: "+err.Error())
		return
	}
	utils.Success(c, "Schedules fetched successfully", schedules)
}

// ScheduleRequest represents the request body for creating a schedule
// entry. DoctorID is only honored for admins; doctors always write
// their own schedule.
type ScheduleRequest struct {
	DoctorID    string `json:"doctor_id"`
	Day         string `json:"day" binding:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time" binding:"required"`
	IsAvailable *bool  `json:"is_available"`
	Notes       string `json:"notes"`
}

// CreateSchedule handles adding a working-hours entry for a weekday.
func (h *DoctorHandler) CreateSchedule(c *gin.Context) {
	var req ScheduleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	start, end, err := normalizeScheduleWindow(req.StartTime, req.EndTime)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	actor := actorFromContext(c, h.DB)
	doctorID := req.DoctorID
	if actor.UserType == models.UserTypeDoctor {
		doctorID = actor.DoctorID
	}
	if doctorID == "" {
		utils.BadRequest(c, "doctor_id is required")
		return
	}

	if !authz.Can(actor, authz.ActionCreate, authz.ScheduleRef{DoctorID: doctorID}) {
		utils.Forbidden(c, "Not permitted to manage this doctor's schedule")
		return
	}

	var doctor models.Doctor
	if err := h.DB.Select("id").First(&doctor, "id = ?", doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	schedule := models.DoctorSchedule{
		DoctorID:    doctorID,
		Day:         req.Day,
		StartTime:   start,
		EndTime:     end,
		IsAvailable: true,
		Notes:       req.Notes,
	}
	if req.IsAvailable != nil {
		schedule.IsAvailable = *req.IsAvailable
	}

	if err := h.DB.Create(&schedule).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Conflict(c, "A schedule for this day already exists")
			return
		}
		utils.InternalServerError(c, "Failed to create schedule: "+err.Error())
		return
	}

	utils.Created(c, "Schedule created successfully", schedule)
}

// UpdateScheduleRequest represents the request body for updating a
// schedule entry.
type UpdateScheduleRequest struct {
	Day         string `json:"day" binding:"omitempty,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable *bool  `json:"is_available"`
	Notes       string `json:"notes"`
}

// UpdateSchedule handles updating a schedule entry by ID. Only the
// owning doctor or an admin may touch it.
func (h *DoctorHandler) UpdateSchedule(c *gin.Context) {
	var req UpdateScheduleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var schedule models.DoctorSchedule
	if err := h.DB.First(&schedule, "id = ?", c.Param("scheduleId")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Schedule not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	actor := actorFromContext(c, h.DB)
	if !authz.Can(actor, authz.ActionUpdate, authz.ScheduleRef{DoctorID: schedule.DoctorID}) {
		utils.Forbidden(c, "Not permitted to manage this doctor's schedule")
		return
	}

	if req.Day != "" {
		schedule.Day = req.Day
	}
	startTime := schedule.StartTime
	endTime := schedule.EndTime
	if req.StartTime != "" {
		startTime = req.StartTime
	}
	if req.EndTime != "" {
		endTime = req.EndTime
	}
	start, end, err := normalizeScheduleWindow(startTime, endTime)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	schedule.StartTime = start
	schedule.EndTime = end
	if req.IsAvailable != nil {
		schedule.IsAvailable = *req.IsAvailable
	}
	if req.Notes != "" {
		schedule.Notes = req.Notes
	}

	if err := h.DB.Save(&schedule).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Conflict(c, "A schedule for this day already exists")
			return
		}
		utils.InternalServerError(c, "Failed to update schedule: "+err.Error())
		return
	}

	utils.Success(c, "Schedule updated successfully", schedule)
}

// normalizeScheduleWindow parses and zero-pads a working-hours window,
// requiring start to precede end.
func normalizeScheduleWindow(startStr, endStr string) (string, string, error) {
	start, err := time.Parse("15:04", startStr)
	if err != nil {
		return "", "", errors.New("Invalid start_time, expected HH:MM")
	}
	end, err := time.Parse("15:04", endStr)
	if err != nil {
		return "", "", errors.New("Invalid end_time, expected HH:MM")
	}
	startNorm := start.Format("15:04")
	endNorm := end.Format("15:04")
	if startNorm >= endNorm {
		return "", "", errors.New("start_time must be before end_time")
	}
	return startNorm, endNorm, nil
}
