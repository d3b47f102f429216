package handlers

import (
	"clinic-management-server/internal/authz"
	"clinic-management-server/internal/middleware"
	"clinic-management-server/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// actorFromContext assembles the authorization actor for the current
// request, resolving the doctor or patient profile id for user types
// that carry one. Requests without auth context yield the anonymous
// actor, which the policy denies everything the public rules don't
// explicitly allow.
func actorFromContext(c *gin.Context, db *gorm.DB) authz.Actor {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return authz.Anonymous
	}
	userType, _ := middleware.GetUserTypeFromContext(c)

	actor := authz.Actor{UserID: userID, UserType: userType}
	switch userType {
	case models.UserTypeDoctor:
		var doctor models.Doctor
		if err := db.Select("id").Where("user_id = ?", userID).First(&doctor).Error; err == nil {
			actor.DoctorID = doctor.ID
		}
	case models.UserTypePatient:
		var patient models.Patient
		if err := db.Select("id").Where("user_id = ?", userID).First(&patient).Error; err == nil {
			actor.PatientID = patient.ID
		}
	}
	return actor
}
