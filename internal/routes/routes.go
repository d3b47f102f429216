package routes

import (
	"clinic-management-server/internal/config"
	"clinic-management-server/internal/handlers"
	"clinic-management-server/internal/middleware"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/scheduling"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	manager := scheduling.NewManager(scheduling.NewGormStore(db))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	clinicHandler := handlers.NewClinicHandler(db)
	doctorHandler := handlers.NewDoctorHandler(db)
	patientHandler := handlers.NewPatientHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(db, manager)

	api := router.Group("/api")

	// Public routes (no authentication required)
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh", authHandler.RefreshToken)
	}

	clinicRoutes := api.Group("/clinics")
	{
		clinicRoutes.GET("", clinicHandler.ListClinics)
		clinicRoutes.POST("/create", clinicHandler.CreateClinic)
	}

	doctorRoutes := api.Group("/doctors")
	{
		doctorRoutes.GET("", doctorHandler.ListDoctors)
		doctorRoutes.GET("/available", doctorHandler.AvailableDoctors)
		doctorRoutes.GET("/:id", doctorHandler.GetDoctor)
		doctorRoutes.GET("/:id/schedules", doctorHandler.GetDoctorSchedules)
	}

	// Authenticated routes
	private := api.Group("")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		private.POST("/auth/logout", authHandler.Logout)

		userRoutes := private.Group("/users")
		{
			userRoutes.GET("/me", userHandler.Me)
			userRoutes.PUT("/update-profile", userHandler.UpdateProfile)
		}

		patientRoutes := private.Group("/patients")
		{
			// Self-service profile endpoints for patients
			patientSelf := patientRoutes.Group("")
			patientSelf.Use(middleware.UserTypeAuthMiddleware(models.UserTypePatient))
			{
				patientSelf.GET("/me", patientHandler.MyProfile)
				patientSelf.PUT("/me", patientHandler.UpdateMyProfile)
			}

			// Object-level access decided by the authorization policy
			patientRoutes.GET("/:id", patientHandler.GetPatient)
			patientRoutes.PUT("/:id", patientHandler.UpdatePatient)
			patientRoutes.DELETE("/:id", patientHandler.DeletePatient)
		}

		// Schedule management (owning doctor or admin; policy enforced in handler)
		scheduleRoutes := private.Group("/doctors")
		scheduleRoutes.Use(middleware.UserTypeAuthMiddleware(models.UserTypeDoctor, models.UserTypeAdmin))
		{
			scheduleRoutes.POST("/schedules", doctorHandler.CreateSchedule)
			scheduleRoutes.PUT("/schedule/:scheduleId", doctorHandler.UpdateSchedule)
		}

		appointmentRoutes := private.Group("/appointments")
		{
			// Patients book for themselves
			appointmentRoutes.POST("/create", middleware.UserTypeAuthMiddleware(models.UserTypePatient), appointmentHandler.CreateAppointment)

			// Role-filtered listing: own bookings, assigned appointments, or all
			appointmentRoutes.GET("", appointmentHandler.ListAppointments)

			// Object-level access decided by the authorization policy
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointment)
			appointmentRoutes.PATCH("/:id/status", appointmentHandler.UpdateAppointmentStatus)
		}

		adminRoutes := private.Group("/admin")
		adminRoutes.Use(middleware.UserTypeAuthMiddleware(models.UserTypeAdmin))
		{
			adminUserRoutes := adminRoutes.Group("/users")
			{
				adminUserRoutes.GET("", userHandler.GetUsers)
				adminUserRoutes.POST("", userHandler.CreateUser)
				adminUserRoutes.GET("/:id", userHandler.GetUserByID)
				adminUserRoutes.PUT("/:id", userHandler.UpdateUser)
				adminUserRoutes.DELETE("/:id", userHandler.DeleteUser)
			}

			adminClinicRoutes := adminRoutes.Group("/clinics")
			{
				adminClinicRoutes.GET("", clinicHandler.AdminListClinics)
				adminClinicRoutes.GET("/:id", clinicHandler.GetClinic)
				adminClinicRoutes.PUT("/:id", clinicHandler.UpdateClinic)
				adminClinicRoutes.DELETE("/:id", clinicHandler.DeleteClinic)
			}
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
