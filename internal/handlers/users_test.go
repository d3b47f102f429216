package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"clinic-management-server/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	db, mock := newTestDB(t)
	handler := NewUserHandler(db)

	router := gin.New()
	router.GET("/api/users/me", authAs("u-1", models.UserTypePatient), handler.Me)
	router.PUT("/api/users/update-profile", authAs("u-1", models.UserTypePatient), handler.UpdateProfile)
	router.GET("/api/admin/users", authAs("admin-1", models.UserTypeAdmin), handler.GetUsers)
	router.POST("/api/admin/users", authAs("admin-1", models.UserTypeAdmin), handler.CreateUser)
	router.DELETE("/api/admin/users/:id", authAs("admin-1", models.UserTypeAdmin), handler.DeleteUser)
	return router, mock
}

func TestMeReturnsSanitizedUser(t *testing.T) {
	router, mock := userRouter(t)

	rows := sqlmock.NewRows([]string{"id", "username", "email", "password", "user_type", "is_active"}).
		AddRow("u-1", "mona", "mona@example.com", "$2a$10$secrethash", "patient", true)
	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE id = \$1`).
		WithArgs("u-1", 1).
		WillReturnRows(rows)

	w := performRequest(router, http.MethodGet, "/api/users/me", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "secrethash")

	var user models.UserSanitized
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &user))
	assert.Equal(t, "mona", user.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfileKeepsUserTypeImmutable(t *testing.T) {
	router, mock := userRouter(t)

	rows := sqlmock.NewRows([]string{"id", "username", "email", "user_type", "is_active"}).
		AddRow("u-1", "mona", "mona@example.com", "patient", true)
	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE id = \$1`).
		WithArgs("u-1", 1).
		WillReturnRows(rows)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// user_type is not a recognized field on this endpoint
	body := `{"first_name":"Mona","user_type":"admin"}`
	w := performRequest(router, http.MethodPut, "/api/users/update-profile", body)

	assert.Equal(t, http.StatusOK, w.Code)

	var user models.UserSanitized
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &user))
	assert.Equal(t, models.UserTypePatient, user.UserType)
	assert.Equal(t, "Mona", user.FirstName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfileRejectsBadPhone(t *testing.T) {
	router, mock := userRouter(t)

	rows := sqlmock.NewRows([]string{"id", "username", "user_type"}).
		AddRow("u-1", "mona", "patient")
	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE id = \$1`).
		WithArgs("u-1", 1).
		WillReturnRows(rows)

	w := performRequest(router, http.MethodPut, "/api/users/update-profile", `{"phone":"12345"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminCreateUserRequiresDoctorFields(t *testing.T) {
	router, mock := userRouter(t)

	body := `{"username":"drkhaled","email":"khaled@example.com","password":"s3cret-pass","first_name":"Khaled","last_name":"Said","user_type":"doctor","specialization":"Cardiology"}`
	w := performRequest(router, http.MethodPost, "/api/admin/users", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeEnvelope(t, w).Error, "clinic")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUsersFiltersByType(t *testing.T) {
	router, mock := userRouter(t)

	rows := sqlmock.NewRows([]string{"id", "username", "user_type", "is_active"}).
		AddRow("u-9", "drkhaled", "doctor", true)
	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE user_type = \$1 ORDER BY created_at DESC`).
		WithArgs("doctor").
		WillReturnRows(rows)

	w := performRequest(router, http.MethodGet, "/api/admin/users?user_type=doctor", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var users []models.UserSanitized
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &users))
	require.Len(t, users, 1)
	assert.Equal(t, models.UserTypeDoctor, users[0].UserType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUserCascades(t *testing.T) {
	router, mock := userRouter(t)

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE id = \$1`).
		WithArgs("u-1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "user_type"}).
			AddRow("u-1", "mona", "patient"))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "patients" WHERE user_id = \$1`).
		WithArgs("u-1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow("p-1", "u-1"))
	mock.ExpectExec(`DELETE FROM "appointments" WHERE patient_id = \$1`).
		WithArgs("p-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "patients" WHERE "patients"\."id" = \$1`).
		WithArgs("p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) FROM "doctors" WHERE user_id = \$1`).
		WithArgs("u-1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(`DELETE FROM "refresh_tokens" WHERE user_id = \$1`).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "users" WHERE id = \$1`).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := performRequest(router, http.MethodDelete, "/api/admin/users/u-1", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
