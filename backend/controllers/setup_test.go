package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"courseportal/backend/config"
	"courseportal/backend/models"
	"courseportal/backend/routes"
	"courseportal/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestApp wires the full router against an in-memory sqlite database.
// The DSN is named after the test so parallel tests stay isolated; a single
// connection keeps the shared-cache database alive for the test's duration.
func newTestApp(t *testing.T) (*fiber.App, *gorm.DB, *config.Config) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, utils.AutoMigrate(db))

	cfg := &config.Config{JWTSecret: "testsecret"}
	logger := log.New(io.Discard, "", 0)

	app := fiber.New()
	routes.SetupRoutes(app, db, cfg, logger)
	return app, db, cfg
}

// createUser inserts a user with the password "password123" and returns it
// with a valid token.
func createUser(t *testing.T, db *gorm.DB, cfg *config.Config, email, role string) (models.User, string) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Email:        email,
		PasswordHash: string(hashed),
		FullName:     "Test User",
		Role:         role,
	}
	require.NoError(t, db.Create(&user).Error)

	token, err := utils.GenerateJWTToken(user.ID, cfg)
	require.NoError(t, err)
	return user, token
}

func createCourse(t *testing.T, db *gorm.DB, code string, published bool) models.Course {
	t.Helper()

	course := models.Course{
		Code:           code,
		Title:          "Course " + code,
		Semester:       "Fall 2026",
		InstructorName: "Dr. Grant",
		IsPublished:    published,
	}
	require.NoError(t, db.Create(&course).Error)
	return course
}

func enroll(t *testing.T, db *gorm.DB, userID, courseID uint) {
	t.Helper()
	require.NoError(t, db.Create(&models.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now(),
	}).Error)
}

// createQuiz inserts a published two-question quiz worth one point each,
// with correct answers "A" and "B".
func createQuiz(t *testing.T, db *gorm.DB, courseID uint, timeLimitMinutes *int) models.Quiz {
	t.Helper()

	quiz := models.Quiz{
		CourseID:         courseID,
		Title:            "Checkpoint",
		TimeLimitMinutes: timeLimitMinutes,
		PassingScore:     60,
		IsPublished:      true,
	}
	require.NoError(t, db.Create(&quiz).Error)

	for i, correct := range []string{"A", "B"} {
		require.NoError(t, db.Create(&models.QuizQuestion{
			QuizID:        quiz.ID,
			QuestionText:  fmt.Sprintf("Question %d", i+1),
			QuestionType:  models.QuestionTypeMultipleChoice,
			Options:       datatypes.JSON([]byte(`["A","B","C","D"]`)),
			CorrectAnswer: correct,
			Points:        1,
			SortOrder:     i,
		}).Error)
	}
	return quiz
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeMap(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func decodeList(t *testing.T, resp *http.Response) []map[string]interface{} {
	t.Helper()
	var body []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}
