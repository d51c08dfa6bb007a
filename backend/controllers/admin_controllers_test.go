package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"courseportal/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRoutesRequireStaff(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, studentToken := createUser(t, db, cfg, "student@example.com", models.RoleStudent)

	resp := doRequest(t, app, fiber.MethodGet, "/api/admin/courses", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doRequest(t, app, fiber.MethodGet, "/api/admin/stats", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestInstructorCountsAsStaff(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createUser(t, db, cfg, "prof@example.com", models.RoleInstructor)

	resp := doRequest(t, app, fiber.MethodGet, "/api/admin/stats", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminCreateAndUpdateCourse(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createUser(t, db, cfg, "admin@example.com", models.RoleAdmin)

	resp := doRequest(t, app, fiber.MethodPost, "/api/admin/courses", token, fiber.Map{
		"code":             "CS101",
		"title":            "Data Structures",
		"semester":         "Fall 2026",
		"instructor_name":  "Dr. Grant",
		"instructor_email": "grant@example.com",
		"office_hours":     []string{"Mon 10-12"},
		"textbooks":        []string{"CLRS"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decodeMap(t, resp)["course"].(map[string]interface{})
	courseID := uint(created["id"].(float64))
	assert.Equal(t, false, created["is_published"])

	// Duplicate code is rejected.
	resp = doRequest(t, app, fiber.MethodPost, "/api/admin/courses", token, fiber.Map{
		"code":  "CS101",
		"title": "Other",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Publish it.
	resp = doRequest(t, app, fiber.MethodPut, fmt.Sprintf("/api/admin/courses/%d", courseID), token, fiber.Map{
		"is_published": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var course models.Course
	require.NoError(t, db.First(&course, courseID).Error)
	assert.True(t, course.IsPublished)
	assert.Equal(t, "Data Structures", course.Title)
	assert.Equal(t, []string{"CLRS"}, []string(course.Textbooks))
}

func TestAdminListsUnpublishedCourses(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createUser(t, db, cfg, "admin@example.com", models.RoleAdmin)

	createCourse(t, db, "CS101", true)
	createCourse(t, db, "CS999", false)

	resp := doRequest(t, app, fiber.MethodGet, "/api/admin/courses", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeList(t, resp), 2)
}

func TestAdminReplaceSchedule(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createUser(t, db, cfg, "admin@example.com", models.RoleAdmin)
	course := createCourse(t, db, "CS101", true)

	require.NoError(t, db.Create(&models.ScheduleItem{
		CourseID: course.ID, Chapter: "0", Topic: "Old topic",
	}).Error)

	resp := doRequest(t, app, fiber.MethodPut, fmt.Sprintf("/api/admin/courses/%d/schedule", course.ID), token, fiber.Map{
		"items": []fiber.Map{
			{"chapter": "1", "topic": "Arrays", "notes": []string{"Big-O recap"}},
			{"chapter": "2", "topic": "Linked lists", "video_url": "https://youtu.be/x", "video_type": "youtube"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items []models.ScheduleItem
	require.NoError(t, db.Where("course_id = ?", course.ID).Order("sort_order").Find(&items).Error)
	require.Len(t, items, 2)
	assert.Equal(t, "Arrays", items[0].Topic)
	assert.Equal(t, 0, items[0].SortOrder)
	assert.Equal(t, "Linked lists", items[1].Topic)
	assert.Equal(t, 1, items[1].SortOrder)
}

func TestAdminAddAndDeleteResource(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createUser(t, db, cfg, "admin@example.com", models.RoleAdmin)
	course := createCourse(t, db, "CS101", true)

	resp := doRequest(t, app, fiber.MethodPost, fmt.Sprintf("/api/admin/courses/%d/resources", course.ID), token, fiber.Map{
		"name":     "Week 1 slides",
		"type":     "slides",
		"file_url": "https://cdn.example.com/slides/abc.pdf",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resource := decodeMap(t, resp)["resource"].(map[string]interface{})
	resourceID := int(resource["id"].(float64))

	// An unknown type is rejected.
	resp = doRequest(t, app, fiber.MethodPost, fmt.Sprintf("/api/admin/courses/%d/resources", course.ID), token, fiber.Map{
		"name":     "Bad",
		"type":     "torrent",
		"file_url": "https://example.com/x",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = doRequest(t, app, fiber.MethodDelete,
		fmt.Sprintf("/api/admin/courses/%d/resources/%d", course.ID, resourceID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	db.Model(&models.Resource{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestAdminQuizAuthoring(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createUser(t, db, cfg, "admin@example.com", models.RoleAdmin)
	course := createCourse(t, db, "CS101", true)

	resp := doRequest(t, app, fiber.MethodPost, "/api/admin/quizzes", token, fiber.Map{
		"course_id":          course.ID,
		"title":              "Checkpoint",
		"time_limit_minutes": 10,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decodeMap(t, resp)["quiz"].(map[string]interface{})
	quizID := uint(created["id"].(float64))
	assert.Equal(t, float64(60), created["passing_score"])

	resp = doRequest(t, app, fiber.MethodPut, fmt.Sprintf("/api/admin/quizzes/%d/questions", quizID), token, fiber.Map{
		"questions": []fiber.Map{
			{
				"question_text":  "Is a stack LIFO?",
				"question_type":  models.QuestionTypeTrueFalse,
				"options":        []string{"True", "False"},
				"correct_answer": "True",
			},
			{
				"question_text":  "Binary search complexity?",
				"options":        []string{"O(n)", "O(log n)"},
				"correct_answer": "O(log n)",
				"points":         2,
			},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The authoring view includes correct answers.
	resp = doRequest(t, app, fiber.MethodGet, fmt.Sprintf("/api/admin/quizzes/%d", quizID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	quiz := decodeMap(t, resp)["quiz"].(map[string]interface{})
	questions := quiz["questions"].([]interface{})
	require.Len(t, questions, 2)
	first := questions[0].(map[string]interface{})
	assert.Equal(t, "True", first["correct_answer"])
	assert.Equal(t, float64(1), first["points"])
	second := questions[1].(map[string]interface{})
	assert.Equal(t, float64(2), second["points"])

	resp = doRequest(t, app, fiber.MethodDelete, fmt.Sprintf("/api/admin/quizzes/%d", quizID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	db.Model(&models.QuizQuestion{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestAdminStats(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createUser(t, db, cfg, "admin@example.com", models.RoleAdmin)
	student, _ := createUser(t, db, cfg, "student@example.com", models.RoleStudent)
	course := createCourse(t, db, "CS101", true)
	enroll(t, db, student.ID, course.ID)
	createQuiz(t, db, course.ID, nil)

	resp := doRequest(t, app, fiber.MethodGet, "/api/admin/stats", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stats := decodeMap(t, resp)
	assert.Equal(t, float64(1), stats["courses"])
	assert.Equal(t, float64(1), stats["students"])
	assert.Equal(t, float64(1), stats["enrollments"])
	assert.Equal(t, float64(1), stats["quizzes"])
}

func TestAdminStudentsRoster(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createUser(t, db, cfg, "admin@example.com", models.RoleAdmin)
	student, _ := createUser(t, db, cfg, "student@example.com", models.RoleStudent)
	course := createCourse(t, db, "CS101", true)
	enroll(t, db, student.ID, course.ID)

	resp := doRequest(t, app, fiber.MethodGet, "/api/admin/students", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	roster := decodeList(t, resp)
	require.Len(t, roster, 1)
	user := roster[0]["user"].(map[string]interface{})
	assert.Equal(t, "student@example.com", user["email"])
	courseInfo := roster[0]["course"].(map[string]interface{})
	assert.Equal(t, "CS101", courseInfo["code"])
}

func TestAdminDeleteCourseCascades(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createUser(t, db, cfg, "admin@example.com", models.RoleAdmin)
	student, _ := createUser(t, db, cfg, "student@example.com", models.RoleStudent)
	course := createCourse(t, db, "CS101", true)
	enroll(t, db, student.ID, course.ID)
	createQuiz(t, db, course.ID, nil)

	resp := doRequest(t, app, fiber.MethodDelete, fmt.Sprintf("/api/admin/courses/%d", course.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for name, model := range map[string]interface{}{
		"courses":     &models.Course{},
		"quizzes":     &models.Quiz{},
		"questions":   &models.QuizQuestion{},
		"enrollments": &models.Enrollment{},
	} {
		var count int64
		db.Model(model).Count(&count)
		assert.Equal(t, int64(0), count, name)
	}
}
