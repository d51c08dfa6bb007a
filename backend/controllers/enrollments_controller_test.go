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

func TestEnroll(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createUser(t, db, cfg, "student@example.com", models.RoleStudent)
	course := createCourse(t, db, "CS101", true)

	resp := doRequest(t, app, fiber.MethodPost, fmt.Sprintf("/api/courses/%d/enroll", course.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeMap(t, resp)["enrolled"])

	var count int64
	db.Model(&models.Enrollment{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestEnrollTwiceKeepsOneRow(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createUser(t, db, cfg, "student@example.com", models.RoleStudent)
	course := createCourse(t, db, "CS101", true)

	path := fmt.Sprintf("/api/courses/%d/enroll", course.ID)
	resp := doRequest(t, app, fiber.MethodPost, path, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, fiber.MethodPost, path, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Already enrolled", decodeMap(t, resp)["message"])

	var count int64
	db.Model(&models.Enrollment{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestEnrollUnpublishedCourse(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createUser(t, db, cfg, "student@example.com", models.RoleStudent)
	course := createCourse(t, db, "CS999", false)

	resp := doRequest(t, app, fiber.MethodPost, fmt.Sprintf("/api/courses/%d/enroll", course.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetEnrollmentsWithProgress(t *testing.T) {
	app, db, cfg := newTestApp(t)
	user, token := createUser(t, db, cfg, "student@example.com", models.RoleStudent)
	course := createCourse(t, db, "CS101", true)
	enroll(t, db, user.ID, course.ID)

	var items []models.ScheduleItem
	for i := 0; i < 4; i++ {
		item := models.ScheduleItem{CourseID: course.ID, Chapter: "1", Topic: fmt.Sprintf("Lesson %d", i+1), SortOrder: i}
		require.NoError(t, db.Create(&item).Error)
		items = append(items, item)
	}

	// Complete one of the four lessons.
	resp := doRequest(t, app, fiber.MethodPost,
		fmt.Sprintf("/api/schedule-items/%d/progress", items[0].ID), token,
		fiber.Map{"completed": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, fiber.MethodGet, "/api/enrollments", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	enrollments := decodeList(t, resp)
	require.Len(t, enrollments, 1)
	assert.Equal(t, float64(4), enrollments[0]["total_lessons"])
	assert.Equal(t, float64(1), enrollments[0]["done_lessons"])
	assert.Equal(t, float64(25), enrollments[0]["progress_percent"])
}

func TestLessonProgressRequiresEnrollment(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := createUser(t, db, cfg, "student@example.com", models.RoleStudent)
	course := createCourse(t, db, "CS101", true)

	item := models.ScheduleItem{CourseID: course.ID, Chapter: "1", Topic: "Arrays"}
	require.NoError(t, db.Create(&item).Error)

	resp := doRequest(t, app, fiber.MethodPost,
		fmt.Sprintf("/api/schedule-items/%d/progress", item.ID), token,
		fiber.Map{"completed": true})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLessonProgressToggle(t *testing.T) {
	app, db, cfg := newTestApp(t)
	user, token := createUser(t, db, cfg, "student@example.com", models.RoleStudent)
	course := createCourse(t, db, "CS101", true)
	enroll(t, db, user.ID, course.ID)

	item := models.ScheduleItem{CourseID: course.ID, Chapter: "1", Topic: "Arrays"}
	require.NoError(t, db.Create(&item).Error)

	path := fmt.Sprintf("/api/schedule-items/%d/progress", item.ID)
	resp := doRequest(t, app, fiber.MethodPost, path, token, fiber.Map{"completed": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var progress models.LessonProgress
	require.NoError(t, db.Where("user_id = ? AND schedule_item_id = ?", user.ID, item.ID).First(&progress).Error)
	assert.True(t, progress.Completed)
	assert.NotNil(t, progress.CompletedAt)

	// Un-completing clears the timestamp and keeps a single row.
	resp = doRequest(t, app, fiber.MethodPost, path, token, fiber.Map{"completed": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	db.Model(&models.LessonProgress{}).Count(&count)
	assert.Equal(t, int64(1), count)

	progress = models.LessonProgress{}
	require.NoError(t, db.Where("user_id = ? AND schedule_item_id = ?", user.ID, item.ID).First(&progress).Error)
	assert.False(t, progress.Completed)
	assert.Nil(t, progress.CompletedAt)
}
