package controllers_test

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"testing"

	"courseportal/backend/controllers"
	"courseportal/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingMailer rejects selected addresses to exercise the partial-failure
// path of the fan-out.
type failingMailer struct {
	failFor map[string]bool
	sent    []string
}

func (m *failingMailer) Send(to, subject, html string) error {
	if m.failFor[to] {
		return errors.New("mailbox unavailable")
	}
	m.sent = append(m.sent, to)
	return nil
}

func TestSendNotificationFanOut(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, adminToken := createUser(t, db, cfg, "admin@example.com", models.RoleAdmin)
	course := createCourse(t, db, "CS101", true)

	for i := 1; i <= 3; i++ {
		user, _ := createUser(t, db, cfg, fmt.Sprintf("student%d@example.com", i), models.RoleStudent)
		enroll(t, db, user.ID, course.ID)
	}

	resp := doRequest(t, app, fiber.MethodPost, "/api/admin/notifications", adminToken, fiber.Map{
		"course_id": course.ID,
		"title":     "Midterm moved",
		"message":   "The midterm is now on March 3.",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeMap(t, resp)
	assert.Equal(t, float64(3), body["recipients"])
	assert.Equal(t, float64(3), body["emails_sent"])
	assert.Equal(t, float64(0), body["emails_failed"])

	var recipients []models.NotificationRecipient
	require.NoError(t, db.Find(&recipients).Error)
	require.Len(t, recipients, 3)
	for _, r := range recipients {
		assert.True(t, r.EmailSent)
		assert.Nil(t, r.ReadAt)
	}
}

func TestSendNotificationPartialEmailFailure(t *testing.T) {
	app, db, cfg := newTestApp(t)
	admin, _ := createUser(t, db, cfg, "admin@example.com", models.RoleAdmin)
	course := createCourse(t, db, "CS101", true)

	var users []models.User
	for i := 1; i <= 3; i++ {
		user, _ := createUser(t, db, cfg, fmt.Sprintf("student%d@example.com", i), models.RoleStudent)
		enroll(t, db, user.ID, course.ID)
		users = append(users, user)
	}

	// Replace the route's mailer with one that fails for the second student.
	mailer := &failingMailer{failFor: map[string]bool{users[1].Email: true}}
	nc := controllers.NewNotificationsController(db, cfg, mailer, log.New(io.Discard, "", 0))
	app.Post("/api/test/notifications", func(c *fiber.Ctx) error {
		c.Locals("user_id", admin.ID)
		return nc.SendNotification(c)
	})

	resp := doRequest(t, app, fiber.MethodPost, "/api/test/notifications", "", fiber.Map{
		"course_id": course.ID,
		"title":     "Midterm moved",
		"message":   "The midterm is now on March 3.",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeMap(t, resp)
	assert.Equal(t, float64(3), body["recipients"])
	assert.Equal(t, float64(2), body["emails_sent"])
	assert.Equal(t, float64(1), body["emails_failed"])

	// All three recipient rows exist regardless of email outcome; only the
	// failed one stays email_sent=false.
	var recipients []models.NotificationRecipient
	require.NoError(t, db.Order("user_id").Find(&recipients).Error)
	require.Len(t, recipients, 3)
	assert.True(t, recipients[0].EmailSent)
	assert.False(t, recipients[1].EmailSent)
	assert.True(t, recipients[2].EmailSent)
}

func TestSendNotificationRequiresStaff(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, studentToken := createUser(t, db, cfg, "student@example.com", models.RoleStudent)
	course := createCourse(t, db, "CS101", true)

	resp := doRequest(t, app, fiber.MethodPost, "/api/admin/notifications", studentToken, fiber.Map{
		"course_id": course.ID,
		"title":     "Nope",
		"message":   "Nope",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestNotificationInboxAndMarkRead(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, adminToken := createUser(t, db, cfg, "admin@example.com", models.RoleAdmin)
	student, studentToken := createUser(t, db, cfg, "student@example.com", models.RoleStudent)
	course := createCourse(t, db, "CS101", true)
	enroll(t, db, student.ID, course.ID)

	resp := doRequest(t, app, fiber.MethodPost, "/api/admin/notifications", adminToken, fiber.Map{
		"course_id": course.ID,
		"title":     "Welcome",
		"message":   "See the syllabus.",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, fiber.MethodGet, "/api/notifications", studentToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	inbox := decodeMap(t, resp)
	assert.Equal(t, float64(1), inbox["unread"])

	entries := inbox["notifications"].([]interface{})
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]interface{})
	assert.Equal(t, "Welcome", entry["title"])
	assert.Equal(t, "CS101", entry["course_code"])
	assert.Nil(t, entry["read_at"])

	recipientID := entry["id"].(float64)
	path := fmt.Sprintf("/api/notifications/%d/read", int(recipientID))
	resp = doRequest(t, app, fiber.MethodPost, path, studentToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	firstRead := decodeMap(t, resp)["read_at"]
	require.NotNil(t, firstRead)

	// Marking again keeps the original timestamp.
	resp = doRequest(t, app, fiber.MethodPost, path, studentToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, firstRead, decodeMap(t, resp)["read_at"])

	resp = doRequest(t, app, fiber.MethodGet, "/api/notifications", studentToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), decodeMap(t, resp)["unread"])
}

func TestMarkReadOnlyOwnNotifications(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, adminToken := createUser(t, db, cfg, "admin@example.com", models.RoleAdmin)
	student, _ := createUser(t, db, cfg, "student@example.com", models.RoleStudent)
	_, otherToken := createUser(t, db, cfg, "other@example.com", models.RoleStudent)
	course := createCourse(t, db, "CS101", true)
	enroll(t, db, student.ID, course.ID)

	resp := doRequest(t, app, fiber.MethodPost, "/api/admin/notifications", adminToken, fiber.Map{
		"course_id": course.ID,
		"title":     "Welcome",
		"message":   "See the syllabus.",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var recipient models.NotificationRecipient
	require.NoError(t, db.First(&recipient).Error)

	resp = doRequest(t, app, fiber.MethodPost,
		fmt.Sprintf("/api/notifications/%d/read", recipient.ID), otherToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
