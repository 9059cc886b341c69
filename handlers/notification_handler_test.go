package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"MallBackend/models"
)

func TestGetNotificationListNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	router, _ := setupTestRouter(t, db, 99, models.RoleAdmin)

	old := models.Notification{Message: "新訂單 #1 已建立，請盡快出貨。收件人: 王小明"}
	db.Create(&old)
	db.Model(&old).Update("created_at", time.Now().Add(-time.Hour))
	db.Create(&models.Notification{Message: "新訂單 #2 已建立，請盡快出貨。收件人: 李小華"})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, newJSONRequest(http.MethodGet, "/api/v1/admin/notifications", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		Notifications []struct {
			ID      uint   `json:"ID"`
			Message string `json:"Message"`
			IsRead  bool   `json:"IsRead"`
		} `json:"notifications"`
	}
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Len(t, response.Notifications, 2)
	assert.Contains(t, response.Notifications[0].Message, "#2")
	assert.False(t, response.Notifications[0].IsRead)
}

func TestMarkNotificationRead(t *testing.T) {
	db := setupTestDB(t)
	router, _ := setupTestRouter(t, db, 99, models.RoleAdmin)

	notification := models.Notification{Message: "新訂單 #1 已建立，請盡快出貨。收件人: 王小明"}
	db.Create(&notification)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, newJSONRequest(http.MethodPatch, "/api/v1/admin/notifications/"+itoa(notification.ID)+"/read", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)

	var updated models.Notification
	db.First(&updated, notification.ID)
	assert.True(t, updated.IsRead)

	//查無通知回傳404
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, newJSONRequest(http.MethodPatch, "/api/v1/admin/notifications/999/read", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
