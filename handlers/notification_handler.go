package handlers

import (
	"MallBackend/models"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 查詢管理員通知，由新到舊最多50筆，供後台輪詢
func GetNotificationListHandler(c *gin.Context, db *gorm.DB) {
	var notifications []models.Notification
	err := db.
		Order("created_at DESC").
		Limit(50).
		Find(&notifications).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢通知列表失敗",
			"error":   err.Error(),
		})
		return
	}

	var notificationList []gin.H
	for _, notification := range notifications {
		notificationList = append(notificationList, gin.H{
			"ID":        notification.ID,
			"Message":   notification.Message,
			"IsRead":    notification.IsRead,
			"CreatedAt": notification.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "成功查詢通知列表",
		"notifications": notificationList,
	})
}

// 將通知標記為已讀
func MarkNotificationReadHandler(c *gin.Context, db *gorm.DB) {
	notificationID := c.Param("notificationID")

	result := db.
		Model(&models.Notification{}).
		Where("id = ?", notificationID).
		Update("is_read", true)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "更新通知失敗",
			"error":   result.Error.Error(),
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"message": "查無此通知",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "成功標記通知為已讀",
	})
}
