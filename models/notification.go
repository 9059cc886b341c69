package models

import "gorm.io/gorm"

// 管理員通知，只增不改，由後台輪詢讀取
type Notification struct {
	gorm.Model
	Message string `gorm:"not null"`
	IsRead  bool   `gorm:"not null;default:false"`
}
