package models

import "gorm.io/gorm"

// 每位會員只有一台購物車，第一次存取時建立
type Cart struct {
	gorm.Model
	UserID    uint       `gorm:"uniqueIndex"`
	CartItems []CartItem `gorm:"foreignKey:CartID"`
}
