package models

import "gorm.io/gorm"

// 訂單狀態，目前為模擬付款流程，訂單成立即完成
const OrderStatusCompleted = "COMPLETED"

// 訂單成立後不再修改，金額為結帳當下計算的總額
type Order struct {
	gorm.Model
	UserID           uint `gorm:"foreignKey:UserID"`
	User             User
	OrderItems       []OrderItem
	Total            uint   `gorm:"not null"`
	Status           string `gorm:"not null"`
	PaymentMethod    string `gorm:"not null"`
	ShippingMethod   string `gorm:"not null"`
	RecipientName    string `gorm:"not null"`
	RecipientPhone   string `gorm:"not null"`
	RecipientAddress string `gorm:"not null"`
}
