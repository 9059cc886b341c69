package models

import "gorm.io/gorm"

type OrderItem struct {
	gorm.Model
	OrderID   uint `gorm:"foreignKey:OrderID"`
	Order     Order
	ProductID uint `gorm:"foreignKey:ProductID"`
	Product   Product
	Quantity  uint `gorm:"not null"`
	Price     uint `gorm:"not null"` //結帳當下的商品單價，之後修改商品價格不影響歷史訂單
}
