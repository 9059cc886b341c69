package models

import "gorm.io/gorm"

// 同一台購物車中每項商品只會有一列，重複加入時累加數量
type CartItem struct {
	gorm.Model
	CartID    uint `gorm:"foreignKey:CartID"`
	Cart      Cart
	ProductID uint `gorm:"foreignKey:ProductID"`
	Product   Product
	Quantity  uint `gorm:"not null"`
}
