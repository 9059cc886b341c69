package models

import "gorm.io/gorm"

type ProductImage struct {
	gorm.Model
	ProductID uint `gorm:"foreignKey:ProductID"`
	URL       string
}
