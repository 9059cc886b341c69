package models

import "gorm.io/gorm"

type Product struct {
	gorm.Model
	Name        string `gorm:"not null"`
	Price       uint   `gorm:"not null"`
	Stock       uint   `gorm:"not null"`
	Description string
	Category    string
	ImageURL    string
	Images      []ProductImage `gorm:"constraint:OnDelete:CASCADE"`
}
