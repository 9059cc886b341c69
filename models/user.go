package models

import "gorm.io/gorm"

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	gorm.Model
	Username    string `gorm:"unique;not null"`
	Email       string
	Password    string `gorm:"not null"`
	Name        string
	Address     string
	Phone       string
	Cart        Cart
	Orders      []Order
	LoginTokens []LoginToken
	Role        string `gorm:"not null;default:USER"`
}
