package models

import "time"

// User is a registered account. PasswordHash never leaves the service.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:128;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password;size:128;not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
