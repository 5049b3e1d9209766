package models

import "time"

// User represents a customer or an administrator.
type User struct {
	ID           string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name         string     `json:"name" gorm:"type:varchar(120);not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Phone        string     `json:"phone" gorm:"type:varchar(20)"`
	BirthDate    *time.Time `json:"birthDate,omitempty" gorm:"type:date"`
	Role         Role       `json:"role" gorm:"type:varchar(10);not null;default:CLIENT"`
	PasswordHash string     `json:"-" gorm:"type:varchar(255);not null"` // never serialized
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
