package models

import "time"

// Address is a delivery location owned by exactly one user.
type Address struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);not null;index"`
	User      *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Street    string    `json:"street" gorm:"type:varchar(255);not null"`
	Number    string    `json:"number" gorm:"type:varchar(20);not null"`
	District  string    `json:"district" gorm:"type:varchar(120);not null"`
	City      string    `json:"city" gorm:"type:varchar(120);not null"`
	State     string    `json:"state" gorm:"type:varchar(2);not null"`
	ZipCode   string    `json:"zipCode" gorm:"type:varchar(12);not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
