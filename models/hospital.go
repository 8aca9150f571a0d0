package models

import (
	"time"
)

type Hospital struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"type:varchar(100);not null" json:"name"`
	City          string    `gorm:"type:varchar(50);not null" json:"city"`
	Location      string    `gorm:"type:varchar(100)" json:"location,omitempty"`
	ContactNumber string    `gorm:"type:varchar(20)" json:"contact_number,omitempty"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}
