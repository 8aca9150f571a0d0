package models

import (
	"time"
)

// NotificationStatus is the delivery state of one outbound message.
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "Pending"
	NotificationStatusSent    NotificationStatus = "Sent"
	NotificationStatusFailed  NotificationStatus = "Failed"
)

// Notification records one dispatch attempt. Rows are append-only: a retry
// creates a new row instead of editing an old one. Admin overrides through
// the update endpoint are the only sanctioned edits.
type Notification struct {
	ID        uint               `gorm:"primaryKey" json:"id"`
	DonorID   uint               `gorm:"not null;index" json:"donor_id"`
	RequestID *uint              `gorm:"index" json:"request_id,omitempty"`
	Message   string             `gorm:"type:text;not null" json:"message"`
	Status    NotificationStatus `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	Donor     *Donor             `gorm:"foreignKey:DonorID" json:"donor,omitempty"`
	CreatedAt time.Time          `gorm:"not null" json:"created_at"`
}
