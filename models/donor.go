package models

import (
	"time"
)

// DonationCooldown is the minimum interval between two donations by the
// same donor.
const DonationCooldown = 90 * 24 * time.Hour

type Donor struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Name               string     `gorm:"type:varchar(100);not null" json:"name"`
	Age                int        `gorm:"not null" json:"age"`
	BloodType          BloodType  `gorm:"type:varchar(5);not null;index" json:"blood_type"`
	Phone              string     `gorm:"type:varchar(20);not null;uniqueIndex" json:"phone"`
	Email              *string    `gorm:"type:varchar(100);uniqueIndex" json:"email,omitempty"`
	City               string     `gorm:"type:varchar(50);not null" json:"city"`
	Location           string     `gorm:"type:varchar(100)" json:"location,omitempty"`
	AvailabilityStatus bool       `gorm:"not null;default:true" json:"availability_status"`
	LastDonationDate   *time.Time `json:"last_donation_date,omitempty"`
	CreatedAt          time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"not null" json:"updated_at"`
}

// IsEligible reports whether the donor may donate at the given time: the
// donor must be marked available and either never have donated or be past
// the cooldown since the last donation.
func (d *Donor) IsEligible(now time.Time) bool {
	if !d.AvailabilityStatus {
		return false
	}
	if d.LastDonationDate == nil {
		return true
	}
	return now.Sub(*d.LastDonationDate) > DonationCooldown
}
