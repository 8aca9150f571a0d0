package models

import (
	"time"
)

// DonationRecord is one completed donation. Creating a record stamps the
// donor's LastDonationDate, which drives the eligibility cooldown.
type DonationRecord struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	DonorID              uint      `gorm:"not null;index" json:"donor_id"`
	HospitalID           uint      `gorm:"not null" json:"hospital_id"`
	BloodType            BloodType `gorm:"type:varchar(5);not null" json:"blood_type"`
	DonatedAt            time.Time `gorm:"not null" json:"donated_at"`
	NextEligibleDonation time.Time `gorm:"not null" json:"next_eligible_donation"`
}
