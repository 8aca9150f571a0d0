package models

import (
	"time"
)

// RequestStatus is the lifecycle status of a blood request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "Pending"
	RequestStatusMatched   RequestStatus = "Matched"
	RequestStatusFulfilled RequestStatus = "Fulfilled"
	RequestStatusCancelled RequestStatus = "Cancelled"
)

type BloodRequest struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	PatientName   string        `gorm:"type:varchar(100);not null" json:"patient_name"`
	BloodType     BloodType     `gorm:"type:varchar(5);not null" json:"blood_type"`
	City          string        `gorm:"type:varchar(50);not null" json:"city"`
	Location      string        `gorm:"type:varchar(100)" json:"location,omitempty"`
	ContactNumber string        `gorm:"type:varchar(20);not null" json:"contact_number"`
	UrgencyLevel  string        `gorm:"type:varchar(20);not null;default:'Normal'" json:"urgency_level"`
	Status        RequestStatus `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	HospitalID    uint          `gorm:"not null;index" json:"hospital_id"`
	Hospital      *Hospital     `gorm:"foreignKey:HospitalID" json:"hospital,omitempty"`
	// RequesterID links the request back to the directory entry of whoever
	// filed it; the unmatched sweep notifies this contact.
	RequesterID *uint     `gorm:"index" json:"requester_id,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// HospitalName returns the preloaded hospital name or a neutral fallback
// for message rendering.
func (r *BloodRequest) HospitalName() string {
	if r.Hospital != nil && r.Hospital.Name != "" {
		return r.Hospital.Name
	}
	return "the hospital"
}
