package models

import (
	"time"
)

// MatchStatus is the delivery/response lifecycle of a donor match. It only
// ever moves forward.
type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "Pending"
	MatchStatusNotified  MatchStatus = "Notified"
	MatchStatusAccepted  MatchStatus = "Accepted"
	MatchStatusDeclined  MatchStatus = "Declined"
	MatchStatusCompleted MatchStatus = "Completed"
)

// matchTransitions holds the allowed forward transitions.
var matchTransitions = map[MatchStatus][]MatchStatus{
	MatchStatusPending:  {MatchStatusNotified},
	MatchStatusNotified: {MatchStatusAccepted, MatchStatusDeclined},
	MatchStatusAccepted: {MatchStatusCompleted},
}

// IsValid reports whether s is one of the known match statuses.
func (s MatchStatus) IsValid() bool {
	switch s {
	case MatchStatusPending, MatchStatusNotified, MatchStatusAccepted,
		MatchStatusDeclined, MatchStatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status may move to next. Rewriting
// the same status is allowed so re-applied updates stay idempotent.
func (s MatchStatus) CanTransitionTo(next MatchStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range matchTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// DonorMatch pairs one blood request with one donor. At most one match may
// exist per (request, donor) pair, enforced by the composite unique index.
type DonorMatch struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	RequestID  uint          `gorm:"not null;uniqueIndex:idx_request_donor" json:"request_id"`
	DonorID    uint          `gorm:"not null;uniqueIndex:idx_request_donor" json:"donor_id"`
	Status     MatchStatus   `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	NotifiedAt time.Time     `json:"notified_at"`
	Donor      *Donor        `gorm:"foreignKey:DonorID" json:"donor,omitempty"`
	Request    *BloodRequest `gorm:"foreignKey:RequestID" json:"request,omitempty"`
	CreatedAt  time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time     `gorm:"not null" json:"updated_at"`

	// DistanceKm is computed per ranking pass and never persisted.
	DistanceKm *float64 `gorm:"-" json:"distance_km,omitempty"`
}
