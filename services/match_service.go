package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"reachout-backend/models"
	"reachout-backend/utils"
)

// matchNotifier is the capability the match engine needs from the dispatch
// side. Matching talks to dispatch through this in-process interface, not
// through an HTTP round-trip to its own API.
type matchNotifier interface {
	NotifyMatch(matchID uint) (*models.Notification, error)
	HandleStatusChange(match *models.DonorMatch, previous models.MatchStatus) error
}

// MatchService selects, ranks and deduplicates eligible donors for a blood
// request and owns the match lifecycle.
type MatchService struct {
	db       *gorm.DB
	notifier matchNotifier
}

func NewMatchService(db *gorm.DB, notifier matchNotifier) *MatchService {
	return &MatchService{db: db, notifier: notifier}
}

// MatchResult pairs one match with its donor and the distance computed
// during the ranking pass.
type MatchResult struct {
	Match      models.DonorMatch `json:"match"`
	Donor      models.Donor      `json:"donor"`
	DistanceKm *float64          `json:"distance_km,omitempty"`
}

// MatchReport is the outcome of one matching or listing pass for a request.
type MatchReport struct {
	Request models.BloodRequest `json:"request"`
	Matches []MatchResult       `json:"matches"`
}

// AutoMatch finds every compatible, eligible donor for the request, orders
// them by proximity when the request has a location, creates one Pending
// match per donor not already matched, and hands the new matches to the
// dispatcher. Match creation commits as a single transaction before any
// dispatch happens; dispatch failures are logged and never roll matches
// back. Zero eligible donors is a success with an empty match list.
func (s *MatchService) AutoMatch(requestID uint) (*MatchReport, error) {
	var req models.BloodRequest
	if err := s.db.Preload("Hospital").First(&req, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("load blood request: %w", err)
	}

	report := &MatchReport{Request: req, Matches: []MatchResult{}}

	compatible := models.CompatibleDonorTypes(req.BloodType)
	if len(compatible) == 0 {
		// Unknown blood type: nothing can be matched against it.
		return report, nil
	}

	now := time.Now()
	cutoff := now.Add(-models.DonationCooldown)

	var donors []models.Donor
	err := s.db.
		Where("blood_type IN ?", compatible).
		Where("availability_status = ?", true).
		Where(s.db.Where("last_donation_date IS NULL").Or("last_donation_date < ?", cutoff)).
		Order("id").
		Find(&donors).Error
	if err != nil {
		return nil, fmt.Errorf("load eligible donors: %w", err)
	}

	var candidates []RankedDonor
	if req.Location != "" {
		candidates = RankByProximity(req.Location, donors)
	} else {
		candidates = unranked(donors)
	}

	// All new matches commit as one unit; a storage failure rolls the
	// whole batch back so no partial match set survives.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, cand := range candidates {
			var count int64
			if err := tx.Model(&models.DonorMatch{}).
				Where("request_id = ? AND donor_id = ?", req.ID, cand.Donor.ID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				// Already matched: a duplicate is a no-op, not an error.
				continue
			}

			match := models.DonorMatch{
				RequestID:  req.ID,
				DonorID:    cand.Donor.ID,
				Status:     models.MatchStatusPending,
				NotifiedAt: now,
			}
			if err := tx.Create(&match).Error; err != nil {
				if isDuplicateKey(err) {
					// A concurrent auto-match won the insert race.
					continue
				}
				return err
			}
			match.DistanceKm = cand.DistanceKm
			report.Matches = append(report.Matches, MatchResult{
				Match:      match,
				Donor:      cand.Donor,
				DistanceKm: cand.DistanceKm,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create matches: %w", err)
	}

	// Dispatch runs after commit; a stuck sender cannot stall or undo
	// match creation.
	for i := range report.Matches {
		id := report.Matches[i].Match.ID
		if _, err := s.notifier.NotifyMatch(id); err != nil {
			utils.ErrorLogger.Printf("Dispatch for match %d: %v", id, err)
			continue
		}
		var refreshed models.DonorMatch
		if err := s.db.First(&refreshed, id).Error; err == nil {
			refreshed.DistanceKm = report.Matches[i].DistanceKm
			report.Matches[i].Match = refreshed
		}
	}

	return report, nil
}

// MatchesForRequest lists the matches of one request with donor details and
// distances. A match whose donor has vanished from the directory is
// omitted rather than failing the listing.
func (s *MatchService) MatchesForRequest(requestID uint) (*MatchReport, error) {
	var req models.BloodRequest
	if err := s.db.Preload("Hospital").First(&req, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("load blood request: %w", err)
	}

	var matches []models.DonorMatch
	if err := s.db.Where("request_id = ?", requestID).Order("id").Find(&matches).Error; err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}

	report := &MatchReport{Request: req, Matches: []MatchResult{}}
	for _, match := range matches {
		var donor models.Donor
		if err := s.db.First(&donor, match.DonorID).Error; err != nil {
			continue
		}

		result := MatchResult{Match: match, Donor: donor}
		if req.Location != "" && donor.Location != "" {
			if dist, err := DistanceBetween(req.Location, donor.Location); err == nil {
				result.DistanceKm = &dist
				result.Match.DistanceKm = &dist
			}
		}
		report.Matches = append(report.Matches, result)
	}
	return report, nil
}

// MatchDetail loads one match with donor, request and computed distance.
func (s *MatchService) MatchDetail(matchID uint) (*models.DonorMatch, error) {
	var match models.DonorMatch
	err := s.db.
		Preload("Donor").
		Preload("Request").
		Preload("Request.Hospital").
		First(&match, matchID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("load match: %w", err)
	}

	if match.Request != nil && match.Donor != nil &&
		match.Request.Location != "" && match.Donor.Location != "" {
		if dist, err := DistanceBetween(match.Request.Location, match.Donor.Location); err == nil {
			match.DistanceKm = &dist
		}
	}
	return &match, nil
}

// UpdateMatchStatus applies an externally requested status change. Illegal
// transitions are rejected before anything is written; rewriting the same
// status is a no-op that triggers no side effects. On a real change the
// dispatcher emits the follow-up notification.
func (s *MatchService) UpdateMatchStatus(matchID uint, next models.MatchStatus) (*models.DonorMatch, error) {
	if !next.IsValid() {
		return nil, ErrInvalidTransition
	}

	var match models.DonorMatch
	if err := s.db.First(&match, matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("load match: %w", err)
	}

	previous := match.Status
	if !previous.CanTransitionTo(next) {
		return nil, ErrInvalidTransition
	}
	if previous == next {
		return &match, nil
	}

	match.Status = next
	if err := s.db.Model(&match).Update("status", next).Error; err != nil {
		return nil, fmt.Errorf("update match: %w", err)
	}

	// The triggering update still succeeds when the follow-up message
	// cannot be delivered; the failure lives on the notification row.
	if err := s.notifier.HandleStatusChange(&match, previous); err != nil {
		utils.ErrorLogger.Printf("Status-change notification for match %d: %v", match.ID, err)
	}

	return &match, nil
}

// DeleteMatch removes a match. Administrative action, outside the matching
// algorithm itself.
func (s *MatchService) DeleteMatch(matchID uint) error {
	var match models.DonorMatch
	if err := s.db.First(&match, matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("load match: %w", err)
	}
	if err := s.db.Delete(&match).Error; err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	return nil
}

// isDuplicateKey detects a unique-constraint violation from either the
// MySQL or the sqlite driver.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
