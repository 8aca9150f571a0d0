package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"reachout-backend/models"
	"reachout-backend/utils"
)

type sweepNotifier interface {
	NotifyNoMatch(requestID uint) (*models.Notification, error)
}

// SweepService scans for pending requests that still have no matches and
// notifies their requesters. It only reads match state, so sweeping is safe
// to run repeatedly and concurrently with ordinary matching.
type SweepService struct {
	db       *gorm.DB
	notifier sweepNotifier
	Interval time.Duration
	stop     chan struct{}
}

func NewSweepService(db *gorm.DB, notifier sweepNotifier) *SweepService {
	return &SweepService{
		db:       db,
		notifier: notifier,
		Interval: 15 * time.Minute,
		stop:     make(chan struct{}),
	}
}

// SweepReport summarizes one pass over unmatched requests.
type SweepReport struct {
	Unmatched int `json:"unmatched_requests"`
	Sent      int `json:"notifications_sent"`
	Failed    int `json:"notifications_failed"`
	Skipped   int `json:"skipped"`
}

// SweepUnmatched runs one pass: every Pending request with zero match rows
// gets a no-match notification to its requester contact. Requests without a
// reachable requester are skipped.
func (s *SweepService) SweepUnmatched() (*SweepReport, error) {
	sub := s.db.Model(&models.DonorMatch{}).Select("request_id")

	var requests []models.BloodRequest
	err := s.db.
		Where("status = ?", models.RequestStatusPending).
		Where("id NOT IN (?)", sub).
		Order("id").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("load unmatched requests: %w", err)
	}

	report := &SweepReport{Unmatched: len(requests)}
	for _, req := range requests {
		notif, err := s.notifier.NotifyNoMatch(req.ID)
		switch {
		case errors.Is(err, ErrDonorNotFound) || errors.Is(err, ErrRequestNotFound):
			report.Skipped++
		case err != nil:
			utils.ErrorLogger.Printf("No-match notification for request %d: %v", req.ID, err)
			report.Failed++
		case notif.Status == models.NotificationStatusSent:
			report.Sent++
		default:
			report.Failed++
		}
	}
	return report, nil
}

// Start runs the sweep on a ticker until Stop is called. The cadence is
// deployment policy; on-demand invocation through the API works without
// starting the ticker at all.
func (s *SweepService) Start() {
	go func() {
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				report, err := s.SweepUnmatched()
				if err != nil {
					utils.ErrorLogger.Printf("Unmatched sweep failed: %v", err)
					continue
				}
				if report.Unmatched > 0 {
					utils.InfoLogger.Printf("Sweep: %d unmatched requests, %d notified, %d failed, %d skipped",
						report.Unmatched, report.Sent, report.Failed, report.Skipped)
				}
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *SweepService) Stop() {
	close(s.stop)
}
