package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"reachout-backend/models"
	"reachout-backend/utils"
)

// Sender delivers one rendered message to one recipient address. A timeout
// or transport error counts the same as an explicit gateway rejection.
type Sender interface {
	Send(to, message string) error
}

// DispatchService turns matches into outbound messages, records per-message
// delivery state and advances match state on successful delivery. It never
// retries internally: re-invoking an operation creates a new notification
// row while match state only moves forward.
type DispatchService struct {
	db           *gorm.DB
	sender       Sender
	batchWorkers int
}

func NewDispatchService(db *gorm.DB, sender Sender) *DispatchService {
	return &DispatchService{db: db, sender: sender, batchWorkers: 4}
}

// Notify renders the template for kind, attempts delivery exactly once and
// records the outcome as a notification row. A delivery failure lands on
// the row as status Failed, not in the error return.
func (s *DispatchService) Notify(donor *models.Donor, req *models.BloodRequest, kind TemplateKind) (*models.Notification, error) {
	message := RenderMessage(kind, donor, req)

	var requestID *uint
	if req != nil {
		id := req.ID
		requestID = &id
	}
	return s.NotifyRaw(donor, requestID, message)
}

// NotifyRaw sends a pre-rendered message to the donor and records the
// attempt. The send happens before any row is written, so no transaction
// is held open across network I/O.
func (s *DispatchService) NotifyRaw(donor *models.Donor, requestID *uint, message string) (*models.Notification, error) {
	status := models.NotificationStatusSent
	if err := s.sender.Send(donor.Phone, message); err != nil {
		utils.ErrorLogger.Printf("Failed to send notification to donor %d: %v", donor.ID, err)
		status = models.NotificationStatusFailed
	}

	notif := models.Notification{
		DonorID:   donor.ID,
		RequestID: requestID,
		Message:   message,
		Status:    status,
	}
	if err := s.db.Create(&notif).Error; err != nil {
		return nil, fmt.Errorf("record notification: %w", err)
	}
	return &notif, nil
}

// NotifyMatch dispatches the matched template for one match. On successful
// delivery the match advances Pending -> Notified; a failed delivery leaves
// it Pending so a later pass can re-attempt. A match already past Pending
// is never moved backward, so re-notifying is safe.
func (s *DispatchService) NotifyMatch(matchID uint) (*models.Notification, error) {
	var match models.DonorMatch
	if err := s.db.First(&match, matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("load match: %w", err)
	}
	return s.dispatchForMatch(&match)
}

// dispatchForMatch is the per-match procedure shared by the single and
// batch paths.
func (s *DispatchService) dispatchForMatch(match *models.DonorMatch) (*models.Notification, error) {
	var donor models.Donor
	if err := s.db.First(&donor, match.DonorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonorNotFound
		}
		return nil, fmt.Errorf("load donor: %w", err)
	}

	var req models.BloodRequest
	if err := s.db.Preload("Hospital").First(&req, match.RequestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("load blood request: %w", err)
	}

	notif, err := s.Notify(&donor, &req, TemplateMatched)
	if err != nil {
		return nil, err
	}

	if notif.Status == models.NotificationStatusSent && match.Status == models.MatchStatusPending {
		now := time.Now()
		// Conditional update keeps the forward-only transition atomic
		// under concurrent dispatchers.
		err := s.db.Model(&models.DonorMatch{}).
			Where("id = ? AND status = ?", match.ID, models.MatchStatusPending).
			Updates(map[string]interface{}{
				"status":      models.MatchStatusNotified,
				"notified_at": now,
			}).Error
		if err != nil {
			return notif, fmt.Errorf("advance match %d: %w", match.ID, err)
		}
		match.Status = models.MatchStatusNotified
		match.NotifiedAt = now
	}
	return notif, nil
}

// BatchReport aggregates the outcome of one batch dispatch.
type BatchReport struct {
	RequestID uint `json:"request_id"`
	Sent      int  `json:"sent"`
	Failed    int  `json:"failed"`
	Skipped   int  `json:"skipped"`
}

// NotifyBatch dispatches every Pending match of the request with bounded
// parallelism. Each match commits its own state change, so one slow or
// failing send never blocks or rolls back the rest. A match whose donor is
// gone from the directory is skipped, counted as neither sent nor failed.
func (s *DispatchService) NotifyBatch(requestID uint) (*BatchReport, error) {
	var req models.BloodRequest
	if err := s.db.First(&req, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("load blood request: %w", err)
	}

	var pending []models.DonorMatch
	if err := s.db.
		Where("request_id = ? AND status = ?", requestID, models.MatchStatusPending).
		Order("id").
		Find(&pending).Error; err != nil {
		return nil, fmt.Errorf("load pending matches: %w", err)
	}

	report := &BatchReport{RequestID: requestID}
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.batchWorkers)
	)
	for i := range pending {
		match := pending[i]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			notif, err := s.dispatchForMatch(&match)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, ErrDonorNotFound):
				report.Skipped++
			case err != nil:
				utils.ErrorLogger.Printf("Batch dispatch for match %d: %v", match.ID, err)
				report.Failed++
			case notif.Status == models.NotificationStatusSent:
				report.Sent++
			default:
				report.Failed++
			}
		}()
	}
	wg.Wait()

	return report, nil
}

// HandleStatusChange emits the follow-up notification for an externally
// applied match status update. It only fires when the status actually
// changed, so idempotent re-writes cause no duplicate side effects. An
// Accepted transition also advances the parent request to Matched.
func (s *DispatchService) HandleStatusChange(match *models.DonorMatch, previous models.MatchStatus) error {
	if match.Status == previous {
		return nil
	}
	kind, ok := TemplateForStatus(match.Status)
	if !ok {
		return nil
	}

	var donor models.Donor
	if err := s.db.First(&donor, match.DonorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDonorNotFound
		}
		return fmt.Errorf("load donor: %w", err)
	}

	var req models.BloodRequest
	if err := s.db.Preload("Hospital").First(&req, match.RequestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("load blood request: %w", err)
	}

	if match.Status == models.MatchStatusAccepted && req.Status != models.RequestStatusMatched {
		if err := s.db.Model(&req).Update("status", models.RequestStatusMatched).Error; err != nil {
			return fmt.Errorf("advance request %d: %w", req.ID, err)
		}
		req.Status = models.RequestStatusMatched
	}

	if _, err := s.Notify(&donor, &req, kind); err != nil {
		return err
	}
	return nil
}

// NotifyNoMatch tells the requester of a still-unmatched request that no
// donors have been found yet.
func (s *DispatchService) NotifyNoMatch(requestID uint) (*models.Notification, error) {
	var req models.BloodRequest
	if err := s.db.Preload("Hospital").First(&req, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("load blood request: %w", err)
	}

	if req.RequesterID == nil {
		return nil, ErrDonorNotFound
	}
	var requester models.Donor
	if err := s.db.First(&requester, *req.RequesterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonorNotFound
		}
		return nil, fmt.Errorf("load requester: %w", err)
	}

	return s.Notify(&requester, &req, TemplateNoMatch)
}
