package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"reachout-backend/events"
	"reachout-backend/models"
	"reachout-backend/services"
	"reachout-backend/utils"
)

type NotificationController struct {
	DB       *gorm.DB
	Dispatch *services.DispatchService
	Sweep    *services.SweepService
}

func NewNotificationController(db *gorm.DB, dispatch *services.DispatchService, sweep *services.SweepService) *NotificationController {
	return &NotificationController{DB: db, Dispatch: dispatch, Sweep: sweep}
}

// GetAllNotifications -> the dispatch log, newest first
func (nc *NotificationController) GetAllNotifications(c *gin.Context) {
	var notifs []models.Notification
	if err := nc.DB.Order("created_at DESC").Find(&notifs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All notifications", notifs)
}

// GetNotificationByID
func (nc *NotificationController) GetNotificationByID(c *gin.Context) {
	id, ok := parseIDParam(c, "notif_id")
	if !ok {
		return
	}

	var notif models.Notification
	if err := nc.DB.First(&notif, id).Error; err != nil {
		respondServiceError(c, services.ErrNotificationNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification detail", notif)
}

// CreateNotification -> send a free-form message to one donor and record
// the attempt
func (nc *NotificationController) CreateNotification(c *gin.Context) {
	type reqBody struct {
		DonorID   uint   `json:"donor_id" binding:"required"`
		RequestID *uint  `json:"request_id"`
		Message   string `json:"message" binding:"required"`
	}

	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var donor models.Donor
	if err := nc.DB.First(&donor, body.DonorID).Error; err != nil {
		respondServiceError(c, services.ErrDonorNotFound)
		return
	}

	notif, err := nc.Dispatch.NotifyRaw(&donor, body.RequestID, body.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events.BroadcastNotificationUpdate(*notif)
	utils.RespondJSON(c, http.StatusCreated, "Notification created", notif)
}

// UpdateNotification -> administrative override of message or status; the
// log is otherwise append-only
func (nc *NotificationController) UpdateNotification(c *gin.Context) {
	id, ok := parseIDParam(c, "notif_id")
	if !ok {
		return
	}

	var notif models.Notification
	if err := nc.DB.First(&notif, id).Error; err != nil {
		respondServiceError(c, services.ErrNotificationNotFound)
		return
	}

	type reqBody struct {
		Message *string                    `json:"message"`
		Status  *models.NotificationStatus `json:"status"`
	}

	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.Message != nil {
		notif.Message = *body.Message
	}
	if body.Status != nil {
		switch *body.Status {
		case models.NotificationStatusPending, models.NotificationStatusSent,
			models.NotificationStatusFailed:
			notif.Status = *body.Status
		default:
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("unknown notification status %q", *body.Status))
			return
		}
	}

	if err := nc.DB.Save(&notif).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification updated", notif)
}

// DeleteNotification
func (nc *NotificationController) DeleteNotification(c *gin.Context) {
	id, ok := parseIDParam(c, "notif_id")
	if !ok {
		return
	}

	var notif models.Notification
	if err := nc.DB.First(&notif, id).Error; err != nil {
		respondServiceError(c, services.ErrNotificationNotFound)
		return
	}
	if err := nc.DB.Delete(&notif).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification deleted", gin.H{"notif_id": id})
}

// NotifyMatch -> dispatch the matched message for one match
func (nc *NotificationController) NotifyMatch(c *gin.Context) {
	id, ok := parseIDParam(c, "match_id")
	if !ok {
		return
	}

	notif, err := nc.Dispatch.NotifyMatch(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events.BroadcastNotificationUpdate(*notif)
	utils.RespondJSON(c, http.StatusCreated, "Match notification dispatched", notif)
}

// NotifyNoMatches -> tell the requester that no donors have been found yet
func (nc *NotificationController) NotifyNoMatches(c *gin.Context) {
	id, ok := parseIDParam(c, "request_id")
	if !ok {
		return
	}

	notif, err := nc.Dispatch.NotifyNoMatch(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events.BroadcastNotificationUpdate(*notif)
	utils.RespondJSON(c, http.StatusCreated, "No-match notification dispatched", notif)
}

// BatchNotify -> dispatch every pending match of one request
func (nc *NotificationController) BatchNotify(c *gin.Context) {
	id, ok := parseIDParam(c, "request_id")
	if !ok {
		return
	}

	report, err := nc.Dispatch.NotifyBatch(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	message := fmt.Sprintf("Sent %d notifications, %d failed, %d skipped",
		report.Sent, report.Failed, report.Skipped)
	utils.RespondJSON(c, http.StatusOK, message, report)
}

// CheckUnmatched -> on-demand sweep for requests without any match
func (nc *NotificationController) CheckUnmatched(c *gin.Context) {
	report, err := nc.Sweep.SweepUnmatched()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.BroadcastSweepReport(report)
	message := fmt.Sprintf("Sent %d notifications for %d unmatched requests",
		report.Sent, report.Unmatched)
	utils.RespondJSON(c, http.StatusOK, message, report)
}
