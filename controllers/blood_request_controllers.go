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

type BloodRequestController struct {
	DB *gorm.DB
}

func NewBloodRequestController(db *gorm.DB) *BloodRequestController {
	return &BloodRequestController{DB: db}
}

// GetAllRequests -> list blood requests with their hospitals
func (rc *BloodRequestController) GetAllRequests(c *gin.Context) {
	var requests []models.BloodRequest
	if err := rc.DB.Preload("Hospital").Order("id").Find(&requests).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of blood requests", requests)
}

// GetRequestByID
func (rc *BloodRequestController) GetRequestByID(c *gin.Context) {
	id, ok := parseIDParam(c, "request_id")
	if !ok {
		return
	}

	var request models.BloodRequest
	if err := rc.DB.Preload("Hospital").First(&request, id).Error; err != nil {
		respondServiceError(c, services.ErrRequestNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Blood request detail", request)
}

// CreateRequest -> new request starts in status Pending
func (rc *BloodRequestController) CreateRequest(c *gin.Context) {
	type reqBody struct {
		PatientName   string           `json:"patient_name" binding:"required"`
		BloodType     models.BloodType `json:"blood_type" binding:"required"`
		City          string           `json:"city" binding:"required"`
		Location      string           `json:"location"`
		ContactNumber string           `json:"contact_number" binding:"required"`
		UrgencyLevel  string           `json:"urgency_level"`
		HospitalID    uint             `json:"hospital_id" binding:"required"`
		RequesterID   *uint            `json:"requester_id"`
	}

	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var hospital models.Hospital
	if err := rc.DB.First(&hospital, body.HospitalID).Error; err != nil {
		respondServiceError(c, services.ErrHospitalNotFound)
		return
	}

	request := models.BloodRequest{
		PatientName:   body.PatientName,
		BloodType:     body.BloodType,
		City:          body.City,
		Location:      body.Location,
		ContactNumber: body.ContactNumber,
		UrgencyLevel:  body.UrgencyLevel,
		Status:        models.RequestStatusPending,
		HospitalID:    hospital.ID,
		RequesterID:   body.RequesterID,
	}
	if request.UrgencyLevel == "" {
		request.UrgencyLevel = "Normal"
	}

	if err := rc.DB.Create(&request).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.BroadcastRequestUpdate(request)
	utils.RespondJSON(c, http.StatusCreated, "Blood request created", request)
}

// UpdateRequest -> partial update; status changes are broadcast
func (rc *BloodRequestController) UpdateRequest(c *gin.Context) {
	id, ok := parseIDParam(c, "request_id")
	if !ok {
		return
	}

	var request models.BloodRequest
	if err := rc.DB.First(&request, id).Error; err != nil {
		respondServiceError(c, services.ErrRequestNotFound)
		return
	}

	type reqBody struct {
		PatientName   *string               `json:"patient_name"`
		Location      *string               `json:"location"`
		ContactNumber *string               `json:"contact_number"`
		UrgencyLevel  *string               `json:"urgency_level"`
		Status        *models.RequestStatus `json:"status"`
	}

	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.PatientName != nil {
		request.PatientName = *body.PatientName
	}
	if body.Location != nil {
		request.Location = *body.Location
	}
	if body.ContactNumber != nil {
		request.ContactNumber = *body.ContactNumber
	}
	if body.UrgencyLevel != nil {
		request.UrgencyLevel = *body.UrgencyLevel
	}
	if body.Status != nil {
		switch *body.Status {
		case models.RequestStatusPending, models.RequestStatusMatched,
			models.RequestStatusFulfilled, models.RequestStatusCancelled:
			request.Status = *body.Status
		default:
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("unknown request status %q", *body.Status))
			return
		}
	}

	if err := rc.DB.Save(&request).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.BroadcastRequestUpdate(request)
	utils.RespondJSON(c, http.StatusOK, "Blood request updated", request)
}

// DeleteRequest
func (rc *BloodRequestController) DeleteRequest(c *gin.Context) {
	id, ok := parseIDParam(c, "request_id")
	if !ok {
		return
	}

	var request models.BloodRequest
	if err := rc.DB.First(&request, id).Error; err != nil {
		respondServiceError(c, services.ErrRequestNotFound)
		return
	}
	if err := rc.DB.Delete(&request).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Blood request deleted", gin.H{"request_id": id})
}
