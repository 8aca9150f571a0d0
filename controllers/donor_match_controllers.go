package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"reachout-backend/events"
	"reachout-backend/models"
	"reachout-backend/services"
	"reachout-backend/utils"
)

type DonorMatchController struct {
	DB      *gorm.DB
	Matches *services.MatchService
}

func NewDonorMatchController(db *gorm.DB, matches *services.MatchService) *DonorMatchController {
	return &DonorMatchController{DB: db, Matches: matches}
}

// GetAllMatches -> every match with donor and request details
func (mc *DonorMatchController) GetAllMatches(c *gin.Context) {
	var matches []models.DonorMatch
	err := mc.DB.Preload("Donor").Preload("Request").Preload("Request.Hospital").
		Order("id").Find(&matches).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of donor matches", matches)
}

// GetMatchByID -> one match with computed distance
func (mc *DonorMatchController) GetMatchByID(c *gin.Context) {
	id, ok := parseIDParam(c, "match_id")
	if !ok {
		return
	}

	match, err := mc.Matches.MatchDetail(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Donor match detail", match)
}

// AutoMatch -> run the matching engine for one request
func (mc *DonorMatchController) AutoMatch(c *gin.Context) {
	id, ok := parseIDParam(c, "request_id")
	if !ok {
		return
	}

	report, err := mc.Matches.AutoMatch(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	for _, result := range report.Matches {
		events.BroadcastMatchUpdate(result.Match)
	}
	utils.RespondJSON(c, http.StatusCreated, "Auto-match completed", report)
}

// MatchesForRequest -> matches of one request with distances
func (mc *DonorMatchController) MatchesForRequest(c *gin.Context) {
	id, ok := parseIDParam(c, "request_id")
	if !ok {
		return
	}

	report, err := mc.Matches.MatchesForRequest(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Matches for request", report)
}

// UpdateMatch -> externally applied status change (accept/decline/complete)
func (mc *DonorMatchController) UpdateMatch(c *gin.Context) {
	id, ok := parseIDParam(c, "match_id")
	if !ok {
		return
	}

	type reqBody struct {
		Status models.MatchStatus `json:"status" binding:"required"`
	}

	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	match, err := mc.Matches.UpdateMatchStatus(id, body.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events.BroadcastMatchUpdate(*match)
	utils.RespondJSON(c, http.StatusOK, "Donor match updated", match)
}

// DeleteMatch -> administrative removal
func (mc *DonorMatchController) DeleteMatch(c *gin.Context) {
	id, ok := parseIDParam(c, "match_id")
	if !ok {
		return
	}

	if err := mc.Matches.DeleteMatch(id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Donor match deleted", gin.H{"match_id": id})
}
