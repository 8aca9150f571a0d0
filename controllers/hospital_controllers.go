package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"reachout-backend/models"
	"reachout-backend/services"
	"reachout-backend/utils"
)

type HospitalController struct {
	DB *gorm.DB
}

func NewHospitalController(db *gorm.DB) *HospitalController {
	return &HospitalController{DB: db}
}

func (hc *HospitalController) GetAllHospitals(c *gin.Context) {
	var hospitals []models.Hospital
	if err := hc.DB.Order("id").Find(&hospitals).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of hospitals", hospitals)
}

func (hc *HospitalController) GetHospitalByID(c *gin.Context) {
	id, ok := parseIDParam(c, "hospital_id")
	if !ok {
		return
	}

	var hospital models.Hospital
	if err := hc.DB.First(&hospital, id).Error; err != nil {
		respondServiceError(c, services.ErrHospitalNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Hospital detail", hospital)
}

func (hc *HospitalController) CreateHospital(c *gin.Context) {
	type reqBody struct {
		Name          string `json:"name" binding:"required"`
		City          string `json:"city" binding:"required"`
		Location      string `json:"location"`
		ContactNumber string `json:"contact_number"`
	}

	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	hospital := models.Hospital{
		Name:          body.Name,
		City:          body.City,
		Location:      body.Location,
		ContactNumber: body.ContactNumber,
	}
	if err := hc.DB.Create(&hospital).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Hospital created", hospital)
}

func (hc *HospitalController) UpdateHospital(c *gin.Context) {
	id, ok := parseIDParam(c, "hospital_id")
	if !ok {
		return
	}

	var hospital models.Hospital
	if err := hc.DB.First(&hospital, id).Error; err != nil {
		respondServiceError(c, services.ErrHospitalNotFound)
		return
	}

	type reqBody struct {
		Name          *string `json:"name"`
		City          *string `json:"city"`
		Location      *string `json:"location"`
		ContactNumber *string `json:"contact_number"`
	}

	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.Name != nil {
		hospital.Name = *body.Name
	}
	if body.City != nil {
		hospital.City = *body.City
	}
	if body.Location != nil {
		hospital.Location = *body.Location
	}
	if body.ContactNumber != nil {
		hospital.ContactNumber = *body.ContactNumber
	}

	if err := hc.DB.Save(&hospital).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Hospital updated", hospital)
}

func (hc *HospitalController) DeleteHospital(c *gin.Context) {
	id, ok := parseIDParam(c, "hospital_id")
	if !ok {
		return
	}

	var hospital models.Hospital
	if err := hc.DB.First(&hospital, id).Error; err != nil {
		respondServiceError(c, services.ErrHospitalNotFound)
		return
	}
	if err := hc.DB.Delete(&hospital).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Hospital deleted", gin.H{"hospital_id": id})
}
