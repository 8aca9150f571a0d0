package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"reachout-backend/models"
	"reachout-backend/services"
	"reachout-backend/utils"
)

type DonorController struct {
	DB *gorm.DB
}

func NewDonorController(db *gorm.DB) *DonorController {
	return &DonorController{DB: db}
}

// GetAllDonors -> list the donor directory
func (dc *DonorController) GetAllDonors(c *gin.Context) {
	var donors []models.Donor
	if err := dc.DB.Order("id").Find(&donors).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of donors", donors)
}

// GetDonorByID
func (dc *DonorController) GetDonorByID(c *gin.Context) {
	id, ok := parseIDParam(c, "donor_id")
	if !ok {
		return
	}

	var donor models.Donor
	if err := dc.DB.First(&donor, id).Error; err != nil {
		respondServiceError(c, services.ErrDonorNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Donor detail", donor)
}

// CreateDonor
func (dc *DonorController) CreateDonor(c *gin.Context) {
	type reqBody struct {
		Name               string           `json:"name" binding:"required"`
		Age                int              `json:"age" binding:"required"`
		BloodType          models.BloodType `json:"blood_type" binding:"required"`
		Phone              string           `json:"phone" binding:"required"`
		Email              *string          `json:"email"`
		City               string           `json:"city" binding:"required"`
		Location           string           `json:"location"`
		AvailabilityStatus *bool            `json:"availability_status"`
	}

	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	donor := models.Donor{
		Name:               body.Name,
		Age:                body.Age,
		BloodType:          body.BloodType,
		Phone:              body.Phone,
		Email:              body.Email,
		City:               body.City,
		Location:           body.Location,
		AvailabilityStatus: true,
	}
	if body.AvailabilityStatus != nil {
		donor.AvailabilityStatus = *body.AvailabilityStatus
	}

	if err := dc.DB.Create(&donor).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Donor created", donor)
}

// UpdateDonor -> partial update of directory fields
func (dc *DonorController) UpdateDonor(c *gin.Context) {
	id, ok := parseIDParam(c, "donor_id")
	if !ok {
		return
	}

	var donor models.Donor
	if err := dc.DB.First(&donor, id).Error; err != nil {
		respondServiceError(c, services.ErrDonorNotFound)
		return
	}

	type reqBody struct {
		Name               *string           `json:"name"`
		Age                *int              `json:"age"`
		BloodType          *models.BloodType `json:"blood_type"`
		Phone              *string           `json:"phone"`
		Email              *string           `json:"email"`
		City               *string           `json:"city"`
		Location           *string           `json:"location"`
		AvailabilityStatus *bool             `json:"availability_status"`
	}

	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.Name != nil {
		donor.Name = *body.Name
	}
	if body.Age != nil {
		donor.Age = *body.Age
	}
	if body.BloodType != nil {
		donor.BloodType = *body.BloodType
	}
	if body.Phone != nil {
		donor.Phone = *body.Phone
	}
	if body.Email != nil {
		donor.Email = body.Email
	}
	if body.City != nil {
		donor.City = *body.City
	}
	if body.Location != nil {
		donor.Location = *body.Location
	}
	if body.AvailabilityStatus != nil {
		donor.AvailabilityStatus = *body.AvailabilityStatus
	}

	if err := dc.DB.Save(&donor).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Donor updated", donor)
}

// DeleteDonor
func (dc *DonorController) DeleteDonor(c *gin.Context) {
	id, ok := parseIDParam(c, "donor_id")
	if !ok {
		return
	}

	var donor models.Donor
	if err := dc.DB.First(&donor, id).Error; err != nil {
		respondServiceError(c, services.ErrDonorNotFound)
		return
	}
	if err := dc.DB.Delete(&donor).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Donor deleted", gin.H{"donor_id": id})
}

// RecordDonation -> register a completed donation and stamp the donor's
// last donation date, which restarts the eligibility cooldown.
func (dc *DonorController) RecordDonation(c *gin.Context) {
	id, ok := parseIDParam(c, "donor_id")
	if !ok {
		return
	}

	var donor models.Donor
	if err := dc.DB.First(&donor, id).Error; err != nil {
		respondServiceError(c, services.ErrDonorNotFound)
		return
	}

	type reqBody struct {
		HospitalID uint       `json:"hospital_id" binding:"required"`
		BloodType  *string    `json:"blood_type"`
		DonatedAt  *time.Time `json:"donated_at"`
	}

	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var hospital models.Hospital
	if err := dc.DB.First(&hospital, body.HospitalID).Error; err != nil {
		respondServiceError(c, services.ErrHospitalNotFound)
		return
	}

	donatedAt := time.Now()
	if body.DonatedAt != nil {
		donatedAt = *body.DonatedAt
	}
	bloodType := donor.BloodType
	if body.BloodType != nil {
		bloodType = models.BloodType(*body.BloodType)
	}

	record := models.DonationRecord{
		DonorID:              donor.ID,
		HospitalID:           hospital.ID,
		BloodType:            bloodType,
		DonatedAt:            donatedAt,
		NextEligibleDonation: donatedAt.Add(models.DonationCooldown),
	}

	err := dc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return tx.Model(&donor).Update("last_donation_date", donatedAt).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Donation recorded", record)
}

// GetDonations -> donation history for one donor
func (dc *DonorController) GetDonations(c *gin.Context) {
	id, ok := parseIDParam(c, "donor_id")
	if !ok {
		return
	}

	var donor models.Donor
	if err := dc.DB.First(&donor, id).Error; err != nil {
		respondServiceError(c, services.ErrDonorNotFound)
		return
	}

	var records []models.DonationRecord
	if err := dc.DB.Where("donor_id = ?", id).Order("donated_at DESC").Find(&records).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Donation history", records)
}
