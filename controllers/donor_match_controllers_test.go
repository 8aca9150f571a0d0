package controllers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reachout-backend/models"
	"reachout-backend/services"
)

func TestAutoMatchEndpoint(t *testing.T) {
	app := newTestApp(t)
	hospital := seedHospital(t, app.db)

	seedDonor(t, app.db, &models.Donor{
		Name: "Amina", Age: 28, BloodType: models.BloodOPos,
		Phone: "+254700000001", City: "Nairobi",
		Location: "-1.30,36.82", AvailabilityStatus: true,
	})
	seedDonor(t, app.db, &models.Donor{
		Name: "Brian", Age: 35, BloodType: models.BloodBPos,
		Phone: "+254700000002", City: "Nairobi",
		Location: "-1.29,36.82", AvailabilityStatus: true,
	})
	req := seedRequest(t, app.db, &models.BloodRequest{
		PatientName: "Patient X", BloodType: models.BloodAPos,
		City: "Nairobi", Location: "-1.2921,36.8219",
		ContactNumber: "+254711111111", HospitalID: hospital.ID,
	})

	w, env := app.do(t, http.MethodPost, fmt.Sprintf("/api/v1/donormatches/auto-match/%d", req.ID), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var report services.MatchReport
	require.NoError(t, json.Unmarshal(env.Data, &report))
	require.Len(t, report.Matches, 1, "only the compatible donor matches")
	assert.Equal(t, "Amina", report.Matches[0].Donor.Name)
	assert.Equal(t, models.MatchStatusNotified, report.Matches[0].Match.Status)
	assert.Equal(t, 1, app.sender.count())
}

func TestAutoMatchEndpointUnknownRequest(t *testing.T) {
	app := newTestApp(t)

	w, _ := app.do(t, http.MethodPost, "/api/v1/donormatches/auto-match/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateMatchEndpoint(t *testing.T) {
	app := newTestApp(t)
	hospital := seedHospital(t, app.db)
	donor := seedDonor(t, app.db, &models.Donor{
		Name: "Amina", Age: 28, BloodType: models.BloodOPos,
		Phone: "+254700000001", City: "Nairobi", AvailabilityStatus: true,
	})
	req := seedRequest(t, app.db, &models.BloodRequest{
		PatientName: "Patient X", BloodType: models.BloodAPos,
		City: "Nairobi", ContactNumber: "+254711111111", HospitalID: hospital.ID,
	})
	match := &models.DonorMatch{
		RequestID: req.ID, DonorID: donor.ID, Status: models.MatchStatusNotified,
	}
	require.NoError(t, app.db.Create(match).Error)

	// Backward transition is rejected.
	w, _ := app.do(t, http.MethodPut, fmt.Sprintf("/api/v1/donormatches/%d", match.ID), gin.H{
		"status": "Pending",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := app.do(t, http.MethodPut, fmt.Sprintf("/api/v1/donormatches/%d", match.ID), gin.H{
		"status": "Accepted",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.DonorMatch
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, models.MatchStatusAccepted, updated.Status)

	// Acceptance flips the parent request and messages the donor.
	var freshReq models.BloodRequest
	require.NoError(t, app.db.First(&freshReq, req.ID).Error)
	assert.Equal(t, models.RequestStatusMatched, freshReq.Status)
	assert.Equal(t, 1, app.sender.count())
}

func TestMatchesForRequestEndpoint(t *testing.T) {
	app := newTestApp(t)
	hospital := seedHospital(t, app.db)
	donor := seedDonor(t, app.db, &models.Donor{
		Name: "Amina", Age: 28, BloodType: models.BloodOPos,
		Phone: "+254700000001", City: "Nairobi",
		Location: "-1.30,36.82", AvailabilityStatus: true,
	})
	req := seedRequest(t, app.db, &models.BloodRequest{
		PatientName: "Patient X", BloodType: models.BloodAPos,
		City: "Nairobi", Location: "-1.2921,36.8219",
		ContactNumber: "+254711111111", HospitalID: hospital.ID,
	})
	require.NoError(t, app.db.Create(&models.DonorMatch{
		RequestID: req.ID, DonorID: donor.ID, Status: models.MatchStatusPending,
	}).Error)

	w, env := app.do(t, http.MethodGet, fmt.Sprintf("/api/v1/donormatches/for-request/%d", req.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var report services.MatchReport
	require.NoError(t, json.Unmarshal(env.Data, &report))
	require.Len(t, report.Matches, 1)
	require.NotNil(t, report.Matches[0].DistanceKm)
	assert.Less(t, *report.Matches[0].DistanceKm, services.NearbyRadiusKm)

	w, _ = app.do(t, http.MethodGet, "/api/v1/donormatches/for-request/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteMatchEndpoint(t *testing.T) {
	app := newTestApp(t)
	hospital := seedHospital(t, app.db)
	donor := seedDonor(t, app.db, &models.Donor{
		Name: "Amina", Age: 28, BloodType: models.BloodOPos,
		Phone: "+254700000001", City: "Nairobi", AvailabilityStatus: true,
	})
	req := seedRequest(t, app.db, &models.BloodRequest{
		PatientName: "Patient X", BloodType: models.BloodAPos,
		City: "Nairobi", ContactNumber: "+254711111111", HospitalID: hospital.ID,
	})
	match := &models.DonorMatch{RequestID: req.ID, DonorID: donor.ID, Status: models.MatchStatusPending}
	require.NoError(t, app.db.Create(match).Error)

	w, _ := app.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/donormatches/%d", match.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = app.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/donormatches/%d", match.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
