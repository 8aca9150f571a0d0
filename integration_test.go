package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"reachout-backend/models"
	"reachout-backend/router"
	"reachout-backend/services"
	"reachout-backend/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.InitLogger()
	os.Exit(m.Run())
}

type captureSender struct {
	mu   sync.Mutex
	sent []string
}

func (s *captureSender) Send(to, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, message)
	return nil
}

func (s *captureSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func call(t *testing.T, r *gin.Engine, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	}
	return w.Code, env
}

// TestDonorMatchingFlow drives the whole lifecycle through the HTTP API:
// register donors, file a request, auto-match, accept, complete, record the
// donation and confirm the cooldown takes the donor out of the pool.
func TestDonorMatchingFlow(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:integration_flow?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Hospital{},
		&models.Donor{},
		&models.BloodRequest{},
		&models.DonorMatch{},
		&models.Notification{},
		&models.DonationRecord{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	sender := &captureSender{}
	r := router.SetupRouter(db, sender)

	code, env := call(t, r, http.MethodPost, "/api/v1/hospitals", gin.H{
		"name": "City General Hospital", "city": "Nairobi",
		"location": "-1.2921,36.8219",
	})
	require.Equal(t, http.StatusCreated, code)
	var hospital models.Hospital
	require.NoError(t, json.Unmarshal(env.Data, &hospital))

	// A nearby O+ donor, a distant O- donor and an incompatible B+ donor.
	donorBodies := []gin.H{
		{"name": "Amina", "age": 28, "blood_type": "O+", "phone": "+254700000001",
			"city": "Nairobi", "location": "-1.30,36.82"},
		{"name": "Brian", "age": 35, "blood_type": "O-", "phone": "+254700000002",
			"city": "Mombasa", "location": "-4.04,39.66"},
		{"name": "Cynthia", "age": 41, "blood_type": "B+", "phone": "+254700000003",
			"city": "Nairobi", "location": "-1.29,36.82"},
	}
	donors := make([]models.Donor, 0, len(donorBodies))
	for _, body := range donorBodies {
		code, env = call(t, r, http.MethodPost, "/api/v1/donors", body)
		require.Equal(t, http.StatusCreated, code)
		var donor models.Donor
		require.NoError(t, json.Unmarshal(env.Data, &donor))
		donors = append(donors, donor)
	}

	code, env = call(t, r, http.MethodPost, "/api/v1/bloodrequests", gin.H{
		"patient_name": "Patient X", "blood_type": "A+",
		"city": "Nairobi", "location": "-1.2921,36.8219",
		"contact_number": "+254711111111", "urgency_level": "High",
		"hospital_id": hospital.ID,
	})
	require.Equal(t, http.StatusCreated, code)
	var request models.BloodRequest
	require.NoError(t, json.Unmarshal(env.Data, &request))
	require.Equal(t, models.RequestStatusPending, request.Status)

	code, env = call(t, r, http.MethodPost,
		fmt.Sprintf("/api/v1/donormatches/auto-match/%d", request.ID), nil)
	require.Equal(t, http.StatusCreated, code)

	var report services.MatchReport
	require.NoError(t, json.Unmarshal(env.Data, &report))
	require.Len(t, report.Matches, 2, "both O donors are compatible with A+, B+ is not")

	// Proximity puts the Nairobi donor before the Mombasa one.
	assert.Equal(t, donors[0].ID, report.Matches[0].Donor.ID)
	assert.Equal(t, donors[1].ID, report.Matches[1].Donor.ID)
	require.NotNil(t, report.Matches[0].DistanceKm)
	assert.Less(t, *report.Matches[0].DistanceKm, services.NearbyRadiusKm)

	// Dispatch already ran: both donors messaged, both matches Notified.
	assert.Equal(t, 2, sender.count())
	for _, m := range report.Matches {
		assert.Equal(t, models.MatchStatusNotified, m.Match.Status)
	}

	// Running the matcher again creates nothing new.
	code, env = call(t, r, http.MethodPost,
		fmt.Sprintf("/api/v1/donormatches/auto-match/%d", request.ID), nil)
	require.Equal(t, http.StatusCreated, code)
	var second services.MatchReport
	require.NoError(t, json.Unmarshal(env.Data, &second))
	assert.Empty(t, second.Matches)

	// The nearby donor accepts.
	acceptedID := report.Matches[0].Match.ID
	code, env = call(t, r, http.MethodPut,
		fmt.Sprintf("/api/v1/donormatches/%d", acceptedID), gin.H{"status": "Accepted"})
	require.Equal(t, http.StatusOK, code)

	code, env = call(t, r, http.MethodGet,
		fmt.Sprintf("/api/v1/bloodrequests/%d", request.ID), nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &request))
	assert.Equal(t, models.RequestStatusMatched, request.Status)

	// The other donor declines.
	code, _ = call(t, r, http.MethodPut,
		fmt.Sprintf("/api/v1/donormatches/%d", report.Matches[1].Match.ID),
		gin.H{"status": "Declined"})
	require.Equal(t, http.StatusOK, code)

	// Donation happens and is recorded.
	code, env = call(t, r, http.MethodPut,
		fmt.Sprintf("/api/v1/donormatches/%d", acceptedID), gin.H{"status": "Completed"})
	require.Equal(t, http.StatusOK, code)

	code, _ = call(t, r, http.MethodPost,
		fmt.Sprintf("/api/v1/donors/%d/donations", donors[0].ID),
		gin.H{"hospital_id": hospital.ID})
	require.Equal(t, http.StatusCreated, code)

	// Follow-up messages went out for accept, decline and complete.
	assert.Equal(t, 5, sender.count())

	// The donor who just gave blood is inside the cooldown now, so a fresh
	// request only reaches the remaining compatible donor, who declined the
	// first request but stays eligible for new ones.
	code, env = call(t, r, http.MethodPost, "/api/v1/bloodrequests", gin.H{
		"patient_name": "Patient Y", "blood_type": "A+",
		"city": "Nairobi", "location": "-1.2921,36.8219",
		"contact_number": "+254711111112", "hospital_id": hospital.ID,
	})
	require.Equal(t, http.StatusCreated, code)
	var fresh models.BloodRequest
	require.NoError(t, json.Unmarshal(env.Data, &fresh))

	code, env = call(t, r, http.MethodPost,
		fmt.Sprintf("/api/v1/donormatches/auto-match/%d", fresh.ID), nil)
	require.Equal(t, http.StatusCreated, code)
	var third services.MatchReport
	require.NoError(t, json.Unmarshal(env.Data, &third))
	require.Len(t, third.Matches, 1)
	assert.Equal(t, donors[1].ID, third.Matches[0].Donor.ID)
}

// TestUnmatchedSweepFlow files a request no donor can serve and checks the
// sweep tells the requester.
func TestUnmatchedSweepFlow(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:integration_sweep?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Hospital{},
		&models.Donor{},
		&models.BloodRequest{},
		&models.DonorMatch{},
		&models.Notification{},
		&models.DonationRecord{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	sender := &captureSender{}
	r := router.SetupRouter(db, sender)

	code, env := call(t, r, http.MethodPost, "/api/v1/hospitals", gin.H{
		"name": "City General Hospital", "city": "Nairobi",
	})
	require.Equal(t, http.StatusCreated, code)
	var hospital models.Hospital
	require.NoError(t, json.Unmarshal(env.Data, &hospital))

	code, env = call(t, r, http.MethodPost, "/api/v1/donors", gin.H{
		"name": "Requester", "age": 33, "blood_type": "AB+",
		"phone": "+254722222222", "city": "Nairobi",
	})
	require.Equal(t, http.StatusCreated, code)
	var requester models.Donor
	require.NoError(t, json.Unmarshal(env.Data, &requester))

	// O- can only receive from O-, and there are no O- donors.
	code, env = call(t, r, http.MethodPost, "/api/v1/bloodrequests", gin.H{
		"patient_name": "Patient X", "blood_type": "O-",
		"city": "Nairobi", "contact_number": "+254711111111",
		"hospital_id": hospital.ID, "requester_id": requester.ID,
	})
	require.Equal(t, http.StatusCreated, code)
	var request models.BloodRequest
	require.NoError(t, json.Unmarshal(env.Data, &request))

	code, env = call(t, r, http.MethodPost,
		fmt.Sprintf("/api/v1/donormatches/auto-match/%d", request.ID), nil)
	require.Equal(t, http.StatusCreated, code)
	var report services.MatchReport
	require.NoError(t, json.Unmarshal(env.Data, &report))
	require.Empty(t, report.Matches)

	code, env = call(t, r, http.MethodPost, "/api/v1/notifications/check-unmatched-requests", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Sent 1 notifications for 1 unmatched requests", env.Message)
	require.Equal(t, 1, sender.count())

	// Sweeping again just re-notifies; nothing breaks and nothing regresses.
	code, env = call(t, r, http.MethodPost, "/api/v1/notifications/check-unmatched-requests", nil)
	require.Equal(t, http.StatusOK, code)

	var notifs []models.Notification
	require.NoError(t, db.Where("donor_id = ?", requester.ID).Find(&notifs).Error)
	assert.Len(t, notifs, 2, "each sweep pass appends its own notification row")
}
