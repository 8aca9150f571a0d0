package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"reachout-backend/controllers"
	"reachout-backend/middlewares"
	"reachout-backend/services"
)

// SetupRouter wires services and controllers onto the HTTP surface. The
// sender is injected so tests can run against a fake gateway.
func SetupRouter(db *gorm.DB, sender services.Sender) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	dispatch := services.NewDispatchService(db, sender)
	matches := services.NewMatchService(db, dispatch)
	sweep := services.NewSweepService(db, dispatch)

	donorCtrl := controllers.NewDonorController(db)
	hospitalCtrl := controllers.NewHospitalController(db)
	requestCtrl := controllers.NewBloodRequestController(db)
	matchCtrl := controllers.NewDonorMatchController(db, matches)
	notifCtrl := controllers.NewNotificationController(db, dispatch, sweep)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	r.GET("/events/ws", controllers.EventsHandler)

	api := r.Group("/api/v1")

	donors := api.Group("/donors")
	{
		donors.GET("", donorCtrl.GetAllDonors)
		donors.POST("", donorCtrl.CreateDonor)
		donors.GET("/:donor_id", donorCtrl.GetDonorByID)
		donors.PUT("/:donor_id", donorCtrl.UpdateDonor)
		donors.DELETE("/:donor_id", donorCtrl.DeleteDonor)
		donors.POST("/:donor_id/donations", donorCtrl.RecordDonation)
		donors.GET("/:donor_id/donations", donorCtrl.GetDonations)
	}

	hospitals := api.Group("/hospitals")
	{
		hospitals.GET("", hospitalCtrl.GetAllHospitals)
		hospitals.POST("", hospitalCtrl.CreateHospital)
		hospitals.GET("/:hospital_id", hospitalCtrl.GetHospitalByID)
		hospitals.PUT("/:hospital_id", hospitalCtrl.UpdateHospital)
		hospitals.DELETE("/:hospital_id", hospitalCtrl.DeleteHospital)
	}

	requests := api.Group("/bloodrequests")
	{
		requests.GET("", requestCtrl.GetAllRequests)
		requests.POST("", requestCtrl.CreateRequest)
		requests.GET("/:request_id", requestCtrl.GetRequestByID)
		requests.PUT("/:request_id", requestCtrl.UpdateRequest)
		requests.DELETE("/:request_id", requestCtrl.DeleteRequest)
	}

	// Matching and dispatch fan out sends, so the heavy endpoints sit
	// behind a stricter limiter.
	strict := middlewares.NewStrictRateLimiter()

	matchGroup := api.Group("/donormatches")
	{
		matchGroup.GET("", matchCtrl.GetAllMatches)
		matchGroup.GET("/:match_id", matchCtrl.GetMatchByID)
		matchGroup.PUT("/:match_id", matchCtrl.UpdateMatch)
		matchGroup.DELETE("/:match_id", matchCtrl.DeleteMatch)
		matchGroup.GET("/for-request/:request_id", matchCtrl.MatchesForRequest)
		matchGroup.POST("/auto-match/:request_id", strict, matchCtrl.AutoMatch)
	}

	notifs := api.Group("/notifications")
	{
		notifs.GET("", notifCtrl.GetAllNotifications)
		notifs.POST("", notifCtrl.CreateNotification)
		notifs.GET("/:notif_id", notifCtrl.GetNotificationByID)
		notifs.PUT("/:notif_id", notifCtrl.UpdateNotification)
		notifs.DELETE("/:notif_id", notifCtrl.DeleteNotification)
		notifs.POST("/notify-match/:match_id", notifCtrl.NotifyMatch)
		notifs.POST("/notify-no-matches/:request_id", notifCtrl.NotifyNoMatches)
		notifs.POST("/batch-notify-request/:request_id", strict, notifCtrl.BatchNotify)
		notifs.POST("/check-unmatched-requests", strict, notifCtrl.CheckUnmatched)
	}

	return r
}
