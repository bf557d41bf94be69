package routes

import (
	"net/http"

	"logitrack-api/drafts"
	"logitrack-api/exports"
	"logitrack-api/handlers"
	"logitrack-api/inquiries"
	"logitrack-api/middleware"
	"logitrack-api/models"
	"logitrack-api/shipments"
	"logitrack-api/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the services the HTTP layer is built on
type Deps struct {
	DB        *gorm.DB
	Log       *zap.Logger
	Shipments *shipments.Service
	Drafts    *drafts.Store
	Hub       *socket.Hub
	Inquiries *inquiries.Service
	// Archiver is optional
	Archiver    exports.Archiver
	CORSOrigins []string
}

// NewRouter builds the engine with logging, recovery and CORS in front of every route
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(d.Log), middleware.RequestLogger(d.Log))

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Disposition", middleware.RequestIDHeader, handlers.ExportArchiveHeader},
	}
	if len(d.CORSOrigins) == 0 || (len(d.CORSOrigins) == 1 && d.CORSOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = d.CORSOrigins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "LogiTrack Shipment API",
			"version": "1.0.0",
		})
	})

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the LogiTrack Shipment API",
			"docs":    "/api/status-machine",
			"health":  "/health",
			"roles":   []models.UserRole{models.RoleClient, models.RoleAgent, models.RoleAdmin},
		})
	})

	SetupRoutes(r, d)
	return r
}

func SetupRoutes(r *gin.Engine, d Deps) {
	authH := &handlers.AuthHandler{DB: d.DB, Log: d.Log}
	adminH := &handlers.AdminHandler{DB: d.DB, Log: d.Log}
	bookingH := &handlers.BookingHandler{Shipments: d.Shipments, Log: d.Log}
	shipmentH := &handlers.ShipmentHandler{Shipments: d.Shipments, Archiver: d.Archiver, Log: d.Log}
	trackingH := &handlers.TrackingHandler{Shipments: d.Shipments}
	contactH := &handlers.ContactHandler{Inquiries: d.Inquiries}
	draftH := &handlers.DraftHandler{Drafts: d.Drafts, Shipments: d.Shipments, Log: d.Log}
	socketH := &handlers.TrackingSocketHandler{
		Shipments: d.Shipments,
		Hub:       d.Hub,
		Log:       d.Log,
		Upgrader: websocket.Upgrader{
			// the tracking stream is public
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		// Auth
		public.POST("/register", authH.Register)
		public.POST("/login", authH.Login)

		// Catalogue & calculator
		public.GET("/services", handlers.ListServices)
		public.GET("/cities", handlers.ListCities)
		public.POST("/rates", handlers.CalculateRates)
		public.GET("/status-machine", handlers.GetStateMachineInfo)

		// Tracking & contact
		public.POST("/track_shipment/", trackingH.TrackShipment)
		public.GET("/ws/track/:lr_no", socketH.Follow)
		public.POST("/contact/", contactH.Contact)
	}

	// ── Guest-or-user routes ───────────────────────────────────────
	guest := r.Group("/api")
	guest.Use(middleware.OptionalAuth())
	{
		guest.POST("/bookings/", bookingH.CreateBooking)

		wizard := guest.Group("/booking-drafts")
		wizard.POST("", draftH.Create)
		wizard.GET("/:id", draftH.Get)
		wizard.PATCH("/:id", draftH.Update)
		wizard.POST("/:id/service", draftH.SelectService)
		wizard.POST("/:id/next", draftH.Next)
		wizard.POST("/:id/back", draftH.Back)
		wizard.POST("/:id/submit", draftH.Submit)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired())
	{
		auth.GET("/profile", authH.GetProfile)
		auth.GET("/user-bookings/", bookingH.UserBookings)

		// clients only see their own shipments
		auth.GET("/shipments/", shipmentH.ListShipments)
		auth.GET("/shipments/summary", shipmentH.Summary)
		auth.GET("/customer-shipments/", shipmentH.CustomerShipments)
		auth.GET("/export-customer-shipments-csv/", shipmentH.ExportCustomerCSV)
	}

	// ── Staff routes ───────────────────────────────────────────────
	staff := r.Group("/api")
	staff.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleAgent, models.RoleAdmin))
	{
		staff.POST("/update-shipment-status/", shipmentH.UpdateStatus)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api")
	admin.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/export-all-customer-shipments-csv/", shipmentH.ExportAllCSV)
		admin.GET("/admin/users", adminH.ListUsers)
		admin.POST("/admin/users", adminH.CreateUser)
	}
}
