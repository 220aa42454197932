package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/prescripto/prescripto-api/internal/audit"
	"github.com/prescripto/prescripto-api/internal/config"
	domainAppointment "github.com/prescripto/prescripto-api/internal/domain/appointment"
	domainPayment "github.com/prescripto/prescripto-api/internal/domain/payment"
	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/handlers"
	"github.com/prescripto/prescripto-api/internal/infra/storage"
	infraRepo "github.com/prescripto/prescripto-api/internal/infra/repository"
	"github.com/prescripto/prescripto-api/internal/logger"
	"github.com/prescripto/prescripto-api/internal/metrics"
	"github.com/prescripto/prescripto-api/internal/middleware"
	"github.com/prescripto/prescripto-api/internal/notification"
	ucAppointment "github.com/prescripto/prescripto-api/internal/usecase/appointment"
	ucCancellation "github.com/prescripto/prescripto-api/internal/usecase/cancellation"
	ucPayment "github.com/prescripto/prescripto-api/internal/usecase/payment"
	ucReport "github.com/prescripto/prescripto-api/internal/usecase/report"
)

// Deps are the long-lived collaborators built once by the serve command.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Log      *logger.Logger
	Metrics  *metrics.Collector
	Cache    domainAppointment.SlotCache
	Gateways domainPayment.Resolver
	Notifier notification.Publisher
	Audit    audit.Recorder
	Store    storage.Store
	Location *time.Location
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config
	db := d.DB

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(middleware.RequestLogger(d.Log, d.Metrics))
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	// ======================================================
	// REPOSITORIES
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)
	cancellationRepo := infraRepo.NewCancellationGormRepository(db)
	paymentRepo := infraRepo.NewPaymentGormRepository(db)
	reportRepo := infraRepo.NewReportGormRepository(db)

	// ======================================================
	// USE CASES: APPOINTMENTS
	// ======================================================
	availabilityUC := ucAppointment.NewGetAvailability(appointmentRepo, d.Cache)
	bookUC := ucAppointment.NewBookAppointment(
		appointmentRepo,
		d.Cache,
		d.Notifier,
		d.Audit,
		d.Metrics,
		d.Location,
	)
	listUC := ucAppointment.NewListAppointments(appointmentRepo)
	updateStatusUC := ucAppointment.NewUpdateStatus(appointmentRepo, d.Cache, d.Audit)
	completeUC := ucAppointment.NewCompleteAppointment(
		appointmentRepo,
		d.Store,
		d.Notifier,
		d.Audit,
		d.Log,
		d.Location,
	)

	// ======================================================
	// USE CASES: CANCELLATIONS
	// ======================================================
	refunder := ucCancellation.NewRefunder(d.Gateways, d.Metrics)

	requestUC := ucCancellation.NewRequestCancellation(
		cancellationRepo,
		d.Notifier,
		d.Audit,
		d.Metrics,
		d.Location,
		cfg.CancellationNotice,
	)
	approveUC := ucCancellation.NewApproveCancellation(
		cancellationRepo,
		refunder,
		d.Cache,
		d.Notifier,
		d.Audit,
		d.Metrics,
	)
	rejectUC := ucCancellation.NewRejectCancellation(cancellationRepo, d.Notifier, d.Audit, d.Metrics)
	cancelByDoctorUC := ucCancellation.NewCancelByDoctor(
		cancellationRepo,
		refunder,
		d.Cache,
		d.Notifier,
		d.Audit,
		d.Metrics,
	)
	pendingUC := ucCancellation.NewListPendingCancellations(cancellationRepo)
	refundHistoryUC := ucCancellation.NewRefundHistory(cancellationRepo)

	// ======================================================
	// USE CASES: PAYMENTS / REPORTS
	// ======================================================
	receipts := ucPayment.NewReceipts(d.Store, d.Notifier, d.Log)
	confirmUC := ucPayment.NewConfirmPayment(paymentRepo, d.Gateways, receipts, d.Audit, cfg.Currency)
	syncUC := ucPayment.NewSyncPayment(paymentRepo, d.Gateways, receipts)
	paymentHistoryUC := ucPayment.NewPaymentHistory(paymentRepo)

	revenueUC := ucReport.NewRevenueSummary(reportRepo, d.Location)
	dashboardUC := ucReport.NewDashboardStats(reportRepo, d.Location)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg.JWTSecret, d.Audit)
	meHandler := handlers.NewMeHandler(db)
	doctorHandler := handlers.NewDoctorHandler(db, d.Store, d.Audit)
	timingsHandler := handlers.NewTimingsHandler(db)
	patientHandler := handlers.NewPatientHandler(db, reportRepo, d.Store)
	reviewHandler := handlers.NewReviewHandler(db, reportRepo, d.Audit)
	notificationHandler := handlers.NewNotificationHandler(db)
	auditLogsHandler := handlers.NewAuditLogsHandler(db, d.Location)

	appointmentHandler := handlers.NewAppointmentHandler(
		availabilityUC,
		bookUC,
		listUC,
		updateStatusUC,
		completeUC,
	)
	cancellationHandler := handlers.NewCancellationHandler(
		requestUC,
		approveUC,
		rejectUC,
		cancelByDoctorUC,
		pendingUC,
		refundHistoryUC,
	)
	paymentHandler := handlers.NewPaymentHandler(db, confirmUC, syncUC, paymentHistoryUC)
	reportHandler := handlers.NewReportHandler(revenueUC, dashboardUC)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")

	// ------------------------------
	// PUBLIC
	// ------------------------------
	api.POST("/doctors/register", authHandler.RegisterDoctor)
	api.POST("/doctors/login", authHandler.LoginDoctor)
	api.POST("/patients/register", authHandler.RegisterPatient)
	api.POST("/patients/login", authHandler.LoginPatient)

	api.GET("/patients/doctors", patientHandler.SearchDoctors)
	api.GET("/patients/doctors/:id", patientHandler.DoctorProfile)
	api.GET("/patients/doctors/:id/slots", appointmentHandler.Slots)
	api.GET("/reviews/doctor/:id", reviewHandler.ForDoctor)

	api.POST("/payments/webhook", paymentHandler.Webhook)

	// ------------------------------
	// SIGNED IN (any role)
	// ------------------------------
	secured := api.Group("")
	secured.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	secured.GET("/me", meHandler.GetMe)
	secured.GET("/notifications", notificationHandler.Mine)
	secured.GET("/audit-logs", auditLogsHandler.List)
	secured.GET("/appointments/refund-history", cancellationHandler.RefundHistory)
	secured.GET("/payments/appointment/:id", paymentHandler.ByAppointment)

	// ------------------------------
	// DOCTOR
	// ------------------------------
	doctor := secured.Group("")
	doctor.Use(middleware.RequireRole(status.RoleDoctor))
	{
		doctor.GET("/doctors/profile", doctorHandler.GetProfile)
		doctor.PUT("/doctors/profile", doctorHandler.UpdateProfile)
		doctor.POST("/doctors/profile/picture", doctorHandler.UploadPicture)
		doctor.GET("/doctors/dashboard", reportHandler.Dashboard)

		doctor.GET("/doctors/timings", timingsHandler.List)
		doctor.POST("/doctors/timings", timingsHandler.Add)
		doctor.DELETE("/doctors/timings/:id", timingsHandler.Delete)

		doctor.GET("/doctors/appointments", appointmentHandler.ListForDoctor)
		doctor.PATCH("/doctors/appointments/:id/status", appointmentHandler.UpdateStatus)
		doctor.POST("/doctors/appointments/:id/complete", appointmentHandler.Complete)

		doctor.POST("/appointments/:id/cancel-by-doctor", cancellationHandler.CancelByDoctor)
		doctor.POST("/appointments/cancellation/:id/approve", cancellationHandler.Approve)
		doctor.POST("/appointments/cancellation/:id/reject", cancellationHandler.Reject)
		doctor.GET("/appointments/doctor/pending-cancellations", cancellationHandler.Pending)
		doctor.GET("/appointments/doctor/revenue-summary", reportHandler.RevenueSummary)
	}

	// ------------------------------
	// PATIENT
	// ------------------------------
	patient := secured.Group("")
	patient.Use(middleware.RequireRole(status.RolePatient))
	{
		patient.GET("/patients/profile", patientHandler.GetProfile)
		patient.PUT("/patients/profile", patientHandler.UpdateProfile)
		patient.POST("/patients/profile/picture", patientHandler.UploadPicture)

		patient.POST("/patients/appointments", appointmentHandler.Book)
		patient.GET("/patients/appointments", appointmentHandler.ListForPatient)
		patient.POST("/appointments/:id/request-cancellation", cancellationHandler.Request)

		patient.POST("/payments/confirm", paymentHandler.Confirm)
		patient.POST("/payments/upi", paymentHandler.Offline)
		patient.GET("/payments/history", paymentHandler.History)

		patient.POST("/reviews", reviewHandler.Add)
		patient.GET("/reviews/mine", reviewHandler.Mine)
	}
}
