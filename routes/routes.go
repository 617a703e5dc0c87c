package routes

import (
	"ecuestre_go/controllers"
	"ecuestre_go/handlers"
	"ecuestre_go/middleware"
	"ecuestre_go/services"
	"ecuestre_go/services/websocket"
	"ecuestre_go/storage"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Options carries the infrastructure the services are built on.
type Options struct {
	DB                *gorm.DB
	Redis             *redis.Client
	Store             storage.ObjectStore
	Mailer            services.Mailer
	Line              *services.LineMessagingService
	LineSecret        string
	Hub               *websocket.Hub
	Environment       string
	InvoiceDueDay     int
	AllowedExtensions []string
	MaxFileSize       int64
}

// Dependencies holds every service behind the HTTP API.
type Dependencies struct {
	Auth          *services.AuthService
	Roster        *services.RosterService
	Invoices      *services.InvoiceService
	Subscriptions *services.SubscriptionService
	Plans         *services.PlanService
	Horses        *services.HorseService
	Teachers      *services.TeacherService
	Vouchers      *services.VoucherService
	Classes       *services.ClassService
	Reports       *services.ReportService
	Logs          *services.LogArchiveService
	Health        *services.HealthService
	Hub           *websocket.Hub
	LineWebhook   *handlers.LineWebhookHandler
	DB            *gorm.DB
}

// NewDependencies wires the services together.
func NewDependencies(o Options) *Dependencies {
	if o.Hub == nil {
		o.Hub = websocket.NewHub()
	}
	if o.Line == nil {
		o.Line = &services.LineMessagingService{}
	}

	voucherOpts := services.VoucherOptions{
		Store:             o.Store,
		Hub:               o.Hub,
		AllowedExtensions: o.AllowedExtensions,
		MaxFileSize:       o.MaxFileSize,
	}
	if o.Line.Enabled() {
		voucherOpts.Notifier = o.Line
	}

	roster := services.NewRosterService(o.DB)
	invoices := services.NewInvoiceService(o.DB, o.InvoiceDueDay)
	return &Dependencies{
		Auth:          services.NewAuthService(o.DB),
		Roster:        roster,
		Invoices:      invoices,
		Subscriptions: services.NewSubscriptionService(o.DB, invoices),
		Plans:         services.NewPlanService(o.DB),
		Horses:        services.NewHorseService(o.DB),
		Teachers:      services.NewTeacherService(o.DB, o.Mailer),
		Vouchers:      services.NewVoucherService(o.DB, voucherOpts),
		Classes:       services.NewClassService(o.DB),
		Reports:       services.NewReportService(o.DB),
		Logs:          services.NewLogArchiveService(o.DB, o.Redis, o.Store),
		Health:        services.NewHealthService(o.DB, o.Redis, o.Hub, o.Environment),
		Hub:           o.Hub,
		LineWebhook:   handlers.NewLineWebhookHandler(o.Line, o.LineSecret, roster),
		DB:            o.DB,
	}
}

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	authController := controllers.NewAuthController(deps.Auth)
	studentController := controllers.NewStudentController(deps.Roster, deps.Subscriptions)
	subscriptionController := controllers.NewSubscriptionController(deps.Subscriptions)
	planController := controllers.NewPlanController(deps.Plans)
	horseController := controllers.NewHorseController(deps.Horses)
	teacherController := controllers.NewTeacherController(deps.Teachers)
	voucherController := controllers.NewVoucherController(deps.Vouchers, deps.Invoices)
	classController := controllers.NewClassController(deps.Classes)
	reportController := controllers.NewReportController(deps.Reports)
	healthController := controllers.NewHealthController(deps.Health)
	wsController := controllers.NewWebSocketController(deps.Hub, deps.DB)

	jwt := middleware.JWTMiddleware(deps.DB)
	app.Use(middleware.WithDB(deps.DB))

	app.Get("/health", healthController.GetHealthStatus)

	// LINE webhook (account linking)
	app.Post("/line/webhook", deps.LineWebhook.Handle)

	api := app.Group("/api")

	// Authentication routes
	auth := api.Group("/auth")
	auth.Post("/login", authController.Login)
	auth.Post("/alumno/login", authController.LoginStudent)
	auth.Get("/me", jwt, authController.Profile)
	auth.Post("/logout", jwt, authController.Logout)
	auth.Post("/cambiar-password", jwt, authController.ChangePassword)

	// Panel routes: staff may read, only admins change the catalogue
	admin := api.Group("/admin", jwt, middleware.RequireStaff())
	requireAdmin := middleware.RequireAdmin()

	admin.Get("/alumnos", studentController.GetStudents)
	admin.Get("/alumnos/:id", studentController.GetStudent)
	admin.Patch("/alumnos/:id/bloquear", requireAdmin, studentController.SetBlocked)
	admin.Post("/alumnos/:id/suscripcion", requireAdmin, studentController.AssignSubscription)
	admin.Get("/alumnos/:id/suscripciones", studentController.GetSubscriptions)
	admin.Get("/duenos", studentController.GetOwners)

	admin.Get("/suscripciones/:id", subscriptionController.GetSubscription)
	admin.Patch("/suscripciones/:id", requireAdmin, subscriptionController.UpdateSubscription)
	admin.Delete("/suscripciones/:id", requireAdmin, subscriptionController.DeleteSubscription)

	admin.Get("/planes", planController.GetPlans)
	admin.Get("/planes/:id", planController.GetPlan)
	admin.Post("/planes", requireAdmin, planController.CreatePlan)
	admin.Patch("/planes/:id", requireAdmin, planController.UpdatePlan)
	admin.Delete("/planes/:id", requireAdmin, planController.DeletePlan)

	admin.Get("/caballos", horseController.GetHorses)
	admin.Get("/caballos/:id", horseController.GetHorse)
	admin.Post("/caballos", requireAdmin, horseController.CreateHorse)
	admin.Patch("/caballos/:id", requireAdmin, horseController.UpdateHorse)
	admin.Patch("/caballos/:id/estado", requireAdmin, horseController.SetHorseState)
	admin.Delete("/caballos/:id", requireAdmin, horseController.DeleteHorse)

	admin.Get("/profesores", teacherController.GetTeachers)
	admin.Get("/profesores/:id", teacherController.GetTeacher)
	admin.Get("/profesores/:id/horarios", teacherController.GetTeacherWindows)
	admin.Post("/profesores", requireAdmin, teacherController.CreateTeacher)
	admin.Patch("/profesores/:id", requireAdmin, teacherController.UpdateTeacher)
	admin.Delete("/profesores/:id", requireAdmin, teacherController.DeleteTeacher)

	admin.Get("/agenda", classController.GetAgenda)
	admin.Post("/clases", classController.CreateClass)
	admin.Get("/clases/:id", classController.GetClass)
	admin.Patch("/clases/:id/estado", classController.SetClassState)

	admin.Get("/ocupacion/caballos", reportController.GetHorseOccupancy)
	admin.Get("/ocupacion/profesores", reportController.GetTeacherOccupancy)
	admin.Get("/pagos-profesores", requireAdmin, reportController.GetTeacherPayments)
	admin.Get("/pagos-profesores/export", requireAdmin, reportController.ExportTeacherPayments)

	admin.Get("/ws/stats", requireAdmin, wsController.GetWebSocketStats)

	// Voucher review queue (admins) and upload (students)
	vouchers := api.Group("/comprobantes", jwt)
	vouchers.Post("/", middleware.RequireStudent(), voucherController.Upload)
	vouchers.Get("/pendientes", requireAdmin, voucherController.GetPending)
	vouchers.Get("/", requireAdmin, voucherController.GetVouchers)
	vouchers.Get("/:id", requireAdmin, voucherController.GetVoucher)
	vouchers.Post("/:id/aprobar", requireAdmin, voucherController.Approve)
	vouchers.Post("/:id/rechazar", requireAdmin, voucherController.Reject)

	// Student app
	student := api.Group("/alumno", jwt, middleware.RequireStudent())
	student.Get("/facturas", voucherController.GetMyInvoices)
	student.Get("/comprobantes", voucherController.GetMyVouchers)

	// WebSocket connection endpoint, authenticated by ?token=
	app.Get("/ws", wsController.Upgrade, wsController.WebSocketHandler())
}
