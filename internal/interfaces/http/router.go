package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// DefaultLoginRateMax intentos de login por IP y minuto.
const DefaultLoginRateMax = 5

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       AuthService
	DocumentsUC  DocumentService
	DashboardUC  DashboardService
	CRMUC        CRMService
	Tokens       TokenVerifier
	AdminKey     string
	LoginRateMax int
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	authHandler := NewAuthHandler(deps.AuthUC)
	documentHandler := NewDocumentHandler(deps.DocumentsUC)
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	dynamicsHandler := NewDynamicsHandler(deps.CRMUC)

	session := AuthMiddleware(deps.Tokens)

	// Auth (público)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", loginLimiter(deps.LoginRateMax), authHandler.Login)

	// Solo con el token de cambio obligatorio
	authGroup.Post("/change-password", PasswordChangeMiddleware(deps.Tokens), authHandler.ChangePassword)

	// Sesión completa
	authGroup.Get("/me", session, authHandler.Me)
	authGroup.Put("/password", session, authHandler.ChangeOwnPassword)
	authGroup.Post("/select-company", session, authHandler.SelectCompany)
	authGroup.Post("/select-project", session, RequireCompany(), authHandler.SelectProject)

	// Empresa seleccionada
	api.Get("/dynamics/projects", session, RequireCompany(), dynamicsHandler.Projects)

	// Proyecto seleccionado
	project := []fiber.Handler{session, RequireProject()}
	api.Get("/categories", append(project, documentHandler.Categories)...)
	api.Get("/files", append(project, documentHandler.Files)...)
	api.Post("/files/upload", append(project, documentHandler.Upload)...)
	api.Get("/files/url", append(project, documentHandler.FileURL)...)
	api.Get("/dashboard/stats", append(project, dashboardHandler.Stats)...)
	api.Get("/dashboard/report.pdf", append(project, dashboardHandler.Report)...)

	// Administración
	admin := api.Group("/admin", RequireAdmin(deps.Tokens, deps.AdminKey))
	admin.Post("/users/:id/reset-password", authHandler.AdminResetPassword)
}

func loginLimiter(perMinute int) fiber.Handler {
	if perMinute <= 0 {
		perMinute = DefaultLoginRateMax
	}
	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return abort(c, fiber.StatusTooManyRequests, "TOO_MANY_REQUESTS",
				"demasiados intentos de login, espere un minuto", nil)
		},
	})
}
