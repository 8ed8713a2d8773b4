package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appanalytics "github.com/jhoicas/audit-portal-api/internal/application/analytics"
	"github.com/jhoicas/audit-portal-api/internal/application/auth"
	"github.com/jhoicas/audit-portal-api/internal/application/crm"
	"github.com/jhoicas/audit-portal-api/internal/application/documents"
	"github.com/jhoicas/audit-portal-api/internal/application/ports"
	"github.com/jhoicas/audit-portal-api/internal/infrastructure/cache"
	"github.com/jhoicas/audit-portal-api/internal/infrastructure/dynamics"
	infrapdf "github.com/jhoicas/audit-portal-api/internal/infrastructure/pdf"
	"github.com/jhoicas/audit-portal-api/internal/infrastructure/postgres"
	"github.com/jhoicas/audit-portal-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/audit-portal-api/internal/interfaces/http"
	"github.com/jhoicas/audit-portal-api/pkg/config"
	"github.com/jhoicas/audit-portal-api/pkg/jwt"
	"github.com/jhoicas/audit-portal-api/pkg/logger"
)

// maxUploadBytes tope del cuerpo de las peticiones (subidas multipart).
const maxUploadBytes = 50 << 20

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración inválida")
	}
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("identity_scope", cfg.Auth.IdentityScope).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	companyRepo := postgres.NewCompanyRepository(pool)
	projectRepo := postgres.NewProjectRepository(pool)
	accessRepo := postgres.NewAccessRepository(pool)
	documentRepo := postgres.NewDocumentRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	issuer, err := jwt.NewIssuer(jwt.Config{
		Secret:            cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
		SessionTTL:        cfg.JWT.SessionTTL,
		PasswordChangeTTL: cfg.JWT.PasswordChangeTTL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("emisor de tokens")
	}

	authUC := auth.NewAuthUseCase(userRepo, companyRepo, projectRepo, accessRepo, txRunner, issuer, auth.Config{
		IdentityScope: cfg.Auth.IdentityScope,
	})

	blobs, err := storage.NewS3Storage(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento de archivos")
	}
	documentsUC := documents.NewUseCase(documentRepo, txRunner, blobs, cfg.Storage.URLTTL)

	// PDF: informe de estado del proyecto
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	dashboardUC := appanalytics.NewDashboardUseCase(analyticsRepo, companyRepo, projectRepo, pdfGenerator)

	// Dynamics 365: sin credenciales el endpoint responde 502 CRM_UNAVAILABLE.
	var crmClient ports.CRMClient
	if cfg.Dynamics.Enabled() {
		crmClient = dynamics.NewClient(dynamics.Config{
			InstanceURL:  cfg.Dynamics.InstanceURL,
			TenantID:     cfg.Dynamics.TenantID,
			ClientID:     cfg.Dynamics.ClientID,
			ClientSecret: cfg.Dynamics.ClientSecret,
		}, cache.NewLookup[string, string](cfg.Dynamics.CacheSize, cfg.Dynamics.CacheTTL))
	} else {
		log.Warn().Msg("Dynamics 365 sin configurar")
	}
	crmUC := crm.NewUseCase(companyRepo, crmClient)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    maxUploadBytes,
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.HTTP.AllowedOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + httpRouter.HeaderAdminKey,
		AllowMethods: "GET,POST,PUT,OPTIONS",
	}))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Audit Portal API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		DocumentsUC:  documentsUC,
		DashboardUC:  dashboardUC,
		CRMUC:        crmUC,
		Tokens:       issuer,
		AdminKey:     cfg.Auth.AdminKey,
		LoginRateMax: cfg.Auth.LoginRateMax,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
