package api

import (
	"log"
	"time"

	"github.com/SundayYogurt/scholarship_service/config"
	"github.com/SundayYogurt/scholarship_service/infra/queue"
	"github.com/SundayYogurt/scholarship_service/internal/api/rest/handlers"
	"github.com/SundayYogurt/scholarship_service/internal/clients/scholarship"
	"github.com/SundayYogurt/scholarship_service/internal/domain"
	"github.com/SundayYogurt/scholarship_service/internal/helper"
	"github.com/SundayYogurt/scholarship_service/internal/repository"
	"github.com/SundayYogurt/scholarship_service/internal/services"
	"github.com/SundayYogurt/scholarship_service/internal/views"
	"github.com/SundayYogurt/scholarship_service/pkg/cloudinary"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const sessionTTL = 24 * time.Hour

func StartServer(cfg config.Config) {
	loc := cfg.Location()

	app := fiber.New(fiber.Config{
		Views:     views.NewEngine(loc),
		BodyLimit: 6 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} rid=${locals:requestid} ${latency}\n",
	}))

	// ---------- CORS ----------
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.BaseURL,
		AllowHeaders:     "Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: cfg.BaseURL != "*",
	}))

	// ---------- DB ----------
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DatabaseDSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		log.Fatalf("database connection error: %v", err)
	}
	log.Println("database connected")

	// ---------- MIGRATION (guarded by advisory lock) ----------
	// every replica uses the same lock id
	const migrateLockID int64 = 20240405

	if err := db.Exec("SELECT pg_advisory_lock(?)", migrateLockID).Error; err != nil {
		log.Fatalf("migration lock error: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.AuditLog{},
		&domain.UserConsent{},
	); err != nil {
		log.Fatalf("migration error: %v", err)
	}
	_ = db.Exec("SELECT pg_advisory_unlock(?)", migrateLockID).Error
	log.Println("migration successful")

	// ---------- Infra ----------
	log.Printf("KafkaBroker=%q KafkaTopic=%q", cfg.KafkaBroker, cfg.KafkaTopic)
	kafkaProducer := queue.NewProducer(
		cfg.KafkaBroker,
		cfg.KafkaTopic,
		cfg.KafkaUsername,
		cfg.KafkaPassword,
	)
	defer func() {
		if err := kafkaProducer.Close(); err != nil {
			log.Printf("kafka producer close error: %v", err)
		}
	}()

	cld, err := cloudinary.New(cfg.CloudinaryUrl)
	if err != nil {
		log.Fatalf("cloudinary init error: %v", err)
	}
	up := cloudinary.NewCloudinaryUploader(cld)

	scholarshipClient := scholarship.New(cfg.ScholarshipAPIURL, cfg.ScholarshipAPIToken, cfg.UpstreamTimeout)
	authHelper := helper.SetupAuth(cfg.AccessSecret)

	store := session.New(session.Config{
		Expiration:     sessionTTL,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		KeyGenerator:   uuid.NewString,
	})

	// ---------- Repositories ----------
	auditRepo := repository.NewAuditRepository(db)
	consentRepo := repository.NewConsentRepository(db)

	// ---------- Service ----------
	entranceSvc := services.NewEntranceService(
		scholarshipClient,
		auditRepo,
		consentRepo,
		kafkaProducer,
		up,
		services.EntranceOptions{
			Location:         loc,
			ApplicationsPath: cfg.ApplicationsPath,
		},
	)

	// ---------- Handler ----------
	handlers.NewSessionHandler(store, authHelper).SetupRoutes(app)
	handlers.NewEntranceHandler(entranceSvc, store, cfg.ApplicationsPath).SetupRoutes(app)

	// ---------- Health ----------
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// ---------- Listen ----------
	addr := cfg.ServerPort
	log.Println("listening on", addr)
	if err := app.Listen(addr); err != nil {
		log.Printf("server stopped: %v", err)
	}
}
