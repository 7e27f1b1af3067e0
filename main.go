package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rfp-backend/controllers"
	"rfp-backend/database"
	"rfp-backend/jobs"
	"rfp-backend/middlewares"
	"rfp-backend/routes"
	"rfp-backend/services"
	"rfp-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// envInt reads an int env var with a default fallback.
func envInt(key string, def int) int {
	return utils.ParseIntDefault(os.Getenv(key), def)
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	// ---- Database
	database.Connect()
	if err := database.Migrate(); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	// ---- Services (process-scoped, injected)
	smtpCfg := services.SMTPConfig{
		Host:     envStr("SMTP_HOST", "smtp.gmail.com"),
		Port:     envInt("SMTP_PORT", 587),
		User:     os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASS"),
		From:     envStr("SMTP_FROM", os.Getenv("SMTP_USER")),
	}
	imapCfg := services.IMAPConfig{
		Host:     envStr("IMAP_HOST", "imap.gmail.com"),
		Port:     envInt("IMAP_PORT", 993),
		User:     envStr("IMAP_USER", os.Getenv("SMTP_USER")),
		Password: envStr("IMAP_PASS", os.Getenv("SMTP_PASS")),
	}
	mail := services.NewMailService(smtpCfg, imapCfg)
	ai := services.NewAIService(os.Getenv("OPENAI_API_KEY"), os.Getenv("OPENAI_MODEL"))
	proposalSvc := services.NewProposalService(database.DB, mail, ai, nil)

	// ---- Background inbox polling
	poller, err := jobs.StartEmailPolling(proposalSvc, envInt("EMAIL_POLL_MINUTES", 5))
	if err != nil {
		log.Fatalf("could not start email polling: %v", err)
	}

	// ---- Limits (configurable via env)
	// Fiber default BodyLimit is 4MB if unset; override with BODY_LIMIT_MB.
	bodyLimitBytes := envInt("BODY_LIMIT_MB", 4) * 1024 * 1024

	// ---- Fiber app with global error handler + body limit
	app := fiber.New(fiber.Config{
		ErrorHandler: middlewares.ErrorHandler,
		BodyLimit:    bodyLimitBytes,
	})

	app.Use(logger.New())

	// ---- CORS
	app.Use(cors.New(cors.Config{
		AllowOrigins: envStr("ALLOWED_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept, Idempotency-Key",
	}))

	// ---- Global rate limiter (tune via env)
	app.Use(limiter.New(limiter.Config{
		Max:        envInt("RATE_LIMIT_MAX", 60),
		Expiration: time.Duration(envInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
	}))

	// ---- Routes
	vendorCtrl := controllers.NewVendorController(database.DB)
	rfpCtrl := controllers.NewRFPController(database.DB, ai, mail)
	proposalCtrl := controllers.NewProposalController(database.DB, proposalSvc)
	routes.Register(app, vendorCtrl, rfpCtrl, proposalCtrl)

	// ---- Shutdown handling
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("shutting down...")
		poller.Stop()
		_ = app.Shutdown()
	}()

	// ---- Start
	port := envStr("PORT", "8080")
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
	database.Close()
}
