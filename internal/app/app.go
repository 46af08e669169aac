package app

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/AshanHimantha/myapplecare-backend/internal/config"
	"github.com/AshanHimantha/myapplecare-backend/internal/db"
	httpdelivery "github.com/AshanHimantha/myapplecare-backend/internal/delivery/http"
	"github.com/AshanHimantha/myapplecare-backend/internal/notify"
)

type App struct {
	f    *fiber.App
	port string
}

func New() *App {
	cfg := config.Load()

	pool, err := db.NewPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	sms := notify.NewSMSClient(cfg.SMSAPIURL, cfg.SMSAPIKey, cfg.SMSSourceAddress,
		time.Duration(cfg.SMSTimeoutSeconds)*time.Second)

	f := fiber.New(fiber.Config{
		AppName: "myapplecare-backend",
	})

	f.Use(recover.New())
	f.Use(logger.New())

	httpdelivery.RegisterRoutes(f, cfg, pool, sms)

	return &App{f: f, port: cfg.Port}
}

func (a *App) Run() error {
	return a.f.Listen(":" + a.port)
}
