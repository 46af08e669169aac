package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AshanHimantha/myapplecare-backend/internal/config"
	carthandler "github.com/AshanHimantha/myapplecare-backend/internal/delivery/http/handler/cart"
	invoicehandler "github.com/AshanHimantha/myapplecare-backend/internal/delivery/http/handler/invoice"
	stockhandler "github.com/AshanHimantha/myapplecare-backend/internal/delivery/http/handler/stock"
	tickethandler "github.com/AshanHimantha/myapplecare-backend/internal/delivery/http/handler/ticket"
	ticketitemhandler "github.com/AshanHimantha/myapplecare-backend/internal/delivery/http/handler/ticketitem"
	"github.com/AshanHimantha/myapplecare-backend/internal/delivery/middleware"
	"github.com/AshanHimantha/myapplecare-backend/internal/notify"
	"github.com/AshanHimantha/myapplecare-backend/internal/repository/postgres"
	cartuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/cart"
	checkoutuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/checkout"
	invoiceuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/invoice"
	stockuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/stock"
	ticketuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/ticket"
	ticketitemuc "github.com/AshanHimantha/myapplecare-backend/internal/usecase/ticketitem"
)

func RegisterRoutes(app *fiber.App, cfg config.Config, db *pgxpool.Pool, sms *notify.SMSClient) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	api := app.Group("/api/v1", middleware.RequireUserJWT(middleware.JWTConfig{
		Secret: cfg.JWTSecret,
	}))

	// Cart + checkout wiring
	cartStore := postgres.NewCartStoreAdapter(db)
	cartUC := cartuc.New(cartStore)
	checkoutStore := postgres.NewCheckoutStoreAdapter(db)
	checkoutUC := checkoutuc.New(checkoutStore, sms)
	cartH := carthandler.New(cartUC, checkoutUC)

	// Invoice wiring
	invoiceStore := postgres.NewInvoiceStoreAdapter(db)
	invoiceUC := invoiceuc.New(invoiceStore)
	invoiceH := invoicehandler.New(invoiceUC)

	// Ticket wiring
	ticketStore := postgres.NewTicketStoreAdapter(db)
	ticketUC := ticketuc.New(ticketStore, sms)
	ticketH := tickethandler.New(ticketUC)

	ticketItemStore := postgres.NewTicketItemStoreAdapter(db)
	ticketItemUC := ticketitemuc.New(ticketItemStore)
	ticketItemH := ticketitemhandler.New(ticketItemUC)

	// Stock wiring
	stockStore := postgres.NewStockStoreAdapter(db)
	stockUC := stockuc.New(stockStore)
	stockH := stockhandler.New(stockUC)

	// Cart routes
	api.Get("/cart", cartH.List)
	api.Post("/cart/create", cartH.Create)
	api.Post("/cart/add", cartH.AddItem)
	api.Post("/cart/checkout", cartH.Checkout)
	api.Put("/cart/items/:id", cartH.UpdateItem)
	api.Delete("/cart/items/:id", cartH.RemoveItem)
	api.Get("/cart/:id", cartH.Get)
	api.Delete("/cart/:id", cartH.Delete)

	// Invoice routes
	api.Get("/invoices", invoiceH.List)
	api.Get("/invoices/daily", invoiceH.Daily)
	api.Get("/invoices/:id", invoiceH.Get)
	api.Post("/invoices/return", invoiceH.ProcessReturn)
	api.Get("/returned-items", invoiceH.ListReturned)

	// Ticket routes
	api.Post("/tickets", ticketH.Create)
	api.Get("/tickets", ticketH.List)
	api.Get("/tickets/:id", ticketH.Get)
	api.Patch("/tickets/:id/status", ticketH.UpdateStatus)

	// Ticket item routes
	api.Post("/ticket-items", ticketItemH.Add)
	api.Put("/ticket-items/:id", ticketItemH.Update)
	api.Delete("/ticket-items/:id", ticketItemH.Delete)
	api.Get("/tickets/:id/items", ticketItemH.ListByTicket)

	// Stock routes
	api.Get("/stocks/available", stockH.ListAvailable)
}
