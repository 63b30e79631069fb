package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warehub-io/warehub/internal/ai"
	"github.com/warehub-io/warehub/internal/config"
	"github.com/warehub-io/warehub/internal/database"
	"github.com/warehub-io/warehub/internal/handlers"
	"github.com/warehub-io/warehub/internal/models"
	"github.com/warehub-io/warehub/internal/services/orders"
	"github.com/warehub-io/warehub/internal/services/stock"
	"github.com/warehub-io/warehub/internal/services/vendors"
	"github.com/warehub-io/warehub/internal/services/whatsapp"
	"github.com/warehub-io/warehub/internal/websocket"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (Detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-Migrate Schema
	log.Println("🚀 Synchronizing database schema...")
	err = db.AutoMigrate(
		&models.UserAuth{},

		// Catalog & inventory
		&models.Product{},
		&models.Warehouse{},
		&models.WarehouseStock{},
		&models.StockMovement{},

		// Orders
		&models.Order{},
		&models.OrderItem{},

		// Vendor catalog
		&models.Vendor{},
		&models.VendorProduct{},
		&models.VendorContact{},

		// WhatsApp channel
		&models.WhatsappConversation{},
		&models.WhatsappMessage{},
		&models.WhatsappLog{},
	)
	if err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}

	// 4. Event hub for live dashboards
	hub := websocket.NewHub()
	go hub.Run()

	// 5. Wire services
	ledger := stock.NewService(db.DB, hub)
	orderSvc := orders.NewService(db.DB, ledger, hub)
	vendorSvc := vendors.NewService(db.DB)

	var provider whatsapp.Provider = whatsapp.LogProvider{}
	if cfg.WhatsApp.AccessToken != "" {
		provider = whatsapp.NewHTTPProvider(cfg.WhatsApp)
		log.Println("✅ WhatsApp: HTTP provider configured")
	} else {
		log.Println("⚠️ WhatsApp: no access token, outbound messages are logged only")
	}

	var responder whatsapp.Responder
	if cfg.AI.GeminiAPIKey != "" {
		client, err := ai.NewGeminiClient(context.Background(), cfg.AI.GeminiAPIKey, cfg.AI.Model)
		if err != nil {
			log.Printf("⚠️ AI: responder disabled: %v", err)
		} else {
			defer client.Close()
			responder = ai.NewResponder(client)
			log.Println("✅ AI: auto-responder enabled")
		}
	} else {
		log.Println("⚠️ AI: no API key, conversations wait for a human agent")
	}

	waSvc := whatsapp.NewService(db.DB, provider, whatsapp.NewHealth(), responder, hub, cfg.AI.MinConfidence)

	// 6. Set up HTTP router
	router := handlers.NewRouter(db, cfg, handlers.Services{
		Stock:    ledger,
		Orders:   orderSvc,
		Vendors:  vendorSvc,
		WhatsApp: waSvc,
	}, hub)

	// 7. Background low-stock sweep for the dashboard banner
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		for range ticker.C {
			products, err := ledger.LowStock(context.Background(), 50)
			if err != nil {
				log.Printf("Low-stock sweep error: %v", err)
				continue
			}
			if len(products) > 0 {
				hub.Publish("stock.low", products)
			}
		}
	}()
	log.Println("✅ Low-stock sweep started")

	// 8. Start server with graceful shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on port %s\n", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	// Create context with timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Close database (this also stops embedded PostgreSQL)
	log.Println("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
