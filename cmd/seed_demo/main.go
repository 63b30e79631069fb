package main

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"github.com/warehub-io/warehub/internal/config"
	"github.com/warehub-io/warehub/internal/database"
	"github.com/warehub-io/warehub/internal/models"
	"github.com/warehub-io/warehub/internal/services/orders"
	"github.com/warehub-io/warehub/internal/services/stock"
)

func main() {
	fmt.Println("🌱 WareHub Demo Data Seeder")
	fmt.Println("=" + string(make([]rune, 60)))

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("✅ Connected to database")
	fmt.Println()

	// Run migrations first
	fmt.Println("🔨 Running database migrations...")
	err = db.AutoMigrate(
		&models.UserAuth{},
		&models.Product{},
		&models.Warehouse{},
		&models.WarehouseStock{},
		&models.StockMovement{},
		&models.Order{},
		&models.OrderItem{},
		&models.Vendor{},
		&models.VendorProduct{},
		&models.VendorContact{},
		&models.WhatsappConversation{},
		&models.WhatsappMessage{},
		&models.WhatsappLog{},
	)
	if err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	fmt.Println("✅ Migrations complete")
	fmt.Println()

	// Check if data already exists
	var productCount int64
	db.Model(&models.Product{}).Count(&productCount)
	if productCount > 0 {
		fmt.Printf("⚠️  Database already has %d products. Clear it first? (y/N): ", productCount)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("❌ Aborted. Database not modified.")
			return
		}

		// Clear existing data
		fmt.Println("🗑️  Clearing existing data...")
		db.Exec("TRUNCATE TABLE whatsapp_logs CASCADE")
		db.Exec("TRUNCATE TABLE whatsapp_messages CASCADE")
		db.Exec("TRUNCATE TABLE whatsapp_conversations CASCADE")
		db.Exec("TRUNCATE TABLE vendor_contacts CASCADE")
		db.Exec("TRUNCATE TABLE vendor_products CASCADE")
		db.Exec("TRUNCATE TABLE vendors CASCADE")
		db.Exec("TRUNCATE TABLE order_items CASCADE")
		db.Exec("TRUNCATE TABLE orders CASCADE")
		db.Exec("TRUNCATE TABLE stock_movements CASCADE")
		db.Exec("TRUNCATE TABLE warehouse_stocks CASCADE")
		db.Exec("TRUNCATE TABLE warehouses CASCADE")
		db.Exec("TRUNCATE TABLE products CASCADE")
		fmt.Println("✅ Data cleared")
	}

	ctx := context.Background()
	ledger := stock.NewService(db.DB, nil)
	orderSvc := orders.NewService(db.DB, ledger, nil)

	fmt.Println()
	fmt.Println("📦 Creating demo data...")
	fmt.Println()

	// 1. Create Warehouses
	fmt.Println("📍 Creating warehouses...")
	warehouses := []models.Warehouse{
		{Name: "Main Warehouse", Location: "Dubai", Address: "Jebel Ali Free Zone, Gate 4"},
		{Name: "Yard Store", Location: "Abu Dhabi", Address: "Mussafah Industrial Area M-9"},
		{Name: "Service Van 1", Location: "Mobile"},
	}
	for i := range warehouses {
		if err := db.Create(&warehouses[i]).Error; err != nil {
			log.Printf("⚠️  Failed to create warehouse %s: %v", warehouses[i].Name, err)
		} else {
			fmt.Printf("   ✓ Created warehouse: %s (%s)\n", warehouses[i].Name, warehouses[i].Location)
		}
	}
	fmt.Printf("✅ Created %d warehouses\n\n", len(warehouses))

	// 2. Create Products
	fmt.Println("📦 Creating products...")
	products := []models.Product{
		{
			SKU:           "ENG-OIL-001",
			Name:          "Engine Oil 15W-40 (20L Drum)",
			Category:      "Lubricants",
			Price:         decimal.RequireFromString("185.00"),
			MinStockLevel: 10,
			GroupCode:     "ENG",
			PartCode:      "OIL-1540",
			Unit:          "drum",
			LeadTimeDays:  7,
			Importance:    "high",
			IsActive:      true,
		},
		{
			SKU:           "FLT-AIR-210",
			Name:          "Air Filter Element P821575",
			Category:      "Filters",
			Price:         decimal.RequireFromString("42.50"),
			MinStockLevel: 20,
			GroupCode:     "FLT",
			PartCode:      "P821575",
			AltPartCode:   "AF25552",
			Unit:          "pcs",
			LeadTimeDays:  14,
			Importance:    "medium",
			IsActive:      true,
		},
		{
			SKU:           "HYD-HOSE-38",
			Name:          "Hydraulic Hose 3/8\" R2AT (per metre)",
			Category:      "Hydraulics",
			Price:         decimal.RequireFromString("12.75"),
			MinStockLevel: 50,
			GroupCode:     "HYD",
			Unit:          "m",
			LeadTimeDays:  5,
			Importance:    "medium",
			IsActive:      true,
		},
		{
			SKU:           "BRK-PAD-044",
			Name:          "Brake Pad Set - Crane Axle",
			Category:      "Brakes",
			Price:         decimal.RequireFromString("310.00"),
			MinStockLevel: 4,
			GroupCode:     "BRK",
			PartCode:      "BP-044",
			Unit:          "set",
			LeadTimeDays:  21,
			Importance:    "high",
			IsActive:      true,
		},
		{
			SKU:           "ELE-FUSE-30A",
			Name:          "Blade Fuse 30A (Box of 50)",
			Category:      "Electrical",
			Price:         decimal.RequireFromString("18.00"),
			MinStockLevel: 5,
			GroupCode:     "ELE",
			Unit:          "box",
			LeadTimeDays:  3,
			Importance:    "low",
			IsActive:      true,
		},
	}
	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			log.Printf("⚠️  Failed to create product %s: %v", products[i].SKU, err)
		} else {
			fmt.Printf("   ✓ Created product: [%s] %s\n", products[i].SKU, products[i].Name)
		}
	}
	fmt.Printf("✅ Created %d products\n\n", len(products))

	// 3. Book initial stock through the ledger so movement history
	// and warehouse quantities stay in sync from day one.
	fmt.Println("📊 Booking initial stock...")
	initialStock := []stock.MovementInput{
		{ProductID: products[0].ID, WarehouseID: warehouses[0].ID, Action: models.MovementAdd, Quantity: 200, Reference: "seed"},
		{ProductID: products[0].ID, WarehouseID: warehouses[1].ID, Action: models.MovementAdd, Quantity: 50, Reference: "seed"},
		{ProductID: products[1].ID, WarehouseID: warehouses[0].ID, Action: models.MovementAdd, Quantity: 120, Reference: "seed"},
		{ProductID: products[2].ID, WarehouseID: warehouses[0].ID, Action: models.MovementAdd, Quantity: 300, Reference: "seed"},
		{ProductID: products[3].ID, WarehouseID: warehouses[0].ID, Action: models.MovementAdd, Quantity: 6, Reference: "seed"},
		{ProductID: products[4].ID, WarehouseID: warehouses[2].ID, Action: models.MovementAdd, Quantity: 12, Reference: "seed"},
	}
	for _, in := range initialStock {
		if _, err := ledger.RecordMovement(ctx, in); err != nil {
			log.Printf("⚠️  Failed to book stock for product %d: %v", in.ProductID, err)
		} else {
			fmt.Printf("   ✓ Booked %d units of product %d into warehouse %d\n", in.Quantity, in.ProductID, in.WarehouseID)
		}
	}
	fmt.Printf("✅ Booked %d stock lines\n\n", len(initialStock))

	// 4. Create Vendors
	fmt.Println("🏭 Creating vendors...")
	vendors := []models.Vendor{
		{
			Name:         "Gulf Lubricants Trading LLC",
			MainCategory: "operation_services",
			Subcategory:  "Lubricants",
			ProductType:  "Consumables",
			ContactName:  "Rashid Al Mansoori",
			Phone:        "+971-4-555-0101",
			Email:        "sales@gulflubricants.example",
			City:         "Dubai",
			Status:       models.VendorStatusActive,
			IsActive:     true,
		},
		{
			Name:         "Emirates Filtration Co",
			MainCategory: "operation_services",
			Subcategory:  "Filters",
			ProductType:  "Spare Parts",
			ContactName:  "Priya Nair",
			Phone:        "+971-2-555-0144",
			Email:        "priya@emiratesfiltration.example",
			City:         "Abu Dhabi",
			Status:       models.VendorStatusActive,
			IsActive:     true,
		},
		{
			Name:         "Atlas Hydraulic Supplies",
			MainCategory: "operation_services",
			Subcategory:  "Hydraulics",
			ProductType:  "Spare Parts",
			Phone:        "+971-6-555-0190",
			City:         "Sharjah",
			Status:       models.VendorStatusPending,
			IsActive:     true,
		},
	}
	for i := range vendors {
		if err := db.Create(&vendors[i]).Error; err != nil {
			log.Printf("⚠️  Failed to create vendor %s: %v", vendors[i].Name, err)
		} else {
			fmt.Printf("   ✓ Created vendor: %s [%s]\n", vendors[i].Name, vendors[i].Status)
		}
	}

	vendorLinks := []models.VendorProduct{
		{VendorID: vendors[0].ID, ProductID: products[0].ID, SupplierCode: "GL-1540-20", Price: decimal.RequireFromString("162.00"), LeadTimeDays: 5, MinimumOrderQuantity: 10, IsPreferred: true},
		{VendorID: vendors[1].ID, ProductID: products[1].ID, SupplierCode: "EF-P821575", Price: decimal.RequireFromString("36.00"), LeadTimeDays: 10, MinimumOrderQuantity: 24, IsPreferred: true},
		{VendorID: vendors[2].ID, ProductID: products[2].ID, SupplierCode: "AH-R2AT-38", Price: decimal.RequireFromString("10.20"), LeadTimeDays: 4, MinimumOrderQuantity: 100},
	}
	for _, link := range vendorLinks {
		if err := db.Create(&link).Error; err != nil {
			log.Printf("⚠️  Failed to link vendor %d to product %d: %v", link.VendorID, link.ProductID, err)
		}
	}

	contacts := []models.VendorContact{
		{VendorID: vendors[0].ID, Name: "Rashid Al Mansoori", Designation: "Sales Manager", Phone: "+971-50-555-0101", Email: "rashid@gulflubricants.example", IsPrimary: true},
		{VendorID: vendors[0].ID, Name: "Fatima Hassan", Designation: "Accounts", Phone: "+971-50-555-0102"},
		{VendorID: vendors[1].ID, Name: "Priya Nair", Designation: "Key Account Manager", Email: "priya@emiratesfiltration.example", IsPrimary: true},
	}
	for _, c := range contacts {
		if err := db.Create(&c).Error; err != nil {
			log.Printf("⚠️  Failed to create contact %s: %v", c.Name, err)
		}
	}
	fmt.Printf("✅ Created %d vendors, %d product links, %d contacts\n\n", len(vendors), len(vendorLinks), len(contacts))

	// 5. Create a demo order through the order service so totals and
	// stock consumption go through the real pipeline.
	fmt.Println("📋 Creating demo order...")
	order, err := orderSvc.Create(ctx, orders.CreateInput{
		CustomerName:  "Al Bahar Heavy Equipment",
		CustomerEmail: "workshop@albahar.example",
		CustomerPhone: "+971-50-555-0200",
		JobOrder:      "JO-2025-118",
		Location:      "Jebel Ali Yard",
		Items: []orders.ItemInput{
			{ProductID: products[0].ID, Quantity: 3},
			{ProductID: products[1].ID, Quantity: 8},
		},
	})
	if err != nil {
		log.Printf("⚠️  Failed to create demo order: %v", err)
	} else {
		fmt.Printf("   ✓ Created order: %s (total %s)\n", order.OrderNumber, order.Total.StringFixed(2))
	}
	fmt.Println()

	// 6. Create a demo conversation
	fmt.Println("💬 Creating demo conversation...")
	conv := models.WhatsappConversation{
		UserPhone: "+971505550200",
		Status:    models.ConversationOpen,
	}
	if err := db.Create(&conv).Error; err != nil {
		log.Printf("⚠️  Failed to create conversation: %v", err)
	} else {
		messages := []models.WhatsappMessage{
			{ConversationID: conv.ID, Direction: models.DirectionInbound, Body: "Salam, do you have 15W-40 engine oil in stock?"},
			{ConversationID: conv.ID, Direction: models.DirectionOutbound, Body: "Yes, we have 20L drums of 15W-40 available. How many do you need?"},
		}
		for _, m := range messages {
			if err := db.Create(&m).Error; err != nil {
				log.Printf("⚠️  Failed to create message: %v", err)
			}
		}
		fmt.Printf("   ✓ Created conversation with %s (%d messages)\n", conv.UserPhone, len(messages))
	}
	fmt.Println()

	// Summary
	fmt.Println("=" + string(make([]rune, 60)))
	fmt.Println("🎉 Demo data created successfully!")
	fmt.Println()
	fmt.Println("📊 Summary:")
	fmt.Printf("   • %d warehouses\n", len(warehouses))
	fmt.Printf("   • %d products\n", len(products))
	fmt.Printf("   • %d initial stock lines\n", len(initialStock))
	fmt.Printf("   • %d vendors with product links and contacts\n", len(vendors))
	fmt.Println("   • 1 order, 1 WhatsApp conversation")
	fmt.Println()
	fmt.Println("🚀 Start the server:")
	fmt.Println("   go run ./cmd/api/main.go")
	fmt.Println("=" + string(make([]rune, 60)))
}
