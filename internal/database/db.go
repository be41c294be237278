package database

import (
	"franchise-backend/internal/config"
	"franchise-backend/internal/logger"
	"franchise-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.L.Fatalf("failed to connect to database: %v", err)
	}

	err = DB.AutoMigrate(
		&models.Franchise{},
		&models.Branch{},
		&models.User{},
		&models.StockItem{},
		&models.BranchInventory{},
		&models.InventoryTransaction{},
		&models.StockRequest{},
		&models.StockRequestItem{},
		&models.Product{},
		&models.Sale{},
		&models.SaleLine{},
		&models.Expense{},
		&models.AuditLog{},
	)
	if err != nil {
		logger.L.Fatalf("auto-migrate failed: %v", err)
	}

	logger.L.Info("database connected, migrations applied")
}
