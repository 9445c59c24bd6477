package main

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/AprendendoLinux/financeiro/models"
)

var db *gorm.DB

func initDB(cfg *Config) {
	if cfg.DBDSN == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	var err error
	db, err = gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	if cfg.AutoMigrate {
		migrateDB(db)
	}
}

// migrateDB runs AutoMigrate model by model so a failure on one doesn't
// block the others.
func migrateDB(db *gorm.DB) {
	for name, model := range map[string]interface{}{
		"users":          &models.User{},
		"bank_accounts":  &models.BankAccount{},
		"credit_cards":   &models.CreditCard{},
		"categories":     &models.Category{},
		"fixed_expenses": &models.FixedExpense{},
		"fixed_revenues": &models.FixedRevenue{},
		"transactions":   &models.Transaction{},
	} {
		if err := db.AutoMigrate(model); err != nil {
			log.Printf("migration warning (%s): %v", name, err)
		}
	}
}
