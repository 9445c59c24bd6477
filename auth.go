package main

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/AprendendoLinux/financeiro/models"
)

// Register creates a user and seeds the starter data every account needs: a
// cash wallet and the default category set, including the reserved transfer
// and payment categories.
func Register(email, name, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("email required")
	}
	if name = strings.TrimSpace(name); name == "" {
		return fmt.Errorf("name required")
	}
	if len(password) < 6 { // basic password policy
		return fmt.Errorf("password too short (min 6)")
	}
	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		return fmt.Errorf("user already exists")
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		start := time.Now()
		startDate := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
		user := models.User{Email: email, Name: name, HashedPassword: hashedPassword, StartDate: &startDate}
		if err := tx.Create(&user).Error; err != nil {
			if isUniqueConstraintError(err) { // race after the initial check
				return fmt.Errorf("user already exists")
			}
			return err
		}
		return seedUserDefaults(tx, user.ID)
	})
}

func Authenticate(email, password string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)); err != nil {
		return models.User{}, fmt.Errorf("invalid credentials")
	}
	return user, nil
}

// seedUserDefaults creates the default account and category set for a fresh
// user.
func seedUserDefaults(tx *gorm.DB, userID uint) error {
	wallet := models.BankAccount{UserID: userID, Name: "Cash wallet"}
	if err := tx.Create(&wallet).Error; err != nil {
		return err
	}
	defaults := []models.Category{
		{Name: "Salary", Type: models.CategoryIncome, ColorHex: "#10B981"},
		{Name: "Investments", Type: models.CategoryIncome, ColorHex: "#10B981"},
		{Name: "Extras", Type: models.CategoryIncome, ColorHex: "#10B981"},
		{Name: "Housing", Type: models.CategoryExpense, ColorHex: "#EF4444"},
		{Name: "Food", Type: models.CategoryExpense, ColorHex: "#EF4444"},
		{Name: "Transport", Type: models.CategoryExpense, ColorHex: "#EF4444"},
		{Name: "Health", Type: models.CategoryExpense, ColorHex: "#EF4444"},
		{Name: "Education", Type: models.CategoryExpense, ColorHex: "#EF4444"},
		{Name: "Leisure", Type: models.CategoryExpense, ColorHex: "#EF4444"},
		{Name: "Shopping", Type: models.CategoryExpense, ColorHex: "#EF4444"},
		{Name: "Transfer", Type: models.CategoryTransfer, ColorHex: "#3B82F6"},
		{Name: "Payment", Type: models.CategoryPayment, ColorHex: "#EF4444"},
	}
	for i := range defaults {
		defaults[i].UserID = userID
		if err := tx.Create(&defaults[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "UNIQUE constraint")
}
