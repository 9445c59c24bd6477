package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/AprendendoLinux/financeiro/models"
	"github.com/AprendendoLinux/financeiro/pkg/ledger"
	"github.com/AprendendoLinux/financeiro/pkg/money"
)

const dateLayout = "2006-01-02"

func setupRoutes(r *gin.Engine, svc *ledger.Service) {
	r.POST("/register", registerHandler)
	r.POST("/login", loginHandler)

	authGroup := r.Group("")
	authGroup.Use(jwtAuthMiddleware())
	authGroup.GET("/me", meHandler)

	authGroup.GET("/dashboard", dashboardHandler(svc))
	authGroup.GET("/export/xlsx", exportXLSXHandler(svc))

	authGroup.POST("/transactions", createTransactionHandler(svc))
	authGroup.PUT("/transactions/:id", editTransactionHandler)
	authGroup.DELETE("/transactions/:id", deleteTransactionHandler(svc))
	authGroup.POST("/transactions/:id/anticipate", anticipateHandler(svc))
	authGroup.POST("/transactions/:id/restore", undoAnticipateHandler(svc))

	authGroup.POST("/transfers", transferHandler(svc))

	authGroup.POST("/fixed/expenses/:id/toggle", toggleFixedExpenseHandler(svc))
	authGroup.POST("/fixed/revenues/:id/toggle", toggleFixedRevenueHandler(svc))
	authGroup.PUT("/fixed/expenses/:id", editFixedExpenseHandler)
	authGroup.PUT("/fixed/revenues/:id", editFixedRevenueHandler)
	authGroup.DELETE("/fixed/expenses/:id", deleteFixedExpenseHandler(svc))
	authGroup.DELETE("/fixed/revenues/:id", deleteFixedRevenueHandler(svc))

	authGroup.GET("/cards/:id/installments", cardInstallmentsHandler(svc))
	authGroup.POST("/installments/advance", advanceInstallmentsHandler(svc))
	authGroup.POST("/cards/:id/pay", payInvoiceHandler(svc))

	authGroup.POST("/categories", createCategoryHandler)
	authGroup.PUT("/categories/:id", editCategoryHandler)
	authGroup.DELETE("/categories/:id", deleteCategoryHandler(svc))
	authGroup.POST("/accounts", createAccountHandler)
	authGroup.PUT("/accounts/:id", editAccountHandler)
	authGroup.DELETE("/accounts/:id", deleteAccountHandler(svc))
	authGroup.POST("/cards", createCardHandler(svc))
	authGroup.PUT("/cards/:id", editCardHandler)
	authGroup.DELETE("/cards/:id", deleteCardHandler(svc))
}

func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		token, err := jwt.Parse(authHeader[7:], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		sub, _ := claims["sub"].(float64)
		if sub <= 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		c.Set("user_id", uint(sub))
		c.Next()
	}
}

// currentUserID returns the authenticated user id set by jwtAuthMiddleware.
func currentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func registerHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Name     string `json:"name" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := Register(req.Email, req.Name, req.Password); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user registered successfully"})
}

func loginHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := Authenticate(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   float64(user.ID),
		"email": user.Email,
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	})
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": tokenString})
}

func meHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": user.ID, "email": user.Email, "name": user.Name})
}

// ledgerError maps a ledger failure to an HTTP reply.
func ledgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, ledger.ErrInUse), errors.Is(err, ledger.ErrInvoicePaid):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrInsufficientLimit),
		errors.Is(err, ledger.ErrSameAccount),
		errors.Is(err, ledger.ErrAutomaticTemplate),
		errors.Is(err, ledger.ErrSystemCategory),
		errors.Is(err, ledger.ErrNotAnticipated),
		errors.Is(err, ledger.ErrBeforeStart):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
	}
}

// monthYearQuery reads the month/year selector, falling back to today on
// absent or malformed values.
func monthYearQuery(c *gin.Context) (int, time.Month) {
	now := time.Now()
	year, month := now.Year(), now.Month()
	if y, err := strconv.Atoi(c.Query("year")); err == nil && y > 0 {
		year = y
	}
	if m, err := strconv.Atoi(c.Query("month")); err == nil && m >= 1 && m <= 12 {
		month = time.Month(m)
	}
	return year, month
}

// parseDate reads a YYYY-MM-DD string, falling back to today when malformed.
func parseDate(s string) time.Time {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t
	}
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func dashboardHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		year, month := monthYearQuery(c)
		dash, err := svc.Dashboard(userID, year, month)
		if err != nil {
			ledgerError(c, err)
			return
		}
		c.JSON(http.StatusOK, dash)
	}
}

func createTransactionHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		var req struct {
			Type         string `json:"type" binding:"required"`
			Description  string `json:"description" binding:"required"`
			Amount       string `json:"amount" binding:"required"`
			Date         string `json:"date"`
			CategoryID   *uint  `json:"category_id"`
			AccountID    *uint  `json:"account_id"`
			CardID       *uint  `json:"card_id"`
			Installments int    `json:"installments"`
			Fixed        bool   `json:"fixed"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		amount, err := money.ParseCents(req.Amount)
		if err != nil || amount <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
			return
		}
		in := ledger.EntryInput{
			Type:         req.Type,
			Description:  req.Description,
			Amount:       amount,
			Date:         parseDate(req.Date),
			CategoryID:   req.CategoryID,
			AccountID:    req.AccountID,
			CardID:       req.CardID,
			Installments: req.Installments,
			Fixed:        req.Fixed,
		}
		if err := svc.CreateEntry(userID, in); err != nil {
			ledgerError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "entry recorded"})
	}
}

// editTransactionHandler updates description and amount; an amount change on
// an account-funded entry moves the balance by the difference. Transfer legs
// only allow renaming.
func editTransactionHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Description string `json:"description" binding:"required"`
		Amount      string `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var entry models.Transaction
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&entry).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if entry.Type == models.TypeTransferOut || entry.Type == models.TypeTransferIn {
		if err := db.Model(&entry).Update("description", req.Description).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "entry updated"})
		return
	}

	newAmount := entry.Amount
	if req.Amount != "" {
		parsed, err := money.ParseCents(req.Amount)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
			return
		}
		newAmount = parsed
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if entry.AccountID != nil && newAmount != entry.Amount {
			diff := newAmount - entry.Amount
			if entry.Type != models.TypeIncome {
				diff = -diff
			}
			if err := tx.Model(&models.BankAccount{}).Where("id = ?", *entry.AccountID).
				Update("balance", gorm.Expr("balance + ?", diff)).Error; err != nil {
				return err
			}
		}
		return tx.Model(&entry).Updates(map[string]interface{}{
			"description": req.Description,
			"amount":      newAmount,
		}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "entry updated"})
}

func deleteTransactionHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := svc.DeleteEntry(userID, id); err != nil {
			ledgerError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "entry removed"})
	}
}

func anticipateHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := svc.AnticipateEntry(userID, id); err != nil {
			ledgerError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "entry anticipated to today"})
	}
}

func undoAnticipateHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := svc.UndoAnticipate(userID, id); err != nil {
			ledgerError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "anticipation undone"})
	}
}

func transferHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		var req struct {
			SourceID    uint   `json:"source_id" binding:"required"`
			TargetID    uint   `json:"target_id" binding:"required"`
			Amount      string `json:"amount" binding:"required"`
			Date        string `json:"date"`
			Description string `json:"description"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		amount, err := money.ParseCents(req.Amount)
		if err != nil || amount <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
			return
		}
		if err := svc.TransferFunds(userID, req.SourceID, req.TargetID, amount, parseDate(req.Date), req.Description); err != nil {
			ledgerError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "transfer completed"})
	}
}

func toggleFixedExpenseHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		year, month := monthYearQuery(c)
		if err := svc.ToggleFixedExpense(userID, id, year, month); err != nil {
			ledgerError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "fixed expense toggled"})
	}
}

func toggleFixedRevenueHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		year, month := monthYearQuery(c)
		if err := svc.ToggleFixedRevenue(userID, id, year, month); err != nil {
			ledgerError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "fixed revenue toggled"})
	}
}

// editFixedExpenseHandler updates a recurring expense template, switching
// the funding source between account and card (never both).
func editFixedExpenseHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Description string `json:"description" binding:"required"`
		Amount      string `json:"amount" binding:"required"`
		DayOfMonth  int    `json:"day_of_month" binding:"required"`
		CategoryID  *uint  `json:"category_id"`
		AccountID   *uint  `json:"account_id"`
		CardID      *uint  `json:"card_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := money.ParseCents(req.Amount)
	if err != nil || amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}
	if req.DayOfMonth < 1 || req.DayOfMonth > 31 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "day_of_month must be 1-31"})
		return
	}
	if req.AccountID != nil && req.CardID != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "choose an account or a card, not both"})
		return
	}
	var fixed models.FixedExpense
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&fixed).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	updates := map[string]interface{}{
		"description":  req.Description,
		"amount":       amount,
		"day_of_month": req.DayOfMonth,
		"category_id":  req.CategoryID,
		"account_id":   req.AccountID,
		"card_id":      req.CardID,
	}
	if err := db.Model(&fixed).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "fixed expense updated"})
}

func editFixedRevenueHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Description string `json:"description" binding:"required"`
		Amount      string `json:"amount" binding:"required"`
		DayOfMonth  int    `json:"day_of_month" binding:"required"`
		CategoryID  *uint  `json:"category_id"`
		AccountID   *uint  `json:"account_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := money.ParseCents(req.Amount)
	if err != nil || amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}
	if req.DayOfMonth < 1 || req.DayOfMonth > 31 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "day_of_month must be 1-31"})
		return
	}
	var fixed models.FixedRevenue
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&fixed).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	updates := map[string]interface{}{
		"description":  req.Description,
		"amount":       amount,
		"day_of_month": req.DayOfMonth,
		"category_id":  req.CategoryID,
		"account_id":   req.AccountID,
	}
	if err := db.Model(&fixed).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "fixed revenue updated"})
}

func deleteFixedExpenseHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := svc.DeleteFixedExpense(userID, id); err != nil {
			ledgerError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "fixed expense ended, history kept"})
	}
}

func deleteFixedRevenueHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := svc.DeleteFixedRevenue(userID, id); err != nil {
			ledgerError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "fixed revenue ended, history kept"})
	}
}

func cardInstallmentsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		cardID, ok := pathID(c)
		if !ok {
			return
		}
		items, err := svc.FutureInstallments(userID, cardID)
		if err != nil {
			ledgerError(c, err)
			return
		}

		// group slices by purchase
		type group struct {
			Identifier     string               `json:"identifier"`
			Description    string               `json:"description"`
			Count          int                  `json:"count"`
			TotalRemaining int64                `json:"total_remaining"`
			Items          []models.Transaction `json:"items"`
		}
		order := []string{}
		grouped := map[string]*group{}
		for i := range items {
			key := items[i].InstallmentID
			if key == "" {
				key = items[i].Description
			}
			g, seen := grouped[key]
			if !seen {
				g = &group{Identifier: key, Description: items[i].Description}
				grouped[key] = g
				order = append(order, key)
			}
			g.Count++
			g.TotalRemaining += items[i].Amount
			g.Items = append(g.Items, items[i])
		}
		out := make([]group, 0, len(order))
		for _, key := range order {
			out = append(out, *grouped[key])
		}
		c.JSON(http.StatusOK, out)
	}
}

func advanceInstallmentsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		var req struct {
			TransactionIDs []uint `json:"transaction_ids" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		count, err := svc.AdvanceInstallments(userID, req.TransactionIDs)
		if err != nil {
			ledgerError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"advanced": count})
	}
}

func payInvoiceHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		cardID, ok := pathID(c)
		if !ok {
			return
		}
		var req struct {
			AccountID uint   `json:"account_id" binding:"required"`
			Amount    string `json:"amount" binding:"required"`
			Date      string `json:"date"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		amount, err := money.ParseCents(req.Amount)
		if err != nil || amount <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
			return
		}
		if err := svc.PayInvoice(userID, cardID, req.AccountID, amount, parseDate(req.Date)); err != nil {
			ledgerError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "payment recorded"})
	}
}

func createCategoryHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		Name string `json:"name" binding:"required"`
		Type string `json:"type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Type != models.CategoryIncome && req.Type != models.CategoryExpense {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be income or expense"})
		return
	}
	var existing models.Category
	if err := db.Where("user_id = ? AND name = ? AND type = ?", userID, req.Name, req.Type).
		First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "category already exists"})
		return
	}
	color := "#EF4444"
	if req.Type == models.CategoryIncome {
		color = "#10B981"
	}
	cat := models.Category{UserID: userID, Name: req.Name, Type: req.Type, ColorHex: color}
	if err := db.Create(&cat).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": cat.ID})
}

func editCategoryHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var cat models.Category
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&cat).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err := db.Model(&cat).Update("name", req.Name).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "category updated"})
}

func deleteCategoryHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := svc.DeleteCategory(userID, id); err != nil {
			ledgerError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "category removed"})
	}
}

func createAccountHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		Name           string `json:"name" binding:"required"`
		InitialBalance string `json:"initial_balance"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var initial int64
	if req.InitialBalance != "" {
		parsed, err := money.ParseCents(req.InitialBalance)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid initial_balance"})
			return
		}
		initial = parsed
	}
	account := models.BankAccount{UserID: userID, Name: req.Name, Balance: initial}
	if err := db.Create(&account).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": account.ID})
}

func editAccountHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var account models.BankAccount
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&account).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err := db.Model(&account).Update("name", req.Name).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account updated"})
}

func deleteAccountHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := svc.DeleteAccount(userID, id); err != nil {
			ledgerError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "account removed"})
	}
}

func createCardHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		var req struct {
			Name           string `json:"name" binding:"required"`
			Limit          string `json:"limit" binding:"required"`
			ClosingDay     int    `json:"closing_day" binding:"required"`
			DueDay         int    `json:"due_day" binding:"required"`
			Brand          string `json:"brand"`
			Bank           string `json:"bank"`
			InitialInvoice string `json:"initial_invoice"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		limit, err := money.ParseCents(req.Limit)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		if req.ClosingDay < 1 || req.ClosingDay > 31 || req.DueDay < 1 || req.DueDay > 31 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "closing_day and due_day must be 1-31"})
			return
		}
		card := models.CreditCard{
			UserID: userID, Name: req.Name, Limit: limit,
			ClosingDay: req.ClosingDay, DueDay: req.DueDay,
		}
		if req.Brand != "" {
			card.Brand = req.Brand
		}
		if req.Bank != "" {
			card.Bank = req.Bank
		}
		if err := db.Create(&card).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
			return
		}
		// an already-running invoice balance enters as a purchase dated today
		if req.InitialInvoice != "" {
			if initial, err := money.ParseCents(req.InitialInvoice); err == nil && initial > 0 {
				now := time.Now()
				entry := models.Transaction{
					UserID:      userID,
					Description: "Opening invoice balance",
					Amount:      initial,
					Date:        time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
					Type:        models.TypeExpense,
					CardID:      &card.ID,
				}
				if err := db.Create(&entry).Error; err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
					return
				}
			}
		}
		c.JSON(http.StatusOK, gin.H{"id": card.ID})
	}
}

func editCardHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Name       string `json:"name" binding:"required"`
		Limit      string `json:"limit" binding:"required"`
		ClosingDay int    `json:"closing_day" binding:"required"`
		DueDay     int    `json:"due_day" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit, err := money.ParseCents(req.Limit)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	if req.ClosingDay < 1 || req.ClosingDay > 31 || req.DueDay < 1 || req.DueDay > 31 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "closing_day and due_day must be 1-31"})
		return
	}
	var card models.CreditCard
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&card).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	updates := map[string]interface{}{
		"name": req.Name, "limit_amount": limit,
		"closing_day": req.ClosingDay, "due_day": req.DueDay,
	}
	if err := db.Model(&card).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "card updated"})
}

func deleteCardHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := svc.DeleteCard(userID, id); err != nil {
			ledgerError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "card removed"})
	}
}
