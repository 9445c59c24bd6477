package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AprendendoLinux/financeiro/pkg/ledger"
)

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewBuffer(b)
}

func setupTestServer(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	jwtSecret = []byte("test-secret")

	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db = testDB
	migrateDB(db)

	r := gin.New()
	setupRoutes(r, ledger.New(db))
	return r
}

func TestFullFlow(t *testing.T) {
	r := setupTestServer(t)
	today := time.Now().Format("2006-01-02")

	// 1. Register user
	resp := performRequest(r, http.MethodPost, "/register",
		jsonBody(t, map[string]string{"email": "u1@example.com", "name": "User One", "password": "pass12"}), "")
	if resp.Code != 200 {
		t.Fatalf("register failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// duplicate registration is rejected
	resp = performRequest(r, http.MethodPost, "/register",
		jsonBody(t, map[string]string{"email": "u1@example.com", "name": "Again", "password": "pass12"}), "")
	if resp.Code != 409 {
		t.Fatalf("duplicate register: want 409, got %d", resp.Code)
	}

	// 2. Login
	resp = performRequest(r, http.MethodPost, "/login",
		jsonBody(t, map[string]string{"email": "u1@example.com", "password": "pass12"}), "")
	if resp.Code != 200 {
		t.Fatalf("login failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var loginResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &loginResp)
	token, _ := loginResp["token"].(string)
	if token == "" {
		t.Fatalf("empty token in login response: %+v", loginResp)
	}

	// 3. Unauthorized access is blocked
	resp = performRequest(r, http.MethodGet, "/dashboard", nil, "")
	if resp.Code != 401 {
		t.Fatalf("dashboard without token: want 401, got %d", resp.Code)
	}

	// 4. Create an account with an opening balance
	resp = performRequest(r, http.MethodPost, "/accounts",
		jsonBody(t, map[string]string{"name": "Checking", "initial_balance": "1000.00"}), token)
	if resp.Code != 200 {
		t.Fatalf("create account failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var accountResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &accountResp)
	accountID := uint(accountResp["id"].(float64))

	// 5. Create a card
	resp = performRequest(r, http.MethodPost, "/cards",
		jsonBody(t, map[string]any{"name": "Violet", "limit": "500.00", "closing_day": 28, "due_day": 10}), token)
	if resp.Code != 200 {
		t.Fatalf("create card failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var cardResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &cardResp)
	cardID := uint(cardResp["id"].(float64))

	// 6. Create a category
	resp = performRequest(r, http.MethodPost, "/categories",
		jsonBody(t, map[string]string{"name": "Restaurants", "type": "expense"}), token)
	if resp.Code != 200 {
		t.Fatalf("create category failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var catResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &catResp)
	categoryID := uint(catResp["id"].(float64))

	// 7. An account expense debits the balance
	resp = performRequest(r, http.MethodPost, "/transactions",
		jsonBody(t, map[string]any{
			"type": "expense", "description": "Groceries", "amount": "150.00",
			"date": today, "category_id": categoryID, "account_id": accountID,
		}), token)
	if resp.Code != 200 {
		t.Fatalf("create expense failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 8. Overspending is rejected with a clear error
	resp = performRequest(r, http.MethodPost, "/transactions",
		jsonBody(t, map[string]any{
			"type": "expense", "description": "Too big", "amount": "5000.00",
			"date": today, "account_id": accountID,
		}), token)
	if resp.Code != 400 {
		t.Fatalf("overspend: want 400, got %d body=%s", resp.Code, resp.Body.String())
	}

	// 9. A card purchase over the limit is rejected
	resp = performRequest(r, http.MethodPost, "/transactions",
		jsonBody(t, map[string]any{
			"type": "expense", "description": "Trip", "amount": "750.00",
			"date": today, "card_id": cardID,
		}), token)
	if resp.Code != 400 {
		t.Fatalf("over limit: want 400, got %d body=%s", resp.Code, resp.Body.String())
	}

	// 10. A split purchase lands within the limit
	resp = performRequest(r, http.MethodPost, "/transactions",
		jsonBody(t, map[string]any{
			"type": "expense", "description": "Fridge", "amount": "300.00",
			"date": today, "card_id": cardID, "installments": 3,
		}), token)
	if resp.Code != 200 {
		t.Fatalf("installment purchase failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 11. Dashboard reflects the month
	resp = performRequest(r, http.MethodGet, "/dashboard", nil, token)
	if resp.Code != 200 {
		t.Fatalf("dashboard failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var dash struct {
		ExpenseRealized int64 `json:"expense_realized"`
		CashOnHand      int64 `json:"cash_on_hand"`
		Cards           []any `json:"cards"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if dash.CashOnHand != 85000 { // 1000.00 opening minus 150.00 spent
		t.Fatalf("cash on hand: want 85000, got %d", dash.CashOnHand)
	}
	if len(dash.Cards) != 1 {
		t.Fatalf("dashboard cards: want 1, got %d", len(dash.Cards))
	}

	// 12. Deleting the in-use category is refused
	resp = performRequest(r, http.MethodDelete, fmt.Sprintf("/categories/%d", categoryID), nil, token)
	if resp.Code != 409 {
		t.Fatalf("delete in-use category: want 409, got %d", resp.Code)
	}

	// 13. Export the month as a spreadsheet
	resp = performRequest(r, http.MethodGet, "/export/xlsx", nil, token)
	if resp.Code != 200 {
		t.Fatalf("export failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("export content type: %s", ct)
	}
	if resp.Body.Len() == 0 {
		t.Fatalf("export body is empty")
	}
}

func TestTransferFlow(t *testing.T) {
	r := setupTestServer(t)

	resp := performRequest(r, http.MethodPost, "/register",
		jsonBody(t, map[string]string{"email": "u2@example.com", "name": "User Two", "password": "pass12"}), "")
	if resp.Code != 200 {
		t.Fatalf("register failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodPost, "/login",
		jsonBody(t, map[string]string{"email": "u2@example.com", "password": "pass12"}), "")
	var loginResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &loginResp)
	token, _ := loginResp["token"].(string)

	resp = performRequest(r, http.MethodPost, "/accounts",
		jsonBody(t, map[string]string{"name": "Checking", "initial_balance": "500.00"}), token)
	var srcResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &srcResp)
	sourceID := uint(srcResp["id"].(float64))

	resp = performRequest(r, http.MethodPost, "/accounts",
		jsonBody(t, map[string]string{"name": "Savings"}), token)
	var dstResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &dstResp)
	targetID := uint(dstResp["id"].(float64))

	// moving money to the same account is rejected
	resp = performRequest(r, http.MethodPost, "/transfers",
		jsonBody(t, map[string]any{"source_id": sourceID, "target_id": sourceID, "amount": "100.00"}), token)
	if resp.Code != 400 {
		t.Fatalf("same-account transfer: want 400, got %d", resp.Code)
	}

	resp = performRequest(r, http.MethodPost, "/transfers",
		jsonBody(t, map[string]any{"source_id": sourceID, "target_id": targetID, "amount": "200.00"}), token)
	if resp.Code != 200 {
		t.Fatalf("transfer failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	resp = performRequest(r, http.MethodGet, "/dashboard", nil, token)
	var dash struct {
		CashOnHand int64 `json:"cash_on_hand"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &dash)
	if dash.CashOnHand != 50000 { // transfers do not change total cash
		t.Fatalf("cash on hand: want 50000, got %d", dash.CashOnHand)
	}
}
