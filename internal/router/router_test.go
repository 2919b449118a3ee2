package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"finance-tracker/internal/config"
	"finance-tracker/internal/database"
	"finance-tracker/internal/log"
	"finance-tracker/internal/models"
	"finance-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const testPassword = "Passw0rdOK"

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type harness struct {
	t   *testing.T
	db  *gorm.DB
	r   *gin.Engine
	usd models.Currency
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := &config.Config{
		Server:    config.ServerConfig{Mode: gin.TestMode},
		Database:  config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "api.db")},
		JWT:       config.JWTConfig{Secret: "test-secret-0123456789", Issuer: "finance-tracker", ExpireHours: 1},
		Security:  config.SecurityConfig{BcryptCost: 4, MaxLoginAttempt: 3, LockMinutes: 10},
		Currency:  config.CurrencyConfig{DefaultCode: "USD", DefaultSymbol: "$"},
		App:       config.AppSubConfig{PageSize: 10, MaxPageSize: 50},
		Scheduler: config.SchedulerConfig{Enabled: false},
	}
	db, err := database.Init(cfg.Database)
	if err != nil {
		t.Fatalf("init database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := database.SeedCurrencies(db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	h := &harness{t: t, db: db}
	if err := db.First(&h.usd, "code = ?", "USD").Error; err != nil {
		t.Fatalf("load USD: %v", err)
	}
	logger := log.Discard()
	h.r = SetupRouter(cfg, db, service.New(db, cfg, logger), logger)
	return h
}

func (h *harness) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			h.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			h.t.Fatalf("decode %s %s: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w, env
}

// ok performs the request and decodes data.key into out.
func (h *harness) ok(method, path, token string, body any, key string, out any) {
	h.t.Helper()
	w, env := h.do(method, path, token, body)
	if w.Code != http.StatusOK || env.Code != 0 {
		h.t.Fatalf("%s %s = %d %q, want 200", method, path, w.Code, env.Message)
	}
	if out == nil {
		return
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(env.Data, &data); err != nil {
		h.t.Fatalf("decode data: %v", err)
	}
	if err := json.Unmarshal(data[key], out); err != nil {
		h.t.Fatalf("decode data.%s: %v", key, err)
	}
}

func (h *harness) register(username string) {
	h.t.Helper()
	h.ok(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username, "password": testPassword, "confirm_password": testPassword,
	}, "", nil)
}

func (h *harness) login(username string) string {
	h.t.Helper()
	var token string
	h.ok(http.MethodPost, "/api/auth/login", "", gin.H{"username": username, "password": testPassword}, "token", &token)
	return token
}

func (h *harness) user(username string) string {
	h.register(username)
	return h.login(username)
}

type idResp struct {
	ID string `json:"id"`
}

type balanceResp struct {
	ID      string          `json:"id"`
	Balance decimal.Decimal `json:"balance"`
}

func (h *harness) account(token, name string) string {
	var acc idResp
	h.ok(http.MethodPost, "/api/accounts", token, gin.H{"name": name, "type": "bank", "currency_id": h.usd.ID}, "account", &acc)
	return acc.ID
}

func (h *harness) balance(token, id string) decimal.Decimal {
	var acc balanceResp
	h.ok(http.MethodGet, "/api/accounts/"+id, token, nil, "account", &acc)
	return acc.Balance
}

func TestAuth_RegisterLoginAndLockout(t *testing.T) {
	h := newHarness(t)
	h.register("alice")

	w, env := h.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "ALICE", "password": testPassword, "confirm_password": testPassword,
	})
	if w.Code != http.StatusConflict || env.Code != 40901 {
		t.Errorf("duplicate register = %d/%d, want 409/40901", w.Code, env.Code)
	}

	w, _ = h.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "bob", "password": "weak", "confirm_password": "weak",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("weak password register = %d, want 400", w.Code)
	}

	w, _ = h.do(http.MethodGet, "/api/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("GET /me without token = %d, want 401", w.Code)
	}
	w, _ = h.do(http.MethodGet, "/api/me", "garbage", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("GET /me with bad token = %d, want 401", w.Code)
	}

	token := h.login("alice")
	var me struct {
		Username string `json:"username"`
	}
	h.ok(http.MethodGet, "/api/me", token, nil, "user", &me)
	if me.Username != "alice" {
		t.Errorf("me = %q, want alice", me.Username)
	}

	for i := 0; i < 3; i++ {
		w, _ = h.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "Wrong0ne"})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("wrong password attempt %d = %d, want 401", i+1, w.Code)
		}
	}
	w, env = h.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": testPassword})
	if w.Code != http.StatusUnauthorized || !strings.Contains(env.Message, "locked") {
		t.Errorf("login after lockout = %d %q, want 401 locked", w.Code, env.Message)
	}
}

func TestTransactions_TransferAndDelete(t *testing.T) {
	h := newHarness(t)
	token := h.user("alice")
	a, b := h.account(token, "A"), h.account(token, "B")

	h.ok(http.MethodPost, "/api/transactions", token, gin.H{"type": "income", "amount": "300", "account_id": a}, "", nil)
	var transfer idResp
	h.ok(http.MethodPost, "/api/transactions", token, gin.H{
		"type": "transfer", "amount": 120.50, "account_id": a, "destination_account_id": b, "date": "2024-03-10",
	}, "transaction", &transfer)

	if got := h.balance(token, a); !got.Equal(decimal.RequireFromString("179.5")) {
		t.Errorf("A = %s, want 179.5", got)
	}
	if got := h.balance(token, b); !got.Equal(decimal.RequireFromString("120.5")) {
		t.Errorf("B = %s, want 120.5", got)
	}

	h.ok(http.MethodDelete, "/api/transactions/"+transfer.ID, token, nil, "", nil)
	if got := h.balance(token, a); !got.Equal(decimal.RequireFromString("300")) {
		t.Errorf("A after delete = %s, want 300", got)
	}
	if got := h.balance(token, b); !got.IsZero() {
		t.Errorf("B after delete = %s, want 0", got)
	}

	var check struct {
		Consistent bool `json:"consistent"`
	}
	h.ok(http.MethodGet, "/api/accounts/"+a+"/verify", token, nil, "consistent", &check.Consistent)
	if !check.Consistent {
		t.Error("verify reported an inconsistent balance")
	}

	w, _ := h.do(http.MethodPost, "/api/transactions", token, gin.H{"type": "expense", "amount": "0", "account_id": a})
	if w.Code != http.StatusBadRequest {
		t.Errorf("zero amount = %d, want 400", w.Code)
	}
	w, _ = h.do(http.MethodGet, "/api/transactions/not-a-uuid", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad id = %d, want 400", w.Code)
	}

	var total int
	h.ok(http.MethodGet, "/api/transactions?type=income", token, nil, "total", &total)
	if total != 1 {
		t.Errorf("income total = %d, want 1", total)
	}
}

func TestDebts_PaymentsAndIsolation(t *testing.T) {
	h := newHarness(t)
	alice := h.user("alice")
	bob := h.user("bob")
	acc := h.account(alice, "Main")

	var debt idResp
	h.ok(http.MethodPost, "/api/debts", alice, gin.H{
		"name": "Car", "type": "auto", "amount": "1000", "account_id": acc,
	}, "debt", &debt)

	var paid struct {
		PaidAmount      decimal.Decimal `json:"paid_amount"`
		RemainingAmount decimal.Decimal `json:"remaining_amount"`
		PaymentProgress int             `json:"payment_progress"`
		Status          string          `json:"status"`
	}
	for _, amt := range []string{"300", "200"} {
		h.ok(http.MethodPost, "/api/debts/"+debt.ID+"/payments", alice, gin.H{"amount": amt}, "debt", &paid)
	}
	if !paid.PaidAmount.Equal(decimal.RequireFromString("500")) || !paid.RemainingAmount.Equal(decimal.RequireFromString("500")) ||
		paid.PaymentProgress != 50 || paid.Status != "in_progress" {
		t.Errorf("after payments = %+v", paid)
	}
	if got := h.balance(alice, acc); !got.Equal(decimal.RequireFromString("-500")) {
		t.Errorf("account = %s, want -500", got)
	}

	w, env := h.do(http.MethodPost, "/api/debts/"+debt.ID+"/payments", bob, gin.H{"amount": "10"})
	if w.Code != http.StatusNotFound || env.Message != "debt not found" {
		t.Errorf("foreign payment = %d %q, want 404 debt not found", w.Code, env.Message)
	}

	w, env = h.do(http.MethodDelete, "/api/debts/"+debt.ID, alice, nil)
	if w.Code != http.StatusConflict || env.Code != 40901 {
		t.Errorf("delete debt with payments = %d/%d, want 409/40901", w.Code, env.Code)
	}
}

func TestBudgets_ProgressAndSummary(t *testing.T) {
	h := newHarness(t)
	token := h.user("alice")
	acc := h.account(token, "Main")

	var food idResp
	h.ok(http.MethodPost, "/api/categories", token, gin.H{"name": "Food", "type": "expense"}, "category", &food)
	var budget idResp
	h.ok(http.MethodPost, "/api/budgets", token, gin.H{"name": "Food", "category_id": food.ID, "amount": "500"}, "budget", &budget)

	for _, e := range []struct{ amount, date string }{
		{"150", "2024-03-05"},
		{"100", "2024-03-20"},
		{"999", "2024-04-01"},
	} {
		h.ok(http.MethodPost, "/api/transactions", token, gin.H{
			"type": "expense", "amount": e.amount, "account_id": acc, "category_id": food.ID, "date": e.date,
		}, "", nil)
	}

	var p struct {
		SpentAmount        decimal.Decimal `json:"spent_amount"`
		ProgressPercentage int             `json:"progress_percentage"`
		Status             string          `json:"status"`
		CurrencyCode       string          `json:"currency_code"`
	}
	h.ok(http.MethodGet, "/api/budgets/"+budget.ID+"/progress?year=2024&month=3", token, nil, "progress", &p)
	if !p.SpentAmount.Equal(decimal.RequireFromString("250")) || p.ProgressPercentage != 50 || p.Status != "on-track" || p.CurrencyCode != "USD" {
		t.Errorf("March progress = %+v", p)
	}

	var s struct {
		TotalSpent decimal.Decimal `json:"total_spent"`
		Percentage int             `json:"percentage"`
		Status     string          `json:"status"`
	}
	h.ok(http.MethodGet, "/api/budgets/summary?year=2024&month=4", token, nil, "summary", &s)
	if !s.TotalSpent.Equal(decimal.RequireFromString("999")) || s.Percentage != 100 || s.Status != "over-budget" {
		t.Errorf("April summary = %+v", s)
	}

	w, _ := h.do(http.MethodGet, "/api/budgets/summary?year=2024&month=13", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("month 13 = %d, want 400", w.Code)
	}

	w, env := h.do(http.MethodDelete, "/api/categories/"+food.ID, token, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("delete used category = %d %q, want 409", w.Code, env.Message)
	}
}

func TestMe_Summaries(t *testing.T) {
	h := newHarness(t)
	token := h.user("alice")
	acc := h.account(token, "Main")

	for _, e := range []struct{ typ, amount, date string }{
		{"income", "1000", "2024-03-05"},
		{"expense", "300", "2024-03-10"},
		{"expense", "100", "2024-02-10"},
	} {
		h.ok(http.MethodPost, "/api/transactions", token, gin.H{
			"type": e.typ, "amount": e.amount, "account_id": acc, "date": e.date,
		}, "", nil)
	}

	var s struct {
		TotalBalance    decimal.Decimal  `json:"total_balance"`
		MonthlyIncome   decimal.Decimal  `json:"monthly_income"`
		MonthlyExpense  decimal.Decimal  `json:"monthly_expense"`
		NetSavings      decimal.Decimal  `json:"net_savings"`
		PreviousExpense decimal.Decimal  `json:"previous_expense"`
		ExpenseChange   *decimal.Decimal `json:"expense_change_percentage"`
		IncomeChange    *decimal.Decimal `json:"income_change_percentage"`
	}
	h.ok(http.MethodGet, "/api/me/summary?year=2024&month=3", token, nil, "summary", &s)
	if !s.TotalBalance.Equal(decimal.RequireFromString("600")) || !s.MonthlyIncome.Equal(decimal.RequireFromString("1000")) ||
		!s.MonthlyExpense.Equal(decimal.RequireFromString("300")) || !s.NetSavings.Equal(decimal.RequireFromString("700")) ||
		!s.PreviousExpense.Equal(decimal.RequireFromString("100")) {
		t.Errorf("summary = %+v", s)
	}
	if s.ExpenseChange == nil || !s.ExpenseChange.Equal(decimal.RequireFromString("200")) || s.IncomeChange != nil {
		t.Errorf("changes = expense %v income %v, want 200 and null", s.ExpenseChange, s.IncomeChange)
	}

	var monthly []struct {
		Month         int             `json:"month"`
		TotalExpenses decimal.Decimal `json:"total_expenses"`
	}
	h.ok(http.MethodGet, "/api/me/expense-summary?year=2024&days=3", token, nil, "monthly_summary", &monthly)
	if len(monthly) != 12 || !monthly[1].TotalExpenses.Equal(decimal.RequireFromString("100")) ||
		!monthly[2].TotalExpenses.Equal(decimal.RequireFromString("300")) {
		t.Errorf("monthly summary = %+v", monthly)
	}

	w, _ := h.do(http.MethodGet, "/api/me/expense-summary?days=0", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("days=0 = %d, want 400", w.Code)
	}
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	token := h.user("alice")
	acc := h.account(token, "Main")
	h.ok(http.MethodPost, "/api/transactions", token, gin.H{
		"type": "income", "amount": "42.5", "account_id": acc, "description": "salary, march", "date": "2024-03-01",
	}, "", nil)

	w, _ := h.do(http.MethodGet, "/api/export/csv", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("csv export = %d", w.Code)
	}
	body := strings.TrimPrefix(w.Body.String(), "\ufeff")
	if !strings.HasPrefix(body, "Date,Type,Amount") || !strings.Contains(body, `2024-03-01,income,42.50,USD,Main,,,,,"salary, march",yes`) {
		t.Errorf("csv body = %q", body)
	}

	w, _ = h.do(http.MethodGet, "/api/export/xlsx?year=2024&month=3", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("xlsx export = %d", w.Code)
	}
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()
	if got := f.GetSheetList(); len(got) != 2 || got[0] != "Transactions" || got[1] != "Budgets" {
		t.Errorf("sheets = %v", got)
	}
	v, err := f.GetCellValue("Transactions", "E2")
	if err != nil || v != "Main" {
		t.Errorf("E2 = %q, %v, want Main", v, err)
	}
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	w, _ := h.do(http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("healthz = %d, want 200", w.Code)
	}
}
