package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/kestrelbank/kestrel/internal/cqrs"
	"github.com/kestrelbank/kestrel/internal/models"
)

// ---- mock implementations ----

type mockExecutor struct {
	executeFn func(cqrs.ExecuteTransactionCommand) (*models.Transaction, error)
	lastCmd   *cqrs.ExecuteTransactionCommand
}

func (m *mockExecutor) Execute(_ context.Context, cmd cqrs.ExecuteTransactionCommand) (*models.Transaction, error) {
	m.lastCmd = &cmd
	if m.executeFn != nil {
		return m.executeFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

type mockActivityQuerier struct {
	recentFn  func(cqrs.RecentActivityQuery) ([]models.Transaction, error)
	listFn    func(cqrs.ListTransactionsQuery) ([]models.Transaction, error)
	lastQuery *cqrs.RecentActivityQuery
}

func (m *mockActivityQuerier) RecentActivity(_ context.Context, q cqrs.RecentActivityQuery) ([]models.Transaction, error) {
	m.lastQuery = &q
	if m.recentFn != nil {
		return m.recentFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockActivityQuerier) ListForAccount(_ context.Context, q cqrs.ListTransactionsQuery) ([]models.Transaction, error) {
	if m.listFn != nil {
		return m.listFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

// ---- helpers ----

func fakeAuth(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	}
}

func newTxTestRouter(engine TransactionExecutor, queries ActivityQuerier, authUserID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(fakeAuth(authUserID))
	h := NewTransactionHandler(engine, queries)
	v1 := r.Group("/v1")
	v1.POST("/transactions", h.CreateTransaction)
	v1.GET("/transactions", h.ListTransactions)
	v1.GET("/transactions/latest", h.LatestTransactions)
	v1.GET("/accounts/:accountNumber/transactions", h.ListAccountTransactions)
	v1.POST("/accounts/:accountNumber/deposit", h.Deposit)
	return r
}

func doRequest(router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, url, strings.NewReader(string(b)))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ---- test data ----

var testTransaction = &models.Transaction{
	ID: "tan-001", Kind: models.TransactionDeposit, Status: models.TransactionStatusCompleted,
	Amount: decimal.RequireFromString("50.00"), SourceAccountID: "acc-001",
	CreatedAt: time.Now(),
}

func depositBody() map[string]interface{} {
	return map[string]interface{}{"type": "deposit", "accountNumber": "1234567890", "amount": "50.00"}
}

func transferBody() map[string]interface{} {
	return map[string]interface{}{
		"type": "transfer", "accountNumber": "1234567890",
		"destinationAccountNumber": "0987654321", "amount": "25.00",
	}
}

// ---- tests ----

func TestCreateTransaction(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		executeFn      func(cqrs.ExecuteTransactionCommand) (*models.Transaction, error)
		expectedStatus int
	}{
		{
			name:           "success - deposit into own account",
			body:           depositBody(),
			executeFn:      func(cmd cqrs.ExecuteTransactionCommand) (*models.Transaction, error) { return testTransaction, nil },
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "success - transfer between accounts",
			body:           transferBody(),
			executeFn:      func(cmd cqrs.ExecuteTransactionCommand) (*models.Transaction, error) { return testTransaction, nil },
			expectedStatus: http.StatusCreated,
		},
		{
			name: "unprocessable entity - insufficient funds",
			body: map[string]interface{}{"type": "withdrawal", "accountNumber": "1234567890", "amount": "500.00"},
			executeFn: func(cmd cqrs.ExecuteTransactionCommand) (*models.Transaction, error) {
				return nil, models.ErrInsufficientFunds
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "not found - account belongs to another user",
			body: depositBody(),
			executeFn: func(cmd cqrs.ExecuteTransactionCommand) (*models.Transaction, error) {
				return nil, models.ErrAccountNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "bad request - frozen account",
			body: depositBody(),
			executeFn: func(cmd cqrs.ExecuteTransactionCommand) (*models.Transaction, error) {
				return nil, models.ErrAccountInactive
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "bad request - invalid amount",
			body: map[string]interface{}{"type": "deposit", "accountNumber": "1234567890", "amount": "-5.00"},
			executeFn: func(cmd cqrs.ExecuteTransactionCommand) (*models.Transaction, error) {
				return nil, models.ErrInvalidAmount
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - missing required fields",
			body:           map[string]interface{}{},
			executeFn:      nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - unknown transaction type",
			body:           map[string]interface{}{"type": "wire", "accountNumber": "1234567890", "amount": "50.00"},
			executeFn:      nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - transfer without destination",
			body:           map[string]interface{}{"type": "transfer", "accountNumber": "1234567890", "amount": "50.00"},
			executeFn:      nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - malformed account number",
			body:           map[string]interface{}{"type": "deposit", "accountNumber": "12345", "amount": "50.00"},
			executeFn:      nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "internal error - storage failure",
			body: depositBody(),
			executeFn: func(cmd cqrs.ExecuteTransactionCommand) (*models.Transaction, error) {
				return nil, models.ErrStorage
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &mockExecutor{executeFn: tt.executeFn}
			router := newTxTestRouter(engine, &mockActivityQuerier{}, "usr-001")
			w := doRequest(router, http.MethodPost, "/v1/transactions", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestCreateTransactionCommand(t *testing.T) {
	engine := &mockExecutor{
		executeFn: func(cmd cqrs.ExecuteTransactionCommand) (*models.Transaction, error) { return testTransaction, nil },
	}
	router := newTxTestRouter(engine, &mockActivityQuerier{}, "usr-001")

	w := doRequest(router, http.MethodPost, "/v1/transactions", transferBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d; body: %s", w.Code, w.Body.String())
	}
	cmd := engine.lastCmd
	if cmd == nil {
		t.Fatal("engine was not called")
	}
	if cmd.OwnerID != "usr-001" {
		t.Errorf("expected owner from auth context, got %q", cmd.OwnerID)
	}
	if cmd.Kind != models.TransactionTransfer {
		t.Errorf("expected transfer kind, got %q", cmd.Kind)
	}
	if !cmd.Amount.Equal(decimal.RequireFromString("25.00")) {
		t.Errorf("expected amount 25.00, got %s", cmd.Amount)
	}
}

func TestDeposit(t *testing.T) {
	engine := &mockExecutor{
		executeFn: func(cmd cqrs.ExecuteTransactionCommand) (*models.Transaction, error) { return testTransaction, nil },
	}
	router := newTxTestRouter(engine, &mockActivityQuerier{}, "usr-001")

	w := doRequest(router, http.MethodPost, "/v1/accounts/1234567890/deposit", map[string]interface{}{"amount": "50.00"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d; body: %s", w.Code, w.Body.String())
	}
	cmd := engine.lastCmd
	if cmd == nil {
		t.Fatal("engine was not called")
	}
	if cmd.Kind != models.TransactionDeposit {
		t.Errorf("expected deposit kind, got %q", cmd.Kind)
	}
	if cmd.SourceAccountNumber != "1234567890" {
		t.Errorf("expected account number from path, got %q", cmd.SourceAccountNumber)
	}
	if cmd.Description != "Deposit" {
		t.Errorf("expected default description, got %q", cmd.Description)
	}
}

func TestListTransactions(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		recentFn       func(cqrs.RecentActivityQuery) ([]models.Transaction, error)
		expectedStatus int
		expectedLimit  int
	}{
		{
			name: "full history",
			url:  "/v1/transactions",
			recentFn: func(q cqrs.RecentActivityQuery) ([]models.Transaction, error) {
				return []models.Transaction{*testTransaction}, nil
			},
			expectedStatus: http.StatusOK,
			expectedLimit:  -1,
		},
		{
			name: "latest defaults the limit",
			url:  "/v1/transactions/latest",
			recentFn: func(q cqrs.RecentActivityQuery) ([]models.Transaction, error) {
				return []models.Transaction{*testTransaction}, nil
			},
			expectedStatus: http.StatusOK,
			expectedLimit:  0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queries := &mockActivityQuerier{recentFn: tt.recentFn}
			router := newTxTestRouter(&mockExecutor{}, queries, "usr-001")
			w := doRequest(router, http.MethodGet, tt.url, nil)
			if w.Code != tt.expectedStatus {
				t.Fatalf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
			if queries.lastQuery == nil {
				t.Fatal("query service was not called")
			}
			if queries.lastQuery.Limit != tt.expectedLimit {
				t.Errorf("expected limit %d, got %d", tt.expectedLimit, queries.lastQuery.Limit)
			}
			if queries.lastQuery.OwnerID != "usr-001" {
				t.Errorf("expected owner from auth context, got %q", queries.lastQuery.OwnerID)
			}
		})
	}
}

func TestListAccountTransactions(t *testing.T) {
	tests := []struct {
		name           string
		listFn         func(cqrs.ListTransactionsQuery) ([]models.Transaction, error)
		expectedStatus int
	}{
		{
			name: "success - own account",
			listFn: func(q cqrs.ListTransactionsQuery) ([]models.Transaction, error) {
				return []models.Transaction{*testTransaction}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "empty history serializes as an empty list",
			listFn: func(q cqrs.ListTransactionsQuery) ([]models.Transaction, error) {
				return nil, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "not found - account owned by someone else",
			listFn: func(q cqrs.ListTransactionsQuery) ([]models.Transaction, error) {
				return nil, models.ErrAccountNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queries := &mockActivityQuerier{listFn: tt.listFn}
			router := newTxTestRouter(&mockExecutor{}, queries, "usr-001")
			w := doRequest(router, http.MethodGet, "/v1/accounts/1234567890/transactions", nil)
			if w.Code != tt.expectedStatus {
				t.Fatalf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedStatus == http.StatusOK && !strings.Contains(w.Body.String(), `"transactions":[`) {
				t.Errorf("expected a transactions array, got %s", w.Body.String())
			}
		})
	}
}
