package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/kestrelbank/kestrel/internal/cqrs"
	"github.com/kestrelbank/kestrel/internal/models"
)

// ---- mock implementations ----

type mockAccountService struct {
	openFn         func(cqrs.OpenAccountCommand) (*models.Account, error)
	getFn          func(cqrs.GetAccountQuery) (*models.Account, error)
	listFn         func(cqrs.ListAccountsQuery) ([]models.Account, error)
	updateStatusFn func(cqrs.UpdateAccountStatusCommand) (*models.Account, error)
}

func (m *mockAccountService) Open(_ context.Context, cmd cqrs.OpenAccountCommand) (*models.Account, error) {
	if m.openFn != nil {
		return m.openFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockAccountService) Get(_ context.Context, q cqrs.GetAccountQuery) (*models.Account, error) {
	if m.getFn != nil {
		return m.getFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockAccountService) List(_ context.Context, q cqrs.ListAccountsQuery) ([]models.Account, error) {
	if m.listFn != nil {
		return m.listFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockAccountService) UpdateStatus(_ context.Context, cmd cqrs.UpdateAccountStatusCommand) (*models.Account, error) {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

type mockBalanceQuerier struct {
	balanceFn func(cqrs.GetBalanceQuery) (*models.AccountView, error)
	listFn    func(cqrs.ListTransactionsQuery) ([]models.Transaction, error)
}

func (m *mockBalanceQuerier) CurrentBalance(_ context.Context, q cqrs.GetBalanceQuery) (*models.AccountView, error) {
	if m.balanceFn != nil {
		return m.balanceFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockBalanceQuerier) ListForAccount(_ context.Context, q cqrs.ListTransactionsQuery) ([]models.Transaction, error) {
	if m.listFn != nil {
		return m.listFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

// ---- helpers ----

func newAccountTestRouter(accounts AccountService, queries BalanceQuerier, authUserID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(fakeAuth(authUserID))
	h := NewAccountHandler(accounts, queries)
	v1 := r.Group("/v1/accounts")
	v1.POST("", h.OpenAccount)
	v1.GET("", h.ListAccounts)
	v1.GET("/:accountNumber", h.GetAccount)
	v1.GET("/:accountNumber/balance", h.GetBalance)
	v1.PUT("/:accountNumber/status", h.UpdateAccountStatus)
	return r
}

// ---- test data ----

var testAccount = &models.Account{
	ID: "acc-001", AccountNumber: "1234567890", OwnerID: "usr-001",
	Type: models.AccountTypeChecking, Status: models.AccountStatusActive,
	Balance: decimal.RequireFromString("100.00"), CreatedAt: time.Now(),
}

// ---- tests ----

func TestOpenAccount(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		openFn         func(cqrs.OpenAccountCommand) (*models.Account, error)
		expectedStatus int
	}{
		{
			name:           "success - open checking account",
			body:           map[string]interface{}{"type": "checking"},
			openFn:         func(cmd cqrs.OpenAccountCommand) (*models.Account, error) { return testAccount, nil },
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "bad request - missing type",
			body:           map[string]interface{}{},
			openFn:         nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - unknown type",
			body:           map[string]interface{}{"type": "offshore"},
			openFn:         nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "internal error - storage failure",
			body:           map[string]interface{}{"type": "savings"},
			openFn:         func(cmd cqrs.OpenAccountCommand) (*models.Account, error) { return nil, models.ErrStorage },
			expectedStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := &mockAccountService{openFn: tt.openFn}
			router := newAccountTestRouter(accounts, &mockBalanceQuerier{}, "usr-001")
			w := doRequest(router, http.MethodPost, "/v1/accounts", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestListAccounts(t *testing.T) {
	accounts := &mockAccountService{
		listFn: func(q cqrs.ListAccountsQuery) ([]models.Account, error) {
			if q.OwnerID != "usr-001" {
				t.Errorf("expected owner from auth context, got %q", q.OwnerID)
			}
			return []models.Account{*testAccount}, nil
		},
	}
	router := newAccountTestRouter(accounts, &mockBalanceQuerier{}, "usr-001")
	w := doRequest(router, http.MethodGet, "/v1/accounts", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d; body: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"1234567890"`) {
		t.Errorf("expected account number in response, got %s", w.Body.String())
	}
}

func TestGetAccount(t *testing.T) {
	tests := []struct {
		name           string
		getFn          func(cqrs.GetAccountQuery) (*models.Account, error)
		listFn         func(cqrs.ListTransactionsQuery) ([]models.Transaction, error)
		expectedStatus int
	}{
		{
			name:  "success - own account with recent activity",
			getFn: func(q cqrs.GetAccountQuery) (*models.Account, error) { return testAccount, nil },
			listFn: func(q cqrs.ListTransactionsQuery) ([]models.Transaction, error) {
				return []models.Transaction{*testTransaction}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "not found - account owned by someone else",
			getFn:          func(q cqrs.GetAccountQuery) (*models.Account, error) { return nil, models.ErrAccountNotFound },
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "not found - account does not exist",
			getFn:          func(q cqrs.GetAccountQuery) (*models.Account, error) { return nil, models.ErrAccountNotFound },
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := &mockAccountService{getFn: tt.getFn}
			queries := &mockBalanceQuerier{listFn: tt.listFn}
			router := newAccountTestRouter(accounts, queries, "usr-001")
			w := doRequest(router, http.MethodGet, "/v1/accounts/1234567890", nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetBalance(t *testing.T) {
	tests := []struct {
		name           string
		balanceFn      func(cqrs.GetBalanceQuery) (*models.AccountView, error)
		expectedStatus int
	}{
		{
			name: "success - committed balance",
			balanceFn: func(q cqrs.GetBalanceQuery) (*models.AccountView, error) {
				return models.NewAccountView(testAccount), nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "not found - account owned by someone else",
			balanceFn: func(q cqrs.GetBalanceQuery) (*models.AccountView, error) {
				return nil, models.ErrAccountNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queries := &mockBalanceQuerier{balanceFn: tt.balanceFn}
			router := newAccountTestRouter(&mockAccountService{}, queries, "usr-001")
			w := doRequest(router, http.MethodGet, "/v1/accounts/1234567890/balance", nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestUpdateAccountStatus(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		updateStatusFn func(cqrs.UpdateAccountStatusCommand) (*models.Account, error)
		expectedStatus int
	}{
		{
			name: "success - freeze account",
			body: map[string]interface{}{"status": "frozen"},
			updateStatusFn: func(cmd cqrs.UpdateAccountStatusCommand) (*models.Account, error) {
				frozen := *testAccount
				frozen.Status = cmd.Status
				return &frozen, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "bad request - unknown status",
			body:           map[string]interface{}{"status": "closed"},
			updateStatusFn: nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "not found - account owned by someone else",
			body: map[string]interface{}{"status": "inactive"},
			updateStatusFn: func(cmd cqrs.UpdateAccountStatusCommand) (*models.Account, error) {
				return nil, models.ErrAccountNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := &mockAccountService{updateStatusFn: tt.updateStatusFn}
			router := newAccountTestRouter(accounts, &mockBalanceQuerier{}, "usr-001")
			w := doRequest(router, http.MethodPut, "/v1/accounts/1234567890/status", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}
