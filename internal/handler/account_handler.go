package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kestrelbank/kestrel/internal/cqrs"
	"github.com/kestrelbank/kestrel/internal/ledger"
	"github.com/kestrelbank/kestrel/internal/middleware"
	"github.com/kestrelbank/kestrel/internal/models"
)

// AccountService defines the account CRUD operations used by AccountHandler.
type AccountService interface {
	Open(ctx context.Context, cmd cqrs.OpenAccountCommand) (*models.Account, error)
	Get(ctx context.Context, q cqrs.GetAccountQuery) (*models.Account, error)
	List(ctx context.Context, q cqrs.ListAccountsQuery) ([]models.Account, error)
	UpdateStatus(ctx context.Context, cmd cqrs.UpdateAccountStatusCommand) (*models.Account, error)
}

// BalanceQuerier defines the committed-state read operations used for the
// balance and account-detail endpoints.
type BalanceQuerier interface {
	CurrentBalance(ctx context.Context, q cqrs.GetBalanceQuery) (*models.AccountView, error)
	ListForAccount(ctx context.Context, q cqrs.ListTransactionsQuery) ([]models.Transaction, error)
}

type AccountHandler struct {
	accounts AccountService
	queries  BalanceQuerier
}

type OpenAccountRequest struct {
	Type string `json:"type" validate:"required,oneof=savings checking business"`
}

type UpdateAccountStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive frozen"`
}

type ListAccountsResponse struct {
	Accounts []models.Account `json:"accounts"`
}

type AccountDetailsResponse struct {
	Account            *models.Account      `json:"account"`
	RecentTransactions []models.Transaction `json:"recentTransactions"`
}

func NewAccountHandler(accounts AccountService, queries BalanceQuerier) *AccountHandler {
	return &AccountHandler{accounts: accounts, queries: queries}
}

func (h *AccountHandler) OpenAccount(c *gin.Context) {
	ownerID, _ := middleware.GetUserID(c)

	var req OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	// The oneof tag guarantees the parse succeeds; the typed value is what
	// crosses into the domain.
	accountType, err := models.ParseAccountType(req.Type)
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.accounts.Open(c.Request.Context(), cqrs.OpenAccountCommand{
		OwnerID: ownerID,
		Type:    accountType,
	})
	if err != nil {
		respondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, account)
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	ownerID, _ := middleware.GetUserID(c)

	accounts, err := h.accounts.List(c.Request.Context(), cqrs.ListAccountsQuery{OwnerID: ownerID})
	if err != nil {
		respondWithDomainError(c, err)
		return
	}
	if accounts == nil {
		accounts = []models.Account{}
	}

	c.JSON(http.StatusOK, ListAccountsResponse{Accounts: accounts})
}

// GetAccount returns the account plus its most recent activity.
func (h *AccountHandler) GetAccount(c *gin.Context) {
	accountNumber := c.Param("accountNumber")
	ownerID, _ := middleware.GetUserID(c)

	account, err := h.accounts.Get(c.Request.Context(), cqrs.GetAccountQuery{
		AccountNumber: accountNumber,
		OwnerID:       ownerID,
	})
	if err != nil {
		respondWithDomainError(c, err)
		return
	}

	recent, err := h.queries.ListForAccount(c.Request.Context(), cqrs.ListTransactionsQuery{
		AccountNumber: accountNumber,
		OwnerID:       ownerID,
		Limit:         ledger.DefaultActivityLimit,
	})
	if err != nil {
		respondWithDomainError(c, err)
		return
	}
	if recent == nil {
		recent = []models.Transaction{}
	}

	c.JSON(http.StatusOK, AccountDetailsResponse{Account: account, RecentTransactions: recent})
}

func (h *AccountHandler) UpdateAccountStatus(c *gin.Context) {
	accountNumber := c.Param("accountNumber")
	ownerID, _ := middleware.GetUserID(c)

	var req UpdateAccountStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	status, err := models.ParseAccountStatus(req.Status)
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.accounts.UpdateStatus(c.Request.Context(), cqrs.UpdateAccountStatusCommand{
		OwnerID:       ownerID,
		AccountNumber: accountNumber,
		Status:        status,
	})
	if err != nil {
		respondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) GetBalance(c *gin.Context) {
	accountNumber := c.Param("accountNumber")
	ownerID, _ := middleware.GetUserID(c)

	view, err := h.queries.CurrentBalance(c.Request.Context(), cqrs.GetBalanceQuery{
		AccountNumber: accountNumber,
		OwnerID:       ownerID,
	})
	if err != nil {
		respondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accountNumber": view.AccountNumber,
		"balance":       view.Balance,
		"type":          view.Type,
		"status":        view.Status,
	})
}
