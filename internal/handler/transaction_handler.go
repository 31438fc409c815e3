package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/kestrelbank/kestrel/internal/cqrs"
	"github.com/kestrelbank/kestrel/internal/middleware"
	"github.com/kestrelbank/kestrel/internal/models"
)

// TransactionExecutor defines the write-side operation used by
// TransactionHandler.
type TransactionExecutor interface {
	Execute(ctx context.Context, cmd cqrs.ExecuteTransactionCommand) (*models.Transaction, error)
}

// ActivityQuerier defines the read-side operations used by
// TransactionHandler.
type ActivityQuerier interface {
	RecentActivity(ctx context.Context, q cqrs.RecentActivityQuery) ([]models.Transaction, error)
	ListForAccount(ctx context.Context, q cqrs.ListTransactionsQuery) ([]models.Transaction, error)
}

type TransactionHandler struct {
	engine  TransactionExecutor
	queries ActivityQuerier
}

// CreateTransactionRequest accepts amounts as JSON numbers or strings;
// decimal parsing works from the raw text, so values never round-trip
// through a float. Amount validity (positive, two decimal places) is part
// of the engine's precondition order, not bind-time validation.
type CreateTransactionRequest struct {
	Type                     string          `json:"type" validate:"required,oneof=deposit withdrawal transfer"`
	AccountNumber            string          `json:"accountNumber" validate:"required,len=10,numeric"`
	DestinationAccountNumber string          `json:"destinationAccountNumber" validate:"required_if=Type transfer,omitempty,len=10,numeric"`
	Amount                   decimal.Decimal `json:"amount"`
	Description              string          `json:"description"`
}

type DepositRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type TransactionResponse struct {
	Message     string              `json:"message"`
	Transaction *models.Transaction `json:"transaction"`
}

type ListTransactionsResponse struct {
	Transactions []models.Transaction `json:"transactions"`
}

func NewTransactionHandler(engine TransactionExecutor, queries ActivityQuerier) *TransactionHandler {
	return &TransactionHandler{engine: engine, queries: queries}
}

func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	ownerID, _ := middleware.GetUserID(c)

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	kind, err := models.ParseTransactionKind(req.Type)
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	transaction, err := h.engine.Execute(c.Request.Context(), cqrs.ExecuteTransactionCommand{
		Kind:                     kind,
		SourceAccountNumber:      req.AccountNumber,
		DestinationAccountNumber: req.DestinationAccountNumber,
		Amount:                   req.Amount,
		Description:              req.Description,
		OwnerID:                  ownerID,
	})
	if err != nil {
		respondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, TransactionResponse{
		Message:     "Transaction completed successfully",
		Transaction: transaction,
	})
}

// Deposit is the convenience route scoped to one account.
func (h *TransactionHandler) Deposit(c *gin.Context) {
	accountNumber := c.Param("accountNumber")
	ownerID, _ := middleware.GetUserID(c)

	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	description := req.Description
	if description == "" {
		description = "Deposit"
	}

	transaction, err := h.engine.Execute(c.Request.Context(), cqrs.ExecuteTransactionCommand{
		Kind:                models.TransactionDeposit,
		SourceAccountNumber: accountNumber,
		Amount:              req.Amount,
		Description:         description,
		OwnerID:             ownerID,
	})
	if err != nil {
		respondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, TransactionResponse{
		Message:     "Deposit successful",
		Transaction: transaction,
	})
}

// ListTransactions returns the owner's full activity feed, newest first.
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	ownerID, _ := middleware.GetUserID(c)

	transactions, err := h.queries.RecentActivity(c.Request.Context(), cqrs.RecentActivityQuery{
		OwnerID: ownerID,
		Limit:   -1,
	})
	if err != nil {
		respondWithDomainError(c, err)
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	c.JSON(http.StatusOK, ListTransactionsResponse{Transactions: transactions})
}

// LatestTransactions returns the ten newest records across the owner's
// accounts.
func (h *TransactionHandler) LatestTransactions(c *gin.Context) {
	ownerID, _ := middleware.GetUserID(c)

	transactions, err := h.queries.RecentActivity(c.Request.Context(), cqrs.RecentActivityQuery{
		OwnerID: ownerID,
	})
	if err != nil {
		respondWithDomainError(c, err)
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	c.JSON(http.StatusOK, ListTransactionsResponse{Transactions: transactions})
}

// ListAccountTransactions returns history for one owned account.
func (h *TransactionHandler) ListAccountTransactions(c *gin.Context) {
	accountNumber := c.Param("accountNumber")
	ownerID, _ := middleware.GetUserID(c)

	transactions, err := h.queries.ListForAccount(c.Request.Context(), cqrs.ListTransactionsQuery{
		AccountNumber: accountNumber,
		OwnerID:       ownerID,
	})
	if err != nil {
		respondWithDomainError(c, err)
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	c.JSON(http.StatusOK, ListTransactionsResponse{Transactions: transactions})
}
