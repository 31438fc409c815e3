package cqrs

// ---------- Account queries ----------

// GetAccountQuery fetches a single account, subject to ownership check.
type GetAccountQuery struct {
	AccountNumber string
	OwnerID       string
}

// ListAccountsQuery fetches all accounts belonging to an owner.
type ListAccountsQuery struct {
	OwnerID string
}

// GetBalanceQuery reads the committed balance of one owned account.
type GetBalanceQuery struct {
	AccountNumber string
	OwnerID       string
}

// ---------- Ledger queries ----------

// ListTransactionsQuery fetches the newest records touching one owned
// account. Limit <= 0 means no limit.
type ListTransactionsQuery struct {
	AccountNumber string
	OwnerID       string
	Limit         int
}

// RecentActivityQuery fetches the newest records across all of an owner's
// accounts, source or destination side. Limit 0 applies the service
// default; a negative limit means no limit.
type RecentActivityQuery struct {
	OwnerID string
	Limit   int
}
