package moneylover

// Profile describes the authenticated MoneyLover account.
type Profile struct {
	ID       string `json:"_id"`
	Email    string `json:"email"`
	ClientID string `json:"client_setting,omitempty"`
}

// Wallet is a MoneyLover wallet (account) owned by the user.
type Wallet struct {
	ID           string              `json:"_id"`
	Name         string              `json:"name"`
	Currency     int                 `json:"currency_id"`
	Balance      []map[string]string `json:"balance,omitempty"`
	Archived     bool                `json:"archived"`
	ExcludeTotal bool                `json:"exclude_total,omitempty"`
}

// Category is a transaction category scoped to one wallet.
type Category struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Type     int    `json:"type"`
	Icon     string `json:"icon,omitempty"`
	WalletID string `json:"account"`
}

// Transaction is a single booked transaction.
type Transaction struct {
	ID          string   `json:"_id"`
	Note        string   `json:"note,omitempty"`
	Amount      float64  `json:"amount"`
	DisplayDate string   `json:"displayDate"`
	Category    Category `json:"category"`
	WalletID    string   `json:"account"`
}

// TransactionPage is the result of a transaction listing.
type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
}

// ListTransactionsRequest bounds a transaction listing to one wallet and a
// date range (inclusive, YYYY-MM-DD).
type ListTransactionsRequest struct {
	WalletID  string `json:"walletId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// NewTransaction is the payload for creating a transaction.
type NewTransaction struct {
	WalletID    string  `json:"account"`
	CategoryID  string  `json:"category"`
	Amount      float64 `json:"amount"`
	Note        string  `json:"note,omitempty"`
	DisplayDate string  `json:"displayDate"`
}
