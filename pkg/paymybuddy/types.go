package paymybuddy

import "time"

// Contact is another user of the service.
type Contact struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	DefaultCurrency string `json:"defaultCurrency,omitempty"`
}

// Balance of the user in one currency. Amounts are decimal strings.
type Balance struct {
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
}

// Transaction is a transfer between two users, or to a bank account when
// Recipient is nil.
type Transaction struct {
	ID          int64     `json:"id"`
	Sender      *Contact  `json:"sender,omitempty"`
	Recipient   *Contact  `json:"recipient,omitempty"`
	Currency    string    `json:"currency"`
	Amount      string    `json:"amount"`
	Fee         string    `json:"fee"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
}

// List is an unpaginated collection.
type List[T any] struct {
	Records []T `json:"records"`
}

// Page is a page of a numbered collection.
type Page[T any] struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	PageCount  int `json:"pageCount"`
	TotalCount int `json:"totalCount"`
	Records    []T `json:"records"`
}

// Cursor is a slice of a cursor paginated collection.
type Cursor[T any] struct {
	PrevCursor string `json:"prevCursor,omitempty"`
	HasPrev    bool   `json:"hasPrev"`
	NextCursor string `json:"nextCursor,omitempty"`
	HasNext    bool   `json:"hasNext"`
	Records    []T    `json:"records"`
}

// PageQuery selects a page of contacts. Sort is a field name, prefixed with
// "-" for descending order.
type PageQuery struct {
	Page     int
	PageSize int
	Sort     string
}

// CursorQuery selects a slice of transactions.
type CursorQuery struct {
	Cursor   string
	PageSize int
	Sort     string
}

// RegisterRequest creates an account.
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	DefaultCurrency string `json:"defaultCurrency"`
}

// SendMoneyRequest transfers money to a contact.
type SendMoneyRequest struct {
	RecipientID int64  `json:"recipientId"`
	Currency    string `json:"currency"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

// WithdrawRequest transfers money to a bank account.
type WithdrawRequest struct {
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
	IBAN     string `json:"iban"`
}
