package bankdb

import "github.com/shopspring/decimal"

// AccountType classifies an account.
type AccountType string

const (
	AccountSavings  AccountType = "savings"
	AccountChecking AccountType = "checking"
	AccountCredit   AccountType = "credit"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountSavings, AccountChecking, AccountCredit:
		return true
	}
	return false
}

// CardStatus is the lifecycle state of a card.
type CardStatus string

const (
	CardActive  CardStatus = "active"
	CardBlocked CardStatus = "blocked"
	CardExpired CardStatus = "expired"
)

// Valid reports whether s is a known card status.
func (s CardStatus) Valid() bool {
	switch s {
	case CardActive, CardBlocked, CardExpired:
		return true
	}
	return false
}

// TransactionStatus is the settlement state of a transaction.
type TransactionStatus string

const (
	TransactionPending  TransactionStatus = "pending"
	TransactionCleared  TransactionStatus = "cleared"
	TransactionDisputed TransactionStatus = "disputed"
)

// Valid reports whether s is a known transaction status.
func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionPending, TransactionCleared, TransactionDisputed:
		return true
	}
	return false
}

// DisputeStatus is the state of a dispute case.
type DisputeStatus string

const (
	DisputeOpen     DisputeStatus = "open"
	DisputeResolved DisputeStatus = "resolved"
	DisputeRejected DisputeStatus = "rejected"
)

// Valid reports whether s is a known dispute status.
func (s DisputeStatus) Valid() bool {
	switch s {
	case DisputeOpen, DisputeResolved, DisputeRejected:
		return true
	}
	return false
}

// Account is a deposit or credit account.
type Account struct {
	AccountID        string          `json:"account_id"`
	AccountType      AccountType     `json:"account_type"`
	Balance          decimal.Decimal `json:"balance"`
	OverdraftEnabled bool            `json:"overdraft_enabled"`
}

// Card is a payment card linked to an account.
type Card struct {
	CardID        string           `json:"card_id"`
	LinkedAccount string           `json:"linked_account"`
	Status        CardStatus       `json:"status"`
	CreditLimit   *decimal.Decimal `json:"credit_limit,omitempty"`
	CurrentUsage  decimal.Decimal  `json:"current_usage"`
}

// Transaction is a single card or account movement.
type Transaction struct {
	TransactionID string            `json:"transaction_id"`
	Amount        decimal.Decimal   `json:"amount"`
	Merchant      *string           `json:"merchant,omitempty"`
	Status        TransactionStatus `json:"status"`
	CardID        *string           `json:"card_id,omitempty"`
	Disputed      bool              `json:"disputed"`
}

// Dispute is a customer claim against a transaction.
type Dispute struct {
	DisputeID     string        `json:"dispute_id"`
	TransactionID string        `json:"transaction_id"`
	Status        DisputeStatus `json:"status"`
	Reason        *string       `json:"reason,omitempty"`
}

// PaymentSetting holds the user's automatic payment preferences.
type PaymentSetting struct {
	AutoPayEnabled     bool    `json:"auto_pay_enabled"`
	PreferredAccountID *string `json:"preferred_account_id,omitempty"`
}

// Device is the user's login device context.
type Device struct {
	Authenticated       bool    `json:"authenticated"`
	Has2FAEnabled       bool    `json:"has_2fa_enabled"`
	LoginLocation       *string `json:"login_location"`
	RecentLoginAttempts int     `json:"recent_login_attempts"`
}

// Surroundings describes the user's physical and network situation.
type Surroundings struct {
	SignalStrength    string `json:"signal_strength"`
	IsAbroad          bool   `json:"is_abroad"`
	NetworkAccessible bool   `json:"network_accessible"`
	Device            Device `json:"device"`
}

// SecurityContext is the banking session state.
type SecurityContext struct {
	LoggedIn bool `json:"logged_in"`
}

// DefaultPaymentSetting returns a fresh payment setting with auto-pay off.
func DefaultPaymentSetting() PaymentSetting {
	return PaymentSetting{}
}

// DefaultDevice returns a fresh authenticated domestic device.
func DefaultDevice() Device {
	location := "domestic"
	return Device{
		Authenticated:       true,
		Has2FAEnabled:       true,
		LoginLocation:       &location,
		RecentLoginAttempts: 0,
	}
}

// DefaultSurroundings returns fresh surroundings with a strong signal at
// home.
func DefaultSurroundings() Surroundings {
	return Surroundings{
		SignalStrength:    "strong",
		IsAbroad:          false,
		NetworkAccessible: true,
		Device:            DefaultDevice(),
	}
}

// DefaultSecurityContext returns a logged-out session.
func DefaultSecurityContext() SecurityContext {
	return SecurityContext{}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (a *Account) clone() *Account {
	out := *a
	return &out
}

func (c *Card) clone() *Card {
	out := *c
	out.CreditLimit = clonePtr(c.CreditLimit)
	return &out
}

func (t *Transaction) clone() *Transaction {
	out := *t
	out.Merchant = clonePtr(t.Merchant)
	out.CardID = clonePtr(t.CardID)
	return &out
}

func (d *Dispute) clone() *Dispute {
	out := *d
	out.Reason = clonePtr(d.Reason)
	return &out
}

func (p PaymentSetting) clone() PaymentSetting {
	p.PreferredAccountID = clonePtr(p.PreferredAccountID)
	return p
}

func (s Surroundings) clone() Surroundings {
	s.Device.LoginLocation = clonePtr(s.Device.LoginLocation)
	return s
}
