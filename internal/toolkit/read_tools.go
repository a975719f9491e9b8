package toolkit

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/banksim/internal/bankdb"
)

func readTools() []Tool {
	return []Tool{
		{
			Name:        "get_account_balances",
			Description: "Returns current balances for all accounts.",
			Kind:        KindRead,
			handler:     getAccountBalances,
		},
		{
			Name:        "check_card_status",
			Description: "Returns the status of all cards.",
			Kind:        KindRead,
			handler:     checkCardStatus,
		},
		{
			Name:        "get_transactions",
			Description: "Returns all transactions with their status.",
			Kind:        KindRead,
			handler:     getTransactions,
		},
		{
			Name:        "get_disputes",
			Description: "Returns a list of current disputes.",
			Kind:        KindRead,
			handler:     getDisputes,
		},
		{
			Name:        "get_payment_settings",
			Description: "Returns the automatic payment settings.",
			Kind:        KindRead,
			handler:     getPaymentSettings,
		},
		{
			Name:        "check_surroundings",
			Description: "Describes the signal, location and device the user is on.",
			Kind:        KindRead,
			handler:     checkSurroundings,
		},
		{
			Name:        "check_login_status",
			Description: "Checks if the user is currently logged in.",
			Kind:        KindRead,
			handler:     checkLoginStatus,
		},
	}
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func getAccountBalances(_ context.Context, db *bankdb.DB, _ Args) (string, error) {
	ids := db.AccountIDs()
	if len(ids) == 0 {
		return "No accounts found.", nil
	}

	title := cases.Title(language.English)
	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		a := db.Accounts[id]
		lines = append(lines, fmt.Sprintf("%s Account (%s): %s",
			title.String(string(a.AccountType)), id, money(a.Balance)))
	}
	return strings.Join(lines, "\n"), nil
}

func checkCardStatus(_ context.Context, db *bankdb.DB, _ Args) (string, error) {
	ids := db.CardIDs()
	if len(ids) == 0 {
		return "No cards found.", nil
	}

	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		c := db.Cards[id]
		lines = append(lines, fmt.Sprintf("Card (%s) - Status: %s, Linked Account: %s",
			id, c.Status, c.LinkedAccount))
	}
	return strings.Join(lines, "\n"), nil
}

func getTransactions(_ context.Context, db *bankdb.DB, _ Args) (string, error) {
	ids := db.TransactionIDs()
	if len(ids) == 0 {
		return "No transactions found.", nil
	}

	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		t := db.Transactions[id]
		merchant := "Unknown"
		if t.Merchant != nil {
			merchant = *t.Merchant
		}
		lines = append(lines, fmt.Sprintf("Transaction (%s) - Amount: %s, Merchant: %s, Status: %s, Disputed: %s",
			id, money(t.Amount), merchant, t.Status, yesNo(t.Disputed)))
	}
	return strings.Join(lines, "\n"), nil
}

func getDisputes(_ context.Context, db *bankdb.DB, _ Args) (string, error) {
	ids := db.DisputeIDs()
	if len(ids) == 0 {
		return "No disputes found.", nil
	}

	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		d := db.Disputes[id]
		lines = append(lines, fmt.Sprintf("Dispute ID: %s, Status: %s, Transaction: %s",
			id, d.Status, d.TransactionID))
	}
	return strings.Join(lines, "\n"), nil
}

func getPaymentSettings(_ context.Context, db *bankdb.DB, _ Args) (string, error) {
	ps := db.PaymentSettings
	state := "disabled"
	if ps.AutoPayEnabled {
		state = "enabled"
	}
	preferred := "none"
	if ps.PreferredAccountID != nil {
		preferred = *ps.PreferredAccountID
	}
	return fmt.Sprintf("Auto-pay: %s, Preferred Account: %s", state, preferred), nil
}

func checkSurroundings(_ context.Context, db *bankdb.DB, _ Args) (string, error) {
	s := db.Surroundings
	location := "unknown"
	if s.Device.LoginLocation != nil {
		location = *s.Device.LoginLocation
	}

	lines := []string{
		"Signal Strength: " + s.SignalStrength,
		"Abroad: " + yesNo(s.IsAbroad),
		"Network Accessible: " + yesNo(s.NetworkAccessible),
		"Device Authenticated: " + yesNo(s.Device.Authenticated),
		"2FA Enabled: " + yesNo(s.Device.Has2FAEnabled),
		"Login Location: " + location,
		fmt.Sprintf("Recent Login Attempts: %d", s.Device.RecentLoginAttempts),
	}
	return strings.Join(lines, "\n"), nil
}

func checkLoginStatus(_ context.Context, db *bankdb.DB, _ Args) (string, error) {
	if db.SecurityContext.LoggedIn {
		return "User is currently logged in.", nil
	}
	return "User is not logged in.", nil
}
