package toolkit

import (
	"context"
	"fmt"

	"github.com/roach88/banksim/internal/bankdb"
)

func writeTools() []Tool {
	return []Tool{
		{
			Name:        "log_in",
			Description: "Logs the user in.",
			Kind:        KindWrite,
			handler:     logIn,
		},
		{
			Name:        "log_out",
			Description: "Logs the user out.",
			Kind:        KindWrite,
			handler:     logOut,
		},
		{
			Name:        "resolve_dispute",
			Description: "Marks a dispute as resolved.",
			Kind:        KindWrite,
			Params: []Param{
				{Name: "dispute_id", Type: TypeString, Required: true},
			},
			handler: resolveDispute,
		},
		{
			Name:        "block_card",
			Description: "Blocks an active card.",
			Kind:        KindWrite,
			Params: []Param{
				{Name: "card_id", Type: TypeString, Required: true},
			},
			handler: setCardBlocked(true),
		},
		{
			Name:        "unblock_card",
			Description: "Reactivates a blocked card.",
			Kind:        KindWrite,
			Params: []Param{
				{Name: "card_id", Type: TypeString, Required: true},
			},
			handler: setCardBlocked(false),
		},
		{
			Name:        "dispute_transaction",
			Description: "Opens a dispute against a transaction.",
			Kind:        KindWrite,
			Params: []Param{
				{Name: "transaction_id", Type: TypeString, Required: true},
				{Name: "reason", Type: TypeString, Description: "free-text reason recorded on the dispute"},
			},
			handler: disputeTransaction,
		},
		{
			Name:        "set_overdraft",
			Description: "Enables or disables overdraft on an account.",
			Kind:        KindWrite,
			Params: []Param{
				{Name: "account_id", Type: TypeString, Required: true},
				{Name: "enabled", Type: TypeBoolean, Required: true},
			},
			handler: setOverdraft,
		},
		{
			Name:        "set_auto_pay",
			Description: "Enables or disables automatic payments.",
			Kind:        KindWrite,
			Params: []Param{
				{Name: "enabled", Type: TypeBoolean, Required: true},
				{Name: "preferred_account_id", Type: TypeString, Description: "account auto-pay draws from"},
			},
			handler: setAutoPay,
		},
		{
			Name:        "transfer_funds",
			Description: "Moves money between two accounts.",
			Kind:        KindWrite,
			Params: []Param{
				{Name: "from_account_id", Type: TypeString, Required: true},
				{Name: "to_account_id", Type: TypeString, Required: true},
				{Name: "amount", Type: TypeNumber, Required: true, Description: "positive amount in dollars"},
			},
			handler: transferFunds,
		},
		{
			Name:        "pay_card_balance",
			Description: "Pays down a card's current usage from an account.",
			Kind:        KindWrite,
			Params: []Param{
				{Name: "card_id", Type: TypeString, Required: true},
				{Name: "from_account_id", Type: TypeString, Required: true},
				{Name: "amount", Type: TypeNumber, Required: true, Description: "positive amount in dollars"},
			},
			handler: payCardBalance,
		},
	}
}

func invalidArgs(tool, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidArguments, tool, fmt.Sprintf(format, args...))
}

func logIn(_ context.Context, db *bankdb.DB, _ Args) (string, error) {
	err := db.Mutate(func(next *bankdb.DB) error {
		next.SecurityContext.LoggedIn = true
		return nil
	})
	if err != nil {
		return "", err
	}
	return "User is now logged in.", nil
}

func logOut(_ context.Context, db *bankdb.DB, _ Args) (string, error) {
	err := db.Mutate(func(next *bankdb.DB) error {
		next.SecurityContext.LoggedIn = false
		return nil
	})
	if err != nil {
		return "", err
	}
	return "User is now logged out.", nil
}

func resolveDispute(_ context.Context, db *bankdb.DB, args Args) (string, error) {
	id := args.String("dispute_id")
	if _, ok := db.Disputes[id]; !ok {
		return fmt.Sprintf("Dispute ID %s not found.", id), nil
	}

	err := db.Mutate(func(next *bankdb.DB) error {
		next.Disputes[id].Status = bankdb.DisputeResolved
		return nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Dispute %s marked as resolved.", id), nil
}

func setCardBlocked(blocked bool) Handler {
	verb, target := "unblocked", bankdb.CardActive
	if blocked {
		verb, target = "blocked", bankdb.CardBlocked
	}

	return func(_ context.Context, db *bankdb.DB, args Args) (string, error) {
		id := args.String("card_id")
		card, ok := db.Cards[id]
		switch {
		case !ok:
			return fmt.Sprintf("Card ID %s not found.", id), nil
		case card.Status == bankdb.CardExpired:
			return fmt.Sprintf("Card %s is expired and cannot be %s.", id, verb), nil
		case card.Status == target:
			return fmt.Sprintf("Card %s is already %s.", id, target), nil
		}

		err := db.Mutate(func(next *bankdb.DB) error {
			next.Cards[id].Status = target
			return nil
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Card %s has been %s.", id, verb), nil
	}
}

// disputeTransaction opens dispute D-<transaction id>. A transaction can
// carry only one dispute at a time.
func disputeTransaction(_ context.Context, db *bankdb.DB, args Args) (string, error) {
	txID := args.String("transaction_id")
	tx, ok := db.Transactions[txID]
	if !ok {
		return fmt.Sprintf("Transaction ID %s not found.", txID), nil
	}
	if tx.Disputed {
		return fmt.Sprintf("Transaction %s is already disputed.", txID), nil
	}

	disputeID := "D-" + txID
	err := db.Mutate(func(next *bankdb.DB) error {
		t := next.Transactions[txID]
		t.Disputed = true
		t.Status = bankdb.TransactionDisputed

		d := &bankdb.Dispute{
			DisputeID:     disputeID,
			TransactionID: txID,
			Status:        bankdb.DisputeOpen,
		}
		if reason, ok := args.OptString("reason"); ok {
			d.Reason = &reason
		}
		next.Disputes[disputeID] = d
		return nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Dispute %s opened for transaction %s.", disputeID, txID), nil
}

func setOverdraft(_ context.Context, db *bankdb.DB, args Args) (string, error) {
	id := args.String("account_id")
	enabled := args.Bool("enabled", false)
	if _, ok := db.Accounts[id]; !ok {
		return fmt.Sprintf("Account ID %s not found.", id), nil
	}

	err := db.Mutate(func(next *bankdb.DB) error {
		next.Accounts[id].OverdraftEnabled = enabled
		return nil
	})
	if err != nil {
		return "", err
	}
	if enabled {
		return fmt.Sprintf("Overdraft enabled for account %s.", id), nil
	}
	return fmt.Sprintf("Overdraft disabled for account %s.", id), nil
}

// setAutoPay keeps the current preferred account when none is given.
func setAutoPay(_ context.Context, db *bankdb.DB, args Args) (string, error) {
	enabled := args.Bool("enabled", false)
	preferred, hasPreferred := args.OptString("preferred_account_id")
	if hasPreferred {
		if _, ok := db.Accounts[preferred]; !ok {
			return fmt.Sprintf("Account ID %s not found.", preferred), nil
		}
	}

	err := db.Mutate(func(next *bankdb.DB) error {
		next.PaymentSettings.AutoPayEnabled = enabled
		if hasPreferred {
			next.PaymentSettings.PreferredAccountID = &preferred
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if !enabled {
		return "Auto-pay disabled.", nil
	}
	if pref := db.PaymentSettings.PreferredAccountID; pref != nil {
		return fmt.Sprintf("Auto-pay enabled with preferred account %s.", *pref), nil
	}
	return "Auto-pay enabled.", nil
}

func transferFunds(_ context.Context, db *bankdb.DB, args Args) (string, error) {
	from := args.String("from_account_id")
	to := args.String("to_account_id")
	amount, err := args.Decimal("amount")
	if err != nil {
		return "", invalidArgs("transfer_funds", "%v", err)
	}
	if !amount.IsPositive() {
		return "", invalidArgs("transfer_funds", "amount must be positive, got %s", amount.String())
	}
	if from == to {
		return "", invalidArgs("transfer_funds", "source and destination are both %q", from)
	}
	for _, id := range []string{from, to} {
		if _, ok := db.Accounts[id]; !ok {
			return fmt.Sprintf("Account ID %s not found.", id), nil
		}
	}

	err = db.Mutate(func(next *bankdb.DB) error {
		src, dst := next.Accounts[from], next.Accounts[to]
		src.Balance = src.Balance.Sub(amount)
		dst.Balance = dst.Balance.Add(amount)
		return nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Transferred %s from %s to %s.", money(amount), from, to), nil
}

func payCardBalance(_ context.Context, db *bankdb.DB, args Args) (string, error) {
	cardID := args.String("card_id")
	from := args.String("from_account_id")
	amount, err := args.Decimal("amount")
	if err != nil {
		return "", invalidArgs("pay_card_balance", "%v", err)
	}
	if !amount.IsPositive() {
		return "", invalidArgs("pay_card_balance", "amount must be positive, got %s", amount.String())
	}

	card, ok := db.Cards[cardID]
	if !ok {
		return fmt.Sprintf("Card ID %s not found.", cardID), nil
	}
	if _, ok := db.Accounts[from]; !ok {
		return fmt.Sprintf("Account ID %s not found.", from), nil
	}
	if amount.GreaterThan(card.CurrentUsage) {
		return "", invalidArgs("pay_card_balance", "amount %s exceeds current usage %s",
			amount.StringFixed(2), card.CurrentUsage.StringFixed(2))
	}

	err = db.Mutate(func(next *bankdb.DB) error {
		c, acct := next.Cards[cardID], next.Accounts[from]
		c.CurrentUsage = c.CurrentUsage.Sub(amount)
		acct.Balance = acct.Balance.Sub(amount)
		return nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Paid %s toward card %s from account %s.", money(amount), cardID, from), nil
}
