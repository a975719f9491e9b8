package toolkit

import (
	"github.com/roach88/banksim/internal/bankdb"
)

func assertions() []Assertion {
	return []Assertion{
		{
			Name:        "assert_account_balance",
			Description: "True if the account balance is at least minimum_balance.",
			Params: []Param{
				{Name: "account_id", Type: TypeString, Required: true},
				{Name: "minimum_balance", Type: TypeNumber, Required: true},
			},
			predicate: assertAccountBalance,
		},
		{
			Name:        "assert_logged_in",
			Description: "True if the login state equals expected.",
			Params: []Param{
				{Name: "expected", Type: TypeBoolean},
			},
			predicate: func(db *bankdb.DB, args Args) (bool, error) {
				return db.SecurityContext.LoggedIn == args.Bool("expected", true), nil
			},
		},
		{
			Name:        "assert_card_status",
			Description: "True if the card has expected_status.",
			Params: []Param{
				{Name: "card_id", Type: TypeString, Required: true},
				{Name: "expected_status", Type: TypeString, Required: true},
			},
			predicate: func(db *bankdb.DB, args Args) (bool, error) {
				c, ok := db.Cards[args.String("card_id")]
				if !ok {
					return false, nil
				}
				return string(c.Status) == args.String("expected_status"), nil
			},
		},
		{
			Name:        "assert_dispute_status",
			Description: "True if the dispute has expected_status.",
			Params: []Param{
				{Name: "dispute_id", Type: TypeString, Required: true},
				{Name: "expected_status", Type: TypeString, Required: true},
			},
			predicate: func(db *bankdb.DB, args Args) (bool, error) {
				d, ok := db.Disputes[args.String("dispute_id")]
				if !ok {
					return false, nil
				}
				return string(d.Status) == args.String("expected_status"), nil
			},
		},
		{
			Name:        "assert_transaction_disputed",
			Description: "True if the transaction's disputed flag equals expected.",
			Params: []Param{
				{Name: "transaction_id", Type: TypeString, Required: true},
				{Name: "expected", Type: TypeBoolean},
			},
			predicate: func(db *bankdb.DB, args Args) (bool, error) {
				t, ok := db.Transactions[args.String("transaction_id")]
				if !ok {
					return false, nil
				}
				return t.Disputed == args.Bool("expected", true), nil
			},
		},
		{
			Name:        "assert_auto_pay_enabled",
			Description: "True if auto-pay state equals expected.",
			Params: []Param{
				{Name: "expected", Type: TypeBoolean},
			},
			predicate: func(db *bankdb.DB, args Args) (bool, error) {
				return db.PaymentSettings.AutoPayEnabled == args.Bool("expected", true), nil
			},
		},
	}
}

func assertAccountBalance(db *bankdb.DB, args Args) (bool, error) {
	a, ok := db.Accounts[args.String("account_id")]
	if !ok {
		return false, nil
	}
	minimum, err := args.Decimal("minimum_balance")
	if err != nil {
		return false, err
	}
	return a.Balance.GreaterThanOrEqual(minimum), nil
}
