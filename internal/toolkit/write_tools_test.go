package toolkit

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/banksim/internal/bankdb"
)

func invoke(t *testing.T, tk *Toolkit, name string, args map[string]any) string {
	t.Helper()
	out, err := tk.Invoke(context.Background(), name, args)
	require.NoError(t, err)
	return out
}

func TestLogInLogOut(t *testing.T) {
	tk, _ := newFixture(t)

	assert.Equal(t, "User is now logged in.", invoke(t, tk, "log_in", nil))
	ok, err := tk.Check("assert_logged_in", map[string]any{"expected": true})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "User is currently logged in.", invoke(t, tk, "check_login_status", nil))

	assert.Equal(t, "User is now logged out.", invoke(t, tk, "log_out", nil))
	ok, err = tk.Check("assert_logged_in", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolveDispute(t *testing.T) {
	tk, db := newFixture(t)

	out := invoke(t, tk, "resolve_dispute", map[string]any{"dispute_id": "D1"})
	assert.Equal(t, "Dispute D1 marked as resolved.", out)
	assert.Equal(t, bankdb.DisputeResolved, db.Disputes["D1"].Status)
}

func TestResolveDispute_NotFound(t *testing.T) {
	tk, db := newFixture(t)
	before := mustDigest(t, db)

	out := invoke(t, tk, "resolve_dispute", map[string]any{"dispute_id": "D9"})
	assert.Equal(t, "Dispute ID D9 not found.", out)
	assert.Equal(t, before, mustDigest(t, db))
}

func TestBlockUnblockCard(t *testing.T) {
	tk, db := newFixture(t)

	assert.Equal(t, "Card C1 has been blocked.", invoke(t, tk, "block_card", map[string]any{"card_id": "C1"}))
	assert.Equal(t, bankdb.CardBlocked, db.Cards["C1"].Status)
	assert.Equal(t, "Card C1 is already blocked.", invoke(t, tk, "block_card", map[string]any{"card_id": "C1"}))

	assert.Equal(t, "Card C2 has been unblocked.", invoke(t, tk, "unblock_card", map[string]any{"card_id": "C2"}))
	assert.Equal(t, bankdb.CardActive, db.Cards["C2"].Status)

	assert.Equal(t, "Card ID C9 not found.", invoke(t, tk, "block_card", map[string]any{"card_id": "C9"}))
}

func TestBlockCard_Expired(t *testing.T) {
	tk, db := newFixture(t)
	require.NoError(t, db.ApplyPartialUpdate(map[string]any{
		"cards": map[string]any{"C1": map[string]any{"status": "expired"}},
	}))
	before := mustDigest(t, db)

	out := invoke(t, tk, "unblock_card", map[string]any{"card_id": "C1"})
	assert.Equal(t, "Card C1 is expired and cannot be unblocked.", out)
	assert.Equal(t, before, mustDigest(t, db))
}

func TestDisputeTransaction(t *testing.T) {
	tk, db := newFixture(t)

	out := invoke(t, tk, "dispute_transaction", map[string]any{
		"transaction_id": "T1",
		"reason":         "charged twice",
	})
	assert.Equal(t, "Dispute D-T1 opened for transaction T1.", out)

	tx := db.Transactions["T1"]
	assert.True(t, tx.Disputed)
	assert.Equal(t, bankdb.TransactionDisputed, tx.Status)

	d := db.Disputes["D-T1"]
	require.NotNil(t, d)
	assert.Equal(t, "T1", d.TransactionID)
	assert.Equal(t, bankdb.DisputeOpen, d.Status)
	require.NotNil(t, d.Reason)
	assert.Equal(t, "charged twice", *d.Reason)

	ok, err := tk.Check("assert_transaction_disputed", map[string]any{"transaction_id": "T1"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDisputeTransaction_AlreadyDisputedOrMissing(t *testing.T) {
	tk, db := newFixture(t)
	before := mustDigest(t, db)

	assert.Equal(t, "Transaction T2 is already disputed.",
		invoke(t, tk, "dispute_transaction", map[string]any{"transaction_id": "T2"}))
	assert.Equal(t, "Transaction ID T9 not found.",
		invoke(t, tk, "dispute_transaction", map[string]any{"transaction_id": "T9"}))
	assert.Equal(t, before, mustDigest(t, db))
}

func TestSetOverdraft(t *testing.T) {
	tk, db := newFixture(t)

	assert.Equal(t, "Overdraft enabled for account A1.",
		invoke(t, tk, "set_overdraft", map[string]any{"account_id": "A1", "enabled": true}))
	assert.True(t, db.Accounts["A1"].OverdraftEnabled)

	assert.Equal(t, "Account ID A9 not found.",
		invoke(t, tk, "set_overdraft", map[string]any{"account_id": "A9", "enabled": true}))
}

func TestSetOverdraft_DisableWhileNegative(t *testing.T) {
	tk, db := newFixture(t)
	invoke(t, tk, "set_overdraft", map[string]any{"account_id": "A1", "enabled": true})
	invoke(t, tk, "transfer_funds", map[string]any{"from_account_id": "A1", "to_account_id": "A2", "amount": 200})
	before := mustDigest(t, db)

	_, err := tk.Invoke(context.Background(), "set_overdraft", map[string]any{"account_id": "A1", "enabled": false})
	require.Error(t, err)

	var vErr *bankdb.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "accounts.A1.balance", vErr.Path)
	assert.True(t, db.Accounts["A1"].OverdraftEnabled)
	assert.Equal(t, before, mustDigest(t, db))
}

func TestSetAutoPay(t *testing.T) {
	tk, db := newFixture(t)

	assert.Equal(t, "Auto-pay disabled.", invoke(t, tk, "set_auto_pay", map[string]any{"enabled": false}))
	assert.False(t, db.PaymentSettings.AutoPayEnabled)
	require.NotNil(t, db.PaymentSettings.PreferredAccountID)
	assert.Equal(t, "A1", *db.PaymentSettings.PreferredAccountID)

	assert.Equal(t, "Auto-pay enabled with preferred account A2.",
		invoke(t, tk, "set_auto_pay", map[string]any{"enabled": true, "preferred_account_id": "A2"}))
	assert.Equal(t, "A2", *db.PaymentSettings.PreferredAccountID)

	ok, err := tk.Check("assert_auto_pay_enabled", nil)
	require.NoError(t, err)
	assert.True(t, ok)

	before := mustDigest(t, db)
	assert.Equal(t, "Account ID A9 not found.",
		invoke(t, tk, "set_auto_pay", map[string]any{"enabled": false, "preferred_account_id": "A9"}))
	assert.Equal(t, before, mustDigest(t, db))
}

func TestSetAutoPay_NoPreferredAccount(t *testing.T) {
	tk := New(bankdb.New())
	assert.Equal(t, "Auto-pay enabled.", invoke(t, tk, "set_auto_pay", map[string]any{"enabled": true}))
}

func TestTransferFunds(t *testing.T) {
	tk, db := newFixture(t)

	out := invoke(t, tk, "transfer_funds", map[string]any{
		"from_account_id": "A2",
		"to_account_id":   "A1",
		"amount":          "79.50",
	})
	assert.Equal(t, "Transferred $79.50 from A2 to A1.", out)
	assert.True(t, db.Accounts["A1"].Balance.Equal(decimal.NewFromInt(200)))
	assert.True(t, db.Accounts["A2"].Balance.Equal(decimal.RequireFromString("2420.50")))

	ok, err := tk.Check("assert_account_balance", map[string]any{"account_id": "A1", "minimum_balance": 200})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTransferFunds_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]any
		wantErr error
	}{
		{
			name:    "zero amount",
			args:    map[string]any{"from_account_id": "A2", "to_account_id": "A1", "amount": 0},
			wantErr: ErrInvalidArguments,
		},
		{
			name:    "negative amount",
			args:    map[string]any{"from_account_id": "A2", "to_account_id": "A1", "amount": -5.25},
			wantErr: ErrInvalidArguments,
		},
		{
			name:    "same account",
			args:    map[string]any{"from_account_id": "A1", "to_account_id": "A1", "amount": 1},
			wantErr: ErrInvalidArguments,
		},
		{
			name:    "overdraw without overdraft",
			args:    map[string]any{"from_account_id": "A1", "to_account_id": "A2", "amount": 120.51},
			wantErr: bankdb.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk, db := newFixture(t)
			before := mustDigest(t, db)

			_, err := tk.Invoke(context.Background(), "transfer_funds", tt.args)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, mustDigest(t, db))
		})
	}
}

func TestTransferFunds_UnknownAccount(t *testing.T) {
	tk, db := newFixture(t)
	before := mustDigest(t, db)

	out := invoke(t, tk, "transfer_funds", map[string]any{"from_account_id": "A1", "to_account_id": "A9", "amount": 1})
	assert.Equal(t, "Account ID A9 not found.", out)
	assert.Equal(t, before, mustDigest(t, db))
}

func TestPayCardBalance(t *testing.T) {
	tk, db := newFixture(t)

	out := invoke(t, tk, "pay_card_balance", map[string]any{
		"card_id":         "C2",
		"from_account_id": "A2",
		"amount":          100,
	})
	assert.Equal(t, "Paid $100.00 toward card C2 from account A2.", out)
	assert.True(t, db.Cards["C2"].CurrentUsage.Equal(decimal.NewFromInt(150)))
	assert.True(t, db.Accounts["A2"].Balance.Equal(decimal.NewFromInt(2400)))
}

func TestPayCardBalance_Rejections(t *testing.T) {
	tk, db := newFixture(t)
	before := mustDigest(t, db)

	_, err := tk.Invoke(context.Background(), "pay_card_balance", map[string]any{
		"card_id": "C2", "from_account_id": "A2", "amount": 250.01,
	})
	assert.ErrorIs(t, err, ErrInvalidArguments)

	_, err = tk.Invoke(context.Background(), "pay_card_balance", map[string]any{
		"card_id": "C2", "from_account_id": "A1", "amount": 200,
	})
	assert.ErrorIs(t, err, bankdb.ErrValidation)

	assert.Equal(t, "Card ID C9 not found.", invoke(t, tk, "pay_card_balance", map[string]any{
		"card_id": "C9", "from_account_id": "A1", "amount": 1,
	}))
	assert.Equal(t, before, mustDigest(t, db))
}
