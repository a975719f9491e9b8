package bankdb

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Fixture(t *testing.T) {
	assert.NoError(t, loadFixture(t).Validate())
	assert.NoError(t, New().Validate())
}

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(db *DB)
		wantPath string
	}{
		{
			name:     "negative balance",
			mutate:   func(db *DB) { db.Accounts["A1"].Balance = decimal.NewFromInt(-1) },
			wantPath: "accounts.A1.balance",
		},
		{
			name:     "account id mismatch",
			mutate:   func(db *DB) { db.Accounts["A1"].AccountID = "A7" },
			wantPath: "accounts.A1.account_id",
		},
		{
			name:     "unknown account type",
			mutate:   func(db *DB) { db.Accounts["A2"].AccountType = "brokerage" },
			wantPath: "accounts.A2.account_type",
		},
		{
			name:     "dangling card link",
			mutate:   func(db *DB) { db.Cards["C1"].LinkedAccount = "nope" },
			wantPath: "cards.C1.linked_account",
		},
		{
			name:     "usage over limit",
			mutate:   func(db *DB) { db.Cards["C2"].CurrentUsage = decimal.NewFromInt(1001) },
			wantPath: "cards.C2.current_usage",
		},
		{
			name:     "negative usage",
			mutate:   func(db *DB) { db.Cards["C1"].CurrentUsage = decimal.NewFromInt(-1) },
			wantPath: "cards.C1.current_usage",
		},
		{
			name:     "unknown card status",
			mutate:   func(db *DB) { db.Cards["C1"].Status = "lost" },
			wantPath: "cards.C1.status",
		},
		{
			name:     "disputed without status",
			mutate:   func(db *DB) { db.Transactions["T2"].Status = TransactionCleared },
			wantPath: "transactions.T2.status",
		},
		{
			name:     "dispute on missing transaction",
			mutate:   func(db *DB) { db.Disputes["D1"].TransactionID = "T9" },
			wantPath: "disputes.D1.transaction_id",
		},
		{
			name: "preferred account missing",
			mutate: func(db *DB) {
				missing := "A9"
				db.PaymentSettings.PreferredAccountID = &missing
			},
			wantPath: "payment_settings.preferred_account_id",
		},
		{
			name:     "negative login attempts",
			mutate:   func(db *DB) { db.Surroundings.Device.RecentLoginAttempts = -2 },
			wantPath: "surroundings.device.recent_login_attempts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := loadFixture(t)
			tt.mutate(db)

			err := db.Validate()
			require.Error(t, err)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantPath, vErr.Path)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestValidate_UsageWithoutLimitIsUnbounded(t *testing.T) {
	db := loadFixture(t)
	db.Cards["C1"].CurrentUsage = decimal.NewFromInt(1_000_000)
	assert.NoError(t, db.Validate())
}

func TestValidationError_Message(t *testing.T) {
	err := invalid("accounts.A1.balance", "balance %s is negative", "-1")
	assert.Equal(t, "validation failed: accounts.A1.balance: balance -1 is negative", err.Error())

	bare := &ValidationError{Message: "decode state: bad"}
	assert.Equal(t, "validation failed: decode state: bad", bare.Error())
}
