package bankdb

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPartialUpdate_NegativeBalanceWithoutOverdraft(t *testing.T) {
	db := loadFixture(t)
	before := digest(t, db)

	err := db.ApplyPartialUpdate(map[string]any{
		"accounts": map[string]any{"A1": map[string]any{"balance": -50}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "accounts.A1.balance", vErr.Path)

	assert.True(t, db.Accounts["A1"].Balance.Equal(decimal.RequireFromString("120.50")))
	assert.Equal(t, before, digest(t, db))
}

func TestApplyPartialUpdate_NegativeBalanceWithOverdraft(t *testing.T) {
	db := loadFixture(t)

	err := db.ApplyPartialUpdate(map[string]any{
		"accounts": map[string]any{"A1": map[string]any{"balance": -50, "overdraft_enabled": true}},
	})
	require.NoError(t, err)
	assert.True(t, db.Accounts["A1"].Balance.Equal(decimal.NewFromInt(-50)))
}

func TestApplyPartialUpdate_ExistingKeyPartialFields(t *testing.T) {
	db := loadFixture(t)

	err := db.ApplyPartialUpdate(map[string]any{
		"accounts": map[string]any{"A2": map[string]any{"balance": "3000.25"}},
	})
	require.NoError(t, err)

	a2 := db.Accounts["A2"]
	assert.True(t, a2.Balance.Equal(decimal.RequireFromString("3000.25")))
	assert.Equal(t, AccountSavings, a2.AccountType, "unmentioned fields are kept")
	assert.Len(t, db.Accounts, 2, "other records are kept")
}

func TestApplyPartialUpdate_NewKey(t *testing.T) {
	db := loadFixture(t)

	err := db.ApplyPartialUpdate(map[string]any{
		"accounts": map[string]any{"A3": map[string]any{"account_type": "credit", "balance": 0}},
		"cards":    map[string]any{"C3": map[string]any{"linked_account": "A3", "credit_limit": 500}},
	})
	require.NoError(t, err)

	require.Contains(t, db.Accounts, "A3")
	assert.Equal(t, "A3", db.Accounts["A3"].AccountID)
	assert.Equal(t, AccountCredit, db.Accounts["A3"].AccountType)

	require.Contains(t, db.Cards, "C3")
	assert.Equal(t, CardActive, db.Cards["C3"].Status)
	assert.True(t, db.Cards["C3"].CurrentUsage.IsZero())
}

func TestApplyPartialUpdate_NewKeyMissingRequiredField(t *testing.T) {
	db := loadFixture(t)
	before := digest(t, db)

	err := db.ApplyPartialUpdate(map[string]any{
		"accounts": map[string]any{"A3": map[string]any{"balance": 10}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotContains(t, db.Accounts, "A3")
	assert.Equal(t, before, digest(t, db))
}

func TestApplyPartialUpdate_UnrecognizedTopLevel(t *testing.T) {
	db := loadFixture(t)
	before := digest(t, db)

	err := db.ApplyPartialUpdate(map[string]any{
		"loans":            map[string]any{},
		"security_context": map[string]any{"logged_in": true},
	})
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "loans", vErr.Path)
	assert.False(t, db.SecurityContext.LoggedIn, "valid fields in a rejected update are not applied")
	assert.Equal(t, before, digest(t, db))
}

func TestApplyPartialUpdate_Atomicity(t *testing.T) {
	tests := []struct {
		name    string
		updates map[string]any
	}{
		{
			name: "wrong type next to valid change",
			updates: map[string]any{
				"security_context": map[string]any{"logged_in": true},
				"accounts":         map[string]any{"A2": map[string]any{"balance": "lots"}},
			},
		},
		{
			name: "card over its limit",
			updates: map[string]any{
				"accounts": map[string]any{"A1": map[string]any{"balance": 1}},
				"cards":    map[string]any{"C2": map[string]any{"current_usage": 1000.01}},
			},
		},
		{
			name: "card linked to missing account",
			updates: map[string]any{
				"cards": map[string]any{"C1": map[string]any{"linked_account": "A9"}},
			},
		},
		{
			name: "disputed flag without disputed status",
			updates: map[string]any{
				"transactions": map[string]any{"T1": map[string]any{"disputed": true}},
			},
		},
		{
			name: "preferred account missing",
			updates: map[string]any{
				"payment_settings": map[string]any{"preferred_account_id": "A9"},
			},
		},
		{
			name: "deleting an account still linked to a card",
			updates: map[string]any{
				"accounts": map[string]any{"A1": nil},
			},
		},
		{
			name: "unknown record field",
			updates: map[string]any{
				"accounts": map[string]any{"A1": map[string]any{"nickname": "main"}},
			},
		},
		{
			name: "collection replaced by scalar",
			updates: map[string]any{
				"cards": "none",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := loadFixture(t)
			before := digest(t, db)

			err := db.ApplyPartialUpdate(tt.updates)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, before, digest(t, db))
		})
	}
}

func TestApplyPartialUpdate_NestedSingletonMerge(t *testing.T) {
	db := loadFixture(t)

	err := db.ApplyPartialUpdate(map[string]any{
		"surroundings": map[string]any{
			"is_abroad": true,
			"device":    map[string]any{"recent_login_attempts": 3},
		},
	})
	require.NoError(t, err)

	assert.True(t, db.Surroundings.IsAbroad)
	assert.Equal(t, "strong", db.Surroundings.SignalStrength)
	assert.Equal(t, 3, db.Surroundings.Device.RecentLoginAttempts)
	assert.True(t, db.Surroundings.Device.Has2FAEnabled)
}

func TestApplyPartialUpdate_NullRemoves(t *testing.T) {
	db := loadFixture(t)

	err := db.ApplyPartialUpdate(map[string]any{
		"disputes":         map[string]any{"D1": nil},
		"transactions":     map[string]any{"T1": map[string]any{"merchant": nil}},
		"payment_settings": nil,
	})
	require.NoError(t, err)

	assert.Empty(t, db.Disputes)
	assert.Nil(t, db.Transactions["T1"].Merchant)
	assert.False(t, db.PaymentSettings.AutoPayEnabled)
	assert.Nil(t, db.PaymentSettings.PreferredAccountID)
}

func TestApplyPartialUpdate_EmptyIsNoop(t *testing.T) {
	db := loadFixture(t)
	before := digest(t, db)

	require.NoError(t, db.ApplyPartialUpdate(nil))
	require.NoError(t, db.ApplyPartialUpdate(map[string]any{}))
	assert.Equal(t, before, digest(t, db))
}

func TestApplyPartialUpdate_DoesNotRetainPatch(t *testing.T) {
	db := loadFixture(t)
	patch := map[string]any{"A1": map[string]any{"balance": 7}}

	require.NoError(t, db.ApplyPartialUpdate(map[string]any{"accounts": patch}))
	patch["A1"].(map[string]any)["balance"] = 9

	assert.True(t, db.Accounts["A1"].Balance.Equal(decimal.NewFromInt(7)))
}

func TestMutate_Success(t *testing.T) {
	db := loadFixture(t)

	err := db.Mutate(func(next *DB) error {
		next.SecurityContext.LoggedIn = true
		next.Cards["C1"].Status = CardBlocked
		return nil
	})
	require.NoError(t, err)
	assert.True(t, db.SecurityContext.LoggedIn)
	assert.Equal(t, CardBlocked, db.Cards["C1"].Status)
}

func TestMutate_InvariantViolationIsRejected(t *testing.T) {
	db := loadFixture(t)
	before := digest(t, db)

	err := db.Mutate(func(next *DB) error {
		next.SecurityContext.LoggedIn = true
		next.Accounts["A2"].Balance = decimal.NewFromInt(-1)
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.False(t, db.SecurityContext.LoggedIn)
	assert.Equal(t, before, digest(t, db))
}

func TestMutate_CallbackErrorIsRejected(t *testing.T) {
	db := loadFixture(t)
	before := digest(t, db)
	boom := errors.New("boom")

	err := db.Mutate(func(next *DB) error {
		next.SecurityContext.LoggedIn = true
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before, digest(t, db))
}

func TestMergeInto(t *testing.T) {
	dst := map[string]any{
		"a": map[string]any{"x": 1, "y": 2},
		"b": "keep",
		"c": []any{1, 2},
	}
	mergeInto(dst, map[string]any{
		"a": map[string]any{"y": 3, "z": 4},
		"b": nil,
		"c": []any{9},
		"d": map[string]any{"new": true},
	})

	assert.Equal(t, map[string]any{
		"a": map[string]any{"x": 1, "y": 3, "z": 4},
		"c": []any{9},
		"d": map[string]any{"new": true},
	}, dst)
}
