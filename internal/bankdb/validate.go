package bankdb

// Validate checks every record invariant and returns the first violation
// in sorted key order, or nil.
//
// Invariants:
//   - an account balance may be negative only with overdraft enabled
//   - a card links to an existing account; its usage is non-negative and
//     within its credit limit when one is set
//   - a disputed transaction has status disputed
//   - a dispute references an existing transaction
//   - a preferred payment account, if set, exists
func (db *DB) Validate() error {
	for _, id := range db.AccountIDs() {
		a := db.Accounts[id]
		path := "accounts." + id
		if a.AccountID != id {
			return invalid(path+".account_id", "id %q does not match key %q", a.AccountID, id)
		}
		if !a.AccountType.Valid() {
			return invalid(path+".account_type", "unknown account type %q", a.AccountType)
		}
		if a.Balance.IsNegative() && !a.OverdraftEnabled {
			return invalid(path+".balance", "balance %s is negative but overdraft is disabled", a.Balance.String())
		}
	}

	for _, id := range db.CardIDs() {
		c := db.Cards[id]
		path := "cards." + id
		if c.CardID != id {
			return invalid(path+".card_id", "id %q does not match key %q", c.CardID, id)
		}
		if !c.Status.Valid() {
			return invalid(path+".status", "unknown card status %q", c.Status)
		}
		if _, ok := db.Accounts[c.LinkedAccount]; !ok {
			return invalid(path+".linked_account", "linked account %q does not exist", c.LinkedAccount)
		}
		if c.CurrentUsage.IsNegative() {
			return invalid(path+".current_usage", "usage %s is negative", c.CurrentUsage.String())
		}
		if c.CreditLimit != nil {
			if c.CreditLimit.IsNegative() {
				return invalid(path+".credit_limit", "credit limit %s is negative", c.CreditLimit.String())
			}
			if c.CurrentUsage.GreaterThan(*c.CreditLimit) {
				return invalid(path+".current_usage", "usage %s exceeds credit limit %s",
					c.CurrentUsage.String(), c.CreditLimit.String())
			}
		}
	}

	for _, id := range db.TransactionIDs() {
		t := db.Transactions[id]
		path := "transactions." + id
		if t.TransactionID != id {
			return invalid(path+".transaction_id", "id %q does not match key %q", t.TransactionID, id)
		}
		if !t.Status.Valid() {
			return invalid(path+".status", "unknown transaction status %q", t.Status)
		}
		if t.Disputed && t.Status != TransactionDisputed {
			return invalid(path+".status", "disputed transaction must have status %q, got %q", TransactionDisputed, t.Status)
		}
	}

	for _, id := range db.DisputeIDs() {
		d := db.Disputes[id]
		path := "disputes." + id
		if d.DisputeID != id {
			return invalid(path+".dispute_id", "id %q does not match key %q", d.DisputeID, id)
		}
		if !d.Status.Valid() {
			return invalid(path+".status", "unknown dispute status %q", d.Status)
		}
		if _, ok := db.Transactions[d.TransactionID]; !ok {
			return invalid(path+".transaction_id", "transaction %q does not exist", d.TransactionID)
		}
	}

	if pref := db.PaymentSettings.PreferredAccountID; pref != nil {
		if _, ok := db.Accounts[*pref]; !ok {
			return invalid("payment_settings.preferred_account_id", "account %q does not exist", *pref)
		}
	}

	if n := db.Surroundings.Device.RecentLoginAttempts; n < 0 {
		return invalid("surroundings.device.recent_login_attempts", "must be >= 0, got %d", n)
	}

	return nil
}
