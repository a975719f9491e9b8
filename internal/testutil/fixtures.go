package testutil

// BankingState returns a fresh raw configuration describing a typical
// customer: a checking and a savings account, an active debit card, a
// blocked credit card with a limit, two transactions and one open
// dispute. Every call returns a new map, so callers may modify it.
func BankingState() map[string]any {
	return map[string]any{
		"accounts": map[string]any{
			"A1": map[string]any{
				"account_type": "checking",
				"balance":      "120.50",
			},
			"A2": map[string]any{
				"account_type":      "savings",
				"balance":           2500,
				"overdraft_enabled": false,
			},
		},
		"cards": map[string]any{
			"C1": map[string]any{
				"linked_account": "A1",
			},
			"C2": map[string]any{
				"linked_account": "A2",
				"status":         "blocked",
				"credit_limit":   1000,
				"current_usage":  "250.00",
			},
		},
		"transactions": map[string]any{
			"T1": map[string]any{
				"amount":   "-42.10",
				"merchant": "Corner Grocery",
				"status":   "cleared",
				"card_id":  "C1",
			},
			"T2": map[string]any{
				"amount":   "-899.99",
				"merchant": "Electronics Hub",
				"status":   "disputed",
				"card_id":  "C2",
				"disputed": true,
			},
		},
		"disputes": map[string]any{
			"D1": map[string]any{
				"transaction_id": "T2",
				"reason":         "item never arrived",
			},
		},
		"payment_settings": map[string]any{
			"auto_pay_enabled":     true,
			"preferred_account_id": "A1",
		},
	}
}
