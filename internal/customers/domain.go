package customers

import (
	"time"

	"github.com/sabaipos/sabaipos/internal/money"
)

// Customer represents a credit account holder.
type Customer struct {
	CustomerID  string      `json:"customer_id"`
	Name        string      `json:"name"`
	Phone       string      `json:"phone"`
	Email       string      `json:"email"`
	Address     string      `json:"address"`
	CreditLimit money.Money `json:"credit_limit"`
	CreditDays  int         `json:"credit_days"`
	TotalDebt   money.Money `json:"total_debt"`
	Notes       string      `json:"notes"`
	CreatedAt   time.Time   `json:"created_at"`
}

// AvailableCredit is the headroom left under the customer's credit limit.
func (c Customer) AvailableCredit() money.Money {
	return c.CreditLimit - c.TotalDebt
}

// CustomerInput carries fields for create and update operations. TotalDebt
// is absent on purpose: debt moves only through credit ledger transactions.
type CustomerInput struct {
	CustomerID  string      `json:"customer_id"`
	Name        string      `json:"name"`
	Phone       string      `json:"phone"`
	Email       string      `json:"email"`
	Address     string      `json:"address"`
	CreditLimit money.Money `json:"credit_limit"`
	CreditDays  int         `json:"credit_days"`
	Notes       string      `json:"notes"`
}
