package domain

import "github.com/shopspring/decimal"

// PayrollEntry is an entry of the pending and approved payroll collections.
type PayrollEntry struct {
	ID           string          `json:"id"`
	EmployeeName string          `json:"employeeName"`
	Period       string          `json:"period"`
	Gross        decimal.Decimal `json:"gross"`
	Tax          decimal.Decimal `json:"tax"`
	Deductions   decimal.Decimal `json:"deductions"`
	Net          decimal.Decimal `json:"net"`
	Notes        string          `json:"notes,omitempty"`
	Account      string          `json:"account,omitempty"`
	Method       PaymentMethod   `json:"method,omitempty"`
}
