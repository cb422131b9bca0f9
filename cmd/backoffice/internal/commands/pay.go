package commands

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gosuda/backoffice/internal/domain"
)

type PayCmd struct {
	Method    string `help:"Payment method (bank, momo, wallet)" default:"bank"`
	Account   string `help:"Destination account" required:""`
	Amount    string `help:"Amount in cedis" required:""`
	Reference string `help:"Payment reference" default:""`
}

func (p *PayCmd) Run(ctx context.Context, globals *Globals) error {
	amount, err := decimal.NewFromString(p.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", p.Amount, err)
	}

	outcome, err := globals.Payments.Pay(ctx, domain.PaymentRequest{
		Method:    domain.PaymentMethod(p.Method),
		Account:   p.Account,
		Amount:    amount,
		Reference: p.Reference,
	})
	if err != nil {
		return fmt.Errorf("failed to pay: %w", err)
	}

	return printJSON(globals.Out, outcome)
}

type HistoryCmd struct{}

func (h *HistoryCmd) Run(ctx context.Context, globals *Globals) error {
	outcomes, err := globals.Payments.History(ctx)
	if err != nil {
		return fmt.Errorf("failed to read payments log: %w", err)
	}

	if len(outcomes) == 0 {
		fmt.Fprintln(globals.Out, "No payments found.")
		return nil
	}

	fmt.Fprintf(globals.Out, "%-22s %-8s %-20s %12s %-8s %s\n", "Tx ID", "Provider", "Account", "Amount", "Status", "Time")
	for _, o := range outcomes {
		status := "FAILED"
		if o.Success {
			status = "OK"
		}
		fmt.Fprintf(globals.Out, "%-22s %-8s %-20s %12s %-8s %s\n",
			o.TxID, o.Provider, o.Account, o.Amount.StringFixed(2), status, o.Time.Format("2006-01-02 15:04:05"))
	}
	return nil
}
