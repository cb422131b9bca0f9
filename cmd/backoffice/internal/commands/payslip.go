package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gosuda/backoffice/internal/domain"
	"github.com/gosuda/backoffice/internal/payslip"
	"github.com/gosuda/backoffice/internal/store"
)

var errPayslipNotExported = errors.New("payslip not exported") //nolint:gochecknoglobals // sentinel error

type PayslipCmd struct {
	ID         string `help:"Approved payroll entry to export" xor:"source"`
	Employee   string `help:"Employee name" xor:"source"`
	Period     string `help:"Pay period, e.g. 2025-01"`
	Gross      string `help:"Gross pay" default:"0"`
	Tax        string `help:"Tax" default:"0"`
	Deductions string `help:"Other deductions" default:"0"`
	Net        string `help:"Net pay" default:"0"`
	Notes      string `help:"Free-form notes"`
	Output     string `help:"Output file name (default <employee>_payslip_<period>.pdf)" short:"o"`
}

func (p *PayslipCmd) Run(ctx context.Context, globals *Globals) error {
	slip, err := p.payslip(ctx, globals.Store)
	if err != nil {
		return err
	}

	path, ok := globals.Payslips.Export(slip, p.Output)
	if !ok {
		return errPayslipNotExported
	}

	fmt.Fprintf(globals.Out, "Wrote %s\n", path)
	return nil
}

func (p *PayslipCmd) payslip(ctx context.Context, st *store.Store) (payslip.Payslip, error) {
	if p.ID != "" {
		entries, err := store.Read[domain.PayrollEntry](ctx, st, st.Key(ctx, domain.CollectionApprovedPayroll))
		if err != nil {
			return payslip.Payslip{}, fmt.Errorf("failed to read approved payroll: %w", err)
		}
		for _, e := range entries {
			if e.ID == p.ID {
				return payslip.FromPayroll(e), nil
			}
		}
		return payslip.Payslip{}, fmt.Errorf("approved payroll entry %q: %w", p.ID, domain.ErrNotFound)
	}

	if p.Employee == "" {
		return payslip.Payslip{}, errors.New("either --id or --employee is required")
	}

	amounts := make([]decimal.Decimal, 4)
	for i, raw := range []string{p.Gross, p.Tax, p.Deductions, p.Net} {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return payslip.Payslip{}, fmt.Errorf("invalid amount %q: %w", raw, err)
		}
		amounts[i] = d
	}

	return payslip.Payslip{
		EmployeeName: p.Employee,
		Period:       p.Period,
		Gross:        amounts[0],
		Tax:          amounts[1],
		Deductions:   amounts[2],
		Net:          amounts[3],
		Notes:        p.Notes,
	}, nil
}
