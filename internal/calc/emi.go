package calc

import "math"

// LoanParameters describes a fixed-rate loan repaid in equal monthly installments.
type LoanParameters struct {
	Principal         float64 `json:"principal"`
	AnnualRatePercent float64 `json:"annual_rate_percent"`
	TermMonths        int     `json:"term_months"`
}

// AmortizationResult is the outcome of an EMI calculation.
type AmortizationResult struct {
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalPayment   float64 `json:"total_payment"`
	TotalInterest  float64 `json:"total_interest"`
}

// Installment is one row of an amortization schedule.
type Installment struct {
	Month     int     `json:"month"`
	Payment   float64 `json:"payment"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"`
}

// Validate checks the loan parameters.
func (p LoanParameters) Validate() error {
	if err := requirePositive("principal", p.Principal); err != nil {
		return err
	}
	if err := requireNonNegative("annual_rate_percent", p.AnnualRatePercent); err != nil {
		return err
	}
	if p.TermMonths < 1 {
		return invalid("term_months", "must be at least 1")
	}
	return nil
}

// Amortize computes the equated monthly installment that repays the
// principal in TermMonths equal payments at the given annual rate.
func Amortize(p LoanParameters) (AmortizationResult, error) {
	if err := p.Validate(); err != nil {
		return AmortizationResult{}, err
	}

	n := float64(p.TermMonths)
	r := monthlyRate(p.AnnualRatePercent)

	if r == 0 {
		return AmortizationResult{
			MonthlyPayment: p.Principal / n,
			TotalPayment:   p.Principal,
			TotalInterest:  0,
		}, nil
	}

	factor := math.Pow(1+r, n)
	emi := p.Principal * r * factor / (factor - 1)
	total := emi * n

	return AmortizationResult{
		MonthlyPayment: emi,
		TotalPayment:   total,
		TotalInterest:  math.Max(0, total-p.Principal),
	}, nil
}

// Schedule splits every installment into its interest and principal parts.
// The final row absorbs floating-point residue so the closing balance is zero.
func Schedule(p LoanParameters) ([]Installment, error) {
	res, err := Amortize(p)
	if err != nil {
		return nil, err
	}

	r := monthlyRate(p.AnnualRatePercent)
	balance := p.Principal
	rows := make([]Installment, 0, p.TermMonths)

	for m := 1; m <= p.TermMonths; m++ {
		interest := balance * r
		principal := res.MonthlyPayment - interest
		payment := res.MonthlyPayment
		if m == p.TermMonths {
			principal = balance
			payment = principal + interest
		}
		balance -= principal
		rows = append(rows, Installment{
			Month:     m,
			Payment:   payment,
			Principal: principal,
			Interest:  interest,
			Balance:   math.Max(0, balance),
		})
	}
	return rows, nil
}
