package core

import (
	"errors"
	"math"
)

// MaxTermMonths is the longest term accepted from user input (100 years of
// monthly payments). The engine itself takes any positive term.
const MaxTermMonths = 1200

type (
	LoanInput struct {
		Principal         float64 `json:"principal"`
		AnnualRatePercent float64 `json:"annual_rate_percent"`
		TermMonths        int     `json:"term_months"`
	}

	PaymentScheduleItem struct {
		Month            int     `json:"month"`
		MonthlyPayment   float64 `json:"monthly_payment"`
		PrincipalPayment float64 `json:"principal_payment"`
		InterestPayment  float64 `json:"interest_payment"`
		RemainingBalance float64 `json:"remaining_balance"`
	}

	ScheduleResult struct {
		Schedule       []PaymentScheduleItem `json:"schedule"`
		MonthlyPayment float64               `json:"monthly_payment"`
		TotalInterest  float64               `json:"total_interest"`
		TotalAmount    float64               `json:"total_amount"`
	}
)

var (
	ErrInvalidPrincipal = errors.New("invalid principal")
	ErrInvalidRate      = errors.New("invalid interest rate")
	ErrInvalidTerm      = errors.New("invalid term")
)

func (in LoanInput) Validate() error {
	if math.IsNaN(in.Principal) || math.IsInf(in.Principal, 0) || in.Principal <= 0 {
		return ErrInvalidPrincipal
	}
	if math.IsNaN(in.AnnualRatePercent) || math.IsInf(in.AnnualRatePercent, 0) || in.AnnualRatePercent < 0 {
		return ErrInvalidRate
	}
	if in.TermMonths < 1 {
		return ErrInvalidTerm
	}
	return nil
}

// MonthlyRate returns the periodic rate as a fraction.
func (in LoanInput) MonthlyRate() float64 {
	return in.AnnualRatePercent / 100 / 12
}

// IsEmpty reports whether the result carries no schedule.
func (r ScheduleResult) IsEmpty() bool {
	return len(r.Schedule) == 0
}
