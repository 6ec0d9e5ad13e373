// Package core implements the fixed-rate amortization engine.
//
// Every function here is pure: the same input always yields the same
// schedule and nothing is retained between calls.
package core

import "math"

// ComputeSchedule builds the month-by-month amortization schedule for a
// fixed-rate loan. Out-of-domain input yields the zero ScheduleResult
// rather than an error.
func ComputeSchedule(in LoanInput) ScheduleResult {
	if err := in.Validate(); err != nil {
		return ScheduleResult{}
	}

	rate := in.MonthlyRate()
	payment := MonthlyPayment(in.Principal, rate, in.TermMonths)
	if math.IsNaN(payment) || math.IsInf(payment, 0) {
		return ScheduleResult{}
	}

	schedule := make([]PaymentScheduleItem, 0, in.TermMonths)
	balance := in.Principal
	totalInterest := 0.0

	for month := 1; month <= in.TermMonths; month++ {
		interest := balance * rate
		principal := payment - interest
		balance -= principal
		totalInterest += interest

		// the closed-form payment leaves float drift on the last period
		if month == in.TermMonths {
			balance = 0
		}

		schedule = append(schedule, PaymentScheduleItem{
			Month:            month,
			MonthlyPayment:   payment,
			PrincipalPayment: principal,
			InterestPayment:  interest,
			RemainingBalance: math.Max(0, balance),
		})
	}

	return ScheduleResult{
		Schedule:       schedule,
		MonthlyPayment: payment,
		TotalInterest:  totalInterest,
		TotalAmount:    in.Principal + totalInterest,
	}
}

// MonthlyPayment returns the constant payment that retires principal over
// months periods at the given periodic rate. A zero rate is repaid in
// equal straight-line installments.
func MonthlyPayment(principal, monthlyRate float64, months int) float64 {
	if months <= 0 {
		return 0
	}
	n := float64(months)
	// (1+r)^n - 1 through log1p/expm1 keeps its digits when r is tiny
	growthMinus1 := math.Expm1(n * math.Log1p(monthlyRate))
	if growthMinus1 == 0 {
		return principal / n
	}
	return principal * monthlyRate * (growthMinus1 + 1) / growthMinus1
}

// ScheduleFromText parses the raw field values and computes the schedule.
// Any parse failure produces the empty result.
func ScheduleFromText(principal, annualRate, termMonths string) ScheduleResult {
	in, err := ParseLoanInput(principal, annualRate, termMonths)
	if err != nil {
		return ScheduleResult{}
	}
	return ComputeSchedule(in)
}
