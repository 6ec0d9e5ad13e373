package http

import (
	"amortize/internal/format"
	"amortize/internal/services"
)

const emptyPrompt = "Enter a loan amount, interest rate and term to see your payment schedule."

// formView echoes the user's input back into the calculator form.
type formView struct {
	Amount    string
	Rate      string
	Months    string
	TermYears int
}

// summaryView holds the headline figures, display-formatted.
type summaryView struct {
	MonthlyPayment string `json:"monthly_payment"`
	TotalInterest  string `json:"total_interest"`
	TotalAmount    string `json:"total_amount"`
	Principal      string `json:"principal"`
	Rate           string `json:"annual_rate"`
	TermMonths     int    `json:"term_months"`
}

type rowView struct {
	Month     int
	Payment   string
	Principal string
	Interest  string
	Balance   string
}

type yearView struct {
	Year       int
	FirstMonth int
	LastMonth  int
	Principal  string
	Interest   string
	Balance    string
}

// scheduleView is the data behind the results fragment.
type scheduleView struct {
	Valid   bool
	Prompt  string
	Summary summaryView
	Rows    []rowView
	Years   []yearView

	// Out-of-band updates for the form, set only on fragment responses.
	OOB            bool
	TermYears      int
	ReformatAmount bool
	Amount         string
}

type pageView struct {
	Form   formView
	Result scheduleView
}

func newFormView(f *format.Formatter, p LoanParams, q services.Quote) formView {
	return formView{
		Amount:    f.AmountInput(p.Amount),
		Rate:      p.Rate,
		Months:    p.Months,
		TermYears: q.TermYears,
	}
}

func newScheduleView(f *format.Formatter, q services.Quote) scheduleView {
	v := scheduleView{Valid: q.Valid, TermYears: q.TermYears}
	if !q.Valid {
		v.Prompt = emptyPrompt
		return v
	}

	res := q.Result
	v.Summary = summaryView{
		MonthlyPayment: f.Currency(res.MonthlyPayment),
		TotalInterest:  f.Currency(res.TotalInterest),
		TotalAmount:    f.Currency(res.TotalAmount),
		Principal:      f.Currency(q.Input.Principal),
		Rate:           f.Percent(q.Input.AnnualRatePercent),
		TermMonths:     q.Input.TermMonths,
	}

	v.Rows = make([]rowView, len(res.Schedule))
	for i, item := range res.Schedule {
		v.Rows[i] = rowView{
			Month:     item.Month,
			Payment:   f.Currency(item.MonthlyPayment),
			Principal: f.Currency(item.PrincipalPayment),
			Interest:  f.Currency(item.InterestPayment),
			Balance:   f.Currency(item.RemainingBalance),
		}
	}

	// a single loan year adds nothing over the table itself
	if len(q.Years) > 1 {
		v.Years = make([]yearView, len(q.Years))
		for i, y := range q.Years {
			v.Years[i] = yearView{
				Year:       y.Year,
				FirstMonth: y.FirstMonth,
				LastMonth:  y.LastMonth,
				Principal:  f.Currency(y.PrincipalPaid),
				Interest:   f.Currency(y.InterestPaid),
				Balance:    f.Currency(y.EndingBalance),
			}
		}
	}
	return v
}
