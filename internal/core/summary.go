package core

// YearSummary aggregates twelve consecutive schedule items.
type YearSummary struct {
	Year          int     `json:"year"`
	FirstMonth    int     `json:"first_month"`
	LastMonth     int     `json:"last_month"`
	PrincipalPaid float64 `json:"principal_paid"`
	InterestPaid  float64 `json:"interest_paid"`
	EndingBalance float64 `json:"ending_balance"`
}

// SummarizeByYear groups a schedule into loan years (months 1-12 form year
// 1, and so on). A trailing partial year is reported as its own entry.
func SummarizeByYear(schedule []PaymentScheduleItem) []YearSummary {
	if len(schedule) == 0 {
		return nil
	}

	years := make([]YearSummary, 0, (len(schedule)+11)/12)
	for _, item := range schedule {
		year := (item.Month-1)/12 + 1
		if len(years) == 0 || years[len(years)-1].Year != year {
			years = append(years, YearSummary{Year: year, FirstMonth: item.Month})
		}
		y := &years[len(years)-1]
		y.LastMonth = item.Month
		y.PrincipalPaid += item.PrincipalPayment
		y.InterestPaid += item.InterestPayment
		y.EndingBalance = item.RemainingBalance
	}
	return years
}
