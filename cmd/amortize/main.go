// Command amortize prints a loan's monthly payment and amortization
// schedule to the terminal.
//
//	amortize -amount 250,000 -rate 4.5 -months 360
//	amortize -amount 10000 -rate 0 -months 24 -yearly
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"amortize/internal/format"
	applog "amortize/internal/log"
	"amortize/internal/services"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("amortize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	amount := fs.String("amount", "", "loan amount, thousands separators allowed (e.g. 250,000)")
	rate := fs.String("rate", "", "annual interest rate in percent (e.g. 4.5)")
	months := fs.String("months", "", "term in months (e.g. 360)")
	yearly := fs.Bool("yearly", false, "print the per-year summary instead of every month")
	asJSON := fs.Bool("json", false, "print the result as JSON")
	verbose := fs.Bool("v", false, "log debug output to stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := applog.New(applog.Config{Level: level, Format: "text", Component: applog.ComponentApp, Output: stderr})

	calc := services.NewCalculator(nil, logger)
	q := calc.Quote(context.Background(), *amount, *rate, *months)

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(q); err != nil {
			logger.Error("Encode result failed", applog.FieldError, err.Error())
			return 1
		}
		if !q.Valid {
			return 1
		}
		return 0
	}

	if !q.Valid {
		fmt.Fprintf(stderr, "no schedule: %s\n", q.Reason)
		fs.Usage()
		return 1
	}

	if err := render(stdout, format.Default, q, *yearly); err != nil {
		logger.Error("Write output failed", applog.FieldError, err.Error())
		return 1
	}
	return 0
}

func render(w io.Writer, f *format.Formatter, q services.Quote, yearly bool) error {
	res := q.Result
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintf(tw, "Loan amount\t%s\t\n", f.Currency(q.Input.Principal))
	fmt.Fprintf(tw, "Annual rate\t%s\t\n", f.Percent(q.Input.AnnualRatePercent))
	fmt.Fprintf(tw, "Term\t%d months (~%d years)\t\n", q.Input.TermMonths, q.TermYears)
	fmt.Fprintf(tw, "Monthly payment\t%s\t\n", f.Currency(res.MonthlyPayment))
	fmt.Fprintf(tw, "Total interest\t%s\t\n", f.Currency(res.TotalInterest))
	fmt.Fprintf(tw, "Total amount\t%s\t\n", f.Currency(res.TotalAmount))
	fmt.Fprintln(tw, "\t\t")

	if yearly {
		fmt.Fprintln(tw, "Year\tMonths\tPrincipal\tInterest\tBalance\t")
		for _, y := range q.Years {
			fmt.Fprintf(tw, "%d\t%d-%d\t%s\t%s\t%s\t\n",
				y.Year, y.FirstMonth, y.LastMonth,
				f.Currency(y.PrincipalPaid), f.Currency(y.InterestPaid), f.Currency(y.EndingBalance))
		}
		return tw.Flush()
	}

	fmt.Fprintln(tw, "Month\tPayment\tPrincipal\tInterest\tBalance\t")
	for _, item := range res.Schedule {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t\n",
			item.Month,
			f.Currency(item.MonthlyPayment),
			f.Currency(item.PrincipalPayment),
			f.Currency(item.InterestPayment),
			f.Currency(item.RemainingBalance))
	}
	return tw.Flush()
}
