// Package services provides business logic and orchestration services.
package services

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	"amortize/internal/cache"
	"amortize/internal/core"
	"amortize/internal/format"
	applog "amortize/internal/log"
)

const cacheKeyPrefix = "schedule:v1:"

// Quote is one calculator answer: the parsed input, the schedule and the
// derived figures the presentation layer shows next to it.
type Quote struct {
	Input     core.LoanInput      `json:"input"`
	Result    core.ScheduleResult `json:"result"`
	Years     []core.YearSummary  `json:"years,omitempty"`
	TermYears int                 `json:"term_years"`
	Valid     bool                `json:"valid"`
	Reason    string              `json:"reason,omitempty"`
	CacheHit  bool                `json:"-"`
}

// Calculator recomputes a quote every time the inputs change. Results are
// memoized by normalized input and concurrent identical requests share a
// single computation.
type Calculator struct {
	cache  cache.Cache[core.ScheduleResult]
	group  singleflight.Group
	logger *applog.Logger
	slog   *applog.StructuredLogger
}

// NewCalculator creates a Calculator. A nil cache disables memoization.
func NewCalculator(c cache.Cache[core.ScheduleResult], logger *applog.Logger) *Calculator {
	if c == nil {
		c = cache.Nop[core.ScheduleResult]{}
	}
	logger = logger.WithComponent(applog.ComponentCalculator)
	return &Calculator{
		cache:  c,
		logger: logger,
		slog:   applog.NewStructuredLogger(logger),
	}
}

// Quote parses the raw field values and computes the schedule. Incomplete
// or invalid input is not an error: it yields an empty, invalid Quote that
// still carries the years hint when the term alone is usable.
func (c *Calculator) Quote(ctx context.Context, principal, annualRate, termMonths string) Quote {
	in, err := core.ParseLoanInput(principal, annualRate, termMonths)
	if err != nil {
		c.logger.DebugContext(ctx, "Incomplete loan input",
			applog.FieldOperation, applog.OpParse, applog.FieldError, err.Error())
		return Quote{TermYears: termHint(termMonths), Reason: err.Error()}
	}
	return c.QuoteInput(ctx, in)
}

// QuoteInput computes the quote for an already numeric input.
func (c *Calculator) QuoteInput(ctx context.Context, in core.LoanInput) Quote {
	err := in.Validate()
	if err == nil && in.TermMonths > core.MaxTermMonths {
		err = core.ErrInvalidTerm
	}
	if err != nil {
		return Quote{Input: in, TermYears: termHint(strconv.Itoa(in.TermMonths)), Reason: err.Error()}
	}

	key := cacheKey(in)
	res, hit := c.cache.Get(ctx, key)
	if !hit {
		// the first caller's cancellation must not poison the shared result
		storeCtx := context.WithoutCancel(ctx)
		v, _, _ := c.group.Do(key, func() (any, error) {
			r := core.ComputeSchedule(in)
			if !r.IsEmpty() {
				c.cache.Set(storeCtx, key, r)
			}
			return r, nil
		})
		res = v.(core.ScheduleResult)
	}

	c.slog.LogScheduleComputed(ctx, in.Principal, in.AnnualRatePercent, in.TermMonths, res.MonthlyPayment, hit)

	q := Quote{
		Input:     in,
		Result:    res,
		TermYears: format.Years(in.TermMonths),
		Valid:     !res.IsEmpty(),
		CacheHit:  hit,
	}
	if q.Valid {
		q.Years = core.SummarizeByYear(res.Schedule)
	} else {
		q.Reason = "payment is not representable for this input"
	}
	return q
}

func cacheKey(in core.LoanInput) string {
	return cacheKeyPrefix +
		strconv.FormatFloat(in.Principal, 'g', -1, 64) + "|" +
		strconv.FormatFloat(in.AnnualRatePercent, 'g', -1, 64) + "|" +
		strconv.Itoa(in.TermMonths)
}

func termHint(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0
	}
	return format.Years(n)
}
