package services

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"amortize/internal/cache"
	"amortize/internal/core"
	applog "amortize/internal/log"
)

type countingCache struct {
	mu   sync.Mutex
	data map[string]core.ScheduleResult
	gets int
	sets int
}

func newCountingCache() *countingCache {
	return &countingCache{data: make(map[string]core.ScheduleResult)}
}

func (c *countingCache) Get(_ context.Context, key string) (core.ScheduleResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.data[key]
	return v, ok
}

func (c *countingCache) Set(_ context.Context, key string, v core.ScheduleResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.data[key] = v
}

func (c *countingCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

func TestCalculator_Quote(t *testing.T) {
	ctx := context.Background()
	store := newCountingCache()
	calc := NewCalculator(store, applog.Discard())

	q := calc.Quote(ctx, "250,000", "4.5", "360")
	if !q.Valid {
		t.Fatalf("expected valid quote, got reason %q", q.Reason)
	}
	if len(q.Result.Schedule) != 360 {
		t.Fatalf("expected 360 rows, got %d", len(q.Result.Schedule))
	}
	if math.Abs(q.Result.MonthlyPayment-1266.71) > 0.005 {
		t.Fatalf("expected payment ~1266.71, got %v", q.Result.MonthlyPayment)
	}
	if q.TermYears != 30 {
		t.Fatalf("expected 30 years, got %d", q.TermYears)
	}
	if len(q.Years) != 30 {
		t.Fatalf("expected 30 yearly rows, got %d", len(q.Years))
	}
	if q.CacheHit {
		t.Fatal("first computation must not be a cache hit")
	}
	if store.sets != 1 {
		t.Fatalf("expected one cache write, got %d", store.sets)
	}

	again := calc.Quote(ctx, "250000", "4.50", "360")
	if !again.CacheHit {
		t.Fatal("expected the normalized input to hit the cache")
	}
	if again.Result.MonthlyPayment != q.Result.MonthlyPayment {
		t.Fatalf("cached payment %v differs from %v", again.Result.MonthlyPayment, q.Result.MonthlyPayment)
	}
}

func TestCalculator_IncompleteInput(t *testing.T) {
	ctx := context.Background()
	store := newCountingCache()
	calc := NewCalculator(store, applog.Discard())

	cases := []struct {
		name                  string
		principal, rate, term string
		wantYears             int
	}{
		{"all empty", "", "", "", 0},
		{"missing amount keeps years hint", "", "5", "24", 2},
		{"zero principal", "0", "5", "120", 10},
		{"negative rate", "1000", "-3", "12", 1},
		{"text term", "1000", "3", "ten", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := calc.Quote(ctx, tc.principal, tc.rate, tc.term)
			if q.Valid {
				t.Fatal("expected invalid quote")
			}
			if !q.Result.IsEmpty() || q.Result.MonthlyPayment != 0 || q.Result.TotalInterest != 0 || q.Result.TotalAmount != 0 {
				t.Fatalf("expected empty result, got %+v", q.Result)
			}
			if q.TermYears != tc.wantYears {
				t.Fatalf("expected years hint %d, got %d", tc.wantYears, q.TermYears)
			}
			if q.Reason == "" {
				t.Fatal("expected a reason for the empty quote")
			}
		})
	}

	if store.sets != 0 {
		t.Fatalf("invalid input must not be cached, got %d writes", store.sets)
	}
}

func TestCalculator_UnrepresentablePayment(t *testing.T) {
	calc := NewCalculator(nil, applog.Discard())
	q := calc.QuoteInput(context.Background(), core.LoanInput{Principal: 1000, AnnualRatePercent: 1e6, TermMonths: core.MaxTermMonths})
	if q.Valid || !q.Result.IsEmpty() {
		t.Fatalf("expected empty quote, got %+v", q.Result)
	}
}

func TestCalculator_TermLimit(t *testing.T) {
	calc := NewCalculator(nil, applog.Discard())

	q := calc.QuoteInput(context.Background(), core.LoanInput{Principal: 1000, AnnualRatePercent: 5, TermMonths: core.MaxTermMonths + 1})
	if q.Valid || !q.Result.IsEmpty() {
		t.Fatalf("expected terms over %d months to be refused, got %d items", core.MaxTermMonths, len(q.Result.Schedule))
	}

	q = calc.QuoteInput(context.Background(), core.LoanInput{Principal: 1000, AnnualRatePercent: 5, TermMonths: core.MaxTermMonths})
	if !q.Valid || len(q.Result.Schedule) != core.MaxTermMonths {
		t.Fatalf("expected %d items at the limit, got %d", core.MaxTermMonths, len(q.Result.Schedule))
	}
}

func TestCalculator_ConcurrentRequestsShareResult(t *testing.T) {
	ctx := context.Background()
	calc := NewCalculator(cache.NewLRUCache[core.ScheduleResult](16, time.Minute), applog.Discard())

	var wg sync.WaitGroup
	payments := make([]float64, 20)
	for i := range payments {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payments[i] = calc.Quote(ctx, "10000", "12", "24").Result.MonthlyPayment
		}(i)
	}
	wg.Wait()

	for i, p := range payments {
		if p != payments[0] {
			t.Fatalf("request %d got payment %v, want %v", i, p, payments[0])
		}
	}
}

func TestCacheKey(t *testing.T) {
	a := cacheKey(core.LoanInput{Principal: 250000, AnnualRatePercent: 4.5, TermMonths: 360})
	b := cacheKey(core.LoanInput{Principal: 250000, AnnualRatePercent: 4.5, TermMonths: 361})
	if a == b {
		t.Fatal("different terms must not share a cache key")
	}
	if a != "schedule:v1:250000|4.5|360" {
		t.Fatalf("unexpected key %q", a)
	}
}
