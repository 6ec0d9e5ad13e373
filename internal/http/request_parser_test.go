package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestParseLoanQuery(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
		want  LoanParams
	}{
		{
			name:  "form field names",
			query: url.Values{"amount": {"250,000"}, "rate": {"4.5"}, "months": {"360"}},
			want:  LoanParams{Amount: "250,000", Rate: "4.5", Months: "360"},
		},
		{
			name:  "api field names",
			query: url.Values{"principal": {"1000"}, "annual_rate_percent": {"12"}, "term_months": {"1"}},
			want:  LoanParams{Amount: "1000", Rate: "12", Months: "1"},
		},
		{
			name:  "short name wins",
			query: url.Values{"amount": {"5"}, "principal": {"6"}},
			want:  LoanParams{Amount: "5"},
		},
		{
			name:  "whitespace and control characters are dropped",
			query: url.Values{"amount": {"  1000\x00 "}, "rate": {"\t3"}},
			want:  LoanParams{Amount: "1000", Rate: "3"},
		},
		{
			name:  "empty",
			query: url.Values{},
			want:  LoanParams{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLoanQuery(tt.query); got != tt.want {
				t.Errorf("ParseLoanQuery() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseLoanRequest(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		target      string
		body        string
		contentType string
		want        LoanParams
		wantErr     bool
	}{
		{
			name:   "GET uses query",
			method: http.MethodGet,
			target: "/ui/schedule?amount=1000&rate=5&months=12",
			want:   LoanParams{Amount: "1000", Rate: "5", Months: "12"},
		},
		{
			name:        "form body",
			method:      http.MethodPost,
			target:      "/ui/schedule",
			body:        "amount=250%2C000&rate=4.5&months=360",
			contentType: "application/x-www-form-urlencoded",
			want:        LoanParams{Amount: "250,000", Rate: "4.5", Months: "360"},
		},
		{
			name:        "json numbers",
			method:      http.MethodPost,
			target:      "/api/schedule",
			body:        `{"principal": 250000, "annual_rate_percent": 4.5, "term_months": 360}`,
			contentType: "application/json",
			want:        LoanParams{Amount: "250000", Rate: "4.5", Months: "360"},
		},
		{
			name:   "json strings without content type",
			method: http.MethodPost,
			target: "/api/schedule",
			body:   `{"amount": "1,000", "rate": "3", "months": "12"}`,
			want:   LoanParams{Amount: "1,000", Rate: "3", Months: "12"},
		},
		{
			name:   "empty body",
			method: http.MethodPost,
			target: "/ui/schedule",
			want:   LoanParams{},
		},
		{
			name:        "malformed json",
			method:      http.MethodPost,
			target:      "/api/schedule",
			body:        `{"principal":`,
			contentType: "application/json",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			got, err := ParseLoanRequest(req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLoanRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseLoanRequest() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseLoanRequest_BodyTooLarge(t *testing.T) {
	body := "amount=" + strings.Repeat("9", maxBodyBytes+1)
	req := httptest.NewRequest(http.MethodPost, "/api/schedule", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if _, err := ParseLoanRequest(req); !errors.Is(err, ErrBodyTooLarge) {
		t.Fatalf("expected ErrBodyTooLarge, got %v", err)
	}
}

func TestLoanParamsQuery(t *testing.T) {
	p := LoanParams{Amount: "250,000", Rate: "4.5", Months: "360"}
	if got := p.Query(); got != "amount=250%2C000&months=360&rate=4.5" {
		t.Errorf("Query() = %q", got)
	}
	if got := (LoanParams{}).Query(); got != "" {
		t.Errorf("empty Query() = %q", got)
	}
	if got := pageURL(LoanParams{}); got != "/" {
		t.Errorf("pageURL() = %q", got)
	}
}

func TestRequireMethod(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodPost} {
		req := httptest.NewRequest(method, "/", nil)
		if resp := RequireScheduleMethod(req); resp != nil {
			t.Fatalf("%s should be accepted", method)
		}
	}

	req := httptest.NewRequest(http.MethodPut, "/", nil)
	resp := RequireScheduleMethod(req)
	if resp == nil {
		t.Fatal("PUT should be rejected")
	}
	w := httptest.NewRecorder()
	resp.Write(w)
	if w.Code != http.StatusMethodNotAllowed || w.Header().Get("Allow") != "GET, HEAD, POST" {
		t.Errorf("unexpected rejection: %d %q", w.Code, w.Header().Get("Allow"))
	}
}
