// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for extracting loan parameters from
// requests. The browser form posts url-encoded fields, API clients may send
// JSON, and GET requests carry the same fields in the query string.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// maxBodyBytes caps request bodies; a loan request is three short fields.
const maxBodyBytes = 16 << 10

// Field names accepted for each loan parameter, first match wins. The short
// names are what the calculator form posts.
var (
	amountFields = []string{"amount", "principal"}
	rateFields   = []string{"rate", "annual_rate_percent", "annual_rate"}
	monthsFields = []string{"months", "term_months", "term"}
)

// LoanParams holds the loan fields of a request as text, so incomplete
// input can be echoed back to the form unchanged.
type LoanParams struct {
	Amount string
	Rate   string
	Months string
}

// ParseLoanQuery extracts loan parameters from URL query values.
func ParseLoanQuery(query url.Values) LoanParams {
	get := func(keys []string) string {
		for _, k := range keys {
			if v := query.Get(k); v != "" {
				return sanitizeInput(v)
			}
		}
		return ""
	}
	return LoanParams{
		Amount: get(amountFields),
		Rate:   get(rateFields),
		Months: get(monthsFields),
	}
}

// ParseLoanRequest reads loan parameters from the query string for GET and
// from the body (JSON or form) otherwise.
func ParseLoanRequest(r *http.Request) (LoanParams, error) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return ParseLoanQuery(r.URL.Query()), nil
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return LoanParams{}, err
	}
	return LoanParams{
		Amount: p.First(amountFields...),
		Rate:   p.First(rateFields...),
		Months: p.First(monthsFields...),
	}, nil
}

// Query encodes the parameters with the form's field names, for links that
// reproduce a calculation.
func (p LoanParams) Query() string {
	v := url.Values{}
	if p.Amount != "" {
		v.Set("amount", p.Amount)
	}
	if p.Rate != "" {
		v.Set("rate", p.Rate)
	}
	if p.Months != "" {
		v.Set("months", p.Months)
	}
	return v.Encode()
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(r.Body)
	}
	return p
}

// ErrBodyTooLarge is returned when the request body exceeds maxBodyBytes.
var ErrBodyTooLarge = errors.New("request body too large")

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(p.err, &maxErr) {
			p.err = ErrBodyTooLarge
		}
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.IsJSONContent() || p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// First returns the first non-empty value among keys.
func (p *RequestBodyParser) First(keys ...string) string {
	for _, k := range keys {
		if v := p.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// IsJSONContent reports whether the Content-Type declares JSON.
func (p *RequestBodyParser) IsJSONContent() bool {
	return strings.HasPrefix(strings.ToLower(p.contentType), "application/json")
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts a decoded JSON value to string.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequireScheduleMethod accepts the methods ParseLoanRequest understands.
func RequireScheduleMethod(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead, http.MethodPost)
}
