package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	applog "amortize/internal/log"
	"amortize/internal/middleware/trace"
	"amortize/internal/services"
)

const readinessTimeout = 3 * time.Second

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	m := s.RequestMetrics()
	health := map[string]any{
		"status":          "ok",
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
		"uptime":          time.Since(s.started).Round(time.Second).String(),
		"requests":        m.TotalRequests,
		"avg_response_us": m.AverageResponseTimeUs,
	}
	if s.limiter != nil {
		health["rate_limit"] = s.limiter.GetMetrics()
	}
	_ = writeJSON(w, http.StatusOK, health)
}

// handleReady runs every registered dependency check.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]string{"templates": "ok"}

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.checks[name](ctx); err != nil {
			checks[name] = "failed: " + err.Error()
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
			s.logger.WarnContext(ctx, "Readiness check failed", "check", name, applog.FieldError, err.Error())
			continue
		}
		checks[name] = "ok"
	}

	_ = writeJSON(w, httpStatus, map[string]any{
		"status": status,
		"checks": checks,
	})
}

// handleIndex renders the calculator page. Query parameters prefill the
// form so a calculation can be bookmarked.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Page not found").Write(w)
		return
	}
	if resp := RequireMethod(r, http.MethodGet, http.MethodHead); resp != nil {
		resp.Write(w)
		return
	}

	p := ParseLoanQuery(r.URL.Query())
	q := s.calc.Quote(r.Context(), p.Amount, p.Rate, p.Months)

	page := pageView{
		Form:   newFormView(s.format, p, q),
		Result: newScheduleView(s.format, q),
	}
	html, err := s.execute(r.Context(), "index.html", page)
	if err != nil {
		InternalServerError("Something went wrong rendering the page").Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(html).Write(w)
}

// handleSchedule recomputes the schedule for the current form values and
// returns the results fragment htmx swaps into the page.
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	if resp := RequireScheduleMethod(r); resp != nil {
		resp.Write(w)
		return
	}

	p, err := ParseLoanRequest(r)
	if err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Unreadable schedule request",
			applog.FieldOperation, applog.OpParse, applog.FieldError, err.Error())
		BadRequestError("Invalid request format").Write(w)
		return
	}

	q := s.calc.Quote(r.Context(), p.Amount, p.Rate, p.Months)

	v := newScheduleView(s.format, q)
	v.OOB = true
	// the amount field reformats itself only once the user leaves it
	if r.Header.Get("HX-Trigger-Name") == "amount" {
		v.ReformatAmount = true
		v.Amount = s.format.AmountInput(p.Amount)
	}

	html, err := s.execute(r.Context(), "schedule_fragment", v)
	if err != nil {
		InternalServerError("Something went wrong rendering the schedule").Write(w)
		return
	}

	resp := NewHTMXResponse().
		BodyHTML(html).
		TriggerScheduleUpdated(v.Valid, v.Summary.MonthlyPayment)
	if isHTMX(r) {
		resp.PushURL(pageURL(p))
	}
	resp.Write(w)
}

type apiScheduleResponse struct {
	services.Quote
	Formatted *summaryView `json:"formatted,omitempty"`
}

// handleAPISchedule serves the same computation as JSON. Incomplete input
// is not an error: the response carries valid=false and an empty result.
func (s *Server) handleAPISchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, HEAD, POST")
		_ = writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	p, err := ParseLoanRequest(r)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		_ = writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	q := s.calc.Quote(r.Context(), p.Amount, p.Rate, p.Months)
	resp := apiScheduleResponse{Quote: q}
	if q.Valid {
		sv := newScheduleView(s.format, q).Summary
		resp.Formatted = &sv
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Encode schedule response failed", applog.FieldError, err.Error())
	}
}

// execute renders a template into memory so a failure never leaves a
// half-written response.
func (s *Server) execute(ctx context.Context, name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.slog.LogError(ctx, "Template execution failed", err, applog.ComponentTemplate, applog.OpRender,
			applog.NewFields().WithRequestID(trace.GetRequestID(ctx)).WithTemplate(name))
		return nil, err
	}
	return buf.Bytes(), nil
}

func pageURL(p LoanParams) string {
	if q := p.Query(); q != "" {
		return "/?" + q
	}
	return "/"
}
