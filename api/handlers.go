package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/womenwealthwave/wealthwave/internal/calc"
	"github.com/womenwealthwave/wealthwave/internal/chat"
	"github.com/womenwealthwave/wealthwave/internal/learn"
	"github.com/womenwealthwave/wealthwave/internal/report"
	"github.com/womenwealthwave/wealthwave/pkg/utils"
)

const (
	defaultArticleLimit = 10
	maxArticleLimit     = 50
	chatTimeout         = 2 * time.Minute
)

// ============================================================
// Health
// ============================================================

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	TimeIST   string            `json:"time_ist"`
	Providers map[string]string `json:"providers,omitempty"`
}

// handleHealth reports liveness. With ?check=llm it also pings every
// registered LLM provider.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Service: ServiceName,
		Version: s.version,
		TimeIST: utils.FormatDateTimeIST(utils.NowIST()),
	}

	if r.URL.Query().Get("check") == "llm" && s.llm != nil {
		resp.Providers = make(map[string]string)
		for name, err := range s.llm.HealthCheck(r.Context()) {
			if err != nil {
				resp.Providers[name] = err.Error()
				resp.Status = "degraded"
				continue
			}
			resp.Providers[name] = "ok"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ============================================================
// Chat
// ============================================================

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), chatTimeout)
	defer cancel()

	resp, err := s.chat.Submit(ctx, req.Message, req.ChatHistory)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "Message cannot be empty")
		return
	case err != nil:
		s.log.WithError(err).WithField("user_id", req.UserID).Error("chat request failed")
		writeError(w, http.StatusInternalServerError, "An error occurred: "+err.Error())
		return
	}

	if resp.Sources == nil {
		resp.Sources = []string{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ============================================================
// Calculators
// ============================================================

// writeCalcResult answers 422 for invalid input, 500 for anything else.
func (s *Server) writeCalcResult(w http.ResponseWriter, v any, err error) {
	switch {
	case errors.Is(err, calc.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case err != nil:
		s.log.WithError(err).Error("calculation failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, v)
	}
}

func (s *Server) handleEMI(w http.ResponseWriter, r *http.Request) {
	var p calc.LoanParameters
	if !decodeJSON(w, r, &p) {
		return
	}
	res, err := calc.Amortize(p)
	s.writeCalcResult(w, res, err)
}

func (s *Server) handleEMISchedule(w http.ResponseWriter, r *http.Request) {
	var p calc.LoanParameters
	if !decodeJSON(w, r, &p) {
		return
	}
	rows, err := calc.Schedule(p)
	s.writeCalcResult(w, rows, err)
}

func (s *Server) handleSIP(w http.ResponseWriter, r *http.Request) {
	var p calc.ContributionPlan
	if !decodeJSON(w, r, &p) {
		return
	}
	res, err := calc.Grow(p)
	s.writeCalcResult(w, res, err)
}

func (s *Server) handleGoal(w http.ResponseWriter, r *http.Request) {
	var p calc.GoalParameters
	if !decodeJSON(w, r, &p) {
		return
	}
	res, err := calc.ProjectGoal(p)
	s.writeCalcResult(w, res, err)
}

func (s *Server) handleTax(w http.ResponseWriter, r *http.Request) {
	var p calc.TaxParameters
	if !decodeJSON(w, r, &p) {
		return
	}
	res, err := calc.EstimateTax(p, s.slabs())
	s.writeCalcResult(w, res, err)
}

func (s *Server) handleSavings(w http.ResponseWriter, r *http.Request) {
	var p calc.SavingsSnapshot
	if !decodeJSON(w, r, &p) {
		return
	}
	res, err := calc.TrackSavings(p)
	s.writeCalcResult(w, res, err)
}

func (s *Server) handleTaxSlabs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.slabs())
}

func (s *Server) slabs() calc.SlabTable {
	if len(s.cfg.Tax.Slabs) > 0 {
		return s.cfg.Tax.Slabs
	}
	return calc.DefaultSlabs()
}

// handleReport renders a plan. ?format=text|html|pdf, default html.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var plan report.Plan
	if !decodeJSON(w, r, &plan) {
		return
	}
	plan.Quotes = s.ticker.Snapshot()

	cfg := report.DefaultConfig()
	if title := r.URL.Query().Get("title"); title != "" {
		cfg.Title = title
	}

	format := report.Format(r.URL.Query().Get("format"))
	var (
		body        string
		contentType string
		err         error
	)
	switch format {
	case "", report.FormatHTML:
		body, err = report.GenerateHTML(plan, s.slabs(), cfg)
		contentType = "text/html; charset=utf-8"
	case report.FormatText:
		body, err = report.GenerateText(plan, s.slabs(), cfg)
		contentType = "text/plain; charset=utf-8"
	case report.FormatPDF:
		if _, err := report.Compute(plan, s.slabs()); err != nil {
			s.writeCalcResult(w, nil, err)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="wealthwave-plan.pdf"`)
		if err := report.GeneratePDF(w, plan, s.slabs(), cfg); err != nil {
			s.log.WithError(err).Error("pdf render failed")
		}
		return
	default:
		writeError(w, http.StatusBadRequest, "Unknown report format: "+string(format))
		return
	}

	if err != nil {
		s.writeCalcResult(w, nil, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body)) //nolint:errcheck
}

// ============================================================
// Market
// ============================================================

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ticker.Snapshot())
}

// ============================================================
// Learn
// ============================================================

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, learn.DefaultCatalog())
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	limit := defaultArticleLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxArticleLimit)
	}

	articles, err := s.feed.Articles(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Could not load articles: "+err.Error())
		return
	}
	if articles == nil {
		articles = []learn.Article{}
	}
	writeJSON(w, http.StatusOK, articles)
}
