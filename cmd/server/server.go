package main

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"tickerweb/internal/provider"
	"tickerweb/internal/report"
	"tickerweb/internal/symbols"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type server struct {
	p          provider.Provider
	opts       report.Options
	maxSymbols int
	maxBody    int64
	log        *zap.Logger
}

type pageData struct {
	Input     string
	Submitted bool
	Rows      []report.Row
}

type quotesResponse struct {
	Provider    string       `json:"provider"`
	GeneratedAt time.Time    `json:"generated_at"`
	Rows        []report.Row `json:"rows"`
}

type postBody struct {
	Symbols []string `json:"symbols"`
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/quotes", s.handleQuotesPage)
	mux.Handle("/api/quotes", withJSONHeaders(http.HandlerFunc(s.handleAPIQuotes)))

	return requestLog(s.log, limitBody(s.maxBody, withGzip(recoverPanic(mux))))
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.renderPage(w, r, pageData{})
}

func (s *server) handleQuotesPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	input := r.FormValue("tickers")
	syms := symbols.Parse(input)
	if len(syms) == 0 {
		s.renderPage(w, r, pageData{Input: input})
		return
	}
	if len(syms) > s.maxSymbols {
		http.Error(w, fmt.Sprintf("too many symbols (max %d)", s.maxSymbols), http.StatusBadRequest)
		return
	}
	rows := s.build(r, syms)
	s.renderPage(w, r, pageData{Input: input, Submitted: true, Rows: rows})
}

func (s *server) handleAPIQuotes(w http.ResponseWriter, r *http.Request) {
	var syms []symbols.Symbol
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query().Get("symbols")
		if strings.TrimSpace(q) == "" {
			writeJSONError(w, http.StatusBadRequest, "missing symbols query param")
			return
		}
		syms = symbols.Parse(q)
	case http.MethodPost:
		var b postBody
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&b); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		syms = symbols.ParseAll(b.Symbols)
	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if len(syms) == 0 {
		writeJSONError(w, http.StatusBadRequest, "symbols cannot be empty")
		return
	}
	if len(syms) > s.maxSymbols {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("too many symbols (max %d)", s.maxSymbols))
		return
	}

	resp := quotesResponse{
		Provider:    s.p.Name(),
		GeneratedAt: time.Now().UTC(),
		Rows:        s.build(r, syms),
	}
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(resp); err != nil {
		loggerFrom(r.Context(), s.log).Warn("encode response", zap.Error(err))
	}
}

func (s *server) build(r *http.Request, syms []symbols.Symbol) []report.Row {
	log := loggerFrom(r.Context(), s.log)
	opts := s.opts
	opts.Logger = log

	start := time.Now()
	rows := report.Build(r.Context(), s.p, syms, opts)
	log.Info("batch done",
		zap.Int("symbols", len(syms)),
		zap.Duration("took", time.Since(start)),
	)
	return rows
}

func (s *server) renderPage(w http.ResponseWriter, r *http.Request, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		loggerFrom(r.Context(), s.log).Error("render page", zap.Error(err))
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
