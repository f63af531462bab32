package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"trading-dashboard-go/internal/format"
	"trading-dashboard-go/internal/journal"
	"trading-dashboard-go/internal/models"
	"trading-dashboard-go/internal/pnl"

	"go.uber.org/zap"
)

// Server exposes the shell's state and actions as the JSON API behind the
// dashboard page.
type Server struct {
	server  *http.Server
	shell   *Shell
	journal *journal.Journal
	logger  *zap.Logger
}

// NewServer creates the dashboard API server.
func NewServer(shell *Shell, jnl *journal.Journal, logger *zap.Logger, port int) *Server {
	s := &Server{
		shell:   shell,
		journal: jnl,
		logger:  logger.Named("api-server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/summary", s.summaryHandler)
	mux.HandleFunc("/api/transactions", s.transactionsHandler)
	mux.HandleFunc("/api/futures", s.futuresHandler)
	mux.HandleFunc("/api/stocks", s.stocksHandler)
	mux.HandleFunc("/api/ltp", s.ltpHandler)
	mux.HandleFunc("/api/active-trades", s.activeTradesHandler)
	mux.HandleFunc("/api/page", s.pageHandler)
	mux.HandleFunc("/api/refresh", s.refreshHandler)
	mux.HandleFunc("/api/exit", s.exitHandler)
	mux.HandleFunc("/api/buy", s.buyHandler)
	mux.HandleFunc("/api/sell", s.sellHandler)
	mux.HandleFunc("/api/webhook-form", s.webhookFormHandler)
	mux.HandleFunc("/api/webhook-form/submit", s.webhookSubmitHandler)
	mux.HandleFunc("/api/futures-webhook-form", s.futuresWebhookFormHandler)
	mux.HandleFunc("/api/futures-webhook-form/submit", s.futuresWebhookSubmitHandler)
	mux.HandleFunc("/api/journal", s.journalHandler)
	mux.HandleFunc("/health", s.healthHandler)

	// Static assets for the page itself.
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/templates/index.html")
	})

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
	return s
}

// Start runs the HTTP server in a new goroutine.
func (s *Server) Start() {
	s.logger.Info("Starting dashboard server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("Dashboard server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping dashboard server...")
	return s.server.Shutdown(ctx)
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// summary is the top-of-page state: selected view, aggregate P&L for it,
// nav badge counts, load state and live toasts.
type summary struct {
	Page         Page    `json:"page"`
	PnL          float64 `json:"pnl"`
	PnLFormatted string  `json:"pnlFormatted"`
	PnLLabel     string  `json:"pnlLabel"`
	OpenOptions  int     `json:"openOptions"`
	AllOptions   int     `json:"allOptions"`
	OpenFutures  int     `json:"openFutures"`
	AllFutures   int     `json:"allFutures"`
	Loading      bool    `json:"loading"`
	Error        string  `json:"error,omitempty"`
	Toasts       []Toast `json:"toasts"`
}

func (s *Server) summaryHandler(w http.ResponseWriter, r *http.Request) {
	page := s.shell.Page()
	total := s.shell.CurrentPnL()
	options := s.shell.Options()
	futures := s.shell.Futures()

	label := "Options P&L"
	if isFuturesPage(page) {
		label = "Futures P&L"
	}

	s.writeJSON(w, summary{
		Page:         page,
		PnL:          total,
		PnLFormatted: format.SignedCurrency(total),
		PnLLabel:     label,
		OpenOptions:  len(pnl.OpenOptions(options)),
		AllOptions:   len(options),
		OpenFutures:  len(pnl.OpenFutures(futures)),
		AllFutures:   len(futures),
		Loading:      s.shell.Loading(),
		Error:        s.shell.CollectionError(),
		Toasts:       s.shell.Toasts(),
	})
}

// optionsRow is one options transaction plus its display strings.
type optionsRow struct {
	models.OptionsTransaction
	PnL             float64 `json:"pnl"`
	PnLFormatted    string  `json:"pnlFormatted"`
	PnLPercent      string  `json:"pnlPercent"`
	BuyFormatted    string  `json:"buyFormatted"`
	LtpFormatted    string  `json:"ltpFormatted"`
	TargetFormatted string  `json:"targetFormatted"`
	SLFormatted     string  `json:"slFormatted"`
	When            string  `json:"when"`
	Busy            bool    `json:"busy"`
}

func (s *Server) transactionsHandler(w http.ResponseWriter, r *http.Request) {
	transactions := s.shell.Options()
	if r.URL.Query().Get("open") == "true" {
		transactions = pnl.OpenOptions(transactions)
	}

	rows := make([]optionsRow, 0, len(transactions))
	for _, t := range transactions {
		p := t.PnL()
		rows = append(rows, optionsRow{
			OptionsTransaction: t,
			PnL:                p,
			PnLFormatted:       format.SignedCurrency(p),
			PnLPercent:         format.Percent(pnl.OptionsPercent(&t)),
			BuyFormatted:       format.Currency(t.BuyingPrice),
			LtpFormatted:       format.Currency(t.CurrentPrice),
			TargetFormatted:    format.Currency(t.Target),
			SLFormatted:        format.Currency(t.StopLoss),
			When:               format.DateTimeString(t.CreatedAt),
			Busy:               s.shell.IsBusy(t.ID),
		})
	}
	s.writeJSON(w, rows)
}

// futuresRow is one futures transaction plus its display strings.
type futuresRow struct {
	models.FuturesTransaction
	PnL             float64 `json:"pnl"`
	PnLFormatted    string  `json:"pnlFormatted"`
	PnLPercent      string  `json:"pnlPercent"`
	BuyFormatted    string  `json:"buyFormatted"`
	LtpFormatted    string  `json:"ltpFormatted"`
	TargetFormatted string  `json:"targetFormatted"`
	SLFormatted     string  `json:"slFormatted"`
	When            string  `json:"when"`
	Busy            bool    `json:"busy"`
}

func (s *Server) futuresHandler(w http.ResponseWriter, r *http.Request) {
	transactions := s.shell.Futures()
	if r.URL.Query().Get("open") == "true" {
		transactions = pnl.OpenFutures(transactions)
	}

	rows := make([]futuresRow, 0, len(transactions))
	for _, t := range transactions {
		p := t.PnL()
		rows = append(rows, futuresRow{
			FuturesTransaction: t,
			PnL:                p,
			PnLFormatted:       format.SignedCurrency(p),
			PnLPercent:         format.Percent(t.PnLPercent()),
			BuyFormatted:       format.Currency(t.BuyingPrice),
			LtpFormatted:       format.Currency(t.CurrentLtp),
			TargetFormatted:    format.Currency(t.Target),
			SLFormatted:        format.Currency(t.StopLoss),
			When:               format.DateTimeString(t.CreatedAt),
			Busy:               s.shell.IsBusy(t.ID),
		})
	}
	s.writeJSON(w, rows)
}

func (s *Server) stocksHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.shell.Stocks())
}

func (s *Server) ltpHandler(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		http.Error(w, "missing symbol", http.StatusBadRequest)
		return
	}
	ltp, err := s.shell.LastPrice(r.Context(), symbol)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.writeJSON(w, struct {
		Symbol       string  `json:"symbol"`
		Ltp          float64 `json:"ltp"`
		LtpFormatted string  `json:"ltpFormatted"`
	}{symbol, ltp, format.Currency(ltp)})
}

func (s *Server) activeTradesHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.shell.ActiveTrades())
}

func (s *Server) pageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Page Page `json:"page"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	s.shell.SetPage(body.Page)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.shell.Refresh(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) exitHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		TransactionID string `json:"transactionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.TransactionID == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.shell.ExitTransaction(r.Context(), body.TransactionID); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) buyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Symbol   string  `json:"symbol"`
		Quantity float64 `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Symbol == "" || body.Quantity <= 0 {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.shell.BuyStock(r.Context(), body.Symbol, body.Quantity); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sellHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		TradeID  int     `json:"tradeId"`
		Quantity float64 `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.TradeID == 0 || body.Quantity <= 0 {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.shell.SellActiveTrade(r.Context(), body.TradeID, body.Quantity); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) webhookFormHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, s.shell.WebhookForm())
	case http.MethodPut:
		var cfg models.WebhookConfig
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		s.shell.SetWebhookForm(cfg)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) webhookSubmitHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.shell.SubmitWebhook(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) futuresWebhookFormHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, s.shell.FuturesWebhookForm())
	case http.MethodPut:
		var cfg models.FuturesWebhookConfig
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		s.shell.SetFuturesWebhookForm(cfg)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) futuresWebhookSubmitHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.shell.SubmitFuturesWebhook(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) journalHandler(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		s.writeJSON(w, []journal.ActionRecord{})
		return
	}
	records, err := s.journal.Recent(100)
	if err != nil {
		s.logger.Error("Failed to read journal", zap.Error(err))
		http.Error(w, "failed to read journal", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, records)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}
