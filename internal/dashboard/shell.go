package dashboard

import (
	"context"
	"strconv"
	"sync"
	"time"

	"trading-dashboard-go/internal/journal"
	"trading-dashboard-go/internal/models"
	"trading-dashboard-go/internal/pnl"
	"trading-dashboard-go/internal/tradeapi"

	"go.uber.org/zap"
)

// Page identifies one of the dashboard's fixed views.
type Page string

const (
	PageHome            Page = "home"
	PageAllOptions      Page = "all-orders"
	PageOptionsSettings Page = "settings"
	PageFutures         Page = "futures"
	PageAllFutures      Page = "all-futures-orders"
	PageFuturesSettings Page = "futures-settings"
	PageStocks          Page = "stocks"
	PageActiveTrades    Page = "active-trades"
)

// isFuturesPage reports whether a page is backed by the futures collection.
func isFuturesPage(p Page) bool {
	return p == PageFutures || p == PageAllFutures || p == PageFuturesSettings
}

// collectionState tracks the orthogonal load state of one fetched collection.
// The generation counter increments on every fetch start; a fetch result is
// applied only if no newer fetch has started since, so a slow stale response
// can never clobber fresher data.
type collectionState struct {
	loading bool
	err     string
	gen     uint64
}

// Toast is a transient user notification. Expired toasts are pruned on read
// and never block interaction.
type Toast struct {
	Message   string    `json:"message"`
	Severity  string    `json:"severity"` // "success" or "error"
	ExpiresAt time.Time `json:"-"`
}

// Shell owns the dashboard's view state: the current page, the fetched
// collections, per-row busy flags and transient notifications. All methods
// are safe for concurrent use; each collection's state is isolated so one
// failing fetch never corrupts another.
type Shell struct {
	client   tradeapi.ClientInterface
	journal  *journal.Journal
	logger   *zap.Logger
	pageSize int
	toastTTL time.Duration
	now      func() time.Time

	mu           sync.Mutex
	page         Page
	options      []models.OptionsTransaction
	futures      []models.FuturesTransaction
	stocks       []models.Stock
	activeTrades []models.ActiveTrade

	optionsState collectionState
	futuresState collectionState
	stocksState  collectionState
	tradesState  collectionState

	busy map[string]struct{}

	webhookForm        models.WebhookConfig
	futuresWebhookForm models.FuturesWebhookConfig
	webhookBusy        bool
	futuresWebhookBusy bool

	toasts []Toast
}

// NewShell creates the dashboard state container. The journal may be nil;
// actions then simply go unrecorded.
func NewShell(client tradeapi.ClientInterface, jnl *journal.Journal, logger *zap.Logger, futuresPageSize int, toastTTL time.Duration) *Shell {
	if futuresPageSize <= 0 {
		futuresPageSize = 200
	}
	if toastTTL <= 0 {
		toastTTL = 3 * time.Second
	}
	return &Shell{
		client:             client,
		journal:            jnl,
		logger:             logger,
		pageSize:           futuresPageSize,
		toastTTL:           toastTTL,
		now:                time.Now,
		page:               PageHome,
		busy:               make(map[string]struct{}),
		webhookForm:        models.DefaultWebhookConfig(),
		futuresWebhookForm: models.DefaultFuturesWebhookConfig(),
	}
}

// Page returns the currently selected view.
func (s *Shell) Page() Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// SetPage switches the current view. Unknown pages are ignored.
func (s *Shell) SetPage(p Page) {
	switch p {
	case PageHome, PageAllOptions, PageOptionsSettings,
		PageFutures, PageAllFutures, PageFuturesSettings,
		PageStocks, PageActiveTrades:
	default:
		return
	}
	s.mu.Lock()
	s.page = p
	s.mu.Unlock()
}

// LoadAll fetches every collection concurrently. Each fetch's failure is
// isolated: a futures failure leaves already-loaded options data intact and
// is recorded only as that collection's error message.
func (s *Shell) LoadAll(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(4)
	go func() { defer wg.Done(); s.FetchOptions(ctx) }()
	go func() { defer wg.Done(); s.FetchFutures(ctx) }()
	go func() { defer wg.Done(); s.FetchStocks(ctx) }()
	go func() { defer wg.Done(); s.FetchActiveTrades(ctx) }()
	wg.Wait()
}

// Refresh refetches only the collection backing the currently visible page.
func (s *Shell) Refresh(ctx context.Context) {
	switch p := s.Page(); {
	case isFuturesPage(p):
		s.FetchFutures(ctx)
	case p == PageStocks:
		s.FetchStocks(ctx)
	case p == PageActiveTrades:
		s.FetchActiveTrades(ctx)
	default:
		s.FetchOptions(ctx)
	}
}

// beginFetch marks a collection loading and returns the generation token the
// result must present to be applied.
func (s *Shell) beginFetch(st *collectionState) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.gen++
	st.loading = true
	return st.gen
}

// FetchOptions refetches the options transactions collection.
func (s *Shell) FetchOptions(ctx context.Context) {
	gen := s.beginFetch(&s.optionsState)
	items, err := s.client.ListOptionsTransactions(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.optionsState.gen != gen {
		return // a newer fetch superseded this one
	}
	s.optionsState.loading = false
	if err != nil {
		s.logger.Error("Failed to fetch options transactions", zap.Error(err))
		s.optionsState.err = err.Error()
		return
	}
	s.optionsState.err = ""
	s.options = items
}

// FetchFutures refetches the first page of futures transactions.
func (s *Shell) FetchFutures(ctx context.Context) {
	gen := s.beginFetch(&s.futuresState)
	items, err := s.client.ListFuturesTransactions(ctx, 1, s.pageSize)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.futuresState.gen != gen {
		return
	}
	s.futuresState.loading = false
	if err != nil {
		s.logger.Error("Failed to fetch futures transactions", zap.Error(err))
		s.futuresState.err = err.Error()
		return
	}
	s.futuresState.err = ""
	s.futures = items
}

// FetchStocks refetches the instrument listing.
func (s *Shell) FetchStocks(ctx context.Context) {
	gen := s.beginFetch(&s.stocksState)
	items, err := s.client.ListStocks(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stocksState.gen != gen {
		return
	}
	s.stocksState.loading = false
	if err != nil {
		s.logger.Error("Failed to fetch stocks", zap.Error(err))
		s.stocksState.err = err.Error()
		return
	}
	s.stocksState.err = ""
	s.stocks = items
}

// FetchActiveTrades refetches the open equity positions.
func (s *Shell) FetchActiveTrades(ctx context.Context) {
	gen := s.beginFetch(&s.tradesState)
	items, err := s.client.ListActiveTrades(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tradesState.gen != gen {
		return
	}
	s.tradesState.loading = false
	if err != nil {
		s.logger.Error("Failed to fetch active trades", zap.Error(err))
		s.tradesState.err = err.Error()
		return
	}
	s.tradesState.err = ""
	s.activeTrades = items
}

// markBusy adds a transaction id to the busy set. Returns false if the row
// already has an action in flight.
func (s *Shell) markBusy(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.busy[id]; ok {
		return false
	}
	s.busy[id] = struct{}{}
	return true
}

// clearBusy removes a transaction id from the busy set. Removing an absent
// id is a no-op.
func (s *Shell) clearBusy(id string) {
	s.mu.Lock()
	delete(s.busy, id)
	s.mu.Unlock()
}

// IsBusy reports whether a row-level action is in flight for the id.
func (s *Shell) IsBusy(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.busy[id]
	return ok
}

// pushToast queues a transient notification.
func (s *Shell) pushToast(severity, message string) {
	s.mu.Lock()
	s.toasts = append(s.toasts, Toast{
		Message:   message,
		Severity:  severity,
		ExpiresAt: s.now().Add(s.toastTTL),
	})
	s.mu.Unlock()
}

// Toasts returns the live notifications, pruning expired ones.
func (s *Shell) Toasts() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	live := s.toasts[:0]
	for _, t := range s.toasts {
		if t.ExpiresAt.After(now) {
			live = append(live, t)
		}
	}
	s.toasts = live
	out := make([]Toast, len(live))
	copy(out, live)
	return out
}

func (s *Shell) record(kind, subject string, qty float64, ok bool, message string) {
	if s.journal == nil {
		return
	}
	s.journal.Record(kind, subject, qty, ok, message)
}

// ExitTransaction closes one open options position. The row is marked busy
// for the duration and released on every path; success triggers a refetch of
// the options collection.
func (s *Shell) ExitTransaction(ctx context.Context, transactionID string) error {
	if !s.markBusy(transactionID) {
		return nil // an exit for this row is already in flight
	}
	defer s.clearBusy(transactionID)

	_, err := s.client.CloseOrder(ctx, transactionID)
	if err != nil {
		s.logger.Error("Exit order failed", zap.String("transaction_id", transactionID), zap.Error(err))
		s.pushToast("error", err.Error())
		s.record(journal.KindExit, transactionID, 0, false, err.Error())
		return err
	}

	s.pushToast("success", "Order closed successfully!")
	s.record(journal.KindExit, transactionID, 0, true, "closed")
	s.FetchOptions(ctx)
	return nil
}

// BuyStock places an equity buy order. Success is judged by the envelope's
// statusCode range, not its success flag; that is the buy endpoint's
// documented contract.
func (s *Shell) BuyStock(ctx context.Context, symbol string, quantity float64) error {
	result, err := s.client.PlaceBuyOrder(ctx, symbol, quantity)
	if err == nil && !result.Ok() {
		err = &tradeapi.ApiError{StatusCode: result.StatusCode, Message: result.Message}
	}
	if err != nil {
		s.logger.Error("Buy order failed", zap.String("symbol", symbol), zap.Error(err))
		s.pushToast("error", err.Error())
		s.record(journal.KindBuy, symbol, quantity, false, err.Error())
		return err
	}

	s.pushToast("success", "Buy order placed successfully!")
	s.record(journal.KindBuy, symbol, quantity, true, result.Message)
	s.FetchActiveTrades(ctx)
	return nil
}

// SellActiveTrade sells quantity out of an open equity trade. Busy state is
// keyed by the trade id so concurrent sells on different rows stay isolated.
func (s *Shell) SellActiveTrade(ctx context.Context, tradeID int, quantity float64) error {
	key := strconv.Itoa(tradeID)
	if !s.markBusy(key) {
		return nil
	}
	defer s.clearBusy(key)

	result, err := s.client.PlaceSellOrder(ctx, tradeID, quantity)
	if err != nil {
		s.logger.Error("Sell order failed", zap.Int("trade_id", tradeID), zap.Error(err))
		s.pushToast("error", err.Error())
		s.record(journal.KindSell, key, quantity, false, err.Error())
		return err
	}

	s.pushToast("success", "Sell order placed successfully!")
	s.record(journal.KindSell, key, quantity, true, result.Message)
	s.FetchActiveTrades(ctx)
	return nil
}

// equitySegmentSuffix is the exchange segment marker the LTP endpoint
// expects appended to equity symbols.
const equitySegmentSuffix = "-EQ"

// LastPrice fetches the live quote for an equity instrument. The client
// expects the symbol already suffixed with its exchange segment marker, so
// the suffix is applied here.
func (s *Shell) LastPrice(ctx context.Context, symbol string) (float64, error) {
	ltp, err := s.client.GetLastPrice(ctx, symbol+equitySegmentSuffix)
	if err != nil {
		s.logger.Error("Failed to fetch LTP", zap.String("symbol", symbol), zap.Error(err))
		return 0, err
	}
	return ltp, nil
}

// WebhookForm returns the current options settings form state.
func (s *Shell) WebhookForm() models.WebhookConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.webhookForm
}

// SetWebhookForm replaces the options settings form state.
func (s *Shell) SetWebhookForm(cfg models.WebhookConfig) {
	s.mu.Lock()
	s.webhookForm = cfg
	s.mu.Unlock()
}

// FuturesWebhookForm returns the current futures settings form state.
func (s *Shell) FuturesWebhookForm() models.FuturesWebhookConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.futuresWebhookForm
}

// SetFuturesWebhookForm replaces the futures settings form state.
func (s *Shell) SetFuturesWebhookForm(cfg models.FuturesWebhookConfig) {
	s.mu.Lock()
	s.futuresWebhookForm = cfg
	s.mu.Unlock()
}

// SubmitWebhook sends the current options form state verbatim. The submit
// control is disabled while a submission is in flight.
func (s *Shell) SubmitWebhook(ctx context.Context) error {
	s.mu.Lock()
	if s.webhookBusy {
		s.mu.Unlock()
		return nil
	}
	s.webhookBusy = true
	form := s.webhookForm
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.webhookBusy = false
		s.mu.Unlock()
	}()

	if err := s.client.SubmitWebhook(ctx, form); err != nil {
		s.logger.Error("Webhook submission failed", zap.Error(err))
		s.pushToast("error", err.Error())
		s.record(journal.KindWebhook, form.Script, 0, false, err.Error())
		return err
	}

	s.pushToast("success", "Webhook sent successfully!")
	s.record(journal.KindWebhook, form.Script, 0, true, form.Strategy)
	return nil
}

// SubmitFuturesWebhook sends the current futures form state verbatim.
func (s *Shell) SubmitFuturesWebhook(ctx context.Context) error {
	s.mu.Lock()
	if s.futuresWebhookBusy {
		s.mu.Unlock()
		return nil
	}
	s.futuresWebhookBusy = true
	form := s.futuresWebhookForm
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.futuresWebhookBusy = false
		s.mu.Unlock()
	}()

	if err := s.client.SubmitFuturesWebhook(ctx, form); err != nil {
		s.logger.Error("Futures webhook submission failed", zap.Error(err))
		s.pushToast("error", err.Error())
		s.record(journal.KindFuturesWebhook, form.Script, 0, false, err.Error())
		return err
	}

	s.pushToast("success", "Futures webhook sent successfully!")
	s.record(journal.KindFuturesWebhook, form.Script, 0, true, form.Strategy)
	return nil
}

// Options returns a copy of the options transactions collection.
func (s *Shell) Options() []models.OptionsTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.OptionsTransaction, len(s.options))
	copy(out, s.options)
	return out
}

// Futures returns a copy of the futures transactions collection.
func (s *Shell) Futures() []models.FuturesTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.FuturesTransaction, len(s.futures))
	copy(out, s.futures)
	return out
}

// Stocks returns a copy of the instrument listing.
func (s *Shell) Stocks() []models.Stock {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Stock, len(s.stocks))
	copy(out, s.stocks)
	return out
}

// ActiveTrades returns a copy of the open equity positions.
func (s *Shell) ActiveTrades() []models.ActiveTrade {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ActiveTrade, len(s.activeTrades))
	copy(out, s.activeTrades)
	return out
}

// CurrentPnL is the aggregate figure for the currently selected page:
// the futures total on futures pages, the options total everywhere else.
func (s *Shell) CurrentPnL() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if isFuturesPage(s.page) {
		return pnl.FuturesTotal(s.futures)
	}
	return pnl.OptionsTotal(s.options)
}

// CollectionError returns the page-scoped error message for the collection
// backing the current page, or "" when the last fetch succeeded.
func (s *Shell) CollectionError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case isFuturesPage(s.page):
		return s.futuresState.err
	case s.page == PageStocks:
		return s.stocksState.err
	case s.page == PageActiveTrades:
		return s.tradesState.err
	default:
		return s.optionsState.err
	}
}

// Loading reports whether the collection backing the current page has a
// fetch in flight.
func (s *Shell) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case isFuturesPage(s.page):
		return s.futuresState.loading
	case s.page == PageStocks:
		return s.stocksState.loading
	case s.page == PageActiveTrades:
		return s.tradesState.loading
	default:
		return s.optionsState.loading
	}
}
