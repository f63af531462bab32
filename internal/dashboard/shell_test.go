package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"trading-dashboard-go/internal/models"
	"trading-dashboard-go/internal/tradeapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClient implements tradeapi.ClientInterface with pluggable behavior.
type fakeClient struct {
	mu sync.Mutex

	listStocks       func(ctx context.Context) ([]models.Stock, error)
	getLastPrice     func(ctx context.Context, symbol string) (float64, error)
	listOptions      func(ctx context.Context) ([]models.OptionsTransaction, error)
	listFutures      func(ctx context.Context, page, pageSize int) ([]models.FuturesTransaction, error)
	listActiveTrades func(ctx context.Context) ([]models.ActiveTrade, error)
	closeOrder       func(ctx context.Context, id string) (*tradeapi.OrderResult, error)
	placeBuy         func(ctx context.Context, symbol string, qty float64) (*tradeapi.OrderResult, error)
	placeSell        func(ctx context.Context, id int, qty float64) (*tradeapi.OrderResult, error)
	submitWebhook    func(ctx context.Context, cfg models.WebhookConfig) error
	submitFutWebhook func(ctx context.Context, cfg models.FuturesWebhookConfig) error

	calls map[string]int
}

var _ tradeapi.ClientInterface = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{calls: make(map[string]int)}
}

func (f *fakeClient) count(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeClient) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeClient) ListStocks(ctx context.Context) ([]models.Stock, error) {
	f.count("ListStocks")
	if f.listStocks == nil {
		return nil, nil
	}
	return f.listStocks(ctx)
}

func (f *fakeClient) GetLastPrice(ctx context.Context, symbol string) (float64, error) {
	f.count("GetLastPrice")
	if f.getLastPrice == nil {
		return 0, nil
	}
	return f.getLastPrice(ctx, symbol)
}

func (f *fakeClient) PlaceBuyOrder(ctx context.Context, symbol string, qty float64) (*tradeapi.OrderResult, error) {
	f.count("PlaceBuyOrder")
	if f.placeBuy == nil {
		return &tradeapi.OrderResult{Success: true, StatusCode: 200}, nil
	}
	return f.placeBuy(ctx, symbol, qty)
}

func (f *fakeClient) PlaceSellOrder(ctx context.Context, id int, qty float64) (*tradeapi.OrderResult, error) {
	f.count("PlaceSellOrder")
	if f.placeSell == nil {
		return &tradeapi.OrderResult{Success: true, StatusCode: 200}, nil
	}
	return f.placeSell(ctx, id, qty)
}

func (f *fakeClient) ListActiveTrades(ctx context.Context) ([]models.ActiveTrade, error) {
	f.count("ListActiveTrades")
	if f.listActiveTrades == nil {
		return nil, nil
	}
	return f.listActiveTrades(ctx)
}

func (f *fakeClient) ListOptionsTransactions(ctx context.Context) ([]models.OptionsTransaction, error) {
	f.count("ListOptionsTransactions")
	if f.listOptions == nil {
		return nil, nil
	}
	return f.listOptions(ctx)
}

func (f *fakeClient) CloseOrder(ctx context.Context, id string) (*tradeapi.OrderResult, error) {
	f.count("CloseOrder")
	if f.closeOrder == nil {
		return &tradeapi.OrderResult{Success: true, StatusCode: 200}, nil
	}
	return f.closeOrder(ctx, id)
}

func (f *fakeClient) ListFuturesTransactions(ctx context.Context, page, pageSize int) ([]models.FuturesTransaction, error) {
	f.count("ListFuturesTransactions")
	if f.listFutures == nil {
		return nil, nil
	}
	return f.listFutures(ctx, page, pageSize)
}

func (f *fakeClient) SubmitWebhook(ctx context.Context, cfg models.WebhookConfig) error {
	f.count("SubmitWebhook")
	if f.submitWebhook == nil {
		return nil
	}
	return f.submitWebhook(ctx, cfg)
}

func (f *fakeClient) SubmitFuturesWebhook(ctx context.Context, cfg models.FuturesWebhookConfig) error {
	f.count("SubmitFuturesWebhook")
	if f.submitFutWebhook == nil {
		return nil
	}
	return f.submitFutWebhook(ctx, cfg)
}

func newTestShell(client tradeapi.ClientInterface) *Shell {
	return NewShell(client, nil, zap.NewNop(), 200, 3*time.Second)
}

func TestLoadAll_PartialFailureIsolated(t *testing.T) {
	client := newFakeClient()
	client.listOptions = func(ctx context.Context) ([]models.OptionsTransaction, error) {
		return []models.OptionsTransaction{{ID: "1", Status: models.StatusOpen, BuyingPrice: 100, CurrentPrice: 120, Qty: 10}}, nil
	}
	client.listFutures = func(ctx context.Context, page, pageSize int) ([]models.FuturesTransaction, error) {
		return nil, errors.New("futures backend down")
	}

	shell := newTestShell(client)
	shell.LoadAll(context.Background())

	// The failed futures fetch must not blank out the options data.
	assert.Len(t, shell.Options(), 1)
	assert.Empty(t, shell.Futures())

	shell.SetPage(PageFutures)
	assert.Equal(t, "futures backend down", shell.CollectionError())

	shell.SetPage(PageHome)
	assert.Empty(t, shell.CollectionError())
	assert.InDelta(t, 200.0, shell.CurrentPnL(), 0.0001)
}

func TestRefresh_OnlyCurrentPage(t *testing.T) {
	testCases := []struct {
		page     Page
		expected string
	}{
		{PageHome, "ListOptionsTransactions"},
		{PageAllOptions, "ListOptionsTransactions"},
		{PageOptionsSettings, "ListOptionsTransactions"},
		{PageFutures, "ListFuturesTransactions"},
		{PageAllFutures, "ListFuturesTransactions"},
		{PageFuturesSettings, "ListFuturesTransactions"},
		{PageStocks, "ListStocks"},
		{PageActiveTrades, "ListActiveTrades"},
	}

	for _, tc := range testCases {
		t.Run(string(tc.page), func(t *testing.T) {
			client := newFakeClient()
			shell := newTestShell(client)
			shell.SetPage(tc.page)

			shell.Refresh(context.Background())

			assert.Equal(t, 1, client.callCount(tc.expected))
			for _, other := range []string{"ListOptionsTransactions", "ListFuturesTransactions", "ListStocks", "ListActiveTrades"} {
				if other != tc.expected {
					assert.Zero(t, client.callCount(other), "unexpected fetch of %s", other)
				}
			}
		})
	}
}

func TestExitTransaction_BusyLifecycle(t *testing.T) {
	t.Run("BusyDuringCallAndClearedOnSuccess", func(t *testing.T) {
		client := newFakeClient()
		shell := newTestShell(client)

		var busyDuringCall bool
		client.closeOrder = func(ctx context.Context, id string) (*tradeapi.OrderResult, error) {
			busyDuringCall = shell.IsBusy(id)
			return &tradeapi.OrderResult{Success: true, StatusCode: 200}, nil
		}

		err := shell.ExitTransaction(context.Background(), "42")

		require.NoError(t, err)
		assert.True(t, busyDuringCall, "row must be busy while its request is in flight")
		assert.False(t, shell.IsBusy("42"))
		// Success refetches the owning collection.
		assert.Equal(t, 1, client.callCount("ListOptionsTransactions"))
	})

	t.Run("ClearedOnFailure", func(t *testing.T) {
		client := newFakeClient()
		shell := newTestShell(client)
		client.closeOrder = func(ctx context.Context, id string) (*tradeapi.OrderResult, error) {
			return nil, &tradeapi.ApiError{StatusCode: 409, Message: "position already closed"}
		}

		err := shell.ExitTransaction(context.Background(), "42")

		assert.Error(t, err)
		assert.False(t, shell.IsBusy("42"))
		// Failure does not refetch.
		assert.Zero(t, client.callCount("ListOptionsTransactions"))

		toasts := shell.Toasts()
		require.Len(t, toasts, 1)
		assert.Equal(t, "error", toasts[0].Severity)
		assert.Equal(t, "position already closed", toasts[0].Message)
	})

	t.Run("RowsIsolated", func(t *testing.T) {
		client := newFakeClient()
		shell := newTestShell(client)

		release := make(chan struct{})
		client.closeOrder = func(ctx context.Context, id string) (*tradeapi.OrderResult, error) {
			if id == "slow" {
				<-release
			}
			return &tradeapi.OrderResult{Success: true, StatusCode: 200}, nil
		}

		done := make(chan struct{})
		go func() {
			_ = shell.ExitTransaction(context.Background(), "slow")
			close(done)
		}()

		assert.Eventually(t, func() bool { return shell.IsBusy("slow") }, time.Second, time.Millisecond)

		// A busy row elsewhere must not mark or block this row.
		require.NoError(t, shell.ExitTransaction(context.Background(), "fast"))
		assert.False(t, shell.IsBusy("fast"))
		assert.True(t, shell.IsBusy("slow"))

		close(release)
		<-done
		assert.False(t, shell.IsBusy("slow"))
	})

	t.Run("DuplicateExitIgnored", func(t *testing.T) {
		client := newFakeClient()
		shell := newTestShell(client)

		release := make(chan struct{})
		client.closeOrder = func(ctx context.Context, id string) (*tradeapi.OrderResult, error) {
			<-release
			return &tradeapi.OrderResult{Success: true, StatusCode: 200}, nil
		}

		done := make(chan struct{})
		go func() {
			_ = shell.ExitTransaction(context.Background(), "42")
			close(done)
		}()
		assert.Eventually(t, func() bool { return shell.IsBusy("42") }, time.Second, time.Millisecond)

		// Second click while in flight is a no-op.
		require.NoError(t, shell.ExitTransaction(context.Background(), "42"))
		assert.Equal(t, 1, client.callCount("CloseOrder"))

		close(release)
		<-done
	})
}

func TestBuyStock_StatusCodeRange(t *testing.T) {
	client := newFakeClient()
	shell := newTestShell(client)

	// The buy envelope's success flag is true, but the statusCode says
	// otherwise; the statusCode must win.
	client.placeBuy = func(ctx context.Context, symbol string, qty float64) (*tradeapi.OrderResult, error) {
		return &tradeapi.OrderResult{Success: true, Message: "margin exceeded", StatusCode: 400}, nil
	}

	err := shell.BuyStock(context.Background(), "RELIANCE", 10)

	assert.Error(t, err)
	toasts := shell.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, "error", toasts[0].Severity)
	assert.Equal(t, "margin exceeded", toasts[0].Message)
	assert.Zero(t, client.callCount("ListActiveTrades"))
}

func TestSellActiveTrade_RefetchesTrades(t *testing.T) {
	client := newFakeClient()
	shell := newTestShell(client)

	require.NoError(t, shell.SellActiveTrade(context.Background(), 7, 5))

	assert.Equal(t, 1, client.callCount("PlaceSellOrder"))
	assert.Equal(t, 1, client.callCount("ListActiveTrades"))
	assert.False(t, shell.IsBusy("7"))
}

func TestLastPrice_AppendsSegmentSuffix(t *testing.T) {
	client := newFakeClient()
	shell := newTestShell(client)

	var requested string
	client.getLastPrice = func(ctx context.Context, symbol string) (float64, error) {
		requested = symbol
		return 2890.55, nil
	}

	ltp, err := shell.LastPrice(context.Background(), "RELIANCE")

	require.NoError(t, err)
	assert.Equal(t, "RELIANCE-EQ", requested)
	assert.InDelta(t, 2890.55, ltp, 0.0001)
}

func TestSubmitWebhook_SendsExactFormState(t *testing.T) {
	client := newFakeClient()
	shell := newTestShell(client)

	var sent models.WebhookConfig
	client.submitWebhook = func(ctx context.Context, cfg models.WebhookConfig) error {
		sent = cfg
		return nil
	}

	form := models.WebhookConfig{
		Script:         "DMART",
		ScriptType:     "index",
		InstrumentType: "NSE",
		Timeframe:      "5",
		Trend:          "PE",
		Strategy:       "EMA_CROSS_20_200",
	}
	shell.SetWebhookForm(form)

	require.NoError(t, shell.SubmitWebhook(context.Background()))
	assert.Equal(t, form, sent)
}

func TestCurrentPnL_FollowsPage(t *testing.T) {
	client := newFakeClient()
	client.listOptions = func(ctx context.Context) ([]models.OptionsTransaction, error) {
		return []models.OptionsTransaction{{BuyingPrice: 100, CurrentPrice: 120, Qty: 10}}, nil
	}
	client.listFutures = func(ctx context.Context, page, pageSize int) ([]models.FuturesTransaction, error) {
		return []models.FuturesTransaction{{TradeType: models.TradeTypeSell, BuyingPrice: 100, CurrentLtp: 90, Qty: 5}}, nil
	}

	shell := newTestShell(client)
	shell.LoadAll(context.Background())

	shell.SetPage(PageHome)
	assert.InDelta(t, 200.0, shell.CurrentPnL(), 0.0001)

	shell.SetPage(PageFutures)
	assert.InDelta(t, 50.0, shell.CurrentPnL(), 0.0001)
}

func TestFetch_StaleResultDiscarded(t *testing.T) {
	client := newFakeClient()
	shell := newTestShell(client)

	stale := []models.OptionsTransaction{{ID: "stale"}}
	fresh := []models.OptionsTransaction{{ID: "fresh"}}

	entered := make(chan struct{})
	release := make(chan struct{})
	first := true
	client.listOptions = func(ctx context.Context) ([]models.OptionsTransaction, error) {
		if first {
			first = false
			close(entered)
			<-release
			return stale, nil
		}
		return fresh, nil
	}

	done := make(chan struct{})
	go func() {
		shell.FetchOptions(context.Background())
		close(done)
	}()
	<-entered

	// A second fetch starts and finishes while the first is still in flight.
	shell.FetchOptions(context.Background())
	require.Len(t, shell.Options(), 1)
	assert.Equal(t, "fresh", shell.Options()[0].ID)

	// The slow first fetch resolves late; its result must be discarded.
	close(release)
	<-done
	assert.Equal(t, "fresh", shell.Options()[0].ID)
}

func TestToasts_Expire(t *testing.T) {
	client := newFakeClient()
	shell := newTestShell(client)

	current := time.Date(2025, time.March, 7, 10, 0, 0, 0, time.UTC)
	shell.now = func() time.Time { return current }

	shell.pushToast("success", "Order closed successfully!")
	require.Len(t, shell.Toasts(), 1)

	current = current.Add(2 * time.Second)
	assert.Len(t, shell.Toasts(), 1)

	current = current.Add(2 * time.Second)
	assert.Empty(t, shell.Toasts())
}

func TestSetPage_RejectsUnknown(t *testing.T) {
	shell := newTestShell(newFakeClient())
	shell.SetPage(PageFutures)
	shell.SetPage(Page("not-a-page"))
	assert.Equal(t, PageFutures, shell.Page())
}
