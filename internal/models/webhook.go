package models

// WebhookConfig is the options strategy configuration submitted verbatim to
// the webhook endpoint. It is a request payload, not a stored entity.
type WebhookConfig struct {
	Script         string `json:"script"`
	ScriptType     string `json:"scriptType"`
	InstrumentType string `json:"instrumentType"`
	Timeframe      string `json:"timeframe"`
	Trend          string `json:"trend"`
	Strategy       string `json:"strategy"`
}

// FuturesWebhookConfig is the futures strategy configuration. Same shape as
// WebhookConfig but posted to a separate endpoint with different defaults.
type FuturesWebhookConfig struct {
	Script         string `json:"script"`
	ScriptType     string `json:"scriptType"`
	InstrumentType string `json:"instrumentType"`
	Timeframe      string `json:"timeframe"`
	Trend          string `json:"trend"`
	Strategy       string `json:"strategy"`
}

// DefaultWebhookConfig returns the form defaults for the options settings page.
func DefaultWebhookConfig() WebhookConfig {
	return WebhookConfig{
		Script:         "NIFTY",
		ScriptType:     "index",
		InstrumentType: "NSE",
		Timeframe:      "3",
		Trend:          "CE",
		Strategy:       "EMA_CROSS_20_200",
	}
}

// DefaultFuturesWebhookConfig returns the form defaults for the futures settings page.
func DefaultFuturesWebhookConfig() FuturesWebhookConfig {
	return FuturesWebhookConfig{
		Script:         "NIFTY",
		ScriptType:     "index",
		InstrumentType: "NSE",
		Timeframe:      "15",
		Trend:          "CE",
		Strategy:       "EMA_CROSS_200",
	}
}
