// Package di provides dependency injection factories for creating application components.
package di

import (
	"index_backend/internal/platform/externalapi/twelvedata"
	infrahttp "index_backend/internal/platform/http"
)

// NewMarket creates a fully configured TwelveDataMarket with HTTP client.
func NewMarket() *twelvedata.TwelveDataMarket {
	cfg := twelvedata.LoadConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.twelvedata.com"
	}
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	return twelvedata.NewTwelveDataMarket(cfg, httpClient)
}
