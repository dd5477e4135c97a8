package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dnldd/backstop/shared"
	"github.com/tidwall/gjson"
)

const (
	// BaseURL is the base url for the FMP api.
	BaseURL = "https://financialmodelingprep.com/stable"

	// oneMinuteHistoricalPath is the intraday one minute history endpoint.
	oneMinuteHistoricalPath = "/historical-chart/1min"

	// requestTimeout bounds provider calls. A timeout is a per trade error for
	// the caller, never a fatal batch error.
	requestTimeout = time.Second * 5
)

// FMPConfig represents the configuration for the FMP client.
type FMPConfig struct {
	// APIKey is the FMP API Key.
	APIKey string
	// BaseURL is the base url of the FMP service.
	BaseURL string
}

// FMPClient represents the Financial Modeling Preparation (FMP) API client.
type FMPClient struct {
	cfg   *FMPConfig
	httpc http.Client
	buf   *bytes.Buffer
}

// Ensure the FMPClient implements the CandleProvider interface.
var _ shared.CandleProvider = (*FMPClient)(nil)

// NewFMPClient instantiates a new FMP client.
func NewFMPClient(cfg *FMPConfig) *FMPClient {
	return &FMPClient{
		cfg:   cfg,
		httpc: http.Client{Timeout: requestTimeout},
		buf:   bytes.NewBuffer(make([]byte, 0, 512)),
	}
}

// formURL creates full urls including parameters for the api.
func (c *FMPClient) formURL(path string, params string) string {
	c.buf.WriteString(c.cfg.BaseURL)
	c.buf.WriteString(path)
	c.buf.WriteString("?")
	c.buf.WriteString(params)
	url := c.buf.String()
	c.buf.Reset()

	return url
}

// ParseCandlesticks parses candlesticks from the provided json data.
func (c *FMPClient) ParseCandlesticks(data []gjson.Result, market string) ([]shared.Candlestick, error) {
	candles := make([]shared.Candlestick, 0, len(data))

	for idx := range data {
		var candle shared.Candlestick

		candle.Open = data[idx].Get("open").Float()
		candle.Low = data[idx].Get("low").Float()
		candle.High = data[idx].Get("high").Float()
		candle.Close = data[idx].Get("close").Float()
		candle.Volume = data[idx].Get("volume").Float()
		candle.Market = market

		dt, err := time.Parse(shared.DateLayout, data[idx].Get("date").String())
		if err != nil {
			return nil, fmt.Errorf("parsing candlestick date: %w", err)
		}

		candle.Date = dt.UTC()
		candles = append(candles, candle)
	}

	return candles, nil
}

// FetchOneMinuteCandles fetches one minute candles for the provided market
// over the provided window.
func (c *FMPClient) FetchOneMinuteCandles(ctx context.Context, market string, start time.Time, end time.Time) ([]shared.Candlestick, error) {
	params := url.Values{}
	params.Add("symbol", market)
	params.Add("apikey", c.cfg.APIKey)
	params.Add("from", start.UTC().Format(shared.DateLayout))
	if !end.IsZero() {
		params.Add("to", end.UTC().Format(shared.DateLayout))
	}

	formedURL := c.formURL(oneMinuteHistoricalPath, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, formedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating one minute history request for %s: %w", market, err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching one minute history for %s: %w", market, err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status fetching one minute history for %s: %d", market, resp.StatusCode)
	}

	data := gjson.ParseBytes(body).Array()

	return c.ParseCandlesticks(data, market)
}
