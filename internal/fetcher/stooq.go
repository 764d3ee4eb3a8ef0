package fetcher

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"marketpulse/pkg/config"
	xhttp "marketpulse/pkg/http"
)

// QuoteData is one raw reading from the quote provider before
// normalization.
type QuoteData struct {
	Value         float64
	PercentChange float64
}

// StooqClient fetches daily quotes from the Stooq CSV endpoint, one symbol
// per request. Each symbol is independently retryable and cacheable.
type StooqClient struct {
	baseURL string
	client  *xhttp.Client
}

// NewStooqClient creates a quote fetcher against the given base URL.
func NewStooqClient(baseURL string, timeout time.Duration) *StooqClient {
	return &StooqClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// Fetch retrieves the latest close and day-over-day percent change for one
// symbol. Failures come back as *FetchError, never a panic.
func (c *StooqClient) Fetch(ctx context.Context, spec config.SymbolSpec) (QuoteData, error) {
	var body string
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/q/d/l/",
		QueryParams: map[string][]string{
			"s": {spec.Symbol},
			"i": {"d"},
		},
		Headers: map[string]string{
			"User-Agent": "marketpulse/1.0",
		},
	}, &body)
	if err != nil {
		return QuoteData{}, unavailable(spec.Symbol, err)
	}

	data, perr := parseDailyCSV(body)
	if perr != nil {
		return QuoteData{}, malformed(spec.Symbol, perr)
	}
	return data, nil
}

// parseDailyCSV reads Stooq daily-history CSV (Date,Open,High,Low,Close,...)
// and derives the last close plus percent change against the prior close.
func parseDailyCSV(body string) (QuoteData, error) {
	lines := strings.Split(strings.TrimSpace(body), "\n")
	if len(lines) < 2 {
		return QuoteData{}, fmt.Errorf("no data rows")
	}

	closeIdx := -1
	header := strings.Split(lines[0], ",")
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), "Close") {
			closeIdx = i
			break
		}
	}
	if closeIdx < 0 {
		return QuoteData{}, fmt.Errorf("no close column in header %q", lines[0])
	}

	closes := make([]float64, 0, 2)
	for _, line := range lines[1:] {
		cols := strings.Split(line, ",")
		if closeIdx >= len(cols) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(cols[closeIdx]), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		closes = append(closes, v)
	}

	switch len(closes) {
	case 0:
		return QuoteData{}, fmt.Errorf("no parseable close values")
	case 1:
		return QuoteData{Value: closes[0], PercentChange: 0}, nil
	}

	last := closes[len(closes)-1]
	prev := closes[len(closes)-2]
	pct := 0.0
	if prev != 0 {
		pct = (last - prev) / prev * 100.0
	}
	return QuoteData{Value: last, PercentChange: pct}, nil
}
