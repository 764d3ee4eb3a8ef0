package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/pkg/config"
)

func TestParseDailyCSV(t *testing.T) {
	body := "Date,Open,High,Low,Close,Volume\n" +
		"2026-08-20,100,101,99,100.0,0\n" +
		"2026-08-21,100,103,100,102.5,0\n"

	data, err := parseDailyCSV(body)
	require.NoError(t, err)
	assert.InDelta(t, 102.5, data.Value, 1e-9)
	assert.InDelta(t, 2.5, data.PercentChange, 1e-9)
}

func TestParseDailyCSVSingleRow(t *testing.T) {
	data, err := parseDailyCSV("Date,Open,High,Low,Close,Volume\n2026-08-21,1,1,1,42.0,0\n")
	require.NoError(t, err)
	assert.InDelta(t, 42.0, data.Value, 1e-9)
	assert.Zero(t, data.PercentChange)
}

func TestParseDailyCSVSkipsBadRows(t *testing.T) {
	body := "Date,Open,High,Low,Close,Volume\n" +
		"2026-08-19,1,1,1,200.0,0\n" +
		"2026-08-20,1,1,1,N/D,0\n" +
		"2026-08-21,1,1,1,210.0,0\n"

	data, err := parseDailyCSV(body)
	require.NoError(t, err)
	assert.InDelta(t, 210.0, data.Value, 1e-9)
	assert.InDelta(t, 5.0, data.PercentChange, 1e-9)
}

func TestParseDailyCSVMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"header only":    "Date,Open,High,Low,Close,Volume",
		"no close":       "Date,Open\n2026-08-21,1\n",
		"no usable rows": "Date,Close\n2026-08-21,garbage\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseDailyCSV(body)
			assert.Error(t, err)
		})
	}
}

func TestStooqClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/q/d/l/", r.URL.Path)
		assert.Equal(t, "^spx", r.URL.Query().Get("s"))
		w.Write([]byte("Date,Open,High,Low,Close,Volume\n2026-08-20,1,1,1,5000,0\n2026-08-21,1,1,1,5050,0\n"))
	}))
	defer srv.Close()

	c := NewStooqClient(srv.URL, 2*time.Second)
	data, err := c.Fetch(context.Background(), config.SymbolSpec{Label: "S&P500", Symbol: "^spx"})
	require.NoError(t, err)
	assert.InDelta(t, 5050.0, data.Value, 1e-9)
	assert.InDelta(t, 1.0, data.PercentChange, 1e-9)
}

func TestStooqClientFetchUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewStooqClient(srv.URL, 2*time.Second)
	_, err := c.Fetch(context.Background(), config.SymbolSpec{Label: "S&P500", Symbol: "^spx"})
	require.Error(t, err)
	assert.Equal(t, FailUnavailable, KindOf(err))
}

func TestStooqClientFetchMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not csv</html>"))
	}))
	defer srv.Close()

	c := NewStooqClient(srv.URL, 2*time.Second)
	_, err := c.Fetch(context.Background(), config.SymbolSpec{Label: "S&P500", Symbol: "^spx"})
	require.Error(t, err)
	assert.Equal(t, FailMalformed, KindOf(err))
}
