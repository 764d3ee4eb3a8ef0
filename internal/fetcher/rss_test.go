package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/pkg/config"
)

func rssBody(items string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Wire</title>` + items + `</channel></rss>`
}

func rssItem(title, link, pubDate string) string {
	s := "<item><title>" + title + "</title><link>" + link + "</link>"
	if pubDate != "" {
		s += "<pubDate>" + pubDate + "</pubDate>"
	}
	return s + "</item>"
}

func TestRSSFetcher(t *testing.T) {
	pub := time.Date(2026, 8, 21, 9, 30, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssBody(
			rssItem("RBA holds rates", "https://example.com/a", pub.Format(time.RFC1123Z))+
				rssItem("", "https://example.com/empty", pub.Format(time.RFC1123Z))+
				rssItem("No link story", "", pub.Format(time.RFC1123Z))+
				rssItem("Iron ore rallies", "https://example.com/b", ""),
		))
	}))
	defer srv.Close()

	f := NewRSSFetcher(40, 0)
	fetchTime := time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return fetchTime }

	got, err := f.Fetch(context.Background(), config.FeedSpec{Name: "wire", URL: srv.URL})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "RBA holds rates", got[0].Title)
	assert.Equal(t, "https://example.com/a", got[0].Link)
	assert.Equal(t, "wire", got[0].Source)
	assert.True(t, got[0].PublishedAt.Equal(pub))

	// No publish time falls back to fetch time.
	assert.Equal(t, "Iron ore rallies", got[1].Title)
	assert.True(t, got[1].PublishedAt.Equal(fetchTime))
}

func TestRSSFetcherPerFeedLimit(t *testing.T) {
	var items string
	for i := 0; i < 10; i++ {
		items += rssItem(fmt.Sprintf("story %d", i), fmt.Sprintf("https://example.com/%d", i), "")
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssBody(items))
	}))
	defer srv.Close()

	f := NewRSSFetcher(3, 0)
	got, err := f.Fetch(context.Background(), config.FeedSpec{Name: "wire", URL: srv.URL})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestRSSFetcherMaxAge(t *testing.T) {
	now := time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)
	fresh := now.Add(-2 * time.Hour)
	old := now.Add(-10 * 24 * time.Hour)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssBody(
			rssItem("fresh", "https://example.com/fresh", fresh.Format(time.RFC1123Z))+
				rssItem("stale week", "https://example.com/old", old.Format(time.RFC1123Z)),
		))
	}))
	defer srv.Close()

	f := NewRSSFetcher(40, 7*24*time.Hour)
	f.now = func() time.Time { return now }

	got, err := f.Fetch(context.Background(), config.FeedSpec{Name: "wire", URL: srv.URL})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].Title)
}

func TestRSSFetcherUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewRSSFetcher(40, 0)
	_, err := f.Fetch(context.Background(), config.FeedSpec{Name: "wire", URL: srv.URL})
	require.Error(t, err)
	assert.Equal(t, FailUnavailable, KindOf(err))
}
