package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "stats", r.Header.Get("x-nba-stats-origin"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient(nil)
	result, err := client.Do(context.Background(), Request{
		Source:  SourceStats,
		URL:     server.URL,
		Headers: map[string]string{"x-nba-stats-origin": "stats"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(result.Body))
	assert.Equal(t, "application/json", result.ContentType)
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestDoInvalidURL(t *testing.T) {
	client := NewClient(nil)
	_, err := client.Do(context.Background(), Request{Source: SourceStats, URL: "not a url"})
	require.Error(t, err)

	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	assert.False(t, ferr.IsRetryable())
}

func TestDoStatusClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{"not found is permanent", http.StatusNotFound, false},
		{"forbidden is permanent", http.StatusForbidden, false},
		{"throttled is transient", http.StatusTooManyRequests, true},
		{"server error is transient", http.StatusInternalServerError, true},
		{"bad gateway is transient", http.StatusBadGateway, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient(nil)
			_, err := client.Do(context.Background(), Request{Source: SourceBRef, URL: server.URL})
			require.Error(t, err)

			var ferr *Error
			require.ErrorAs(t, err, &ferr)
			assert.Equal(t, tt.status, ferr.Status)
			assert.Equal(t, tt.retryable, ferr.IsRetryable())
		})
	}
}

func TestDoTimeoutIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(&Options{Timeout: 20 * time.Millisecond, UserAgent: DefaultUserAgent})
	_, err := client.Do(context.Background(), Request{Source: SourceStats, URL: server.URL})
	require.Error(t, err)

	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	assert.True(t, ferr.IsRetryable())
}

func TestDoCancelledContextIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(nil)
	_, err := client.Do(ctx, Request{Source: SourceStats, URL: server.URL})
	require.Error(t, err)

	var ferr *Error
	if errors.As(err, &ferr) {
		assert.False(t, ferr.IsRetryable())
	}
}

func TestRequestBuilders(t *testing.T) {
	e := Endpoints{
		StatsBaseURL:     "http://stats.test/stats",
		BRefBaseURL:      "http://bref.test",
		GamebooksBaseURL: "http://books.test/gamebooks",
	}
	day := time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC)

	sb := e.ScoreboardRequest(day)
	assert.Equal(t, SourceStats, sb.Source)
	assert.Contains(t, sb.URL, "scoreboardv2")
	assert.Contains(t, sb.URL, "GameDate=2024-12-25")
	assert.Equal(t, "https://www.nba.com/", sb.Headers["Referer"])

	box := e.BoxScoreRequest("0022400123")
	assert.Contains(t, box.URL, "boxscoresummaryv2")
	assert.Contains(t, box.URL, "GameID=0022400123")

	pbp := e.PlayByPlayRequest("0022400123")
	assert.Contains(t, pbp.URL, "playbyplayv2")
	assert.Contains(t, pbp.URL, "EndPeriod=10")

	shots := e.ShotChartRequest("0022400123")
	assert.Contains(t, shots.URL, "shotchartdetail")
	assert.Contains(t, shots.URL, "ContextMeasure=FGA")

	bref := e.BRefBoxRequest(day, "BOS")
	assert.Equal(t, "http://bref.test/boxscores/202412250BOS.html", bref.URL)

	book := e.GamebookRequest(day, "0022400123")
	assert.Equal(t, "http://books.test/gamebooks/2024-12-25/0022400123.txt", book.URL)
}
