package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestClient baut einen Client mit aufgezeichnetem Sleep, damit
// Delay- und Backoff-Verhalten ohne echte Wartezeiten prüfbar sind.
func newTestClient(attempts int, delay time.Duration) (*Client, *[]time.Duration) {
	var slept []time.Duration
	policy := RetryPolicy{
		MaxAttempts: attempts,
		Backoff:     5 * time.Second,
		Sleep:       func(d time.Duration) { slept = append(slept, d) },
	}
	c := NewClient(policy, delay, map[string]string{"X-Auth-Token": "test-key"}, zap.NewNop())
	return c, &slept
}

func TestGetSuccess(t *testing.T) {
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Auth-Token")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c, slept := newTestClient(3, 2*time.Second)
	body, status, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, `{"ok":true}`, string(body))
	assert.Equal(t, "test-key", gotHeader)
	// Nur die feste Call-Pause, kein Backoff.
	assert.Equal(t, []time.Duration{2 * time.Second}, *slept)
}

func TestGetNotFoundIsAnAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, _ := newTestClient(3, 0)
	_, status, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err, "404 ist eine gültige antwort, kein retry-fall")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGetRetriesOnRateLimit(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c, slept := newTestClient(3, 0)
	body, status, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, 3, calls)
	// Zwei Backoff-Pausen vor dem dritten, erfolgreichen Versuch.
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, *slept)
}

func TestGetExhaustionReturnsErrNoResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, _ := newTestClient(3, 0)
	_, _, err := c.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoResponse)
}

func TestGetArchivesSuccessfulResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	c, _ := newTestClient(1, 0)
	var archivedURL string
	var archivedBody []byte
	c.Archive = func(url string, body []byte) {
		archivedURL = url
		archivedBody = body
	}

	_, _, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, srv.URL, archivedURL)
	assert.Equal(t, "payload", string(archivedBody))
}

func TestGetContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, _ := newTestClient(3, 0)
	_, _, err := c.Get(ctx, srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
