package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrNoResponse bedeutet: alle Versuche erschöpft, kein verwertbares
// Ergebnis. Aufrufer überspringen den betroffenen Datensatz und machen
// mit dem Batch weiter.
var ErrNoResponse = errors.New("keine verwertbare antwort vom provider")

// RetryPolicy beschreibt das Wiederholungsverhalten für transiente
// Fehler (429, 5xx, Netzwerkfehler). Sleep ist injizierbar, damit Tests
// ohne echte Wartezeiten laufen.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	Sleep       func(time.Duration)
}

// DefaultRetryPolicy entspricht dem Verhalten der Produktions-Läufe.
func DefaultRetryPolicy(attempts int, backoff time.Duration) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, Backoff: backoff, Sleep: time.Sleep}
}

func (p RetryPolicy) retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// Client kapselt alle HTTP-Aufrufe gegen einen Provider: feste Pause vor
// jedem Call (Rate-Budget des Providers), Retry-Policy, statische Header.
// Archive wird, falls gesetzt, mit jeder erfolgreichen Antwort
// aufgerufen (Rohdaten-Archiv im S3).
type Client struct {
	HTTP    *http.Client
	Policy  RetryPolicy
	Delay   time.Duration
	Headers map[string]string
	Archive func(url string, body []byte)
	Logger  *zap.Logger
}

// NewClient erstellt einen Provider-Client mit eigenem http.Client.
func NewClient(policy RetryPolicy, delay time.Duration, headers map[string]string, logger *zap.Logger) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 60 * time.Second},
		Policy:  policy,
		Delay:   delay,
		Headers: headers,
		Logger:  logger,
	}
}

// Get führt eine GET-Anfrage mit Rate-Limit-Pause und Retries aus.
// 200 und 404 gelten als Antwort (404 heißt nur: keine Daten); 429 und
// 5xx werden mit festem Backoff wiederholt. Nach Erschöpfung der
// Versuche kommt ErrNoResponse zurück.
func (c *Client) Get(ctx context.Context, url string) ([]byte, int, error) {
	sleep := c.Policy.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	if c.Delay > 0 {
		sleep(c.Delay)
	}

	log := c.Logger.With(zap.String("url", url))
	for attempt := 1; attempt <= c.Policy.MaxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, 0, err
		}
		for k, v := range c.Headers {
			req.Header.Set(k, v)
		}

		resp, err := c.HTTP.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			log.Warn("Anfrage fehlgeschlagen, neuer Versuch",
				zap.Int("attempt", attempt), zap.Error(err))
			sleep(c.Policy.Backoff)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNotFound:
			if readErr != nil {
				return nil, resp.StatusCode, readErr
			}
			if resp.StatusCode == http.StatusOK && c.Archive != nil {
				c.Archive(url, body)
			}
			return body, resp.StatusCode, nil
		case resp.StatusCode == http.StatusTooManyRequests:
			log.Warn("Rate Limit (429), Warte vor neuem Versuch",
				zap.Int("attempt", attempt), zap.Duration("backoff", c.Policy.Backoff))
		case c.Policy.retryable(resp.StatusCode):
			log.Warn("Serverfehler, neuer Versuch",
				zap.Int("status", resp.StatusCode), zap.Int("attempt", attempt))
		default:
			// Nicht wiederholbare 4xx: Versuche trotzdem begrenzt erschöpfen,
			// danach als "keine Antwort" behandeln.
			log.Warn("Unerwarteter Status",
				zap.Int("status", resp.StatusCode), zap.Int("attempt", attempt))
		}
		sleep(c.Policy.Backoff)
	}

	return nil, 0, fmt.Errorf("%w: %s", ErrNoResponse, url)
}
