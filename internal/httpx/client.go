// Package httpx wraps outbound HTTP calls with failure classification. Calls
// never return a Go error; callers always receive a discriminated Result.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/athena-hd/athena-rewards/internal/faults"
	"github.com/athena-hd/athena-rewards/internal/retry"
)

const defaultTimeout = 15 * time.Second

// Result is the discriminated outcome of a fetch.
type Result struct {
	Success       bool                     `json:"success"`
	Status        int                      `json:"status,omitempty"`
	Data          json.RawMessage          `json:"data,omitempty"`
	TransactionID string                   `json:"transaction_id,omitempty"`
	Error         *faults.TransactionError `json:"error,omitempty"`
}

// Client issues JSON requests and classifies every failure mode through the
// faults handler.
type Client struct {
	http    *http.Client
	handler *faults.Handler
	retries *retry.Coordinator
}

// NewClient builds a client. retries may be nil to disable automatic retry.
func NewClient(handler *faults.Handler, retries *retry.Coordinator) *Client {
	return &Client{
		http:    &http.Client{Timeout: defaultTimeout},
		handler: handler,
		retries: retries,
	}
}

// Fetch performs one request. Transport faults, timeouts, and non-2xx
// responses are classified; a 2xx response yields the raw body as Data with
// any transaction id the payload carries.
func (c *Client) Fetch(ctx context.Context, method, url string, body any, fctx *faults.Context) Result {
	res, err := c.do(ctx, method, url, body)
	if err != nil {
		return Result{Error: processRef(c.handler, err, fctx)}
	}
	return res
}

// FetchWithRetry performs the request under the retry coordinator, so
// transient classifications are re-attempted on the backoff schedule.
func (c *Client) FetchWithRetry(ctx context.Context, method, url string, body any, fctx *faults.Context) Result {
	if c.retries == nil {
		return c.Fetch(ctx, method, url, body, fctx)
	}
	outcome := c.retries.Do(ctx, fctx, func() (any, error) {
		return c.do(ctx, method, url, body)
	})
	if !outcome.Success {
		return Result{Error: outcome.Error}
	}
	res, _ := outcome.Result.(Result)
	return res
}

func (c *Client) do(ctx context.Context, method, url string, body any) (Result, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return Result{}, faults.Wrap(faults.ValidationError, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return Result{}, faults.Wrap(faults.ValidationError, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// net/url errors already classify through their wrapped cause
		return Result{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, faults.Wrap(faults.NetworkError, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, statusFault(resp.StatusCode, raw)
	}

	result := Result{Success: true, Status: resp.StatusCode, Data: raw}
	var envelope struct {
		TransactionID string `json:"transaction_id"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		result.TransactionID = envelope.TransactionID
	}
	return result, nil
}

// statusFault maps HTTP failure statuses onto the taxonomy, preferring a
// message from the error body when one is present.
func statusFault(status int, body []byte) *faults.Fault {
	message := fmt.Sprintf("request failed with status %d", status)
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			message = payload.Message
		} else if payload.Error != "" {
			message = payload.Error
		}
	}

	var t faults.Type
	switch {
	case status == http.StatusConflict:
		t = faults.ConcurrentModification
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		t = faults.Timeout
	case status == http.StatusServiceUnavailable || status == http.StatusBadGateway:
		t = faults.ServiceUnavailable
	case status >= 400 && status < 500:
		t = faults.ValidationError
	default:
		t = faults.Unknown
	}

	return &faults.Fault{Type: t, Code: fmt.Sprintf("HTTP_%d", status), Message: message}
}

func processRef(h *faults.Handler, err error, fctx *faults.Context) *faults.TransactionError {
	te := h.Process(err, fctx)
	return &te
}
