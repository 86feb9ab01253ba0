package smoketest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/okian/homeval/pkg/logger"
)

// requestIDHeader matches the header the service echoes.
const requestIDHeader = "X-Request-ID"

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// GetJSON fetches path and decodes the body into out.
func (c *HTTPClient) GetJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, out)
}

// PostJSON posts body as JSON to path, tagging the request with id.
func (c *HTTPClient) PostJSON(ctx context.Context, path, id string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if id != "" {
		req.Header.Set(requestIDHeader, id)
	}
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	// Error bodies may arrive with 200, 400 or 500 depending on server mode.
	if resp.StatusCode >= http.StatusMultipleChoices && resp.StatusCode != http.StatusBadRequest &&
		resp.StatusCode != http.StatusInternalServerError {
		return fmt.Errorf("%s %s returned status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// outcome is the result of posting one case.
type outcome struct {
	c    Case
	resp PredictResponse
	err  error
}

// submitCases posts cases concurrently and hands every outcome to check.
func submitCases(ctx context.Context, config *Config, client *HTTPClient, cases []Case, check func(outcome)) int {
	log := logger.Get()
	log.Info(ctx, "submitting predictions", logger.Int("cases", len(cases)), logger.Int("workers", config.Workers))

	var submitted int64
	caseChan := make(chan Case, config.Workers*WorkerChannelMultiplier)
	results := make(chan outcome, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range caseChan {
				var resp PredictResponse
				err := client.PostJSON(ctx, "/predict", c.ID, PredictRequest{Data: c.Features}, &resp)
				atomic.AddInt64(&submitted, 1)
				results <- outcome{c: c, resp: resp, err: err}
			}
		}()
	}

	go func() {
		defer close(caseChan)
		for _, c := range cases {
			select {
			case <-ctx.Done():
				return
			case caseChan <- c:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// check runs on this goroutine only, so it needs no locking.
	for o := range results {
		check(o)
	}
	return int(atomic.LoadInt64(&submitted))
}
