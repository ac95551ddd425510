package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// sendSubmissions posts submissions concurrently using a worker pool.
func sendSubmissions(ctx context.Context, config *Config, subs []Submission, stats *Stats) error {
	log.Printf("submitting %d scores with %d workers...", len(subs), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/scores"

	var (
		accepted int64
		declined int64
		failed   int64
		sent     int64
	)

	var lastReport time.Time
	reportInterval := 1 * time.Second

	subChan := make(chan Submission, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for sub := range subChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := sendSingleSubmission(ctx, client, url, sub)

					atomic.AddInt64(&sent, 1)
					switch result {
					case "accepted":
						atomic.AddInt64(&accepted, 1)
					case "declined":
						atomic.AddInt64(&declined, 1)
					case "failed":
						atomic.AddInt64(&failed, 1)
					}

					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&sent)
						log.Printf("progress: %d/%d sent (accepted: %d, declined: %d, failed: %d)",
							total, len(subs),
							atomic.LoadInt64(&accepted),
							atomic.LoadInt64(&declined),
							atomic.LoadInt64(&failed))
					}
				}
			}
		}()
	}

	go func() {
		defer close(subChan)
		for _, sub := range subs {
			select {
			case <-ctx.Done():
				return
			case subChan <- sub:
			}
		}
	}()

	wg.Wait()

	stats.SubmissionsSent = int(atomic.LoadInt64(&sent))
	stats.SubmissionsAccepted = int(atomic.LoadInt64(&accepted))
	stats.SubmissionsDeclined = int(atomic.LoadInt64(&declined))
	stats.SubmissionsFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`submission completed:
   Accepted: %d
   Declined: %d
   Failed: %d
`, stats.SubmissionsAccepted, stats.SubmissionsDeclined, stats.SubmissionsFailed)

	return nil
}

// sendSingleSubmission posts one score and classifies the outcome.
// "declined" means the service kept a higher stored score.
func sendSingleSubmission(ctx context.Context, client *HTTPClient, url string, sub Submission) string {
	resp, err := client.Post(ctx, url, sub)
	if err != nil {
		return "failed"
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	if resp.StatusCode != http.StatusOK {
		return "failed"
	}

	var res SubmitResult
	if err := json.Unmarshal(body, &res); err != nil {
		return "failed"
	}
	if res.Accepted {
		return "accepted"
	}
	return "declined"
}
