package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/webpbin/trafficd/internal/core/bucket"
)

// SeriesFetcher retrieves a traffic series for an absolute range.
type SeriesFetcher interface {
	FetchSeries(ctx context.Context, r bucket.TimeRange) (timestamps []int64, hits []float64, err error)
}

// HTTPFetcher fetches series from the trafficd query API. The server
// picks the response granularity; the session decides which cache slot
// the result belongs to.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

func NewHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (f *HTTPFetcher) FetchSeries(ctx context.Context, r bucket.TimeRange) ([]int64, []float64, error) {
	url := fmt.Sprintf("%s/v1/traffic?start=%d&end=%d", f.baseURL, r.Start, r.End)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build traffic request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch traffic series: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("fetch traffic series: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Granularity string `json:"granularity"`
		Data        []struct {
			Bucket int64 `json:"bucket"`
			Hits   int64 `json:"hits"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, nil, fmt.Errorf("decode traffic series: %w", err)
	}

	timestamps := make([]int64, len(body.Data))
	hits := make([]float64, len(body.Data))
	for i, pt := range body.Data {
		timestamps[i] = pt.Bucket
		hits[i] = float64(pt.Hits)
	}
	return timestamps, hits, nil
}
