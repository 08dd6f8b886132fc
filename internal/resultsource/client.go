package resultsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/keirin-edge/internal/config"
	"github.com/yourusername/keirin-edge/internal/metrics"
	"github.com/yourusername/keirin-edge/internal/models"
)

// Client fetches official race results from the results API. Responses
// are cached per day: result pages for a finished day never change, so a
// short TTL is enough to absorb repeated settlement runs.
type Client struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	cache      *cache.Cache
	logger     *logrus.Logger
}

// resultPage is the wire shape of one results response
type resultPage struct {
	Results []raceResult `json:"results"`
}

// raceResult is the wire shape of one settled race
type raceResult struct {
	Place       string        `json:"place"`
	Date        string        `json:"date"`
	RaceNumber  int           `json:"raceNumber"`
	FinishOrder []int         `json:"finishOrder"`
	Payouts     resultPayouts `json:"payouts"`
}

type resultPayouts struct {
	Exacta   float64 `json:"exacta"`
	Trifecta float64 `json:"trifecta"`
	Quinella float64 `json:"quinella"`
	Trio     float64 `json:"trio"`
	Wide1    float64 `json:"wide1"`
	Wide2    float64 `json:"wide2"`
	Wide3    float64 `json:"wide3"`
}

// NewClient creates a results API client
func NewClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, cacheTTL time.Duration, logger *logrus.Logger) *Client {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		cache:      cache.New(cacheTTL, cacheTTL*2),
		logger:     logger,
	}
}

// NewClientFromConfig builds a client from the application configuration
func NewClientFromConfig(cfg config.ResultSourceConfig, logger *logrus.Logger) *Client {
	httpCfg := DefaultHTTPClientConfig()
	if cfg.TimeoutSeconds > 0 {
		httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.RetryAttempts > 0 {
		httpCfg.MaxRetries = cfg.RetryAttempts
	}
	if cfg.RequestsPerSecond > 0 {
		httpCfg.RateLimit = cfg.RequestsPerSecond
	}

	return NewClient(
		NewRateLimitedHTTPClient(httpCfg, logger),
		cfg.BaseURL,
		cfg.APIKey,
		time.Duration(cfg.CacheTTLSeconds)*time.Second,
		logger,
	)
}

// FetchDay retrieves every settled race result for the given date
// (YYYY-MM-DD). Cached pages are served without touching the network.
func (c *Client) FetchDay(ctx context.Context, date string) ([]*models.RaceOutcome, error) {
	cacheKey := "results:" + date
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.([]*models.RaceOutcome), nil
	}

	url := fmt.Sprintf("%s/results?date=%s", c.baseURL, date)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		metrics.RecordResultFetch(false)
		return nil, fmt.Errorf("failed to fetch results for %s: %w", date, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		metrics.RecordResultFetch(false)
		return nil, fmt.Errorf("results API rejected credentials")
	}
	if resp.StatusCode != http.StatusOK {
		metrics.RecordResultFetch(false)
		return nil, fmt.Errorf("results API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordResultFetch(false)
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var page resultPage
	if err := json.Unmarshal(body, &page); err != nil {
		metrics.RecordResultFetch(false)
		return nil, fmt.Errorf("failed to decode results: %w", err)
	}

	outcomes := make([]*models.RaceOutcome, 0, len(page.Results))
	recordedAt := time.Now().UTC()
	for _, r := range page.Results {
		outcomes = append(outcomes, toOutcome(r, recordedAt))
	}

	metrics.RecordResultFetch(true)
	c.cache.Set(cacheKey, outcomes, cache.DefaultExpiration)

	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{
			"date":    date,
			"results": len(outcomes),
		}).Debug("Fetched race results")
	}
	return outcomes, nil
}

// Close releases the underlying HTTP resources
func (c *Client) Close() error {
	return c.httpClient.Close()
}

func toOutcome(r raceResult, recordedAt time.Time) *models.RaceOutcome {
	return &models.RaceOutcome{
		Place:       r.Place,
		Date:        r.Date,
		RaceNumber:  r.RaceNumber,
		FinishOrder: r.FinishOrder,
		Payouts: models.PayoutTable{
			Exacta:   decimal.NewFromFloat(r.Payouts.Exacta),
			Trifecta: decimal.NewFromFloat(r.Payouts.Trifecta),
			Quinella: decimal.NewFromFloat(r.Payouts.Quinella),
			Trio:     decimal.NewFromFloat(r.Payouts.Trio),
			Wide1:    decimal.NewFromFloat(r.Payouts.Wide1),
			Wide2:    decimal.NewFromFloat(r.Payouts.Wide2),
			Wide3:    decimal.NewFromFloat(r.Payouts.Wide3),
		},
		RecordedAt: recordedAt,
	}
}
