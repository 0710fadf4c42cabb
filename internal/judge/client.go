package judge

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/nshrhm/aoj-submission-manager/internal/metrics"
	"github.com/nshrhm/aoj-submission-manager/internal/models"
)

const DefaultEndpoint = "https://judgeapi.u-aizu.ac.jp"

// ErrSourceNotFound is returned when the judge has no source for a judge id.
var ErrSourceNotFound = errors.New("source not found")

// SubmissionFetcher returns every submission record of a user for a problem.
type SubmissionFetcher func(ctx context.Context, userID, problemID string) ([]models.SubmissionRecord, error)

// SourceFetcher returns the submitted source text for a judge id.
type SourceFetcher func(ctx context.Context, judgeID int64) (string, error)

type Options struct {
	Endpoint           string
	Timeout            time.Duration
	RequestsPerSecond  float64
	Burst              int
	InsecureSkipVerify bool
	UserAgent          string
}

type Client struct {
	endpoint  string
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

func NewClient(opts Options) *Client {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		endpoint:  strings.TrimRight(endpoint, "/"),
		http:      &http.Client{Timeout: opts.Timeout, Transport: transport},
		limiter:   rate.NewLimiter(limit, burst),
		userAgent: opts.UserAgent,
	}
}

func (c *Client) FetchSubmissions(ctx context.Context, userID, problemID string) ([]models.SubmissionRecord, error) {
	path := fmt.Sprintf("/submission_records/users/%s/problems/%s",
		url.PathEscape(userID), url.PathEscape(problemID))

	body, status, err := c.get(ctx, "submissions", path)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		metrics.JudgeFetchTotal.WithLabelValues("submissions", "status").Inc()
		return nil, fmt.Errorf("judge returned status %d for %s/%s", status, userID, problemID)
	}

	var records []models.SubmissionRecord
	if err := json.Unmarshal(body, &records); err != nil {
		metrics.JudgeFetchTotal.WithLabelValues("submissions", "decode").Inc()
		return nil, fmt.Errorf("failed to decode submissions for %s/%s: %w", userID, problemID, err)
	}
	metrics.JudgeFetchTotal.WithLabelValues("submissions", "ok").Inc()
	return records, nil
}

type review struct {
	SourceCode *string `json:"sourceCode"`
}

func (c *Client) FetchSource(ctx context.Context, judgeID int64) (string, error) {
	body, status, err := c.get(ctx, "source", "/reviews/"+strconv.FormatInt(judgeID, 10))
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		metrics.JudgeFetchTotal.WithLabelValues("source", "not_found").Inc()
		return "", fmt.Errorf("judge id %d: status %d: %w", judgeID, status, ErrSourceNotFound)
	}

	var r review
	if err := json.Unmarshal(body, &r); err != nil {
		metrics.JudgeFetchTotal.WithLabelValues("source", "decode").Inc()
		return "", fmt.Errorf("failed to decode review %d: %w", judgeID, err)
	}
	if r.SourceCode == nil {
		metrics.JudgeFetchTotal.WithLabelValues("source", "not_found").Inc()
		return "", fmt.Errorf("judge id %d: %w", judgeID, ErrSourceNotFound)
	}
	metrics.JudgeFetchTotal.WithLabelValues("source", "ok").Inc()
	return *r.SourceCode, nil
}

func (c *Client) get(ctx context.Context, kind, path string) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.JudgeFetchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.JudgeFetchTotal.WithLabelValues(kind, "error").Inc()
		return nil, 0, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.JudgeFetchTotal.WithLabelValues(kind, "error").Inc()
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
