package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"fantamorto/internal/logging"
	"fantamorto/internal/services"
)

// MaxBatch is the largest number of titles MediaWiki accepts per revisions
// query with content.
const MaxBatch = 50

// Looker resolves names against a single language edition.
type Looker interface {
	Lookup(ctx context.Context, names []string, lang string) (LookupResult, error)
}

// Client queries MediaWiki revision content for batches of titles.
type Client struct {
	endpointTemplate string
	httpClient       *http.Client
	userAgent        string
	batchSize        int
	parallelism      int
	classifier       *Classifier
	logger           *slog.Logger
}

var _ Looker = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if agent = strings.TrimSpace(agent); agent != "" {
			c.userAgent = agent
		}
	}
}

// WithBatchSize sets how many titles go into one request. Values outside
// 1..MaxBatch are clamped.
func WithBatchSize(size int) Option {
	return func(c *Client) {
		c.batchSize = min(max(size, 1), MaxBatch)
	}
}

// WithParallelism bounds how many batches of one lookup are in flight.
func WithParallelism(n int) Option {
	return func(c *Client) {
		c.parallelism = max(n, 1)
	}
}

// WithMarkers replaces the classification vocabulary.
func WithMarkers(m Markers) Option {
	return func(c *Client) {
		c.classifier = NewClassifier(m)
	}
}

// WithLogger attaches a logger for per-request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "wiki")
	}
}

// New creates a client. endpointTemplate must contain the {lang} placeholder,
// e.g. https://{lang}.wikipedia.org/w/api.php.
func New(endpointTemplate string, opts ...Option) (*Client, error) {
	endpointTemplate = strings.TrimSpace(endpointTemplate)
	if !strings.Contains(endpointTemplate, "{lang}") {
		return nil, errors.New("wikipedia endpoint template must contain {lang}")
	}
	client := &Client{
		endpointTemplate: endpointTemplate,
		httpClient:       &http.Client{Timeout: 15 * time.Second},
		userAgent:        "fantamorto",
		batchSize:        MaxBatch,
		parallelism:      1,
		classifier:       NewClassifier(DefaultMarkers()),
		logger:           logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Lookup fetches every name from the lang edition in batches and classifies
// the returned pages. Duplicate names are queried once. Any failed batch
// fails the whole lookup; partial results are never returned.
func (c *Client) Lookup(ctx context.Context, names []string, lang string) (LookupResult, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return LookupResult{}, errors.New("wikipedia language required")
	}
	unique := dedupe(names)
	if len(unique) == 0 {
		return LookupResult{}, nil
	}

	batches := chunk(unique, c.batchSize)
	pages := make([][]PageResult, len(batches))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.parallelism)
	for i, batch := range batches {
		group.Go(func() error {
			result, err := c.FetchPages(groupCtx, batch, lang)
			if err != nil {
				return err
			}
			pages[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return LookupResult{}, err
	}

	var out LookupResult
	for _, batch := range pages {
		for _, p := range batch {
			switch c.classifier.Classify(p, lang) {
			case StatusDead:
				out.Dead = append(out.Dead, p.Title)
			case StatusAlive:
				out.Alive = append(out.Alive, p.Title)
			default:
				out.MissingOrRedirect = append(out.MissingOrRedirect, p.Title)
			}
		}
	}
	return out, nil
}

// FetchPages performs a single revisions query for at most MaxBatch titles
// and returns one PageResult per requested title, in request order.
func (c *Client) FetchPages(ctx context.Context, titles []string, lang string) ([]PageResult, error) {
	if len(titles) == 0 {
		return nil, nil
	}
	if len(titles) > MaxBatch {
		return nil, fmt.Errorf("wikipedia batch of %d exceeds limit %d", len(titles), MaxBatch)
	}
	operation := "query " + lang

	endpoint, err := c.endpoint(lang, titles)
	if err != nil {
		return nil, services.Wrap(services.ErrUpstreamLookup, "wiki", operation, "build request url", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrUpstreamLookup, "wiki", operation, "build request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	logger := logging.WithContext(services.WithLanguage(ctx, lang), c.logger)
	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		logging.WarnWithContext(logger, "wikipedia request failed", "wiki_request_failed",
			logging.Int("titles", len(titles)),
			logging.Duration("latency", latency),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check network connectivity to Wikipedia"),
			logging.String(logging.FieldImpact, "run aborts without changing stored lists"),
		)
		return nil, services.Wrap(services.ErrUpstreamLookup, "wiki", operation, fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	logger.Info("wikipedia query",
		logging.String(logging.FieldEventType, "wiki_query"),
		logging.Int("titles", len(titles)),
		logging.Int("status", resp.StatusCode),
		logging.Duration("latency", latency),
	)

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, services.Wrap(services.ErrUpstreamLookup, "wiki", operation,
			fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))), nil)
	}

	var payload queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, services.Wrap(services.ErrUpstreamLookup, "wiki", operation, "decode response", err)
	}
	if payload.Error != nil {
		return nil, services.Wrap(services.ErrUpstreamLookup, "wiki", operation,
			fmt.Sprintf("api error %s: %s", payload.Error.Code, payload.Error.Info), nil)
	}
	return matchPages(titles, payload), nil
}

func (c *Client) endpoint(lang string, titles []string) (string, error) {
	base, err := url.Parse(strings.ReplaceAll(c.endpointTemplate, "{lang}", url.PathEscape(lang)))
	if err != nil {
		return "", err
	}
	params := base.Query()
	params.Set("action", "query")
	params.Set("titles", strings.Join(titles, "|"))
	params.Set("prop", "revisions")
	params.Set("rvprop", "content")
	params.Set("rvslots", "main")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	base.RawQuery = params.Encode()
	return base.String(), nil
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func chunk(names []string, size int) [][]string {
	if size <= 0 {
		size = MaxBatch
	}
	batches := make([][]string, 0, (len(names)+size-1)/size)
	for start := 0; start < len(names); start += size {
		end := min(start+size, len(names))
		batches = append(batches, names[start:end])
	}
	return batches
}
