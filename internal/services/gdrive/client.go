package gdrive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"fantamorto/internal/lists"
	"fantamorto/internal/logging"
	"fantamorto/internal/services"
)

const googleAppsPrefix = "application/vnd.google-apps."

// Credentials carries the OAuth2 client and the user's tokens.
type Credentials struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string
	TokenURL     string
}

// Client reads and writes list documents through the Drive v3 REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	oauth      *oauth2.Config
	logger     *slog.Logger

	mu     sync.Mutex
	source oauth2.TokenSource
	files  map[string]fileRef
}

type fileRef struct {
	ID       string
	MimeType string
}

var _ lists.Store = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for Drive and token calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL points the client at a different Drive host.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			c.baseURL = base
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "gdrive")
	}
}

// New builds a Drive client. All four credential values are required.
func New(creds Credentials, opts ...Option) (*Client, error) {
	for name, value := range map[string]string{
		"client id":     creds.ClientID,
		"client secret": creds.ClientSecret,
		"access token":  creds.AccessToken,
		"refresh token": creds.RefreshToken,
	} {
		if strings.TrimSpace(value) == "" {
			return nil, services.Wrap(services.ErrConfigurationMissing, "gdrive", "new", name+" required", nil)
		}
	}
	tokenURL := strings.TrimSpace(creds.TokenURL)
	if tokenURL == "" {
		tokenURL = "https://oauth2.googleapis.com/token"
	}
	c := &Client{
		baseURL:    "https://www.googleapis.com",
		httpClient: &http.Client{Timeout: 15 * time.Second},
		oauth: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: tokenURL, AuthStyle: oauth2.AuthStyleInParams},
		},
		logger: logging.NewNop(),
		files:  make(map[string]fileRef),
	}
	for _, opt := range opts {
		opt(c)
	}
	// A token without expiry is used as-is until Drive rejects it.
	initial := &oauth2.Token{AccessToken: creds.AccessToken, RefreshToken: creds.RefreshToken, TokenType: "Bearer"}
	c.source = oauth2.StaticTokenSource(initial)
	return c, nil
}

// ReadList locates the document named key and decodes its JSON content.
func (c *Client) ReadList(ctx context.Context, key string) ([]string, error) {
	ref, err := c.lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	var endpoint string
	if strings.HasPrefix(ref.MimeType, googleAppsPrefix) {
		endpoint = fmt.Sprintf("%s/drive/v3/files/%s/export?%s", c.baseURL, url.PathEscape(ref.ID), url.Values{"mimeType": {"text/plain"}}.Encode())
	} else {
		endpoint = fmt.Sprintf("%s/drive/v3/files/%s?alt=media", c.baseURL, url.PathEscape(ref.ID))
	}
	body, err := c.do(ctx, http.MethodGet, endpoint, "", nil)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "gdrive", "read", key, err)
	}
	names, err := lists.Decode(body)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "gdrive", "read", key, err)
	}
	return names, nil
}

// WriteList overwrites the content of the document named key.
func (c *Client) WriteList(ctx context.Context, key string, names []string) error {
	ref, err := c.lookup(ctx, key)
	if err != nil {
		return err
	}
	payload, err := lists.Encode(names)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "gdrive", "write", key, err)
	}
	endpoint := fmt.Sprintf("%s/upload/drive/v3/files/%s?uploadType=media", c.baseURL, url.PathEscape(ref.ID))
	if _, err := c.do(ctx, http.MethodPatch, endpoint, "text/plain", payload); err != nil {
		return services.Wrap(services.ErrPersistence, "gdrive", "write", key, err)
	}
	c.logger.Info("drive document updated",
		logging.String(logging.FieldEventType, "gdrive_write"),
		logging.String("document", key),
		logging.Int("names", len(names)),
	)
	return nil
}

// lookup resolves a document name to its file id, caching the answer for the
// life of the client.
func (c *Client) lookup(ctx context.Context, name string) (fileRef, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return fileRef{}, services.Wrap(services.ErrConfigurationMissing, "gdrive", "lookup", "document name required", nil)
	}
	c.mu.Lock()
	ref, ok := c.files[name]
	c.mu.Unlock()
	if ok {
		return ref, nil
	}

	params := url.Values{}
	params.Set("q", fmt.Sprintf("name = '%s' and trashed = false", escapeQuery(name)))
	params.Set("fields", "files(id,name,mimeType)")
	params.Set("pageSize", "1")
	body, err := c.do(ctx, http.MethodGet, c.baseURL+"/drive/v3/files?"+params.Encode(), "", nil)
	if err != nil {
		return fileRef{}, services.Wrap(services.ErrPersistence, "gdrive", "lookup", name, err)
	}
	var listing struct {
		Files []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			MimeType string `json:"mimeType"`
		} `json:"files"`
	}
	if err := json.Unmarshal(body, &listing); err != nil {
		return fileRef{}, services.Wrap(services.ErrPersistence, "gdrive", "lookup", "decode file listing", err)
	}
	if len(listing.Files) == 0 {
		return fileRef{}, services.Wrap(services.ErrPersistence, "gdrive", "lookup", fmt.Sprintf("document %q not found", name), nil)
	}
	ref = fileRef{ID: listing.Files[0].ID, MimeType: listing.Files[0].MimeType}
	c.mu.Lock()
	c.files[name] = ref
	c.mu.Unlock()
	return ref, nil
}

// do sends an authorized request. A 401 triggers one token refresh from the
// refresh token and a single resend.
func (c *Client) do(ctx context.Context, method, endpoint, contentType string, payload []byte) ([]byte, error) {
	body, status, err := c.send(ctx, method, endpoint, contentType, payload)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		if err := c.refresh(ctx); err != nil {
			return nil, err
		}
		body, status, err = c.send(ctx, method, endpoint, contentType, payload)
		if err != nil {
			return nil, err
		}
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("drive returned %d: %s", status, snippet(body))
	}
	return body, nil
}

func (c *Client) send(ctx context.Context, method, endpoint, contentType string, payload []byte) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.mu.Lock()
	source := c.source
	c.mu.Unlock()
	token, err := source.Token()
	if err != nil {
		return nil, 0, fmt.Errorf("obtain access token: %w", err)
	}
	token.SetAuthHeader(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("execute request (latency=%v): %w", time.Since(start), err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("drive request",
		logging.String("method", method),
		logging.Int("status", resp.StatusCode),
		logging.Duration("latency", time.Since(start)),
	)
	return body, resp.StatusCode, nil
}

func (c *Client) refresh(ctx context.Context) error {
	c.mu.Lock()
	current, err := c.source.Token()
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("read current token: %w", err)
	}
	if current.RefreshToken == "" {
		return errors.New("drive rejected access token and no refresh token is available")
	}
	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	// An empty access token forces the config source to refresh immediately.
	fresh, err := c.oauth.TokenSource(tokenCtx, &oauth2.Token{RefreshToken: current.RefreshToken}).Token()
	if err != nil {
		return fmt.Errorf("refresh access token: %w", err)
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = current.RefreshToken
	}
	c.logger.Info("drive access token refreshed", logging.String(logging.FieldEventType, "gdrive_token_refresh"))

	c.mu.Lock()
	c.source = oauth2.ReuseTokenSource(fresh, c.oauth.TokenSource(context.WithValue(context.Background(), oauth2.HTTPClient, c.httpClient), fresh))
	c.mu.Unlock()
	return nil
}

func escapeQuery(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, `'`, `\'`)
}

func snippet(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > 256 {
		text = text[:256]
	}
	return text
}
