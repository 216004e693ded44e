package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"fantamorto/internal/config"
	"fantamorto/internal/lists"
	"fantamorto/internal/roster"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckRoster verifies the roster parses and drafts at least one name.
func CheckRoster(path string) Result {
	const name = "Roster"
	game, err := roster.Load(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	names := game.Names()
	if len(names) == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: no drafted names)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d teams, %d names", len(game), len(names))}
}

// CheckWikipedia verifies the lang edition answers a siteinfo query. It uses
// a single attempt bounded by the configured request timeout.
func CheckWikipedia(ctx context.Context, cfg *config.Config, lang string) Result {
	name := "Wikipedia " + lang
	endpoint := strings.ReplaceAll(cfg.Wikipedia.EndpointTemplate, "{lang}", url.PathEscape(lang))
	base, err := url.Parse(endpoint)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("invalid endpoint (%v)", err)}
	}
	params := base.Query()
	params.Set("action", "query")
	params.Set("meta", "siteinfo")
	params.Set("format", "json")
	base.RawQuery = params.Encode()

	timeout := cfg.WikipediaTimeout()
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base.String(), nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("request failed (%v)", err)}
	}
	req.Header.Set("User-Agent", cfg.Wikipedia.UserAgent)

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{Name: name, Detail: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

// CheckListStore reads both lists without modifying them.
func CheckListStore(ctx context.Context, store lists.Store, keys lists.Keys) Result {
	const name = "List store"
	state, err := lists.Load(ctx, store, keys)
	if err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d confirmed, %d maybe", len(state.Confirmed), len(state.Maybe))}
}

// CheckWebhook validates the webhook URL without sending anything.
func CheckWebhook(raw string) Result {
	const name = "Webhook"
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("invalid url (%v)", err)}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Result{Name: name, Detail: "url must use http or https"}
	}
	if parsed.Host == "" {
		return Result{Name: name, Detail: "url has no host"}
	}
	return Result{Name: name, Passed: true, Detail: parsed.Scheme + "://" + parsed.Host}
}

// summarizeError produces a human-readable summary for failed checks.
func summarizeError(err error) string {
	if err == nil {
		return "unavailable"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out (unreachable)"
	}
	return err.Error()
}
