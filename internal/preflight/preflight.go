package preflight

import (
	"context"

	"fantamorto/internal/config"
	"fantamorto/internal/lists"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes every preflight check for cfg. A nil store means the list
// backend could not be opened; openErr carries the reason.
func RunAll(ctx context.Context, cfg *config.Config, store lists.Store, openErr error) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckRoster(cfg.Roster.Path),
	}
	for _, lang := range cfg.Wikipedia.Languages {
		results = append(results, CheckWikipedia(ctx, cfg, lang))
	}
	if store == nil {
		results = append(results, Result{Name: "List store", Detail: summarizeError(openErr)})
	} else {
		results = append(results, CheckListStore(ctx, store, lists.Keys{
			Confirmed: cfg.Storage.ConfirmedDocument,
			Maybe:     cfg.Storage.MaybeDocument,
			Years:     cfg.Storage.YearsDocument,
		}))
	}
	results = append(results, CheckWebhook(cfg.Notifications.WebhookURL))
	return results
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
