package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"fantamorto/internal/config"
	"fantamorto/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	wiki       *testsupport.WikiServer
	webhook    *testsupport.WebhookServer
	birthYear  int
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	wikiServer := testsupport.NewWikiServer(t)
	webhook := testsupport.NewWebhookServer(t)
	born := time.Now().Year() - 76
	cfg := testsupport.NewConfig(t,
		testsupport.WithRoster(fmt.Sprintf(`{"TeamA": {"Mario Rossi": %d}, "TeamB": {"Jane Doe": 1990}}`, born)),
		testsupport.WithWikiServer(wikiServer),
		testsupport.WithWebhook(webhook.URL),
	)
	wikiServer.SetPage("it", "Mario Rossi", testsupport.ItalianDead)
	wikiServer.SetPage("en", "Jane Doe", testsupport.EnglishAlive)

	configPath := filepath.Join(filepath.Dir(cfg.Roster.Path), "fantamorto.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath, wiki: wikiServer, webhook: webhook, birthYear: born}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--log-level", "error"}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestRunTwiceConfirmsAndAnnounces(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	requireContains(t, out, "Checked 2 names")
	requireContains(t, out, "Nobody died.")
	requireContains(t, out, "Maybe dead, confirming next run: Mario Rossi")
	if len(env.webhook.Texts()) != 0 {
		t.Fatalf("expected no notification on first sighting, got %v", env.webhook.Texts())
	}

	out, _, err = runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	requireContains(t, out, "Confirmed dead: Mario Rossi")
	requireContains(t, out, "TeamA +24 for Mario Rossi")

	texts := env.webhook.Texts()
	if len(texts) != 2 {
		t.Fatalf("expected death and score messages, got %v", texts)
	}
	requireContains(t, texts[0], "Mario Rossi is dead")
	requireContains(t, texts[1], "TeamA scores 24 points for Mario Rossi (age 76)")

	out, _, err = runCLI(t, []string{"status", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var view statusView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode status json: %v\n%s", err, out)
	}
	if len(view.Confirmed) != 1 || view.Confirmed[0] != "Mario Rossi" || len(view.Maybe) != 0 {
		t.Fatalf("unexpected lists: %+v", view)
	}
	if len(view.Standings) != 2 || view.Standings[0].Team != "TeamA" || view.Standings[0].Points != 24 {
		t.Fatalf("unexpected standings: %+v", view.Standings)
	}
	if _, ok := view.Updated["confirmed"]; !ok {
		t.Fatalf("expected confirmed list update time, got %+v", view.Updated)
	}

	out, _, err = runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "confirmed list updated at")
}

func TestRunJSONOutput(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"run", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("run --json: %v", err)
	}
	var summary runSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode run json: %v\n%s", err, out)
	}
	if summary.RunID == "" || summary.Names != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.NewlyMaybe) != 1 || summary.NewlyMaybe[0] != "Mario Rossi" {
		t.Fatalf("unexpected newly maybe: %+v", summary.NewlyMaybe)
	}
	if summary.Confirmed == nil || summary.NotifyErrors == nil {
		t.Fatal("expected empty arrays instead of null in JSON output")
	}
}

func TestRunFailsOnUpstreamError(t *testing.T) {
	env := setupCLITestEnv(t)
	env.wiki.Fail("it", 503)

	_, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err == nil {
		t.Fatal("expected run to fail when Wikipedia is unavailable")
	}
	requireContains(t, err.Error(), "upstream lookup failure")
}

func TestStatusRendersTables(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Lists ==")
	requireContains(t, out, "sqlite")
	requireContains(t, out, "[OK] 0 names")
	requireContains(t, out, "TeamA")
	requireContains(t, out, "TOTAL")
}

func TestRosterCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"roster", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	var entries []rosterEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode roster json: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "Mario Rossi" || entries[0].Age != 76 || entries[0].Bonus != 24 {
		t.Fatalf("unexpected roster entries: %+v", entries)
	}

	out, _, err = runCLI(t, []string{"roster"}, env.configPath)
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	requireContains(t, out, "Jane Doe")
	requireContains(t, out, "BONUS")
}

func TestLookupDoesNotPersist(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"lookup", "Mario Rossi", "Nobody Known"}, env.configPath)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	requireContains(t, out, "Mario Rossi")
	requireContains(t, out, "dead")
	requireContains(t, out, "unresolved")
	requireContains(t, out, "it > en > de")

	out, _, err = runCLI(t, []string{"status", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var view statusView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode status json: %v", err)
	}
	if len(view.Maybe) != 0 || len(view.Confirmed) != 0 {
		t.Fatalf("lookup must not change the lists: %+v", view)
	}
	if len(env.webhook.Texts()) != 0 {
		t.Fatal("lookup must not notify")
	}
}

func TestListsReset(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"run"}, env.configPath); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, _, err := runCLI(t, []string{"lists", "reset"}, env.configPath); err == nil {
		t.Fatal("expected reset without a list flag to fail")
	}
	if _, _, err := runCLI(t, []string{"lists", "reset", "--confirmed"}, env.configPath); err == nil {
		t.Fatal("expected confirmed reset without --yes to fail")
	}

	out, _, err := runCLI(t, []string{"lists", "reset", "--maybe"}, env.configPath)
	if err != nil {
		t.Fatalf("lists reset: %v", err)
	}
	requireContains(t, out, "Maybe list forse-morti.json emptied")

	out, _, err = runCLI(t, []string{"status", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var view statusView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode status json: %v", err)
	}
	if len(view.Maybe) != 0 {
		t.Fatalf("expected maybe list to be empty, got %v", view.Maybe)
	}
}

func TestTestNotify(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Test notification sent (webhook)")
	texts := env.webhook.Texts()
	if len(texts) != 1 || !strings.Contains(texts[0], "test") {
		t.Fatalf("unexpected webhook payloads: %v", texts)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Languages: it, en, de")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
}

func TestDoctor(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "Wikipedia it:")
	requireContains(t, out, "[OK] 0 confirmed, 0 maybe")

	env.wiki.Fail("de", 503)
	out, _, err = runCLI(t, []string{"doctor"}, env.configPath)
	if err == nil {
		t.Fatal("expected doctor to fail when an edition is down")
	}
	requireContains(t, out, "[FAIL] unexpected status 503")
}
