package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"plutoiptv/internal/testsupport"
)

func TestRunPublishesBothDocuments(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "3 raw, 3 published")
	requireContains(t, out, "Wrote "+env.cfg.PlaylistPath())
	requireContains(t, out, "Wrote "+env.cfg.GuidePath())

	playlist, err := os.ReadFile(env.cfg.PlaylistPath())
	if err != nil {
		t.Fatalf("read playlist: %v", err)
	}
	if !strings.HasPrefix(string(playlist), "#EXTM3U") {
		t.Fatalf("unexpected playlist header: %q", string(playlist)[:min(len(playlist), 40)])
	}
	if got := strings.Count(string(playlist), "#EXTINF"); got != 3 {
		t.Fatalf("expected 3 playlist entries, got %d", got)
	}
	guide, err := os.ReadFile(env.cfg.GuidePath())
	if err != nil {
		t.Fatalf("read guide: %v", err)
	}
	requireContains(t, string(guide), "<tv")
}

func TestRunDryRunWritesNothing(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"run", "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("run --dry-run: %v", err)
	}
	requireContains(t, out, "Dry run")
	if _, err := os.Stat(env.cfg.PlaylistPath()); !os.IsNotExist(err) {
		t.Fatalf("expected no playlist, stat err=%v", err)
	}
}

func TestRunJSONAndCacheReuse(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"run"}, env.configPath); err != nil {
		t.Fatalf("first run: %v", err)
	}
	hits := env.feed.Hits()

	out, _, err := runCLI(t, []string{"run", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	var result runResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode run output: %v\n%s", err, out)
	}
	if result.Summary.CacheSource != "persisted" {
		t.Fatalf("expected persisted snapshot on second run, got %q", result.Summary.CacheSource)
	}
	if env.feed.Hits() != hits {
		t.Fatalf("expected no new feed requests, hits %d -> %d", hits, env.feed.Hits())
	}

	if _, _, err := runCLI(t, []string{"run", "--refresh", "--json"}, env.configPath); err != nil {
		t.Fatalf("refresh run: %v", err)
	}
	if env.feed.Hits() == hits {
		t.Fatal("expected --refresh to fetch the feed again")
	}
}

func TestRunFailsWhenFeedUnavailable(t *testing.T) {
	env := setupCLITestEnv(t)
	env.feed.SetStatus(503)

	if _, _, err := runCLI(t, []string{"run"}, env.configPath); err == nil {
		t.Fatal("expected run to fail without a snapshot")
	}
	if _, err := os.Stat(env.cfg.PlaylistPath()); !os.IsNotExist(err) {
		t.Fatalf("expected no playlist, stat err=%v", err)
	}
}

func TestChannelsJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"channels", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("channels: %v", err)
	}
	var listing struct {
		TotalRaw      int `json:"totalRaw"`
		TotalFiltered int `json:"totalFiltered"`
		Channels      []struct {
			Number int    `json:"number"`
			Slug   string `json:"slug"`
		} `json:"channels"`
	}
	if err := json.Unmarshal([]byte(out), &listing); err != nil {
		t.Fatalf("decode listing: %v\n%s", err, out)
	}
	if listing.TotalRaw != 3 || listing.TotalFiltered != 3 || len(listing.Channels) != 3 {
		t.Fatalf("unexpected listing: %+v", listing)
	}
	start := env.cfg.Channels.StartNumber
	for i, ch := range listing.Channels {
		if ch.Number != start+i+1 {
			t.Fatalf("channel %d: expected number %d, got %d", i, start+i+1, ch.Number)
		}
	}

	out, _, err = runCLI(t, []string{"channels"}, env.configPath)
	if err != nil {
		t.Fatalf("channels table: %v", err)
	}
	requireContains(t, out, "Channel 2")
	requireContains(t, out, "3 of 3 channels published")
}

func TestDuplicatesReport(t *testing.T) {
	env := setupCLITestEnv(t)
	channels := testsupport.NewFeedChannels(2)
	channels = append(channels, testsupport.NewChannel("ch9", "Channel 1", "other", 1))
	env.feed.SetChannels(channels)

	out, _, err := runCLI(t, []string{"duplicates", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("duplicates: %v", err)
	}
	var analysis struct {
		Summary struct {
			Numbers int `json:"totalDuplicateNumbers"`
			Names   int `json:"totalDuplicateNames"`
			Slugs   int `json:"totalDuplicateSlugs"`
		} `json:"summary"`
	}
	if err := json.Unmarshal([]byte(out), &analysis); err != nil {
		t.Fatalf("decode analysis: %v\n%s", err, out)
	}
	if analysis.Summary.Numbers != 1 || analysis.Summary.Names != 1 || analysis.Summary.Slugs != 0 {
		t.Fatalf("unexpected summary: %+v", analysis.Summary)
	}

	out, _, err = runCLI(t, []string{"duplicates"}, env.configPath)
	if err != nil {
		t.Fatalf("duplicates table: %v", err)
	}
	requireContains(t, out, "Duplicate numbers (1)")
	requireContains(t, out, "Duplicate slugs (0)")
}

func TestCacheStatusAndClear(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithSQLiteCache())

	out, _, err := runCLI(t, []string{"cache", "status"}, env.configPath)
	if err != nil {
		t.Fatalf("cache status: %v", err)
	}
	requireContains(t, out, "empty")

	if _, _, err := runCLI(t, []string{"run", "--dry-run"}, env.configPath); err != nil {
		t.Fatalf("run: %v", err)
	}
	out, _, err = runCLI(t, []string{"cache", "status", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("cache status --json: %v", err)
	}
	var st struct {
		Backend  string `json:"backend"`
		HasData  bool   `json:"hasData"`
		Fresh    bool   `json:"fresh"`
		Channels int    `json:"channels"`
	}
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("decode cache status: %v\n%s", err, out)
	}
	if st.Backend != "sqlite" || !st.HasData || !st.Fresh || st.Channels != 3 {
		t.Fatalf("unexpected cache status: %+v", st)
	}

	out, _, err = runCLI(t, []string{"cache", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Cache cleared")
	out, _, err = runCLI(t, []string{"cache", "status"}, env.configPath)
	if err != nil {
		t.Fatalf("cache status after clear: %v", err)
	}
	requireContains(t, out, "empty")
}

func TestStatusReportsChecks(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	var report statusReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode status: %v\n%s", err, out)
	}
	if len(report.Checks) == 0 {
		t.Fatal("expected preflight checks")
	}
	for _, check := range report.Checks {
		if !check.Passed {
			t.Fatalf("check %s failed: %s", check.Name, check.Detail)
		}
	}

	env.feed.SetStatus(500)
	if _, _, err := runCLI(t, []string{"status"}, env.configPath); err == nil {
		t.Fatal("expected status to fail when the feed is down")
	}
}

func TestTestNotifySendsToTopic(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify without topic: %v", err)
	}
	requireContains(t, out, "Notifications disabled")

	var titles []string
	ntfy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		titles = append(titles, r.Header.Get("Title"))
	}))
	defer ntfy.Close()
	env.cfg.Notifications.NtfyTopic = ntfy.URL
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err = runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Test notification sent")
	if len(titles) != 1 || titles[0] != "plutoiptv - Test" {
		t.Fatalf("unexpected ntfy requests %v", titles)
	}
}
