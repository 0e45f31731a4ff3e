package preflight

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"plutoiptv/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFeed(t *testing.T) {
	server := testsupport.NewFeedServer(t, nil)
	cfg := testsupport.NewConfig(t, testsupport.WithFeedURL(server.FeedURL()))

	if result := CheckFeed(context.Background(), cfg); result.Passed {
		t.Fatalf("expected empty feed to fail, got %s", result.Detail)
	}

	server.SetChannels(testsupport.NewFeedChannels(3))
	result := CheckFeed(context.Background(), cfg)
	if !result.Passed || !strings.Contains(result.Detail, "3 channels") {
		t.Fatalf("expected pass, got %+v", result)
	}

	server.SetStatus(http.StatusServiceUnavailable)
	result = CheckFeed(context.Background(), cfg)
	if result.Passed || !strings.Contains(result.Detail, "503") {
		t.Fatalf("expected http failure, got %+v", result)
	}
	if server.Hits() != 3 {
		t.Fatalf("probe must not retry, got %d hits", server.Hits())
	}
}

func TestCheckCategoryTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	if err := os.WriteFile(path, []byte("categories:\n  - name: News\n    match: [General News]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckCategoryTable(path); !result.Passed {
		t.Fatalf("expected pass, got %s", result.Detail)
	}
	if err := os.WriteFile(path, []byte("categories: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckCategoryTable(path); result.Passed {
		t.Fatal("expected empty table to fail")
	}
}

func TestRunAll(t *testing.T) {
	server := testsupport.NewFeedServer(t, testsupport.NewFeedChannels(2))
	cfg := testsupport.NewConfig(t, testsupport.WithFeedURL(server.FeedURL()))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}

	results := RunAll(context.Background(), cfg)
	if len(results) != 2 {
		t.Fatalf("expected output and feed checks, got %+v", results)
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures %+v", failed)
	}
}
