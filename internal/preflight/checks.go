package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"plutoiptv/internal/category"
	"plutoiptv/internal/config"
	"plutoiptv/internal/fetch"
)

const feedCheckTimeout = 15 * time.Second

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

// CheckFeed requests a single one-hour window, without retries, and reports
// how many channels came back.
func CheckFeed(ctx context.Context, cfg *config.Config) Result {
	const name = "Feed"

	checkCtx, cancel := context.WithTimeout(ctx, feedCheckTimeout)
	defer cancel()

	client := fetch.NewClient(fetch.ConfigFrom(cfg))
	count, err := client.Probe(checkCtx, time.Now())
	if err != nil {
		return Result{Name: name, Detail: summarizeFeedError(err)}
	}
	if count == 0 {
		return Result{Name: name, Detail: "reachable but returned no channels"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable (%d channels)", count)}
}

// CheckCategoryTable verifies that a category table override parses.
func CheckCategoryTable(path string) Result {
	const name = "Category table"
	table, err := category.Load(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d categories)", path, table.Len())}
}

func summarizeFeedError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out (feed unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "request timed out (feed unreachable)"
	}
	var statusErr *fetch.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Error()
	}
	return err.Error()
}
