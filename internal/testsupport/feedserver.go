package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"plutoiptv/internal/feed"
)

// FeedServer is an httptest server that answers feed window requests.
type FeedServer struct {
	*httptest.Server

	mu       sync.Mutex
	channels []feed.Channel
	status   int
	hits     atomic.Int32
}

// NewFeedServer serves channels for every window until changed.
func NewFeedServer(t testing.TB, channels []feed.Channel) *FeedServer {
	t.Helper()

	fs := &FeedServer{channels: channels, status: http.StatusOK}
	fs.Server = httptest.NewServer(http.HandlerFunc(fs.handle))
	t.Cleanup(fs.Close)
	return fs
}

// FeedURL returns the feed endpoint.
func (fs *FeedServer) FeedURL() string {
	return fs.Server.URL + "/v2/channels"
}

// Hits returns how many window requests were served.
func (fs *FeedServer) Hits() int {
	return int(fs.hits.Load())
}

// SetChannels replaces the served channel list.
func (fs *FeedServer) SetChannels(channels []feed.Channel) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.channels = channels
}

// SetStatus makes subsequent requests fail with status when it is not 200.
func (fs *FeedServer) SetStatus(status int) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.status = status
}

func (fs *FeedServer) handle(w http.ResponseWriter, r *http.Request) {
	fs.hits.Add(1)
	fs.mu.Lock()
	channels := fs.channels
	status := fs.status
	fs.mu.Unlock()

	if status != http.StatusOK {
		http.Error(w, "unavailable", status)
		return
	}
	if channels == nil {
		channels = []feed.Channel{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(channels)
}
