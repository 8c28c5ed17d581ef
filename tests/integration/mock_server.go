package integration

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// MockCDNServer simulates the VSCO media CDN. It serves deterministic
// bytes for any /media/<id>.<ext> path and can be told to fail, fail a few
// times and then recover, or respond slowly, so the retry and timeout
// paths of the pipeline can be driven over a real HTTP connection.
type MockCDNServer struct {
	server       *httptest.Server
	requestCount int32

	mu           sync.Mutex
	errors       map[string]int           // path -> status code, persistent
	failures     map[string]*failPlan     // path -> fail n times then succeed
	delays       map[string]time.Duration // path -> response delay
	pathRequests map[string]int           // path -> times requested
	lastHeaders  map[string]http.Header   // path -> headers of last request
}

type failPlan struct {
	code      int
	remaining int
}

// NewMockCDNServer starts the server. Callers own the Close.
func NewMockCDNServer() *MockCDNServer {
	m := &MockCDNServer{
		errors:       make(map[string]int),
		failures:     make(map[string]*failPlan),
		delays:       make(map[string]time.Duration),
		pathRequests: make(map[string]int),
		lastHeaders:  make(map[string]http.Header),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/media/", m.handleMedia)
	m.server = httptest.NewServer(mux)
	return m
}

// URL returns the server's base URL.
func (m *MockCDNServer) URL() string {
	return m.server.URL
}

// Close shuts the server down.
func (m *MockCDNServer) Close() {
	m.server.Close()
}

// MediaURL returns the full URL the server serves the given path under.
func (m *MockCDNServer) MediaURL(path string) string {
	return m.server.URL + path
}

// SetError makes every request to path answer with the given status code.
func (m *MockCDNServer) SetError(path string, code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[path] = code
}

// FailTimes makes the next n requests to path answer with the given status
// code, after which requests succeed again.
func (m *MockCDNServer) FailTimes(path string, code, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[path] = &failPlan{code: code, remaining: n}
}

// SetDelay delays every response for path by d.
func (m *MockCDNServer) SetDelay(path string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays[path] = d
}

// RequestCount returns how many media requests the server has seen.
func (m *MockCDNServer) RequestCount() int {
	return int(atomic.LoadInt32(&m.requestCount))
}

// RequestsFor returns how many times the given path was requested.
func (m *MockCDNServer) RequestsFor(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pathRequests[path]
}

// LastHeaders returns the headers of the most recent request for path.
func (m *MockCDNServer) LastHeaders(path string) http.Header {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastHeaders[path]
}

func (m *MockCDNServer) handleMedia(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)

	path := r.URL.Path

	m.mu.Lock()
	m.pathRequests[path]++
	m.lastHeaders[path] = r.Header.Clone()
	delay := m.delays[path]
	errCode := m.errors[path]
	var transient int
	if plan, ok := m.failures[path]; ok && plan.remaining > 0 {
		plan.remaining--
		transient = plan.code
	}
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if errCode > 0 {
		http.Error(w, http.StatusText(errCode), errCode)
		return
	}
	if transient > 0 {
		http.Error(w, http.StatusText(transient), transient)
		return
	}

	data := mediaContent(path)
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// mediaContent returns the deterministic payload served for a path, so
// tests can verify downloaded files byte for byte.
func mediaContent(path string) []byte {
	payload := fmt.Sprintf("fake media payload for %s", path)
	// A JPEG-looking frame around the payload keeps the bytes binary-ish.
	data := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, []byte(payload)...)
	return append(data, 0xFF, 0xD9)
}
