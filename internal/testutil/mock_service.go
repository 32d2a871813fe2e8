// Package testutil provides testing utilities for the quickload library.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockItemService is a configurable paginated item service for testing.
// It serves items of the form {"id":N} by start/count query parameters and
// sets the "exhausted" flag on the page that returns the last item.
type MockItemService struct {
	server *httptest.Server

	mu           sync.Mutex
	total        int // number of items upstream; < 0 means unlimited
	delay        time.Duration
	failuresLeft int
	failStatus   int
	rawResponses []string // queued verbatim bodies, served before normal pages

	requestCount int
	requestURIs  []string
}

// NewMockItemService creates a mock service holding total items.
// A negative total means the service never exhausts.
func NewMockItemService(total int) *MockItemService {
	m := &MockItemService{total: total}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// URL returns the mock server URL.
func (m *MockItemService) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockItemService) Close() {
	m.server.Close()
}

// RequestCount returns the number of requests served so far.
func (m *MockItemService) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount
}

// RequestURIs returns the raw request URIs in arrival order.
func (m *MockItemService) RequestURIs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	uris := make([]string, len(m.requestURIs))
	copy(uris, m.requestURIs)
	return uris
}

// SetDelay makes every subsequent response wait before being written.
func (m *MockItemService) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// FailNext makes the next n requests respond with the given status code.
func (m *MockItemService) FailNext(n, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failuresLeft = n
	m.failStatus = status
}

// QueueRawResponse enqueues a verbatim body served (with status 200) ahead
// of normal page responses. Useful for contract violation scenarios.
func (m *MockItemService) QueueRawResponse(body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rawResponses = append(m.rawResponses, body)
}

func (m *MockItemService) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requestCount++
	m.requestURIs = append(m.requestURIs, r.URL.RequestURI())
	delay := m.delay

	if len(m.rawResponses) > 0 {
		body := m.rawResponses[0]
		m.rawResponses = m.rawResponses[1:]
		m.mu.Unlock()
		if delay > 0 {
			time.Sleep(delay)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
		return
	}

	if m.failuresLeft > 0 {
		m.failuresLeft--
		status := m.failStatus
		m.mu.Unlock()
		if delay > 0 {
			time.Sleep(delay)
		}
		http.Error(w, http.StatusText(status), status)
		return
	}

	total := m.total
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	start := intParam(r, "start", 0)
	count := intParam(r, "count", 50)

	var items []string
	for i := start; i < start+count; i++ {
		if total >= 0 && i >= total {
			break
		}
		items = append(items, fmt.Sprintf(`{"id":%d}`, i))
	}

	exhausted := total >= 0 && start+count >= total

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"items":[%s],"exhausted":%t}`,
		strings.Join(items, ","), exhausted)
}

func intParam(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
