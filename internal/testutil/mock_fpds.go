// Package testutil provides testing utilities for the FPDS client.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

// MockResponse defines the behavior for one mock feed response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockFPDS is a configurable mock FPDS ATOM feed for testing.
//
// Responses are routed by the PIID query parameter and the page number
// (page 1 when absent). A route holds a script of responses consumed in
// order; the last one repeats. Unrouted requests get an empty feed.
type MockFPDS struct {
	server *httptest.Server
	mu     sync.Mutex
	routes map[routeKey][]MockResponse
	served map[routeKey]int

	// Tracking
	requestCount      int
	inFlight          int
	peakInFlight      int
	lastRequestHeader http.Header
	queries           []string
}

type routeKey struct {
	piid string
	page int
}

// NewMockFPDS creates and starts a mock feed server.
func NewMockFPDS() *MockFPDS {
	mock := &MockFPDS{
		routes: make(map[routeKey][]MockResponse),
		served: make(map[routeKey]int),
	}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the feed base URL.
func (m *MockFPDS) URL() string {
	return m.server.URL + "/ezsearch/FEEDS/ATOM"
}

// Close shuts down the mock server.
func (m *MockFPDS) Close() {
	m.server.Close()
}

// Route scripts the responses for a PIID and page. An empty piid matches
// requests without a PIID parameter.
func (m *MockFPDS) Route(piid string, page int, responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := routeKey{piid: piid, page: page}
	m.routes[key] = responses
	m.served[key] = 0
}

// RequestCount returns the number of requests served.
func (m *MockFPDS) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount
}

// PeakInFlight returns the highest number of concurrently served requests.
func (m *MockFPDS) PeakInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peakInFlight
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockFPDS) LastRequestHeader() http.Header {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequestHeader
}

// Queries returns the raw query strings received, in arrival order.
func (m *MockFPDS) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.queries))
	copy(out, m.queries)
	return out
}

func (m *MockFPDS) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := 1
	if p, err := strconv.Atoi(q.Get("page")); err == nil {
		page = p
	}
	key := routeKey{piid: q.Get("PIID"), page: page}

	m.mu.Lock()
	m.requestCount++
	m.inFlight++
	if m.inFlight > m.peakInFlight {
		m.peakInFlight = m.inFlight
	}
	m.lastRequestHeader = r.Header.Clone()
	m.queries = append(m.queries, r.URL.RawQuery)

	resp := NewFeedResponse(Feed())
	if script, ok := m.routes[key]; ok && len(script) > 0 {
		i := m.served[key]
		if i >= len(script) {
			i = len(script) - 1
		}
		resp = script[i]
		m.served[key]++
	}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		_, _ = w.Write([]byte(resp.Body))
	}
}

// NewFeedResponse creates a 200 OK response carrying an ATOM document.
func NewFeedResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type": "application/atom+xml; charset=UTF-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       "internal server error",
	}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       "not found",
	}
}
