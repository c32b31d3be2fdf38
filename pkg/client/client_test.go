package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/cnsipo-attrs/pkg/errors"
)

// ---------------------------------------------------------------------------
// Test Helpers
// ---------------------------------------------------------------------------

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithRetryWait(time.Millisecond, 2*time.Millisecond)}, opts...)
	c, err := NewClient(server.URL, opts...)
	require.NoError(t, err)
	return c
}

type testLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *testLogger) Debugf(format string, args ...interface{}) { l.log(format, args...) }
func (l *testLogger) Infof(format string, args ...interface{})  { l.log(format, args...) }
func (l *testLogger) Errorf(format string, args ...interface{}) { l.log(format, args...) }

func (l *testLogger) log(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ---------------------------------------------------------------------------
// Constructor and options
// ---------------------------------------------------------------------------

func TestNewClient(t *testing.T) {
	t.Parallel()

	c, err := NewClient("http://api.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "http://api.example.com", c.baseURL)
	assert.Equal(t, 3, c.retryMax)
	assert.Equal(t, "cnsipo-go-client/"+Version, c.userAgent)

	for _, bad := range []string{"", "ftp://example.com", "example.com", "http://", "http://%zz"} {
		_, err := NewClient(bad)
		assert.True(t, errors.IsCode(err, errors.CodeInvalidParam), "base URL %q", bad)
	}
}

func TestOptions(t *testing.T) {
	t.Parallel()

	hc := &http.Client{Timeout: time.Second}
	logger := &testLogger{}
	c, err := NewClient("https://api.example.com",
		WithHTTPClient(hc),
		WithLogger(logger),
		WithRetryMax(0),
		WithRetryWait(time.Second, 3*time.Second),
		WithUserAgent("etl/1.0"),
	)
	require.NoError(t, err)
	assert.Same(t, hc, c.httpClient)
	assert.Same(t, logger, c.logger)
	assert.Equal(t, 0, c.retryMax)
	assert.Equal(t, time.Second, c.retryWaitMin)
	assert.Equal(t, 3*time.Second, c.retryWaitMax)
	assert.Equal(t, "etl/1.0", c.userAgent)

	// Invalid values keep the defaults.
	c, err = NewClient("https://api.example.com",
		WithHTTPClient(nil),
		WithLogger(nil),
		WithRetryMax(-1),
		WithRetryWait(0, time.Second),
		WithUserAgent(""),
	)
	require.NoError(t, err)
	assert.NotNil(t, c.httpClient)
	assert.Equal(t, noopLogger{}, c.logger)
	assert.Equal(t, 3, c.retryMax)
	assert.Equal(t, 200*time.Millisecond, c.retryWaitMin)

	c, err = NewClient("https://api.example.com", WithRetryWait(time.Second, time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, time.Second, c.retryWaitMin)
	assert.Equal(t, 5*time.Second, c.retryWaitMax)
}

func TestCalculateBackoff(t *testing.T) {
	t.Parallel()

	c := &Client{retryWaitMin: 100 * time.Millisecond, retryWaitMax: 300 * time.Millisecond}
	for attempt, base := range map[int]time.Duration{1: 100 * time.Millisecond, 2: 200 * time.Millisecond, 3: 300 * time.Millisecond, 10: 300 * time.Millisecond} {
		got := c.calculateBackoff(attempt)
		assert.GreaterOrEqual(t, got, base, "attempt %d", attempt)
		assert.Less(t, got, base+base/4+1, "attempt %d", attempt)
	}

	tiny := &Client{retryWaitMin: 1, retryWaitMax: 2}
	assert.NotPanics(t, func() { tiny.calculateBackoff(1) })
}

// ---------------------------------------------------------------------------
// Request handling
// ---------------------------------------------------------------------------

func TestClient_Headers(t *testing.T) {
	var seen http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	_, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "application/json", seen.Get("Accept"))
	assert.Equal(t, c.userAgent, seen.Get("User-Agent"))
	assert.Len(t, seen.Get(headerRequestID), 36)
	assert.Empty(t, seen.Get("Content-Type"))
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	logger := &testLogger{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"code": "COMMON_001", "message": "internal server error"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "alive", "version": "v1"})
	}, WithLogger(logger))

	got, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1", got.Version)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	assert.NotEmpty(t, logger.lines)
}

func TestClient_GivesUpAfterRetryMax(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}, WithRetryMax(2))

	_, err := c.Health(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsServerError())
	assert.Equal(t, "Bad Gateway", apiErr.Message)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestClient_ClientErrorsAreNotRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"code":       "COMMON_002",
			"message":    "invalid request body",
			"detail":     "names is required",
			"request_id": "req-1",
		})
	})

	_, err := c.ParseApplicants(context.Background(), "", "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsBadRequest())
	assert.Equal(t, "COMMON_002", apiErr.Code)
	assert.Equal(t, "req-1", apiErr.RequestID)
	assert.Equal(t, "cnsipo: COMMON_002 (HTTP 400): invalid request body: names is required [request_id=req-1]", apiErr.Error())
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestClient_NonJSONErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such thing", http.StatusNotFound)
	})

	_, err := c.ParseIPC(context.Background(), "G06F17/30")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "no such thing\n", apiErr.Message)
}

func TestClient_ContextCancelledDuringBackoff(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, WithRetryWait(time.Hour, time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Health(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Ready_NotRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
	})

	_, err := c.Ready(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsUnavailable())
	assert.Equal(t, "Service Unavailable", apiErr.Message)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestClient_ParseAddresses_SplitsBatches(t *testing.T) {
	var (
		mu    sync.Mutex
		sizes []int
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/addresses", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var req struct {
			Texts []string `json:"texts"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		mu.Lock()
		sizes = append(sizes, len(req.Texts))
		mu.Unlock()

		results := make([]map[string]string, len(req.Texts))
		for i, text := range req.Texts {
			results[i] = map[string]string{"input": text}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
	})

	texts := make([]string, 2*MaxBatchItems+5)
	for i := range texts {
		texts[i] = fmt.Sprintf("addr-%d", i)
	}
	got, err := c.ParseAddresses(context.Background(), texts)
	require.NoError(t, err)
	assert.Equal(t, []int{MaxBatchItems, MaxBatchItems, 5}, sizes)
	require.Len(t, got, len(texts))
	assert.Equal(t, "addr-0", got[0].Input)
	assert.Equal(t, texts[len(texts)-1], got[len(got)-1].Input)

	got, err = c.ParseAddresses(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Len(t, sizes, 3)
}

func TestClient_RejectsBlankInput(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	})

	_, err := c.ParseAddress(context.Background(), "  ")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
	_, err = c.ParseIPC(context.Background(), "")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

//Personal.AI order the ending
