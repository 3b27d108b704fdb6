package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservers(t *testing.T) {
	m := New()

	m.ObserveRequest("GET", "/api/files", 200, 30*time.Millisecond)
	m.ObserveRequest("GET", "/api/files", 200, 10*time.Millisecond)
	m.ObserveOperation("list", "ok")
	m.ObserveOperation("head", "not_found")
	m.ObserveRetry("list")
	m.ObserveUpload(512)
	m.ObserveUpload(-1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/files", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeOps.WithLabelValues("head", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeRetries.WithLabelValues("list")))
	assert.Equal(t, 512.0, testutil.ToFloat64(m.uploadBytes))
	assert.Equal(t, 1, testutil.CollectAndCount(m.httpDuration))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveOperation("get", "ok")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `sharebox_store_operations_total{op="get",outcome="ok"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
