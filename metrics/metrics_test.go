package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smnsjas/go-wps/model"
	"github.com/smnsjas/go-wps/transport"
)

func TestNew(t *testing.T) {
	c := New()
	require.NotNil(t, c.Registry())

	families, err := c.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families, "runtime collectors are registered")
}

func TestObserveRequest(t *testing.T) {
	c := New()

	c.ObserveRequest("Execute", 200, 120*time.Millisecond, nil)
	c.ObserveRequest("Execute", 200, 80*time.Millisecond, nil)
	c.ObserveRequest("Execute", 500, time.Second, nil)
	c.ObserveRequest("GetStatus", 0, time.Second, errors.New("dial tcp: refused"))
	c.ObserveRequest("GetStatus", 0, 0, transport.ErrCircuitOpen)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.RequestsTotal.WithLabelValues("Execute", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.RequestsTotal.WithLabelValues("Execute", "500")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.RequestsTotal.WithLabelValues("GetStatus", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.RequestsTotal.WithLabelValues("GetStatus", "circuit_open")))

	assert.Equal(t, 1, testutil.CollectAndCount(c.RequestDuration))
}

func TestObserveJobStatus(t *testing.T) {
	c := New()

	c.ObserveJobStatus(model.StatusRunning)
	c.ObserveJobStatus(model.StatusRunning)
	c.ObserveJobStatus(model.StatusSucceeded)
	c.ObserveJobStatus("")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.JobStatuses.WithLabelValues("Running")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.JobStatuses.WithLabelValues("Succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.JobStatuses.WithLabelValues("unknown")))
}

func TestRecordBreakerState(t *testing.T) {
	c := New()

	c.RecordBreakerState(transport.BreakerClosed, transport.BreakerOpen)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.BreakerState))

	c.RecordBreakerState(transport.BreakerOpen, transport.BreakerHalfOpen)
	assert.Equal(t, 2.0, testutil.ToFloat64(c.BreakerState))
}

func TestHandler(t *testing.T) {
	c := New()
	c.ObserveRequest("GetCapabilities", 200, 10*time.Millisecond, nil)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `wps_client_requests_total{code="200",operation="GetCapabilities"} 1`)
}
