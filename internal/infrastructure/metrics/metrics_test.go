package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("POST", "/api/rides", 200, 12*time.Millisecond)
	RecordRideCreated("ok")
	RecordStatusUpdate("accepted", "ok")
	RecordStoreOperation("create", 3*time.Millisecond, true)
	RecordPublish("ride.created", true)
	SetActiveConnections(2)
	SetActiveRooms(1)
}

func TestRecordEmit(t *testing.T) {
	RecordEmit("emitProbe", 3, 1)
	RecordEmit("emitProbe", 0, 0)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	assert.Contains(t, body, `ridehail_rooms_messages_total{event="emitProbe",outcome="delivered"} 3`)
	assert.Contains(t, body, `ridehail_rooms_messages_total{event="emitProbe",outcome="dropped"} 1`)
}

func TestHandlerExposesNamespace(t *testing.T) {
	RecordRideCreated("ok")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ridehail_dispatch_rides_created_total")
}
