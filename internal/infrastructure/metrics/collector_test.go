package metrics

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type fakeSource struct {
	snapshot *Snapshot
	err      error
}

func (f *fakeSource) Snapshot(context.Context) (*Snapshot, error) {
	return f.snapshot, f.err
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumValue(t *testing.T, m metricdata.Metrics, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s n'est pas un compteur", m.Name)
	want := attribute.NewSet(attrs...)
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	return 0
}

func gaugeValue(t *testing.T, m metricdata.Metrics, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	gauge, ok := m.Data.(metricdata.Gauge[int64])
	require.True(t, ok, "%s n'est pas une jauge", m.Name)
	want := attribute.NewSet(attrs...)
	for _, dp := range gauge.DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	return -1
}

func TestCollector_DomainCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	c, err := newCollector(reader)
	require.NoError(t, err)

	ctx := context.Background()
	c.AppointmentCreated(ctx)
	c.AppointmentCreated(ctx)
	c.AppointmentStatusChanged(ctx, "Confirmé")
	c.BedAssigned(ctx)
	c.BedReleased(ctx)
	c.LoginAttempt(ctx, true)
	c.LoginAttempt(ctx, false)
	c.LoginAttempt(ctx, false)

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumValue(t, got["hospital_appointments_created"]))
	assert.Equal(t, int64(1), sumValue(t, got["hospital_appointment_status_changes"], attribute.String("statut", "Confirmé")))
	assert.Equal(t, int64(1), sumValue(t, got["hospital_bed_assignments"]))
	assert.Equal(t, int64(1), sumValue(t, got["hospital_bed_releases"]))
	assert.Equal(t, int64(1), sumValue(t, got["hospital_login_attempts"], attribute.String("result", "success")))
	assert.Equal(t, int64(2), sumValue(t, got["hospital_login_attempts"], attribute.String("result", "failure")))
}

func TestCollector_RequestObserved(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	c, err := newCollector(reader)
	require.NoError(t, err)

	ctx := context.Background()
	c.RequestObserved(ctx, "GET", "/api/v1/lits", 200, 15*time.Millisecond)
	c.RequestObserved(ctx, "GET", "/api/v1/lits", 500, 5*time.Millisecond)

	got := collect(t, reader)
	assert.Equal(t, int64(1), sumValue(t, got["hospital_http_requests"],
		attribute.String("method", "GET"),
		attribute.String("route", "/api/v1/lits"),
		attribute.String("status_class", "2xx")))
	assert.Equal(t, int64(1), sumValue(t, got["hospital_http_errors"], attribute.String("route", "/api/v1/lits")))
	assert.Contains(t, got, "hospital_http_request_duration")
}

func TestCollector_ObserveSnapshots(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	c, err := newCollector(reader)
	require.NoError(t, err)

	source := &fakeSource{snapshot: &Snapshot{
		UsersByRole:          map[string]int64{"Admin": 1, "Patient": 4},
		Patients:             4,
		Medecins:             2,
		Appointments:         7,
		AppointmentsByStatus: map[string]int64{"En attente": 3, "Confirmé": 4},
		AppointmentsToday:    2,
		AppointmentsPending:  3,
		DatabaseUp:           true,
	}}
	require.NoError(t, c.ObserveSnapshots(source))

	got := collect(t, reader)
	assert.Equal(t, int64(5), gaugeValue(t, got["hospital_users_total"]))
	assert.Equal(t, int64(4), gaugeValue(t, got["hospital_users_by_role"], attribute.String("role", "Patient")))
	assert.Equal(t, int64(2), gaugeValue(t, got["hospital_medecins_total"]))
	assert.Equal(t, int64(3), gaugeValue(t, got["hospital_appointments_by_status"], attribute.String("status", "En attente")))
	assert.Equal(t, int64(1), gaugeValue(t, got["hospital_database_up"]))
}

func TestCollector_ObserveSnapshots_DatabaseDown(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	c, err := newCollector(reader)
	require.NoError(t, err)

	require.NoError(t, c.ObserveSnapshots(&fakeSource{err: errors.New("connexion refusée")}))

	got := collect(t, reader)
	assert.Equal(t, int64(0), gaugeValue(t, got["hospital_database_up"]))
}

func TestCollector_HandlerServesPrometheusText(t *testing.T) {
	c, err := NewCollector()
	require.NoError(t, err)
	c.AppointmentCreated(context.Background())

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "hospital_appointments_created")
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(204))
	assert.Equal(t, "4xx", statusClass(422))
	assert.Equal(t, "unknown", statusClass(0))
}
