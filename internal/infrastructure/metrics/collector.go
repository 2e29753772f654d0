package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "gestion-hospitaliere"

// Recorder reçoit les événements métier et HTTP à compter.
// Les services dépendent de cette interface, jamais du Collector.
type Recorder interface {
	RequestObserved(ctx context.Context, method, route string, status int, duration time.Duration)
	AppointmentCreated(ctx context.Context)
	AppointmentStatusChanged(ctx context.Context, statut string)
	BedAssigned(ctx context.Context)
	BedReleased(ctx context.Context)
	LoginAttempt(ctx context.Context, success bool)
}

// Snapshot état instantané de la base exposé en jauges
type Snapshot struct {
	UsersByRole          map[string]int64
	Patients             int64
	Medecins             int64
	Appointments         int64
	AppointmentsByStatus map[string]int64
	AppointmentsToday    int64
	AppointmentsPending  int64
	DatabaseUp           bool
}

// SnapshotSource fournit les valeurs des jauges au moment du scraping
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// Collector implémente Recorder sur un MeterProvider OpenTelemetry
type Collector struct {
	provider *sdkmetric.MeterProvider
	meter    metric.Meter
	registry *prometheus.Registry

	requests            metric.Int64Counter
	requestErrors       metric.Int64Counter
	requestDuration     metric.Float64Histogram
	appointmentsCreated metric.Int64Counter
	statusChanges       metric.Int64Counter
	bedAssignments      metric.Int64Counter
	bedReleases         metric.Int64Counter
	logins              metric.Int64Counter
}

// NewCollector construit le collecteur exporté au format Prometheus
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := otelprom.New(
		otelprom.WithRegisterer(registry),
		otelprom.WithoutTargetInfo(),
	)
	if err != nil {
		return nil, fmt.Errorf("création exporter prometheus: %w", err)
	}

	collector, err := newCollector(exporter)
	if err != nil {
		return nil, err
	}
	collector.registry = registry
	return collector, nil
}

func newCollector(reader sdkmetric.Reader) (*Collector, error) {
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter(meterName)

	c := &Collector{provider: provider, meter: meter}

	var err error
	if c.requests, err = meter.Int64Counter(
		"hospital_http_requests",
		metric.WithDescription("Nombre de requêtes HTTP traitées"),
	); err != nil {
		return nil, err
	}
	if c.requestErrors, err = meter.Int64Counter(
		"hospital_http_errors",
		metric.WithDescription("Nombre de réponses HTTP en erreur (5xx)"),
	); err != nil {
		return nil, err
	}
	if c.requestDuration, err = meter.Float64Histogram(
		"hospital_http_request_duration",
		metric.WithDescription("Durée de traitement des requêtes HTTP"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if c.appointmentsCreated, err = meter.Int64Counter(
		"hospital_appointments_created",
		metric.WithDescription("Rendez-vous créés"),
	); err != nil {
		return nil, err
	}
	if c.statusChanges, err = meter.Int64Counter(
		"hospital_appointment_status_changes",
		metric.WithDescription("Changements de statut de rendez-vous"),
	); err != nil {
		return nil, err
	}
	if c.bedAssignments, err = meter.Int64Counter(
		"hospital_bed_assignments",
		metric.WithDescription("Attributions de lits"),
	); err != nil {
		return nil, err
	}
	if c.bedReleases, err = meter.Int64Counter(
		"hospital_bed_releases",
		metric.WithDescription("Libérations de lits"),
	); err != nil {
		return nil, err
	}
	if c.logins, err = meter.Int64Counter(
		"hospital_login_attempts",
		metric.WithDescription("Tentatives de connexion"),
	); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Collector) RequestObserved(ctx context.Context, method, route string, status int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.String("status_class", statusClass(status)),
	)
	c.requests.Add(ctx, 1, attrs)
	c.requestDuration.Record(ctx, duration.Seconds(), attrs)
	if status >= http.StatusInternalServerError {
		c.requestErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("route", route)))
	}
}

func (c *Collector) AppointmentCreated(ctx context.Context) {
	c.appointmentsCreated.Add(ctx, 1)
}

func (c *Collector) AppointmentStatusChanged(ctx context.Context, statut string) {
	c.statusChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("statut", statut)))
}

func (c *Collector) BedAssigned(ctx context.Context) {
	c.bedAssignments.Add(ctx, 1)
}

func (c *Collector) BedReleased(ctx context.Context) {
	c.bedReleases.Add(ctx, 1)
}

func (c *Collector) LoginAttempt(ctx context.Context, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// ObserveSnapshots enregistre les jauges alimentées par source à chaque collecte
func (c *Collector) ObserveSnapshots(source SnapshotSource) error {
	usersTotal, err := c.meter.Int64ObservableGauge("hospital_users_total",
		metric.WithDescription("Nombre total d'utilisateurs"))
	if err != nil {
		return err
	}
	usersByRole, err := c.meter.Int64ObservableGauge("hospital_users_by_role",
		metric.WithDescription("Utilisateurs par rôle"))
	if err != nil {
		return err
	}
	patients, err := c.meter.Int64ObservableGauge("hospital_patients_total",
		metric.WithDescription("Nombre de patients"))
	if err != nil {
		return err
	}
	medecins, err := c.meter.Int64ObservableGauge("hospital_medecins_total",
		metric.WithDescription("Nombre de médecins"))
	if err != nil {
		return err
	}
	appointments, err := c.meter.Int64ObservableGauge("hospital_appointments_total",
		metric.WithDescription("Nombre de rendez-vous"))
	if err != nil {
		return err
	}
	byStatus, err := c.meter.Int64ObservableGauge("hospital_appointments_by_status",
		metric.WithDescription("Rendez-vous par statut"))
	if err != nil {
		return err
	}
	today, err := c.meter.Int64ObservableGauge("hospital_appointments_today",
		metric.WithDescription("Rendez-vous du jour"))
	if err != nil {
		return err
	}
	pending, err := c.meter.Int64ObservableGauge("hospital_appointments_pending",
		metric.WithDescription("Rendez-vous en attente"))
	if err != nil {
		return err
	}
	databaseUp, err := c.meter.Int64ObservableGauge("hospital_database_up",
		metric.WithDescription("1 si la base de données répond"))
	if err != nil {
		return err
	}

	_, err = c.meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		snapshot, err := source.Snapshot(ctx)
		if err != nil || snapshot == nil || !snapshot.DatabaseUp {
			o.ObserveInt64(databaseUp, 0)
			return nil
		}

		var total int64
		for role, count := range snapshot.UsersByRole {
			total += count
			o.ObserveInt64(usersByRole, count, metric.WithAttributes(attribute.String("role", role)))
		}
		o.ObserveInt64(usersTotal, total)
		o.ObserveInt64(patients, snapshot.Patients)
		o.ObserveInt64(medecins, snapshot.Medecins)
		o.ObserveInt64(appointments, snapshot.Appointments)
		for statut, count := range snapshot.AppointmentsByStatus {
			o.ObserveInt64(byStatus, count, metric.WithAttributes(attribute.String("status", statut)))
		}
		o.ObserveInt64(today, snapshot.AppointmentsToday)
		o.ObserveInt64(pending, snapshot.AppointmentsPending)
		o.ObserveInt64(databaseUp, 1)
		return nil
	}, usersTotal, usersByRole, patients, medecins, appointments, byStatus, today, pending, databaseUp)
	return err
}

// Handler expose le registre au format texte Prometheus
func (c *Collector) Handler() http.Handler {
	if c.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) Shutdown(ctx context.Context) error {
	return c.provider.Shutdown(ctx)
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}

// Nop ignore tous les événements (tests, outils CLI)
type Nop struct{}

func (Nop) RequestObserved(context.Context, string, string, int, time.Duration) {}
func (Nop) AppointmentCreated(context.Context)                                  {}
func (Nop) AppointmentStatusChanged(context.Context, string)                    {}
func (Nop) BedAssigned(context.Context)                                         {}
func (Nop) BedReleased(context.Context)                                         {}
func (Nop) LoginAttempt(context.Context, bool)                                  {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
