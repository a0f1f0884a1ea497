package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	LoginsTotal          prometheus.Counter
	LoginFailuresTotal   prometheus.Counter
	AuditEventsPublished prometheus.Counter
	AuditEventsDropped   prometheus.Counter
	ProjectsCreated      prometheus.Counter
	TasksCreated         prometheus.Counter
	UsersCreated         prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers metrics on a specific registerer. Tests pass a fresh
// registry so parallel packages don't collide on metric names.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LoginsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskboard_logins_total",
			Help: "Total number of successful logins",
		}),
		LoginFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskboard_login_failures_total",
			Help: "Total number of rejected login attempts",
		}),
		AuditEventsPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskboard_audit_events_published_total",
			Help: "Total number of audit events written to the store",
		}),
		AuditEventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskboard_audit_events_dropped_total",
			Help: "Total number of audit events dropped due to a full buffer or store failure",
		}),
		ProjectsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskboard_projects_created_total",
			Help: "Total number of projects created",
		}),
		TasksCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskboard_tasks_created_total",
			Help: "Total number of tasks created",
		}),
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskboard_users_created_total",
			Help: "Total number of users created",
		}),
	}
}
