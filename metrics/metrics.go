// Package metrics exposes pipeline counters for the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SourcesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subculture_sources_fetched_total",
		Help: "Source fetch runs by outcome.",
	}, []string{"result"})

	RawNoticesChanged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "subculture_raw_notices_changed_total",
		Help: "Raw notices whose content hash changed and were re-parsed.",
	})

	RawNoticesUnchanged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "subculture_raw_notices_unchanged_total",
		Help: "Raw notices skipped because their content hash was unchanged.",
	})

	EventsUpserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subculture_events_upserted_total",
		Help: "Event catalog upserts by visibility.",
	}, []string{"visibility"})

	ParseErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "subculture_parse_errors_total",
		Help: "Raw notices that failed normalization.",
	})

	SchedulesPlanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "subculture_schedules_planned_total",
		Help: "Notification schedules upserted by the planner.",
	})

	SchedulesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subculture_schedules_skipped_total",
		Help: "Planner rule evaluations skipped, by reason.",
	}, []string{"reason"})

	Dispatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subculture_dispatches_total",
		Help: "Dispatch attempts by channel and result.",
	}, []string{"channel", "result"})
)
