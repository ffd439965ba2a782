package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskbot_events_total",
		Help: "Inbound events processed, by event type",
	}, []string{"type"})

	withdrawRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskbot_withdraw_requests_total",
		Help: "Withdrawal requests created (amount held)",
	})

	withdrawResolvedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskbot_withdraw_resolved_total",
		Help: "Withdrawal decisions, by terminal status",
	}, []string{"status"})

	tasksSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskbot_tasks_submitted_total",
		Help: "Task submissions accepted",
	})

	tasksResolvedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskbot_tasks_resolved_total",
		Help: "Task decisions, by terminal status",
	}, []string{"status"})

	notifyFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskbot_notify_failures_total",
		Help: "Outbound notifications that could not be delivered",
	})
)
