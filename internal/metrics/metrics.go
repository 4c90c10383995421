package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Every silent absorption point in the pipeline increments a counter here,
// so an executor that always fails is distinguishable from "no results"
// even though the caller sees the same empty contribution.
var (
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "assistant_build_info",
			Help: "Build information of the knowledge assistant",
		},
		[]string{"version", "commit", "date"},
	)

	EventsReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_slack_events_received_total",
			Help: "Total number of Slack events received",
		},
		[]string{"event_type"},
	)

	MessagesIgnoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_slack_messages_ignored_total",
			Help: "Total number of Slack messages ignored",
		},
		[]string{"reason"},
	)

	AnswersPostedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_answers_posted_total",
			Help: "Total number of answers posted back to the user",
		},
		[]string{"status"},
	)

	TranslationFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_query_translation_failures_total",
			Help: "Total number of failed or empty query translations",
		},
	)

	GuardRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_query_guard_rejections_total",
			Help: "Total number of generated queries rejected by the guard",
		},
	)

	QueryExecutionFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_query_execution_failures_total",
			Help: "Total number of database query execution failures",
		},
	)

	WikiSearchFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_wiki_search_failures_total",
			Help: "Total number of wiki provider search failures",
		},
	)

	PolicyDropsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_policy_drops_total",
			Help: "Total number of items dropped by the content policy",
		},
		[]string{"source"},
	)

	SynthesisFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_answer_synthesis_failures_total",
			Help: "Total number of failed answer synthesis calls",
		},
	)

	RequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assistant_request_duration_seconds",
			Help:    "Duration of end-to-end question handling",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)
)
