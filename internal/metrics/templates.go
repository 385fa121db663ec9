package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TemplatesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "templates_generated_total",
			Help: "Number of deployment templates rendered and uploaded, by template variant",
		},
		[]string{"variant"},
	)

	TemplateFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "template_failures_total",
			Help: "Number of template requests that did not produce an artifact, by stage",
		},
		[]string{"stage"},
	)

	WebhookRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_requests_total",
			Help: "Number of webhook callbacks, by outcome",
		},
		[]string{"outcome"},
	)
)
