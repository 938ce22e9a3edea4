package outbox

import (
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	enqueueTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefix_outbox_enqueue_total",
		Help: "Messages enqueued into an outbox table.",
	}, []string{"table", "topic"})

	dispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefix_outbox_dispatch_total",
		Help: "Messages successfully dispatched from an outbox table.",
	}, []string{"table", "topic"})

	dispatchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefix_outbox_dispatch_failures_total",
		Help: "Dispatch attempts that failed and were rescheduled.",
	}, []string{"table", "topic"})

	deadLetters = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefix_outbox_dead_total",
		Help: "Messages abandoned after exhausting dispatch attempts.",
	}, []string{"table", "topic"})
)

func tableLabel(table pgx.Identifier) string {
	return strings.Join(table, ".")
}
