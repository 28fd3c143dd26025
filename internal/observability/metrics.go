package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collectors for relay traffic. Labels are kept to small closed sets (origin
// side, content kind, direction, outcome reason) so cardinality stays
// bounded no matter how many users the bridge serves.
var (
	// EventsTotal counts inbound events by origin side and content kind.
	EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_events_total",
			Help: "Total number of inbound transport events.",
		},
		[]string{"side", "kind"},
	)

	// ForwardsTotal counts successfully relayed messages by direction.
	ForwardsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_forwards_total",
			Help: "Total number of messages relayed across the bridge.",
		},
		[]string{"direction"},
	)

	// EditsTotal counts transport edit operations issued after diffing, by
	// edited field.
	EditsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_edits_total",
			Help: "Total number of edit operations propagated to counterparts.",
		},
		[]string{"field"},
	)

	// RejectsTotal counts policy rejections (unsupported content) by kind.
	RejectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_rejects_total",
			Help: "Total number of events rejected as unsupported content.",
		},
		[]string{"kind"},
	)

	// DropsTotal counts events dropped without user-visible effect, by
	// reason ("error", "unknown_thread", "no_photo", "unknown_kind").
	DropsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_drops_total",
			Help: "Total number of events dropped without observable effect.",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(EventsTotal, ForwardsTotal, EditsTotal, RejectsTotal, DropsTotal)
}
