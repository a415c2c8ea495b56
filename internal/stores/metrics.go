package stores

import "github.com/prometheus/client_golang/prometheus"

var (
	// slotLoadFallbacks counts loads that returned the default value, by slot
	// name and reason (unreadable|shape|decode).
	slotLoadFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_slot_load_fallbacks_total",
			Help: "Slot loads that fell back to the default value.",
		},
		[]string{"slot", "reason"},
	)

	// slotWriteFailures counts swallowed write failures by slot name.
	slotWriteFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_slot_write_failures_total",
			Help: "Slot writes that failed and were dropped.",
		},
		[]string{"slot"},
	)
)

func init() {
	prometheus.MustRegister(slotLoadFallbacks, slotWriteFailures)
}
