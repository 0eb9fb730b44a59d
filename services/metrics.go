package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	placementsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "furniroom",
		Name:      "placements_total",
		Help:      "Items placed, moved and picked up, by operation.",
	}, []string{"op"})

	rejectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "furniroom",
		Name:      "rejections_total",
		Help:      "Room requests rejected, by reason.",
	}, []string{"reason"})

	interactionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "furniroom",
		Name:      "interactions_total",
		Help:      "Item uses that changed state, by interaction type.",
	}, []string{"interaction"})

	persistFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "furniroom",
		Name:      "persist_failures_total",
		Help:      "Store writes that failed, by operation.",
	}, []string{"op"})

	skippedRowsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "furniroom",
		Name:      "skipped_item_rows_total",
		Help:      "Item rows skipped at room load because their definition is unknown.",
	})

	roomsLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "furniroom",
		Name:      "rooms_loaded",
		Help:      "Rooms currently held in memory.",
	})
)

func init() {
	prometheus.MustRegister(placementsTotal, rejectionsTotal, interactionsTotal,
		persistFailuresTotal, skippedRowsTotal, roomsLoaded)
}

// CountRejection records a rejected request under its reason label
func CountRejection(reason string) {
	rejectionsTotal.WithLabelValues(reason).Inc()
}
