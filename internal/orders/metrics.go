package orders

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersClaimedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_claimed_total",
		Help: "Total number of successful order claims",
	}, []string{"category"})

	claimConflictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_claim_conflicts_total",
		Help: "Total number of claim attempts that lost the assignment race",
	}, []string{"category"})

	ordersCompletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_completed_total",
		Help: "Total number of completed orders",
	}, []string{"category"})
)
