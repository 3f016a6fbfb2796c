package metrics

import "github.com/prometheus/client_golang/prometheus"

// OrderMetrics counts outcomes of the order creation workflow.
type OrderMetrics struct {
	created           prometheus.Counter
	insufficientStock prometheus.Counter
	cancelled         prometheus.Counter
}

// NewOrderMetrics registers order workflow counters on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders successfully created.",
	})
	insufficientStock := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_insufficient_stock_total",
		Help: "Order attempts rejected for insufficient stock.",
	})
	cancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Orders cancelled with stock restored.",
	})
	reg.MustRegister(created, insufficientStock, cancelled)
	return &OrderMetrics{
		created:           created,
		insufficientStock: insufficientStock,
		cancelled:         cancelled,
	}
}

// IncCreated increments the created-orders counter.
func (o *OrderMetrics) IncCreated() {
	if o == nil || o.created == nil {
		return
	}
	o.created.Inc()
}

// IncInsufficientStock increments the rejected-for-stock counter.
func (o *OrderMetrics) IncInsufficientStock() {
	if o == nil || o.insufficientStock == nil {
		return
	}
	o.insufficientStock.Inc()
}

// IncCancelled increments the cancelled-orders counter.
func (o *OrderMetrics) IncCancelled() {
	if o == nil || o.cancelled == nil {
		return
	}
	o.cancelled.Inc()
}
