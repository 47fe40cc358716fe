package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "smartob_cycles_total", Help: "Decision cycles run"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "smartob_order_blocks_total", Help: "Order blocks detected"},
		[]string{"symbol", "type"},
	)
	TradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "smartob_trades_total", Help: "Orders accepted by the executor"},
		[]string{"symbol", "side"},
	)
	RejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "smartob_rejections_total", Help: "Orders declined by the executor"},
		[]string{"symbol"},
	)
	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "smartob_errors_total", Help: "Symbol evaluations abandoned, by error kind"},
		[]string{"symbol", "kind"},
	)
	TradesToday = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "smartob_trades_today", Help: "Trades opened in the current trading day"},
	)
)

func init() {
	prometheus.MustRegister(CyclesTotal, SignalsTotal, TradesTotal, RejectionsTotal, ErrorsTotal, TradesToday)
}

// Serve exposes /metrics on addr in the background.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
