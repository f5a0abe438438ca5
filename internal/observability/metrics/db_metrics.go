package metrics

import (
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

var dbOnce sync.Once

// RegisterPool exposes pgxpool statistics as gauges.
func RegisterPool(pool *pgxpool.Pool) {
	if pool == nil {
		return
	}
	dbOnce.Do(func() {
		prometheus.MustRegister(
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name: metricPrefix + "db_pool_total_conns",
				Help: "Total connections in the pool",
			}, func() float64 { return float64(pool.Stat().TotalConns()) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name: metricPrefix + "db_pool_idle_conns",
				Help: "Idle connections in the pool",
			}, func() float64 { return float64(pool.Stat().IdleConns()) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name: metricPrefix + "db_pool_acquired_conns",
				Help: "Connections currently acquired",
			}, func() float64 { return float64(pool.Stat().AcquiredConns()) }),
		)
	})
}
