package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/obras-crm/internal/application/obras"
)

var _ obras.Metrics = (*Prometheus)(nil)

// Prometheus implementa obras.Metrics con contadores registrados en un Registerer.
type Prometheus struct {
	ledgerEntries   *prometheus.CounterVec
	ledgerAmount    *prometheus.CounterVec
	ledgerRejected  *prometheus.CounterVec
	stageChanges    *prometheus.CounterVec
	concurrencyConf *prometheus.CounterVec
}

// NewPrometheus crea y registra los colectores. Usar prometheus.NewRegistry() en tests.
func NewPrometheus(reg prometheus.Registerer, namespace string) (*Prometheus, error) {
	p := &Prometheus{
		ledgerEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_entries_total",
			Help:      "Movimientos de cuenta corriente registrados por tipo.",
		}, []string{"kind"}),
		ledgerAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_amount_total",
			Help:      "Suma de montos registrados por tipo de movimiento.",
		}, []string{"kind"}),
		ledgerRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_rejections_total",
			Help:      "Movimientos rechazados por regla de negocio.",
		}, []string{"kind", "reason"}),
		stageChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_changes_total",
			Help:      "Cambios de etapa por etapa destino.",
		}, []string{"etapa"}),
		concurrencyConf: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "concurrency_conflicts_total",
			Help:      "Guardados rechazados por versión obsoleta.",
		}, []string{"operation"}),
	}
	for _, c := range []prometheus.Collector{p.ledgerEntries, p.ledgerAmount, p.ledgerRejected, p.stageChanges, p.concurrencyConf} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) LedgerEntryRegistered(kind string, monto decimal.Decimal) {
	p.ledgerEntries.WithLabelValues(kind).Inc()
	p.ledgerAmount.WithLabelValues(kind).Add(monto.InexactFloat64())
}

func (p *Prometheus) LedgerEntryRejected(kind, reason string) {
	p.ledgerRejected.WithLabelValues(kind, reason).Inc()
}

func (p *Prometheus) StageChanged(etapa string) {
	p.stageChanges.WithLabelValues(etapa).Inc()
}

func (p *Prometheus) ConcurrencyConflict(operation string) {
	p.concurrencyConf.WithLabelValues(operation).Inc()
}
