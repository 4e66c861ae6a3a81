package bot

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/faqbot/faqbot/internal/faq"
)

// entryStore backs the entry gauge. An atomic pointer so test instances
// can swap the store without re-registering the collector.
var entryStore atomic.Pointer[faq.Store]

var (
	resolverQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "faqbot_resolver_queries_total",
		Help: "Free-text FAQ queries by outcome.",
	}, []string{"outcome"})

	commandsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "faqbot_commands_total",
		Help: "Commands handled, by command name.",
	}, []string{"command"})

	reportsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "faqbot_reports_total",
		Help: "Report submissions by kind and status.",
	}, []string{"kind", "status"})

	_ = promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "faqbot_faq_entries",
		Help: "Live FAQ entries in the store.",
	}, func() float64 {
		if s := entryStore.Load(); s != nil {
			return float64(s.Len())
		}
		return 0
	})
)
