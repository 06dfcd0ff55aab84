package services

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Outcome label values.
const (
	resultatOK   = "ok"
	resultatFeil = "feil"
)

var (
	// avvikBehandlet counts handled deviations by type and outcome.
	avvikBehandlet = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bidrag_avvik_behandlet_total",
			Help: "Deviations handled, by type and outcome.",
		},
		[]string{"avvik_type", "resultat"},
	)

	// hendelserPublisert counts change events by outcome after retries.
	hendelserPublisert = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bidrag_hendelser_publisert_total",
			Help: "Journal entry change events, by outcome.",
		},
		[]string{"resultat"},
	)

	// oppgaver counts task operations.
	oppgaver = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bidrag_oppgaver_total",
			Help: "Task operations, by operation.",
		},
		[]string{"operasjon"},
	)
)

func init() {
	prometheus.MustRegister(avvikBehandlet, hendelserPublisert, oppgaver)
}

func resultat(err error) string {
	if err != nil {
		return resultatFeil
	}
	return resultatOK
}

// loggerFra returns the request-scoped logger stored in ctx by the HTTP
// layer, or the global logger.
func loggerFra(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}
