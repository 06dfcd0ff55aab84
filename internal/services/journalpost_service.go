package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/navikt/bidrag-dokument-arkiv/internal/domain"
	"github.com/navikt/bidrag-dokument-arkiv/internal/gateway"
)

const (
	defaultVentIntervall = 2 * time.Second
	defaultVentForsok    = 3
)

var errIkkeOppdatert = errors.New("journalpost er ikke oppdatert ennå")

// JournalpostService reads journal entries through the archive query gateway.
type JournalpostService struct {
	Arkiv gateway.ArkivQuery

	// Read-after-write polling used when the archive has not yet caught up
	// with a write made by another system.
	VentIntervall time.Duration
	VentForsok    uint
}

// Hent returns the entry or ErrJournalpostIkkeFunnet.
func (s *JournalpostService) Hent(ctx context.Context, id int64) (*domain.Journalpost, error) {
	tr := otel.Tracer("services/JournalpostService")
	ctx, span := tr.Start(ctx, "Hent",
		trace.WithAttributes(attribute.Int64("journalpost.id", id)),
	)
	defer span.End()

	jp, err := s.Arkiv.HentJournalpost(ctx, id)
	if errors.Is(err, gateway.ErrNotFound) || (err == nil && jp == nil) {
		return nil, fmt.Errorf("%w: %s", ErrJournalpostIkkeFunnet, domain.ArkivID(id))
	}
	if err != nil {
		return nil, err
	}
	return jp, nil
}

// HentMedTilknyttedeSaker returns the entry with TilknyttedeSaker filled from
// every non-feilregistrert entry sharing its documents.
func (s *JournalpostService) HentMedTilknyttedeSaker(ctx context.Context, id int64) (*domain.Journalpost, error) {
	jp, err := s.Hent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !jp.HarSak() {
		return jp, nil
	}
	tilknyttede, err := s.Arkiv.HentTilknyttedeJournalposter(ctx, *jp)
	if err != nil {
		return nil, err
	}
	beriket := *jp
	for _, t := range tilknyttede {
		if t.Journalstatus == domain.StatusFeilregistrert || t.Saksnummer == "" {
			continue
		}
		beriket = beriket.MedTilknyttetSak(t.Saksnummer)
	}
	return &beriket, nil
}

// HentForSak lists the entries of a case, filtered by tema.
func (s *JournalpostService) HentForSak(ctx context.Context, saksnummer string, tema []string) ([]domain.Journalpost, error) {
	tr := otel.Tracer("services/JournalpostService")
	ctx, span := tr.Start(ctx, "HentForSak",
		trace.WithAttributes(
			attribute.String("sak.saksnummer", saksnummer),
			attribute.StringSlice("sak.tema", tema),
		),
	)
	defer span.End()

	return s.Arkiv.HentJournalposterForSak(ctx, saksnummer, tema)
}

// HentMedVenting fetches the entry until ok returns true, at a fixed interval
// for a bounded number of attempts. The last fetched entry is returned with
// oppdatert=false when the condition never held.
func (s *JournalpostService) HentMedVenting(ctx context.Context, id int64, ok func(domain.Journalpost) bool) (jp *domain.Journalpost, oppdatert bool, err error) {
	var siste *domain.Journalpost
	op := func() (*domain.Journalpost, error) {
		j, err := s.Hent(ctx, id)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		siste = j
		if !ok(*j) {
			return nil, errIkkeOppdatert
		}
		return j, nil
	}

	jp, err = backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(s.ventIntervall())),
		backoff.WithMaxTries(s.ventForsok()),
	)
	switch {
	case err == nil:
		return jp, true, nil
	case errors.Is(err, errIkkeOppdatert):
		return siste, false, nil
	default:
		return nil, false, err
	}
}

func (s *JournalpostService) ventIntervall() time.Duration {
	if s.VentIntervall > 0 {
		return s.VentIntervall
	}
	return defaultVentIntervall
}

func (s *JournalpostService) ventForsok() uint {
	if s.VentForsok > 0 {
		return s.VentForsok
	}
	return defaultVentForsok
}
