package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/navikt/bidrag-dokument-arkiv/internal/domain"
	"github.com/navikt/bidrag-dokument-arkiv/internal/gateway"
)

const hendelseKilde = "bidrag-dokument-arkiv"

// Producer sends one keyed message to the change-event topic.
type Producer interface {
	Send(ctx context.Context, key string, value []byte) error
}

// RetryPolicy controls how a failed publish is retried. The whole publish
// (refetch, enrichment and send) is repeated on each attempt.
type RetryPolicy struct {
	InitialInterval time.Duration
	Multiplier      float64
	MaxInterval     time.Duration
	MaxForsok       uint
}

// DefaultRetryPolicy waits 1s, doubling up to 12s, for at most 10 attempts.
var DefaultRetryPolicy = RetryPolicy{
	InitialInterval: time.Second,
	Multiplier:      2,
	MaxInterval:     12 * time.Second,
	MaxForsok:       10,
}

// HendelsePublisher publishes a JournalpostHendelse after a successful change.
type HendelsePublisher struct {
	Journalposter  *JournalpostService
	Personer       gateway.PersonGateway
	Saksbehandlere *SaksbehandlerInfo
	Producer       Producer
	Retry          RetryPolicy
	Now            func() time.Time
}

// PubliserEndring refetches the entry and publishes its current state keyed
// by "JOARK-<id>". Entries created by the contact centre are skipped.
func (p *HendelsePublisher) PubliserEndring(ctx context.Context, id int64, enhet string) error {
	tr := otel.Tracer("services/HendelsePublisher")
	ctx, span := tr.Start(ctx, "PubliserEndring",
		trace.WithAttributes(
			attribute.Int64("journalpost.id", id),
			attribute.String("hendelse.enhet", enhet),
		),
	)
	defer span.End()

	lg := loggerFra(ctx)
	op := func() (struct{}, error) {
		return struct{}{}, p.publiser(ctx, id, enhet)
	}
	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(p.backOff()),
		backoff.WithMaxTries(p.maxForsok()),
		backoff.WithNotify(func(err error, next time.Duration) {
			lg.Warn().Err(err).Int64("journalpost_id", id).Dur("neste_forsok", next).Msg("publisering av hendelse feilet, prøver igjen")
		}),
	)
	hendelserPublisert.WithLabelValues(resultat(err)).Inc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publisering feilet")
		return fmt.Errorf("publiser hendelse for %s: %w", domain.ArkivID(id), err)
	}
	return nil
}

func (p *HendelsePublisher) publiser(ctx context.Context, id int64, enhet string) error {
	jp, err := p.Journalposter.HentMedTilknyttedeSaker(ctx, id)
	if err != nil {
		return err
	}
	if jp.ErOpprettetAvNKS() {
		loggerFra(ctx).Info().Int64("journalpost_id", id).Msg("journalpost er opprettet av NKS, publiserer ikke hendelse")
		return nil
	}

	h := domain.NyJournalpostHendelse(*jp, enhet)
	sb := p.sporing(ctx, *jp)
	h.Sporing = domain.HendelseSporing{
		Brukerident:        sb.Ident,
		SaksbehandlersNavn: sb.Navn,
		Enhetsnummer:       h.Enhet,
		CorrelationID:      correlationID(ctx),
	}
	h.Metadata = domain.HendelseMeta{
		HendelseID: uuid.NewString(),
		Opprettet:  p.now().UTC(),
		Kilde:      hendelseKilde,
	}
	if h.AktorID == "" && h.Fnr != "" && p.Personer != nil {
		person, err := p.Personer.HentPerson(ctx, h.Fnr)
		if err != nil {
			return err
		}
		if person != nil {
			h.AktorID = person.AktoerID
		}
	}

	body, err := json.Marshal(h)
	if err != nil {
		return backoff.Permanent(err)
	}
	return p.Producer.Send(ctx, jp.ArkivID(), body)
}

// sporing resolves who caused the change: the authenticated case handler,
// then the journalført-av audit keys, then the system identity. An entry
// journalført by another system may not carry the audit keys yet, so the
// archive is polled briefly before falling back.
func (p *HendelsePublisher) sporing(ctx context.Context, jp domain.Journalpost) domain.Saksbehandler {
	if sb, ok := p.Saksbehandlere.Gjeldende(ctx); ok {
		return *sb
	}
	if sb, ok := jp.Tilleggsopplysninger.JournalfortAv(); ok {
		return sb
	}
	if jp.Journalstatus == domain.StatusJournalfort && jp.JournalfortAvNavn == "" {
		oppdatert, ok, err := p.Journalposter.HentMedVenting(ctx, jp.JournalpostID, func(j domain.Journalpost) bool {
			_, har := j.Tilleggsopplysninger.JournalfortAv()
			return har
		})
		if err == nil && ok {
			sb, _ := oppdatert.Tilleggsopplysninger.JournalfortAv()
			return sb
		}
	}
	return domain.SystemSaksbehandler
}

func (p *HendelsePublisher) backOff() backoff.BackOff {
	r := p.Retry
	if r.InitialInterval <= 0 {
		r.InitialInterval = DefaultRetryPolicy.InitialInterval
	}
	if r.Multiplier <= 1 {
		r.Multiplier = DefaultRetryPolicy.Multiplier
	}
	if r.MaxInterval <= 0 {
		r.MaxInterval = DefaultRetryPolicy.MaxInterval
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.InitialInterval
	b.Multiplier = r.Multiplier
	b.MaxInterval = r.MaxInterval
	return b
}

func (p *HendelsePublisher) maxForsok() uint {
	if p.Retry.MaxForsok > 0 {
		return p.Retry.MaxForsok
	}
	return DefaultRetryPolicy.MaxForsok
}

func (p *HendelsePublisher) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// correlationID returns the trace id of the current span, if any.
func correlationID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}
