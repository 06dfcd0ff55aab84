package services

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/navikt/bidrag-dokument-arkiv/internal/domain"
	"github.com/navikt/bidrag-dokument-arkiv/internal/gateway"
)

// Publisher publishes a change event for an entry.
type Publisher interface {
	PubliserEndring(ctx context.Context, journalpostID int64, enhet string) error
}

// EndreJournalpostService applies a case handler's edit, journalfører the
// entry when asked and links additional cases.
type EndreJournalpostService struct {
	Journalposter  *JournalpostService
	Mutation       gateway.ArkivMutation
	Proxy          gateway.ArkivProxy
	Oppgaver       *OppgaveService
	Saksbehandlere *SaksbehandlerInfo
	Publisher      Publisher
}

// Endre validates the command against the entry, then updates, finalises,
// links cases, creates document tasks (best effort) and publishes.
func (s *EndreJournalpostService) Endre(ctx context.Context, id int64, enhet string, k domain.EndreJournalpostKommando) error {
	tr := otel.Tracer("services/EndreJournalpostService")
	ctx, span := tr.Start(ctx, "Endre",
		trace.WithAttributes(
			attribute.Int64("journalpost.id", id),
			attribute.String("journalpost.enhet", enhet),
			attribute.Bool("journalpost.skal_journalfores", k.SkalJournalfores),
		),
	)
	defer span.End()

	jp, err := s.Journalposter.Hent(ctx, id)
	if err != nil {
		return err
	}

	oppdatering, err := s.byggOppdatering(ctx, *jp, k)
	if err != nil {
		return err
	}

	gjeldende := *jp
	if !oppdatering.Tom() {
		if err := s.Mutation.Oppdater(ctx, id, oppdatering); err != nil {
			return err
		}
		if oppdatering.Sak != nil {
			gjeldende = gjeldende.MedSak(oppdatering.Sak.FagsakID)
		}
		if oppdatering.Tittel != nil {
			gjeldende.Tittel = *oppdatering.Tittel
		}
	}

	skalFerdigstilles := k.SkalJournalfores && jp.Journalstatus == domain.StatusMottatt
	if skalFerdigstilles {
		sb, _ := s.Saksbehandlere.Gjeldende(ctx)
		req := domain.FerdigstillJournalpost{JournalforendeEnhet: enhet}
		if sb != nil {
			req.JournalfortAvNavn = sb.Navn
			req.OpprettetAvNavn = sb.Navn
		}
		if err := s.Mutation.Ferdigstill(ctx, id, req); err != nil {
			return err
		}
		gjeldende = gjeldende.MedStatus(domain.StatusJournalfort)
	}

	if gjeldende.KanTilknytteSaker() {
		if gjeldende, err = s.tilknyttSaker(ctx, gjeldende, k.TilknyttSaker, enhet); err != nil {
			return err
		}
	}

	if skalFerdigstilles && s.Oppgaver != nil {
		if err := s.Oppgaver.BehandleDokument(ctx, gjeldende, enhet); err != nil {
			loggerFra(ctx).Warn().Err(err).Int64("journalpost_id", id).Msg("kunne ikke opprette eller oppdatere behandle dokument oppgaver")
		}
	}

	return s.Publisher.PubliserEndring(ctx, id, enhet)
}

func (s *EndreJournalpostService) byggOppdatering(ctx context.Context, jp domain.Journalpost, k domain.EndreJournalpostKommando) (domain.OppdaterJournalpost, error) {
	var o domain.OppdaterJournalpost

	if jp.ErAvsluttet() {
		return o, fmt.Errorf("%w: journalpost har status %s", ErrUgyldigEndring, jp.Journalstatus)
	}

	if k.Tittel != nil {
		tittel := strings.TrimSpace(*k.Tittel)
		if tittel == "" {
			return o, fmt.Errorf("%w: tittel kan ikke være tom", ErrUgyldigEndring)
		}
		o.Tittel = &tittel
	}

	if k.Gjelder != nil && strings.TrimSpace(*k.Gjelder) != "" {
		typ := k.GjelderType
		if typ == "" {
			typ = domain.IDTypeFnr
		}
		o.Bruker = &domain.Bruker{ID: strings.TrimSpace(*k.Gjelder), Type: typ}
	}

	if k.AvsenderNavn != nil {
		am := domain.AvsenderMottaker{}
		if jp.AvsenderMottaker != nil {
			am = *jp.AvsenderMottaker
		}
		am.Navn = strings.TrimSpace(*k.AvsenderNavn)
		o.AvsenderMottaker = &am
	}

	if k.Fagomrade != "" && k.Fagomrade != jp.Tema {
		if !jp.ErUnderBehandling() {
			return o, fmt.Errorf("%w: tema kan bare endres før journalføring", ErrUgyldigEndring)
		}
		o.Tema = strings.ToUpper(k.Fagomrade)
	}

	if k.DokumentDato != "" {
		if _, err := time.Parse(domain.DatoFormat, k.DokumentDato); err != nil {
			return o, fmt.Errorf("%w: dokumentDato %q", ErrUgyldigEndring, k.DokumentDato)
		}
		o.DatoDokument = k.DokumentDato
	}

	for _, d := range k.Dokumenter {
		if !slices.Contains(jp.DokumentIDer(), d.DokumentInfoID) {
			return o, fmt.Errorf("%w: dokument %s finnes ikke på journalposten", ErrUgyldigEndring, d.DokumentInfoID)
		}
		o.Dokumenter = append(o.Dokumenter, domain.Dokument{DokumentInfoID: d.DokumentInfoID, Tittel: d.Tittel})
	}

	tillegg := jp.Tilleggsopplysninger
	endretTillegg := false

	if len(k.EndreReturDetaljer) > 0 {
		if !jp.ErUtgaende() {
			return o, fmt.Errorf("%w: returdetaljer kan bare endres på utgående journalposter", ErrUgyldigEndring)
		}
		for _, e := range k.EndreReturDetaljer {
			original, err := time.Parse(domain.DatoFormat, e.OriginalDato)
			if err != nil {
				return o, fmt.Errorf("%w: originalDato %q", ErrUgyldigEndring, e.OriginalDato)
			}
			ny := original
			if e.NyDato != "" {
				if ny, err = time.Parse(domain.DatoFormat, e.NyDato); err != nil {
					return o, fmt.Errorf("%w: nyDato %q", ErrUgyldigEndring, e.NyDato)
				}
			}
			if tillegg, err = tillegg.EndreReturDetalj(original, domain.ReturDetalj{Dato: ny, Beskrivelse: e.Beskrivelse}); err != nil {
				return o, fmt.Errorf("%w: %w", ErrUgyldigEndring, err)
			}
		}
		endretTillegg = true
	}

	if k.SkalJournalfores {
		if err := validerJournalforing(jp, k, o); err != nil {
			return o, err
		}
		if jp.ErUnderBehandling() {
			o.Sak = &domain.Sak{
				FagsakID:     k.TilknyttSaker[0],
				Fagsaksystem: domain.FagsaksystemBisys,
				Sakstype:     domain.SakstypeFagsak,
			}
			if sb, ok := s.Saksbehandlere.Gjeldende(ctx); ok {
				tillegg = tillegg.MedJournalfortAv(*sb)
				endretTillegg = true
			}
		}
	}

	if endretTillegg {
		o.Tilleggsopplysninger = tillegg
	}
	return o, nil
}

func validerJournalforing(jp domain.Journalpost, k domain.EndreJournalpostKommando, o domain.OppdaterJournalpost) error {
	if jp.ErJournalfort() && !jp.HarSak() {
		return fmt.Errorf("%w: journalført journalpost mangler sak", ErrUgyldigEndring)
	}
	if !jp.ErUnderBehandling() {
		return nil
	}
	if !jp.ErInngaende() {
		return fmt.Errorf("%w: bare inngående journalposter kan journalføres", ErrUgyldigEndring)
	}
	if len(k.TilknyttSaker) == 0 || strings.TrimSpace(k.TilknyttSaker[0]) == "" {
		return fmt.Errorf("%w: journalføring krever minst én sak", ErrUgyldigEndring)
	}
	if o.Bruker == nil && !jp.HarGjelder() {
		return fmt.Errorf("%w: journalføring krever gjelder", ErrUgyldigEndring)
	}
	if (o.Tittel == nil || *o.Tittel == "") && strings.TrimSpace(jp.Tittel) == "" {
		return fmt.Errorf("%w: journalføring krever tittel", ErrUgyldigEndring)
	}
	return nil
}

// tilknyttSaker links every requested case not already linked to the entry
// or to an entry sharing its documents.
func (s *EndreJournalpostService) tilknyttSaker(ctx context.Context, jp domain.Journalpost, saker []string, enhet string) (domain.Journalpost, error) {
	if len(saker) == 0 {
		return jp, nil
	}
	tilknyttede, err := s.Journalposter.Arkiv.HentTilknyttedeJournalposter(ctx, jp)
	if err != nil {
		return jp, err
	}
	for _, t := range tilknyttede {
		if t.Journalstatus != domain.StatusFeilregistrert && t.Saksnummer != "" {
			jp = jp.MedTilknyttetSak(t.Saksnummer)
		}
	}

	for _, sak := range saker {
		sak = strings.TrimSpace(sak)
		if sak == "" || jp.ErTilknyttetSak(sak) {
			continue
		}
		nyID, err := s.TilknyttSak(ctx, jp, sak, jp.Tema, enhet)
		if err != nil {
			return jp, err
		}
		loggerFra(ctx).Info().Int64("journalpost_id", jp.JournalpostID).Int64("ny_journalpost_id", nyID).
			Str("saksnummer", sak).Msg("journalpost tilknyttet sak")
		jp = jp.MedTilknyttetSak(sak)
	}
	return jp, nil
}

// TilknyttSak links a copy of jp to a bidrag case and returns the copy's id.
func (s *EndreJournalpostService) TilknyttSak(ctx context.Context, jp domain.Journalpost, saksnummer, tema, enhet string) (int64, error) {
	return s.Proxy.KnyttTilSak(ctx, jp.JournalpostID, domain.KnyttTilSak{
		Sakstype:            domain.SakstypeFagsak,
		FagsakID:            saksnummer,
		Fagsaksystem:        domain.FagsaksystemBisys,
		Tema:                tema,
		Bruker:              jp.Bruker,
		JournalforendeEnhet: enhet,
	})
}

// TilknyttGenerellSak links a copy of jp to the general case of another
// benefit domain and returns the copy's id.
func (s *EndreJournalpostService) TilknyttGenerellSak(ctx context.Context, jp domain.Journalpost, tema, enhet string) (int64, error) {
	id, err := s.Proxy.KnyttTilSak(ctx, jp.JournalpostID, domain.KnyttTilSak{
		Sakstype:            domain.SakstypeGenerellSak,
		Tema:                tema,
		Bruker:              jp.Bruker,
		JournalforendeEnhet: enhet,
	})
	if err != nil {
		return 0, fmt.Errorf("knytt %s til generell sak %s: %w", jp.ArkivID(), tema, err)
	}
	loggerFra(ctx).Info().Int64("journalpost_id", jp.JournalpostID).Str("ny_journalpost_id", strconv.FormatInt(id, 10)).
		Str("tema", tema).Msg("journalpost tilknyttet generell sak")
	return id, nil
}
