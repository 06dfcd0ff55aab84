package services

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/navikt/bidrag-dokument-arkiv/internal/domain"
	"github.com/navikt/bidrag-dokument-arkiv/internal/gateway"
)

// BehandleAvvikResponse echoes the handled deviation type.
type BehandleAvvikResponse struct {
	AvvikType domain.AvvikType `json:"avvikType" example:"OVERFOR_TIL_ANNEN_ENHET"`
}

// AvvikService is the deviation engine. It checks a deviation against the
// entry's current state, runs the matching archive mutations in order and
// publishes one change event when all of them succeeded.
type AvvikService struct {
	Journalposter *JournalpostService
	Mutation      gateway.ArkivMutation
	Organisasjon  gateway.OrganisasjonGateway
	Endre         *EndreJournalpostService
	Distribusjon  *DistribuerJournalpostService
	Oppgaver      *OppgaveService
	Publisher     Publisher
}

// HentAvvik lists the deviations legal for the entry right now.
func (s *AvvikService) HentAvvik(ctx context.Context, id int64) ([]domain.AvvikType, error) {
	jp, err := s.Journalposter.Hent(ctx, id)
	if err != nil {
		return nil, err
	}
	if jp.ErOpprettetAvNKS() {
		return []domain.AvvikType{}, nil
	}
	return jp.TilAvvik(), nil
}

// BehandleAvvik parses, validates and applies a deviation to an entry.
func (s *AvvikService) BehandleAvvik(ctx context.Context, id int64, h domain.AvvikHendelse) (*BehandleAvvikResponse, error) {
	tr := otel.Tracer("services/AvvikService")
	ctx, span := tr.Start(ctx, "BehandleAvvik",
		trace.WithAttributes(
			attribute.Int64("journalpost.id", id),
			attribute.String("avvik.type", h.AvvikType),
			attribute.String("avvik.enhet", h.Enhetsnummer),
		),
	)
	defer span.End()

	avvik, err := domain.ParseAvvik(h)
	if err != nil {
		avvikBehandlet.WithLabelValues("ukjent", resultatFeil).Inc()
		return nil, err
	}

	err = s.behandle(ctx, id, avvik, h)
	avvikBehandlet.WithLabelValues(string(avvik.Type()), resultat(err)).Inc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "avvik feilet")
		return nil, err
	}

	loggerFra(ctx).Info().Int64("journalpost_id", id).Str("avvik_type", string(avvik.Type())).
		Str("enhet", h.Enhetsnummer).Msg("avvik behandlet")
	return &BehandleAvvikResponse{AvvikType: avvik.Type()}, nil
}

func (s *AvvikService) behandle(ctx context.Context, id int64, avvik domain.Avvik, h domain.AvvikHendelse) error {
	jp, err := s.Journalposter.Hent(ctx, id)
	if err != nil {
		return err
	}
	if jp.ErOpprettetAvNKS() {
		return fmt.Errorf("%w: %s er opprettet av NKS", ErrUgyldigAvvik, jp.ArkivID())
	}
	if !jp.AksepterAvvik(avvik.Type()) {
		return fmt.Errorf("%w: %s er ikke gyldig for %s med status %s", ErrUgyldigAvvik, avvik.Type(), jp.ArkivID(), jp.Journalstatus)
	}

	switch a := avvik.(type) {
	case domain.OverforTilAnnenEnhet:
		err = s.overforTilAnnenEnhet(ctx, *jp, a)
	case domain.EndreFagomrade:
		err = s.endreFagomrade(ctx, *jp, a, h.Enhetsnummer)
	case domain.TrekkJournalpost:
		err = s.trekkJournalpost(ctx, *jp, a)
	case domain.FeilforeSak:
		err = s.Mutation.FeilregistrerSakstilknytning(ctx, id)
	case domain.RegistrerRetur:
		err = s.registrerRetur(ctx, *jp, a)
	case domain.BestillNyDistribusjon:
		err = s.bestillNyDistribusjon(ctx, *jp, a)
	case domain.ManglerAdresse:
		err = s.manglerAdresse(ctx, *jp)
	case domain.SlettJournalpost:
		err = s.Mutation.SettStatusUtgaar(ctx, id)
	case domain.Markering:
		loggerFra(ctx).Info().Int64("journalpost_id", id).Str("avvik_type", string(a.Avvikstype)).
			Str("beskrivelse", a.Beskrivelse).Msg("avvik registrert uten endring av journalpost")
	default:
		err = fmt.Errorf("%w: %s", ErrAvvikIkkeStottet, avvik.Type())
	}
	if err != nil {
		return err
	}

	return s.Publisher.PubliserEndring(ctx, id, h.Enhetsnummer)
}

func (s *AvvikService) overforTilAnnenEnhet(ctx context.Context, jp domain.Journalpost, a domain.OverforTilAnnenEnhet) error {
	return s.Mutation.Oppdater(ctx, jp.JournalpostID, domain.OppdaterJournalpost{
		JournalforendeEnhet: a.NyttEnhetsnummer,
	})
}

func (s *AvvikService) endreFagomrade(ctx context.Context, jp domain.Journalpost, a domain.EndreFagomrade, enhet string) error {
	if jp.Tema == a.NyttTema {
		return nil
	}
	if jp.ErJournalfort() && jp.ErInngaende() {
		return s.endreFagomradeJournalfort(ctx, jp, a, enhet)
	}
	return s.Mutation.Oppdater(ctx, jp.JournalpostID, domain.OppdaterJournalpost{Tema: a.NyttTema})
}

// endreFagomradeJournalfort moves a journalført inbound entry to another
// benefit domain. Within bidrag the entry must have a case, and an earlier
// copy on that case is revived and moved along when one exists; outside bidrag a copy is linked to the general case of the
// target domain and a review task is created for it. The original case link
// is marked as an error in both cases.
func (s *AvvikService) endreFagomradeJournalfort(ctx context.Context, jp domain.Journalpost, a domain.EndreFagomrade, enhet string) error {
	if domain.ErBidragTema(a.NyttTema) {
		if !jp.HarSak() {
			return fmt.Errorf("%w: journalpost mangler sak", ErrManglerDetalj)
		}
		if err := s.gjenbrukEllerTilknyttSak(ctx, jp, a.NyttTema, enhet); err != nil {
			return err
		}
	} else {
		if !jp.HarGjelder() {
			return fmt.Errorf("%w: journalpost mangler gjelder", ErrManglerDetalj)
		}
		nyEnhet, err := s.Organisasjon.HentEnhetForPerson(ctx, jp.Gjelder(), a.NyttTema)
		if err != nil {
			return err
		}
		nyID, err := s.Endre.TilknyttGenerellSak(ctx, jp, a.NyttTema, nyEnhet)
		if err != nil {
			return err
		}
		if _, err := s.Oppgaver.OpprettVurderDokumentOppgave(ctx, VurderDokument{
			JournalpostID:    nyID,
			Tema:             a.NyttTema,
			Enhet:            nyEnhet,
			Gjelder:          jp.Gjelder(),
			Tittel:           jp.Tittel,
			Beskrivelse:      a.Beskrivelse,
			OpprettetAvEnhet: enhet,
		}); err != nil {
			return err
		}
	}

	if err := s.Mutation.Oppdater(ctx, jp.JournalpostID, domain.OppdaterJournalpost{
		Tilleggsopplysninger: jp.Tilleggsopplysninger.MedVerdi(domain.NokkelAvvikEndretTema, a.NyttTema),
	}); err != nil {
		return err
	}
	return s.Mutation.FeilregistrerSakstilknytning(ctx, jp.JournalpostID)
}

func (s *AvvikService) gjenbrukEllerTilknyttSak(ctx context.Context, jp domain.Journalpost, tema, enhet string) error {
	saksnummer := jp.Saksnummer()
	kandidater, err := s.Journalposter.HentForSak(ctx, saksnummer, []string{tema})
	if err != nil {
		return err
	}
	for _, k := range kandidater {
		if k.JournalpostID == jp.JournalpostID || !k.ErFeilregistrert() || !k.HarSammeDokumenter(jp) {
			continue
		}
		loggerFra(ctx).Info().Int64("journalpost_id", jp.JournalpostID).Int64("gjenbrukt_journalpost_id", k.JournalpostID).
			Str("tema", tema).Msg("opphever feilregistrering av tidligere kopi")
		if err := s.Mutation.OpphevFeilregistrerSakstilknytning(ctx, k.JournalpostID); err != nil {
			return err
		}
		return s.Mutation.Oppdater(ctx, k.JournalpostID, domain.OppdaterJournalpost{
			Tema:                 tema,
			Tilleggsopplysninger: k.Tilleggsopplysninger.MedVerdi(domain.NokkelAvvikEndretTema, tema),
		})
	}
	_, err = s.Endre.TilknyttSak(ctx, jp, saksnummer, tema, enhet)
	return err
}

func (s *AvvikService) trekkJournalpost(ctx context.Context, jp domain.Journalpost, a domain.TrekkJournalpost) error {
	if !jp.HarGjelder() {
		return fmt.Errorf("%w: journalpost mangler gjelder", ErrManglerDetalj)
	}
	if jp.Tema == "" {
		return fmt.Errorf("%w: journalpost mangler tema", ErrManglerDetalj)
	}

	oppdatering := domain.OppdaterJournalpost{
		Sak: &domain.Sak{Sakstype: domain.SakstypeGenerellSak},
	}
	if a.Beskrivelse != "" {
		tittel := fmt.Sprintf("%s (%s)", jp.Tittel, a.Beskrivelse)
		oppdatering.Tittel = &tittel
	}
	if err := s.Mutation.Oppdater(ctx, jp.JournalpostID, oppdatering); err != nil {
		return err
	}
	if err := s.Mutation.Ferdigstill(ctx, jp.JournalpostID, domain.FerdigstillJournalpost{
		JournalforendeEnhet: jp.JournalforendeEnhet,
		JournalfortAvNavn:   domain.SystemSaksbehandler.Navn,
		OpprettetAvNavn:     domain.SystemSaksbehandler.Navn,
	}); err != nil {
		return err
	}
	return s.Mutation.FeilregistrerSakstilknytning(ctx, jp.JournalpostID)
}

func (s *AvvikService) registrerRetur(ctx context.Context, jp domain.Journalpost, a domain.RegistrerRetur) error {
	tillegg, err := jp.Tilleggsopplysninger.LeggTilReturDetalj(a.Dato, a.Beskrivelse)
	if errors.Is(err, domain.ErrReturDatoFinnes) {
		return fmt.Errorf("%w: %w", ErrUgyldigAvvik, err)
	}
	if err != nil {
		return err
	}
	return s.Mutation.Oppdater(ctx, jp.JournalpostID, domain.OppdaterJournalpost{
		Tilleggsopplysninger: tillegg,
		DatoRetur:            a.Dato.Format(domain.DatoFormat),
	})
}

func (s *AvvikService) bestillNyDistribusjon(ctx context.Context, jp domain.Journalpost, a domain.BestillNyDistribusjon) error {
	adresse := a.Adresse
	if err := validerMottaker(jp, &adresse, false); err != nil {
		return fmt.Errorf("%w: %w", ErrUgyldigAvvik, err)
	}

	if jp.Tilleggsopplysninger.HarUlaasteReturDetaljer() {
		laast := jp.Tilleggsopplysninger.LaasReturDetaljer()
		if err := s.Mutation.Oppdater(ctx, jp.JournalpostID, domain.OppdaterJournalpost{
			Tilleggsopplysninger: laast,
		}); err != nil {
			return err
		}
		jp = jp.MedTilleggsopplysninger(laast)
	}

	res, err := s.Distribusjon.bestill(ctx, jp, &adresse)
	if err != nil {
		return err
	}
	if res == nil {
		return ErrDistribusjonUtilgjengelig
	}
	loggerFra(ctx).Info().Int64("journalpost_id", jp.JournalpostID).Str("bestillings_id", res.BestillingsID).
		Msg("ny distribusjon bestilt")
	return nil
}

// manglerAdresse closes distribution for the entry and every entry sharing
// its documents, and clears their distribution flag.
func (s *AvvikService) manglerAdresse(ctx context.Context, jp domain.Journalpost) error {
	if err := s.lukkDistribusjon(ctx, jp); err != nil {
		return err
	}

	tilknyttede, err := s.Journalposter.Arkiv.HentTilknyttedeJournalposter(ctx, jp)
	if err != nil {
		return err
	}
	for _, t := range tilknyttede {
		if t.JournalpostID == jp.JournalpostID || t.Journalstatus == domain.StatusFeilregistrert {
			continue
		}
		annen, err := s.Journalposter.Hent(ctx, t.JournalpostID)
		if err != nil {
			return err
		}
		if err := s.lukkDistribusjon(ctx, *annen); err != nil {
			return err
		}
	}
	return nil
}

func (s *AvvikService) lukkDistribusjon(ctx context.Context, jp domain.Journalpost) error {
	if err := s.Mutation.OppdaterDistribusjonsinfo(ctx, jp.JournalpostID, domain.Distribusjonsinfo{
		Utsendingskanal:     domain.KanalIngenDistribusjon,
		SettStatusEkspedert: true,
	}); err != nil {
		return err
	}
	if !jp.Tilleggsopplysninger.DistribusjonBestilt() {
		return nil
	}
	return s.Mutation.Oppdater(ctx, jp.JournalpostID, domain.OppdaterJournalpost{
		Tilleggsopplysninger: jp.Tilleggsopplysninger.Uten(domain.NokkelDistribusjonBestilt),
	})
}
