package services

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/navikt/bidrag-dokument-arkiv/internal/domain"
	"github.com/navikt/bidrag-dokument-arkiv/internal/gateway"
)

const (
	bestillendeFagsystem = "BISYS"
	dokumentProdApp      = "bidrag-dokument-arkiv"
)

// DistribuerJournalpostService orders distribution of outbound entries.
type DistribuerJournalpostService struct {
	Journalposter *JournalpostService
	Mutation      gateway.ArkivMutation
	Distribusjon  gateway.DistribusjonGateway
	// Personer resolves the recipient's registered address when neither
	// the request nor the entry carries one. Optional.
	Personer gateway.PersonGateway
}

// Distribuer validates the entry and orders distribution. It returns nil
// without error when the distribution service refused the order.
func (s *DistribuerJournalpostService) Distribuer(ctx context.Context, id int64, req domain.DistribuerRequest) (*domain.DistribuerResultat, error) {
	tr := otel.Tracer("services/DistribuerJournalpostService")
	ctx, span := tr.Start(ctx, "Distribuer",
		trace.WithAttributes(
			attribute.Int64("journalpost.id", id),
			attribute.Bool("distribusjon.lokal_utskrift", req.LokalUtskrift),
		),
	)
	defer span.End()

	jp, err := s.Journalposter.Hent(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.Valider(*jp, nil, true); err != nil {
		return nil, err
	}
	if req.LokalUtskrift {
		return nil, s.Mutation.OppdaterDistribusjonsinfo(ctx, id, domain.Distribusjonsinfo{
			Utsendingskanal:     domain.KanalLokalUtskrift,
			SettStatusEkspedert: true,
		})
	}

	adresse, err := s.mottakerAdresse(ctx, *jp, req.Adresse)
	if err != nil {
		return nil, err
	}
	if !adresse.Gyldig() {
		return nil, ErrManglerAdresse
	}
	return s.bestill(ctx, *jp, adresse)
}

// KanDistribuere reports, as an error, why an entry cannot be distributed.
func (s *DistribuerJournalpostService) KanDistribuere(ctx context.Context, id int64) error {
	jp, err := s.Journalposter.Hent(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Valider(*jp, nil, true); err != nil {
		return err
	}
	adresse, err := s.mottakerAdresse(ctx, *jp, nil)
	if err != nil {
		return err
	}
	return s.Valider(*jp, adresse, false)
}

// mottakerAdresse picks the address to distribute to: the request's, then
// the one stored on the entry, then the recipient's registered address.
// Only person recipients are looked up; a registry miss yields nil.
func (s *DistribuerJournalpostService) mottakerAdresse(ctx context.Context, jp domain.Journalpost, fraRequest *domain.Adresse) (*domain.Adresse, error) {
	if fraRequest != nil {
		return fraRequest, nil
	}
	if a := jp.MottakerAdresse(); a != nil {
		return a, nil
	}
	if s.Personer == nil || !jp.MottakerErPerson() {
		return nil, nil
	}
	a, err := s.Personer.HentAdresse(ctx, jp.AvsenderMottaker.ID)
	if errors.Is(err, gateway.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("hent adresse for mottaker: %w", err)
	}
	return a, nil
}

// Valider checks the preconditions in order: status, tema, recipient and,
// unless printed locally, that adresse is usable.
func (s *DistribuerJournalpostService) Valider(jp domain.Journalpost, adresse *domain.Adresse, lokalUtskrift bool) error {
	if !jp.ErFerdigstilt() {
		return fmt.Errorf("%w: status er %s", ErrIkkeFerdigstilt, jp.Journalstatus)
	}
	return validerMottaker(jp, adresse, lokalUtskrift)
}

// validerMottaker runs every distribution check except the status check. A
// redistribution after returned mail targets entries already expedited.
func validerMottaker(jp domain.Journalpost, adresse *domain.Adresse, lokalUtskrift bool) error {
	if !domain.ErBidragTema(jp.Tema) {
		return fmt.Errorf("%w: tema er %s", ErrIkkeBidragTema, jp.Tema)
	}
	if !jp.HarMottakerID() {
		return ErrManglerMottaker
	}
	if lokalUtskrift {
		return nil
	}
	if adresse == nil {
		adresse = jp.MottakerAdresse()
	}
	if !adresse.Gyldig() {
		return ErrManglerAdresse
	}
	return nil
}

// bestill sends the order and marks the entry as distribution ordered.
// Entries already marked are re-sent without touching the marker.
func (s *DistribuerJournalpostService) bestill(ctx context.Context, jp domain.Journalpost, adresse *domain.Adresse) (*domain.DistribuerResultat, error) {
	res, err := s.Distribusjon.Distribuer(ctx, domain.DistribuerBestilling{
		JournalpostID:        jp.ArkivID(),
		BestillendeFagsystem: bestillendeFagsystem,
		DokumentProdApp:      dokumentProdApp,
		Adresse:              adresse,
	})
	if err != nil || res == nil {
		return nil, err
	}

	if !jp.Tilleggsopplysninger.DistribusjonBestilt() {
		if err := s.Mutation.Oppdater(ctx, jp.JournalpostID, domain.OppdaterJournalpost{
			Tilleggsopplysninger: jp.Tilleggsopplysninger.MedDistribusjonBestilt(),
		}); err != nil {
			loggerFra(ctx).Warn().Err(err).Int64("journalpost_id", jp.JournalpostID).
				Str("bestillings_id", res.BestillingsID).
				Msg("distribusjon bestilt, men markering av journalpost feilet")
		}
	}
	return res, nil
}
