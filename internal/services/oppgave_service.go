package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/navikt/bidrag-dokument-arkiv/internal/domain"
	"github.com/navikt/bidrag-dokument-arkiv/internal/gateway"
)

const beskrivelseDatoFormat = "02.01.2006 15:04"

// OppgaveService creates and updates tasks in the task system on behalf of
// the deviation engine and the edit orchestrator.
type OppgaveService struct {
	Gateway        gateway.OppgaveGateway
	Saksbehandlere *SaksbehandlerInfo

	// Now is the clock used for description headers and task dates.
	Now func() time.Time
}

// VurderDokument describes a review task for an entry moved out of bidrag.
type VurderDokument struct {
	JournalpostID int64
	Tema          string
	Enhet         string
	Gjelder       string
	Tittel        string
	Beskrivelse   string
	// OpprettetAvEnhet is the unit that moved the entry.
	OpprettetAvEnhet string
}

// OpprettVurderDokumentOppgave creates a VUR task for an entry that now
// belongs to another benefit domain.
func (s *OppgaveService) OpprettVurderDokumentOppgave(ctx context.Context, v VurderDokument) (int64, error) {
	tr := otel.Tracer("services/OppgaveService")
	ctx, span := tr.Start(ctx, "OpprettVurderDokumentOppgave",
		trace.WithAttributes(
			attribute.Int64("journalpost.id", v.JournalpostID),
			attribute.String("oppgave.tema", v.Tema),
			attribute.String("oppgave.enhet", v.Enhet),
		),
	)
	defer span.End()

	tekst := fmt.Sprintf("Dokument er flyttet fra bidrag: %s", v.Tittel)
	if v.Beskrivelse != "" {
		tekst += "\r\n" + v.Beskrivelse
	}

	now := s.now()
	id, err := s.Gateway.Opprett(ctx, domain.OpprettOppgave{
		Oppgavetype:          domain.OppgavetypeVurderDokument,
		Tema:                 v.Tema,
		JournalpostID:        strconv.FormatInt(v.JournalpostID, 10),
		Personident:          v.Gjelder,
		TildeltEnhetsnr:      v.Enhet,
		OpprettetAvEnhetsnr:  v.OpprettetAvEnhet,
		Beskrivelse:          s.medHeader(ctx, "", tekst, v.OpprettetAvEnhet),
		Prioritet:            domain.PrioritetNormal,
		AktivDato:            now.Format(domain.DatoFormat),
		FristFerdigstillelse: fristFerdigstillelse(now).Format(domain.DatoFormat),
	})
	if err != nil {
		return 0, err
	}
	oppgaver.WithLabelValues("opprett_vurder_dokument").Inc()
	return id, nil
}

// BehandleDokument ensures every case of the entry has an open BEH_DOK task
// that mentions the entry: existing tasks are patched, missing ones created.
func (s *OppgaveService) BehandleDokument(ctx context.Context, jp domain.Journalpost, enhet string) error {
	tr := otel.Tracer("services/OppgaveService")
	ctx, span := tr.Start(ctx, "BehandleDokument",
		trace.WithAttributes(
			attribute.Int64("journalpost.id", jp.JournalpostID),
			attribute.String("oppgave.enhet", enhet),
		),
	)
	defer span.End()

	saker := jp.Saker()
	if len(saker) == 0 {
		return nil
	}

	eksisterende, err := s.Gateway.Sok(ctx, domain.OppgaveSok{
		Tema:           jp.Tema,
		Oppgavetype:    domain.OppgavetypeBehandleDokument,
		Saksreferanser: saker,
		Statuskategori: domain.StatuskategoriAapen,
	})
	if err != nil {
		return err
	}

	tekst := fmt.Sprintf("Nytt dokument (%s): %s", jp.ArkivID(), jp.Tittel)
	dekket := make(map[string]bool, len(saker))
	for _, o := range eksisterende {
		if _, err := s.Gateway.Patch(ctx, domain.PatchOppgave{
			ID:          o.ID,
			Versjon:     o.Versjon,
			Beskrivelse: s.medHeader(ctx, o.Beskrivelse, tekst, enhet),
		}); err != nil {
			return err
		}
		oppgaver.WithLabelValues("oppdater_behandle_dokument").Inc()
		dekket[o.Saksreferanse] = true
	}

	now := s.now()
	for _, sak := range saker {
		if dekket[sak] {
			continue
		}
		if _, err := s.Gateway.Opprett(ctx, domain.OpprettOppgave{
			Oppgavetype:          domain.OppgavetypeBehandleDokument,
			Tema:                 jp.Tema,
			Saksreferanse:        sak,
			JournalpostID:        strconv.FormatInt(jp.JournalpostID, 10),
			Personident:          jp.Gjelder(),
			TildeltEnhetsnr:      enhet,
			OpprettetAvEnhetsnr:  enhet,
			Beskrivelse:          s.medHeader(ctx, "", tekst, enhet),
			Prioritet:            domain.PrioritetNormal,
			AktivDato:            now.Format(domain.DatoFormat),
			FristFerdigstillelse: fristFerdigstillelse(now).Format(domain.DatoFormat),
		}); err != nil {
			return err
		}
		oppgaver.WithLabelValues("opprett_behandle_dokument").Inc()
	}
	return nil
}

// medHeader prepends a dated header and the new text to an existing task
// description: "--- dd.MM.yyyy HH:mm <saksbehandler> ---\r\n<tekst>\r\n\r\n<eksisterende>".
func (s *OppgaveService) medHeader(ctx context.Context, eksisterende, tekst, enhet string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- %s %s ---\r\n%s", s.now().Format(beskrivelseDatoFormat), s.Saksbehandlere.Beskrivelse(ctx, enhet), tekst)
	if eksisterende = strings.TrimSpace(eksisterende); eksisterende != "" {
		b.WriteString("\r\n\r\n")
		b.WriteString(eksisterende)
	}
	return b.String()
}

func (s *OppgaveService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// fristFerdigstillelse is two working days after now.
func fristFerdigstillelse(now time.Time) time.Time {
	frist := now
	for dager := 0; dager < 2; {
		frist = frist.AddDate(0, 0, 1)
		if wd := frist.Weekday(); wd != time.Saturday && wd != time.Sunday {
			dager++
		}
	}
	return frist
}
