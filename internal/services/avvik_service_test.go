package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/navikt/bidrag-dokument-arkiv/internal/domain"
	"github.com/navikt/bidrag-dokument-arkiv/internal/gateway"
)

const (
	testID    = int64(201028011)
	testEnhet = "4833"
	testFnr   = "12345678910"
)

var fastTid = func() time.Time { return time.Date(2021, 2, 3, 10, 30, 0, 0, time.UTC) }

type avvikOppsett struct {
	svc      *AvvikService
	arkiv    *fakeArkiv
	mutation *mockMutation
	proxy    *mockProxy
	oppgave  *mockOppgave
	dist     *mockDistribusjon
	org      *mockOrganisasjon
	pub      *fakePublisher
}

func nyttAvvikOppsett(jps ...domain.Journalpost) *avvikOppsett {
	o := &avvikOppsett{
		arkiv:    nyFakeArkiv(jps...),
		mutation: &mockMutation{},
		proxy:    &mockProxy{},
		oppgave:  &mockOppgave{},
		dist:     &mockDistribusjon{},
		org:      &mockOrganisasjon{},
		pub:      &fakePublisher{},
	}
	jpSvc := &JournalpostService{Arkiv: o.arkiv, VentIntervall: time.Millisecond, VentForsok: 3}
	sb := &SaksbehandlerInfo{Organisasjon: o.org}
	oppgaver := &OppgaveService{Gateway: o.oppgave, Saksbehandlere: sb, Now: fastTid}
	o.svc = &AvvikService{
		Journalposter: jpSvc,
		Mutation:      o.mutation,
		Organisasjon:  o.org,
		Endre: &EndreJournalpostService{
			Journalposter:  jpSvc,
			Mutation:       o.mutation,
			Proxy:          o.proxy,
			Oppgaver:       oppgaver,
			Saksbehandlere: sb,
			Publisher:      o.pub,
		},
		Distribusjon: &DistribuerJournalpostService{Journalposter: jpSvc, Mutation: o.mutation, Distribusjon: o.dist},
		Oppgaver:     oppgaver,
		Publisher:    o.pub,
	}
	return o
}

func inngaendeMottatt() domain.Journalpost {
	return domain.Journalpost{
		JournalpostID:       testID,
		Journalposttype:     domain.TypeInngaende,
		Journalstatus:       domain.StatusMottatt,
		Tema:                domain.TemaBID,
		Tittel:              "Søknad om bidrag",
		JournalforendeEnhet: "4806",
		Bruker:              &domain.Bruker{ID: testFnr, Type: domain.IDTypeFnr},
		Dokumenter:          []domain.Dokument{{DokumentInfoID: "1001"}},
	}
}

func inngaendeJournalfort() domain.Journalpost {
	jp := inngaendeMottatt()
	jp.Journalstatus = domain.StatusJournalfort
	jp.Sak = &domain.Sak{FagsakID: "2100001", Fagsaksystem: domain.FagsaksystemBisys, Sakstype: domain.SakstypeFagsak}
	return jp
}

func utgaendeFerdigstilt() domain.Journalpost {
	return domain.Journalpost{
		JournalpostID:   testID,
		Journalposttype: domain.TypeUtgaende,
		Journalstatus:   domain.StatusFerdigstilt,
		Tema:            domain.TemaBID,
		Tittel:          "Vedtak om bidrag",
		AvsenderMottaker: &domain.AvsenderMottaker{
			ID:     testFnr,
			IDType: domain.IDTypeFnr,
			Navn:   "Kari Nordmann",
		},
		Bruker:     &domain.Bruker{ID: testFnr, Type: domain.IDTypeFnr},
		Sak:        &domain.Sak{FagsakID: "2100001"},
		Dokumenter: []domain.Dokument{{DokumentInfoID: "2001"}},
	}
}

func oppdateringer(m *mockMutation) []domain.OppdaterJournalpost {
	var out []domain.OppdaterJournalpost
	for _, c := range m.Calls {
		if c.Method == "Oppdater" {
			out = append(out, c.Arguments.Get(2).(domain.OppdaterJournalpost))
		}
	}
	return out
}

func TestBehandleAvvik_OverforTilAnnenEnhet(t *testing.T) {
	o := nyttAvvikOppsett(inngaendeMottatt())
	o.mutation.On("Oppdater", mock.Anything, testID, domain.OppdaterJournalpost{JournalforendeEnhet: "4812"}).Return(nil).Once()

	res, err := o.svc.BehandleAvvik(context.Background(), testID, domain.AvvikHendelse{
		AvvikType:    "OVERFOR_TIL_ANNEN_ENHET",
		Enhetsnummer: testEnhet,
		Detaljer:     map[string]string{domain.DetaljEnhetsnummer: "4812"},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.AvvikOverforTilAnnenEnhet, res.AvvikType)
	o.mutation.AssertExpectations(t)
	assert.Equal(t, []publisering{{id: testID, enhet: testEnhet}}, o.pub.kall)
}

func TestBehandleAvvik_AvvisesForGatewayKall(t *testing.T) {
	nks := inngaendeMottatt()
	nks.Kanal = domain.KanalNavNoChat

	cases := []struct {
		name string
		jp   domain.Journalpost
		id   int64
		h    domain.AvvikHendelse
		want error
	}{
		{
			name: "unknown type",
			jp:   inngaendeMottatt(),
			id:   testID,
			h:    domain.AvvikHendelse{AvvikType: "UKJENT_AVVIK"},
			want: ErrAvvikIkkeStottet,
		},
		{
			name: "known but unimplemented type",
			jp:   inngaendeMottatt(),
			id:   testID,
			h:    domain.AvvikHendelse{AvvikType: string(domain.AvvikKopierFraAnnenFagomrade)},
			want: ErrAvvikIkkeStottet,
		},
		{
			name: "missing detail",
			jp:   inngaendeMottatt(),
			id:   testID,
			h:    domain.AvvikHendelse{AvvikType: string(domain.AvvikOverforTilAnnenEnhet)},
			want: ErrManglerDetalj,
		},
		{
			name: "entry not found",
			jp:   inngaendeMottatt(),
			id:   404,
			h:    domain.AvvikHendelse{AvvikType: string(domain.AvvikFeilforeSak)},
			want: ErrJournalpostIkkeFunnet,
		},
		{
			name: "not legal in state",
			jp:   inngaendeMottatt(),
			id:   testID,
			h: domain.AvvikHendelse{
				AvvikType: string(domain.AvvikRegistrerRetur),
				Detaljer:  map[string]string{domain.DetaljReturDato: "2021-02-03"},
			},
			want: ErrUgyldigAvvik,
		},
		{
			name: "created by contact centre",
			jp:   nks,
			id:   testID,
			h:    domain.AvvikHendelse{AvvikType: string(domain.AvvikTrekkJournalpost)},
			want: ErrUgyldigAvvik,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := nyttAvvikOppsett(tc.jp)

			res, err := o.svc.BehandleAvvik(context.Background(), tc.id, tc.h)

			assert.Nil(t, res)
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, o.mutation.Calls)
			assert.Empty(t, o.pub.kall)
		})
	}
}

func TestBehandleAvvik_GatewayFeilPubliseresIkke(t *testing.T) {
	o := nyttAvvikOppsett(inngaendeMottatt())
	upstream := &gateway.UpstreamError{System: "dokarkiv", Status: 400, Reason: "ugyldig enhet"}
	o.mutation.On("Oppdater", mock.Anything, testID, mock.Anything).Return(upstream).Once()

	_, err := o.svc.BehandleAvvik(context.Background(), testID, domain.AvvikHendelse{
		AvvikType:    string(domain.AvvikOverforTilAnnenEnhet),
		Enhetsnummer: testEnhet,
		Detaljer:     map[string]string{domain.DetaljEnhetsnummer: "9999"},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, gateway.ErrBadRequest)
	var ue *gateway.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "ugyldig enhet", ue.Reason)
	assert.Empty(t, o.pub.kall)
}

func TestBehandleAvvik_PubliseringsfeilReturneres(t *testing.T) {
	o := nyttAvvikOppsett(inngaendeJournalfort())
	o.pub.err = errors.New("kafka nede")
	o.mutation.On("FeilregistrerSakstilknytning", mock.Anything, testID).Return(nil).Once()

	_, err := o.svc.BehandleAvvik(context.Background(), testID, domain.AvvikHendelse{
		AvvikType: string(domain.AvvikFeilforeSak), Enhetsnummer: testEnhet,
	})

	assert.EqualError(t, err, "kafka nede")
	assert.Len(t, o.pub.kall, 1)
}

func TestBehandleAvvik_FeilforeSak(t *testing.T) {
	o := nyttAvvikOppsett(inngaendeJournalfort())
	o.mutation.On("FeilregistrerSakstilknytning", mock.Anything, testID).Return(nil).Once()

	res, err := o.svc.BehandleAvvik(context.Background(), testID, domain.AvvikHendelse{
		AvvikType: string(domain.AvvikFeilforeSak), Enhetsnummer: testEnhet,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.AvvikFeilforeSak, res.AvvikType)
	o.mutation.AssertExpectations(t)
	assert.Len(t, o.pub.kall, 1)
}

func TestBehandleAvvik_TrekkJournalpost(t *testing.T) {
	o := nyttAvvikOppsett(inngaendeMottatt())
	o.mutation.On("Oppdater", mock.Anything, testID, mock.Anything).Return(nil).Once()
	o.mutation.On("Ferdigstill", mock.Anything, testID, mock.Anything).Return(nil).Once()
	o.mutation.On("FeilregistrerSakstilknytning", mock.Anything, testID).Return(nil).Once()

	_, err := o.svc.BehandleAvvik(context.Background(), testID, domain.AvvikHendelse{
		AvvikType:    string(domain.AvvikTrekkJournalpost),
		Enhetsnummer: testEnhet,
		Beskrivelse:  "Sendt til feil mottaker",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"Oppdater", "Ferdigstill", "FeilregistrerSakstilknytning"}, metoder(&o.mutation.Mock))
	req := oppdateringer(o.mutation)[0]
	require.NotNil(t, req.Tittel)
	assert.Equal(t, "Søknad om bidrag (Sendt til feil mottaker)", *req.Tittel)
	assert.Equal(t, domain.SakstypeGenerellSak, req.Sak.Sakstype)
	ferdig := o.mutation.Calls[1].Arguments.Get(2).(domain.FerdigstillJournalpost)
	assert.Equal(t, "4806", ferdig.JournalforendeEnhet)
	assert.Len(t, o.pub.kall, 1)
}

func TestBehandleAvvik_TrekkJournalpostUtenGjelder(t *testing.T) {
	jp := inngaendeMottatt()
	jp.Bruker = nil
	o := nyttAvvikOppsett(jp)

	_, err := o.svc.BehandleAvvik(context.Background(), testID, domain.AvvikHendelse{
		AvvikType: string(domain.AvvikTrekkJournalpost), Enhetsnummer: testEnhet,
	})

	assert.ErrorIs(t, err, ErrManglerDetalj)
	assert.Empty(t, o.mutation.Calls)
	assert.Empty(t, o.pub.kall)
}

func TestBehandleAvvik_EndreFagomradeUnderBehandling(t *testing.T) {
	o := nyttAvvikOppsett(inngaendeMottatt())
	o.mutation.On("Oppdater", mock.Anything, testID, domain.OppdaterJournalpost{Tema: domain.TemaFAR}).Return(nil).Once()

	_, err := o.svc.BehandleAvvik(context.Background(), testID, domain.AvvikHendelse{
		AvvikType:    string(domain.AvvikEndreFagomrade),
		Enhetsnummer: testEnhet,
		Detaljer:     map[string]string{domain.DetaljFagomrade: "far"},
	})

	require.NoError(t, err)
	o.mutation.AssertExpectations(t)
	assert.Len(t, o.pub.kall, 1)
}

func TestBehandleAvvik_EndreFagomradeSammeTemaEndrerIngenting(t *testing.T) {
	o := nyttAvvikOppsett(inngaendeJournalfort())

	_, err := o.svc.BehandleAvvik(context.Background(), testID, domain.AvvikHendelse{
		AvvikType:    string(domain.AvvikEndreFagomrade),
		Enhetsnummer: testEnhet,
		Detaljer:     map[string]string{domain.DetaljFagomrade: domain.TemaBID},
	})

	require.NoError(t, err)
	assert.Empty(t, o.mutation.Calls)
	assert.Len(t, o.pub.kall, 1)
}

func TestBehandleAvvik_EndreFagomradeJournalfortUtenforBidrag(t *testing.T) {
	o := nyttAvvikOppsett(inngaendeJournalfort())
	o.org.On("HentEnhetForPerson", mock.Anything, testFnr, "AAP").Return("4402", nil).Once()
	o.proxy.On("KnyttTilSak", mock.Anything, testID, mock.MatchedBy(func(k domain.KnyttTilSak) bool {
		return k.Sakstype == domain.SakstypeGenerellSak && k.Tema == "AAP" && k.JournalforendeEnhet == "4402"
	})).Return(int64(301), nil).Once()
	o.oppgave.On("Opprett", mock.Anything, mock.Anything).Return(int64(9001), nil).Once()
	o.mutation.On("Oppdater", mock.Anything, testID, mock.Anything).Return(nil).Once()
	o.mutation.On("FeilregistrerSakstilknytning", mock.Anything, testID).Return(nil).Once()

	_, err := o.svc.BehandleAvvik(context.Background(), testID, domain.AvvikHendelse{
		AvvikType:    string(domain.AvvikEndreFagomrade),
		Enhetsnummer: testEnhet,
		Beskrivelse:  "Gjelder arbeidsavklaring",
		Detaljer:     map[string]string{domain.DetaljFagomrade: "AAP"},
	})

	require.NoError(t, err)
	o.org.AssertExpectations(t)
	o.proxy.AssertExpectations(t)
	assert.Equal(t, []string{"Oppdater", "FeilregistrerSakstilknytning"}, metoder(&o.mutation.Mock))

	oppg := o.oppgave.Calls[0].Arguments.Get(1).(domain.OpprettOppgave)
	assert.Equal(t, domain.OppgavetypeVurderDokument, oppg.Oppgavetype)
	assert.Equal(t, "301", oppg.JournalpostID)
	assert.Equal(t, "4402", oppg.TildeltEnhetsnr)
	assert.Equal(t, testEnhet, oppg.OpprettetAvEnhetsnr)
	assert.Contains(t, oppg.Beskrivelse, "Dokument er flyttet fra bidrag: Søknad om bidrag")
	assert.Equal(t, "2021-02-05", oppg.FristFerdigstillelse)

	endret, ok := oppdateringer(o.mutation)[0].Tilleggsopplysninger.Hent(domain.NokkelAvvikEndretTema)
	assert.True(t, ok)
	assert.Equal(t, "AAP", endret)
	assert.Equal(t, []publisering{{id: testID, enhet: testEnhet}}, o.pub.kall)
}

func TestBehandleAvvik_EndreFagomradeJournalfortGjenbrukerFeilregistrertKopi(t *testing.T) {
	jp := inngaendeJournalfort()
	kopi := jp.Clone()
	kopi.JournalpostID = 302
	kopi.Tema = domain.TemaFAR
	kopi.Journalstatus = domain.StatusFeilregistrert

	o := nyttAvvikOppsett(jp)
	o.arkiv.forSak["2100001"] = []domain.Journalpost{kopi}
	o.mutation.On("OpphevFeilregistrerSakstilknytning", mock.Anything, int64(302)).Return(nil).Once()
	o.mutation.On("Oppdater", mock.Anything, int64(302), mock.Anything).Return(nil).Once()
	o.mutation.On("Oppdater", mock.Anything, testID, mock.Anything).Return(nil).Once()
	o.mutation.On("FeilregistrerSakstilknytning", mock.Anything, testID).Return(nil).Once()

	_, err := o.svc.BehandleAvvik(context.Background(), testID, domain.AvvikHendelse{
		AvvikType:    string(domain.AvvikEndreFagomrade),
		Enhetsnummer: testEnhet,
		Detaljer:     map[string]string{domain.DetaljFagomrade: domain.TemaFAR},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"OpphevFeilregistrerSakstilknytning", "Oppdater", "Oppdater", "FeilregistrerSakstilknytning"}, metoder(&o.mutation.Mock))
	assert.Empty(t, o.proxy.Calls)

	gjenopplivet := o.mutation.Calls[1]
	assert.Equal(t, int64(302), gjenopplivet.Arguments.Get(1))
	req := gjenopplivet.Arguments.Get(2).(domain.OppdaterJournalpost)
	assert.Equal(t, domain.TemaFAR, req.Tema)
	endret, ok := req.Tilleggsopplysninger.Hent(domain.NokkelAvvikEndretTema)
	assert.True(t, ok)
	assert.Equal(t, domain.TemaFAR, endret)
	assert.Equal(t, testID, o.mutation.Calls[2].Arguments.Get(1))
}

func TestBehandleAvvik_EndreFagomradeJournalfortUtenSak(t *testing.T) {
	jp := inngaendeJournalfort()
	jp.Sak = nil
	o := nyttAvvikOppsett(jp)

	_, err := o.svc.BehandleAvvik(context.Background(), testID, domain.AvvikHendelse{
		AvvikType:    string(domain.AvvikEndreFagomrade),
		Enhetsnummer: testEnhet,
		Detaljer:     map[string]string{domain.DetaljFagomrade: domain.TemaFAR},
	})

	assert.ErrorIs(t, err, ErrManglerDetalj)
	assert.Empty(t, o.mutation.Calls)
	assert.Empty(t, o.proxy.Calls)
	assert.Empty(t, o.pub.kall)
}

func TestBehandleAvvik_EndreFagomradeJournalfortTilknytterNySak(t *testing.T) {
	o := nyttAvvikOppsett(inngaendeJournalfort())
	o.proxy.On("KnyttTilSak", mock.Anything, testID, domain.KnyttTilSak{
		Sakstype:            domain.SakstypeFagsak,
		FagsakID:            "2100001",
		Fagsaksystem:        domain.FagsaksystemBisys,
		Tema:                domain.TemaFAR,
		Bruker:              &domain.Bruker{ID: testFnr, Type: domain.IDTypeFnr},
		JournalforendeEnhet: testEnhet,
	}).Return(int64(303), nil).Once()
	o.mutation.On("Oppdater", mock.Anything, testID, mock.Anything).Return(nil).Once()
	o.mutation.On("FeilregistrerSakstilknytning", mock.Anything, testID).Return(nil).Once()

	_, err := o.svc.BehandleAvvik(context.Background(), testID, domain.AvvikHendelse{
		AvvikType:    string(domain.AvvikEndreFagomrade),
		Enhetsnummer: testEnhet,
		Detaljer:     map[string]string{domain.DetaljFagomrade: domain.TemaFAR},
	})

	require.NoError(t, err)
	o.proxy.AssertExpectations(t)
	o.mutation.AssertExpectations(t)
}

func TestBehandleAvvik_RegistrerRetur(t *testing.T) {
	o := nyttAvvikOppsett(utgaendeFerdigstilt())
	o.mutation.On("Oppdater", mock.Anything, testID, mock.Anything).Return(nil).Once()

	_, err := o.svc.BehandleAvvik(context.Background(), testID, domain.AvvikHendelse{
		AvvikType:    string(domain.AvvikRegistrerRetur),
		Enhetsnummer: testEnhet,
		Beskrivelse:  "Ukjent adresse",
		Detaljer:     map[string]string{domain.DetaljReturDato: "2021-02-03"},
	})

	require.NoError(t, err)
	req := oppdateringer(o.mutation)[0]
	assert.Equal(t, "2021-02-03", req.DatoRetur)
	assert.Equal(t, domain.Tilleggsopplysninger{{Nokkel: "retur0_2021-02-03", Verdi: "Ukjent adresse"}}, req.Tilleggsopplysninger)
	assert.Len(t, o.pub.kall, 1)
}

func TestBehandleAvvik_RegistrerReturSammeDato(t *testing.T) {
	jp := utgaendeFerdigstilt()
	jp.Tilleggsopplysninger = domain.Tilleggsopplysninger{{Nokkel: "Lretur0_2021-02-03", Verdi: "Første retur"}}
	o := nyttAvvikOppsett(jp)

	_, err := o.svc.BehandleAvvik(context.Background(), testID, domain.AvvikHendelse{
		AvvikType: string(domain.AvvikRegistrerRetur),
		Detaljer:  map[string]string{domain.DetaljReturDato: "2021-02-03"},
	})

	assert.ErrorIs(t, err, ErrUgyldigAvvik)
	assert.ErrorIs(t, err, domain.ErrReturDatoFinnes)
	assert.Empty(t, o.mutation.Calls)
	assert.Empty(t, o.pub.kall)
}

func nyDistribusjonHendelse() domain.AvvikHendelse {
	return domain.AvvikHendelse{
		AvvikType:    string(domain.AvvikBestillNyDistribusjon),
		Enhetsnummer: testEnhet,
		Detaljer: map[string]string{
			domain.DetaljAdresselinje1: "Storgata 1",
			domain.DetaljPostnummer:    "0155",
			domain.DetaljPoststed:      "Oslo",
			domain.DetaljLand:          "no",
		},
	}
}

func TestBehandleAvvik_BestillNyDistribusjonLaaserReturlogg(t *testing.T) {
	jp := utgaendeFerdigstilt()
	jp.Journalstatus = domain.StatusEkspedert
	jp.Tilleggsopplysninger = domain.Tilleggsopplysninger{{Nokkel: "retur0_2021-02-03", Verdi: "Ukjent adresse"}}
	o := nyttAvvikOppsett(jp)
	o.mutation.On("Oppdater", mock.Anything, testID, mock.Anything).Return(nil).Twice()
	o.dist.On("Distribuer", mock.Anything, mock.MatchedBy(func(b domain.DistribuerBestilling) bool {
		return b.JournalpostID == "JOARK-201028011" && b.Adresse != nil && b.Adresse.Postnummer == "0155" && b.Adresse.Land == "NO"
	})).Return(&domain.DistribuerResultat{BestillingsID: "b-1"}, nil).Once()

	_, err := o.svc.BehandleAvvik(context.Background(), testID, nyDistribusjonHendelse())

	require.NoError(t, err)
	o.dist.AssertExpectations(t)
	reqs := oppdateringer(o.mutation)
	require.Len(t, reqs, 2)
	assert.Equal(t, "Lretur0_2021-02-03", reqs[0].Tilleggsopplysninger[0].Nokkel)
	assert.True(t, reqs[1].Tilleggsopplysninger.DistribusjonBestilt())
	assert.Equal(t, "Lretur0_2021-02-03", reqs[1].Tilleggsopplysninger[0].Nokkel)
	assert.Len(t, o.pub.kall, 1)
}

func TestBehandleAvvik_BestillNyDistribusjonAvvist(t *testing.T) {
	o := nyttAvvikOppsett(utgaendeFerdigstilt())
	o.dist.On("Distribuer", mock.Anything, mock.Anything).Return(nil, nil).Once()

	_, err := o.svc.BehandleAvvik(context.Background(), testID, nyDistribusjonHendelse())

	assert.ErrorIs(t, err, ErrDistribusjonUtilgjengelig)
	assert.Empty(t, o.mutation.Calls)
	assert.Empty(t, o.pub.kall)
}

func TestBehandleAvvik_BestillNyDistribusjonUtenAdresse(t *testing.T) {
	o := nyttAvvikOppsett(utgaendeFerdigstilt())

	_, err := o.svc.BehandleAvvik(context.Background(), testID, domain.AvvikHendelse{
		AvvikType: string(domain.AvvikBestillNyDistribusjon),
		Detaljer:  map[string]string{domain.DetaljPoststed: "Oslo"},
	})

	assert.ErrorIs(t, err, ErrUgyldigAvvik)
	assert.ErrorIs(t, err, ErrManglerDetalj)
	assert.Empty(t, o.dist.Calls)
}

func TestBehandleAvvik_BestillNyDistribusjonUtenMottaker(t *testing.T) {
	jp := utgaendeFerdigstilt()
	jp.AvsenderMottaker.ID = ""
	o := nyttAvvikOppsett(jp)

	_, err := o.svc.BehandleAvvik(context.Background(), testID, nyDistribusjonHendelse())

	assert.ErrorIs(t, err, ErrUgyldigAvvik)
	assert.ErrorIs(t, err, ErrManglerMottaker)
	assert.Empty(t, o.dist.Calls)
}

func TestBehandleAvvik_ManglerAdresse(t *testing.T) {
	jp := utgaendeFerdigstilt()
	jp.Journalstatus = domain.StatusEkspedert
	jp.Tilleggsopplysninger = domain.Tilleggsopplysninger{{Nokkel: domain.NokkelDistribusjonBestilt, Verdi: "true"}}
	annen := jp.Clone()
	annen.JournalpostID = 202
	annen.Sak = &domain.Sak{FagsakID: "2100002"}

	o := nyttAvvikOppsett(jp, annen)
	o.arkiv.tilknyttede[testID] = []domain.TilknyttetJournalpost{
		{JournalpostID: testID, Journalstatus: domain.StatusEkspedert, Saksnummer: "2100001"},
		{JournalpostID: 202, Journalstatus: domain.StatusFerdigstilt, Saksnummer: "2100002"},
		{JournalpostID: 203, Journalstatus: domain.StatusFeilregistrert, Saksnummer: "2100003"},
	}
	ingen := domain.Distribusjonsinfo{Utsendingskanal: domain.KanalIngenDistribusjon, SettStatusEkspedert: true}
	o.mutation.On("OppdaterDistribusjonsinfo", mock.Anything, testID, ingen).Return(nil).Once()
	o.mutation.On("OppdaterDistribusjonsinfo", mock.Anything, int64(202), ingen).Return(nil).Once()
	o.mutation.On("Oppdater", mock.Anything, mock.Anything, mock.Anything).Return(nil).Twice()

	_, err := o.svc.BehandleAvvik(context.Background(), testID, domain.AvvikHendelse{
		AvvikType: string(domain.AvvikManglerAdresse), Enhetsnummer: testEnhet,
	})

	require.NoError(t, err)
	o.mutation.AssertExpectations(t)
	assert.Equal(t, []string{"OppdaterDistribusjonsinfo", "Oppdater", "OppdaterDistribusjonsinfo", "Oppdater"}, metoder(&o.mutation.Mock))
	for _, req := range oppdateringer(o.mutation) {
		assert.False(t, req.Tilleggsopplysninger.DistribusjonBestilt())
	}
	assert.Len(t, o.pub.kall, 1)
}

func TestBehandleAvvik_SlettJournalpost(t *testing.T) {
	jp := utgaendeFerdigstilt()
	jp.Journalstatus = domain.StatusUnderArbeid
	o := nyttAvvikOppsett(jp)
	o.mutation.On("SettStatusUtgaar", mock.Anything, testID).Return(nil).Once()

	_, err := o.svc.BehandleAvvik(context.Background(), testID, domain.AvvikHendelse{
		AvvikType: string(domain.AvvikSlettJournalpost), Enhetsnummer: testEnhet,
	})

	require.NoError(t, err)
	o.mutation.AssertExpectations(t)
}

func TestBehandleAvvik_MarkeringLoggesBare(t *testing.T) {
	o := nyttAvvikOppsett(inngaendeMottatt())

	res, err := o.svc.BehandleAvvik(context.Background(), testID, domain.AvvikHendelse{
		AvvikType:    string(domain.AvvikSendTilFagomrade),
		Enhetsnummer: testEnhet,
		Beskrivelse:  "Sendt videre",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.AvvikSendTilFagomrade, res.AvvikType)
	assert.Empty(t, o.mutation.Calls)
	assert.Len(t, o.pub.kall, 1)
}

func TestHentAvvik(t *testing.T) {
	nks := inngaendeMottatt()
	nks.JournalpostID = 55
	nks.OpprettetAvNavn = "NKS"
	o := nyttAvvikOppsett(inngaendeMottatt(), nks)

	got, err := o.svc.HentAvvik(context.Background(), testID)
	require.NoError(t, err)
	assert.Equal(t, []domain.AvvikType{
		domain.AvvikOverforTilAnnenEnhet, domain.AvvikTrekkJournalpost, domain.AvvikEndreFagomrade,
	}, got)

	got, err = o.svc.HentAvvik(context.Background(), 55)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = o.svc.HentAvvik(context.Background(), 1)
	assert.ErrorIs(t, err, ErrJournalpostIkkeFunnet)
}
