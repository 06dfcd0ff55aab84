package services

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/navikt/bidrag-dokument-arkiv/internal/domain"
	"github.com/navikt/bidrag-dokument-arkiv/internal/gateway"
)

// ----- Fake archive (query side) -----

type fakeArkiv struct {
	mu sync.Mutex

	journalposter map[int64]domain.Journalpost
	forSak        map[string][]domain.Journalpost
	tilknyttede   map[int64][]domain.TilknyttetJournalpost

	// hentFoer replaces an entry after n reads, simulating a write that
	// becomes visible late.
	hentFoer   map[int64]int
	senere     map[int64]domain.Journalpost
	hentAntall map[int64]int

	hentErr error
}

func nyFakeArkiv(jps ...domain.Journalpost) *fakeArkiv {
	a := &fakeArkiv{
		journalposter: map[int64]domain.Journalpost{},
		forSak:        map[string][]domain.Journalpost{},
		tilknyttede:   map[int64][]domain.TilknyttetJournalpost{},
		hentFoer:      map[int64]int{},
		senere:        map[int64]domain.Journalpost{},
		hentAntall:    map[int64]int{},
	}
	for _, jp := range jps {
		a.journalposter[jp.JournalpostID] = jp
	}
	return a
}

func (a *fakeArkiv) HentJournalpost(ctx context.Context, id int64) (*domain.Journalpost, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.hentErr != nil {
		return nil, a.hentErr
	}
	a.hentAntall[id]++
	if n, ok := a.hentFoer[id]; ok && a.hentAntall[id] > n {
		jp := a.senere[id]
		return &jp, nil
	}
	jp, ok := a.journalposter[id]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	c := jp.Clone()
	return &c, nil
}

func (a *fakeArkiv) HentJournalposterForSak(ctx context.Context, saksnummer string, tema []string) ([]domain.Journalpost, error) {
	return a.forSak[saksnummer], nil
}

func (a *fakeArkiv) HentTilknyttedeJournalposter(ctx context.Context, j domain.Journalpost) ([]domain.TilknyttetJournalpost, error) {
	return a.tilknyttede[j.JournalpostID], nil
}

// ----- testify mocks (mutation side) -----

type mockMutation struct{ mock.Mock }

var _ gateway.ArkivMutation = (*mockMutation)(nil)

func (m *mockMutation) Oppdater(ctx context.Context, id int64, req domain.OppdaterJournalpost) error {
	return m.Called(ctx, id, req).Error(0)
}

func (m *mockMutation) Ferdigstill(ctx context.Context, id int64, req domain.FerdigstillJournalpost) error {
	return m.Called(ctx, id, req).Error(0)
}

func (m *mockMutation) FeilregistrerSakstilknytning(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockMutation) OpphevFeilregistrerSakstilknytning(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockMutation) SettStatusUtgaar(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockMutation) OppdaterDistribusjonsinfo(ctx context.Context, id int64, req domain.Distribusjonsinfo) error {
	return m.Called(ctx, id, req).Error(0)
}

// metoder lists the called methods in order.
func metoder(m *mock.Mock) []string {
	out := make([]string, 0, len(m.Calls))
	for _, c := range m.Calls {
		out = append(out, c.Method)
	}
	return out
}

type mockProxy struct{ mock.Mock }

var _ gateway.ArkivProxy = (*mockProxy)(nil)

func (m *mockProxy) KnyttTilSak(ctx context.Context, id int64, req domain.KnyttTilSak) (int64, error) {
	args := m.Called(ctx, id, req)
	return args.Get(0).(int64), args.Error(1)
}

type mockOppgave struct{ mock.Mock }

var _ gateway.OppgaveGateway = (*mockOppgave)(nil)

func (m *mockOppgave) Sok(ctx context.Context, sok domain.OppgaveSok) ([]domain.Oppgave, error) {
	args := m.Called(ctx, sok)
	out, _ := args.Get(0).([]domain.Oppgave)
	return out, args.Error(1)
}

func (m *mockOppgave) Opprett(ctx context.Context, req domain.OpprettOppgave) (int64, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOppgave) Patch(ctx context.Context, req domain.PatchOppgave) (*domain.Oppgave, error) {
	args := m.Called(ctx, req)
	out, _ := args.Get(0).(*domain.Oppgave)
	return out, args.Error(1)
}

type mockDistribusjon struct{ mock.Mock }

var _ gateway.DistribusjonGateway = (*mockDistribusjon)(nil)

func (m *mockDistribusjon) Distribuer(ctx context.Context, req domain.DistribuerBestilling) (*domain.DistribuerResultat, error) {
	args := m.Called(ctx, req)
	out, _ := args.Get(0).(*domain.DistribuerResultat)
	return out, args.Error(1)
}

type mockOrganisasjon struct{ mock.Mock }

var _ gateway.OrganisasjonGateway = (*mockOrganisasjon)(nil)

func (m *mockOrganisasjon) HentEnhetForPerson(ctx context.Context, ident, tema string) (string, error) {
	args := m.Called(ctx, ident, tema)
	return args.String(0), args.Error(1)
}

func (m *mockOrganisasjon) HentSaksbehandler(ctx context.Context, ident string) (*domain.Saksbehandler, error) {
	args := m.Called(ctx, ident)
	out, _ := args.Get(0).(*domain.Saksbehandler)
	return out, args.Error(1)
}

type mockPerson struct{ mock.Mock }

var _ gateway.PersonGateway = (*mockPerson)(nil)

func (m *mockPerson) HentPerson(ctx context.Context, ident string) (*domain.Person, error) {
	args := m.Called(ctx, ident)
	out, _ := args.Get(0).(*domain.Person)
	return out, args.Error(1)
}

func (m *mockPerson) HentAdresse(ctx context.Context, ident string) (*domain.Adresse, error) {
	args := m.Called(ctx, ident)
	out, _ := args.Get(0).(*domain.Adresse)
	return out, args.Error(1)
}

// ----- Fakes for the publish side -----

type publisering struct {
	id    int64
	enhet string
}

type fakePublisher struct {
	kall []publisering
	err  error
}

func (p *fakePublisher) PubliserEndring(ctx context.Context, id int64, enhet string) error {
	p.kall = append(p.kall, publisering{id: id, enhet: enhet})
	return p.err
}

type sendtMelding struct {
	key   string
	value []byte
}

type fakeProducer struct {
	mu    sync.Mutex
	sendt []sendtMelding
	err   error

	// feilFor fails this many sends before succeeding.
	feilFor int
	forsok  int
}

func (p *fakeProducer) Send(ctx context.Context, key string, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.forsok++
	if p.forsok <= p.feilFor {
		return p.err
	}
	p.sendt = append(p.sendt, sendtMelding{key: key, value: value})
	return nil
}
