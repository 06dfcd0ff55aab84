// Package gateway declares the capabilities this service needs from the
// systems around it: the archive (query, mutation and case-link proxy), the
// task system, the distribution service and the person and organisation
// registries.
//
// Services depend on these interfaces only. Concrete HTTP clients live in
// internal/clients; tests use fakes or testify mocks.
package gateway

import (
	"context"

	"github.com/navikt/bidrag-dokument-arkiv/internal/domain"
)

// ArkivQuery reads journal entries from the archive.
type ArkivQuery interface {
	// HentJournalpost returns ErrNotFound when the entry does not exist.
	HentJournalpost(ctx context.Context, id int64) (*domain.Journalpost, error)
	// HentJournalposterForSak lists the entries linked to a case, filtered by tema.
	HentJournalposterForSak(ctx context.Context, saksnummer string, tema []string) ([]domain.Journalpost, error)
	// HentTilknyttedeJournalposter lists entries sharing documents with j.
	HentTilknyttedeJournalposter(ctx context.Context, j domain.Journalpost) ([]domain.TilknyttetJournalpost, error)
}

// ArkivMutation changes journal entries in the archive.
type ArkivMutation interface {
	Oppdater(ctx context.Context, id int64, req domain.OppdaterJournalpost) error
	Ferdigstill(ctx context.Context, id int64, req domain.FerdigstillJournalpost) error
	FeilregistrerSakstilknytning(ctx context.Context, id int64) error
	OpphevFeilregistrerSakstilknytning(ctx context.Context, id int64) error
	SettStatusUtgaar(ctx context.Context, id int64) error
	OppdaterDistribusjonsinfo(ctx context.Context, id int64, req domain.Distribusjonsinfo) error
}

// ArkivProxy links a copy of an entry to another case and returns the id of
// the copy.
type ArkivProxy interface {
	KnyttTilSak(ctx context.Context, id int64, req domain.KnyttTilSak) (int64, error)
}

// OppgaveGateway searches, creates and patches tasks.
type OppgaveGateway interface {
	Sok(ctx context.Context, sok domain.OppgaveSok) ([]domain.Oppgave, error)
	Opprett(ctx context.Context, req domain.OpprettOppgave) (int64, error)
	Patch(ctx context.Context, req domain.PatchOppgave) (*domain.Oppgave, error)
}

// DistribusjonGateway orders distribution of an outbound entry. A nil result
// with a nil error means the distribution service refused the order.
type DistribusjonGateway interface {
	Distribuer(ctx context.Context, req domain.DistribuerBestilling) (*domain.DistribuerResultat, error)
}

// PersonGateway looks up persons in the identity registry.
type PersonGateway interface {
	HentPerson(ctx context.Context, ident string) (*domain.Person, error)
	// HentAdresse returns the person's registered postal address.
	// ErrNotFound means the person has none.
	HentAdresse(ctx context.Context, ident string) (*domain.Adresse, error)
}

// OrganisasjonGateway resolves routing units and case handler names.
type OrganisasjonGateway interface {
	HentEnhetForPerson(ctx context.Context, ident, tema string) (string, error)
	HentSaksbehandler(ctx context.Context, ident string) (*domain.Saksbehandler, error)
}
