package clients

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/navikt/bidrag-dokument-arkiv/internal/domain"
	"github.com/navikt/bidrag-dokument-arkiv/internal/gateway"
)

const journalpostFelter = `
    journalpostId
    journalposttype
    journalstatus
    tema
    tittel
    kanal
    journalfoerendeEnhet
    opprettetAvNavn
    journalfortAvNavn
    avsenderMottaker { id type navn }
    bruker { id type }
    sak { fagsakId fagsaksystem sakstype tema }
    dokumenter { dokumentInfoId tittel brevkode }
    tilleggsopplysninger { nokkel verdi }
    relevanteDatoer { dato datotype }`

const (
	journalpostQuery = `query journalpost($journalpostId: String!) {
  journalpost(journalpostId: $journalpostId) {` + journalpostFelter + `
  }
}`

	sakJournalQuery = `query dokumentoversiktFagsak($fagsakId: String!, $tema: [Tema]) {
  dokumentoversiktFagsak(fagsak: {fagsakId: $fagsakId, fagsaksystem: "BISYS"}, tema: $tema, foerste: 500) {
    journalposter {` + journalpostFelter + `
    }
  }
}`

	tilknyttedeQuery = `query tilknyttedeJournalposter($dokumentInfoId: String!) {
  tilknyttedeJournalposter(dokumentInfoId: $dokumentInfoId, tilknytning: FORSENDELSE) {
    journalpostId
    journalstatus
    sak { fagsakId }
  }
}`
)

// SafClient reads journal entries through the archive's GraphQL API.
type SafClient struct {
	rest restClient
}

var _ gateway.ArkivQuery = (*SafClient)(nil)

// NewSafClient returns a client for the GraphQL endpoint at url.
func NewSafClient(url string, timeout time.Duration) *SafClient {
	return &SafClient{rest: newRestClient("saf", url, timeout)}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

type graphqlResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []graphqlError `json:"errors"`
}

// HentJournalpost implements gateway.ArkivQuery.
func (c *SafClient) HentJournalpost(ctx context.Context, id int64) (*domain.Journalpost, error) {
	var resp graphqlResponse[struct {
		Journalpost *safJournalpost `json:"journalpost"`
	}]
	vars := map[string]any{"journalpostId": strconv.FormatInt(id, 10)}
	if err := c.query(ctx, journalpostQuery, vars, &resp); err != nil {
		return nil, err
	}
	if err := c.feil(resp.Errors); err != nil {
		return nil, err
	}
	if resp.Data.Journalpost == nil {
		return nil, gateway.ErrNotFound
	}
	jp := resp.Data.Journalpost.tilDomain()
	return &jp, nil
}

// HentJournalposterForSak implements gateway.ArkivQuery.
func (c *SafClient) HentJournalposterForSak(ctx context.Context, saksnummer string, tema []string) ([]domain.Journalpost, error) {
	var resp graphqlResponse[struct {
		Oversikt struct {
			Journalposter []safJournalpost `json:"journalposter"`
		} `json:"dokumentoversiktFagsak"`
	}]
	vars := map[string]any{"fagsakId": saksnummer, "tema": tema}
	if err := c.query(ctx, sakJournalQuery, vars, &resp); err != nil {
		return nil, err
	}
	if err := c.feil(resp.Errors); err != nil {
		return nil, err
	}
	out := make([]domain.Journalpost, 0, len(resp.Data.Oversikt.Journalposter))
	for _, j := range resp.Data.Oversikt.Journalposter {
		out = append(out, j.tilDomain())
	}
	return out, nil
}

// HentTilknyttedeJournalposter implements gateway.ArkivQuery. Entries are
// related through their first document.
func (c *SafClient) HentTilknyttedeJournalposter(ctx context.Context, j domain.Journalpost) ([]domain.TilknyttetJournalpost, error) {
	if len(j.Dokumenter) == 0 {
		return nil, nil
	}
	var resp graphqlResponse[struct {
		Tilknyttede []struct {
			JournalpostID string `json:"journalpostId"`
			Journalstatus string `json:"journalstatus"`
			Sak           *struct {
				FagsakID string `json:"fagsakId"`
			} `json:"sak"`
		} `json:"tilknyttedeJournalposter"`
	}]
	vars := map[string]any{"dokumentInfoId": j.Dokumenter[0].DokumentInfoID}
	if err := c.query(ctx, tilknyttedeQuery, vars, &resp); err != nil {
		return nil, err
	}
	if err := c.feil(resp.Errors); err != nil {
		return nil, err
	}
	out := make([]domain.TilknyttetJournalpost, 0, len(resp.Data.Tilknyttede))
	for _, t := range resp.Data.Tilknyttede {
		id, err := strconv.ParseInt(t.JournalpostID, 10, 64)
		if err != nil {
			continue
		}
		tj := domain.TilknyttetJournalpost{JournalpostID: id, Journalstatus: domain.Journalstatus(t.Journalstatus)}
		if t.Sak != nil {
			tj.Saksnummer = t.Sak.FagsakID
		}
		out = append(out, tj)
	}
	return out, nil
}

func (c *SafClient) query(ctx context.Context, query string, vars map[string]any, out any) error {
	return c.rest.do(ctx, http.MethodPost, "", graphqlRequest{Query: query, Variables: vars}, out)
}

// feil maps GraphQL error codes onto upstream statuses. Only the first error
// is reported.
func (c *SafClient) feil(errs []graphqlError) error {
	if len(errs) == 0 {
		return nil
	}
	e := errs[0]
	status := http.StatusInternalServerError
	switch strings.ToLower(e.Extensions.Code) {
	case "not_found":
		status = http.StatusNotFound
	case "forbidden":
		status = http.StatusForbidden
	case "bad_request":
		status = http.StatusBadRequest
	case "unauthorized":
		status = http.StatusUnauthorized
	}
	return &gateway.UpstreamError{System: c.rest.system, Status: status, Reason: e.Message}
}

type safJournalpost struct {
	JournalpostID        string                      `json:"journalpostId"`
	Journalposttype      string                      `json:"journalposttype"`
	Journalstatus        string                      `json:"journalstatus"`
	Tema                 string                      `json:"tema"`
	Tittel               string                      `json:"tittel"`
	Kanal                string                      `json:"kanal"`
	JournalforendeEnhet  string                      `json:"journalfoerendeEnhet"`
	OpprettetAvNavn      string                      `json:"opprettetAvNavn"`
	JournalfortAvNavn    string                      `json:"journalfortAvNavn"`
	AvsenderMottaker     *safAvsenderMottaker        `json:"avsenderMottaker"`
	Bruker               *domain.Bruker              `json:"bruker"`
	Sak                  *domain.Sak                 `json:"sak"`
	Dokumenter           []domain.Dokument           `json:"dokumenter"`
	Tilleggsopplysninger domain.Tilleggsopplysninger `json:"tilleggsopplysninger"`
	RelevanteDatoer      []domain.RelevantDato       `json:"relevanteDatoer"`
}

type safAvsenderMottaker struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Navn string `json:"navn"`
}

func (s safJournalpost) tilDomain() domain.Journalpost {
	id, _ := strconv.ParseInt(s.JournalpostID, 10, 64)
	j := domain.Journalpost{
		JournalpostID:        id,
		Journalposttype:      domain.Journalposttype(s.Journalposttype),
		Journalstatus:        domain.Journalstatus(s.Journalstatus),
		Tema:                 s.Tema,
		Tittel:               s.Tittel,
		Kanal:                s.Kanal,
		JournalforendeEnhet:  s.JournalforendeEnhet,
		OpprettetAvNavn:      s.OpprettetAvNavn,
		JournalfortAvNavn:    s.JournalfortAvNavn,
		Bruker:               s.Bruker,
		Sak:                  s.Sak,
		Dokumenter:           s.Dokumenter,
		Tilleggsopplysninger: s.Tilleggsopplysninger,
		RelevanteDatoer:      s.RelevanteDatoer,
	}
	if s.AvsenderMottaker != nil {
		j.AvsenderMottaker = &domain.AvsenderMottaker{
			ID:     s.AvsenderMottaker.ID,
			IDType: s.AvsenderMottaker.Type,
			Navn:   s.AvsenderMottaker.Navn,
		}
	}
	return j
}
