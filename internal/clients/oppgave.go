package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/navikt/bidrag-dokument-arkiv/internal/domain"
	"github.com/navikt/bidrag-dokument-arkiv/internal/gateway"
)

const oppgaveAPI = "/api/v1/oppgaver"

// OppgaveClient talks to the task system.
type OppgaveClient struct {
	rest restClient
}

var _ gateway.OppgaveGateway = (*OppgaveClient)(nil)

// NewOppgaveClient returns a client for the task API at baseURL.
func NewOppgaveClient(baseURL string, timeout time.Duration) *OppgaveClient {
	return &OppgaveClient{rest: newRestClient("oppgave", baseURL, timeout)}
}

// Sok lists tasks matching every set filter.
func (c *OppgaveClient) Sok(ctx context.Context, sok domain.OppgaveSok) ([]domain.Oppgave, error) {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("tema", sok.Tema)
	set("oppgavetype", sok.Oppgavetype)
	set("journalpostId", sok.JournalpostID)
	set("statuskategori", sok.Statuskategori)
	for _, s := range sok.Saksreferanser {
		q.Add("saksreferanse", s)
	}

	var resp struct {
		AntallTreffTotalt int              `json:"antallTreffTotalt"`
		Oppgaver          []domain.Oppgave `json:"oppgaver"`
	}
	if err := c.rest.do(ctx, http.MethodGet, oppgaveAPI+"?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Oppgaver, nil
}

// Opprett creates a task and returns its id.
func (c *OppgaveClient) Opprett(ctx context.Context, req domain.OpprettOppgave) (int64, error) {
	var resp domain.Oppgave
	if err := c.rest.do(ctx, http.MethodPost, oppgaveAPI, req, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// Patch updates a task. A version conflict surfaces as a 409 UpstreamError.
func (c *OppgaveClient) Patch(ctx context.Context, req domain.PatchOppgave) (*domain.Oppgave, error) {
	var resp domain.Oppgave
	if err := c.rest.do(ctx, http.MethodPatch, fmt.Sprintf("%s/%d", oppgaveAPI, req.ID), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
