package clients

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/navikt/bidrag-dokument-arkiv/internal/domain"
	"github.com/navikt/bidrag-dokument-arkiv/internal/gateway"
)

const journalpostAPI = "/rest/journalpostapi/v1/journalpost"

// DokarkivClient writes journal entries through the archive REST API.
type DokarkivClient struct {
	rest restClient
}

var _ gateway.ArkivMutation = (*DokarkivClient)(nil)

// NewDokarkivClient returns a client for the archive REST API at url.
func NewDokarkivClient(url string, timeout time.Duration) *DokarkivClient {
	return &DokarkivClient{rest: newRestClient("dokarkiv", url, timeout)}
}

func journalpostSti(id int64, suffix string) string {
	return fmt.Sprintf("%s/%d%s", journalpostAPI, id, suffix)
}

func (c *DokarkivClient) Oppdater(ctx context.Context, id int64, req domain.OppdaterJournalpost) error {
	return c.rest.do(ctx, http.MethodPut, journalpostSti(id, ""), req, nil)
}

func (c *DokarkivClient) Ferdigstill(ctx context.Context, id int64, req domain.FerdigstillJournalpost) error {
	return c.rest.do(ctx, http.MethodPatch, journalpostSti(id, "/ferdigstill"), req, nil)
}

func (c *DokarkivClient) FeilregistrerSakstilknytning(ctx context.Context, id int64) error {
	return c.rest.do(ctx, http.MethodPatch, journalpostSti(id, "/feilregistrer/feilregistrerSakstilknytning"), nil, nil)
}

func (c *DokarkivClient) OpphevFeilregistrerSakstilknytning(ctx context.Context, id int64) error {
	return c.rest.do(ctx, http.MethodPatch, journalpostSti(id, "/feilregistrer/opphevFeilregistrertSakstilknytning"), nil, nil)
}

func (c *DokarkivClient) SettStatusUtgaar(ctx context.Context, id int64) error {
	return c.rest.do(ctx, http.MethodPatch, journalpostSti(id, "/feilregistrer/settStatusUtgaar"), nil, nil)
}

func (c *DokarkivClient) OppdaterDistribusjonsinfo(ctx context.Context, id int64, req domain.Distribusjonsinfo) error {
	return c.rest.do(ctx, http.MethodPatch, journalpostSti(id, "/oppdaterDistribusjonsinfo"), req, nil)
}

// DokarkivProxyClient links entries to other cases through the archive
// proxy, which creates a copy of the entry per case.
type DokarkivProxyClient struct {
	rest restClient
}

var _ gateway.ArkivProxy = (*DokarkivProxyClient)(nil)

// NewDokarkivProxyClient returns a client for the archive proxy at url.
func NewDokarkivProxyClient(url string, timeout time.Duration) *DokarkivProxyClient {
	return &DokarkivProxyClient{rest: newRestClient("dokarkiv-proxy", url, timeout)}
}

// KnyttTilSak returns the id of the copy linked to the requested case.
func (c *DokarkivProxyClient) KnyttTilSak(ctx context.Context, id int64, req domain.KnyttTilSak) (int64, error) {
	var resp struct {
		NyJournalpostID string `json:"nyJournalpostId"`
	}
	if err := c.rest.do(ctx, http.MethodPut, journalpostSti(id, "/knyttTilAnnenSak"), req, &resp); err != nil {
		return 0, err
	}
	nyID, err := strconv.ParseInt(resp.NyJournalpostID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("dokarkiv-proxy: ugyldig nyJournalpostId %q: %w", resp.NyJournalpostID, err)
	}
	return nyID, nil
}
