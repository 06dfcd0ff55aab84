package clients

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/navikt/bidrag-dokument-arkiv/internal/domain"
	"github.com/navikt/bidrag-dokument-arkiv/internal/gateway"
)

// DokdistClient orders distribution of outbound entries.
type DokdistClient struct {
	rest restClient
}

var _ gateway.DistribusjonGateway = (*DokdistClient)(nil)

// NewDokdistClient returns a client for the distribution API at baseURL.
func NewDokdistClient(baseURL string, timeout time.Duration) *DokdistClient {
	return &DokdistClient{rest: newRestClient("dokdist", baseURL, timeout)}
}

// Distribuer returns nil, nil when the distribution service answers with a
// non-2xx status. Transport failures are returned as errors.
func (c *DokdistClient) Distribuer(ctx context.Context, req domain.DistribuerBestilling) (*domain.DistribuerResultat, error) {
	var resp domain.DistribuerResultat
	err := c.rest.do(ctx, http.MethodPost, "/rest/v1/distribuerjournalpost", req, &resp)
	var uerr *gateway.UpstreamError
	if errors.As(err, &uerr) {
		zerolog.Ctx(ctx).Warn().
			Str("journalpost_id", req.JournalpostID).
			Int("status", uerr.Status).
			Msg("distribusjon avvist")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
