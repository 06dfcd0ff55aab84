package clients

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/navikt/bidrag-dokument-arkiv/internal/domain"
	"github.com/navikt/bidrag-dokument-arkiv/internal/gateway"
)

// OrganisasjonClient resolves routing units and case handler names. Both
// lookups are cached for the configured TTL; failures are never cached.
type OrganisasjonClient struct {
	rest           restClient
	enheter        *ttlCache[string]
	saksbehandlere *ttlCache[domain.Saksbehandler]
}

var _ gateway.OrganisasjonGateway = (*OrganisasjonClient)(nil)

// NewOrganisasjonClient returns a client for the organisation API at
// baseURL. A cacheTTL of zero disables caching.
func NewOrganisasjonClient(baseURL string, timeout, cacheTTL time.Duration) *OrganisasjonClient {
	return &OrganisasjonClient{
		rest:           newRestClient("organisasjon", baseURL, timeout),
		enheter:        newTTLCache[string](cacheTTL),
		saksbehandlere: newTTLCache[domain.Saksbehandler](cacheTTL),
	}
}

// HentEnhetForPerson returns the unit that handles tema for the person.
func (c *OrganisasjonClient) HentEnhetForPerson(ctx context.Context, ident, tema string) (string, error) {
	key := ident + "|" + tema
	if enhet, ok := c.enheter.get(key); ok {
		return enhet, nil
	}
	var resp struct {
		EnhetIdent string `json:"enhetIdent"`
		EnhetNavn  string `json:"enhetNavn"`
	}
	body := map[string]string{"ident": ident, "tema": tema}
	if err := c.rest.do(ctx, http.MethodPost, "/arbeidsfordeling/enhet", body, &resp); err != nil {
		return "", err
	}
	if resp.EnhetIdent == "" {
		return "", gateway.ErrNotFound
	}
	c.enheter.set(key, resp.EnhetIdent)
	return resp.EnhetIdent, nil
}

// HentSaksbehandler returns the display name of a case handler.
func (c *OrganisasjonClient) HentSaksbehandler(ctx context.Context, ident string) (*domain.Saksbehandler, error) {
	if sb, ok := c.saksbehandlere.get(ident); ok {
		return &sb, nil
	}
	var resp struct {
		Ident string `json:"ident"`
		Navn  string `json:"navn"`
	}
	if err := c.rest.do(ctx, http.MethodGet, "/saksbehandler/info/"+url.PathEscape(ident), nil, &resp); err != nil {
		return nil, err
	}
	sb := domain.Saksbehandler{Ident: ident, Navn: resp.Navn}
	c.saksbehandlere.set(ident, sb)
	return &sb, nil
}
