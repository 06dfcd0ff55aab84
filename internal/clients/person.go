package clients

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/navikt/bidrag-dokument-arkiv/internal/domain"
	"github.com/navikt/bidrag-dokument-arkiv/internal/gateway"
)

// PersonClient looks up persons in the identity registry.
type PersonClient struct {
	rest restClient
}

var _ gateway.PersonGateway = (*PersonClient)(nil)

// NewPersonClient returns a client for the person API at baseURL.
func NewPersonClient(baseURL string, timeout time.Duration) *PersonClient {
	return &PersonClient{rest: newRestClient("person", baseURL, timeout)}
}

// HentPerson posts the ident in the body so it never appears in access logs.
func (c *PersonClient) HentPerson(ctx context.Context, ident string) (*domain.Person, error) {
	var p domain.Person
	if err := c.rest.do(ctx, http.MethodPost, "/informasjon", map[string]string{"ident": ident}, &p); err != nil {
		return nil, err
	}
	if p.Ident == "" {
		p.Ident = ident
	}
	return &p, nil
}

// HentAdresse fetches the postal address the person receives letters at.
// An empty answer is reported as gateway.ErrNotFound.
func (c *PersonClient) HentAdresse(ctx context.Context, ident string) (*domain.Adresse, error) {
	var a domain.Adresse
	if err := c.rest.do(ctx, http.MethodPost, "/adresse/post", map[string]string{"ident": ident}, &a); err != nil {
		return nil, err
	}
	if a == (domain.Adresse{}) {
		return nil, gateway.ErrNotFound
	}
	if strings.EqualFold(a.Land, "NOR") {
		a.Land = "NO"
	}
	return &a, nil
}
