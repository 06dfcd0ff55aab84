package services

import (
	"context"
	"fmt"

	"github.com/navikt/bidrag-dokument-arkiv/internal/auth"
	"github.com/navikt/bidrag-dokument-arkiv/internal/domain"
	"github.com/navikt/bidrag-dokument-arkiv/internal/gateway"
)

// SaksbehandlerInfo resolves the authenticated case handler of a request.
type SaksbehandlerInfo struct {
	Organisasjon gateway.OrganisasjonGateway
}

// Gjeldende returns the case handler behind ctx. The name is looked up in the
// organisation registry; a failed lookup leaves it empty.
func (s *SaksbehandlerInfo) Gjeldende(ctx context.Context) (*domain.Saksbehandler, bool) {
	ident, ok := auth.Saksbehandler(ctx)
	if !ok {
		return nil, false
	}
	sb := &domain.Saksbehandler{Ident: ident}
	if s == nil || s.Organisasjon == nil {
		return sb, true
	}
	info, err := s.Organisasjon.HentSaksbehandler(ctx, ident)
	if err != nil {
		loggerFra(ctx).Debug().Err(err).Str("ident", ident).Msg("kunne ikke hente saksbehandlers navn")
		return sb, true
	}
	if info != nil {
		sb.Navn = info.Navn
	}
	return sb, true
}

// Beskrivelse renders the case handler for task descriptions:
// "Navn (ident, enhet)", or "Saksbehandler ukjent (enhet X)".
func (s *SaksbehandlerInfo) Beskrivelse(ctx context.Context, enhet string) string {
	sb, ok := s.Gjeldende(ctx)
	if !ok {
		return fmt.Sprintf("Saksbehandler ukjent (enhet %s)", enhet)
	}
	if sb.Navn == "" {
		return fmt.Sprintf("%s (%s)", sb.Ident, enhet)
	}
	return fmt.Sprintf("%s (%s, %s)", sb.Navn, sb.Ident, enhet)
}
