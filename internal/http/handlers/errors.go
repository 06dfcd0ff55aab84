// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes the symbolic error codes written in the error
// envelope and the translation of service and gateway errors into HTTP
// status codes. Clients branch on the code; the message is the Warning text.
//
// Example response:
//
//	HTTP/1.1 400 Bad Request
//	Warning: ugyldig avvik: FEILFORE_SAK er ikke gyldig for JOARK-1 med status FEILREGISTRERT
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "ugyldig_avvik",
//	  "message": "ugyldig avvik: FEILFORE_SAK er ikke gyldig for JOARK-1 med status FEILREGISTRERT"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/navikt/bidrag-dokument-arkiv/internal/gateway"
	"github.com/navikt/bidrag-dokument-arkiv/internal/services"
	"github.com/navikt/bidrag-dokument-arkiv/internal/utils"
)

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeUgyldigAvvik              = "ugyldig_avvik"
	ErrCodeManglerDetalj             = "mangler_detalj"
	ErrCodeAvvikIkkeStottet          = "avvik_ikke_stottet"
	ErrCodeUgyldigEndring            = "ugyldig_endring"
	ErrCodeKanIkkeDistribuere        = "kan_ikke_distribuere"
	ErrCodeDistribusjonUtilgjengelig = "distribusjon_utilgjengelig"
	ErrCodeUpstream                  = "upstream_error"
)

// distribusjonFeil are the distribution preconditions, in check order.
var distribusjonFeil = []error{
	services.ErrIkkeFerdigstilt,
	services.ErrIkkeBidragTema,
	services.ErrManglerMottaker,
	services.ErrManglerAdresse,
}

// erDistribusjonFeil reports whether err is a failed distribution precondition.
func erDistribusjonFeil(err error) bool {
	for _, d := range distribusjonFeil {
		if errors.Is(err, d) {
			return true
		}
	}
	return false
}

// classify maps an error to an HTTP status and error code.
//
// Missing-address deviations wrap both ErrUgyldigAvvik and ErrManglerDetalj;
// they are reported as ugyldig_avvik.
func classify(err error) (int, string) {
	var up *gateway.UpstreamError
	switch {
	case errors.Is(err, utils.ErrUgyldigID):
		return http.StatusBadRequest, ErrCodeBadRequest
	case errors.Is(err, services.ErrJournalpostIkkeFunnet):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, services.ErrUgyldigAvvik):
		return http.StatusBadRequest, ErrCodeUgyldigAvvik
	case errors.Is(err, services.ErrManglerDetalj):
		return http.StatusBadRequest, ErrCodeManglerDetalj
	case errors.Is(err, services.ErrAvvikIkkeStottet):
		return http.StatusBadRequest, ErrCodeAvvikIkkeStottet
	case errors.Is(err, services.ErrUgyldigEndring):
		return http.StatusBadRequest, ErrCodeUgyldigEndring
	case erDistribusjonFeil(err):
		return http.StatusBadRequest, ErrCodeKanIkkeDistribuere
	case errors.Is(err, services.ErrDistribusjonUtilgjengelig):
		return http.StatusServiceUnavailable, ErrCodeDistribusjonUtilgjengelig
	case errors.As(err, &up):
		if up.Status == http.StatusNotFound {
			return http.StatusNotFound, ErrCodeNotFound
		}
		if up.Status == http.StatusUnauthorized || up.Status == http.StatusForbidden {
			return up.Status, ErrCodeForbidden
		}
		return up.Status, ErrCodeUpstream
	case errors.Is(err, gateway.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, gateway.ErrForbidden):
		return http.StatusForbidden, ErrCodeForbidden
	}
	return http.StatusInternalServerError, ErrCodeInternal
}
