// Package services holds the business logic of the archive mediator: the
// deviation engine, the edit and distribution orchestrators, task handling
// and the change-event publisher.
//
// This file centralizes the service-level error values. Callers match them
// with errors.Is; translation into HTTP status codes happens in the handler
// layer. Gateway errors (gateway.UpstreamError, gateway.ErrForbidden) pass
// through unchanged.
package services

import (
	"errors"

	"github.com/navikt/bidrag-dokument-arkiv/internal/domain"
)

// Deviation errors.
var (
	// ErrJournalpostIkkeFunnet indicates that the archive has no such entry.
	ErrJournalpostIkkeFunnet = errors.New("journalpost ikke funnet")

	// ErrUgyldigAvvik is returned when the deviation is not legal for the
	// entry in its current state, or breaks a type-specific rule.
	ErrUgyldigAvvik = domain.ErrUgyldigAvvik

	// ErrManglerDetalj is returned when a required detail is absent.
	ErrManglerDetalj = domain.ErrManglerDetalj

	// ErrAvvikIkkeStottet is returned for unknown or unimplemented types.
	ErrAvvikIkkeStottet = domain.ErrAvvikIkkeStottet
)

// Edit errors.
var (
	// ErrUgyldigEndring is returned when an edit command fails validation.
	ErrUgyldigEndring = errors.New("ugyldig endring av journalpost")
)

// Distribution errors, checked in this order.
var (
	ErrIkkeFerdigstilt = errors.New("journalpost har ikke status FERDIGSTILT")
	ErrIkkeBidragTema  = errors.New("journalpost har ikke tema BID eller FAR")
	ErrManglerMottaker = errors.New("journalpost mangler mottaker")
	ErrManglerAdresse  = errors.New("journalpost mangler gyldig adresse")

	// ErrDistribusjonUtilgjengelig is returned when the distribution service
	// refused an order that passed every local precondition.
	ErrDistribusjonUtilgjengelig = errors.New("distribusjon kunne ikke bestilles")
)
