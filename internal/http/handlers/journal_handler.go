// Journal HTTP handlers.
//
// This file exposes the REST endpoints of the archive mediator:
//   - GET    /journal/{jpid}                      (read one entry)
//   - GET    /journal/{jpid}/avvik                (legal deviations)
//   - POST   /journal/{jpid}/avvik                (apply a deviation)
//   - PATCH  /journal/{jpid}                      (edit and journalføre)
//   - POST   /journal/distribuer/{jpid}           (order distribution)
//   - GET    /journal/distribuer/{jpid}/enabled   (can the entry be distributed)
//   - GET    /sak/{saksnummer}/journal            (entries of a case)
//
// Handlers are transport-thin: they validate input, call application services
// and translate results and errors into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/navikt/bidrag-dokument-arkiv/internal/domain"
	"github.com/navikt/bidrag-dokument-arkiv/internal/services"
	"github.com/navikt/bidrag-dokument-arkiv/internal/utils"
)

//
// Service contracts (context-aware)
//

// JournalpostLeser reads entries from the archive.
type JournalpostLeser interface {
	// HentMedTilknyttedeSaker returns the entry with every linked case.
	HentMedTilknyttedeSaker(ctx context.Context, id int64) (*domain.Journalpost, error)
	// HentForSak lists the entries of a case filtered by tema.
	HentForSak(ctx context.Context, saksnummer string, tema []string) ([]domain.Journalpost, error)
}

// AvvikBehandler lists and applies deviations.
type AvvikBehandler interface {
	HentAvvik(ctx context.Context, id int64) ([]domain.AvvikType, error)
	BehandleAvvik(ctx context.Context, id int64, h domain.AvvikHendelse) (*services.BehandleAvvikResponse, error)
}

// JournalpostEndrer applies a case handler's edit.
type JournalpostEndrer interface {
	Endre(ctx context.Context, id int64, enhet string, k domain.EndreJournalpostKommando) error
}

// Distribuerer orders distribution of outbound entries.
type Distribuerer interface {
	// Distribuer returns nil without error when the order was refused.
	Distribuer(ctx context.Context, id int64, req domain.DistribuerRequest) (*domain.DistribuerResultat, error)
	// KanDistribuere returns the first failed precondition, or nil.
	KanDistribuere(ctx context.Context, id int64) error
}

//
// Handler wiring
//

// Handlers groups the journal endpoints.
type Handlers struct {
	lesSvc   JournalpostLeser
	avvikSvc AvvikBehandler
	endreSvc JournalpostEndrer
	distSvc  Distribuerer
}

// New constructs and returns a Handlers instance bound to the given services.
// It registers the custom binding validators the request DTOs rely on.
func New(les JournalpostLeser, avvik AvvikBehandler, endre JournalpostEndrer, dist Distribuerer) *Handlers {
	RegisterValidators()
	return &Handlers{lesSvc: les, avvikSvc: avvik, endreSvc: endre, distSvc: dist}
}

//
// DTOs
//

// JournalpostResponse is an entry with the cases it is linked to.
type JournalpostResponse struct {
	Journalpost       *domain.Journalpost `json:"journalpost"`
	Sakstilknytninger []string            `json:"sakstilknytninger"`
}

//
// Helpers
//

// journalpostID parses the :jpid path parameter; it aborts with 400 on junk.
func journalpostID(c *gin.Context) (int64, bool) {
	id, err := utils.ParseJournalpostID(c.Param("jpid"))
	if err != nil {
		failErr(c, err)
		return 0, false
	}
	return id, true
}

// enhet binds and validates the X_ENHET header; it aborts with 400 when absent.
func enhet(c *gin.Context) (string, bool) {
	var h enhetHeader
	if err := c.ShouldBindHeader(&h); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "header X_ENHET må være et enhetsnummer med fire siffer")
		return "", false
	}
	return h.Enhet, true
}

// hentForSak fetches the entry and, when saksnummer is given, requires the
// entry to be linked to that case.
func (h *Handlers) hentForSak(c *gin.Context, id int64) (*domain.Journalpost, bool) {
	jp, err := h.lesSvc.HentMedTilknyttedeSaker(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return nil, false
	}
	if sak := strings.TrimSpace(c.Query("saksnummer")); sak != "" && !jp.ErTilknyttetSak(sak) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, domain.ArkivID(id)+" tilhører ikke sak "+sak)
		return nil, false
	}
	return jp, true
}

//
// Handlers
//

// HentJournalpost godoc
// @ID          hentJournalpost
// @Summary     Hent journalpost
// @Description Returns the entry and every case it is linked to. With saksnummer the entry must belong to that case.
// @Tags        Journal
// @Security    BearerAuth
// @Produce     json
//
// @Param       jpid        path   string  true   "Journalpost id (JOARK-<n> or <n>)"  example(JOARK-453)
// @Param       saksnummer  query  string  false  "Case the entry must belong to"      example(2100001)
//
// @Success     200  {object}  handlers.JournalpostResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid id"
// @Failure     404  {string}  string                  "Not found (reason in Warning header)"
// @Router      /journal/{jpid} [get]
func (h *Handlers) HentJournalpost(c *gin.Context) {
	id, good := journalpostID(c)
	if !good {
		return
	}
	jp, good := h.hentForSak(c, id)
	if !good {
		return
	}
	ok(c, http.StatusOK, JournalpostResponse{Journalpost: jp, Sakstilknytninger: jp.Saker()})
}

// HentAvvik godoc
// @ID          hentAvvik
// @Summary     List legal deviations
// @Description Lists the deviation types legal for the entry in its current state. Entries created by NKS get an empty list.
// @Tags        Avvik
// @Security    BearerAuth
// @Produce     json
//
// @Param       jpid        path   string  true   "Journalpost id (JOARK-<n> or <n>)"  example(JOARK-453)
// @Param       saksnummer  query  string  false  "Case the entry must belong to"      example(2100001)
//
// @Success     200  {array}   string
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid id"
// @Failure     404  {string}  string                  "Not found (reason in Warning header)"
// @Router      /journal/{jpid}/avvik [get]
func (h *Handlers) HentAvvik(c *gin.Context) {
	id, good := journalpostID(c)
	if !good {
		return
	}
	if c.Query("saksnummer") != "" {
		if _, good := h.hentForSak(c, id); !good {
			return
		}
	}
	typer, err := h.avvikSvc.HentAvvik(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, typer)
}

// BehandleAvvik godoc
// @ID          behandleAvvik
// @Summary     Apply a deviation
// @Description Validates the deviation against the entry, runs the archive mutations and publishes one change event.
// @Tags        Avvik
// @Security    BearerAuth
// @Accept      json
// @Produce     json
//
// @Param       jpid             path    string                true   "Journalpost id (JOARK-<n> or <n>)"  example(JOARK-453)
// @Param       X_ENHET          header  string                true   "Acting unit"                        example(4806)
// @Param       Idempotency-Key  header  string                false  "Replays the stored outcome"
// @Param       body             body    domain.AvvikHendelse  true   "Deviation"
//
// @Success     200  {object}  services.BehandleAvvikResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid or illegal deviation"
// @Failure     404  {string}  string                  "Not found (reason in Warning header)"
// @Failure     503  {object}  handlers.ErrorResponse  "Distribution unavailable"
// @Router      /journal/{jpid}/avvik [post]
func (h *Handlers) BehandleAvvik(c *gin.Context) {
	id, good := journalpostID(c)
	if !good {
		return
	}
	enh, good := enhet(c)
	if !good {
		return
	}
	var req domain.AvvikHendelse
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "ugyldig avvikshendelse: "+err.Error())
		return
	}
	req.Enhetsnummer = enh

	resp, err := h.avvikSvc.BehandleAvvik(c.Request.Context(), id, req)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

// EndreJournalpost godoc
// @ID          endreJournalpost
// @Summary     Edit an entry
// @Description Updates the entry, journalfører it when asked, links additional cases and publishes one change event.
// @Tags        Journal
// @Security    BearerAuth
// @Accept      json
//
// @Param       jpid             path    string                           true   "Journalpost id (JOARK-<n> or <n>)"  example(JOARK-453)
// @Param       X_ENHET          header  string                           true   "Acting unit"                        example(4806)
// @Param       Idempotency-Key  header  string                           false  "Replays the stored outcome"
// @Param       body             body    domain.EndreJournalpostKommando  true   "Edit command"
//
// @Success     200  {string}  string                  "Updated"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid edit"
// @Failure     404  {string}  string                  "Not found (reason in Warning header)"
// @Router      /journal/{jpid} [patch]
func (h *Handlers) EndreJournalpost(c *gin.Context) {
	id, good := journalpostID(c)
	if !good {
		return
	}
	enh, good := enhet(c)
	if !good {
		return
	}
	var k domain.EndreJournalpostKommando
	if err := c.ShouldBindJSON(&k); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "ugyldig endring: "+err.Error())
		return
	}

	if err := h.endreSvc.Endre(c.Request.Context(), id, enh, k); err != nil {
		failErr(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Distribuer godoc
// @ID          distribuerJournalpost
// @Summary     Order distribution
// @Description Orders postal distribution, or records local printing. An empty 200 means the distribution service refused the order.
// @Tags        Distribusjon
// @Security    BearerAuth
// @Accept      json
// @Produce     json
//
// @Param       jpid  path  string                    true   "Journalpost id (JOARK-<n> or <n>)"  example(JOARK-453)
// @Param       body  body  domain.DistribuerRequest  false  "Address override or local print"
//
// @Success     200  {object}  domain.DistribuerResultat
// @Failure     400  {object}  handlers.ErrorResponse  "Precondition failed"
// @Failure     404  {string}  string                  "Not found (reason in Warning header)"
// @Router      /journal/distribuer/{jpid} [post]
func (h *Handlers) Distribuer(c *gin.Context) {
	id, good := journalpostID(c)
	if !good {
		return
	}
	var req domain.DistribuerRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "ugyldig distribusjonsforespørsel: "+err.Error())
		return
	}

	res, err := h.distSvc.Distribuer(c.Request.Context(), id, req)
	if err != nil {
		failErr(c, err)
		return
	}
	if res == nil {
		c.Status(http.StatusOK)
		return
	}
	ok(c, http.StatusOK, res)
}

// KanDistribuere godoc
// @ID          kanDistribuere
// @Summary     Can the entry be distributed
// @Description 200 when every distribution precondition holds, 406 with the first failed one otherwise.
// @Tags        Distribusjon
// @Security    BearerAuth
// @Produce     json
//
// @Param       jpid  path  string  true  "Journalpost id (JOARK-<n> or <n>)"  example(JOARK-453)
//
// @Success     200  {string}  string                  "Distributable"
// @Failure     404  {string}  string                  "Not found (reason in Warning header)"
// @Failure     406  {object}  handlers.ErrorResponse  "Not distributable"
// @Router      /journal/distribuer/{jpid}/enabled [get]
func (h *Handlers) KanDistribuere(c *gin.Context) {
	id, good := journalpostID(c)
	if !good {
		return
	}
	err := h.distSvc.KanDistribuere(c.Request.Context(), id)
	switch {
	case err == nil:
		c.Status(http.StatusOK)
	case erDistribusjonFeil(err):
		fail(c, http.StatusNotAcceptable, ErrCodeKanIkkeDistribuere, err.Error())
	default:
		failErr(c, err)
	}
}

// HentSakJournal godoc
// @ID          hentSakJournal
// @Summary     Entries of a case
// @Description Lists the entries of a case. fagomrade may be repeated or comma separated; defaults to BID and FAR.
// @Tags        Journal
// @Security    BearerAuth
// @Produce     json
//
// @Param       saksnummer  path   string    true   "Case number"  example(2100001)
// @Param       fagomrade   query  []string  false  "Tema filter"  collectionFormat(multi)
//
// @Success     200  {array}   domain.Journalpost
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid case number"
// @Router      /sak/{saksnummer}/journal [get]
func (h *Handlers) HentSakJournal(c *gin.Context) {
	sak := strings.TrimSpace(c.Param("saksnummer"))
	if sak == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "saksnummer mangler")
		return
	}
	tema := utils.NonEmpty(c.QueryArray("fagomrade"))
	if len(tema) == 0 {
		tema = []string{domain.TemaBID, domain.TemaFAR}
	}
	for i := range tema {
		tema[i] = strings.ToUpper(tema[i])
	}

	jps, err := h.lesSvc.HentForSak(c.Request.Context(), sak, tema)
	if err != nil {
		failErr(c, err)
		return
	}
	if jps == nil {
		jps = []domain.Journalpost{}
	}
	ok(c, http.StatusOK, jps)
}
