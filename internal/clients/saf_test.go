package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navikt/bidrag-dokument-arkiv/internal/domain"
	"github.com/navikt/bidrag-dokument-arkiv/internal/gateway"
)

// graphqlServer answers every query with body and records the last request.
func graphqlServer(t *testing.T, body string, last *graphqlRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if last != nil {
			assert.NoError(t, json.Unmarshal(b, last))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const safJournalpostSvar = `{"data":{"journalpost":{
  "journalpostId":"201028011",
  "journalposttype":"I",
  "journalstatus":"JOURNALFOERT",
  "tema":"BID",
  "tittel":"Søknad om bidrag",
  "kanal":"SKAN_IM",
  "journalfoerendeEnhet":"4833",
  "avsenderMottaker":{"id":"12345678910","type":"FNR","navn":"Kari Nordmann"},
  "bruker":{"id":"12345678910","type":"FNR"},
  "sak":{"fagsakId":"2100001","fagsaksystem":"BISYS","sakstype":"FAGSAK","tema":"BID"},
  "dokumenter":[{"dokumentInfoId":"1001","tittel":"Søknad","brevkode":"NAV 54-00.05"}],
  "tilleggsopplysninger":[{"nokkel":"retur0_2021-02-03","verdi":"Ukjent adresse"}],
  "relevanteDatoer":[{"dato":"2021-02-01T10:00:00","datotype":"DATO_JOURNALFOERT"}]
}}}`

func TestSafClient_HentJournalpost(t *testing.T) {
	var req graphqlRequest
	c := NewSafClient(graphqlServer(t, safJournalpostSvar, &req).URL, time.Second)

	jp, err := c.HentJournalpost(context.Background(), 201028011)
	require.NoError(t, err)

	assert.Equal(t, journalpostQuery, req.Query)
	assert.Equal(t, "201028011", req.Variables["journalpostId"])

	assert.Equal(t, int64(201028011), jp.JournalpostID)
	assert.True(t, jp.ErInngaende())
	assert.Equal(t, domain.StatusJournalfort, jp.Journalstatus)
	assert.Equal(t, "2100001", jp.Saksnummer())
	assert.Equal(t, "FNR", jp.AvsenderMottaker.IDType)
	assert.Equal(t, "Kari Nordmann", jp.AvsenderMottaker.Navn)
	assert.True(t, jp.ErSkannet())
	v, ok := jp.Tilleggsopplysninger.Hent("retur0_2021-02-03")
	assert.True(t, ok)
	assert.Equal(t, "Ukjent adresse", v)
}

func TestSafClient_Feilkoder(t *testing.T) {
	cases := []struct {
		kode     string
		status   int
		sentinel error
	}{
		{"not_found", http.StatusNotFound, gateway.ErrNotFound},
		{"forbidden", http.StatusForbidden, gateway.ErrForbidden},
		{"bad_request", http.StatusBadRequest, gateway.ErrBadRequest},
		{"server_error", http.StatusInternalServerError, gateway.ErrUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.kode, func(t *testing.T) {
			body := `{"data":{"journalpost":null},"errors":[{"message":"feil fra saf","extensions":{"code":"` + tc.kode + `"}}]}`
			c := NewSafClient(graphqlServer(t, body, nil).URL, time.Second)

			_, err := c.HentJournalpost(context.Background(), 1)

			var uerr *gateway.UpstreamError
			require.ErrorAs(t, err, &uerr)
			assert.Equal(t, tc.status, uerr.Status)
			assert.Equal(t, "feil fra saf", uerr.Reason)
			assert.ErrorIs(t, err, tc.sentinel)
		})
	}
}

func TestSafClient_NullJournalpost(t *testing.T) {
	c := NewSafClient(graphqlServer(t, `{"data":{"journalpost":null}}`, nil).URL, time.Second)
	_, err := c.HentJournalpost(context.Background(), 1)
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}

func TestSafClient_HentJournalposterForSak(t *testing.T) {
	var req graphqlRequest
	body := `{"data":{"dokumentoversiktFagsak":{"journalposter":[
	  {"journalpostId":"1","journalposttype":"U","journalstatus":"EKSPEDERT","tema":"BID"},
	  {"journalpostId":"2","journalposttype":"N","journalstatus":"FERDIGSTILT","tema":"FAR"}]}}}`
	c := NewSafClient(graphqlServer(t, body, &req).URL, time.Second)

	jps, err := c.HentJournalposterForSak(context.Background(), "2100001", []string{"BID", "FAR"})
	require.NoError(t, err)

	assert.Equal(t, "2100001", req.Variables["fagsakId"])
	assert.Equal(t, []any{"BID", "FAR"}, req.Variables["tema"])
	require.Len(t, jps, 2)
	assert.Equal(t, int64(2), jps[1].JournalpostID)
	assert.True(t, jps[1].ErNotat())
}

func TestSafClient_HentTilknyttedeJournalposter(t *testing.T) {
	var req graphqlRequest
	body := `{"data":{"tilknyttedeJournalposter":[
	  {"journalpostId":"11","journalstatus":"JOURNALFOERT","sak":{"fagsakId":"2100002"}},
	  {"journalpostId":"ikke-tall","journalstatus":"JOURNALFOERT"},
	  {"journalpostId":"12","journalstatus":"FEILREGISTRERT"}]}}`
	c := NewSafClient(graphqlServer(t, body, &req).URL, time.Second)

	out, err := c.HentTilknyttedeJournalposter(context.Background(), domain.Journalpost{
		JournalpostID: 10,
		Dokumenter:    []domain.Dokument{{DokumentInfoID: "1001"}, {DokumentInfoID: "1002"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "1001", req.Variables["dokumentInfoId"])
	assert.Equal(t, []domain.TilknyttetJournalpost{
		{JournalpostID: 11, Journalstatus: domain.StatusJournalfort, Saksnummer: "2100002"},
		{JournalpostID: 12, Journalstatus: domain.StatusFeilregistrert},
	}, out)

	none, err := c.HentTilknyttedeJournalposter(context.Background(), domain.Journalpost{JournalpostID: 10})
	require.NoError(t, err)
	assert.Nil(t, none)
}
