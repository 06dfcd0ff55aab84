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

type mottatt struct {
	method string
	path   string
	body   string
}

func opptaker(t *testing.T, svar string) (*httptest.Server, *[]mottatt) {
	t.Helper()
	var kall []mottatt
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		kall = append(kall, mottatt{method: r.Method, path: r.URL.RequestURI(), body: string(b)})
		if svar != "" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(svar))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &kall
}

func TestDokarkivClient_Stier(t *testing.T) {
	srv, kall := opptaker(t, "")
	c := NewDokarkivClient(srv.URL, time.Second)
	ctx := context.Background()

	tittel := "Ny tittel"
	require.NoError(t, c.Oppdater(ctx, 1, domain.OppdaterJournalpost{Tittel: &tittel}))
	require.NoError(t, c.Ferdigstill(ctx, 1, domain.FerdigstillJournalpost{JournalforendeEnhet: "4833"}))
	require.NoError(t, c.FeilregistrerSakstilknytning(ctx, 1))
	require.NoError(t, c.OpphevFeilregistrerSakstilknytning(ctx, 1))
	require.NoError(t, c.SettStatusUtgaar(ctx, 1))
	require.NoError(t, c.OppdaterDistribusjonsinfo(ctx, 1, domain.Distribusjonsinfo{Utsendingskanal: domain.KanalIngenDistribusjon, SettStatusEkspedert: true}))

	want := []struct{ method, path string }{
		{http.MethodPut, "/rest/journalpostapi/v1/journalpost/1"},
		{http.MethodPatch, "/rest/journalpostapi/v1/journalpost/1/ferdigstill"},
		{http.MethodPatch, "/rest/journalpostapi/v1/journalpost/1/feilregistrer/feilregistrerSakstilknytning"},
		{http.MethodPatch, "/rest/journalpostapi/v1/journalpost/1/feilregistrer/opphevFeilregistrertSakstilknytning"},
		{http.MethodPatch, "/rest/journalpostapi/v1/journalpost/1/feilregistrer/settStatusUtgaar"},
		{http.MethodPatch, "/rest/journalpostapi/v1/journalpost/1/oppdaterDistribusjonsinfo"},
	}
	require.Len(t, *kall, len(want))
	for i, w := range want {
		assert.Equal(t, w.method, (*kall)[i].method)
		assert.Equal(t, w.path, (*kall)[i].path)
	}
	assert.JSONEq(t, `{"tittel":"Ny tittel"}`, (*kall)[0].body)
	assert.JSONEq(t, `{"utsendingskanal":"INGEN_DISTRIBUSJON","settStatusEkspedert":true}`, (*kall)[5].body)
}

func TestDokarkivProxyClient_KnyttTilSak(t *testing.T) {
	srv, kall := opptaker(t, `{"nyJournalpostId":"301028011"}`)
	c := NewDokarkivProxyClient(srv.URL, time.Second)

	nyID, err := c.KnyttTilSak(context.Background(), 201028011, domain.KnyttTilSak{
		Sakstype:            domain.SakstypeFagsak,
		FagsakID:            "2100002",
		Fagsaksystem:        domain.FagsaksystemBisys,
		Tema:                "BID",
		JournalforendeEnhet: "4833",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(301028011), nyID)
	assert.Equal(t, "/rest/journalpostapi/v1/journalpost/201028011/knyttTilAnnenSak", (*kall)[0].path)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte((*kall)[0].body), &body))
	assert.Equal(t, "FAGSAK", body["sakstype"])
	assert.Equal(t, "2100002", body["fagsakId"])
}

func TestDokarkivProxyClient_UgyldigSvar(t *testing.T) {
	srv, _ := opptaker(t, `{"nyJournalpostId":""}`)
	_, err := NewDokarkivProxyClient(srv.URL, time.Second).KnyttTilSak(context.Background(), 1, domain.KnyttTilSak{})
	assert.Error(t, err)
}

func TestDokarkivClient_Avvist(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Warning", "Journalpost er låst")
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	err := NewDokarkivClient(srv.URL, time.Second).SettStatusUtgaar(context.Background(), 1)
	var uerr *gateway.UpstreamError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "dokarkiv", uerr.System)
	assert.Equal(t, "Journalpost er låst", uerr.Reason)
}
