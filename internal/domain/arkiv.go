package domain

// Request shapes sent to the archive. Pointer and omitempty fields are only
// written when set, so each request patches exactly what the caller changed.

// OppdaterJournalpost patches an entry.
type OppdaterJournalpost struct {
	Tittel               *string              `json:"tittel,omitempty"`
	Tema                 string               `json:"tema,omitempty"`
	JournalforendeEnhet  string               `json:"journalfoerendeEnhet,omitempty"`
	AvsenderMottaker     *AvsenderMottaker    `json:"avsenderMottaker,omitempty"`
	Bruker               *Bruker              `json:"bruker,omitempty"`
	Sak                  *Sak                 `json:"sak,omitempty"`
	Dokumenter           []Dokument           `json:"dokumenter,omitempty"`
	Tilleggsopplysninger Tilleggsopplysninger `json:"tilleggsopplysninger,omitempty"`
	DatoDokument         string               `json:"datoDokument,omitempty"`
	DatoRetur            string               `json:"datoAvsReturnert,omitempty"`
}

// Tom reports whether the patch changes nothing.
func (o OppdaterJournalpost) Tom() bool {
	return o.Tittel == nil && o.Tema == "" && o.JournalforendeEnhet == "" && o.AvsenderMottaker == nil &&
		o.Bruker == nil && o.Sak == nil && len(o.Dokumenter) == 0 && o.Tilleggsopplysninger == nil &&
		o.DatoDokument == "" && o.DatoRetur == ""
}

// FerdigstillJournalpost finalises (journalfører) an entry.
type FerdigstillJournalpost struct {
	JournalforendeEnhet string `json:"journalfoerendeEnhet"`
	JournalfortAvNavn   string `json:"journalfortAvNavn,omitempty"`
	OpprettetAvNavn     string `json:"opprettetAvNavn,omitempty"`
	DatoJournal         string `json:"datoJournal,omitempty"`
}

// KnyttTilSak links a copy of an entry to another case or benefit domain.
type KnyttTilSak struct {
	Sakstype            string  `json:"sakstype"`
	FagsakID            string  `json:"fagsakId,omitempty"`
	Fagsaksystem        string  `json:"fagsaksystem,omitempty"`
	Tema                string  `json:"tema"`
	Bruker              *Bruker `json:"bruker,omitempty"`
	JournalforendeEnhet string  `json:"journalfoerendeEnhet"`
}

// Utsendingskanaler used when closing distribution.
const (
	KanalIngenDistribusjon = "INGEN_DISTRIBUSJON"
	KanalLokalUtskrift     = "L"
)

// Distribusjonsinfo records how an entry was (or was not) distributed.
type Distribusjonsinfo struct {
	Utsendingskanal     string `json:"utsendingskanal"`
	SettStatusEkspedert bool   `json:"settStatusEkspedert"`
}

// DistribuerRequest is a caller's request to distribute an outbound entry.
type DistribuerRequest struct {
	Adresse       *Adresse `json:"adresse,omitempty"`
	LokalUtskrift bool     `json:"lokalUtskrift,omitempty"`
}

// DistribuerBestilling is sent to the distribution service.
type DistribuerBestilling struct {
	JournalpostID        string   `json:"journalpostId"`
	BestillendeFagsystem string   `json:"bestillendeFagsystem"`
	DokumentProdApp      string   `json:"dokumentProdApp"`
	Adresse              *Adresse `json:"adresse,omitempty"`
}

// DistribuerResultat is the booking reference returned by the distribution service.
type DistribuerResultat struct {
	BestillingsID string `json:"bestillingsId"`
}

// EndreJournalpostKommando is a case handler's edit of an entry.
type EndreJournalpostKommando struct {
	Tittel             *string            `json:"tittel,omitempty"`
	Gjelder            *string            `json:"gjelder,omitempty"`
	GjelderType        string             `json:"gjelderType,omitempty"`
	AvsenderNavn       *string            `json:"avsenderNavn,omitempty"`
	Fagomrade          string             `json:"fagomrade,omitempty"`
	DokumentDato       string             `json:"dokumentDato,omitempty" binding:"omitempty,dato"`
	Dokumenter         []EndreDokument    `json:"endreDokumenter,omitempty" binding:"omitempty,dive"`
	TilknyttSaker      []string           `json:"tilknyttSaker,omitempty"`
	SkalJournalfores   bool               `json:"skalJournalfores"`
	EndreReturDetaljer []EndreReturDetalj `json:"endreReturDetaljer,omitempty" binding:"omitempty,dive"`
}

// EndreDokument renames one document.
type EndreDokument struct {
	DokumentInfoID string `json:"dokumentInfoId" binding:"required"`
	Tittel         string `json:"tittel" binding:"required"`
}

// EndreReturDetalj edits one unlocked return log entry. NyDato is optional.
type EndreReturDetalj struct {
	OriginalDato string `json:"originalDato" binding:"required,dato"`
	NyDato       string `json:"nyDato,omitempty" binding:"omitempty,dato"`
	Beskrivelse  string `json:"beskrivelse"`
}
