// Package domain defines the journal entry aggregate read from the archive,
// the deviation ("avvik") vocabulary and the pure rules that decide which
// deviations an entry accepts.
//
// Every value in this package is request scoped. A Journalpost is fetched,
// changed locally through copy-returning methods and written back through a
// gateway; nothing here is persisted by this service.
package domain

import (
	"fmt"
	"slices"
	"strings"
)

// JoarkPrefix is the archive system prefix used in external identifiers
// ("JOARK-201028011").
const JoarkPrefix = "JOARK"

// Journalstatus is the lifecycle state of a journal entry.
type Journalstatus string

const (
	StatusMottatt        Journalstatus = "MOTTATT"
	StatusUnderArbeid    Journalstatus = "UNDER_ARBEID"
	StatusJournalfort    Journalstatus = "JOURNALFOERT"
	StatusFerdigstilt    Journalstatus = "FERDIGSTILT"
	StatusEkspedert      Journalstatus = "EKSPEDERT"
	StatusFeilregistrert Journalstatus = "FEILREGISTRERT"
	StatusUtgaar         Journalstatus = "UTGAAR"
	StatusReservert      Journalstatus = "RESERVERT"
)

// Journalposttype is the direction of a journal entry.
type Journalposttype string

const (
	TypeInngaende Journalposttype = "I"
	TypeUtgaende  Journalposttype = "U"
	TypeNotat     Journalposttype = "N"
)

// Benefit domains owned by bidrag.
const (
	TemaBID = "BID"
	TemaFAR = "FAR"
)

// Channels and creators that mark an entry as owned by the contact centre.
const (
	KanalNavNoChat        = "NAV_NO_CHAT"
	BrevkodeMeldingskjede = "CRM_MELDINGSKJEDE"
)

var nksOpprettere = []string{"NKS", "Salesforce"}

// Sakstyper understood by the archive.
const (
	SakstypeFagsak      = "FAGSAK"
	SakstypeGenerellSak = "GENERELL_SAK"
	FagsaksystemBisys   = "BISYS"
)

// Identifier types for Bruker and AvsenderMottaker.
const (
	IDTypeFnr    = "FNR"
	IDTypeAktoer = "AKTOERID"
	IDTypeOrgnr  = "ORGNR"
)

// Datotyper in RelevantDato.
const (
	DatotypeJournalfort = "DATO_JOURNALFOERT"
	DatotypeRetur       = "DATO_AVS_RETUR"
	DatotypeDokument    = "DATO_DOKUMENT"
	DatotypeRegistrert  = "DATO_REGISTRERT"
)

// ErBidragTema reports whether tema is one of the bidrag benefit domains.
func ErBidragTema(tema string) bool {
	return tema == TemaBID || tema == TemaFAR
}

// ArkivID formats the external identifier of an archive entry.
func ArkivID(id int64) string {
	return fmt.Sprintf("%s-%d", JoarkPrefix, id)
}

// Dokument is one document attached to a journal entry.
type Dokument struct {
	DokumentInfoID string `json:"dokumentInfoId"`
	Tittel         string `json:"tittel,omitempty"`
	Brevkode       string `json:"brevkode,omitempty"`
}

// Adresse is a postal address.
type Adresse struct {
	Adresselinje1 string `json:"adresselinje1,omitempty"`
	Adresselinje2 string `json:"adresselinje2,omitempty"`
	Adresselinje3 string `json:"adresselinje3,omitempty"`
	Postnummer    string `json:"postnummer,omitempty"`
	Poststed      string `json:"poststed,omitempty"`
	Land          string `json:"land,omitempty"`
}

// Gyldig reports whether the address can be used for postal distribution.
// Norwegian addresses need a postal code, foreign ones a first address line.
func (a *Adresse) Gyldig() bool {
	if a == nil || strings.TrimSpace(a.Land) == "" {
		return false
	}
	if strings.EqualFold(a.Land, "NO") {
		return strings.TrimSpace(a.Postnummer) != ""
	}
	return strings.TrimSpace(a.Adresselinje1) != ""
}

// AvsenderMottaker is the sender of an inbound or recipient of an outbound entry.
type AvsenderMottaker struct {
	ID      string   `json:"id,omitempty"`
	IDType  string   `json:"idType,omitempty"`
	Navn    string   `json:"navn,omitempty"`
	Adresse *Adresse `json:"adresse,omitempty"`
}

// Bruker is the person the entry concerns ("gjelder").
type Bruker struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
}

// Sak is the primary case link of an entry.
type Sak struct {
	FagsakID     string `json:"fagsakId,omitempty"`
	Fagsaksystem string `json:"fagsaksystem,omitempty"`
	Sakstype     string `json:"sakstype,omitempty"`
	Tema         string `json:"tema,omitempty"`
}

// RelevantDato is a typed date on the entry (yyyy-MM-dd or RFC 3339).
type RelevantDato struct {
	Dato     string `json:"dato"`
	Datotype string `json:"datotype"`
}

// Journalpost is the journal entry aggregate.
//
// Methods never mutate the receiver; the Med* helpers return an updated copy
// so a handler can keep the fetched state and the state it is writing side by
// side.
type Journalpost struct {
	JournalpostID        int64                `json:"journalpostId"`
	Journalposttype      Journalposttype      `json:"journalposttype"`
	Journalstatus        Journalstatus        `json:"journalstatus"`
	Tema                 string               `json:"tema,omitempty"`
	Tittel               string               `json:"tittel,omitempty"`
	Kanal                string               `json:"kanal,omitempty"`
	JournalforendeEnhet  string               `json:"journalforendeEnhet,omitempty"`
	OpprettetAvNavn      string               `json:"opprettetAvNavn,omitempty"`
	JournalfortAvNavn    string               `json:"journalfortAvNavn,omitempty"`
	AvsenderMottaker     *AvsenderMottaker    `json:"avsenderMottaker,omitempty"`
	Bruker               *Bruker              `json:"bruker,omitempty"`
	Sak                  *Sak                 `json:"sak,omitempty"`
	TilknyttedeSaker     []string             `json:"tilknyttedeSaker,omitempty"`
	Dokumenter           []Dokument           `json:"dokumenter,omitempty"`
	Tilleggsopplysninger Tilleggsopplysninger `json:"tilleggsopplysninger,omitempty"`
	RelevanteDatoer      []RelevantDato       `json:"relevanteDatoer,omitempty"`
}

// ArkivID returns the external identifier of the entry.
func (j Journalpost) ArkivID() string { return ArkivID(j.JournalpostID) }

func (j Journalpost) ErInngaende() bool { return j.Journalposttype == TypeInngaende }
func (j Journalpost) ErUtgaende() bool  { return j.Journalposttype == TypeUtgaende }
func (j Journalpost) ErNotat() bool     { return j.Journalposttype == TypeNotat }

// ErUnderBehandling reports whether the entry is received but not yet journalført.
func (j Journalpost) ErUnderBehandling() bool {
	return j.Journalstatus == StatusMottatt || j.Journalstatus == StatusUnderArbeid
}

// ErJournalfort reports whether the entry is in the journalført family
// (JOURNALFOERT, FERDIGSTILT or EKSPEDERT).
func (j Journalpost) ErJournalfort() bool {
	switch j.Journalstatus {
	case StatusJournalfort, StatusFerdigstilt, StatusEkspedert:
		return true
	}
	return false
}

// ErAvsluttet reports whether the entry is in a terminal state where no
// deviation applies.
func (j Journalpost) ErAvsluttet() bool {
	return j.Journalstatus == StatusFeilregistrert || j.Journalstatus == StatusUtgaar
}

func (j Journalpost) ErFeilregistrert() bool { return j.Journalstatus == StatusFeilregistrert }
func (j Journalpost) ErFerdigstilt() bool    { return j.Journalstatus == StatusFerdigstilt }

// ErSkannet reports whether the entry arrived through a scanning channel.
func (j Journalpost) ErSkannet() bool {
	return strings.HasPrefix(j.Kanal, "SKAN_")
}

// HarSak reports whether the entry is linked to a case.
func (j Journalpost) HarSak() bool {
	return j.Sak != nil && j.Sak.FagsakID != ""
}

// Saksnummer returns the primary case number or "".
func (j Journalpost) Saksnummer() string {
	if j.Sak == nil {
		return ""
	}
	return j.Sak.FagsakID
}

// Saker returns the primary case followed by all linked cases, deduplicated.
func (j Journalpost) Saker() []string {
	out := make([]string, 0, 1+len(j.TilknyttedeSaker))
	if s := j.Saksnummer(); s != "" {
		out = append(out, s)
	}
	for _, s := range j.TilknyttedeSaker {
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

// ErTilknyttetSak reports whether saksnummer is the primary or a linked case.
func (j Journalpost) ErTilknyttetSak(saksnummer string) bool {
	return slices.Contains(j.Saker(), saksnummer)
}

// Gjelder returns the subject person identifier or "".
func (j Journalpost) Gjelder() string {
	if j.Bruker == nil {
		return ""
	}
	return j.Bruker.ID
}

func (j Journalpost) HarGjelder() bool { return j.Gjelder() != "" }

// HarMottakerID reports whether the recipient carries an identifier.
func (j Journalpost) HarMottakerID() bool {
	return j.AvsenderMottaker != nil && j.AvsenderMottaker.ID != ""
}

// MottakerErPerson reports whether the recipient is identified by a national
// identity number.
func (j Journalpost) MottakerErPerson() bool {
	if !j.HarMottakerID() {
		return false
	}
	switch j.AvsenderMottaker.IDType {
	case IDTypeFnr:
		return true
	case "":
		return len(j.AvsenderMottaker.ID) == 11
	default:
		return false
	}
}

// MottakerAdresse returns the recipient address stored on the entry, if any.
func (j Journalpost) MottakerAdresse() *Adresse {
	if j.AvsenderMottaker == nil {
		return nil
	}
	return j.AvsenderMottaker.Adresse
}

// ErOpprettetAvNKS reports whether the entry was created by the contact
// centre. Such entries are never advanced by the deviation engine and never
// published.
func (j Journalpost) ErOpprettetAvNKS() bool {
	if j.Kanal == KanalNavNoChat {
		return true
	}
	if slices.Contains(nksOpprettere, j.OpprettetAvNavn) {
		return true
	}
	for _, d := range j.Dokumenter {
		if d.Brevkode == BrevkodeMeldingskjede {
			return true
		}
	}
	return false
}

// KanTilknytteSaker reports whether additional cases may be linked.
func (j Journalpost) KanTilknytteSaker() bool {
	return j.ErJournalfort() && j.HarSak() && !j.ErNotat()
}

// DokumentIDer returns the document ids in entry order.
func (j Journalpost) DokumentIDer() []string {
	ids := make([]string, 0, len(j.Dokumenter))
	for _, d := range j.Dokumenter {
		ids = append(ids, d.DokumentInfoID)
	}
	return ids
}

// HarSammeDokumenter reports whether both entries reference the same set of
// documents. Two entries sharing documents are copies of one another in the
// archive.
func (j Journalpost) HarSammeDokumenter(other Journalpost) bool {
	a, b := j.DokumentIDer(), other.DokumentIDer()
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

// Dato returns the first relevant date of the given type.
func (j Journalpost) Dato(datotype string) (string, bool) {
	for _, d := range j.RelevanteDatoer {
		if d.Datotype == datotype {
			return d.Dato, true
		}
	}
	return "", false
}

// Clone returns a deep copy of the entry.
func (j Journalpost) Clone() Journalpost {
	c := j
	if j.AvsenderMottaker != nil {
		am := *j.AvsenderMottaker
		if am.Adresse != nil {
			a := *am.Adresse
			am.Adresse = &a
		}
		c.AvsenderMottaker = &am
	}
	if j.Bruker != nil {
		b := *j.Bruker
		c.Bruker = &b
	}
	if j.Sak != nil {
		s := *j.Sak
		c.Sak = &s
	}
	c.TilknyttedeSaker = slices.Clone(j.TilknyttedeSaker)
	c.Dokumenter = slices.Clone(j.Dokumenter)
	c.Tilleggsopplysninger = slices.Clone(j.Tilleggsopplysninger)
	c.RelevanteDatoer = slices.Clone(j.RelevanteDatoer)
	return c
}

// MedSak returns a copy linked to saksnummer as primary case.
func (j Journalpost) MedSak(saksnummer string) Journalpost {
	c := j.Clone()
	c.Sak = &Sak{FagsakID: saksnummer, Fagsaksystem: FagsaksystemBisys, Sakstype: SakstypeFagsak, Tema: j.Tema}
	return c
}

// MedTilknyttetSak returns a copy with saksnummer added to the linked cases.
func (j Journalpost) MedTilknyttetSak(saksnummer string) Journalpost {
	c := j.Clone()
	if !c.ErTilknyttetSak(saksnummer) {
		c.TilknyttedeSaker = append(c.TilknyttedeSaker, saksnummer)
	}
	return c
}

// MedStatus returns a copy with a new status.
func (j Journalpost) MedStatus(s Journalstatus) Journalpost {
	c := j.Clone()
	c.Journalstatus = s
	return c
}

// MedTilleggsopplysninger returns a copy with replaced tilleggsopplysninger.
func (j Journalpost) MedTilleggsopplysninger(t Tilleggsopplysninger) Journalpost {
	c := j.Clone()
	c.Tilleggsopplysninger = slices.Clone(t)
	return c
}

// TilknyttetJournalpost is an entry sharing documents with another entry,
// typically the same document journalført on a second case.
type TilknyttetJournalpost struct {
	JournalpostID int64         `json:"journalpostId"`
	Journalstatus Journalstatus `json:"journalstatus"`
	Saksnummer    string        `json:"saksnummer,omitempty"`
}

// Saksbehandler identifies the case handler behind a change.
type Saksbehandler struct {
	Ident string `json:"ident"`
	Navn  string `json:"navn,omitempty"`
}

// SystemSaksbehandler is recorded when no human case handler is known.
var SystemSaksbehandler = Saksbehandler{Ident: "bidrag-dokument-arkiv", Navn: "Automatisk jobb"}

// Person is the identity registry view of a person.
type Person struct {
	Ident    string `json:"ident"`
	AktoerID string `json:"aktoerId,omitempty"`
	Navn     string `json:"navn,omitempty"`
}
