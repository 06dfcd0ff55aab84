package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// AvvikType is a named deviation a case handler can request on an entry.
type AvvikType string

const (
	AvvikOverforTilAnnenEnhet  AvvikType = "OVERFOR_TIL_ANNEN_ENHET"
	AvvikTrekkJournalpost      AvvikType = "TREKK_JOURNALPOST"
	AvvikEndreFagomrade        AvvikType = "ENDRE_FAGOMRADE"
	AvvikSendTilFagomrade      AvvikType = "SEND_TIL_FAGOMRADE"
	AvvikFeilforeSak           AvvikType = "FEILFORE_SAK"
	AvvikRegistrerRetur        AvvikType = "REGISTRER_RETUR"
	AvvikBestillNyDistribusjon AvvikType = "BESTILL_NY_DISTRIBUSJON"
	AvvikManglerAdresse        AvvikType = "MANGLER_ADRESSE"
	AvvikSlettJournalpost      AvvikType = "SLETT_JOURNALPOST"
	AvvikBestillOriginal       AvvikType = "BESTILL_ORIGINAL"
	AvvikBestillReskanning     AvvikType = "BESTILL_RESKANNING"
	AvvikBestillSplitting      AvvikType = "BESTILL_SPLITTING"

	// Known to case handlers but not handled by the archive.
	AvvikArkiverJournalpost      AvvikType = "ARKIVERE_JOURNALPOST"
	AvvikInngTilUtgDokument      AvvikType = "INNG_TIL_UTG_DOKUMENT"
	AvvikKopierFraAnnenFagomrade AvvikType = "KOPIER_FRA_ANNEN_FAGOMRADE"
)

// ErMarkering reports whether the type only marks the entry and triggers no
// archive mutation. Markers are accepted in any non-terminal state.
func (t AvvikType) ErMarkering() bool {
	switch t {
	case AvvikSendTilFagomrade, AvvikBestillOriginal, AvvikBestillReskanning, AvvikBestillSplitting:
		return true
	}
	return false
}

// Detail keys read from AvvikHendelse.Detaljer.
const (
	DetaljEnhetsnummer  = "nyttEnhetsnummer"
	DetaljFagomrade     = "fagomrade"
	DetaljReturDato     = "returDato"
	DetaljAdresselinje1 = "adresselinje1"
	DetaljAdresselinje2 = "adresselinje2"
	DetaljAdresselinje3 = "adresselinje3"
	DetaljPostnummer    = "postnummer"
	DetaljPoststed      = "poststed"
	DetaljLand          = "land"
)

// DatoFormat is the wire format of dates in requests and tilleggsopplysninger.
const DatoFormat = "2006-01-02"

var (
	// ErrAvvikIkkeStottet is returned for unknown or unimplemented deviation types.
	ErrAvvikIkkeStottet = errors.New("avvikstype er ikke støttet")

	// ErrUgyldigAvvik is returned when the deviation is not legal for the entry
	// or violates a type-specific rule.
	ErrUgyldigAvvik = errors.New("ugyldig avvik")

	// ErrManglerDetalj is returned when a required detail is absent.
	ErrManglerDetalj = errors.New("mangler detalj")
)

// AvvikHendelse is a deviation request as sent by a case handler.
type AvvikHendelse struct {
	AvvikType    string            `json:"avvikType" binding:"required" example:"OVERFOR_TIL_ANNEN_ENHET"`
	Enhetsnummer string            `json:"enhetsnummer,omitempty" example:"4806"`
	Beskrivelse  string            `json:"beskrivelse,omitempty"`
	Saksnummer   string            `json:"saksnummer,omitempty"`
	Detaljer     map[string]string `json:"detaljer,omitempty"`
}

func (h AvvikHendelse) detalj(key string) string {
	return strings.TrimSpace(h.Detaljer[key])
}

// Avvik is a parsed deviation. The concrete type selects the handler.
type Avvik interface {
	Type() AvvikType
}

// OverforTilAnnenEnhet moves an entry to another unit.
type OverforTilAnnenEnhet struct {
	NyttEnhetsnummer string
}

// EndreFagomrade moves an entry to another benefit domain.
type EndreFagomrade struct {
	NyttTema    string
	Beskrivelse string
}

// TrekkJournalpost withdraws an inbound entry.
type TrekkJournalpost struct {
	Beskrivelse string
}

// FeilforeSak marks the case link of an entry as an error.
type FeilforeSak struct{}

// RegistrerRetur records returned mail.
type RegistrerRetur struct {
	Dato        time.Time
	Beskrivelse string
}

// BestillNyDistribusjon re-sends an outbound entry to a new address.
type BestillNyDistribusjon struct {
	Adresse Adresse
}

// ManglerAdresse closes distribution of an outbound entry that cannot be sent.
type ManglerAdresse struct{}

// SlettJournalpost voids an outbound draft.
type SlettJournalpost struct{}

// Markering is a deviation that is only logged.
type Markering struct {
	Avvikstype  AvvikType
	Beskrivelse string
}

func (OverforTilAnnenEnhet) Type() AvvikType  { return AvvikOverforTilAnnenEnhet }
func (EndreFagomrade) Type() AvvikType        { return AvvikEndreFagomrade }
func (TrekkJournalpost) Type() AvvikType      { return AvvikTrekkJournalpost }
func (FeilforeSak) Type() AvvikType           { return AvvikFeilforeSak }
func (RegistrerRetur) Type() AvvikType        { return AvvikRegistrerRetur }
func (BestillNyDistribusjon) Type() AvvikType { return AvvikBestillNyDistribusjon }
func (ManglerAdresse) Type() AvvikType        { return AvvikManglerAdresse }
func (SlettJournalpost) Type() AvvikType      { return AvvikSlettJournalpost }
func (m Markering) Type() AvvikType           { return m.Avvikstype }

// ParseAvvik validates a request and turns it into a typed Avvik. It never
// touches the entry; state dependent rules are checked by the caller.
func ParseAvvik(h AvvikHendelse) (Avvik, error) {
	t := AvvikType(strings.ToUpper(strings.TrimSpace(h.AvvikType)))
	beskrivelse := strings.TrimSpace(h.Beskrivelse)

	switch t {
	case AvvikOverforTilAnnenEnhet:
		enhet := h.detalj(DetaljEnhetsnummer)
		if enhet == "" {
			return nil, fmt.Errorf("%w: %s", ErrManglerDetalj, DetaljEnhetsnummer)
		}
		return OverforTilAnnenEnhet{NyttEnhetsnummer: enhet}, nil

	case AvvikEndreFagomrade:
		tema := strings.ToUpper(h.detalj(DetaljFagomrade))
		if tema == "" {
			return nil, fmt.Errorf("%w: %s", ErrManglerDetalj, DetaljFagomrade)
		}
		return EndreFagomrade{NyttTema: tema, Beskrivelse: beskrivelse}, nil

	case AvvikTrekkJournalpost:
		if utf8.RuneCountInString(beskrivelse) > MaksTekstLengde {
			return nil, fmt.Errorf("%w: beskrivelse kan ikke være lengre enn %d tegn", ErrManglerDetalj, MaksTekstLengde)
		}
		return TrekkJournalpost{Beskrivelse: beskrivelse}, nil

	case AvvikFeilforeSak:
		return FeilforeSak{}, nil

	case AvvikRegistrerRetur:
		raw := h.detalj(DetaljReturDato)
		if raw == "" {
			return nil, fmt.Errorf("%w: %s", ErrManglerDetalj, DetaljReturDato)
		}
		dato, err := time.Parse(DatoFormat, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s har ugyldig format %q", ErrManglerDetalj, DetaljReturDato, raw)
		}
		return RegistrerRetur{Dato: dato, Beskrivelse: beskrivelse}, nil

	case AvvikBestillNyDistribusjon:
		adr := Adresse{
			Adresselinje1: h.detalj(DetaljAdresselinje1),
			Adresselinje2: h.detalj(DetaljAdresselinje2),
			Adresselinje3: h.detalj(DetaljAdresselinje3),
			Postnummer:    h.detalj(DetaljPostnummer),
			Poststed:      h.detalj(DetaljPoststed),
			Land:          strings.ToUpper(h.detalj(DetaljLand)),
		}
		if !adr.Gyldig() {
			return nil, fmt.Errorf("%w: %w: adresse", ErrUgyldigAvvik, ErrManglerDetalj)
		}
		return BestillNyDistribusjon{Adresse: adr}, nil

	case AvvikManglerAdresse:
		return ManglerAdresse{}, nil

	case AvvikSlettJournalpost:
		return SlettJournalpost{}, nil

	case AvvikSendTilFagomrade, AvvikBestillOriginal, AvvikBestillReskanning, AvvikBestillSplitting:
		return Markering{Avvikstype: t, Beskrivelse: beskrivelse}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrAvvikIkkeStottet, h.AvvikType)
}

// TilAvvik returns the deviations legal for the entry in its current state.
// The result is derived from state on every call and never cached.
func (j Journalpost) TilAvvik() []AvvikType {
	avvik := make([]AvvikType, 0, 6)

	if j.ErAvsluttet() {
		return avvik
	}

	if j.ErUnderBehandling() {
		if j.ErInngaende() {
			return append(avvik, AvvikOverforTilAnnenEnhet, AvvikTrekkJournalpost, AvvikEndreFagomrade)
		}
		if j.ErUtgaende() && j.Journalstatus == StatusUnderArbeid {
			return append(avvik, AvvikSlettJournalpost)
		}
		return avvik
	}

	if !j.ErJournalfort() {
		return avvik
	}

	if j.HarSak() {
		avvik = append(avvik, AvvikFeilforeSak)
	}
	if j.ErInngaende() {
		avvik = append(avvik, AvvikEndreFagomrade, AvvikSendTilFagomrade)
		if j.ErSkannet() {
			avvik = append(avvik, AvvikBestillOriginal, AvvikBestillReskanning, AvvikBestillSplitting)
		}
	}
	if j.ErUtgaende() {
		avvik = append(avvik, AvvikRegistrerRetur, AvvikBestillNyDistribusjon, AvvikManglerAdresse)
	}
	return avvik
}

// AksepterAvvik reports whether the entry accepts the deviation type.
// Marker types are accepted in any non-terminal state even when TilAvvik
// does not advertise them.
func (j Journalpost) AksepterAvvik(t AvvikType) bool {
	if t.ErMarkering() && !j.ErAvsluttet() {
		return true
	}
	return slices.Contains(j.TilAvvik(), t)
}
