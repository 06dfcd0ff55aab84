package domain

import "time"

// HendelseEndring is the only event type emitted by this service.
const HendelseEndring = "ENDRING"

// JournalpostHendelse is the outbound change event published after every
// successful mutation. It is keyed by the external entry id on the topic.
type JournalpostHendelse struct {
	JournalpostID     string          `json:"journalpostId"`
	HendelseType      string          `json:"hendelseType"`
	AktorID           string          `json:"aktorId,omitempty"`
	Fnr               string          `json:"fnr,omitempty"`
	Tema              string          `json:"tema,omitempty"`
	Enhet             string          `json:"enhet,omitempty"`
	Journalstatus     string          `json:"journalstatus,omitempty"`
	Journalposttype   string          `json:"journalposttype,omitempty"`
	Tittel            string          `json:"tittel,omitempty"`
	Sakstilknytninger []string        `json:"sakstilknytninger"`
	Dokumentdato      string          `json:"dokumentDato,omitempty"`
	JournalfortDato   string          `json:"journalfortDato,omitempty"`
	Sporing           HendelseSporing `json:"sporing"`
	Metadata          HendelseMeta    `json:"metadata"`
}

// HendelseSporing records who caused the change.
type HendelseSporing struct {
	Brukerident        string `json:"brukerident,omitempty"`
	SaksbehandlersNavn string `json:"saksbehandlersNavn,omitempty"`
	Enhetsnummer       string `json:"enhetsnummer,omitempty"`
	CorrelationID      string `json:"correlationId,omitempty"`
}

// HendelseMeta identifies the event itself.
type HendelseMeta struct {
	HendelseID string    `json:"hendelseId"`
	Opprettet  time.Time `json:"opprettet"`
	Kilde      string    `json:"kilde"`
}

// NyJournalpostHendelse builds the event body from an entry. Identity
// fields are filled in by the publisher.
func NyJournalpostHendelse(j Journalpost, enhet string) JournalpostHendelse {
	h := JournalpostHendelse{
		JournalpostID:     j.ArkivID(),
		HendelseType:      HendelseEndring,
		Tema:              j.Tema,
		Enhet:             enhet,
		Journalstatus:     string(j.Journalstatus),
		Journalposttype:   string(j.Journalposttype),
		Tittel:            j.Tittel,
		Sakstilknytninger: j.Saker(),
	}
	if h.Enhet == "" {
		h.Enhet = j.JournalforendeEnhet
	}
	if j.Bruker != nil && j.Bruker.Type != IDTypeAktoer {
		h.Fnr = j.Bruker.ID
	}
	if j.Bruker != nil && j.Bruker.Type == IDTypeAktoer {
		h.AktorID = j.Bruker.ID
	}
	if d, ok := j.Dato(DatotypeDokument); ok {
		h.Dokumentdato = kortDato(d)
	}
	if d, ok := j.Dato(DatotypeJournalfort); ok {
		h.JournalfortDato = kortDato(d)
	}
	return h
}

func kortDato(s string) string {
	if len(s) >= len(DatoFormat) {
		return s[:len(DatoFormat)]
	}
	return s
}
