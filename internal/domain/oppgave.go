package domain

// Oppgavetyper created by this service.
const (
	OppgavetypeVurderDokument   = "VUR"
	OppgavetypeBehandleDokument = "BEH_DOK"

	StatuskategoriAapen = "AAPEN"
	PrioritetNormal     = "NORM"
)

// Oppgave is a task in the task system.
type Oppgave struct {
	ID               int64  `json:"id"`
	Versjon          int    `json:"versjon"`
	Tema             string `json:"tema,omitempty"`
	Oppgavetype      string `json:"oppgavetype,omitempty"`
	Saksreferanse    string `json:"saksreferanse,omitempty"`
	JournalpostID    string `json:"journalpostId,omitempty"`
	Beskrivelse      string `json:"beskrivelse,omitempty"`
	TildeltEnhetsnr  string `json:"tildeltEnhetsnr,omitempty"`
	TilordnetRessurs string `json:"tilordnetRessurs,omitempty"`
	Status           string `json:"status,omitempty"`
}

// OppgaveSok filters open tasks.
type OppgaveSok struct {
	Tema           string
	Oppgavetype    string
	Saksreferanser []string
	JournalpostID  string
	Statuskategori string
}

// OpprettOppgave is a new task.
type OpprettOppgave struct {
	Oppgavetype          string `json:"oppgavetype"`
	Tema                 string `json:"tema"`
	Saksreferanse        string `json:"saksreferanse,omitempty"`
	JournalpostID        string `json:"journalpostId,omitempty"`
	Personident          string `json:"personident,omitempty"`
	TildeltEnhetsnr      string `json:"tildeltEnhetsnr,omitempty"`
	OpprettetAvEnhetsnr  string `json:"opprettetAvEnhetsnr,omitempty"`
	Beskrivelse          string `json:"beskrivelse,omitempty"`
	Prioritet            string `json:"prioritet"`
	AktivDato            string `json:"aktivDato"`
	FristFerdigstillelse string `json:"fristFerdigstillelse"`
}

// PatchOppgave updates an existing task. The version guards against
// concurrent edits in the task system.
type PatchOppgave struct {
	ID          int64  `json:"id"`
	Versjon     int    `json:"versjon"`
	Beskrivelse string `json:"beskrivelse,omitempty"`
	Tema        string `json:"tema,omitempty"`
}
