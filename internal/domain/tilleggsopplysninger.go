package domain

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaksTekstLengde is the longest value the archive stores in a single
// tilleggsopplysning.
const MaksTekstLengde = 100

const (
	NokkelDistribusjonBestilt = "distribusjonBestilt"
	NokkelJournalfortAvIdent  = "journalfortAvIdent"
	NokkelJournalfortAvNavn   = "journalfortAvNavn"
	NokkelAvvikEndretTema     = "avvikEndretTema"

	returPrefix      = "retur"
	laastReturPrefix = "L"
)

var returNokkelRE = regexp.MustCompile(`^(L?)retur(\d+)_(\d{4}-\d{2}-\d{2})$`)

var (
	// ErrReturDatoFinnes is returned when a return log entry with the same
	// date already exists.
	ErrReturDatoFinnes = errors.New("returdetalj med samme dato finnes allerede")

	// ErrReturLaast is returned when editing a locked return log entry.
	ErrReturLaast = errors.New("returdetalj er låst")

	// ErrReturIkkeFunnet is returned when editing a date that is not in the log.
	ErrReturIkkeFunnet = errors.New("returdetalj finnes ikke")
)

// Tilleggsopplysning is one key/value pair of free-form metadata.
type Tilleggsopplysning struct {
	Nokkel string `json:"nokkel"`
	Verdi  string `json:"verdi"`
}

// Tilleggsopplysninger is the ordered key/value metadata list of an entry.
// Order is preserved when writing back to the archive.
type Tilleggsopplysninger []Tilleggsopplysning

// Hent returns the value for the first matching key.
func (t Tilleggsopplysninger) Hent(nokkel string) (string, bool) {
	for _, o := range t {
		if o.Nokkel == nokkel {
			return o.Verdi, true
		}
	}
	return "", false
}

// MedVerdi returns a copy where nokkel is set to verdi, replacing the first
// existing value or appending a new pair.
func (t Tilleggsopplysninger) MedVerdi(nokkel, verdi string) Tilleggsopplysninger {
	out := slices.Clone(t)
	for i := range out {
		if out[i].Nokkel == nokkel {
			out[i].Verdi = verdi
			return out
		}
	}
	return append(out, Tilleggsopplysning{Nokkel: nokkel, Verdi: verdi})
}

// Uten returns a copy without any pair keyed nokkel.
func (t Tilleggsopplysninger) Uten(nokkel string) Tilleggsopplysninger {
	out := make(Tilleggsopplysninger, 0, len(t))
	for _, o := range t {
		if o.Nokkel != nokkel {
			out = append(out, o)
		}
	}
	return out
}

// DistribusjonBestilt reports whether a distribution has been ordered.
func (t Tilleggsopplysninger) DistribusjonBestilt() bool {
	v, ok := t.Hent(NokkelDistribusjonBestilt)
	return ok && strings.EqualFold(v, "true")
}

func (t Tilleggsopplysninger) MedDistribusjonBestilt() Tilleggsopplysninger {
	return t.MedVerdi(NokkelDistribusjonBestilt, "true")
}

// JournalfortAv returns the audit identity recorded at journalføring.
func (t Tilleggsopplysninger) JournalfortAv() (Saksbehandler, bool) {
	ident, ok := t.Hent(NokkelJournalfortAvIdent)
	if !ok || ident == "" {
		return Saksbehandler{}, false
	}
	navn, _ := t.Hent(NokkelJournalfortAvNavn)
	return Saksbehandler{Ident: ident, Navn: navn}, true
}

func (t Tilleggsopplysninger) MedJournalfortAv(sb Saksbehandler) Tilleggsopplysninger {
	out := t.MedVerdi(NokkelJournalfortAvIdent, sb.Ident)
	if sb.Navn != "" {
		out = out.MedVerdi(NokkelJournalfortAvNavn, sb.Navn)
	}
	return out
}

// ReturDetalj is one entry of the return log: a date, a free text and
// whether the entry is locked against edits.
type ReturDetalj struct {
	Dato        time.Time `json:"dato"`
	Beskrivelse string    `json:"beskrivelse"`
	Laast       bool      `json:"laast"`
}

type returSegment struct {
	dato  time.Time
	laast bool
	index int
	verdi string
}

func parseReturNokkel(nokkel string) (returSegment, bool) {
	m := returNokkelRE.FindStringSubmatch(nokkel)
	if m == nil {
		return returSegment{}, false
	}
	idx, err := strconv.Atoi(m[2])
	if err != nil {
		return returSegment{}, false
	}
	dato, err := time.Parse(DatoFormat, m[3])
	if err != nil {
		return returSegment{}, false
	}
	return returSegment{dato: dato, laast: m[1] == laastReturPrefix, index: idx}, true
}

// ReturDetaljer decodes the return log sorted by date. Segments of a wrapped
// text are joined with a single space.
func (t Tilleggsopplysninger) ReturDetaljer() []ReturDetalj {
	type gruppe struct {
		detalj    ReturDetalj
		segmenter []returSegment
	}
	grupper := map[string]*gruppe{}
	for _, o := range t {
		seg, ok := parseReturNokkel(o.Nokkel)
		if !ok {
			continue
		}
		seg.verdi = o.Verdi
		key := fmt.Sprintf("%t/%s", seg.laast, seg.dato.Format(DatoFormat))
		g, found := grupper[key]
		if !found {
			g = &gruppe{detalj: ReturDetalj{Dato: seg.dato, Laast: seg.laast}}
			grupper[key] = g
		}
		g.segmenter = append(g.segmenter, seg)
	}

	out := make([]ReturDetalj, 0, len(grupper))
	for _, g := range grupper {
		sort.Slice(g.segmenter, func(i, k int) bool { return g.segmenter[i].index < g.segmenter[k].index })
		tekster := make([]string, 0, len(g.segmenter))
		for _, s := range g.segmenter {
			if s.verdi != "" {
				tekster = append(tekster, s.verdi)
			}
		}
		g.detalj.Beskrivelse = strings.Join(tekster, " ")
		out = append(out, g.detalj)
	}
	sort.SliceStable(out, func(i, k int) bool {
		if out[i].Dato.Equal(out[k].Dato) {
			return out[i].Laast && !out[k].Laast
		}
		return out[i].Dato.Before(out[k].Dato)
	})
	return out
}

// HarReturDato reports whether the log already holds an entry for the date,
// locked entries included.
func (t Tilleggsopplysninger) HarReturDato(dato time.Time) bool {
	for _, d := range t.ReturDetaljer() {
		if sammeDag(d.Dato, dato) {
			return true
		}
	}
	return false
}

// LeggTilReturDetalj appends a new, unlocked entry to the return log.
func (t Tilleggsopplysninger) LeggTilReturDetalj(dato time.Time, beskrivelse string) (Tilleggsopplysninger, error) {
	if t.HarReturDato(dato) {
		return nil, fmt.Errorf("%w: %s", ErrReturDatoFinnes, dato.Format(DatoFormat))
	}
	return append(slices.Clone(t), EncodeReturDetalj(ReturDetalj{Dato: dato, Beskrivelse: beskrivelse})...), nil
}

// EndreReturDetalj replaces the text and optionally the date of an unlocked
// entry. It is the only operation that may touch an existing date.
func (t Tilleggsopplysninger) EndreReturDetalj(original time.Time, ny ReturDetalj) (Tilleggsopplysninger, error) {
	var funnet bool
	for _, d := range t.ReturDetaljer() {
		switch {
		case sammeDag(d.Dato, original) && d.Laast:
			return nil, fmt.Errorf("%w: %s", ErrReturLaast, original.Format(DatoFormat))
		case sammeDag(d.Dato, original):
			funnet = true
		case sammeDag(d.Dato, ny.Dato):
			return nil, fmt.Errorf("%w: %s", ErrReturDatoFinnes, ny.Dato.Format(DatoFormat))
		}
	}
	if !funnet {
		return nil, fmt.Errorf("%w: %s", ErrReturIkkeFunnet, original.Format(DatoFormat))
	}

	out := make(Tilleggsopplysninger, 0, len(t))
	for _, o := range t {
		if seg, ok := parseReturNokkel(o.Nokkel); ok && !seg.laast && sammeDag(seg.dato, original) {
			continue
		}
		out = append(out, o)
	}
	ny.Laast = false
	return append(out, EncodeReturDetalj(ny)...), nil
}

// LaasReturDetaljer returns a copy where every return log entry is locked.
// Locked entries keep their value and gain the L prefix on the key.
func (t Tilleggsopplysninger) LaasReturDetaljer() Tilleggsopplysninger {
	out := slices.Clone(t)
	for i, o := range out {
		if seg, ok := parseReturNokkel(o.Nokkel); ok && !seg.laast {
			out[i].Nokkel = laastReturPrefix + o.Nokkel
		}
	}
	return out
}

// HarUlaasteReturDetaljer reports whether any return log entry is unlocked.
func (t Tilleggsopplysninger) HarUlaasteReturDetaljer() bool {
	for _, o := range t {
		if seg, ok := parseReturNokkel(o.Nokkel); ok && !seg.laast {
			return true
		}
	}
	return false
}

// EncodeReturDetalj renders one return log entry as key/value pairs,
// wrapping the text into segments of at most MaksTekstLengde characters.
func EncodeReturDetalj(d ReturDetalj) []Tilleggsopplysning {
	prefix := returPrefix
	if d.Laast {
		prefix = laastReturPrefix + returPrefix
	}
	dato := d.Dato.Format(DatoFormat)
	segmenter := DelTekst(d.Beskrivelse, MaksTekstLengde)
	if len(segmenter) == 0 {
		segmenter = []string{""}
	}
	out := make([]Tilleggsopplysning, 0, len(segmenter))
	for i, s := range segmenter {
		out = append(out, Tilleggsopplysning{Nokkel: fmt.Sprintf("%s%d_%s", prefix, i, dato), Verdi: s})
	}
	return out
}

// DelTekst normalises text to NFC, collapses whitespace and wraps it greedily
// on word boundaries into segments of at most maks characters. Words longer
// than maks are split hard.
func DelTekst(tekst string, maks int) []string {
	ord := strings.Fields(norm.NFC.String(tekst))
	if len(ord) == 0 || maks <= 0 {
		return nil
	}

	var (
		segmenter []string
		linje     strings.Builder
		lengde    int
	)
	flush := func() {
		if lengde > 0 {
			segmenter = append(segmenter, linje.String())
			linje.Reset()
			lengde = 0
		}
	}

	for _, w := range ord {
		for utf8.RuneCountInString(w) > maks {
			flush()
			r := []rune(w)
			segmenter = append(segmenter, string(r[:maks]))
			w = string(r[maks:])
		}
		n := utf8.RuneCountInString(w)
		if lengde > 0 && lengde+1+n > maks {
			flush()
		}
		if lengde > 0 {
			linje.WriteByte(' ')
			lengde++
		}
		linje.WriteString(w)
		lengde += n
	}
	flush()
	return segmenter
}

func sammeDag(a, b time.Time) bool {
	return a.Format(DatoFormat) == b.Format(DatoFormat)
}
