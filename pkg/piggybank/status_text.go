package piggybank

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// statusAliases maps normalized status spellings seen upstream to a status.
// Keys are lowercase, without diacritics, with '-' and spaces replaced by '_'.
var statusAliases = map[string]Status{
	"completed": Completed,
	"complete":  Completed,
	"concluido": Completed,
	"concluida": Completed,

	"on_track": OnTrack,
	"ontrack":  OnTrack,
	"no_prazo": OnTrack,
	"em_dia":   OnTrack,

	"behind":   Behind,
	"atrasado": Behind,
	"atrasada": Behind,

	"overdue": Overdue,
	"vencido": Overdue,
	"vencida": Overdue,
}

var statusLabels = map[Status]string{
	OnTrack:   "No prazo",
	Behind:    "Atrasado",
	Completed: "Concluído",
	Overdue:   "Vencido",
}

// ParseStatus resolves a status spelling. ok is false for unrecognized input, in which case ON_TRACK is
// returned so that the caller can still count the goal.
func ParseStatus(s string) (status Status, ok bool) {
	status, ok = statusAliases[foldText(s)]
	if !ok {
		return OnTrack, false
	}
	return status, true
}

// Label is the display text of the status.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// foldText lowercases s, strips diacritics and turns separators into underscores.
func foldText(s string) string {
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripper, s)
	if err != nil {
		stripped = s
	}
	stripped = strings.ToLower(strings.TrimSpace(stripped))
	return strings.NewReplacer("-", "_", " ", "_").Replace(stripped)
}
