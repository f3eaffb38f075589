// Package names rewrites the name fields of a chain's three records into
// comparable forms before distances are computed.
//
// All rewrites are heuristic. A value that matches no rule is left alone.
package names

import (
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/agenthands/kinlink/internal/core/model"
)

// Patronymic endings as they appear abbreviated in the register, mapped to
// their full form. Longer endings are listed first.
var patronymics = []struct {
	short, full string
}{
	{"dotr", "dotter"},
	{"dtr", "dotter"},
	{"d:r", "dotter"},
	{"dr", "dotter"},
	{"s:n", "son"},
	{"sn", "son"},
}

type Normalizer struct{}

func New() *Normalizer {
	return &Normalizer{}
}

// NormaliseTriple rewrites the names of t's records in place. Callers pass
// clones when the records are shared.
func (n *Normalizer) NormaliseTriple(t model.Triple) {
	records := t.Records()
	folder := cases.Fold()
	for f := model.NameField(0); f < model.NumNameFields; f++ {
		var v [3]string
		for i, r := range records {
			v[i] = clean(folder.String(r.Names()[f]))
			if f.IsSurname() {
				v[i] = ExpandPatronymic(v[i])
			}
		}
		reconcileInitials(&v)
		reduceTokens(&v)
		for i, r := range records {
			r.Names()[f] = v[i]
		}
	}
}

// ExpandPatronymic replaces an abbreviated "-dotter" or "-son" ending.
func ExpandPatronymic(name string) string {
	tokens := strings.Fields(name)
	for i, tok := range tokens {
		for _, p := range patronymics {
			stem, ok := strings.CutSuffix(tok, p.short)
			if ok && utf8.RuneCountInString(stem) >= 2 {
				tokens[i] = stem + p.full
				break
			}
		}
	}
	return strings.Join(tokens, " ")
}

// StripParenthetical removes a trailing "(...)" annotation.
func StripParenthetical(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, ")") {
		return s
	}
	if i := strings.LastIndexByte(s, '('); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

func clean(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(StripParenthetical(s)), " ")
}

func initial(s string) (rune, bool) {
	s = strings.TrimSuffix(s, ".")
	if utf8.RuneCountInString(s) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, true
}

func startsWith(s string, r rune) bool {
	first, _ := utf8.DecodeRuneInString(s)
	return s != "" && first == r
}

// reconcileInitials handles one value reduced to an initial. When the other
// two agree on a full form starting with that initial, the initial takes
// the full form. When they disagree but share the initial, all three are
// cut down to it.
func reconcileInitials(v *[3]string) {
	for i := range v {
		letter, ok := initial(v[i])
		if !ok {
			continue
		}
		j, k := (i+1)%3, (i+2)%3
		if !startsWith(v[j], letter) || !startsWith(v[k], letter) {
			continue
		}
		if _, short := initial(v[j]); !short && v[j] == v[k] {
			v[i] = v[j]
			return
		}
		s := string(letter)
		v[i], v[j], v[k] = s, s, s
		return
	}
}

// reduceTokens shortens a multi-token value to the single token a sibling
// value carries, when that token occurs in it.
func reduceTokens(v *[3]string) {
	for i := range v {
		tokens := strings.Fields(v[i])
		if len(tokens) < 2 {
			continue
		}
		for j := range v {
			if j == i || strings.Contains(v[j], " ") || v[j] == "" {
				continue
			}
			if slices.Contains(tokens, v[j]) {
				v[i] = v[j]
				break
			}
		}
	}
}
