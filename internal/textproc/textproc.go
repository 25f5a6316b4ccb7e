// Package textproc holds the text normalization shared by the vectorizers and the
// corpus statistics.
package textproc

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// A terminator run only ends a sentence when followed by whitespace or the end of
// the text, so "3.5" and "1.2.3" stay intact.
var sentenceEnd = regexp.MustCompile(`[.!?…]+(?:\s+|$)`)

// abbreviations do not end a sentence even when followed by whitespace.
var abbreviations = map[string]bool{
	"z.b.": true, "d.h.": true, "u.a.": true, "z.t.": true, "u.u.": true, "o.ä.": true,
	"bzw.": true, "usw.": true, "ca.": true, "vgl.": true, "etc.": true, "evtl.": true,
	"ggf.": true, "inkl.": true, "nr.": true, "dr.": true, "prof.": true, "str.": true,
	"e.g.": true, "i.e.": true, "mr.": true, "mrs.": true, "vs.": true,
}

// Normalize composes the text to NFC and lower-cases it.
func Normalize(text string) string {
	// cases.Caser is stateful, so one per call.
	return cases.Lower(language.Und).String(norm.NFC.String(text))
}

// StripPunctuation removes Unicode punctuation and symbol runes.
func StripPunctuation(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return r
	}, text)
}

// Words lower-cases, strips punctuation and splits on whitespace.
func Words(text string) []string {
	return strings.Fields(StripPunctuation(Normalize(text)))
}

// Sentences splits raw text on terminal punctuation followed by whitespace or the end
// of the text. Known abbreviations do not end a sentence. Fragments without any letter
// or digit are dropped, so "..." alone is not a sentence.
func Sentences(text string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		if loc[1] < len(text) && endsWithAbbreviation(text[start:loc[1]]) {
			continue
		}
		if s := strings.TrimSpace(text[start:loc[1]]); hasAlnum(s) {
			out = append(out, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); hasAlnum(s) {
		out = append(out, s)
	}
	return out
}

func endsWithAbbreviation(fragment string) bool {
	fields := strings.Fields(fragment)
	if len(fields) == 0 {
		return false
	}
	return abbreviations[strings.ToLower(fields[len(fields)-1])]
}

// NGrams joins consecutive tokens into n-grams for every n in [min, max].
func NGrams(tokens []string, min, max int) []string {
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	out := make([]string, 0, len(tokens)*(max-min+1))
	for n := min; n <= max; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			if n == 1 {
				out = append(out, tokens[i])
				continue
			}
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
