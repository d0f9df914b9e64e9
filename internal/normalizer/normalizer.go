// Package normalizer contains the string-cleaning primitives used to turn
// raw brand spreadsheet cells into uniform, dot-terminated product text.
package normalizer

import (
	"regexp"
	"sort"
	"strings"
)

// Bullet glyphs that show up in pasted marketing copy.
var bulletGlyphs = []string{
	"•", "·", "●", "⏺", "⚫",
	"⬤", "∙", "⋅", "・",
}

var (
	reUnits      = regexp.MustCompile(`(\d+)\s*([a-zA-Z]+)`)
	reManyDots   = regexp.MustCompile(`\.{2,}`)
	reSpacedDots = regexp.MustCompile(`\.\s*\.\s*\.\s*`)
	reManySpaces = regexp.MustCompile(`\s+`)
	reCellSplit  = regexp.MustCompile(`\n|\s{2,}`)
	reKwSplit    = regexp.MustCompile(`[;,|/.\-]`)
	reKwTrim     = regexp.MustCompile(`^[^\w]+|[^\w]+$`)
)

// StripBullets removes the known bullet glyphs from s.
func StripBullets(s string) string {
	for _, b := range bulletGlyphs {
		s = strings.ReplaceAll(s, b, "")
	}
	return s
}

// SquashUnits collapses "<number> <unit>" into "<number><unit>",
// e.g. "120 ml" becomes "120ml".
func SquashUnits(s string) string {
	return reUnits.ReplaceAllString(s, "$1$2")
}

// ReduceDots collapses runs of periods and period-space-period patterns
// left behind by sentence composition over empty fields.
func ReduceDots(s string) string {
	s = reManyDots.ReplaceAllString(s, ".")
	s = reSpacedDots.ReplaceAllString(s, ". ")
	return s
}

// UniqueKeywords drops candidates that are case-insensitive substrings of an
// already kept, longer candidate. Candidates are considered longest first, so
// "crema hidratante" survives and a later "crema" is dropped. Original casing
// of the kept strings is preserved. Quadratic, but keyword lists are tiny.
func UniqueKeywords(candidates []string) []string {
	sorted := make([]string, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})

	var kept []string
	for _, cand := range sorted {
		stripped := strings.TrimSpace(cand)
		if stripped == "" {
			continue
		}
		lower := strings.ToLower(stripped)
		contained := false
		for _, u := range kept {
			if strings.Contains(strings.ToLower(u), lower) {
				contained = true
				break
			}
		}
		if !contained {
			kept = append(kept, stripped)
		}
	}
	return kept
}

// JoinNonEmpty joins the non-empty fields with ". ", guarantees a trailing
// period and normalizes dot runs. All-empty input yields "", never a lone ".".
func JoinNonEmpty(fields []string) string {
	var parts []string
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			parts = append(parts, f)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return ReduceDots(strings.Join(parts, ". ") + ".")
}

// MakeKeywords turns a set of free-form keyword cells into a single
// "kw1; kw2; kw3." string. Cells are split on common separators, trimmed of
// surrounding punctuation, lowercased and deduplicated by containment.
func MakeKeywords(cells []string) string {
	var candidates []string
	for _, cell := range cells {
		if cell == "" {
			continue
		}
		for _, kw := range reKwSplit.Split(cell, -1) {
			kw = reKwTrim.ReplaceAllString(kw, "")
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				candidates = append(candidates, kw)
			}
		}
	}
	keywords := UniqueKeywords(candidates)
	if len(keywords) == 0 {
		return ""
	}
	return strings.Join(keywords, "; ") + "."
}

// CleanCell normalizes one raw spreadsheet cell: multi-line content is
// collapsed, whitespace squeezed, bullets and unit gaps removed. Periods are
// stripped entirely; sentence punctuation is reintroduced later by the brand
// composition step.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	var parts []string
	for _, part := range reCellSplit.Split(s, -1) {
		part = strings.TrimSpace(part)
		part = SquashUnits(part)
		part = strings.ReplaceAll(part, "nan", "")
		if part != "" {
			parts = append(parts, part)
		}
	}
	s = strings.Join(parts, ". ")
	s = reManyDots.ReplaceAllString(s, ".")
	s = reManySpaces.ReplaceAllString(s, " ")
	s = StripBullets(s)
	s = strings.ReplaceAll(s, ".", "")
	return strings.TrimSpace(s)
}
