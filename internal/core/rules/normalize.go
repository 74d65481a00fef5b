package rules

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/vet-records/internal/entity"
)

var (
	reNotNameChar = regexp.MustCompile(`[^` + nameChars + `'’\- ]`)
	reSpaces      = regexp.MustCompile(` {2,}`)
	reBlanks      = regexp.MustCompile(`[\t\r\n]+`)
	reWhitespace  = regexp.MustCompile(`\s{2,}`)
	reDigit       = regexp.MustCompile(`\p{N}`)
)

// accept returns the post-capture normalizer for field. A false result sends
// the extractor on to the next match or pattern.
func accept(field string) func(string) (string, bool) {
	switch field {
	case entity.FieldPetName:
		return nonEmpty(normalizeName)
	case entity.FieldOwnerName:
		return nonEmpty(normalizePersonName)
	case entity.FieldDiagnosis, entity.FieldTreatment:
		strip := stripLabel[field]
		return nonEmpty(func(v string) string { return normalizeBlock(strip, v) })
	case entity.FieldAge:
		return func(v string) (string, bool) {
			v = firstLine(v)
			return v, v != "" && reDigit.MatchString(v)
		}
	default:
		return nonEmpty(firstLine)
	}
}

func nonEmpty(fn func(string) string) func(string) (string, bool) {
	return func(v string) (string, bool) {
		v = fn(v)
		return v, v != ""
	}
}

// normalizeName keeps letters (accented Latin included), apostrophes, hyphens and spaces.
func normalizeName(v string) string {
	v = firstLine(v)
	v = reNotNameChar.ReplaceAllString(v, "")
	v = reSpaces.ReplaceAllString(v, " ")
	return strings.TrimSpace(v)
}

func normalizePersonName(v string) string {
	v = reBlanks.ReplaceAllString(v, " ")
	v = reWhitespace.ReplaceAllString(v, " ")
	return strings.TrimSpace(v)
}

func normalizeBlock(strip *regexp.Regexp, v string) string {
	v = strings.TrimSpace(v)
	if strip != nil {
		v = strip.ReplaceAllString(v, "")
	}
	return strings.TrimSpace(v)
}

func firstLine(v string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(v), "\n")
	return strings.TrimSpace(line)
}
