package rules

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/joseph-ayodele/vet-records/internal/entity"
)

// CaptureMode selects how much text after a label is taken.
type CaptureMode int

const (
	// SingleLine takes the rest of the label's line.
	SingleLine CaptureMode = iota
	// Block takes the rest of the label's line and the following lines up to
	// the next label-like line.
	Block
)

func (m CaptureMode) String() string {
	if m == Block {
		return "block"
	}
	return "single-line"
}

// Pattern is one entry of a field's ordered pattern list.
type Pattern struct {
	Field   string
	Locale  string
	Mode    CaptureMode
	Re      *regexp.Regexp
	labeled bool
	bare    bool
}

// A label sits at the start of a line, optionally behind a stray quote. The
// separated form needs ":", "-" or "." after it; the bare form, for OCR output
// that lost the punctuation, needs blanks and a value starting with an
// uppercase letter or digit. Every separated form of a field is tried before
// any bare form.
const (
	labelPrefix    = `(?im)^[ \t]*['"\x60\x{2018}\x{2019}]?[ \t]*(?:`
	separatedLabel = `)[ \t]*[:\-.][ \t]*([^\n]*)`
	bareLabel      = `)[ \t]+((?-i:[\p{Lu}\p{N}])[^\n]*)`
)

var (
	// A line that starts like "Word:" ends a block.
	reStopLine = regexp.MustCompile(`^[ \t]*[\p{L}\p{N}_]{1,30}[ \t]*[:\-.]`)
	// Bare-label values that are themselves "Some Label: ..." belong to another label.
	reLabelLike = regexp.MustCompile(`^[\p{L}\p{N}'’ ]{1,30}:`)
	// Bare-label values that open a section header ("PATIENT INFORMATION").
	reSectionWord = regexp.MustCompile(`(?i)^(?:information|informaci[óo]n|informations|informa[çc][õo]es|informazioni|info|details?|datos|dati|donn[ée]es|records?|report|history|historial|summary|notes|profile)\b`)
)

var blockFields = map[string]bool{
	entity.FieldDiagnosis: true,
	entity.FieldTreatment: true,
}

var (
	tables     = buildTables()
	stripLabel = buildStripLabels()
)

// Patterns returns the ordered pattern list for field. The slice must not be modified.
func Patterns(field string) []Pattern {
	return tables[field]
}

func labelRegex(labels []string, bare bool) *regexp.Regexp {
	alts := make([]string, len(labels))
	for i, l := range labels {
		alts[i] = strings.ReplaceAll(l, " ", `[ \t]+`)
	}
	suffix := separatedLabel
	if bare {
		suffix = bareLabel
	}
	return regexp.MustCompile(labelPrefix + strings.Join(alts, "|") + suffix)
}

func buildTables() map[string][]Pattern {
	out := make(map[string][]Pattern, len(entity.FieldNames))
	for _, field := range entity.FieldNames {
		mode := SingleLine
		if blockFields[field] {
			mode = Block
		}
		var list []Pattern
		for _, bare := range []bool{false, true} {
			for _, loc := range localeOrder {
				labels := fieldLabels[field][loc]
				if len(labels) == 0 {
					continue
				}
				list = append(list, Pattern{
					Field:   field,
					Locale:  loc,
					Mode:    mode,
					Re:      labelRegex(labels, bare),
					labeled: true,
					bare:    bare,
				})
			}
		}
		for _, src := range fallbacks[field] {
			list = append(list, Pattern{
				Field:  field,
				Locale: LocaleFallback,
				Mode:   SingleLine,
				Re:     regexp.MustCompile(src),
			})
		}
		out[field] = list
	}
	return out
}

// buildStripLabels compiles, per block field, a regex removing a label repeated
// at the start of a captured block.
func buildStripLabels() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(blockFields))
	for field := range blockFields {
		var alts []string
		for _, loc := range localeOrder {
			for _, l := range fieldLabels[field][loc] {
				alts = append(alts, strings.ReplaceAll(l, " ", `[ \t]+`))
			}
		}
		out[field] = regexp.MustCompile(`(?i)^(?:` + strings.Join(alts, "|") + `)[ \t]*(?:[:\-.]|\n)\s*`)
	}
	return out
}

// find returns the first usable value for the pattern in text.
func (p Pattern) find(text string, accept func(string) (string, bool)) (string, bool) {
	for _, m := range p.Re.FindAllStringSubmatchIndex(text, -1) {
		raw, ok := p.capture(text, m)
		if !ok {
			continue
		}
		if v, ok := accept(raw); ok {
			return v, true
		}
	}
	return "", false
}

func (p Pattern) capture(text string, m []int) (string, bool) {
	if !p.labeled {
		if len(m) >= 4 && m[2] >= 0 {
			return text[m[2]:m[3]], true
		}
		return text[m[0]:m[1]], true
	}

	start := m[2]
	if start < 0 {
		return "", false
	}
	line, tail, _ := strings.Cut(text[start:], "\n")
	if p.bare && (reLabelLike.MatchString(line) || isSectionHeader(text[m[0]:start+len(line)], line)) {
		return "", false
	}
	if p.Mode == SingleLine {
		return line, true
	}

	lines := []string{line}
	for tail != "" {
		var next string
		next, tail, _ = strings.Cut(tail, "\n")
		if reStopLine.MatchString(next) {
			break
		}
		lines = append(lines, next)
	}
	return strings.Join(lines, "\n"), true
}

// isSectionHeader reports whether a bare label match is really a heading: a
// line without lowercase letters, or a value opening with a section word.
func isSectionHeader(fullLine, value string) bool {
	if reSectionWord.MatchString(value) {
		return true
	}
	for _, r := range fullLine {
		if unicode.IsLower(r) {
			return false
		}
	}
	return true
}
