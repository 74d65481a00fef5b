// Package textnorm cleans extracted document text before pattern matching.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t`)
	reNBSP       = regexp.MustCompile(`\x{00A0}`)
	reZeroWidth  = regexp.MustCompile(`[\x{200B}\x{200C}\x{200D}\x{2060}\x{FEFF}]`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
)

// Normalize repairs and collapses raw extracted text.
// Invalid UTF-8 bytes are dropped and line endings become \n. Tabs and
// non-breaking spaces become plain spaces, zero-width characters are removed.
// Runs of spaces collapse to one; three or more newlines collapse to a blank line.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToValidUTF8(s, "")
	s = norm.NFC.String(s)
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, " ")
	s = reNBSP.ReplaceAllString(s, " ")
	s = reZeroWidth.ReplaceAllString(s, "")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// IsBlank reports whether s has no visible content once normalized.
func IsBlank(s string) bool {
	return Normalize(s) == ""
}
