package extract

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var replacer = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\u00a0", " ",
	"\u200b", "",
	"\ufeff", "",
	"\x00", "",
)

// Normalize converts text to NFC, unifies line endings, removes zero-width
// characters and trailing whitespace on every line, and trims blank lines
// at both ends.
func Normalize(text string) string {
	text = norm.NFC.String(replacer.Replace(text))
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}
