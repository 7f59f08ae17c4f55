package compose

import (
	"bufio"
	"strings"
	"unicode"

	"github.com/zostay/eletter/internal/scanner"
)

// DefaultQuotePrefix is the usual prefix for quoted reply text.
const DefaultQuotePrefix = "> "

// ReplyQuote quotes text for a reply by putting prefix in front of every line.
// A line that already starts with the prefix gets the prefix with trailing
// whitespace removed, so "> quoted" becomes ">> quoted". The result always
// ends with a line ending and the empty string counts as one empty line.
//
// Lines may end in "\r\n", "\n", or "\r" and the endings are kept.
func ReplyQuote(s, prefix string) string {
	if s == "" {
		s = "\n"
	}

	short := strings.TrimRightFunc(prefix, unicode.IsSpace)

	var b strings.Builder
	sc := bufio.NewScanner(strings.NewReader(s))
	sc.Buffer(nil, len(s)+1)
	sc.Split(scanner.ScanLinesKeepEnds)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, prefix) {
			b.WriteString(short)
		} else {
			b.WriteString(prefix)
		}
		b.WriteString(line)
	}

	q := b.String()
	if !strings.HasSuffix(q, "\n") && !strings.HasSuffix(q, "\r") {
		q += "\n"
	}
	return q
}
