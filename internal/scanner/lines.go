// Package scanner holds bufio.SplitFunc helpers.
package scanner

import "bytes"

// ScanLinesKeepEnds is a bufio.SplitFunc like bufio.ScanLines, except that each
// token keeps its line terminator. A terminator is "\r\n", "\n", or a lone
// "\r". The final line has no terminator if the input does not end with one.
//
// Joining the tokens back together always reproduces the input exactly.
func ScanLinesKeepEnds(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i+1], nil
		}

		// a CR at the end of the buffer might be the start of a CRLF
		if i+1 == len(data) && !atEOF {
			return 0, nil, nil
		}

		if i+1 < len(data) && data[i+1] == '\n' {
			return i + 2, data[:i+2], nil
		}
		return i + 1, data[:i+1], nil
	}

	if atEOF {
		return len(data), data, nil
	}

	// request more data
	return 0, nil, nil
}
