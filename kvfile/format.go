package kvfile

import (
	"bytes"
	"slices"
	"strings"
)

// splitLines splits text into lines. A single trailing newline doesn't
// produce an empty last line, a trailing '\r' is removed from every line.
// Empty lines in the middle are returned as-is.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Parse converts the content of a store file to a map.
// Every line must split into exactly 2 fields on delim. If a key is
// repeated, the last line wins.
func Parse(text string, delim string) (map[string]string, error) {
	if delim == "" {
		return nil, ErrEmptyDelimiter
	}
	m := map[string]string{}
	for i, line := range splitLines(text) {
		parts := strings.Split(line, delim)
		if len(parts) != 2 {
			return nil, &ParseError{Line: i + 1, Segments: len(parts)}
		}
		m[parts[0]] = parts[1]
	}
	return m, nil
}

// Serialize is the reverse of Parse. Lines are sorted by key.
// Keys and values are written as-is, if they contain delim or a newline
// the result won't Parse back.
func Serialize(m map[string]string, delim string) []byte {
	keys := sortedKeys(m)
	n := 0
	for _, k := range keys {
		n += len(k) + len(delim) + len(m[k]) + 1
	}
	var buf bytes.Buffer
	buf.Grow(n)
	for _, k := range keys {
		buf.WriteString(k)
		buf.WriteString(delim)
		buf.WriteString(m[k])
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
