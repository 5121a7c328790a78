package kvfile

import (
	"errors"
	"fmt"
	"testing"

	"github.com/alecthomas/assert"
)

var f = fmt.Sprintf

func TestParse(t *testing.T) {
	tests := []struct {
		text  string
		delim string
		exp   map[string]string
	}{
		{"", "=", map[string]string{}},
		{"a=1\nb=2\n", "=", map[string]string{"a": "1", "b": "2"}},
		{"a=1\nb=2", "=", map[string]string{"a": "1", "b": "2"}},
		{"a=1\r\nb=2\r\n", "=", map[string]string{"a": "1", "b": "2"}},
		{"a=\n=b\n", "=", map[string]string{"a": "", "": "b"}},
		{"k=v1\nk=v2\n", "=", map[string]string{"k": "v2"}},
		{"name::John Doe\n", "::", map[string]string{"name": "John Doe"}},
		{"k\tv w\n", "\t", map[string]string{"k": "v w"}},
		// split is not overlapping, "===" is "==" followed by "="
		{"a===b\n", "==", map[string]string{"a": "=b"}},
	}
	for _, test := range tests {
		got, err := Parse(test.text, test.delim)
		assert.NoError(t, err, f("Parse(%q, %q)", test.text, test.delim))
		assert.Equal(t, test.exp, got, f("Parse(%q, %q)", test.text, test.delim))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		text     string
		line     int
		segments int
	}{
		{"a\n", 1, 1},
		{"a=1\nb\n", 2, 1},
		{"a=1=2\n", 1, 3},
		{"a=1\n\nb=2\n", 2, 1},
		{"\n", 1, 1},
		{"a=1\nb=2\n\n", 3, 1},
	}
	for _, test := range tests {
		got, err := Parse(test.text, "=")
		assert.Nil(t, got, f("Parse(%q)", test.text))
		assert.True(t, errors.Is(err, ErrParse), f("Parse(%q) error: %v", test.text, err))
		var pe *ParseError
		assert.True(t, errors.As(err, &pe))
		assert.Equal(t, test.line, pe.Line, f("Parse(%q)", test.text))
		assert.Equal(t, test.segments, pe.Segments, f("Parse(%q)", test.text))
		assert.Contains(t, err.Error(), "failed: parser error")
	}

	_, err := Parse("a=1\n", "")
	assert.Equal(t, ErrEmptyDelimiter, err)
}

func TestSerialize(t *testing.T) {
	m := map[string]string{"c": "3", "a": "1", "b": ""}
	got := string(Serialize(m, "="))
	assert.Equal(t, "a=1\nb=\nc=3\n", got)

	got = string(Serialize(map[string]string{"k": "v"}, " -> "))
	assert.Equal(t, "k -> v\n", got)

	got = string(Serialize(nil, "="))
	assert.Equal(t, "", got)
}

func TestRoundtrip(t *testing.T) {
	delims := []string{"=", "::", "\t", "|"}
	for _, delim := range delims {
		m := map[string]string{}
		for i := range 100 {
			m[f("key%d", i)] = f("value %d", i*7)
		}
		m[""] = "empty key"
		m["empty value"] = ""
		d := Serialize(m, delim)
		got, err := Parse(string(d), delim)
		assert.NoError(t, err)
		assert.Equal(t, m, got)
		// serialization is stable
		assert.Equal(t, string(d), string(Serialize(got, delim)))
	}
}

func TestSerializeNoEscaping(t *testing.T) {
	// delimiter in a value is written as-is and won't parse back
	m := map[string]string{"k": "a=b"}
	d := Serialize(m, "=")
	assert.Equal(t, "k=a=b\n", string(d))
	_, err := Parse(string(d), "=")
	assert.True(t, errors.Is(err, ErrParse))

	m = map[string]string{"k": "line1\nline2"}
	_, err = Parse(string(Serialize(m, "=")), "=")
	assert.True(t, errors.Is(err, ErrParse))
}
