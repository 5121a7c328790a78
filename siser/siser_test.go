package siser

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert"
)

func TestMarshalLine(t *testing.T) {
	fixedTime := time.Date(2024, 1, 15, 10, 30, 45, 123000000, time.UTC)
	fixedTimeMs := strconv.FormatInt(TimeToUnixMillisecond(fixedTime), 10)

	tests := []struct {
		name string
		t    time.Time
		d    []byte
		exp  string
	}{
		{"set", fixedTime, []byte("key: a"), "--- 6 " + fixedTimeMs + " set\nkey: a\n"},
		{"set", fixedTime, []byte("key: a\n"), "--- 7 " + fixedTimeMs + " set\nkey: a\n"},
		{"", fixedTime, []byte("x"), "--- 1 " + fixedTimeMs + "\nx\n"},
		{"rm", time.Time{}, []byte("x"), "--- 1 rm\nx\n"},
		{"rm", fixedTime, nil, "--- 0 " + fixedTimeMs + " rm\n"},
		{"", time.Time{}, nil, "--- 0\n"},
	}
	var buf bytes.Buffer
	for _, test := range tests {
		got := MarshalLine(test.name, test.t, test.d, nil)
		assert.Equal(t, test.exp, string(got))
		// re-using the buffer gives the same result
		got = MarshalLine(test.name, test.t, test.d, &buf)
		assert.Equal(t, test.exp, string(got))
	}
}

type testRec struct {
	data string
	name string
}

func TestWriteRead(t *testing.T) {
	tm := time.UnixMilli(5000)
	recs := []testRec{
		{"hey\n", ""},
		{"ho", "with name"},
		{"\nstarts with newline", "set"},
		{"", "empty"},
		{"key: a\nvalue: 1\n", "set"},
	}
	var buf bytes.Buffer
	w := NewWriter(&buf)
	var positions []int64
	pos := int64(0)
	for _, rec := range recs {
		positions = append(positions, pos)
		n, err := w.Write([]byte(rec.data), tm, rec.name)
		assert.NoError(t, err)
		pos += int64(n)
	}
	assert.True(t, strings.HasPrefix(buf.String(), "--- 4 5000\nhey\n--- 2 5000 with name\nho\n"))

	r := NewReader(bufio.NewReader(bytes.NewReader(buf.Bytes())))
	i := 0
	for r.ReadNextData() {
		rec := recs[i]
		assert.Equal(t, rec.data, string(r.Data))
		assert.Equal(t, rec.name, r.Name)
		assert.True(t, r.Timestamp.Equal(tm))
		assert.Equal(t, positions[i], r.CurrRecordPos)
		i++
	}
	assert.NoError(t, r.Err())
	assert.Equal(t, len(recs), i)
	assert.Equal(t, int64(buf.Len()), r.NextRecordPos)
	assert.True(t, r.Done())
}

func TestNoTimestamp(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.NoTimestamp = true
	_, err := w.Write([]byte("data"), time.Now(), "name with spaces")
	assert.NoError(t, err)
	assert.Equal(t, "--- 4 name with spaces\ndata\n", buf.String())

	r := NewReader(bufio.NewReader(&buf))
	r.NoTimestamp = true
	assert.True(t, r.ReadNextData())
	assert.Equal(t, "data", string(r.Data))
	assert.Equal(t, "name with spaces", r.Name)
	assert.True(t, r.Timestamp.IsZero())
	assert.False(t, r.ReadNextData())
	assert.NoError(t, r.Err())
}

func TestReadErrors(t *testing.T) {
	tests := []string{
		"--- 5\nhello\n",            // missing timestamp
		"--- x 5000\nhello\n",       // bad size
		"--- 5 abc\nhello\n",        // bad timestamp
		"--- 10 5000 name\nshort\n", // truncated data
		"--- 5 5000",                // truncated header
	}
	for _, s := range tests {
		r := NewReader(bufio.NewReader(strings.NewReader(s)))
		for r.ReadNextData() {
		}
		assert.Error(t, r.Err(), "input: %q", s)
	}
}
