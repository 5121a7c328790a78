package siser

import (
	"bytes"
	"io"
	"strconv"
	"sync"
	"time"
)

var hdrPrefix = []byte("--- ")

// Writer writes framed blocks of data to io.Writer.
// It's safe for concurrent use.
type Writer struct {
	w io.Writer
	// NoTimestamp disables writing timestamp, which
	// makes serialized data not depend on when they were written
	NoTimestamp bool

	writeBuf bytes.Buffer
	mu       sync.Mutex
}

// NewWriter creates a writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w: w,
	}
}

// Write writes d with timestamp t (now if zero) and optional name.
// Returns number of bytes written, including the header.
func (w *Writer) Write(d []byte, t time.Time, name string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// don't keep a big buffer around after writing a big record
	if w.writeBuf.Cap() > 100*1024 && len(d) < 50*1024 {
		w.writeBuf = bytes.Buffer{}
	}

	if w.NoTimestamp {
		t = time.Time{}
	} else if t.IsZero() {
		t = time.Now()
	}

	d2 := MarshalLine(name, t, d, &w.writeBuf)
	return w.w.Write(d2)
}

// MarshalLine serializes d with a header. If t is zero, the timestamp is
// not written. wb is re-used for the result if not nil.
func MarshalLine(name string, t time.Time, d []byte, wb *bytes.Buffer) []byte {
	if wb == nil {
		wb = &bytes.Buffer{}
	} else {
		wb.Reset()
	}
	// 32 is enough for size and timestamp
	wb.Grow(len(hdrPrefix) + len(name) + len(d) + 32)

	wb.Write(hdrPrefix)
	dataLen := len(d)
	wb.WriteString(strconv.Itoa(dataLen))
	if !t.IsZero() {
		wb.WriteByte(' ')
		wb.WriteString(strconv.FormatInt(TimeToUnixMillisecond(t), 10))
	}
	if name != "" {
		wb.WriteByte(' ')
		wb.WriteString(name)
	}
	wb.WriteByte('\n')
	if dataLen > 0 {
		wb.Write(d)
		if d[dataLen-1] != '\n' {
			wb.WriteByte('\n')
		}
	}
	return wb.Bytes()
}

// TimeToUnixMillisecond converts t into Unix epoch time in milliseconds.
// That's because seconds is not enough precision and nanoseconds is too much.
func TimeToUnixMillisecond(t time.Time) int64 {
	return t.UnixMilli()
}

// TimeFromUnixMillisecond returns time from Unix epoch time in milliseconds.
func TimeFromUnixMillisecond(unixMs int64) time.Time {
	return time.UnixMilli(unixMs)
}
