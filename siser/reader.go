package siser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Reader reads blocks written by Writer
type Reader struct {
	r *bufio.Reader

	// data was written without a timestamp (see Writer.NoTimestamp)
	NoTimestamp bool

	// valid after ReadNextData() returned true, until the next call
	Data      []byte
	Name      string
	Timestamp time.Time

	// position of the current block within the reader
	CurrRecordPos int64
	// position of the next block within the reader
	NextRecordPos int64

	err  error
	done bool
}

// NewReader creates a new reader
func NewReader(r *bufio.Reader) *Reader {
	return &Reader{
		r: r,
	}
}

// Done returns true if we're finished reading, either because of
// end of data or an error
func (r *Reader) Done() bool {
	return r.err != nil || r.done
}

// Err returns the first error other than io.EOF
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) parseHeader(hdr []byte) error {
	line := bytes.TrimPrefix(hdr, hdrPrefix)
	line = bytes.TrimSuffix(line, []byte{'\n'})
	// size, timestamp and name. name can contain spaces
	parts := bytes.SplitN(line, []byte{' '}, 3)
	if !r.NoTimestamp && len(parts) < 2 {
		return fmt.Errorf("unexpected header '%s'", hdr)
	}
	size, err := strconv.Atoi(string(parts[0]))
	if err != nil || size < 0 {
		return fmt.Errorf("unexpected header '%s'", hdr)
	}
	r.Data = r.Data[:0]
	if cap(r.Data) < size || cap(r.Data) > 1024*1024 {
		r.Data = make([]byte, 0, size)
	}
	r.Data = r.Data[:size]

	r.Name = ""
	r.Timestamp = time.Time{}
	rest := parts[1:]
	if !r.NoTimestamp {
		ms, err := strconv.ParseInt(string(rest[0]), 10, 64)
		if err != nil {
			return fmt.Errorf("unexpected header '%s'", hdr)
		}
		r.Timestamp = TimeFromUnixMillisecond(ms)
		rest = rest[1:]
	}
	if len(rest) > 0 {
		r.Name = string(bytes.Join(rest, []byte{' '}))
	}
	return nil
}

// ReadNextData reads the next block. Returns false at the end of data
// or on error, check Err() to tell them apart.
func (r *Reader) ReadNextData() bool {
	if r.Done() {
		return false
	}
	r.CurrRecordPos = r.NextRecordPos

	hdr, err := r.r.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(hdr) == 0 {
			r.done = true
		} else if err == io.EOF {
			r.err = fmt.Errorf("truncated header '%s'", hdr)
		} else {
			r.err = err
		}
		return false
	}
	if r.err = r.parseHeader(hdr); r.err != nil {
		return false
	}
	recSize := int64(len(hdr))

	if _, err = io.ReadFull(r.r, r.Data); err != nil {
		r.err = err
		return false
	}
	n := len(r.Data)
	recSize += int64(n)
	// skip the newline Writer added for readability
	if n > 0 && r.Data[n-1] != '\n' {
		if _, err = r.r.Discard(1); err != nil {
			r.err = err
			return false
		}
		recSize++
	}
	r.NextRecordPos += recSize
	return true
}
