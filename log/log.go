package log

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kjk/plainkv/siser"

	"github.com/toon-format/toon-go"
)

var (
	log       *WriteDaily
	errorsLog *WriteDaily
	eventsLog *WriteDaily
	events    *siser.Writer

	// if true, Verbosef() will log messages
	Verbose bool

	// where Logf() prints, in addition to log files.
	// stderr so that it doesn't mix with output of commands
	Output io.Writer = os.Stderr
)

type WriteDaily struct {
	Dir         string
	currentDate int // YYYYMMDD format
	file        *os.File
	mu          sync.Mutex
}

func NewWriteDaily(dir string) *WriteDaily {
	return &WriteDaily{
		Dir: dir,
	}
}

// WriteString writes a string to the daily log file
// it's safe to call on nil receiver
func (w *WriteDaily) WriteString(s string) error {
	return w.Write([]byte(s))
}

// dailyWriter adapts WriteDaily to io.Writer
type dailyWriter struct {
	w *WriteDaily
}

func (dw dailyWriter) Write(d []byte) (int, error) {
	if err := dw.w.Write(d); err != nil {
		return 0, err
	}
	return len(d), nil
}

// dayFromTime converts a time.Time to YYYYMMDD integer format
func dayFromTime(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// Writer returns an io.Writer for today's log file
// it creates a new file if needed
func (w *WriteDaily) Writer() (io.Writer, error) {
	if w == nil {
		return nil, fmt.Errorf("w is nil")
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now().UTC()
	today := dayFromTime(now)

	if w.file != nil && w.currentDate != today {
		if err := w.close(); err != nil {
			return nil, err
		}
	}

	if w.file == nil {
		dateStr := now.Format("2006-01-02")
		filename := filepath.Join(w.Dir, dateStr+".txt")
		if err := os.MkdirAll(w.Dir, 0755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		w.file = f
		w.currentDate = today
	}
	return w.file, nil
}

// Write writes data to the daily log file
// it's safe to call on nil receiver
func (w *WriteDaily) Write(d []byte) error {
	if w == nil {
		return nil
	}
	wr, err := w.Writer()
	if err != nil {
		return err
	}
	_, err = wr.Write(d)
	return err
}

func (w *WriteDaily) close() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	w.currentDate = 0
	return err
}

// Close closes the daily log file
// it's safe to call on nil receiver
func (w *WriteDaily) Close() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.close()
}

// Sync flushes the daily log file to disk
// it's safe to call on nil receiver
func (w *WriteDaily) Sync() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file != nil {
		return w.file.Sync()
	}
	return nil
}

type Config struct {
	// directory where log files are stored
	// each log type (regular, errors, events) has its own subdirectory
	// if empty, we only log to Output
	Dir string
}

// Init initializes the logging system
func Init(config *Config) {
	Close()
	dir := config.Dir
	if dir == "" {
		return
	}
	log = NewWriteDaily(filepath.Join(dir, "log"))
	errorsLog = NewWriteDaily(filepath.Join(dir, "errors"))
	// this doesn't create log files so if there are no events it's a no-op
	eventsLog = NewWriteDaily(filepath.Join(dir, "events"))
	events = siser.NewWriter(dailyWriter{eventsLog})
}

// CloseWriteDaily closes the WriteDaily and sets its pointer to nil
// it's safe to call with nil pointer
func CloseWriteDaily(wd **WriteDaily) {
	if *wd == nil {
		return
	}
	(*wd).Sync()
	(*wd).Close()
	*wd = nil
}

func Close() {
	events = nil
	CloseWriteDaily(&log)
	CloseWriteDaily(&errorsLog)
	CloseWriteDaily(&eventsLog)
}

func Logf(s string, args ...any) {
	if len(args) > 0 {
		s = fmt.Sprintf(s, args...)
	}
	fmt.Fprint(Output, s)
	log.WriteString(s)
}

func Verbosef(format string, args ...any) {
	if !Verbose {
		return
	}
	Logf(format, args...)
}

func GetCallstackFrames(skip int) []string {
	var callers [32]uintptr
	n := runtime.Callers(skip+1, callers[:])
	frames := runtime.CallersFrames(callers[:n])
	var cs []string
	for {
		frame, more := frames.Next()
		cs = append(cs, frame.File+":"+strconv.Itoa(frame.Line))
		if !more {
			break
		}
	}
	return cs
}

func GetCallstack(skip int) string {
	frames := GetCallstackFrames(skip + 1)
	return strings.Join(frames, "\n")
}

// Errorf logs an error message. Call stack is only printed
// in verbose mode but always written to the errors log
func Errorf(s string, args ...any) {
	if len(args) > 0 {
		s = fmt.Sprintf(s, args...)
	}
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	cs := GetCallstack(2)
	errorsLog.WriteString(s + cs + "\n")
	if Verbose {
		Logf("%s%s\n", s, cs)
		return
	}
	Logf("%s", s)
}

// if err != nil, log and return true
// IfErrf(err) => logs err.Error()
// IfErrf(err, "error is: %v", err) => logs message formatted
func IfErrf(err error, a ...any) bool {
	if err == nil {
		return false
	}
	if len(a) == 0 {
		Errorf("%s", err.Error())
		return true
	}
	s, ok := a[0].(string)
	if !ok {
		s = fmt.Sprintf("%s", a[0])
	}
	if len(a) > 1 {
		s = fmt.Sprintf(s, a[1:]...)
	}
	Errorf("%s", s)
	return true
}

func panicIf(cond bool, msg string) {
	if cond {
		panic(msg)
	}
}

// simpleTypeToStr converts simple types to string
// panics if v is of complex type
func simpleTypeToStr(v any) string {
	rt := reflect.TypeOf(v)
	kind := rt.Kind()
	switch kind {
	case reflect.Array, reflect.Slice, reflect.Struct, reflect.Map, reflect.Chan, reflect.Interface, reflect.Pointer:
		panic(fmt.Sprintf("toStr: value is of kind %v", kind))
	case reflect.String:
		return v.(string)
	}
	return fmt.Sprintf("%v", v)
}

// MarshalEvent encodes key / value pairs in toon format
func MarshalEvent(vals ...any) ([]byte, error) {
	n := len(vals)
	panicIf(n%2 != 0, "vals must be key / value pairs")
	if n == 0 {
		return nil, nil
	}
	m := map[string]any{}
	for i := 0; i < n; i += 2 {
		k := simpleTypeToStr(vals[i])
		m[k] = vals[i+1]
	}
	return toon.Marshal(m)
}

// Event logs an event as a siser record with toon-encoded key / value pairs
func Event(name string, vals ...any) {
	if events == nil {
		return
	}
	d, err := MarshalEvent(vals...)
	if IfErrf(err, "Event('%s'): %s", name, err) {
		return
	}
	_, err = events.Write(d, time.Now().UTC(), name)
	IfErrf(err, "Event('%s'): %s", name, err)
}

type EventRecord struct {
	Name      string
	Timestamp time.Time
	// toon-encoded values
	Data string
}

// ReadEvents reads all events logged by Event() in logDir, oldest first
func ReadEvents(logDir string) ([]EventRecord, error) {
	files, err := filepath.Glob(filepath.Join(logDir, "events", "*.txt"))
	if err != nil {
		return nil, err
	}
	// file names are dates so this is chronological
	slices.Sort(files)
	var res []EventRecord
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		r := siser.NewReader(bufio.NewReader(f))
		for r.ReadNextData() {
			res = append(res, EventRecord{
				Name:      r.Name,
				Timestamp: r.Timestamp,
				Data:      string(r.Data),
			})
		}
		f.Close()
		if err = r.Err(); err != nil {
			return nil, fmt.Errorf("reading events from '%s': %w", path, err)
		}
	}
	return res, nil
}
