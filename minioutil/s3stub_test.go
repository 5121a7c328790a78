package minioutil

import (
	"bufio"
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/xml"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// s3Stub is an in-memory S3 server with just enough of the API
// for Client: bucket HEAD, object PUT / GET / HEAD / DELETE, ListObjectsV2
type s3Stub struct {
	bucket  string
	modTime time.Time

	mu      sync.Mutex
	objects map[string][]byte
}

func newS3Stub(bucket string) *s3Stub {
	return &s3Stub{
		bucket:  bucket,
		modTime: time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
		objects: map[string][]byte{},
	}
}

type s3Error struct {
	XMLName xml.Name `xml:"Error"`
	Code    string
	Message string
}

type listEntry struct {
	Key          string
	LastModified string
	ETag         string
	Size         int64
	StorageClass string
}

type listResult struct {
	XMLName     xml.Name `xml:"ListBucketResult"`
	Name        string
	Prefix      string
	KeyCount    int
	MaxKeys     int
	IsTruncated bool
	Contents    []listEntry
}

func etag(d []byte) string {
	sum := md5.Sum(d)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

func writeXML(w http.ResponseWriter, status int, v any) {
	d, _ := xml.Marshal(v)
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	w.Write([]byte(xml.Header))
	w.Write(d)
}

func notFound(w http.ResponseWriter, r *http.Request, code string) {
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeXML(w, http.StatusNotFound, &s3Error{Code: code, Message: "not found"})
}

// readAwsChunked decodes a body sent with aws-chunked encoding:
// "<hex size>[;chunk-signature=...]\r\n<data>\r\n" repeated, ending
// with a 0-size chunk followed by optional trailers
func readAwsChunked(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(r)
	var res bytes.Buffer
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		sizeStr, _, _ := strings.Cut(line, ";")
		size, err := strconv.ParseInt(sizeStr, 16, 64)
		if err != nil {
			return nil, err
		}
		if size == 0 {
			return res.Bytes(), nil
		}
		if _, err = io.CopyN(&res, br, size); err != nil {
			return nil, err
		}
		// \r\n after chunk data
		if _, err = br.ReadString('\n'); err != nil {
			return nil, err
		}
	}
}

func isAwsChunked(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("X-Amz-Content-Sha256"), "STREAMING-") ||
		strings.Contains(r.Header.Get("Content-Encoding"), "aws-chunked")
}

func (s *s3Stub) list(w http.ResponseWriter, prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	res := &listResult{
		Name:     s.bucket,
		Prefix:   prefix,
		KeyCount: len(keys),
		MaxKeys:  1000,
	}
	for _, k := range keys {
		d := s.objects[k]
		res.Contents = append(res.Contents, listEntry{
			Key:          k,
			LastModified: s.modTime.Format("2006-01-02T15:04:05.000Z"),
			ETag:         etag(d),
			Size:         int64(len(d)),
			StorageClass: "STANDARD",
		})
	}
	writeXML(w, http.StatusOK, res)
}

func (s *s3Stub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	bucket, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	if bucket != s.bucket {
		notFound(w, r, "NoSuchBucket")
		return
	}
	if key == "" {
		switch {
		case r.Method == http.MethodHead:
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodGet && r.URL.Query().Get("list-type") == "2":
			s.list(w, r.URL.Query().Get("prefix"))
		default:
			w.WriteHeader(http.StatusNotImplemented)
		}
		return
	}

	switch r.Method {
	case http.MethodPut:
		var d []byte
		var err error
		if isAwsChunked(r) {
			d, err = readAwsChunked(r.Body)
		} else {
			d, err = io.ReadAll(r.Body)
		}
		if err != nil {
			writeXML(w, http.StatusBadRequest, &s3Error{Code: "IncompleteBody", Message: err.Error()})
			return
		}
		s.mu.Lock()
		s.objects[key] = d
		s.mu.Unlock()
		w.Header().Set("ETag", etag(d))
		w.WriteHeader(http.StatusOK)
	case http.MethodGet, http.MethodHead:
		s.mu.Lock()
		d, ok := s.objects[key]
		s.mu.Unlock()
		if !ok {
			notFound(w, r, "NoSuchKey")
			return
		}
		h := w.Header()
		h.Set("Content-Length", strconv.Itoa(len(d)))
		h.Set("Content-Type", "application/octet-stream")
		h.Set("ETag", etag(d))
		h.Set("Last-Modified", s.modTime.Format(http.TimeFormat))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			w.Write(d)
		}
	case http.MethodDelete:
		s.mu.Lock()
		delete(s.objects, key)
		s.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func (s *s3Stub) object(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.objects[key]
	return d, ok
}
