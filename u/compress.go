package u

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/kjk/plainkv/atomicfile"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"
)

// implement io.ReadCloser over os.File wrapped with io.Reader.
// io.Closer goes to os.File, io.Reader goes to wrapping reader
type readerWrappedFile struct {
	f *os.File
	r io.Reader
}

func (rc *readerWrappedFile) Close() error {
	return rc.f.Close()
}

func (rc *readerWrappedFile) Read(p []byte) (int, error) {
	return rc.r.Read(p)
}

func wrapInReadCloser(f *os.File, r io.Reader, err error) (io.ReadCloser, error) {
	if err != nil {
		f.Close()
		return nil, err
	}
	return &readerWrappedFile{
		f: f,
		r: r,
	}, nil
}

var ErrUnsupportedCompression = errors.New("unsupported compression")

// checkCompression returns ErrUnsupportedCompression for extensions
// of compression formats we can't write
func checkCompression(path string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".bz2", ".xz", ".lz4", ".7z", ".zip":
		return fmt.Errorf("%w: '%s'", ErrUnsupportedCompression, ext)
	}
	return nil
}

// IsCompressedPath returns true if extension of path is one of
// the compression formats we can write (.gz, .zst, .zstd, .br)
func IsCompressedPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".zst", ".zstd", ".br":
		return true
	}
	return false
}

// OpenFileMaybeCompressed opens a file that might be compressed with gzip
// or zstd or brotli, based on file extension
func OpenFileMaybeCompressed(path string) (io.ReadCloser, error) {
	if err := checkCompression(path); err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	switch ext {
	case ".gz":
		r, err := gzip.NewReader(f)
		return wrapInReadCloser(f, r, err)
	case ".zst", ".zstd":
		r, err := zstd.NewReader(f)
		if err != nil {
			return wrapInReadCloser(f, nil, err)
		}
		return wrapInReadCloser(f, r.IOReadCloser(), nil)
	case ".br":
		return wrapInReadCloser(f, brotli.NewReader(f), nil)
	}
	return f, nil
}

// ReadFileMaybeCompressed reads a file, decompressing it if needed
func ReadFileMaybeCompressed(path string) ([]byte, error) {
	r, err := OpenFileMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// CompressDataForPath compresses d with compression picked from
// extension of path. Returns d as-is for other extensions.
func CompressDataForPath(path string, d []byte) ([]byte, error) {
	if err := checkCompression(path); err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return GzipData(d)
	case ".zst", ".zstd":
		return ZstdCompressData(d)
	case ".br":
		return BrCompressDataBest(d)
	}
	return d, nil
}

// DecompressDataForPath is the reverse of CompressDataForPath
func DecompressDataForPath(path string, d []byte) ([]byte, error) {
	if err := checkCompression(path); err != nil {
		return nil, err
	}
	var r io.Reader
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		gr, err := gzip.NewReader(bytes.NewReader(d))
		if err != nil {
			return nil, err
		}
		r = gr
	case ".zst", ".zstd":
		return ZstdDecompressData(d)
	case ".br":
		r = brotli.NewReader(bytes.NewReader(d))
	default:
		return d, nil
	}
	return io.ReadAll(r)
}

// WriteFileMaybeCompressed atomically writes d to path, compressed
// if path has one of the compression extensions
func WriteFileMaybeCompressed(path string, d []byte) error {
	d, err := CompressDataForPath(path, d)
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(afero.NewOsFs(), path, d, 0644)
}

func getErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// GzipData compresses d with best gzip compression
func GzipData(d []byte) ([]byte, error) {
	var dst bytes.Buffer
	w, err := gzip.NewWriterLevel(&dst, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	_, err = w.Write(d)
	err2 := w.Close()
	if err = getErr(err, err2); err != nil {
		return nil, err
	}
	return dst.Bytes(), nil
}

func BrCompressData(d []byte, level int) ([]byte, error) {
	var dst bytes.Buffer
	w := brotli.NewWriterLevel(&dst, level)
	_, err := w.Write(d)
	err2 := w.Close()
	if err = getErr(err, err2); err != nil {
		return nil, err
	}
	return dst.Bytes(), nil
}

func BrCompressDataBest(d []byte) ([]byte, error) {
	return BrCompressData(d, brotli.BestCompression)
}

func zstdNewWriter(dst io.Writer) (*zstd.Encoder, error) {
	// stores are small text files, best compression is cheap
	return zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
}

func ZstdCompressData(d []byte) ([]byte, error) {
	var dst bytes.Buffer
	w, err := zstdNewWriter(&dst)
	if err != nil {
		return nil, err
	}
	_, err = w.Write(d)
	err2 := w.Close()
	if err = getErr(err, err2); err != nil {
		return nil, err
	}
	return dst.Bytes(), nil
}

func ZstdDecompressData(d []byte) ([]byte, error) {
	zr, err := zstd.NewReader(bytes.NewReader(d))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
