// Package backup copies the content of a kvfile.Store to a local file
// or to S3-compatible storage and restores it back.
//
// Backups are the store file as-is, optionally compressed. Compression
// is picked from the extension of the destination: .gz, .zst / .zstd or .br.
// Extensions of other compression formats are rejected.
// A backup is validated with the delimiter of the target store before
// anything is overwritten.
package backup

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/kjk/plainkv/atomicfile"
	"github.com/kjk/plainkv/kvfile"
	"github.com/kjk/plainkv/u"
	"github.com/minio/minio-go/v7"
	"github.com/spf13/afero"
)

// Remote is the part of minioutil.Client used for backups
type Remote interface {
	UploadData(ctx context.Context, remotePath string, data []byte) (minio.UploadInfo, error)
	DownloadData(ctx context.Context, remotePath string) ([]byte, error)
	Exists(ctx context.Context, remotePath string) bool
}

// WriteLocal writes content of s to dstPath.
// Returns size of the written file.
func WriteLocal(s *kvfile.Store, dstPath string) (int64, error) {
	err := u.WriteFileMaybeCompressed(dstPath, s.Snapshot())
	if err != nil {
		return 0, fmt.Errorf("writing backup '%s': %w", dstPath, err)
	}
	return u.FileSize(dstPath), nil
}

// ReadLocal reads a backup written by WriteLocal
func ReadLocal(srcPath string) ([]byte, error) {
	d, err := u.ReadFileMaybeCompressed(srcPath)
	if err != nil {
		return nil, fmt.Errorf("reading backup '%s': %w", srcPath, err)
	}
	return d, nil
}

// Upload uploads content of s as remotePath
func Upload(ctx context.Context, r Remote, s *kvfile.Store, remotePath string) (int64, error) {
	info, err := r.UploadData(ctx, remotePath, s.Snapshot())
	if err != nil {
		return 0, fmt.Errorf("uploading backup '%s': %w", remotePath, err)
	}
	return info.Size, nil
}

// Download downloads a backup uploaded with Upload
func Download(ctx context.Context, r Remote, remotePath string) ([]byte, error) {
	if !r.Exists(ctx, remotePath) {
		return nil, fmt.Errorf("backup '%s': %w", remotePath, os.ErrNotExist)
	}
	d, err := r.DownloadData(ctx, remotePath)
	if err != nil {
		return nil, fmt.Errorf("downloading backup '%s': %w", remotePath, err)
	}
	return d, nil
}

// Validate checks that d is a valid store file for delim.
// Returns the number of keys.
func Validate(d []byte, delim string) (int, error) {
	if !utf8.Valid(d) {
		return 0, kvfile.ErrInvalidText
	}
	m, err := kvfile.Parse(string(d), delim)
	if err != nil {
		return 0, err
	}
	return len(m), nil
}

// Restore validates d, atomically replaces the file at path with it
// and opens the restored store. The file doesn't have to exist.
// An existing file keeps its permissions.
func Restore(fs afero.Fs, path string, delim string, d []byte) (*kvfile.Store, error) {
	if _, err := Validate(d, delim); err != nil {
		return nil, fmt.Errorf("invalid backup: %w", err)
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	perm := os.FileMode(0644)
	if fi, err := fs.Stat(path); err == nil {
		perm = fi.Mode().Perm()
	}
	if err := atomicfile.WriteFile(fs, path, d, perm); err != nil {
		return nil, fmt.Errorf("restoring '%s': %w", path, err)
	}
	s := &kvfile.Store{
		Path:      path,
		Delimiter: delim,
		Fs:        fs,
	}
	if err := kvfile.OpenStore(s); err != nil {
		return nil, err
	}
	return s, nil
}
