package atomicfile

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Some references:
// - https://www.slideshare.net/nan1nan1/eat-my-data
// - https://lwn.net/Articles/457667/

var (
	// ErrCancelled is returned by calls subsequent to Cancel()
	ErrCancelled = errors.New("cancelled")

	// ensure we implement desired interface
	_ io.WriteCloser = &File{}
)

// File writes to a temporary file and on Close renames it to
// the destination path. If any write fails, the temporary
// file is deleted and destination is not touched.
type File struct {
	// permissions of the destination file
	Perm os.FileMode

	fs      afero.Fs
	dstPath string
	dir     string
	tmpFile afero.File
	err     error

	tmpPath string // for debugging
}

// New creates a File that will be renamed to path on Close
func New(fs afero.Fs, path string) (*File, error) {
	dir, fName := filepath.Split(path)
	if fName == "" {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrInvalid}
	}
	if dir == "" {
		dir = "."
	}

	// temp file must be in the same directory for rename to be atomic
	tmpFile, err := afero.TempFile(fs, dir, fName+".tmp-")
	if err != nil {
		return nil, err
	}

	return &File{
		Perm:    0644,
		fs:      fs,
		dstPath: path,
		dir:     dir,
		tmpFile: tmpFile,
		tmpPath: tmpFile.Name(),
	}, nil
}

// WriteFile is like afero.WriteFile but atomic
func WriteFile(fs afero.Fs, path string, data []byte, perm os.FileMode) error {
	f, err := New(fs, path)
	if err != nil {
		return err
	}
	// a no-op after Close
	defer f.RemoveIfNotClosed()
	f.Perm = perm

	if _, err = f.Write(data); err != nil {
		return err
	}
	return f.Close()
}

func (f *File) handleError(err error) error {
	if err == nil {
		return nil
	}
	// remember the first error
	if f.err == nil {
		f.err = err
	}
	// cleanup i.e. delete temporary file
	_ = f.Close()
	return err
}

// Write writes data to a file
func (f *File) Write(d []byte) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n, err := f.tmpFile.Write(d)
	return n, f.handleError(err)
}

func (f *File) WriteString(s string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n, err := f.tmpFile.WriteString(s)
	return n, f.handleError(err)
}

func (f *File) Sync() error {
	if f.err != nil {
		return f.err
	}
	err := f.tmpFile.Sync()
	return f.handleError(err)
}

func (f *File) alreadyClosed() bool {
	return f.tmpFile == nil
}

// RemoveIfNotClosed removes the temp file if we didn't Close
// the file yet. Destination file will not be created.
// Use it with defer to ensure cleanup in case of a panic or an early
// return. RemoveIfNotClosed after Close is a no-op.
func (f *File) RemoveIfNotClosed() {
	if f == nil || f.alreadyClosed() {
		return
	}
	f.err = ErrCancelled
	_ = f.Close()
}

// Close closes the file and renames it to destination.
// Can be called multiple times, returns the first error.
func (f *File) Close() error {
	if f.alreadyClosed() {
		return f.err
	}
	tmpFile := f.tmpFile
	f.tmpFile = nil

	// https://www.joeshaw.org/dont-defer-close-on-writable-files/
	errSync := tmpFile.Sync()
	errClose := tmpFile.Close()

	didRename := false
	defer func() {
		if !didRename {
			_ = f.fs.Remove(f.tmpPath)
		}
	}()

	if f.err != nil {
		return f.err
	}

	err := errSync
	if err == nil {
		err = errClose
	}
	if err == nil {
		err = f.fs.Chmod(f.tmpPath, f.Perm)
	}
	if err == nil {
		// over-writes dstPath if it exists
		err = f.fs.Rename(f.tmpPath, f.dstPath)
		didRename = (err == nil)
		// sync directory so that the rename survives a crash.
		// not all filesystems support that so errors are ignored
		if didRename {
			if fdir, _ := f.fs.Open(f.dir); fdir != nil {
				_ = fdir.Sync()
				_ = fdir.Close()
			}
		}
	}

	f.err = err
	return err
}
