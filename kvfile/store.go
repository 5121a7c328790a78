package kvfile

import (
	"errors"
	"iter"
	"os"
	"unicode/utf8"

	"github.com/kjk/plainkv/atomicfile"
	"github.com/spf13/afero"
)

// Store is a key-value mapping backed by a plaintext file.
// Fill in the exported fields and call OpenStore, or use Open.
type Store struct {
	// path of the backing file
	Path string
	// separates key from value in each line, can't be empty
	Delimiter string

	// filesystem the backing file lives on, defaults to the OS filesystem
	Fs afero.Fs

	// if true, writes go to a temporary file that is renamed over Path
	// so that a crash never leaves a partially written file
	AtomicWrite bool

	// permissions of the file after writing. OpenStore defaults it to
	// the mode of the existing file, 0644 otherwise
	Perm os.FileMode

	m map[string]string
}

// Open reads and parses the file at path.
// The file must exist, Open doesn't create it.
func Open(path string, delimiter string) (*Store, error) {
	s := &Store{
		Path:      path,
		Delimiter: delimiter,
	}
	if err := OpenStore(s); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenStore loads s.Path into s. On error s is not usable.
func OpenStore(s *Store) error {
	if s.Delimiter == "" {
		return ErrEmptyDelimiter
	}
	if s.Fs == nil {
		s.Fs = afero.NewOsFs()
	}
	if s.Perm == 0 {
		if fi, err := s.Fs.Stat(s.Path); err == nil {
			s.Perm = fi.Mode().Perm()
		}
	}
	s.setDefaults()
	m, err := s.load()
	if err != nil {
		return err
	}
	s.m = m
	return nil
}

// Create creates an empty file at path and opens it.
// It fails if the file already exists.
func Create(path string, delimiter string) (*Store, error) {
	s := &Store{
		Path:      path,
		Delimiter: delimiter,
	}
	if err := CreateStore(s); err != nil {
		return nil, err
	}
	return s, nil
}

// CreateStore is like OpenStore but first creates an empty s.Path
func CreateStore(s *Store) error {
	if s.Delimiter == "" {
		return ErrEmptyDelimiter
	}
	s.setDefaults()
	f, err := s.Fs.OpenFile(s.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, s.Perm)
	if err != nil {
		return &IOError{Op: "create", Path: s.Path, Err: err}
	}
	if err = f.Close(); err != nil {
		return &IOError{Op: "create", Path: s.Path, Err: err}
	}
	return OpenStore(s)
}

func (s *Store) setDefaults() {
	if s.Fs == nil {
		s.Fs = afero.NewOsFs()
	}
	if s.Perm == 0 {
		s.Perm = 0644
	}
}

func (s *Store) load() (map[string]string, error) {
	d, err := afero.ReadFile(s.Fs, s.Path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: s.Path, Err: err}
	}
	if !utf8.Valid(d) {
		return nil, &IOError{Op: "read", Path: s.Path, Err: ErrInvalidText}
	}
	m, err := Parse(string(d), s.Delimiter)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = s.Path
		}
		return nil, err
	}
	return m, nil
}

// Reload replaces the in-memory mapping with the content of the file.
// Useful after a failed Set or Remove. On error the mapping is unchanged.
func (s *Store) Reload() error {
	m, err := s.load()
	if err != nil {
		return err
	}
	s.m = m
	return nil
}

// Get returns the value for key
func (s *Store) Get(key string) (string, bool) {
	v, ok := s.m[key]
	return v, ok
}

// Set sets key to value and rewrites the file.
// Returns the previous value, if there was one.
// If writing fails, the mapping still has the new value.
func (s *Store) Set(key string, value string) (string, bool, error) {
	if s.m == nil {
		s.m = map[string]string{}
	}
	prev, existed := s.m[key]
	s.m[key] = value
	return prev, existed, s.Save()
}

// Remove deletes key and rewrites the file, even if key wasn't there.
// Returns the removed value, if there was one.
func (s *Store) Remove(key string) (string, bool, error) {
	prev, existed := s.m[key]
	delete(s.m, key)
	return prev, existed, s.Save()
}

// Save writes the whole mapping to the file, replacing its content.
// A Store that wasn't opened starts empty and Save creates the file.
func (s *Store) Save() error {
	if s.Delimiter == "" {
		return ErrEmptyDelimiter
	}
	s.setDefaults()
	d := s.Snapshot()
	var err error
	if s.AtomicWrite {
		err = atomicfile.WriteFile(s.Fs, s.Path, d, s.Perm)
	} else {
		err = afero.WriteFile(s.Fs, s.Path, d, s.Perm)
	}
	if err != nil {
		return &IOError{Op: "write", Path: s.Path, Err: err}
	}
	return nil
}

// Snapshot returns what Save would write to the file
func (s *Store) Snapshot() []byte {
	return Serialize(s.m, s.Delimiter)
}

func (s *Store) Len() int {
	return len(s.m)
}

// Keys returns all keys, sorted
func (s *Store) Keys() []string {
	return sortedKeys(s.m)
}

// All iterates over key / value pairs sorted by key.
// The store must not be modified during iteration.
func (s *Store) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, k := range sortedKeys(s.m) {
			if !yield(k, s.m[k]) {
				return
			}
		}
	}
}
