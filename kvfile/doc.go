// Package kvfile implements a plaintext key-value store backed by
// a single file.
//
// # File Format
//
// Each line of the file is one record:
//
//	<key><delimiter><value>\n
//
// The delimiter is chosen by the caller when opening the store and must
// not appear in keys or values. There is no escaping, no header and no
// comments. A line that doesn't split into exactly two fields fails the
// whole load.
//
// # Basic Usage
//
//	s, err := kvfile.Open("settings.txt", "=")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	v, ok := s.Get("name")
//	prev, existed, err := s.Set("name", "John")
//	prev, existed, err = s.Remove("age")
//
// Alternatively fill in a [Store] and call [OpenStore]:
//
//	s := &kvfile.Store{
//	    Path:        "settings.txt",
//	    Delimiter:   "=",
//	    AtomicWrite: true,
//	}
//	err := kvfile.OpenStore(s)
//
// # Persistence
//
// The whole file is loaded into memory when the store is opened. Every
// [Store.Set] and [Store.Remove] changes the in-memory mapping first and
// then rewrites the whole file. If writing fails the error is returned but
// the mapping stays changed. Use [Store.Reload] to go back to what is on
// disk.
//
// By default the file is overwritten in place, so a crash in the middle of
// a write can leave it truncated. With AtomicWrite set, the data is written
// to a temporary file which is then renamed over the original.
//
// # Thread Safety
//
// A Store is not safe for concurrent use. Two stores opened on the same
// file don't see each other's changes and the last write wins.
package kvfile
