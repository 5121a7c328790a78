// Package siser frames blocks of data so that many of them can be
// appended to a single file and read back.
//
// Each block is written as a header line followed by the data:
//
//	--- ${size} ${timestamp_in_unix_epoch_ms} ${name}\n
//	${data}
//
// Timestamp and name are optional. If data doesn't end with a newline,
// one is added after it so that files stay readable in a text editor.
// The newline is not part of the data when reading it back.
package siser
