// Package commands implements the plainkv command line tool: get, set
// and remove keys in a plaintext store file, list its content, back it
// up to a local file or S3 and restore it.
package commands
