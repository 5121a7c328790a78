/*
Package atomicfile writes files so that readers see either the old
content or the complete new content, never a partially written file.

Data is written to a temporary file in the same directory as the
destination. Close() syncs and closes it, then renames it over the
destination. If Write() or Close() fail, the temporary file is removed
and the destination is left untouched.

Files are written through afero.Fs so the same code works on the OS
filesystem and on in-memory filesystems in tests:

	func save(fs afero.Fs, path string, data []byte) error {
		w, err := atomicfile.New(fs, path)
		if err != nil {
			return err
		}
		// a no-op after Close()
		defer w.RemoveIfNotClosed()

		_, err = w.Write(data)
		if err != nil {
			return err
		}
		return w.Close()
	}

For the common case use WriteFile(fs, path, data, perm).
*/
package atomicfile
