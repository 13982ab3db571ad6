/*
NaiveSystems Analyze - A tool for static code analysis
Copyright (C) 2023  Naive Systems Ltd.

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package atomic

import (
	"fmt"
	"os"
	"path/filepath"
)

// Write replaces the named file with data in a single rename. The temporary
// file lives in the same directory as name, so the rename never crosses
// filesystems. Readers observe either the old content or the new content,
// never a partial write.
func Write(name string, data []byte) error {
	return write(name, data, false)
}

// WriteSync is Write with an fsync of the temporary file before the rename.
// Use it for result files that must survive a crash intact.
func WriteSync(name string, data []byte) error {
	return write(name, data, true)
}

func write(name string, data []byte, sync bool) error {
	pattern := "tmp-*-" + filepath.Base(name)
	f, err := os.CreateTemp(filepath.Dir(name), pattern)
	if err != nil {
		return fmt.Errorf("os.CreateTemp: %v", err)
	}
	defer os.Remove(f.Name())
	// Explicitly set the permissions of the temporary file to 0644
	if err := os.Chmod(f.Name(), 0644); err != nil {
		f.Close()
		return fmt.Errorf("os.Chmod: %v", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write to file %s: %v", f.Name(), err)
	}
	if sync {
		if err := f.Sync(); err != nil {
			f.Close()
			return fmt.Errorf("failed to sync file %s: %v", f.Name(), err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close file %s: %v", f.Name(), err)
	}
	if err := os.Rename(f.Name(), name); err != nil {
		return fmt.Errorf("failed to rename file %s to %s: %v", f.Name(), name, err)
	}
	return nil
}
