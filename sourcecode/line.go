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

// Package sourcecode supplies source line content for hash input.
package sourcecode

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/golang/glog"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// Lines longer than this cannot be read and degrade to empty content.
const maxLineBytes = 1024 * 1024

// Reader reads single source lines by 1-indexed line number. It keeps the
// lines of the most recently read file, so hashing many diagnostics of one
// file reads that file once. A Reader must not be shared between goroutines;
// concurrent hashing callers own one Reader each.
type Reader struct {
	charset   string
	lastPath  string
	lastLines []string
	warned    map[string]bool
}

// NewReader returns a Reader decoding files with the given IANA charset
// name. An empty charset means utf8.
func NewReader(charset string) *Reader {
	if charset == "" {
		charset = "utf8"
	}
	return &Reader{charset: charset, warned: map[string]bool{}}
}

// Line returns the requested line without its line terminator. A missing
// file or a line number past the end of the file returns ("", false); the
// first failure per file is logged, later ones are silent.
//
// Malformed bytes are dropped or replaced instead of failing the read.
// Changing that policy changes the hashes of every file that contains them.
func (r *Reader) Line(path string, lineNumber int) (string, bool) {
	if path != r.lastPath {
		r.load(path)
	}
	if r.lastLines == nil || lineNumber < 1 || lineNumber > len(r.lastLines) {
		return "", false
	}
	return r.lastLines[lineNumber-1], true
}

func (r *Reader) load(path string) {
	r.lastPath = path
	r.lastLines = nil
	file, err := os.Open(path)
	if err != nil {
		r.warnOnce(path, "cannot read source file %s: %v", path, err)
		return
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	lines := []string{}
	for scanner.Scan() {
		var text string
		if r.charset == "utf8" {
			text = strings.ToValidUTF8(scanner.Text(), "")
		} else {
			text = convertCharset(scanner.Bytes(), r.charset)
		}
		lines = append(lines, text)
	}
	if err := scanner.Err(); err != nil {
		r.warnOnce(path, "failed to scan source file %s: %v", path, err)
		return
	}
	r.lastLines = lines
}

func (r *Reader) warnOnce(path, format string, args ...interface{}) {
	if r.warned[path] {
		return
	}
	r.warned[path] = true
	glog.Warningf(format, args...)
}

func convertCharset(b []byte, charset string) string {
	byteReader := bytes.NewReader(b)
	e, err := ianaindex.MIME.Encoding(charset)
	if err != nil {
		glog.Warning("ianaindex.MIME.Encoding err, the charset is considered as UTF-8 by default")
		return string(b)
	}
	if e == nil {
		glog.Warning("charset not found, the charset is considered as UTF-8 by default")
		return string(b)
	}
	reader := transform.NewReader(byteReader, e.NewDecoder())
	decoded, err := io.ReadAll(reader)
	if err != nil {
		glog.Warning("io.ReadAll err, the charset is considered as UTF-8 by default")
		return string(b)
	}
	return string(decoded)
}

// StripWhitespace removes every whitespace rune from content and shifts
// column left by the number of whitespace runes that preceded it, keeping
// the column anchored to the same non-whitespace character. column is
// 1-indexed in runes.
func StripWhitespace(content string, column int) (string, int) {
	runes := []rune(content)
	prefix := column - 1
	if prefix < 0 {
		prefix = 0
	}
	if prefix > len(runes) {
		prefix = len(runes)
	}
	removed := 0
	stripped := make([]rune, 0, len(runes))
	for i, c := range runes {
		if unicode.IsSpace(c) {
			if i < prefix {
				removed++
			}
			continue
		}
		stripped = append(stripped, c)
	}
	return string(stripped), column - removed
}
