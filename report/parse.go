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

package report

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/golang/glog"
	"naive.systems/reportid/plist"
)

// FromDocument converts every diagnostic in doc into a Report. resolveDir
// anchors relative entries of the files table; result files converted from
// other formats store paths relative to the result directory. origin names
// the source of doc in log messages.
func FromDocument(doc *plist.Document, resolveDir, origin string) []*Report {
	reports := []*Report{}
	for i := range doc.Diagnostics {
		context := fmt.Sprintf("diagnostic %d of %s", i, origin)
		reports = append(reports,
			fromDiagnostic(&doc.Diagnostics[i], doc.Files, resolveDir, context))
	}
	return reports
}

// ParseFile loads one result file and converts its diagnostics.
func ParseFile(path string) ([]*Report, error) {
	doc, err := plist.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc, filepath.Dir(path), filepath.Base(path)), nil
}

// ParseResultsDir parses every result file under dir, minus those matching
// a skip pattern. A file that fails to parse is skipped with a warning so
// one corrupt file does not lose the rest of the run.
func ParseResultsDir(dir string, skipPatterns []string) ([]*Report, error) {
	paths, err := ListResultFiles(dir, skipPatterns)
	if err != nil {
		return nil, err
	}
	reports := []*Report{}
	for _, path := range paths {
		parsed, err := ParseFile(path)
		if err != nil {
			glog.Warningf("skipping result file: %v", err)
			continue
		}
		reports = append(reports, parsed...)
	}
	return reports, nil
}

// ListResultFiles returns the result files under dir in walk order, minus
// those matching a skip pattern.
func ListResultFiles(dir string, skipPatterns []string) ([]string, error) {
	paths := []string{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".plist") {
			return nil
		}
		matched, err := MatchSkipPatterns(skipPatterns, path)
		if err != nil {
			return err
		}
		if !matched {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("filepath.WalkDir: %v", err)
	}
	return paths, nil
}

// MatchSkipPatterns reports whether path matches any of the skip patterns.
// Patterns use doublestar syntax, so "**/zlib/**" works.
func MatchSkipPatterns(skipPatterns []string, path string) (bool, error) {
	for _, pattern := range skipPatterns {
		matched, err := doublestar.Match(pattern, path)
		if err != nil {
			return false, fmt.Errorf("malformed skip pattern %s", pattern)
		}
		if matched {
			glog.Infof("Result file %s skipped due to pattern %s", path, pattern)
			return true, nil
		}
	}
	return false, nil
}

func fromDiagnostic(diag *plist.Diagnostic, files []string, resolveDir, context string) *Report {
	r := &Report{
		CheckerName: diag.CheckName,
		Category:    diag.Category,
		Type:        diag.Type,
		Message:     diag.Description,
		ReportHash:  diag.IssueHash,
	}
	for i := range diag.Path {
		piece := &diag.Path[i]
		switch piece.Kind {
		case "event":
			r.Path = append(r.Path, eventFrom(piece, files, resolveDir, context))
		case "control":
			r.Path = append(r.Path, controlFrom(piece, files, resolveDir, context))
		default:
			glog.Warningf("skipping path piece %d of unsupported kind %q in %s",
				i, piece.Kind, context)
		}
	}
	main := position(&diag.Location, files, resolveDir, context)
	events := r.Events()
	if main.Line == 0 && len(events) > 0 {
		// Some producers leave the main location and message to the last
		// event of the bug path.
		if last := events[len(events)-1].Location; last != nil {
			main = last
		}
	}
	if r.Message == "" && len(events) > 0 {
		r.Message = events[len(events)-1].Message
	}
	r.File = main.File
	r.Line = main.Line
	r.Col = main.Col
	return r
}

func eventFrom(piece *plist.PathPiece, files []string, resolveDir, context string) *BugPathEvent {
	event := &BugPathEvent{
		Location:        positionOrNil(piece.Location, files, resolveDir, context),
		Message:         piece.Message,
		ExtendedMessage: piece.ExtendedMessage,
	}
	for _, pair := range piece.Ranges {
		if r := rangeFrom(pair, files, resolveDir, context); r != nil {
			event.Ranges = append(event.Ranges, *r)
		}
	}
	return event
}

func controlFrom(piece *plist.PathPiece, files []string, resolveDir, context string) *BugPathControl {
	control := &BugPathControl{}
	// The first edge defines the control-flow step; producers emit at most
	// one. A control without edges stays rangeless and degrades to the
	// event-column fallback during hashing.
	if len(piece.Edges) > 0 {
		control.StartRange = rangeFrom(piece.Edges[0].Start, files, resolveDir, context)
		control.EndRange = rangeFrom(piece.Edges[0].End, files, resolveDir, context)
	}
	return control
}

func rangeFrom(pair []plist.Location, files []string, resolveDir, context string) *Range {
	if len(pair) == 0 {
		return nil
	}
	begin := position(&pair[0], files, resolveDir, context)
	end := begin
	if len(pair) > 1 {
		end = position(&pair[1], files, resolveDir, context)
	}
	return &Range{Begin: *begin, End: *end}
}

func positionOrNil(loc *plist.Location, files []string, resolveDir, context string) *Position {
	if loc == nil {
		return nil
	}
	return position(loc, files, resolveDir, context)
}

func position(loc *plist.Location, files []string, resolveDir, context string) *Position {
	return &Position{
		File: resolveFile(loc.File, files, resolveDir, context),
		Line: loc.Line,
		Col:  loc.Col,
	}
}

func resolveFile(index int, files []string, resolveDir, context string) string {
	if index < 0 || index >= len(files) {
		glog.Warningf("bad file index %d (files table has %d entries) in %s",
			index, len(files), context)
		return ""
	}
	path := files[index]
	if resolveDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(resolveDir, path)
	}
	return path
}
