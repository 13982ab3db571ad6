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

// Package reporthash turns reports into stable content-based identities.
//
// Each algorithm joins an exact sequence of fields with "|||" and digests
// the UTF-8 bytes with MD5 to a lowercase 32 hex char string. Stored
// results are matched against freshly computed hashes, so field order, the
// separator and the digest are a frozen wire format for every algorithm.
package reporthash

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"naive.systems/reportid/report"
	"naive.systems/reportid/sourcecode"
)

// Type selects the hash algorithm.
type Type int

const (
	// PathSensitive folds the columns of control-flow edges into the hash,
	// keeping apart reports that land on the same line via different
	// branches. It matches the hash clang-family analyzers emit natively.
	PathSensitive Type = iota
	// ContextFree includes the checker name and hashes the raw main line.
	// Kept so identities stored by old releases keep matching.
	ContextFree
	// ContextFreeV2 omits the checker name and strips whitespace from the
	// line content, so re-indenting a file or renaming a checker does not
	// change identities. The recommended mode.
	ContextFreeV2
	// DiagnosticMessage extends ContextFreeV2 with every event message of
	// the bug path. Rewording a single step message changes the identity,
	// which is why this mode is opt-in and never a default.
	DiagnosticMessage
)

func (t Type) String() string {
	switch t {
	case PathSensitive:
		return "path-sensitive"
	case ContextFree:
		return "context-free"
	case ContextFreeV2:
		return "context-free-v2"
	case DiagnosticMessage:
		return "diagnostic-message"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType maps a configured hash mode name to its Type. The empty string
// is not a mode; callers treat it as "keep the native hash" before calling.
func ParseType(name string) (Type, error) {
	switch name {
	case "context-free":
		return ContextFree, nil
	case "context-free-v2":
		return ContextFreeV2, nil
	case "diagnostic-message":
		return DiagnosticMessage, nil
	}
	return 0, fmt.Errorf("unknown report hash type %q", name)
}

// GetReportHash returns the identity of r under the selected algorithm.
// sourceFile is the file whose line content feeds the hash, normally
// r.File. A missing or unreadable source file is not an error: the line
// content degrades to empty and a digest is still produced, so identities
// survive hashing on machines that do not have the sources. An empty hash
// with a non-nil error means generation failed; an empty hash never
// identifies anything.
func GetReportHash(r *report.Report, sourceFile string, t Type, lines *sourcecode.Reader) (string, error) {
	var content []string
	var err error
	switch t {
	case PathSensitive:
		content, err = pathSensitiveContent(r, sourceFile, lines)
	case ContextFree:
		content, err = contextFreeContent(r, sourceFile, lines)
	case ContextFreeV2:
		content, err = contextFreeV2Content(r, sourceFile, lines)
	case DiagnosticMessage:
		content, err = diagnosticMessageContent(r, sourceFile, lines)
	default:
		err = fmt.Errorf("unknown report hash type %d", t)
	}
	if err != nil {
		return "", err
	}
	return hashContent(content), nil
}

// RecomputeHashes replaces every report's hash with the selected
// generator's, so runs hashed under different modes still compare.
func RecomputeHashes(reports []*report.Report, t Type, lines *sourcecode.Reader) {
	for _, r := range reports {
		hash, err := GetReportHash(r, r.File, t, lines)
		if err != nil {
			glog.Warningf("failed to hash report %s:%d [%s]: %v",
				r.File, r.Line, r.CheckerName, err)
		}
		r.ReportHash = hash
	}
}

// EnsureHashes fills in ReportHash for reports whose result file declared
// none. Reports that already carry a hash keep it.
func EnsureHashes(reports []*report.Report, t Type, lines *sourcecode.Reader) {
	for _, r := range reports {
		if r.ReportHash != "" {
			continue
		}
		hash, err := GetReportHash(r, r.File, t, lines)
		if err != nil {
			glog.Warningf("failed to hash report %s:%d [%s]: %v",
				r.File, r.Line, r.CheckerName, err)
			continue
		}
		r.ReportHash = hash
	}
}

func pathSensitiveContent(r *report.Report, sourceFile string, lines *sourcecode.Reader) ([]string, error) {
	if r.Line < 1 {
		return nil, fmt.Errorf("report in %s has no main location", sourceFile)
	}
	fromCol := r.Col
	untilCol := r.Col
	lineContent, _ := lines.Line(sourceFile, r.Line)
	content := []string{
		baseName(sourceFile),
		r.CheckerName,
		r.Message,
		lineContent,
		strconv.Itoa(fromCol),
		strconv.Itoa(untilCol),
	}
	controls := r.Controls()
	useEventColumns := len(controls) == 0
	for _, control := range controls {
		// A control without resolved ranges cannot supply columns. The
		// whole report degrades to event columns; folding the resolved
		// controls around it would hash a sequence no other producer of
		// this report ever sees.
		if control.StartRange == nil || control.EndRange == nil {
			useEventColumns = true
			break
		}
	}
	if !useEventColumns {
		for i, control := range controls {
			// A control step starting exactly where the previous one ended
			// is the same edge continued; its start columns are already
			// hashed.
			if i == 0 || !sameRange(controls[i-1].EndRange, control.StartRange) {
				content = append(content,
					strconv.Itoa(control.StartRange.Begin.Col),
					strconv.Itoa(control.StartRange.End.Col))
			}
			content = append(content,
				strconv.Itoa(control.EndRange.Begin.Col),
				strconv.Itoa(control.EndRange.End.Col))
		}
	}
	if useEventColumns {
		for _, event := range r.Events() {
			col := 0
			if event.Location != nil {
				col = event.Location.Col
			}
			content = append(content, strconv.Itoa(col))
		}
	}
	return content, nil
}

func contextFreeContent(r *report.Report, sourceFile string, lines *sourcecode.Reader) ([]string, error) {
	if r.Line < 1 {
		return nil, fmt.Errorf("report in %s has no main location", sourceFile)
	}
	lineContent, _ := lines.Line(sourceFile, r.Line)
	return []string{
		baseName(sourceFile),
		r.CheckerName,
		r.Message,
		lineContent,
		strconv.Itoa(r.Col),
		strconv.Itoa(r.Col),
	}, nil
}

func contextFreeV2Content(r *report.Report, sourceFile string, lines *sourcecode.Reader) ([]string, error) {
	if r.Line < 1 {
		return nil, fmt.Errorf("report in %s has no main location", sourceFile)
	}
	fromCol := r.Col
	untilCol := r.Col
	lineContent, _ := lines.Line(sourceFile, r.Line)
	lineContent, newCol := sourcecode.StripWhitespace(lineContent, fromCol)
	untilCol -= fromCol - newCol
	fromCol = newCol
	return []string{
		baseName(sourceFile),
		r.Message,
		lineContent,
		strconv.Itoa(fromCol),
		strconv.Itoa(untilCol),
	}, nil
}

func diagnosticMessageContent(r *report.Report, sourceFile string, lines *sourcecode.Reader) ([]string, error) {
	content, err := contextFreeV2Content(r, sourceFile, lines)
	if err != nil {
		return nil, err
	}
	for _, event := range r.Events() {
		content = append(content, event.Message)
	}
	return content, nil
}

func sameRange(a, b *report.Range) bool {
	return a.Begin == b.Begin && a.End == b.End
}

func hashContent(content []string) string {
	sum := md5.Sum([]byte(strings.Join(content, "|||")))
	return hex.EncodeToString(sum[:])
}

// baseName is filepath.Base except that an unresolved (empty) path stays
// empty instead of becoming ".".
func baseName(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}
