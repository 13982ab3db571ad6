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

// Package plist reads and writes the property-list result files emitted by
// clang-family analyzers and stored in CodeChecker-style results directories.
package plist

import (
	"fmt"
	"os"

	plistcodec "howett.net/plist"
)

// Location is one point in one source file. File indexes into the files
// table of the enclosing document.
type Location struct {
	Line int `plist:"line"`
	Col  int `plist:"col"`
	File int `plist:"file"`
}

// Edge is one control-flow step. Start and End each hold a begin/end
// position pair describing the source range of the step.
type Edge struct {
	Start []Location `plist:"start"`
	End   []Location `plist:"end"`
}

// PathPiece is one element of a diagnostic's bug path. Kind selects which
// fields are populated: "event" pieces carry a location and messages,
// "control" pieces carry edges.
type PathPiece struct {
	Kind            string       `plist:"kind"`
	Location        *Location    `plist:"location,omitempty"`
	Ranges          [][]Location `plist:"ranges,omitempty"`
	Depth           *int         `plist:"depth,omitempty"`
	ExtendedMessage string       `plist:"extended_message,omitempty"`
	Message         string       `plist:"message,omitempty"`
	Edges           []Edge       `plist:"edges,omitempty"`
}

// MacroExpansion records the expanded form of a macro on the bug path.
type MacroExpansion struct {
	Location  *Location `plist:"location,omitempty"`
	Name      string    `plist:"name,omitempty"`
	Expansion string    `plist:"expansion,omitempty"`
}

// Diagnostic is one finding as stored in a result file.
type Diagnostic struct {
	Location                Location         `plist:"location"`
	Description             string           `plist:"description"`
	Category                string           `plist:"category"`
	Type                    string           `plist:"type"`
	CheckName               string           `plist:"check_name"`
	IssueContextKind        string           `plist:"issue_context_kind,omitempty"`
	IssueContext            string           `plist:"issue_context,omitempty"`
	IssueHashFunctionOffset string           `plist:"issue_hash_function_offset,omitempty"`
	IssueHash               string           `plist:"issue_hash_content_of_line_in_context,omitempty"`
	Path                    []PathPiece      `plist:"path"`
	Notes                   []PathPiece      `plist:"notes,omitempty"`
	MacroExpansions         []MacroExpansion `plist:"macro_expansions,omitempty"`
}

// ToolInfo names the tool that produced or post-processed a result file.
type ToolInfo struct {
	Name    string `plist:"name,omitempty"`
	Version string `plist:"version,omitempty"`
}

type Metadata struct {
	Analyzer    *ToolInfo `plist:"analyzer,omitempty"`
	GeneratedBy *ToolInfo `plist:"generated_by,omitempty"`
}

// Document is one parsed result file: a files table plus the diagnostics
// whose positions index into it.
type Document struct {
	ClangVersion string       `plist:"clang_version,omitempty"`
	Files        []string     `plist:"files"`
	Diagnostics  []Diagnostic `plist:"diagnostics"`
	Metadata     *Metadata    `plist:"metadata,omitempty"`
}

// Parse decodes one result file.
func Parse(data []byte) (*Document, error) {
	doc := &Document{}
	if _, err := plistcodec.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("plist.Unmarshal: %v", err)
	}
	return doc, nil
}

// ParseFile reads and decodes the named result file.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile: %v", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %v", path, err)
	}
	return doc, nil
}

// Encode renders the document as XML. Field order is fixed by the schema
// structs, so encoding the same document twice yields identical bytes.
func (d *Document) Encode() ([]byte, error) {
	data, err := plistcodec.MarshalIndent(d, plistcodec.XMLFormat, "\t")
	if err != nil {
		return nil, fmt.Errorf("plist.MarshalIndent: %v", err)
	}
	return data, nil
}
