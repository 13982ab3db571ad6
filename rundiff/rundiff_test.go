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

package rundiff

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"naive.systems/reportid/plist"
	"naive.systems/reportid/report"
	"naive.systems/reportid/reporthash"
)

func resultDoc(file string, line int, checkerName, message, hash string) *plist.Document {
	return &plist.Document{
		Files: []string{file},
		Diagnostics: []plist.Diagnostic{{
			Location:    plist.Location{Line: line, Col: 5, File: 0},
			Description: message,
			Category:    "Logic error",
			CheckName:   checkerName,
			IssueHash:   hash,
			Path: []plist.PathPiece{{
				Kind:     "event",
				Location: &plist.Location{Line: line, Col: 5, File: 0},
				Message:  message,
			}},
		}},
	}
}

func writeResultFile(t *testing.T, dir, name string, doc *plist.Document) {
	t.Helper()
	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}
}

func TestCompare(t *testing.T) {
	baseHashes := []string{"aaaa", "bbbb", "cccc"}
	newReports := []*report.Report{
		{ReportHash: "aaaa", File: "m.c", Line: 9, Message: "still here"},
		{ReportHash: "dddd", File: "m.c", Line: 3, Message: "brand new"},
		{ReportHash: "", File: "m.c", Line: 1, Message: "unhashable"},
	}
	d := Compare(baseHashes, newReports)

	if len(d.New) != 2 {
		t.Fatalf("got %d new reports, want 2", len(d.New))
	}
	if d.New[0].Message != "unhashable" || d.New[1].ReportHash != "dddd" {
		t.Errorf("unexpected new bucket: %+v, %+v", d.New[0], d.New[1])
	}
	if len(d.Unresolved) != 1 || d.Unresolved[0].ReportHash != "aaaa" {
		t.Errorf("unexpected unresolved bucket: %+v", d.Unresolved)
	}
	if !reflect.DeepEqual(d.Resolved, []string{"bbbb", "cccc"}) {
		t.Errorf("resolved = %v, want [bbbb cccc]", d.Resolved)
	}
	counts := d.Counts()
	if counts.New != 2 || counts.Resolved != 2 || counts.Unresolved != 1 {
		t.Errorf("unexpected counts %+v", counts)
	}
}

func TestBaselineRoundTrip(t *testing.T) {
	dir := t.TempDir()
	reports := []*report.Report{
		{ReportHash: "bbbb"},
		{ReportHash: "aaaa"},
		{ReportHash: "bbbb"},
		{ReportHash: ""},
	}
	if err := CreateBaselineFile(reports, dir); err != nil {
		t.Fatalf("CreateBaselineFile: %v", err)
	}
	baseline, err := GetBaseline(filepath.Join(dir, "baseline.json"))
	if err != nil {
		t.Fatalf("GetBaseline: %v", err)
	}
	if !reflect.DeepEqual(baseline.Hashes, []string{"aaaa", "bbbb"}) {
		t.Errorf("baseline hashes = %v, want [aaaa bbbb]", baseline.Hashes)
	}
}

func TestGetBaselineMissing(t *testing.T) {
	if _, err := GetBaseline(filepath.Join(t.TempDir(), "baseline.json")); err == nil {
		t.Fatal("expected an error for a missing baseline file")
	}
}

func TestCompareDirs(t *testing.T) {
	baseDir := t.TempDir()
	newDir := t.TempDir()
	writeResultFile(t, baseDir, "one.plist", resultDoc("div.c", 4, "core.DivideZero", "Division by zero", "aaaa"))
	writeResultFile(t, baseDir, "two.plist", resultDoc("use.c", 7, "core.NullDereference", "Null pointer", "bbbb"))
	writeResultFile(t, newDir, "one.plist", resultDoc("div.c", 4, "core.DivideZero", "Division by zero", "aaaa"))
	writeResultFile(t, newDir, "three.plist", resultDoc("new.c", 2, "deadcode.DeadStores", "Dead store", "cccc"))

	d, err := CompareDirs(baseDir, newDir, Options{Charset: "utf8"})
	if err != nil {
		t.Fatalf("CompareDirs: %v", err)
	}
	if len(d.New) != 1 || d.New[0].ReportHash != "cccc" {
		t.Errorf("unexpected new bucket: %+v", d.New)
	}
	if len(d.Unresolved) != 1 || d.Unresolved[0].ReportHash != "aaaa" {
		t.Errorf("unexpected unresolved bucket: %+v", d.Unresolved)
	}
	if !reflect.DeepEqual(d.Resolved, []string{"bbbb"}) {
		t.Errorf("resolved = %v, want [bbbb]", d.Resolved)
	}
}

// Runs hashed by different producers only compare after recomputing both
// sides under one mode.
func TestCompareDirsRecompute(t *testing.T) {
	baseDir := t.TempDir()
	newDir := t.TempDir()
	writeResultFile(t, baseDir, "one.plist", resultDoc("div.c", 4, "core.DivideZero", "Division by zero", "1111"))
	writeResultFile(t, newDir, "one.plist", resultDoc("div.c", 4, "core.DivideZero", "Division by zero", "2222"))

	d, err := CompareDirs(baseDir, newDir, Options{Charset: "utf8"})
	if err != nil {
		t.Fatalf("CompareDirs: %v", err)
	}
	if len(d.Unresolved) != 0 {
		t.Fatalf("native hashes should not match: %+v", d.Unresolved)
	}

	d, err = CompareDirs(baseDir, newDir, Options{
		Charset:       "utf8",
		HashType:      reporthash.ContextFreeV2,
		RecomputeHash: true,
	})
	if err != nil {
		t.Fatalf("CompareDirs: %v", err)
	}
	if len(d.Unresolved) != 1 || len(d.New) != 0 || len(d.Resolved) != 0 {
		t.Errorf("recomputed runs do not match: %+v", d.Counts())
	}
}

func TestExportJSON(t *testing.T) {
	d := &Diff{
		New:        []*report.Report{{File: "m.c", Line: 3, Col: 1, CheckerName: "core.DivideZero", Message: "boom", ReportHash: "dddd"}},
		Resolved:   []string{"bbbb"},
		Unresolved: []*report.Report{},
	}
	path := filepath.Join(t.TempDir(), "diff.json")
	if err := ExportJSON(d, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("os.ReadFile: %v", err)
	}
	got := string(content)
	for _, want := range []string{`"report_hash": "dddd"`, `"resolved"`, `"bbbb"`, `"checker_name": "core.DivideZero"`} {
		if !strings.Contains(got, want) {
			t.Errorf("export missing %s:\n%s", want, got)
		}
	}
}
