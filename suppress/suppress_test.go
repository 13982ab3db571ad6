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

package suppress

import (
	"os"
	"path/filepath"
	"testing"

	"naive.systems/reportid/report"
)

func writeSuppressionFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("os.MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}
}

func hashed(hash, file, checkerName string) *report.Report {
	return &report.Report{ReportHash: hash, File: file, CheckerName: checkerName}
}

func TestProcessSuppression(t *testing.T) {
	dir := t.TempDir()
	writeSuppressionFile(t, filepath.Join(dir, "reviewed.nsa_suppression"), `{
		"suppressions": [
			{"report_hash": "aaaa", "status": "false_positive", "comment": "checked by hand"},
			{"report_hash": "bbbb", "file_path": "src/div.c", "status": "intentional"},
			{"report_hash": "cccc", "status": "confirmed"}
		]
	}`)
	writeSuppressionFile(t, filepath.Join(dir, "sub", "more.nsa_suppression"), `{
		"suppressions": [
			{"report_hash": "dddd", "status": "false_positive"}
		]
	}`)
	// not a suppression file, must be ignored
	writeSuppressionFile(t, filepath.Join(dir, "notes.json"), "junk")

	reports := []*report.Report{
		hashed("aaaa", "/work/main.c", "core.DivideZero"),
		hashed("bbbb", "/work/lib/div.c", "core.DivideZero"),
		hashed("bbbb", "/work/main.c", "core.DivideZero"),
		hashed("cccc", "/work/main.c", "deadcode.DeadStores"),
		hashed("dddd", "/work/main.c", "core.NullDereference"),
		hashed("", "/work/main.c", "core.NullDereference"),
	}
	kept, err := ProcessSuppression(reports, dir)
	if err != nil {
		t.Fatalf("ProcessSuppression: %v", err)
	}
	wantKept := []string{"bbbb", "cccc", ""}
	if len(kept) != len(wantKept) {
		t.Fatalf("kept %d reports, want %d", len(kept), len(wantKept))
	}
	for i, r := range kept {
		if r.ReportHash != wantKept[i] {
			t.Errorf("kept[%d].ReportHash = %q, want %q", i, r.ReportHash, wantKept[i])
		}
	}
	if kept[0].File != "/work/main.c" {
		t.Errorf("file-scoped record suppressed the wrong report: %s", kept[0].File)
	}
}

func TestProcessSuppressionMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeSuppressionFile(t, filepath.Join(dir, "broken.nsa_suppression"), "not json")

	reports := []*report.Report{hashed("aaaa", "/work/main.c", "core.DivideZero")}
	kept, err := ProcessSuppression(reports, dir)
	if err == nil {
		t.Fatal("expected an error for a malformed suppression file")
	}
	if len(kept) != 1 {
		t.Fatalf("reports lost on error: kept %d, want 1", len(kept))
	}
}

func TestProcessSuppressionEmptyDir(t *testing.T) {
	reports := []*report.Report{hashed("aaaa", "/work/main.c", "core.DivideZero")}
	kept, err := ProcessSuppression(reports, t.TempDir())
	if err != nil {
		t.Fatalf("ProcessSuppression: %v", err)
	}
	if len(kept) != 1 {
		t.Fatalf("kept %d reports, want 1", len(kept))
	}
}
