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
	"strconv"
	"testing"
)

func TestEventsAndControls(t *testing.T) {
	r := &Report{
		Path: []PathSegment{
			&BugPathControl{},
			&BugPathEvent{Message: "first"},
			&BugPathControl{},
			&BugPathEvent{Message: "second"},
		},
	}
	events := r.Events()
	if len(events) != 2 || events[0].Message != "first" || events[1].Message != "second" {
		t.Fatalf("unexpected events: %+v", events)
	}
	if len(r.Controls()) != 2 {
		t.Fatalf("expected 2 controls, got %d", len(r.Controls()))
	}
}

func TestDedup(t *testing.T) {
	reports := []*Report{
		{ReportHash: "aaa", Line: 1},
		{ReportHash: "bbb", Line: 2},
		{ReportHash: "aaa", Line: 3},
	}
	unique := Dedup(reports, nil)
	if len(unique) != 2 {
		t.Fatalf("expected 2 unique reports, got %d", len(unique))
	}
	if unique[0].Line != 1 || unique[1].Line != 2 {
		t.Fatalf("Dedup did not preserve order: %+v", unique)
	}
}

func TestDedupPathAware(t *testing.T) {
	reports := []*Report{
		{ReportHash: "aaa", Line: 1},
		{ReportHash: "aaa", Line: 2},
		{ReportHash: "aaa", Line: 1},
	}
	byLine := func(r *Report) string { return strconv.Itoa(r.Line) }
	unique := Dedup(reports, byLine)
	if len(unique) != 2 {
		t.Fatalf("expected 2 unique reports, got %d", len(unique))
	}
}

func TestDedupKeepsHashlessReports(t *testing.T) {
	reports := []*Report{
		{ReportHash: "", Line: 1},
		{ReportHash: "", Line: 2},
	}
	unique := Dedup(reports, nil)
	if len(unique) != 2 {
		t.Fatalf("reports without a hash must never merge, got %d", len(unique))
	}
}

func TestSortReports(t *testing.T) {
	reports := []*Report{
		{File: "b.c", Line: 3, Message: "m"},
		{File: "a.c", Line: 9, Message: "z"},
		{File: "a.c", Line: 9, Message: "a"},
		{File: "a.c", Line: 2, Message: "m"},
	}
	SortReports(reports)
	want := []struct {
		file    string
		line    int
		message string
	}{
		{"a.c", 2, "m"},
		{"a.c", 9, "a"},
		{"a.c", 9, "z"},
		{"b.c", 3, "m"},
	}
	for i, w := range want {
		got := reports[i]
		if got.File != w.file || got.Line != w.line || got.Message != w.message {
			t.Fatalf("position %d: got {%s %d %s}, want %+v",
				i, got.File, got.Line, got.Message, w)
		}
	}
}

func TestAddIDs(t *testing.T) {
	reports := []*Report{{}, {}, {}}
	AddIDs(reports)
	seen := map[string]bool{}
	for i, r := range reports {
		if r.ID == "" {
			t.Fatalf("report %d has no ID", i)
		}
		if seen[r.ID] {
			t.Fatalf("duplicate ID %s", r.ID)
		}
		seen[r.ID] = true
	}
}
