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

// Package report holds the in-memory form of analyzer findings: one Report
// per finding, with an ordered bug path of event and control segments.
package report

import (
	"sort"

	"github.com/golang/glog"
	"github.com/google/uuid"
)

// Position is one point in one source file. File is the resolved path, or
// empty when the result file referenced a file the files table does not
// have. Line and Col are 1-indexed.
type Position struct {
	File string
	Line int
	Col  int
}

// Range is a source span. A range built from a single position has
// End == Begin.
type Range struct {
	Begin Position
	End   Position
}

type segmentKind int

const (
	eventSegment segmentKind = iota
	controlSegment
)

// PathSegment is one step of a bug path. The set of implementations is
// closed: BugPathEvent and BugPathControl only. Consumers type-switch on
// the concrete types and must skip anything else.
type PathSegment interface {
	kind() segmentKind
}

// BugPathEvent is an "event" step: something the analyzer observed at a
// location, with a human-readable message. Some analyzers emit events
// without a location, carrying only ranges.
type BugPathEvent struct {
	Location        *Position
	Message         string
	ExtendedMessage string
	Ranges          []Range
}

func (*BugPathEvent) kind() segmentKind { return eventSegment }

// BugPathControl is a "control" step: one control-flow edge between two
// source ranges. Either range is nil when the analyzer emitted no
// resolvable edge; such segments cannot contribute columns to hashing.
type BugPathControl struct {
	StartRange *Range
	EndRange   *Range
}

func (*BugPathControl) kind() segmentKind { return controlSegment }

// Report is one parsed finding. All fields are set when the report is
// built from a result file and stay fixed afterwards, except ReportHash,
// which the hash rewrite step replaces, and ID, which AddIDs stamps.
type Report struct {
	ID          string
	File        string
	Line        int
	Col         int
	CheckerName string
	Category    string
	Type        string
	Message     string
	Path        []PathSegment
	// ReportHash is the identity the result file declared, if any. Empty
	// means the producing analyzer emitted none and one must be generated.
	ReportHash string
}

// Events returns the event segments of the bug path in order.
func (r *Report) Events() []*BugPathEvent {
	events := []*BugPathEvent{}
	for _, segment := range r.Path {
		if event, ok := segment.(*BugPathEvent); ok {
			events = append(events, event)
		}
	}
	return events
}

// Controls returns the control segments of the bug path in order.
func (r *Report) Controls() []*BugPathControl {
	controls := []*BugPathControl{}
	for _, segment := range r.Path {
		if control, ok := segment.(*BugPathControl); ok {
			controls = append(controls, control)
		}
	}
	return controls
}

// dedupKey identifies a finding for deduplication.
type dedupKey struct {
	reportHash string
	pathHash   string
}

// Dedup removes duplicate reports, preserving first-seen order. Reports
// are keyed by their report hash; pass a pathHash function to additionally
// keep reports apart that share a hash but reached the defect along
// different event routes. Reports with an empty hash never merge, since an
// empty hash means generation failed, not a shared identity.
func Dedup(reports []*Report, pathHash func(*Report) string) []*Report {
	unique := []*Report{}
	stored := map[dedupKey]struct{}{}
	for _, r := range reports {
		if r.ReportHash == "" {
			unique = append(unique, r)
			continue
		}
		key := dedupKey{reportHash: r.ReportHash}
		if pathHash != nil {
			key.pathHash = pathHash(r)
		}
		if _, reported := stored[key]; !reported {
			stored[key] = struct{}{}
			unique = append(unique, r)
		}
	}
	return unique
}

// SortReports orders reports by file, then line, then message, so report
// listings and baselines are stable across runs.
func SortReports(reports []*Report) {
	sort.Slice(reports, func(i, j int) bool {
		if reports[i].File != reports[j].File {
			return reports[i].File < reports[j].File
		}
		if reports[i].Line != reports[j].Line {
			return reports[i].Line < reports[j].Line
		}
		return reports[i].Message < reports[j].Message
	})
}

// AddIDs stamps every report with a fresh uuid.
func AddIDs(reports []*Report) {
	for _, r := range reports {
		id, err := uuid.NewRandom()
		if err != nil {
			// Just warning. If an ID is left empty here, whoever stores the
			// reports regenerates it. Report errors at that time.
			glog.Warningf("uuid.NewRandom: %v", err)
			continue
		}
		r.ID = id.String()
	}
}
