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

// Package rundiff compares two analysis runs by report identity.
package rundiff

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"golang.org/x/exp/slices"
	"naive.systems/reportid/atomic"
	"naive.systems/reportid/report"
	"naive.systems/reportid/reporthash"
	"naive.systems/reportid/sourcecode"
	"naive.systems/reportid/suppress"
)

// Baseline pins the identities of a finished run. Diffing against it does
// not need the run's result files anymore.
type Baseline struct {
	Hashes []string `json:"hashes"`
}

// Diff buckets the reports of a new run against a base run. Resolved
// identities have no report to show, only the hash survives in the base.
type Diff struct {
	New        []*report.Report
	Resolved   []string
	Unresolved []*report.Report
}

type Counts struct {
	New        int `json:"new"`
	Resolved   int `json:"resolved"`
	Unresolved int `json:"unresolved"`
}

func (d *Diff) Counts() Counts {
	return Counts{New: len(d.New), Resolved: len(d.Resolved), Unresolved: len(d.Unresolved)}
}

// BaselineHashes returns the unique report hashes, sorted. Reports whose
// hash generation failed carry no identity and are left out.
func BaselineHashes(reports []*report.Report) []string {
	hashes := []string{}
	for _, r := range reports {
		if r.ReportHash != "" {
			hashes = append(hashes, r.ReportHash)
		}
	}
	slices.Sort(hashes)
	return slices.Compact(hashes)
}

func CreateBaselineFile(reports []*report.Report, resultsDir string) error {
	baselinePath := filepath.Join(resultsDir, "baseline.json")
	baseline := Baseline{Hashes: BaselineHashes(reports)}
	out, err := json.MarshalIndent(baseline, "", "\t")
	if err != nil {
		return fmt.Errorf("Cannot stringify baseline")
	}
	err = atomic.Write(baselinePath, out)
	if err != nil {
		return fmt.Errorf("Cannot write baseline.json")
	}
	return nil
}

func GetBaseline(baselinePath string) (Baseline, error) {
	var baseline Baseline
	baselineFile, err := os.Open(baselinePath)
	if err != nil {
		return baseline, fmt.Errorf("Cannot open %s", baselinePath)
	}
	defer baselineFile.Close()
	baselineContent, err := io.ReadAll(baselineFile)
	if err != nil {
		return baseline, fmt.Errorf("Cannot read %s", baselinePath)
	}
	err = json.Unmarshal(baselineContent, &baseline)
	if err != nil {
		return baseline, fmt.Errorf("Cannot parse %s", baselinePath)
	}
	return baseline, nil
}

// Options controls how runs are loaded before diffing.
type Options struct {
	SkipPatterns   []string
	Charset        string
	HashType       reporthash.Type
	RecomputeHash  bool
	SuppressionDir string
}

// LoadRun parses the result files of one run, pins every report's identity
// and collapses duplicates, so runs hashed by different producers compare.
func LoadRun(resultsDir string, opts Options) ([]*report.Report, error) {
	reports, err := report.ParseResultsDir(resultsDir, opts.SkipPatterns)
	if err != nil {
		return nil, err
	}
	lines := sourcecode.NewReader(opts.Charset)
	if opts.RecomputeHash {
		reporthash.RecomputeHashes(reports, opts.HashType, lines)
	} else {
		reporthash.EnsureHashes(reports, reporthash.PathSensitive, lines)
	}
	reports = report.Dedup(reports, reporthash.GetReportPathHash)
	if opts.SuppressionDir != "" {
		reports, err = suppress.ProcessSuppression(reports, opts.SuppressionDir)
		if err != nil {
			glog.Warningf("suppression filtering failed: %v", err)
		}
	}
	report.SortReports(reports)
	return reports, nil
}

// Compare splits newReports against the base identities. Reports with no
// hash cannot be matched and count as new.
func Compare(baseHashes []string, newReports []*report.Report) *Diff {
	baseSet := make(map[string]struct{}, len(baseHashes))
	for _, hash := range baseHashes {
		baseSet[hash] = struct{}{}
	}
	d := &Diff{New: []*report.Report{}, Resolved: []string{}, Unresolved: []*report.Report{}}
	seen := map[string]struct{}{}
	for _, r := range newReports {
		if r.ReportHash == "" {
			d.New = append(d.New, r)
			continue
		}
		seen[r.ReportHash] = struct{}{}
		if _, exist := baseSet[r.ReportHash]; exist {
			d.Unresolved = append(d.Unresolved, r)
		} else {
			d.New = append(d.New, r)
		}
	}
	for _, hash := range baseHashes {
		if _, exist := seen[hash]; !exist {
			d.Resolved = append(d.Resolved, hash)
		}
	}
	report.SortReports(d.New)
	report.SortReports(d.Unresolved)
	slices.Sort(d.Resolved)
	return d
}

// CompareDirs diffs the runs stored in two results dirs.
func CompareDirs(baseDir, newDir string, opts Options) (*Diff, error) {
	baseReports, err := LoadRun(baseDir, opts)
	if err != nil {
		return nil, fmt.Errorf("loading base run: %v", err)
	}
	newReports, err := LoadRun(newDir, opts)
	if err != nil {
		return nil, fmt.Errorf("loading new run: %v", err)
	}
	return Compare(BaselineHashes(baseReports), newReports), nil
}

type exportedReport struct {
	File        string `json:"file"`
	Line        int    `json:"line"`
	Col         int    `json:"col"`
	CheckerName string `json:"checker_name"`
	Message     string `json:"message"`
	ReportHash  string `json:"report_hash"`
}

type exportedDiff struct {
	New        []exportedReport `json:"new"`
	Resolved   []string         `json:"resolved"`
	Unresolved []exportedReport `json:"unresolved"`
}

func exportReports(reports []*report.Report) []exportedReport {
	exported := []exportedReport{}
	for _, r := range reports {
		exported = append(exported, exportedReport{
			File:        r.File,
			Line:        r.Line,
			Col:         r.Col,
			CheckerName: r.CheckerName,
			Message:     r.Message,
			ReportHash:  r.ReportHash,
		})
	}
	return exported
}

// ExportJSON writes the diff for machine consumers.
func ExportJSON(d *Diff, path string) error {
	exported := exportedDiff{
		New:        exportReports(d.New),
		Resolved:   d.Resolved,
		Unresolved: exportReports(d.Unresolved),
	}
	if exported.Resolved == nil {
		exported.Resolved = []string{}
	}
	out, err := json.MarshalIndent(exported, "", "\t")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent: %v", err)
	}
	err = atomic.Write(path, out)
	if err != nil {
		return fmt.Errorf("atomic.Write: %v", err)
	}
	return nil
}
