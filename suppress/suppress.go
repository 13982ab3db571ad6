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
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"naive.systems/reportid/report"
)

const (
	StatusFalsePositive = "false_positive"
	StatusIntentional   = "intentional"
	StatusConfirmed     = "confirmed"
)

// Record marks one report identity as reviewed. A record with a FilePath
// only applies to reports whose file has that base name, so a hash that
// collides across files is not silenced everywhere.
type Record struct {
	ReportHash string `json:"report_hash"`
	FilePath   string `json:"file_path,omitempty"`
	Comment    string `json:"comment,omitempty"`
	Status     string `json:"status"`
}

type RecordsList struct {
	Suppressions []Record `json:"suppressions"`
}

type suppressionAsKey struct {
	hash string
	base string
}

func visit(files *[]string) filepath.WalkFunc {
	return func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".nsa_suppression" {
			return nil
		}
		*files = append(*files, path)
		return nil
	}
}

func getSuppressionMap(suppressionFiles []string) (map[suppressionAsKey]*Record, error) {
	suppressionMap := make(map[suppressionAsKey]*Record)
	for _, suppressionFile := range suppressionFiles {
		bytes, err := os.ReadFile(suppressionFile)
		if err != nil {
			return nil, err
		}
		records := &RecordsList{}
		err = json.Unmarshal(bytes, records)
		if err != nil {
			return nil, err
		}
		for i := range records.Suppressions {
			record := &records.Suppressions[i]
			if record.ReportHash == "" {
				glog.Warningf("suppression record without report_hash in %s", suppressionFile)
				continue
			}
			switch record.Status {
			case StatusFalsePositive, StatusIntentional, StatusConfirmed:
			default:
				glog.Warningf("unknown suppression status %q in %s", record.Status, suppressionFile)
			}
			base := ""
			if record.FilePath != "" {
				base = filepath.Base(record.FilePath)
			}
			suppressionMap[suppressionAsKey{hash: record.ReportHash, base: base}] = record
		}
	}
	return suppressionMap, nil
}

func suppressing(suppressionMap map[suppressionAsKey]*Record, r *report.Report) bool {
	base := ""
	if r.File != "" {
		base = filepath.Base(r.File)
	}
	record, exist := suppressionMap[suppressionAsKey{hash: r.ReportHash, base: base}]
	if !exist {
		record, exist = suppressionMap[suppressionAsKey{hash: r.ReportHash, base: ""}]
	}
	if !exist {
		return false
	}
	return record.Status == StatusFalsePositive || record.Status == StatusIntentional
}

// ProcessSuppression drops the reports that records under suppressionDir
// mark false positive or intentional. Reports without a hash carry no
// identity and are never suppressed.
func ProcessSuppression(reports []*report.Report, suppressionDir string) ([]*report.Report, error) {
	var suppressionFiles []string
	err := filepath.Walk(suppressionDir, visit(&suppressionFiles))
	if err != nil {
		return reports, err
	}
	suppressionMap, err := getSuppressionMap(suppressionFiles)
	if err != nil {
		return reports, err
	}
	countMap := make(map[string]int)
	newReports := []*report.Report{}
	for _, r := range reports {
		if r.ReportHash != "" && suppressing(suppressionMap, r) {
			countMap[r.CheckerName]++
		} else {
			newReports = append(newReports, r)
		}
	}
	for checkerName, count := range countMap {
		glog.Infof("%d reports of %s are filtered out with suppression", count, checkerName)
	}
	return newReports, nil
}
