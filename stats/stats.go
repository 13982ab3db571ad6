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

package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/golang/glog"
	"naive.systems/reportid/atomic"
)

// rewrite stages
const (
	LS  int = iota // Result file listing
	RW             // Report hash recomputation
	END
)

type Progress struct {
	StageID   int       `json:"stage_id"`
	DoneRatio string    `json:"done_ratio"`
	StartedAt time.Time `json:"started_at"`
}

type RewriteCount struct {
	FilesScanned   int            `json:"files_scanned"`
	FilesRewritten int            `json:"files_rewritten"`
	FilesSkipped   int            `json:"files_skipped"`
	FilesEmpty     int            `json:"files_empty"`
	FilesUnchanged int            `json:"files_unchanged"`
	Reports        int            `json:"reports"`
	EmptyHashes    int            `json:"empty_hashes"`
	ByChecker      map[string]int `json:"by_checker"`
}

func NewRewriteCount() *RewriteCount {
	return &RewriteCount{ByChecker: map[string]int{}}
}

func WriteLOC(resultDir string, linesCounter int) {
	path := filepath.Join(resultDir, "loc.nsa_metadata")
	err := atomic.Write(path, []byte(strconv.Itoa(linesCounter)))
	if err != nil {
		glog.Errorf("failed to write to file %s: %v", path, err)
	}
}

func WriteProgress(resultDir string, stageID int, doneRatio string, startedAt time.Time) {
	// skip writing it if resultDir does not exist
	_, err := os.Stat(resultDir)
	if os.IsNotExist(err) {
		glog.Warningf("result dir %s does not exist", resultDir)
		return
	}
	path := filepath.Join(resultDir, "progress.nsa_metadata")
	progress, err := json.Marshal(Progress{StageID: stageID, DoneRatio: doneRatio, StartedAt: startedAt})
	if err != nil {
		glog.Errorf("failed to marshal json stageID %d and doneRatio %s: %v", stageID, doneRatio, err)
		return
	}
	err = atomic.Write(path, progress)
	if err != nil {
		glog.Errorf("failed to write to file %s: %v", path, err)
	}
}

func AccumulateByChecker(cnt *RewriteCount, checkerName string) {
	if checkerName == "" {
		checkerName = "unknown"
	}
	cnt.ByChecker[checkerName]++
}

func GetRewriteCountBytes(cnt *RewriteCount) ([]byte, error) {
	statsBytes, err := json.Marshal(cnt)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %v", err)
	}
	return statsBytes, nil
}

func WriteRewriteStats(cnt *RewriteCount, resultDir string) {
	statsBytes, err := GetRewriteCountBytes(cnt)
	if err != nil {
		glog.Errorf("failed to get rewrite count bytes: %v", err)
	}
	statsFile := filepath.Join(resultDir, "rewrite_stats.nsa_metadata")
	err = atomic.Write(statsFile, statsBytes)
	if err != nil {
		glog.Errorf("failed to write to file %s: %v", statsFile, err)
	}
}
