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

// Package rewrite recomputes the report hashes stored in result files.
package rewrite

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/exp/slices"
	"naive.systems/reportid/atomic"
	"naive.systems/reportid/basic"
	"naive.systems/reportid/i18n"
	"naive.systems/reportid/plist"
	"naive.systems/reportid/report"
	"naive.systems/reportid/reporthash"
	"naive.systems/reportid/sourcecode"
	"naive.systems/reportid/stats"
)

// Options controls a batch rewrite over a results dir.
type Options struct {
	SkipPatterns []string
	Charset      string
	Lang         string
	NumWorkers   int32
	ShowProgress bool
}

// File recomputes the hash of every diagnostic in the result file at path
// with the selected generator and replaces the file atomically. A diagnostic
// that cannot be hashed gets the empty hash so the file is still usable.
// Files with no diagnostics are left untouched.
//
// Returns the reports as rewritten and whether the file was replaced.
func File(path string, t reporthash.Type, lines *sourcecode.Reader) ([]*report.Report, bool, error) {
	doc, err := plist.ParseFile(path)
	if err != nil {
		return nil, false, err
	}
	if len(doc.Diagnostics) == 0 {
		return nil, false, nil
	}
	reports := report.FromDocument(doc, filepath.Dir(path), filepath.Base(path))
	for i, r := range reports {
		hash, err := reporthash.GetReportHash(r, r.File, t, lines)
		if err != nil {
			glog.Warningf("failed to hash diagnostic %d of %s: %v", i, path, err)
		}
		r.ReportHash = hash
		doc.Diagnostics[i].IssueHash = hash
	}
	data, err := doc.Encode()
	if err != nil {
		return nil, false, err
	}
	err = atomic.WriteSync(path, data)
	if err != nil {
		return nil, false, fmt.Errorf("atomic.WriteSync: %v", err)
	}
	return reports, true, nil
}

// FillFile computes hashes only for diagnostics that have none, keeping
// the hashes the analyzer emitted natively. A file whose diagnostics are
// all hashed already is left untouched.
func FillFile(path string, lines *sourcecode.Reader) ([]*report.Report, bool, error) {
	doc, err := plist.ParseFile(path)
	if err != nil {
		return nil, false, err
	}
	if len(doc.Diagnostics) == 0 {
		return nil, false, nil
	}
	reports := report.FromDocument(doc, filepath.Dir(path), filepath.Base(path))
	changed := false
	for i, r := range reports {
		if r.ReportHash != "" {
			continue
		}
		hash, err := reporthash.GetReportHash(r, r.File, reporthash.PathSensitive, lines)
		if err != nil {
			glog.Warningf("failed to hash diagnostic %d of %s: %v", i, path, err)
			continue
		}
		r.ReportHash = hash
		doc.Diagnostics[i].IssueHash = hash
		changed = true
	}
	if !changed {
		return reports, false, nil
	}
	data, err := doc.Encode()
	if err != nil {
		return nil, false, err
	}
	err = atomic.WriteSync(path, data)
	if err != nil {
		return nil, false, fmt.Errorf("atomic.WriteSync: %v", err)
	}
	return reports, true, nil
}

type fileResult struct {
	path      string
	reports   []*report.Report
	rewritten bool
	err       error
}

// Dir rewrites every result file under resultsDir with the selected
// generator. A file that fails to parse or encode is skipped with a
// warning and the batch continues. Returns the batch counters and the
// unique source files the surviving reports point at, sorted.
func Dir(resultsDir string, t reporthash.Type, opts Options) (*stats.RewriteCount, []string, error) {
	return dirWith(resultsDir, opts, func(path string, lines *sourcecode.Reader) ([]*report.Report, bool, error) {
		return File(path, t, lines)
	})
}

// DirFill is Dir for the default mode: native hashes are kept and only
// missing ones are generated.
func DirFill(resultsDir string, opts Options) (*stats.RewriteCount, []string, error) {
	return dirWith(resultsDir, opts, FillFile)
}

func dirWith(resultsDir string, opts Options, rewriteFile func(string, *sourcecode.Reader) ([]*report.Report, bool, error)) (*stats.RewriteCount, []string, error) {
	paths, err := report.ListResultFiles(resultsDir, opts.SkipPatterns)
	if err != nil {
		return nil, nil, err
	}
	printer := i18n.GetPrinter(opts.Lang)
	numWorkers := opts.NumWorkers
	if numWorkers < 1 {
		numWorkers = int32(runtime.NumCPU())
		if opts.ShowProgress {
			basic.PrintfWithTimeStamp(printer.Sprintf("Use %d CPU(s)", numWorkers))
		}
	}
	processPrinter := basic.NewProcessPrinter(len(paths))
	jobs := make(chan string, numWorkers)
	results := make(chan fileResult, numWorkers)
	var workerWg sync.WaitGroup
	for w := 0; w < int(numWorkers); w++ {
		workerWg.Add(1)
		go func() {
			defer workerWg.Done()
			// one line reader per worker, its file cache is not shared
			lines := sourcecode.NewReader(opts.Charset)
			for path := range jobs {
				name, err := filepath.Rel(resultsDir, path)
				if err != nil {
					name = filepath.Base(path)
				}
				if opts.ShowProgress {
					processPrinter.StartTask(name, printer)
				}
				reports, rewritten, err := rewriteFile(path, lines)
				results <- fileResult{path: path, reports: reports, rewritten: rewritten, err: err}
				if opts.ShowProgress {
					processPrinter.FinishTask(name, printer)
					stats.WriteProgress(resultsDir, stats.RW, processPrinter.GetPercentString(), processPrinter.GetStartedAt())
				}
			}
		}()
	}
	go func() {
		for _, path := range paths {
			jobs <- path
		}
		close(jobs)
		workerWg.Wait()
		close(results)
	}()

	cnt := stats.NewRewriteCount()
	sourceFiles := []string{}
	seenSources := map[string]struct{}{}
	for res := range results {
		cnt.FilesScanned++
		if res.err != nil {
			glog.Warningf("skipping result file %s: %v", res.path, res.err)
			cnt.FilesSkipped++
			continue
		}
		switch {
		case res.rewritten:
			cnt.FilesRewritten++
		case res.reports == nil:
			cnt.FilesEmpty++
			continue
		default:
			// fully hashed already, nothing to fill in
			cnt.FilesUnchanged++
		}
		cnt.Reports += len(res.reports)
		for _, r := range res.reports {
			stats.AccumulateByChecker(cnt, r.CheckerName)
			if r.ReportHash == "" {
				cnt.EmptyHashes++
			}
			if r.File == "" {
				continue
			}
			if _, seen := seenSources[r.File]; !seen {
				seenSources[r.File] = struct{}{}
				sourceFiles = append(sourceFiles, r.File)
			}
		}
	}
	slices.Sort(sourceFiles)
	return cnt, sourceFiles, nil
}
